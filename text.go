package opengraph

import (
	"html"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

const (
	// DefaultSummaryWords is the word limit of an auto-generated summary.
	DefaultSummaryWords = 55
	// DefaultSummaryMore is appended to a summary that was cut short.
	DefaultSummaryMore = "…"
)

var (
	strictPolicy      = bluemonday.StrictPolicy()
	shortcodePatterns sync.Map // tag -> *regexp.Regexp
)

// Summarizer turns an item body into a short plain-text summary.
// The zero value uses DefaultSummaryWords and DefaultSummaryMore and strips
// no shortcodes.
type Summarizer struct {
	Words      int
	More       string
	Shortcodes []string // registered shortcode tags
}

// Summarize strips shortcodes and markup from content and trims the result.
// The summary is plain text on a single line: entities are decoded once
// and must be escaped again before they reach HTML.
func (s Summarizer) Summarize(content string) string {
	return s.TrimWords(StripTags(s.StripShortcodes(content)))
}

// TrimWords keeps at most s.Words whitespace-separated words of text,
// appending s.More when words were dropped.
func (s Summarizer) TrimWords(text string) string {
	limit := s.Words
	if limit <= 0 {
		limit = DefaultSummaryWords
	}
	words := strings.Fields(text)
	if len(words) <= limit {
		return strings.Join(words, " ")
	}
	more := s.More
	if more == "" {
		more = DefaultSummaryMore
	}
	return strings.Join(words[:limit], " ") + more
}

// StripShortcodes removes every registered shortcode from content. Enclosing
// shortcodes are removed with their content; a doubled bracket ([[tag]])
// escapes the shortcode and is unwrapped instead.
func (s Summarizer) StripShortcodes(content string) string {
	if !strings.Contains(content, "[") {
		return content
	}
	for _, tag := range s.Shortcodes {
		if tag = strings.TrimSpace(tag); tag != "" {
			content = stripShortcode(content, tag)
		}
	}
	return content
}

func shortcodePattern(tag string) *regexp.Regexp {
	if re, ok := shortcodePatterns.Load(tag); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(`\[(\[?)` + regexp.QuoteMeta(tag) + `(?:[\s/][^\]]*)?\]`)
	shortcodePatterns.Store(tag, re)
	return re
}

func stripShortcode(content, tag string) string {
	open := shortcodePattern(tag)
	closing := "[/" + tag + "]"
	var b strings.Builder
	for {
		loc := open.FindStringSubmatchIndex(content)
		if loc == nil {
			b.WriteString(content)
			return b.String()
		}
		b.WriteString(content[:loc[0]])
		escaped := loc[3] > loc[2]
		end := loc[1]

		if escaped && end < len(content) && content[end] == ']' {
			b.WriteString(content[loc[0]+1 : end])
			content = content[end+1:]
			continue
		}
		if !strings.HasSuffix(content[loc[0]:loc[1]], "/]") {
			if i := strings.Index(content[end:], closing); i >= 0 {
				end += i + len(closing)
			}
		}
		if escaped {
			if end < len(content) && content[end] == ']' {
				b.WriteString(content[loc[0]+1 : end])
				content = content[end+1:]
				continue
			}
			b.WriteByte('[')
		}
		content = content[end:]
	}
}

// StripTags removes all markup from s, dropping the content of script and
// style elements, and returns unescaped plain text.
func StripTags(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}

// Sanitize reduces s to a single line of plain text.
func Sanitize(s string) string {
	return strings.Join(strings.Fields(StripTags(s)), " ")
}
