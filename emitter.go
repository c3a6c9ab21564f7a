package opengraph

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// RenderState tracks whether the og: namespace has been declared in the
// page being rendered. Use one RenderState per page.
type RenderState struct {
	NamespaceDeclared bool
}

// HTMLAttributes returns the prefix attribute for the root <html> element
// and marks the namespace as declared.
func (s *RenderState) HTMLAttributes() templ.Attributes {
	s.NamespaceDeclared = true
	return templ.Attributes{"prefix": "og: " + NamespaceURI}
}

// LanguageAttributes appends the prefix attribute to the serialized
// attributes of the root element and marks the namespace as declared.
func (s *RenderState) LanguageAttributes(attrs string) string {
	s.NamespaceDeclared = true
	return attrs + ` prefix="og: ` + templ.EscapeString(NamespaceURI) + `"`
}

// Emit writes one self-closing <meta> tag per non-empty entry of md, in
// order. If the namespace has not been declared on the root element, the
// first tag declares it inline and state is updated. A nil state counts
// as undeclared.
func Emit(w io.Writer, md *Metadata, state *RenderState) error {
	if md == nil {
		return nil
	}
	if state == nil {
		state = &RenderState{}
	}
	var b strings.Builder
	for _, e := range md.Entries() {
		if e.Key == "" || e.Value == "" {
			continue
		}
		b.WriteString("<meta ")
		if !state.NamespaceDeclared {
			b.WriteString(`xmlns:og="` + templ.EscapeString(NamespaceURI) + `" `)
			state.NamespaceDeclared = true
		}
		b.WriteString(`property="`)
		b.WriteString(templ.EscapeString(e.Key))
		b.WriteString(`" content="`)
		b.WriteString(templ.EscapeString(e.Value))
		b.WriteString("\" />\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// MetaTags returns a templ.Component that emits md.
func MetaTags(md *Metadata, state *RenderState) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return Emit(w, md, state)
	})
}
