// Package cli implements the ogmeta command-line interface.
//
// Commands:
//   - serve: run the blog host
//   - tags: print the Open Graph block of a page straight from the database
//
// All commands accept --config (a YAML file, see site.LoadConfig) and
// --verbose for debug logging.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/eringen/opengraph/site"
)

var (
	version = "dev"
	commit  string
)

// SetVersion sets the version information displayed by --version.
func SetVersion(v, c string) {
	if v != "" {
		version = v
	}
	commit = c
}

// Execute runs the ogmeta CLI with ctx.
func Execute(ctx context.Context) error {
	return NewRootCommand(os.Stdout, os.Stderr).ExecuteContext(ctx)
}

type options struct {
	configPath string
	verbose    bool
}

// NewRootCommand builds the command tree. Command output goes to out and
// logs to errOut.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "ogmeta",
		Short:        "Open Graph metadata for a markdown blog",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if opts.verbose {
				level = charmlog.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(errOut, level)))
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.SetVersionTemplate(fmt.Sprintf("ogmeta %s\ncommit: %s\n", version, commit))
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a YAML site config")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newTagsCmd(opts))

	return root
}

// loadApp reads the config and builds an App from it.
func loadApp(opts *options) (*site.App, error) {
	cfg, err := site.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	return site.New(cfg), nil
}
