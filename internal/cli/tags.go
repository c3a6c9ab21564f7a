package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eringen/opengraph"
	"github.com/eringen/opengraph/site"
)

func newTagsCmd(opts *options) *cobra.Command {
	var (
		asJSON       bool
		rootDeclared bool
	)
	cmd := &cobra.Command{
		Use:   "tags [path]",
		Short: "Print the Open Graph tags of a page",
		Long: `Resolve the Open Graph metadata of the front page (no argument or "/")
or of a published post ("/blog/<slug>/" or just "<slug>") and print it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			path := "/"
			if len(args) == 1 {
				path = args[0]
				if _, ok := site.SlugFromPath(path); !ok {
					path = site.PostPath(path)
				}
			}

			app, err := loadApp(opts)
			if err != nil {
				return err
			}
			defer app.Close()
			if err := app.Init(); err != nil {
				return err
			}

			md, err := app.Metadata(path)
			if errors.Is(err, site.ErrNotFound) {
				return fmt.Errorf("no published page at %s", path)
			}
			if err != nil {
				return err
			}
			logger.Debug("resolved metadata", "path", path, "entries", md.Len())

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(md.Entries())
			}
			return opengraph.Emit(out, md, &opengraph.RenderState{NamespaceDeclared: rootDeclared})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print every entry, including empty ones, as JSON")
	cmd.Flags().BoolVar(&rootDeclared, "root-declared", false, "assume the og namespace is declared on <html>")
	return cmd
}
