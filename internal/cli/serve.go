package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/imagepuzzler/internal/server"
)

// serveCommand starts the local preview server.
func (c *CLI) serveCommand() *cobra.Command {
	var listen string
	var noCache bool

	cmd := &cobra.Command{
		Use:   "serve <project.zip>",
		Short: "Serve a live preview of the project over HTTP",
		Long: `Serve the project read-only on a local HTTP port:

  /quiz.html                         the exported quiz
  /api/items                         images with selections and labels
  /api/items/{i}/plan?format=        reveal plan (json, dot, svg)
  /api/items/{i}/frame.png?t=&w=&h=  one rendered frame
  /api/items/{i}/reveal.gif          the whole reveal
  /api/items/{i}/editor.png?width=   the editor canvas

Image indexes in URLs start at 0.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := c.openProject(args[0])
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			if !cmd.Flags().Changed("listen") && c.Config.Server.Listen != "" {
				listen = c.Config.Server.Listen
			}
			srv := server.New(p, runner, server.Options{Addr: listen, Logger: c.Logger})
			printSuccess("Serving %s", p.Summary())
			printFile("http://" + srv.Addr() + "/quiz.html")
			if missing := p.Incomplete(); len(missing) > 0 {
				printWarning("%s without a selection; the quiz is unavailable until they have one", plural(len(missing), "image"))
			}
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", server.DefaultAddr, "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the render cache")
	return cmd
}
