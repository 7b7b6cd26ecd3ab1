package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// playCommand plays a project in the terminal.
func (c *CLI) playCommand() *cobra.Command {
	var mouse bool

	cmd := &cobra.Command{
		Use:   "play <project.zip>",
		Short: "Play the quiz in the terminal",
		Long: `Play the quiz in the terminal, the way the exported HTML plays it in a
browser. Pictures are drawn with colored half blocks, so a large terminal
with true color support looks best.

Keys: enter/space reveal and continue, n next (when the project has a next
label), r restart at the end, q quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.openProject(args[0])
			if err != nil {
				return err
			}
			m, err := NewPlayModel(p, c.Logger)
			if err != nil {
				if missing := p.Incomplete(); len(missing) > 0 {
					printIncomplete(p, missing)
				}
				return err
			}

			opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(cmd.Context())}
			if mouse {
				opts = append(opts, tea.WithMouseCellMotion())
			}
			_, err = tea.NewProgram(m, opts...).Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&mouse, "mouse", true, "click to reveal")
	return cmd
}
