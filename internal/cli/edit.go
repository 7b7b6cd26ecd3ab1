package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/imagepuzzler/pkg/errors"
	"github.com/matzehuels/imagepuzzler/pkg/geometry"
	"github.com/matzehuels/imagepuzzler/pkg/puzzle"
	"github.com/matzehuels/imagepuzzler/pkg/reveal"
)

// newCommand creates an empty project archive.
func (c *CLI) newCommand() *cobra.Command {
	var name string
	var force bool

	cmd := &cobra.Command{
		Use:   "new <project.zip>",
		Short: "Create an empty project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err == nil && !force {
				return errors.New(errors.ErrCodeInvalidInput, "%s already exists (use --force to overwrite)", path)
			}
			p := puzzle.NewProject(name)
			if err := c.saveProject(path, p); err != nil {
				return err
			}
			printSuccess("Created %s", p.Summary())
			printFile(path)
			printNextStep("Add images", quoteArgs(appName, "add", path, "photo.jpg"))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "project name")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

// addCommand adds image files to a project.
func (c *CLI) addCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <project.zip> <image>...",
		Short: "Add images to a project",
		Long: `Add images to a project. PNG, JPEG, GIF and WebP files are accepted.
New images get the label defaults from the config file and no selection;
mark the region to crop with "select" before exporting.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			var added []int
			p, err := c.editProject(path, func(p *puzzle.Project) error {
				for _, file := range args[1:] {
					data, err := os.ReadFile(file)
					if err != nil {
						return err
					}
					i, err := p.Add(filepath.Base(file), data)
					if err != nil {
						return fmt.Errorf("%s: %w", file, err)
					}
					added = append(added, i)
					c.Logger.Debug("added image", "file", file, "as", p.Items[i].Name)
				}
				return nil
			})
			if err != nil {
				return err
			}
			for _, i := range added {
				it := p.Items[i]
				printSuccess("Added #%d %s", i+1, it.Name)
				printDetail("%gx%g %s", it.Natural.W, it.Natural.H, it.MIME)
			}
			printInfo("%s", p.Summary())
			printNextStep("Mark the region to show", quoteArgs(appName, "select", path, fmt.Sprint(added[0]+1), "X", "Y", "W", "H"))
			return nil
		},
	}
}

// listCommand prints the project's images.
func (c *CLI) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list <project.zip>",
		Aliases: []string{"ls"},
		Short:   "List the images of a project",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.openProject(args[0])
			if err != nil {
				return err
			}
			fmt.Println(StyleTitle.Render(p.DisplayName()))
			if p.Len() == 0 {
				printInfo("No images yet")
				return nil
			}
			fmt.Println(itemTable(p))
			if missing := p.Incomplete(); len(missing) > 0 {
				printWarning("%s without a selection", plural(len(missing), "image"))
			}
			return nil
		},
	}
}

// selectCommand sets or clears an image's selection.
func (c *CLI) selectCommand() *cobra.Command {
	var clear bool
	var drag []float64
	var canvasWidth float64

	cmd := &cobra.Command{
		Use:   "select <project.zip> <n> [x y w h]",
		Short: "Set the region of an image shown as the question",
		Long: `Set the selection rectangle of image n in source pixels.

With --drag x0,y0,x1,y1 the rectangle is given as two pointer positions on
the editor canvas instead (as if dragged in a container --canvas-width wide);
the drag may run in any direction and is clamped into the image.`,
		Args: cobra.RangeArgs(2, 6),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			var apply func(p *puzzle.Project) error
			switch {
			case clear:
				apply = func(p *puzzle.Project) error { return p.SetSelection(i, nil) }
			case len(drag) > 0:
				if len(drag) != 4 {
					return errors.New(errors.ErrCodeInvalidInput, "--drag takes four numbers: x0,y0,x1,y1")
				}
				apply = func(p *puzzle.Project) error {
					it, err := p.Item(i)
					if err != nil {
						return err
					}
					frame := geometry.EditorFrame(it.Natural, canvasWidth)
					return p.SetSelectionFromDrag(i, frame,
						geometry.Point{X: drag[0], Y: drag[1]}, geometry.Point{X: drag[2], Y: drag[3]})
				}
			case len(args) == 6:
				var v [4]float64
				for k, name := range []string{"x", "y", "w", "h"} {
					if v[k], err = parseFloat(name, args[2+k]); err != nil {
						return err
					}
				}
				sel := geometry.Rect{X: v[0], Y: v[1], W: v[2], H: v[3]}
				apply = func(p *puzzle.Project) error { return p.SetSelection(i, &sel) }
			default:
				return errors.New(errors.ErrCodeInvalidInput, "give x y w h, --drag or --clear")
			}

			p, err := c.editProject(args[0], apply)
			if err != nil {
				return err
			}
			it := p.Items[i]
			if it.Selection == nil {
				printSuccess("Cleared selection of #%d %s", i+1, it.Name)
				return nil
			}
			s := it.Selection
			printSuccess("Selected %gx%g at (%g, %g) on #%d %s", s.W, s.H, s.X, s.Y, i+1, it.Name)
			return nil
		},
	}

	cmd.Flags().BoolVar(&clear, "clear", false, "remove the selection")
	cmd.Flags().Float64SliceVar(&drag, "drag", nil, "canvas drag x0,y0,x1,y1")
	cmd.Flags().Float64Var(&canvasWidth, "canvas-width", 1000, "editor container width for --drag")
	return cmd
}

// labelCommand edits question and answer texts and styling.
func (c *CLI) labelCommand() *cobra.Command {
	var (
		question, answer, color, animation string
		questionSize, answerSize           int
		outline                            bool
	)

	cmd := &cobra.Command{
		Use:   "label <project.zip> <n>",
		Short: "Set the question, answer and reveal animation of an image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			p, err := c.editProject(args[0], func(p *puzzle.Project) error {
				it, err := p.Item(i)
				if err != nil {
					return err
				}
				l := it.Label
				if flags.Changed("question") {
					l.Question = question
				}
				if flags.Changed("question-size") {
					l.QuestionSize = questionSize
				}
				if flags.Changed("answer") {
					l.Answer = answer
				}
				if flags.Changed("answer-size") {
					l.AnswerSize = answerSize
				}
				if flags.Changed("color") {
					l.AnswerColor = color
				}
				if flags.Changed("outline") {
					l.AnswerOutline = outline
				}
				if flags.Changed("animation") {
					v, err := reveal.ParseVariant(animation)
					if err != nil {
						return err
					}
					l.Variant = v
				}
				return p.SetLabel(i, l)
			})
			if err != nil {
				return err
			}
			l := p.Items[i].Label
			printSuccess("Updated label of #%d %s", i+1, p.Items[i].Name)
			printKeyValue("Question", fmt.Sprintf("%q (%dpx)", l.Question, l.QuestionSize))
			printKeyValue("Answer", fmt.Sprintf("%q (%dpx, %s)", l.Answer, l.AnswerSize, l.AnswerColor))
			printKeyValue("Reveal", string(l.Variant))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&question, "question", "q", "", "question shown under the cropped image")
	f.IntVar(&questionSize, "question-size", puzzle.DefaultQuestionSize, "question font size in source pixels")
	f.StringVarP(&answer, "answer", "a", "", "answer shown over the full image")
	f.IntVar(&answerSize, "answer-size", puzzle.DefaultAnswerSize, "answer font size in source pixels")
	f.StringVar(&color, "color", puzzle.DefaultAnswerColor, "answer color (#rgb or #rrggbb)")
	f.BoolVar(&outline, "outline", puzzle.DefaultAnswerOutline, "draw a dark outline around the answer")
	f.StringVar(&animation, "animation", string(reveal.DefaultVariant), "reveal animation: fade, blur, box or circle")
	_ = cmd.RegisterFlagCompletionFunc("animation", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		names := make([]string, 0, len(reveal.Variants()))
		for _, v := range reveal.Variants() {
			names = append(names, string(v))
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

// moveAnswerCommand positions the answer label.
func (c *CLI) moveAnswerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "move-answer <project.zip> <n> <x%> <y%>",
		Short: "Position the answer label in percent of the full image",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			x, err := parseFloat("x", args[2])
			if err != nil {
				return err
			}
			y, err := parseFloat("y", args[3])
			if err != nil {
				return err
			}
			p, err := c.editProject(args[0], func(p *puzzle.Project) error {
				return p.SetAnswerPosition(i, x, y)
			})
			if err != nil {
				return err
			}
			pos := p.Items[i].Label.AnswerPosition
			printSuccess("Answer of #%d at %g%%, %g%%", i+1, pos.X, pos.Y)
			return nil
		},
	}
}

// reorderCommand moves an image to another position.
func (c *CLI) reorderCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <project.zip> <from> <to>",
		Short: "Move an image to another position",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			to, err := parseIndex(args[2])
			if err != nil {
				return err
			}
			p, err := c.editProject(args[0], func(p *puzzle.Project) error {
				return p.Reorder(from, to)
			})
			if err != nil {
				return err
			}
			printSuccess("Moved %s to #%d", p.Items[to].Name, to+1)
			return nil
		},
	}
}

// removeCommand deletes an image.
func (c *CLI) removeCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <project.zip> <n>",
		Aliases: []string{"rm"},
		Short:   "Remove an image from a project",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			var name string
			p, err := c.editProject(args[0], func(p *puzzle.Project) error {
				it, err := p.Item(i)
				if err != nil {
					return err
				}
				name = it.Name
				return p.Remove(i)
			})
			if err != nil {
				return err
			}
			printSuccess("Removed %s", name)
			printInfo("%s", p.Summary())
			return nil
		},
	}
}

// resetCommand clears a project.
func (c *CLI) resetCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset <project.zip>",
		Short: "Remove all images and settings from a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New(errors.ErrCodeInvalidInput,
					"this will clear all images and settings; rerun with --yes to confirm")
			}
			if _, err := c.editProject(args[0], func(p *puzzle.Project) error {
				p.Reset()
				return nil
			}); err != nil {
				return err
			}
			printSuccess("Project reset")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the reset")
	return cmd
}

// settingsCommand shows or edits the project-wide quiz texts.
func (c *CLI) settingsCommand() *cobra.Command {
	var s puzzle.Settings

	cmd := &cobra.Command{
		Use:   "settings <project.zip>",
		Short: "Show or change the project name and quiz texts",
		Long: `Show or change the project name and the texts of the exported quiz.

The progress label may contain {current} and {total}, e.g. "{current}/{total}".
An empty next label makes the quiz advance on click instead of showing a
button.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			changed := false
			for _, name := range []string{"name", "title", "explanation", "next-label", "progress-label", "completion"} {
				changed = changed || flags.Changed(name)
			}

			var p *puzzle.Project
			var err error
			if changed {
				p, err = c.editProject(args[0], func(p *puzzle.Project) error {
					if flags.Changed("name") {
						p.Name = s.Name
					}
					if flags.Changed("title") {
						p.GameTitle = s.GameTitle
					}
					if flags.Changed("explanation") {
						p.Explanation = s.Explanation
					}
					if flags.Changed("next-label") {
						p.NextButtonLabel = s.NextButtonLabel
					}
					if flags.Changed("progress-label") {
						p.ProgressLabel = s.ProgressLabel
					}
					if flags.Changed("completion") {
						p.CompletionMessage = s.CompletionMessage
					}
					return nil
				})
				if err == nil {
					printSuccess("Updated settings")
				}
			} else {
				p, err = c.openProject(args[0])
			}
			if err != nil {
				return err
			}

			show := func(v string) string {
				if v == "" {
					return StyleDim.Render("(default)")
				}
				return v
			}
			printKeyValue("Name", show(p.Name))
			printKeyValue("Title", show(p.GameTitle))
			printKeyValue("Explanation", show(p.Explanation))
			printKeyValue("Next label", show(p.NextButtonLabel))
			printKeyValue("Progress", show(p.ProgressLabel))
			printKeyValue("Completion", show(p.CompletionMessage))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&s.Name, "name", "", "project name")
	f.StringVar(&s.GameTitle, "title", "", "quiz title")
	f.StringVar(&s.Explanation, "explanation", "", "text on the start screen")
	f.StringVar(&s.NextButtonLabel, "next-label", "", "next button text (empty: click to advance)")
	f.StringVar(&s.ProgressLabel, "progress-label", "", "progress text with {current} and {total}")
	f.StringVar(&s.CompletionMessage, "completion", "", "text on the end screen")
	return cmd
}
