package cli

import (
	stderrors "errors"
	"io/fs"
	"strconv"

	"github.com/matzehuels/imagepuzzler/pkg/errors"
	"github.com/matzehuels/imagepuzzler/pkg/project"
	"github.com/matzehuels/imagepuzzler/pkg/puzzle"
)

// openProject loads the archive at path, reports skipped images and
// applies the configured label defaults to images added later.
func (c *CLI) openProject(path string) (*puzzle.Project, error) {
	p, notices, err := project.LoadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err,
				"project %s does not exist; create it with `%s new %s`", path, appName, path)
		}
		return nil, err
	}
	printNotices(notices)
	p.SetLabelDefaults(c.Config.Label())
	c.Logger.Debug("loaded project", "path", path, "images", p.Len(), "notices", len(notices))
	return p, nil
}

func (c *CLI) saveProject(path string, p *puzzle.Project) error {
	if err := project.SaveFile(path, p); err != nil {
		return err
	}
	c.Logger.Debug("saved project", "path", path, "images", p.Len())
	return nil
}

// editProject loads path, applies fn and saves the result.
func (c *CLI) editProject(path string, fn func(p *puzzle.Project) error) (*puzzle.Project, error) {
	p, err := c.openProject(path)
	if err != nil {
		return nil, err
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	if err := c.saveProject(path, p); err != nil {
		return nil, err
	}
	return p, nil
}

// parseIndex converts a 1-based image number into an item index.
func parseIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "image number must be a positive integer, got %q", s)
	}
	return n - 1, nil
}

func parseFloat(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%s must be a number, got %q", name, s)
	}
	return v, nil
}
