package puzzle

import (
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/matzehuels/imagepuzzler/pkg/errors"
	"github.com/matzehuels/imagepuzzler/pkg/geometry"
)

// DefaultProjectName is used when a project has no name.
const DefaultProjectName = "Untitled Project"

// Settings are the project-wide texts used by the exported quiz.
type Settings struct {
	Name              string `json:"projectName"`
	GameTitle         string `json:"gameTitle"`
	Explanation       string `json:"gameExplanation"`
	NextButtonLabel   string `json:"nextButtonLabel"`
	ProgressLabel     string `json:"progressLabel"`
	CompletionMessage string `json:"completionMessage"`
}

// DisplayName returns the project name or [DefaultProjectName].
func (s Settings) DisplayName() string {
	if s.Name == "" {
		return DefaultProjectName
	}
	return s.Name
}

// Project is an ordered collection of quiz items plus the editor cursor.
type Project struct {
	Settings
	Items []Item

	// Current is the index of the item selected in the editor, or -1.
	Current int

	defaults Label
}

// NewProject creates an empty project.
func NewProject(name string) *Project {
	return &Project{
		Settings: Settings{Name: name},
		Current:  -1,
		defaults: DefaultLabel(),
	}
}

// SetLabelDefaults changes the label given to items added from now on.
func (p *Project) SetLabelDefaults(l Label) {
	p.defaults = l.Normalize()
}

// Len returns the number of items.
func (p *Project) Len() int { return len(p.Items) }

// Add decodes raster and appends a new item. The first item added to an
// empty project becomes current. It returns the new item's index.
//
// Names are archive entry names, so a name already in use gets a numeric
// suffix ("cat.png" becomes "cat-2.png").
func (p *Project) Add(name string, raster []byte) (int, error) {
	it, err := NewItem(p.uniqueName(name), raster)
	if err != nil {
		return -1, err
	}
	if p.defaults != (Label{}) {
		it.Label = p.defaults
	}
	return p.Append(it), nil
}

// Append adds an already decoded item and returns its index. A name that is
// already taken gets a numeric suffix, as in [Project.Add].
func (p *Project) Append(it Item) int {
	it.Name = p.uniqueName(it.Name)
	p.Items = append(p.Items, it)
	if p.Current == -1 {
		p.Current = 0
	}
	return len(p.Items) - 1
}

func (p *Project) uniqueName(name string) string {
	taken := make(map[string]bool, len(p.Items))
	for _, it := range p.Items {
		taken[it.Name] = true
	}
	if !taken[name] {
		return name
	}
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s-%d%s", base, n, ext)
		if !taken[candidate] {
			return candidate
		}
	}
}

// Item returns a copy of item i.
func (p *Project) Item(i int) (Item, error) {
	if err := p.check(i); err != nil {
		return Item{}, err
	}
	it := p.Items[i]
	if it.Selection != nil {
		sel := *it.Selection
		it.Selection = &sel
	}
	return it, nil
}

// Find returns the index of the item with the given ID.
func (p *Project) Find(id uuid.UUID) (int, bool) {
	for i, it := range p.Items {
		if it.ID == id {
			return i, true
		}
	}
	return -1, false
}

// Update applies fn to item i in place. The item's identity, raster and
// natural size cannot be changed through Update.
func (p *Project) Update(i int, fn func(*Item)) error {
	if err := p.check(i); err != nil {
		return err
	}
	it := &p.Items[i]
	id, raster, mime, natural := it.ID, it.Raster, it.MIME, it.Natural
	fn(it)
	it.ID, it.Raster, it.MIME, it.Natural = id, raster, mime, natural
	return nil
}

// SetSelection stores an explicit source-pixel selection. The rectangle must
// lie within the image; use nil to clear the selection.
func (p *Project) SetSelection(i int, sel *geometry.Rect) error {
	it, err := p.Item(i)
	if err != nil {
		return err
	}
	if sel != nil && !sel.Within(it.Natural) {
		return errors.New(errors.ErrCodeInvalidSelection,
			"selection %gx%g at (%g,%g) is outside the %gx%g image",
			sel.W, sel.H, sel.X, sel.Y, it.Natural.W, it.Natural.H)
	}
	return p.Update(i, func(it *Item) {
		if sel == nil {
			it.Selection = nil
			return
		}
		r := *sel
		it.Selection = &r
	})
}

// SetSelectionFromDrag stores the selection spanned by two pointer positions
// on the editor canvas. The drag may run in any direction and may leave the
// canvas; the result is normalized and clamped into the image.
func (p *Project) SetSelectionFromDrag(i int, frame geometry.Frame, p0, p1 geometry.Point) error {
	it, err := p.Item(i)
	if err != nil {
		return err
	}
	if frame.Scale <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "display scale must be positive")
	}
	sel := geometry.NormalizeDrag(frame.ToSource(p0), frame.ToSource(p1)).ClampTo(it.Natural)
	return p.Update(i, func(it *Item) { it.Selection = &sel })
}

// MoveAnswer places the answer label at a pointer position over the
// canvas box. The position is stored in clamped percentages.
func (p *Project) MoveAnswer(i int, pointer geometry.Point, canvas geometry.Box) error {
	pos := geometry.PercentPoint(pointer, canvas)
	return p.Update(i, func(it *Item) { it.Label.AnswerPosition = pos })
}

// SetAnswerPosition stores an answer position given directly in percent.
func (p *Project) SetAnswerPosition(i int, x, y float64) error {
	pos := geometry.Point{X: geometry.ClampPercentage(x), Y: geometry.ClampPercentage(y)}
	return p.Update(i, func(it *Item) { it.Label.AnswerPosition = pos })
}

// SetLabel validates and stores a new label for item i.
func (p *Project) SetLabel(i int, l Label) error {
	if err := l.Validate(); err != nil {
		return err
	}
	return p.Update(i, func(it *Item) { it.Label = l })
}

// Remove deletes item i and keeps the cursor on a valid item.
func (p *Project) Remove(i int) error {
	if err := p.check(i); err != nil {
		return err
	}
	p.Items = append(p.Items[:i], p.Items[i+1:]...)
	switch {
	case len(p.Items) == 0:
		p.Current = -1
	case p.Current >= len(p.Items):
		p.Current = len(p.Items) - 1
	}
	return nil
}

// Reorder moves item from to position to. The cursor follows the item it
// pointed at.
func (p *Project) Reorder(from, to int) error {
	if err := p.check(from); err != nil {
		return err
	}
	if err := p.check(to); err != nil {
		return err
	}
	if from == to {
		return nil
	}
	it := p.Items[from]
	p.Items = append(p.Items[:from], p.Items[from+1:]...)
	p.Items = append(p.Items[:to], append([]Item{it}, p.Items[to:]...)...)

	switch {
	case p.Current == from:
		p.Current = to
	case from < p.Current && to >= p.Current:
		p.Current--
	case from > p.Current && to <= p.Current:
		p.Current++
	}
	return nil
}

// Select moves the editor cursor.
func (p *Project) Select(i int) error {
	if err := p.check(i); err != nil {
		return err
	}
	p.Current = i
	return nil
}

// Reset removes every item and clears all settings.
func (p *Project) Reset() {
	p.Items = nil
	p.Current = -1
	p.Settings = Settings{}
}

// Incomplete returns the indexes of items without a selection.
func (p *Project) Incomplete() []int {
	var out []int
	for i, it := range p.Items {
		if !it.Complete() {
			out = append(out, i)
		}
	}
	return out
}

// ValidateForExport refuses empty projects and projects with items that
// lack a selection or carry a degenerate one.
func (p *Project) ValidateForExport() error {
	if len(p.Items) == 0 {
		return errors.New(errors.ErrCodeIncompleteProject,
			"no images to generate a game; add some images first")
	}
	if missing := p.Incomplete(); len(missing) > 0 {
		return errors.New(errors.ErrCodeIncompleteProject,
			"please draw selection rectangles on all images; %s missing selections", countImages(len(missing), true))
	}
	for i, it := range p.Items {
		if it.Selection.IsDegenerate() {
			return errors.New(errors.ErrCodeDegenerateSelection,
				"image %d (%s) has a selection without area", i+1, it.Name)
		}
	}
	return nil
}

// Summary describes the project the way save and load confirmations do.
func (p *Project) Summary() string {
	return fmt.Sprintf("%s: %s", p.DisplayName(), countImages(len(p.Items), false))
}

// countImages renders "1 image" / "N images", optionally with the matching
// verb ("is" / "are").
func countImages(n int, verb bool) string {
	switch {
	case verb && n == 1:
		return "1 image is"
	case verb:
		return fmt.Sprintf("%d images are", n)
	case n == 1:
		return "1 image"
	}
	return fmt.Sprintf("%d images", n)
}

func (p *Project) check(i int) error {
	if i < 0 || i >= len(p.Items) {
		return errors.New(errors.ErrCodeNotFound, "no image at index %d (project has %d)", i, len(p.Items))
	}
	return nil
}
