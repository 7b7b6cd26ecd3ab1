package puzzle

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"path"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/imagepuzzler/pkg/errors"
	"github.com/matzehuels/imagepuzzler/pkg/geometry"
	"github.com/matzehuels/imagepuzzler/pkg/reveal"
)

// Label defaults carried over from the authoring surface.
const (
	DefaultQuestionSize  = 72
	DefaultAnswerSize    = 72
	DefaultAnswerColor   = "#ffffff"
	DefaultAnswerOutline = true
)

// Label is the text shown with a question and how the answer is styled.
type Label struct {
	Question      string `json:"question"`
	QuestionSize  int    `json:"questionSize"`
	Answer        string `json:"answer"`
	AnswerSize    int    `json:"answerSize"`
	AnswerColor   string `json:"answerColor"`
	AnswerOutline bool   `json:"answerOutline"`
	// AnswerPosition is the answer's center in percent of the full image.
	AnswerPosition geometry.Point `json:"answerPosition"`
	Variant        reveal.Variant `json:"revealAnimation"`
}

// DefaultLabel returns the label given to newly added images.
func DefaultLabel() Label {
	return Label{
		QuestionSize:   DefaultQuestionSize,
		AnswerSize:     DefaultAnswerSize,
		AnswerColor:    DefaultAnswerColor,
		AnswerOutline:  DefaultAnswerOutline,
		AnswerPosition: geometry.Point{X: 50, Y: 50},
		Variant:        reveal.DefaultVariant,
	}
}

// Normalize fills zero-valued sizes, color and variant with defaults, the
// way the exported player treats missing fields.
func (l Label) Normalize() Label {
	d := DefaultLabel()
	if l.QuestionSize <= 0 {
		l.QuestionSize = d.QuestionSize
	}
	if l.AnswerSize <= 0 {
		l.AnswerSize = d.AnswerSize
	}
	if l.AnswerColor == "" {
		l.AnswerColor = d.AnswerColor
	}
	if !l.Variant.Valid() {
		l.Variant = d.Variant
	}
	l.AnswerPosition.X = geometry.ClampPercentage(l.AnswerPosition.X)
	l.AnswerPosition.Y = geometry.ClampPercentage(l.AnswerPosition.Y)
	return l
}

// Validate checks sizes, color and variant.
func (l Label) Validate() error {
	if err := errors.ValidateFontSize(l.QuestionSize); err != nil {
		return err
	}
	if err := errors.ValidateFontSize(l.AnswerSize); err != nil {
		return err
	}
	if err := errors.ValidateColor(l.AnswerColor); err != nil {
		return err
	}
	if !l.Variant.Valid() {
		return errors.New(errors.ErrCodeInvalidVariant, "unknown reveal animation %q", l.Variant)
	}
	return nil
}

// Item is one quiz question: an image, its selection and its label.
type Item struct {
	ID        uuid.UUID
	Name      string
	Raster    []byte
	MIME      string
	Natural   geometry.Size
	Selection *geometry.Rect
	Label     Label
}

// NewItem decodes the raster's header and returns an item with the default
// label and no selection. Undecodable rasters fail with MISSING_RASTER.
func NewItem(name string, raster []byte) (Item, error) {
	if err := errors.ValidateImageName(name); err != nil {
		return Item{}, err
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(raster))
	if err != nil {
		return Item{}, errors.Wrap(errors.ErrCodeMissingRaster, err, "decode %s", name)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Item{}, errors.New(errors.ErrCodeMissingRaster, "%s has no pixels", name)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return Item{}, errors.Wrap(errors.ErrCodeInternal, err, "generate item id")
	}

	mime := MIMEFromName(name)
	if detected := "image/" + format; detected != mime && knownMIME(detected) {
		mime = detected
	}

	return Item{
		ID:      id,
		Name:    name,
		Raster:  raster,
		MIME:    mime,
		Natural: geometry.Size{W: float64(cfg.Width), H: float64(cfg.Height)},
		Label:   DefaultLabel(),
	}, nil
}

// MIMEFromName maps a file extension to an image MIME type. Anything that is
// not png, gif or webp is treated as JPEG.
func MIMEFromName(name string) string {
	switch strings.ToLower(strings.TrimPrefix(path.Ext(name), ".")) {
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	}
	return "image/jpeg"
}

func knownMIME(m string) bool {
	switch m {
	case "image/png", "image/gif", "image/webp", "image/jpeg":
		return true
	}
	return false
}

// Complete reports whether the item has a selection and can be exported.
func (it Item) Complete() bool { return it.Selection != nil }

// Question converts the item into the reveal engine's input. The item must
// be complete.
func (it Item) Question(index int) reveal.Question {
	q := reveal.Question{
		Index:    index,
		Natural:  it.Natural,
		Question: it.Label.Question,
		Answer:   it.Label.Answer,
		Variant:  it.Label.Variant,
	}
	if it.Selection != nil {
		q.Selection = *it.Selection
	}
	return q
}

// Decode decodes the full raster.
func (it Item) Decode() (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(it.Raster))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMissingRaster, err, "decode %s", it.Name)
	}
	return img, nil
}

// Crop returns the selected region of img, which must be the item's decoded
// raster. Fractional selections are rounded outward to whole pixels.
func (it Item) Crop(img image.Image) (image.Image, error) {
	if it.Selection == nil {
		return nil, errors.New(errors.ErrCodeIncompleteProject, "%s has no selection", it.Name)
	}
	r := PixelRect(*it.Selection)
	if r.Empty() {
		return nil, errors.New(errors.ErrCodeDegenerateSelection, "%s selection has no area", it.Name)
	}
	return imaging.Crop(img, r), nil
}

// PixelRect converts a source-pixel selection into an integer rectangle
// covering it.
func PixelRect(r geometry.Rect) image.Rectangle {
	return image.Rect(
		int(math.Floor(r.X)),
		int(math.Floor(r.Y)),
		int(math.Ceil(r.Right())),
		int(math.Ceil(r.Bottom())),
	)
}
