package preview

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/matzehuels/imagepuzzler/pkg/geometry"
	"github.com/matzehuels/imagepuzzler/pkg/puzzle"
)

var (
	selectionStroke = color.NRGBA{0x34, 0x98, 0xdb, 0xff}
	selectionFill   = color.NRGBA{0x34, 0x98, 0xdb, 0x33}
)

// EditorCanvas renders the authoring view of it inside a container of the
// given width: the image fitted with the editor's gutter and height cap,
// the selection rectangle and the answer label preview.
func EditorCanvas(it puzzle.Item, containerWidth float64) (image.Image, geometry.Frame, error) {
	frame := geometry.EditorFrame(it.Natural, containerWidth)
	w := max(1, int(math.Round(it.Natural.W*frame.Scale)))
	h := max(1, int(math.Round(it.Natural.H*frame.Scale)))

	img, err := it.Decode()
	if err != nil {
		return nil, frame, err
	}
	dc := gg.NewContext(w, h)
	dc.DrawImage(imaging.Resize(img, w, h, imaging.Lanczos), 0, 0)

	if it.Selection != nil {
		r := geometry.ToDisplayRect(*it.Selection, frame.Scale)
		dc.SetColor(selectionFill)
		dc.DrawRectangle(r.X, r.Y, r.W, r.H)
		dc.Fill()
		dc.SetColor(selectionStroke)
		dc.SetLineWidth(2)
		dc.DrawRectangle(r.X, r.Y, r.W, r.H)
		dc.Stroke()
	}

	l := it.Label.Normalize()
	if l.Answer != "" {
		pos := geometry.Point{X: l.AnswerPosition.X / 100 * float64(w), Y: l.AnswerPosition.Y / 100 * float64(h)}
		if err := drawLabel(dc, l, pos, float64(l.AnswerSize)*frame.Scale, 1); err != nil {
			return nil, frame, err
		}
	}
	return dc.Image(), frame, nil
}
