// Package fonts provides the typefaces used to draw question and answer
// labels into preview frames.
//
// The Go fonts from golang.org/x/image are compiled into the binary, so
// rendering never depends on fonts installed on the host.
package fonts

import (
	"fmt"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// FontFamily is the CSS font stack used by the exported quiz.
const FontFamily = `-apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif`

// Cache for parsed fonts (parsed once on first access).
var (
	regular, bold *truetype.Font
	parseErr      error
	parseOnce     sync.Once
)

func parse() error {
	parseOnce.Do(func() {
		if regular, parseErr = truetype.Parse(goregular.TTF); parseErr != nil {
			parseErr = fmt.Errorf("parse regular font: %w", parseErr)
			return
		}
		if bold, parseErr = truetype.Parse(gobold.TTF); parseErr != nil {
			parseErr = fmt.Errorf("parse bold font: %w", parseErr)
		}
	})
	return parseErr
}

// Regular returns a regular-weight face at the given size in pixels.
func Regular(size float64) (font.Face, error) {
	if err := parse(); err != nil {
		return nil, err
	}
	return truetype.NewFace(regular, &truetype.Options{Size: size, Hinting: font.HintingFull}), nil
}

// Bold returns a bold face at the given size in pixels. Answers are drawn
// bold.
func Bold(size float64) (font.Face, error) {
	if err := parse(); err != nil {
		return nil, err
	}
	return truetype.NewFace(bold, &truetype.Options{Size: size, Hinting: font.HintingFull}), nil
}
