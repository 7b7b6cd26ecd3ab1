package player

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/imagepuzzler/pkg/buildinfo"
	"github.com/matzehuels/imagepuzzler/pkg/fonts"
	"github.com/matzehuels/imagepuzzler/pkg/geometry"
	"github.com/matzehuels/imagepuzzler/pkg/puzzle"
	"github.com/matzehuels/imagepuzzler/pkg/reveal"
)

// Texts used when the project leaves them empty.
const (
	DefaultTitle             = "Image Quiz"
	DefaultExplanation       = "Look at the cropped image and guess what it is. Click to reveal the answer!"
	DefaultCompletionMessage = "Congratulations! You've completed the quiz."
)

var (
	//go:embed quiz.html.tmpl
	pageSource string

	//go:embed runtime.js
	runtimeJS string

	//go:embed runtime.css
	runtimeCSS string

	page = template.Must(template.New("quiz").Parse(pageSource))
)

// Options configure Render.
type Options struct {
	// Workers bounds concurrent image cropping. Zero uses GOMAXPROCS.
	Workers int
	Logger  *log.Logger
}

// Quiz is the data model of an exported quiz.
type Quiz struct {
	Title             string
	Explanation       string
	NextButtonLabel   string
	ProgressLabel     string
	CompletionMessage string
	Questions         []Question
	Intro             reveal.Step
}

// Question is the per-image record read by the runtime.
type Question struct {
	Full           string         `json:"full"`
	Cropped        string         `json:"cropped"`
	Width          float64        `json:"width"`
	Height         float64        `json:"height"`
	Selection      geometry.Rect  `json:"selection"`
	Question       string         `json:"question"`
	QuestionSize   int            `json:"questionSize"`
	Answer         string         `json:"answer"`
	AnswerSize     int            `json:"answerSize"`
	AnswerColor    string         `json:"answerColor"`
	AnswerOutline  bool           `json:"answerOutline"`
	AnswerPosition geometry.Point `json:"answerPosition"`
	Variant        reveal.Variant `json:"variant"`
	Progress       string         `json:"progress"`
	Plan           reveal.Plan    `json:"plan"`
}

// Build validates p and assembles the quiz model, cropping every question
// image. It refuses projects that are empty or have items without a
// selection.
func Build(ctx context.Context, p *puzzle.Project, opts Options) (*Quiz, error) {
	if err := p.ValidateForExport(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	q := &Quiz{
		Title:             firstNonEmpty(p.GameTitle, p.Name, DefaultTitle),
		Explanation:       firstNonEmpty(p.Explanation, DefaultExplanation),
		NextButtonLabel:   p.NextButtonLabel,
		ProgressLabel:     p.ProgressLabel,
		CompletionMessage: firstNonEmpty(p.CompletionMessage, DefaultCompletionMessage),
		Questions:         make([]Question, len(p.Items)),
		Intro:             reveal.IntroStep(),
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, it := range p.Items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			qq, err := buildQuestion(it, i, len(p.Items), p.ProgressLabel)
			if err != nil {
				return err
			}
			q.Questions[i] = qq
			logger.Debug("prepared question", "index", i, "name", it.Name, "variant", it.Label.Variant)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return q, nil
}

func buildQuestion(it puzzle.Item, i, total int, progressLabel string) (Question, error) {
	img, err := it.Decode()
	if err != nil {
		return Question{}, err
	}
	cropped, err := it.Crop(img)
	if err != nil {
		return Question{}, err
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, cropped, imaging.PNG); err != nil {
		return Question{}, fmt.Errorf("encode cropped %s: %w", it.Name, err)
	}

	l := it.Label.Normalize()
	return Question{
		Full:           dataURL(it.MIME, it.Raster),
		Cropped:        dataURL("image/png", buf.Bytes()),
		Width:          it.Natural.W,
		Height:         it.Natural.H,
		Selection:      *it.Selection,
		Question:       l.Question,
		QuestionSize:   l.QuestionSize,
		Answer:         l.Answer,
		AnswerSize:     l.AnswerSize,
		AnswerColor:    l.AnswerColor,
		AnswerOutline:  l.AnswerOutline,
		AnswerPosition: l.AnswerPosition,
		Variant:        l.Variant,
		Progress:       reveal.ProgressText(progressLabel, i+1, total),
		Plan:           reveal.NewPlan(it.Question(i)),
	}, nil
}

// Render exports p as one self-contained HTML document.
func Render(ctx context.Context, p *puzzle.Project, opts Options) ([]byte, error) {
	q, err := Build(ctx, p, opts)
	if err != nil {
		return nil, err
	}
	return q.HTML()
}

// HTML renders the quiz document. User text is escaped by the template.
func (q *Quiz) HTML() ([]byte, error) {
	data := struct {
		Questions []Question  `json:"questions"`
		Intro     reveal.Step `json:"intro"`
	}{q.Questions, q.Intro}

	var buf bytes.Buffer
	err := page.Execute(&buf, map[string]any{
		"Version":           buildinfo.Version,
		"Title":             q.Title,
		"Explanation":       q.Explanation,
		"NextButtonLabel":   q.NextButtonLabel,
		"ProgressLabel":     q.ProgressLabel,
		"CompletionMessage": q.CompletionMessage,
		"CSS":               template.CSS("body { font-family: " + fonts.FontFamily + "; }\n" + runtimeCSS),
		"Data":              data,
		"Runtime":           template.JS(runtimeJS),
	})
	if err != nil {
		return nil, fmt.Errorf("render quiz: %w", err)
	}
	return buf.Bytes(), nil
}

func dataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
