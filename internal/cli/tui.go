package cli

import (
	"fmt"
	"image"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/imagepuzzler/pkg/geometry"
	"github.com/matzehuels/imagepuzzler/pkg/preview"
	"github.com/matzehuels/imagepuzzler/pkg/puzzle"
	"github.com/matzehuels/imagepuzzler/pkg/reveal"
)

var (
	playTitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	playQuestionStyle = lipgloss.NewStyle().Foreground(colorWhite)
	playAnswerStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	playHelpStyle     = lipgloss.NewStyle().Foreground(colorDim)
	playErrorStyle    = lipgloss.NewStyle().Foreground(colorRed)
)

const (
	playFrameInterval = 50 * time.Millisecond
	// playChromeRows are the terminal rows not used by the picture.
	playChromeRows    = 4
	defaultCompletion = "Quiz complete!"
)

type playTickMsg time.Time

// =============================================================================
// PlayModel - Terminal quiz player
// =============================================================================

// PlayModel is the bubbletea model that plays a project in the terminal.
// The picture is drawn with half-block characters, two pixels per cell.
type PlayModel struct {
	project *puzzle.Project
	player  *reveal.Player
	stage   *preview.Stage
	hasNext bool
	now     func() time.Time

	cols, rows int
	renderers  map[int]*preview.Renderer
	renderErrs map[int]error
	err        error
}

// NewPlayModel prepares a player for p. Every item must have a selection.
func NewPlayModel(p *puzzle.Project, logger *log.Logger) (*PlayModel, error) {
	if err := p.ValidateForExport(); err != nil {
		return nil, err
	}
	m := &PlayModel{
		project:    p,
		hasNext:    p.NextButtonLabel != "",
		now:        time.Now,
		cols:       80,
		rows:       24,
		renderers:  make(map[int]*preview.Renderer),
		renderErrs: make(map[int]error),
	}
	stage, err := preview.NewStage(m.viewport(), p.Items[0])
	if err != nil {
		return nil, err
	}
	m.stage = stage

	questions := make([]reveal.Question, p.Len())
	for i, it := range p.Items {
		questions[i] = it.Question(i)
	}
	engine := reveal.NewEngine(stage, reveal.WithLogger(logger), reveal.WithNextAffordance(m.hasNext))
	m.player = reveal.NewPlayer(engine, questions, p.ProgressLabel)
	return m, nil
}

// viewport is the picture area in pixels.
func (m *PlayModel) viewport() geometry.Size {
	return geometry.Size{W: float64(m.cols), H: float64(max(1, m.rows-playChromeRows) * 2)}
}

func tickPlay() tea.Cmd {
	return tea.Tick(playFrameInterval, func(t time.Time) tea.Msg { return playTickMsg(t) })
}

func (m *PlayModel) Init() tea.Cmd {
	return tickPlay()
}

func (m *PlayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg.String())
	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			m.activate()
		}
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case playTickMsg:
		m.player.Tick(m.now())
		return m, tickPlay()
	}
	return m, nil
}

func (m *PlayModel) handleKey(key string) tea.Cmd {
	switch key {
	case "q", "ctrl+c", "esc":
		return tea.Quit
	case "enter", " ":
		m.activate()
	case "n", "right":
		if m.hasNext {
			m.next()
		}
	case "r":
		if m.player.State() == reveal.StateCompleted {
			m.start()
		}
	}
	return nil
}

func (m *PlayModel) start() {
	m.err = nil
	m.player.Start(m.now())
	m.show()
}

func (m *PlayModel) activate() {
	switch m.player.State() {
	case reveal.StateStart:
		m.start()
	case reveal.StatePlaying:
		before := m.player.Index()
		if err := m.player.Activate(m.now()); err != nil {
			m.err = err
		}
		if m.player.Index() != before {
			m.show()
		}
	}
}

func (m *PlayModel) next() {
	if m.player.Next(m.now()) {
		m.show()
	}
}

// show points the stage at the current question.
func (m *PlayModel) show() {
	m.err = nil
	if m.player.State() != reveal.StatePlaying {
		return
	}
	if err := m.stage.Show(m.project.Items[m.player.Index()]); err != nil {
		m.err = err
	}
}

func (m *PlayModel) resize(cols, rows int) {
	m.cols, m.rows = max(cols, 1), max(rows, playChromeRows+1)
	if err := m.stage.Resize(m.viewport()); err != nil {
		m.err = err
	}
	clear(m.renderers)
	clear(m.renderErrs)
}

func (m *PlayModel) renderer(i int) (*preview.Renderer, error) {
	if r, ok := m.renderers[i]; ok {
		return r, nil
	}
	if err, ok := m.renderErrs[i]; ok {
		return nil, err
	}
	r, err := preview.NewRenderer(m.project.Items[i], i, preview.Options{
		Viewport:  m.viewport(),
		NextLabel: m.project.NextButtonLabel,
		Progress:  m.player.Progress(),
	})
	if err != nil {
		m.renderErrs[i] = err
		return nil, err
	}
	m.renderers[i] = r
	return r, nil
}

// overlay is the state to draw now: interpolated along the plan once the
// reveal runs, the engine's resting state before that.
func (m *PlayModel) overlay(r *preview.Renderer) reveal.Overlay {
	e := m.player.Engine()
	s, ok := e.Session()
	if !ok || s.Start.IsZero() || s.Failed {
		return e.Overlay()
	}
	return r.At(m.now().Sub(s.Start))
}

func (m *PlayModel) View() string {
	var b strings.Builder
	title := m.project.GameTitle
	if title == "" {
		title = m.project.DisplayName()
	}

	switch m.player.State() {
	case reveal.StateStart:
		b.WriteString(playTitleStyle.Render(title) + "\n\n")
		if m.project.Explanation != "" {
			b.WriteString(m.project.Explanation + "\n\n")
		}
		b.WriteString(playHelpStyle.Render(fmt.Sprintf("%d questions · enter start · q quit", m.player.Total())))
		return b.String()

	case reveal.StateCompleted:
		msg := m.project.CompletionMessage
		if msg == "" {
			msg = defaultCompletion
		}
		b.WriteString(playTitleStyle.Render(msg) + "\n\n")
		b.WriteString(playHelpStyle.Render("r restart · q quit"))
		return b.String()
	}

	i := m.player.Index()
	header := playTitleStyle.Render(title)
	if progress := m.player.Progress(); progress != "" {
		gap := max(1, m.cols-lipgloss.Width(header)-lipgloss.Width(progress))
		header += strings.Repeat(" ", gap) + playHelpStyle.Render(progress)
	}
	b.WriteString(header + "\n")

	var o reveal.Overlay
	r, err := m.renderer(i)
	if err == nil {
		o = m.overlay(r)
		var img image.Image
		if img, err = r.Frame(o); err == nil {
			b.WriteString(halfBlocks(img))
		}
	}
	if err != nil {
		b.WriteString(playErrorStyle.Render(err.Error()) + "\n")
	}

	label := m.project.Items[i].Label
	if label.Question != "" && o.QuestionOpacity > 0.5 {
		b.WriteString(playQuestionStyle.Render(label.Question))
	}
	b.WriteString("\n")
	if label.Answer != "" && o.AnswerOpacity > 0.5 {
		b.WriteString(playAnswerStyle.Render(label.Answer))
	} else if m.err != nil {
		b.WriteString(playErrorStyle.Render(m.err.Error()))
	}
	b.WriteString("\n")

	help := "enter reveal"
	if o.NextVisible {
		if m.hasNext {
			help = "n " + m.project.NextButtonLabel
		} else {
			help = "enter next"
		}
	}
	b.WriteString(playHelpStyle.Render(help + " · q quit"))
	return b.String()
}

// halfBlocks draws img with one "▀" per two vertical pixels: the upper
// pixel as foreground, the lower one as background.
func halfBlocks(img image.Image) string {
	bounds := img.Bounds()
	var b strings.Builder
	for y := bounds.Min.Y; y < bounds.Max.Y; y += 2 {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			upper := hexColor(img, x, y)
			lower := upper
			if y+1 < bounds.Max.Y {
				lower = hexColor(img, x, y+1)
			}
			b.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(upper)).
				Background(lipgloss.Color(lower)).
				Render("▀"))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func hexColor(img image.Image, x, y int) string {
	c, ok := colorful.MakeColor(img.At(x, y))
	if !ok {
		return "#000000"
	}
	return c.Clamped().Hex()
}
