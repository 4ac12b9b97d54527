package tui

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-noteroll/debug"
	"go-noteroll/display"
	"go-noteroll/sequence"
	"go-noteroll/theme"
	"go-noteroll/widgets"
)

const (
	labelWidth = 5 // "C#5  "
	rollTop    = 2 // header + blank line
	chromeRows = 6 // header, blank, blank, status, help, slack
)

var noteNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

func noteName(pitch int) string {
	if pitch < 0 {
		return "?"
	}
	return fmt.Sprintf("%s%d", noteNames[pitch%12], pitch/12)
}

// Options configures the terminal piano roll
type Options struct {
	Display    []display.Option
	CellWidth  float64 // pixels per terminal column
	CellHeight float64 // pixels per terminal row
	SavePath   string  // where "s" writes the sequence; empty disables saving
}

// feedback is shared between the model copies bubbletea passes around and
// the display/sequence callbacks
type feedback struct {
	status string
	err    error
}

type Model struct {
	Seq     *sequence.Sequence
	Surface *display.Container
	Display *display.NoteDisplay
	Theme   *theme.Theme

	view     widgets.Viewport
	keys     keyMap
	help     help.Model
	showHelp bool
	drag     *display.Drag
	dragX    float64
	fb       *feedback
	savePath string
	quitting bool
}

func NewModel(seq *sequence.Sequence, th *theme.Theme, opts Options) (Model, error) {
	if opts.CellWidth <= 0 {
		opts.CellWidth = 10
	}
	if opts.CellHeight <= 0 {
		opts.CellHeight = 20
	}

	fb := &feedback{}
	surface := display.NewContainer()
	dopts := append(slices.Clone(opts.Display), display.WithErrorHandler(func(err error) {
		fb.err = err
	}))
	d, err := display.New(surface, seq, dopts...)
	if err != nil {
		return Model{}, err
	}

	seq.OnChange(func(n *sequence.Note) {
		fb.err = nil
		fb.status = fmt.Sprintf("moved %s to beat %g", noteName(n.Number), n.Start)
	})

	m := Model{
		Seq:     seq,
		Surface: surface,
		Display: d,
		Theme:   th,
		view: widgets.Viewport{
			CellWidth:  opts.CellWidth,
			CellHeight: opts.CellHeight,
			Cols:       64,
			Rows:       16,
		},
		keys:     newKeyMap(),
		help:     help.New(),
		fb:       fb,
		savePath: opts.SavePath,
	}
	d.DrawNotes()
	m.fit()
	return m, nil
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.view.Cols = max(msg.Width-labelWidth, 1)
		m.view.Rows = max(msg.Height-chromeRows, 1)
		m.help.Width = msg.Width
		m.fit()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			m.view.OriginY -= m.view.CellHeight
		case key.Matches(msg, m.keys.Down):
			m.view.OriginY += m.view.CellHeight
		case key.Matches(msg, m.keys.Left):
			m.view.OriginX -= m.view.CellWidth
		case key.Matches(msg, m.keys.Right):
			m.view.OriginX += m.view.CellWidth
		case key.Matches(msg, m.keys.Fit):
			m.fit()
		case key.Matches(msg, m.keys.Redraw):
			m.Display.DrawNotes()
		case key.Matches(msg, m.keys.Save):
			m.save()
		case key.Matches(msg, m.keys.Cancel):
			if m.drag != nil {
				m.drag = nil
				m.fb.status = "drag cancelled"
			}
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
		}

	case tea.MouseMsg:
		m.handleMouse(msg)
	}

	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	col, row := msg.X-labelWidth, msg.Y-rollTop
	x, y := m.view.Pixel(col, row)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || m.drag != nil {
			return
		}
		if b := m.blockAt(col, row); b != nil {
			m.drag = display.StartDrag(m.Surface, b.Element, x, y)
			m.drag.Over(x, y)
			m.dragX = x
			debug.Log("tui", "drag start block %d at col=%d row=%d", b.ID, col, row)
		}

	case tea.MouseActionMotion:
		if m.drag != nil {
			m.drag.Over(x, y)
			m.dragX = x
		}

	case tea.MouseActionRelease:
		if m.drag == nil {
			return
		}
		drag := m.drag
		m.drag = nil
		if !drag.Drop(x, y) {
			m.fb.status = "drop rejected"
			return
		}
		m.Display.DrawNotes()
	}
}

// blockAt returns the block drawn in a roll cell
func (m *Model) blockAt(col, row int) *display.NoteBlock {
	if !m.view.Contains(col, row) {
		return nil
	}
	blocks := m.Display.Blocks()
	idx := m.roll(blocks).Grid()[row][col]
	if idx < 0 || idx >= len(blocks) {
		return nil
	}
	return blocks[idx]
}

// fit scrolls so the drawn notes are vertically centred and beat 0 is at the left edge
func (m *Model) fit() {
	blocks := m.Display.Blocks()
	pitchAxis, _ := m.Display.Scaler().Axis(display.UnitPitch)

	var centre float64
	if len(blocks) == 0 {
		centre = m.Display.Scaler().OutputValuesFor(display.Values{display.UnitPitch: 60})[display.UnitPitch]
	} else {
		top, bottom := math.Inf(1), math.Inf(-1)
		for _, b := range blocks {
			top = math.Min(top, b.Element.Rect.Top)
			bottom = math.Max(bottom, b.Element.Rect.Top+b.Element.Rect.Height)
		}
		centre = (top + bottom) / 2
	}

	originY := centre - float64(m.view.Rows)*m.view.CellHeight/2
	// keep row edges on semitone edges
	m.view.OriginY = pitchAxis.Zero + math.Round((originY-pitchAxis.Zero)/m.view.CellHeight)*m.view.CellHeight
	m.view.OriginX = 0
}

func (m *Model) save() {
	if m.savePath == "" {
		m.fb.err = fmt.Errorf("no file to save to (use --save)")
		return
	}
	if err := m.Seq.SaveSMF(m.savePath); err != nil {
		m.fb.err = err
		return
	}
	m.fb.err = nil
	m.fb.status = "saved " + m.savePath
}

func (m Model) roll(blocks []*display.NoteBlock) widgets.Roll {
	var dragged *display.Element
	if m.drag != nil {
		dragged = m.drag.Source()
	}

	rb := make([]widgets.RollBlock, 0, len(blocks))
	for _, b := range blocks {
		glyph := m.Theme.Symbols.Block
		if b.Element == dragged {
			glyph = m.Theme.Symbols.Dragged
		}
		rb = append(rb, widgets.RollBlock{
			Rect:  b.Element.Rect,
			Fill:  b.Element.Style("background-color"),
			Glyph: glyph,
		})
	}

	// ghost of the dragged block where a drop would put it
	if m.drag != nil && m.drag.Accepted() {
		ghost := m.drag.Source().Rect
		ghost.Left = m.dragX
		rb = append(rb, widgets.RollBlock{
			Rect:  ghost,
			Fill:  string(m.Theme.Active()),
			Glyph: m.Theme.Symbols.DropGhost,
		})
	}

	return widgets.Roll{
		View:   m.view,
		Blocks: rb,
		Empty:  m.Theme.Symbols.Empty,
		Line:   m.Theme.Symbols.BeatLine,
		IsLine: func(col int) bool {
			x, _ := m.view.Pixel(col, 0)
			beat := m.Display.BeatAt(x)
			return math.Abs(beat-math.Round(beat)) < 1e-9
		},
		Label: func(row int) string {
			_, y := m.view.Pixel(0, row)
			pitch := int(math.Floor(m.Display.PitchAt(y + m.view.CellHeight/2)))
			if pitch < 0 || pitch > 127 {
				return strings.Repeat(" ", labelWidth)
			}
			return fmt.Sprintf("%-*s", labelWidth, noteName(pitch))
		},
		Muted: m.Theme.Muted(),
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	errStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())

	w := m.Display.Window()
	blocks := m.Display.Blocks()
	header := headerStyle.Render(fmt.Sprintf("noteroll  %d/%d notes  beats [%g, %g)",
		len(blocks), m.Seq.Len(), w.StartBeat, w.EndBeat))

	var status string
	switch {
	case m.drag != nil && m.drag.Accepted():
		status = dimStyle.Render(fmt.Sprintf("drop at beat %g", m.Display.BeatAt(m.dragX)))
	case m.drag != nil:
		status = errStyle.Render("drop not allowed here")
	case m.fb.err != nil:
		status = errStyle.Render(m.fb.err.Error())
	default:
		status = dimStyle.Render(m.fb.status)
	}

	var out strings.Builder
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(m.roll(blocks).Render())
	out.WriteString("\n\n")
	out.WriteString(status)
	out.WriteString("\n")
	if m.showHelp {
		out.WriteString(widgets.RenderHelp(m.keys.sections(), headerStyle, dimStyle))
	} else {
		out.WriteString(m.help.View(m.keys))
	}

	return out.String()
}

// Run starts the piano roll in the alternate screen with mouse tracking
func Run(m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
