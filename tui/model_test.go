package tui

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"go-noteroll/sequence"
	"go-noteroll/theme"
)

func newTestModel(t *testing.T, opts Options) (Model, *sequence.Sequence) {
	t.Helper()
	seq := sequence.Demo()
	m, err := NewModel(seq, theme.New(theme.Plasma()), opts)
	if err != nil {
		t.Fatalf("NewModel() error = %v", err)
	}
	return m, seq
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// mouse converts a roll cell to terminal coordinates
func mouse(col, row int, action tea.MouseAction) tea.MouseMsg {
	return tea.MouseMsg{
		X:      col + labelWidth,
		Y:      row + rollTop,
		Action: action,
		Button: tea.MouseButtonLeft,
	}
}

func noteAt(seq *sequence.Sequence, pitch int) *sequence.Note {
	for _, n := range seq.All() {
		if n.Number == pitch {
			return n
		}
	}
	return nil
}

func TestNoteName(t *testing.T) {
	tests := map[int]string{60: "C5", 64: "E5", 61: "C#5", 0: "C0", -1: "?"}
	for pitch, want := range tests {
		if got := noteName(pitch); got != want {
			t.Errorf("noteName(%d) = %q, want %q", pitch, got, want)
		}
	}
}

func TestFitShowsEveryBlock(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	for _, b := range m.Display.Blocks() {
		col, row := m.view.Cell(b.Element.Rect.Left, b.Element.Rect.Top)
		if !m.view.Contains(col, row) {
			t.Errorf("block %d at cell (%d, %d) is off screen", b.ID, col, row)
		}
	}
}

func TestMouseDragMovesNote(t *testing.T) {
	m, seq := newTestModel(t, Options{})

	// second block is E5 at beat 2
	src := m.Display.Blocks()[1]
	col, row := m.view.Cell(src.Element.Rect.Left, src.Element.Rect.Top)

	m = update(m, mouse(col, row, tea.MouseActionPress))
	if m.drag == nil {
		t.Fatal("press on a block did not start a drag")
	}
	m = update(m, mouse(18, row, tea.MouseActionMotion))
	if !strings.Contains(m.View(), "drop at beat 3.5") {
		t.Error("status does not preview the drop beat")
	}

	// column 20 is x=200, beat 4
	m = update(m, mouse(20, row, tea.MouseActionRelease))
	if m.drag != nil {
		t.Error("drag still active after release")
	}
	if n := noteAt(seq, 64); n.Start != 4 {
		t.Errorf("E5 start = %g, want 4", n.Start)
	}
	if !strings.Contains(m.View(), "moved E5 to beat 4") {
		t.Errorf("status missing move message:\n%s", m.View())
	}
	if got := m.Display.Blocks()[0].ID; got != 3 {
		t.Errorf("first block id after redraw = %d, want 3", got)
	}
}

func TestMouseDropBeforeBeatZero(t *testing.T) {
	m, seq := newTestModel(t, Options{})
	src := m.Display.Blocks()[0]
	col, row := m.view.Cell(src.Element.Rect.Left, src.Element.Rect.Top)

	m = update(m, mouse(col, row, tea.MouseActionPress))
	m = update(m, mouse(0, row, tea.MouseActionRelease)) // x=0 is beat -1

	if n := noteAt(seq, 60); n.Start != 0 {
		t.Errorf("C5 start = %g, want unchanged 0", n.Start)
	}
	if m.fb.err == nil {
		t.Error("failed drop was not reported")
	}
}

func TestPressOnEmptyCellDoesNothing(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	m = update(m, mouse(m.view.Cols-1, 0, tea.MouseActionPress))
	if m.drag != nil {
		t.Error("press on an empty cell started a drag")
	}
}

func TestCancelDrag(t *testing.T) {
	m, seq := newTestModel(t, Options{})
	src := m.Display.Blocks()[1]
	col, row := m.view.Cell(src.Element.Rect.Left, src.Element.Rect.Top)

	m = update(m, mouse(col, row, tea.MouseActionPress))
	m = update(m, tea.KeyMsg{Type: tea.KeyEsc})
	m = update(m, mouse(20, row, tea.MouseActionRelease))

	if n := noteAt(seq, 64); n.Start != 2 {
		t.Errorf("E5 start = %g after cancelled drag, want 2", n.Start)
	}
}

func TestScrollKeys(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	x, y := m.view.OriginX, m.view.OriginY

	m = update(m, runeKey('l'))
	m = update(m, runeKey('k'))
	if m.view.OriginX != x+10 || m.view.OriginY != y-20 {
		t.Errorf("origin = (%g, %g), want (%g, %g)", m.view.OriginX, m.view.OriginY, x+10, y-20)
	}

	m = update(m, runeKey('f'))
	if m.view.OriginX != x || m.view.OriginY != y {
		t.Errorf("fit origin = (%g, %g), want (%g, %g)", m.view.OriginX, m.view.OriginY, x, y)
	}
}

func TestSave(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	m = update(m, runeKey('s'))
	if m.fb.err == nil {
		t.Error("save with no path did not report an error")
	}

	path := filepath.Join(t.TempDir(), "out.mid")
	m, _ = newTestModel(t, Options{SavePath: path})
	m = update(m, runeKey('s'))
	if m.fb.err != nil {
		t.Fatalf("save error = %v", m.fb.err)
	}
	if _, err := sequence.LoadSMF(path); err != nil {
		t.Errorf("LoadSMF(saved) error = %v", err)
	}
}

func TestWindowResize(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	m = update(m, tea.WindowSizeMsg{Width: 85, Height: 30})
	if m.view.Cols != 80 || m.view.Rows != 24 {
		t.Errorf("view = %dx%d, want 80x24", m.view.Cols, m.view.Rows)
	}
	lines := strings.Split(m.View(), "\n")
	if len(lines) < 24+rollTop {
		t.Errorf("View() has %d lines, want at least %d", len(lines), 24+rollTop)
	}
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	next, cmd := m.Update(runeKey('q'))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
	if next.View() != "" {
		t.Error("View() not empty after quit")
	}
}

func TestDragShowsGhost(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	blocks := m.Display.Blocks()
	src := blocks[1]
	col, row := m.view.Cell(src.Element.Rect.Left, src.Element.Rect.Top)

	m = update(m, mouse(col, row, tea.MouseActionPress))
	if !m.drag.Accepted() {
		t.Fatal("drag of a note block was not accepted")
	}
	m = update(m, mouse(30, row, tea.MouseActionMotion))

	roll := m.roll(blocks)
	if len(roll.Blocks) != len(blocks)+1 {
		t.Fatalf("roll has %d blocks, want %d plus a ghost", len(roll.Blocks), len(blocks))
	}
	ghost := roll.Blocks[len(blocks)]
	if ghost.Glyph != m.Theme.Symbols.DropGhost || ghost.Rect.Left != 300 {
		t.Errorf("ghost = %+v, want DropGhost at left 300", ghost)
	}
	grid := roll.Grid()
	if grid[row][30] != len(blocks) || grid[row][col] != 1 {
		t.Errorf("grid row %d: ghost cell %d, source cell %d", row, grid[row][30], grid[row][col])
	}

	m = update(m, tea.KeyMsg{Type: tea.KeyEsc})
	if got := len(m.roll(blocks).Blocks); got != len(blocks) {
		t.Errorf("ghost still drawn after cancel: %d blocks", got)
	}
}
