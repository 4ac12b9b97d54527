package display

import (
	"errors"
	"testing"

	"go-noteroll/sequence"
)

type move struct {
	note     *sequence.Note
	newStart float64
}

// fakeSequence records GetNotes windows and MoveNote calls
type fakeSequence struct {
	notes   []*sequence.Note
	windows [][2]float64
	moves   []move
	moveErr error
}

func (f *fakeSequence) GetNotes(start, end float64) []*sequence.Note {
	f.windows = append(f.windows, [2]float64{start, end})
	var out []*sequence.Note
	for _, n := range f.notes {
		if n.Overlaps(start, end) {
			out = append(out, n)
		}
	}
	return out
}

func (f *fakeSequence) MoveNote(n *sequence.Note, newStart float64) error {
	f.moves = append(f.moves, move{n, newStart})
	return f.moveErr
}

func threeNotes() *fakeSequence {
	return &fakeSequence{notes: []*sequence.Note{
		{Start: 0, Length: 2, Number: 60},
		{Start: 2, Length: 1, Number: 64},
		{Start: 5, Length: 1, Number: 67},
		{Start: 9, Length: 1, Number: 72}, // outside [0, 8)
	}}
}

func newTestDisplay(t *testing.T, seq Sequence, opts ...Option) (*NoteDisplay, *Container) {
	t.Helper()
	c := NewContainer()
	d, err := New(c, seq, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return d, c
}

func dropEvent(id string, x float64) *DragEvent {
	dt := NewDataTransfer()
	dt.SetData(NoteIDType, id)
	return &DragEvent{Type: Drop, X: x, DataTransfer: dt}
}

func TestNewPreparesSurface(t *testing.T) {
	_, c := newTestDisplay(t, threeNotes())
	if got := c.Style("position"); got != "relative" {
		t.Errorf("surface position = %q, want relative", got)
	}
}

func TestNewRejectsZeroSize(t *testing.T) {
	_, err := New(NewContainer(), threeNotes(), WithSize(0, 20))
	if !errors.Is(err, ErrInvalidScalerConfig) {
		t.Errorf("New(xSize=0) error = %v, want ErrInvalidScalerConfig", err)
	}
}

func TestGeometry(t *testing.T) {
	d, _ := newTestDisplay(t, threeNotes())
	got := d.Geometry(&sequence.Note{Start: 0, Length: 2, Number: 60})
	want := Rect{Top: -820, Left: 40, Height: 20, Width: 80}
	if got != want {
		t.Errorf("Geometry() = %+v, want %+v", got, want)
	}
}

func TestDrawNotes(t *testing.T) {
	seq := threeNotes()
	d, c := newTestDisplay(t, seq)
	d.DrawNotes()

	if len(seq.windows) != 1 || seq.windows[0] != [2]float64{0, 8} {
		t.Errorf("GetNotes windows = %v, want [[0 8]]", seq.windows)
	}

	blocks := d.Blocks()
	if len(blocks) != 3 {
		t.Fatalf("Blocks() = %d, want 3", len(blocks))
	}
	children := c.Children()
	for i, b := range blocks {
		if b.ID != i {
			t.Errorf("block %d ID = %d", i, b.ID)
		}
		if children[i] != b.Element {
			t.Errorf("child %d is not block %d", i, b.ID)
		}
		n, ok := d.Note(b.ID)
		if !ok || n != seq.notes[i] {
			t.Errorf("Note(%d) = %v, want note %d", b.ID, n, i)
		}
	}

	if got := blocks[1].Element.Style("left"); got != "120px" {
		t.Errorf("second block left = %q, want 120px", got)
	}
}

func TestDrawNotesReplacesPreviousPass(t *testing.T) {
	d, c := newTestDisplay(t, threeNotes())
	d.DrawNotes()
	d.DrawNotes()

	if got := len(c.Children()); got != 3 {
		t.Errorf("surface has %d children after two passes, want 3", got)
	}
	blocks := d.Blocks()
	if len(blocks) != 3 || blocks[0].ID != 3 {
		t.Fatalf("second pass blocks = %d, first id %d; want 3 blocks from id 3", len(blocks), blocks[0].ID)
	}
	if _, ok := d.Note(0); ok {
		t.Error("id 0 from the first pass is still mapped")
	}
}

func TestDragOverGating(t *testing.T) {
	d, _ := newTestDisplay(t, threeNotes())

	with := NewDataTransfer()
	with.SetData("text/plain", "hi")
	with.SetData(NoteIDType, "0")
	ev := &DragEvent{Type: DragOver, DataTransfer: with}
	d.DragOver(ev)
	if !ev.DefaultPrevented() {
		t.Error("dragover with note id was not accepted")
	}

	without := NewDataTransfer()
	without.SetData("text/plain", "hi")
	ev = &DragEvent{Type: DragOver, DataTransfer: without}
	d.DragOver(ev)
	if ev.DefaultPrevented() {
		t.Error("dragover without note id was accepted")
	}
}

func TestDropMovesNote(t *testing.T) {
	seq := threeNotes()
	d, _ := newTestDisplay(t, seq)
	d.DrawNotes()

	if err := d.Drop(dropEvent("1", 200)); err != nil {
		t.Fatalf("Drop() error = %v", err)
	}
	if len(seq.moves) != 1 {
		t.Fatalf("MoveNote called %d times, want 1", len(seq.moves))
	}
	if seq.moves[0].note != seq.notes[1] || seq.moves[0].newStart != 4 {
		t.Errorf("MoveNote(%v, %g), want second note at 4", seq.moves[0].note, seq.moves[0].newStart)
	}
}

func TestDropErrors(t *testing.T) {
	tests := []struct {
		name string
		ev   *DragEvent
		want error
	}{
		{"never rendered id", dropEvent("99", 200), ErrUnknownBlockID},
		{"negative id", dropEvent("-1", 200), ErrUnknownBlockID},
		{"not a number", dropEvent("abc", 200), ErrInvalidPayload},
		{"empty id", dropEvent("", 200), ErrInvalidPayload},
		{"no payload entry", &DragEvent{Type: Drop, X: 200, DataTransfer: NewDataTransfer()}, ErrInvalidPayload},
		{"no data transfer", &DragEvent{Type: Drop, X: 200}, ErrInvalidPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq := threeNotes()
			d, _ := newTestDisplay(t, seq)
			d.DrawNotes()

			err := d.Drop(tt.ev)
			if !errors.Is(err, tt.want) {
				t.Errorf("Drop() error = %v, want %v", err, tt.want)
			}
			if len(seq.moves) != 0 {
				t.Errorf("MoveNote called %d times, want 0", len(seq.moves))
			}
		})
	}
}

func TestDropStaleIDAfterRedraw(t *testing.T) {
	seq := threeNotes()
	d, _ := newTestDisplay(t, seq)
	d.DrawNotes()
	d.DrawNotes()

	if err := d.Drop(dropEvent("0", 200)); !errors.Is(err, ErrUnknownBlockID) {
		t.Errorf("Drop(stale id) error = %v, want ErrUnknownBlockID", err)
	}
}

func TestDropWrapsSequenceError(t *testing.T) {
	seq := threeNotes()
	seq.moveErr = sequence.ErrNegativeStart
	d, _ := newTestDisplay(t, seq)
	d.DrawNotes()

	if err := d.Drop(dropEvent("0", 0)); !errors.Is(err, sequence.ErrNegativeStart) {
		t.Errorf("Drop() error = %v, want wrapped ErrNegativeStart", err)
	}
}

func TestSurfaceListeners(t *testing.T) {
	seq := threeNotes()
	var reported []error
	_, c := newTestDisplay(t, seq, WithErrorHandler(func(err error) {
		reported = append(reported, err)
	}))

	// listeners are on the surface, so the display is reachable only through events
	c.Dispatch(dropEvent("5", 200))
	if len(reported) != 1 || !errors.Is(reported[0], ErrUnknownBlockID) {
		t.Errorf("reported = %v, want one ErrUnknownBlockID", reported)
	}
}

func TestDragProtocol(t *testing.T) {
	seq := threeNotes()
	d, c := newTestDisplay(t, seq)
	d.DrawNotes()

	src := c.ElementAt(130, -890) // second note: left 120, top -900
	if src != d.Blocks()[1].Element {
		t.Fatalf("ElementAt() = %v, want second block", src)
	}

	drag := StartDrag(c, src, 130, -890)
	if got := drag.Data().GetData(NoteIDType); got != "1" {
		t.Errorf("payload = %q, want \"1\"", got)
	}
	if !drag.Over(150, -890) {
		t.Error("Over() rejected a note drag")
	}
	if !drag.Drop(200, -890) {
		t.Fatal("Drop() was rejected")
	}
	if len(seq.moves) != 1 || seq.moves[0].note != seq.notes[1] || seq.moves[0].newStart != 4 {
		t.Errorf("moves = %+v, want second note to beat 4", seq.moves)
	}
}

func TestDragWithoutNoteIDIsRejected(t *testing.T) {
	seq := threeNotes()
	d, c := newTestDisplay(t, seq)
	d.DrawNotes()

	// an element with no dragstart listener puts nothing in the payload
	el := NewElement()
	el.Draggable = true
	drag := StartDrag(c, el, 0, 0)
	if drag.Drop(200, 0) {
		t.Error("Drop() accepted a drag with no note id")
	}
	if len(seq.moves) != 0 {
		t.Errorf("MoveNote called %d times, want 0", len(seq.moves))
	}
}

func TestWiredSizes(t *testing.T) {
	d, _ := newTestDisplay(t, threeNotes(), WithSize(10, 5), WithPitchZero(0))
	got := d.Geometry(&sequence.Note{Start: 1, Length: 1, Number: 2})
	want := Rect{Top: -15, Left: 20, Height: 5, Width: 10}
	if got != want {
		t.Errorf("Geometry() = %+v, want %+v", got, want)
	}
	if b := d.BeatAt(30); b != 2 {
		t.Errorf("BeatAt(30) = %g, want 2", b)
	}
}
