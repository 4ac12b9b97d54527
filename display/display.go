// Package display draws a window of notes as draggable blocks on a Surface
// and turns drops back into note moves.
package display

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"go-noteroll/debug"
	"go-noteroll/sequence"
)

var (
	ErrInvalidScalerConfig = errors.New("invalid scaler config")
	ErrUnknownBlockID      = errors.New("unknown block id")
	ErrInvalidPayload      = errors.New("invalid drag payload")
)

// Sequence is the note store the display reads from and asks to move notes
type Sequence interface {
	GetNotes(startBeat, endBeat float64) []*sequence.Note
	MoveNote(note *sequence.Note, newStart float64) error
}

// Window is the half-open beat range that gets drawn
type Window struct {
	StartBeat float64 `json:"startBeat"`
	EndBeat   float64 `json:"endBeat"`
}

// Defaults: 40px per beat, 20px per semitone, pitch 0 at y=400
const (
	DefaultXSize     = 40.0
	DefaultYSize     = 20.0
	DefaultPitchZero = 400.0
	DefaultUnit      = "px"
)

var DefaultWindow = Window{StartBeat: 0, EndBeat: 8}

type options struct {
	xSize     float64
	ySize     float64
	pitchZero float64
	unit      string
	fill      string
	window    Window
	onError   func(error)
}

// Option configures a NoteDisplay
type Option func(*options)

// WithSize sets pixels per beat (x) and per semitone (y). The beat axis
// also starts x pixels in, leaving one beat of gutter.
func WithSize(x, y float64) Option {
	return func(o *options) {
		o.xSize = x
		o.ySize = y
	}
}

func WithPitchZero(y float64) Option {
	return func(o *options) { o.pitchZero = y }
}

func WithUnit(unit string) Option {
	return func(o *options) { o.unit = unit }
}

func WithFill(fill string) Option {
	return func(o *options) { o.fill = fill }
}

func WithWindow(w Window) Option {
	return func(o *options) { o.window = w }
}

// WithErrorHandler receives errors raised inside surface listeners
func WithErrorHandler(fn func(error)) Option {
	return func(o *options) { o.onError = fn }
}

// NoteDisplay renders notes onto a surface and handles drops
type NoteDisplay struct {
	surface Surface
	seq     Sequence
	scaler  *LinearScaler
	ids     *IDAllocator

	unit    string
	fill    string
	window  Window
	onError func(error)

	order  []int
	blocks map[int]*NoteBlock
	notes  map[int]*sequence.Note
}

// New prepares surface for absolutely positioned blocks and registers the
// drag-enter, drag-over and drop listeners on it.
func New(surface Surface, seq Sequence, opts ...Option) (*NoteDisplay, error) {
	o := options{
		xSize:     DefaultXSize,
		ySize:     DefaultYSize,
		pitchZero: DefaultPitchZero,
		unit:      DefaultUnit,
		fill:      DefaultFill,
		window:    DefaultWindow,
	}
	for _, opt := range opts {
		opt(&o)
	}

	scaler, err := NewLinearScaler(map[string]Axis{
		UnitBeat:  {Zero: o.xSize, Scaling: o.xSize},
		UnitPitch: {Zero: o.pitchZero, Scaling: -o.ySize},
	})
	if err != nil {
		return nil, err
	}

	d := &NoteDisplay{
		surface: surface,
		seq:     seq,
		scaler:  scaler,
		ids:     NewIDAllocator(0),
		unit:    o.unit,
		fill:    o.fill,
		window:  o.window,
		onError: o.onError,
		blocks:  make(map[int]*NoteBlock),
		notes:   make(map[int]*sequence.Note),
	}

	surface.SetPosition("relative")
	surface.AddEventListener(DragEnter, d.DragOver)
	surface.AddEventListener(DragOver, d.DragOver)
	surface.AddEventListener(Drop, func(ev *DragEvent) {
		if err := d.Drop(ev); err != nil {
			d.report(err)
		}
	})

	return d, nil
}

// DrawNotes replaces the blocks on the surface with one per note in the window
func (d *NoteDisplay) DrawNotes() {
	for _, id := range d.order {
		d.surface.RemoveChild(d.blocks[id].Element)
	}
	d.order = d.order[:0]
	clear(d.blocks)
	clear(d.notes)

	notes := d.seq.GetNotes(d.window.StartBeat, d.window.EndBeat)
	for _, n := range notes {
		b := NewNoteBlock(d.ids.Next(), d.Geometry(n), d.unit, d.fill)
		d.order = append(d.order, b.ID)
		d.blocks[b.ID] = b
		d.notes[b.ID] = n
		b.DisplayOn(d.surface)
	}

	debug.Log("display", "drew %d notes in [%g, %g)", len(notes), d.window.StartBeat, d.window.EndBeat)
}

// Geometry is the pixel box for a note: the absolute span between its start
// corner and the corner one beat-length right and one semitone up.
func (d *NoteDisplay) Geometry(n *sequence.Note) Rect {
	start := d.scaler.OutputValuesFor(Values{
		UnitBeat:  n.Start,
		UnitPitch: float64(n.Number),
	})
	end := d.scaler.OutputValuesFor(Values{
		UnitBeat:  n.Start + n.Length,
		UnitPitch: float64(n.Number + 1),
	})
	return Rect{
		Top:    math.Min(start[UnitPitch], end[UnitPitch]),
		Left:   math.Min(start[UnitBeat], end[UnitBeat]),
		Height: math.Abs(end[UnitPitch] - start[UnitPitch]),
		Width:  math.Abs(end[UnitBeat] - start[UnitBeat]),
	}
}

// DragOver accepts drags that carry a note id
func (d *NoteDisplay) DragOver(ev *DragEvent) {
	if ev.DataTransfer != nil && ev.DataTransfer.Has(NoteIDType) {
		ev.PreventDefault()
	}
}

// Drop moves the dragged note so it starts at the beat under ev.X
func (d *NoteDisplay) Drop(ev *DragEvent) error {
	if ev.DataTransfer == nil || !ev.DataTransfer.Has(NoteIDType) {
		return fmt.Errorf("%w: no %s entry", ErrInvalidPayload, NoteIDType)
	}
	raw := ev.DataTransfer.GetData(NoteIDType)
	id, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%w: %q is not a block id", ErrInvalidPayload, raw)
	}

	note, ok := d.notes[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownBlockID, id)
	}

	newStart := d.BeatAt(ev.X)
	debug.Log("display", "drop block %d at x=%g -> beat %g", id, ev.X, newStart)
	if err := d.seq.MoveNote(note, newStart); err != nil {
		return fmt.Errorf("move block %d: %w", id, err)
	}
	return nil
}

// BeatAt converts a surface x offset to a beat
func (d *NoteDisplay) BeatAt(x float64) float64 {
	return d.scaler.InputValuesFor(Values{UnitBeat: x})[UnitBeat]
}

// PitchAt converts a surface y offset to a (fractional) pitch
func (d *NoteDisplay) PitchAt(y float64) float64 {
	return d.scaler.InputValuesFor(Values{UnitPitch: y})[UnitPitch]
}

// Blocks returns the blocks of the last render pass in render order
func (d *NoteDisplay) Blocks() []*NoteBlock {
	out := make([]*NoteBlock, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.blocks[id])
	}
	return out
}

// Note returns the note drawn as block id
func (d *NoteDisplay) Note(id int) (*sequence.Note, bool) {
	n, ok := d.notes[id]
	return n, ok
}

func (d *NoteDisplay) Scaler() *LinearScaler {
	return d.scaler
}

func (d *NoteDisplay) Window() Window {
	return d.window
}

func (d *NoteDisplay) report(err error) {
	debug.Log("display", "drop failed: %v", err)
	if d.onError != nil {
		d.onError(err)
	}
}
