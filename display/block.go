package display

import (
	"strconv"
)

// NoteIDType is the payload key a dragged block stores its id under
const NoteIDType = "application/note-id"

// DefaultFill is the block colour when none is configured
const DefaultFill = "#5078c8"

// IDAllocator hands out block ids starting at Start, one per call, never reused
type IDAllocator struct {
	next int
}

func NewIDAllocator(start int) *IDAllocator {
	return &IDAllocator{next: start}
}

// Next returns the current id and advances
func (a *IDAllocator) Next() int {
	id := a.next
	a.next++
	return id
}

// Peek returns the id the next call to Next will return
func (a *IDAllocator) Peek() int {
	return a.next
}

// NoteBlock is the rectangle for one note
type NoteBlock struct {
	ID      int
	Element *Element
}

// NewNoteBlock builds the block element. It does not touch any surface;
// call DisplayOn to mount it.
func NewNoteBlock(id int, geom Rect, unit, fill string) *NoteBlock {
	if fill == "" {
		fill = DefaultFill
	}

	el := NewElement()
	el.Rect = geom
	el.Unit = unit
	el.SetStyle("position", "absolute")
	el.SetStyle("height", formatLength(geom.Height, unit))
	el.SetStyle("width", formatLength(geom.Width, unit))
	el.SetStyle("left", formatLength(geom.Left, unit))
	el.SetStyle("top", formatLength(geom.Top, unit))
	el.SetStyle("background-color", fill)
	el.Draggable = true

	b := &NoteBlock{ID: id, Element: el}
	el.AddEventListener(DragStart, func(ev *DragEvent) {
		ev.DataTransfer.SetData(NoteIDType, strconv.Itoa(b.ID))
	})
	return b
}

// DisplayOn mounts the block on surface
func (b *NoteBlock) DisplayOn(surface Surface) {
	surface.AppendChild(b.Element)
}

func formatLength(v float64, unit string) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + unit
}
