package display

// Drag replays the native drag protocol for one gesture on a Container:
// dragstart on the source, dragenter once, dragover on every move, and drop
// only when the last dragover was accepted.
type Drag struct {
	surface  *Container
	source   *Element
	data     *DataTransfer
	entered  bool
	accepted bool
}

// StartDrag dispatches dragstart on source. Returns nil if source is not draggable.
func StartDrag(surface *Container, source *Element, x, y float64) *Drag {
	if source == nil || !source.Draggable {
		return nil
	}
	d := &Drag{
		surface: surface,
		source:  source,
		data:    NewDataTransfer(),
	}
	source.Dispatch(&DragEvent{Type: DragStart, X: x, Y: y, DataTransfer: d.data})
	return d
}

// Over moves the drag to (x, y) and reports whether the surface accepts a drop there
func (d *Drag) Over(x, y float64) bool {
	if !d.entered {
		d.entered = true
		d.surface.Dispatch(&DragEvent{Type: DragEnter, X: x, Y: y, DataTransfer: d.data})
	}
	ev := &DragEvent{Type: DragOver, X: x, Y: y, DataTransfer: d.data}
	d.surface.Dispatch(ev)
	d.accepted = ev.DefaultPrevented()
	return d.accepted
}

// Drop releases at (x, y). Returns false when the surface rejected the drop.
func (d *Drag) Drop(x, y float64) bool {
	if !d.Over(x, y) {
		return false
	}
	d.surface.Dispatch(&DragEvent{Type: Drop, X: x, Y: y, DataTransfer: d.data})
	return true
}

func (d *Drag) Source() *Element {
	return d.source
}

func (d *Drag) Data() *DataTransfer {
	return d.data
}

func (d *Drag) Accepted() bool {
	return d.accepted
}
