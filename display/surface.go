package display

import (
	"slices"
)

// EventType names a drag-and-drop notification
type EventType string

const (
	DragStart EventType = "dragstart"
	DragEnter EventType = "dragenter"
	DragOver  EventType = "dragover"
	Drop      EventType = "drop"
)

// Listener handles one dispatched event
type Listener func(ev *DragEvent)

// Surface is a container that positions child elements and receives drag notifications
type Surface interface {
	SetPosition(position string)
	AddEventListener(t EventType, l Listener)
	AppendChild(el *Element)
	RemoveChild(el *Element)
}

// DataTransfer is the typed payload carried by a drag gesture
type DataTransfer struct {
	types []string
	data  map[string]string
}

func NewDataTransfer() *DataTransfer {
	return &DataTransfer{data: make(map[string]string)}
}

// SetData stores value under format, keeping first-set order for Types
func (d *DataTransfer) SetData(format, value string) {
	if _, ok := d.data[format]; !ok {
		d.types = append(d.types, format)
	}
	d.data[format] = value
}

// GetData returns the value for format, or "" when absent
func (d *DataTransfer) GetData(format string) string {
	return d.data[format]
}

// Types lists the formats present in the payload
func (d *DataTransfer) Types() []string {
	return slices.Clone(d.types)
}

func (d *DataTransfer) Has(format string) bool {
	_, ok := d.data[format]
	return ok
}

// DragEvent is delivered to listeners. X and Y are pixels relative to the surface.
type DragEvent struct {
	Type         EventType
	X, Y         float64
	DataTransfer *DataTransfer

	defaultPrevented bool
}

// PreventDefault marks the event as handled; on dragover it permits the drop
func (e *DragEvent) PreventDefault() {
	e.defaultPrevented = true
}

func (e *DragEvent) DefaultPrevented() bool {
	return e.defaultPrevented
}

// Rect is an element's box in its own unit
type Rect struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Height float64 `json:"height"`
	Width  float64 `json:"width"`
}

// Contains reports whether (x, y) falls inside the half-open box
func (r Rect) Contains(x, y float64) bool {
	return x >= r.Left && x < r.Left+r.Width && y >= r.Top && y < r.Top+r.Height
}

// Element is a visual node: a box, inline style properties and listeners
type Element struct {
	Rect      Rect
	Unit      string
	Draggable bool

	style     map[string]string
	listeners map[EventType][]Listener
}

func NewElement() *Element {
	return &Element{
		style:     make(map[string]string),
		listeners: make(map[EventType][]Listener),
	}
}

func (e *Element) SetStyle(prop, value string) {
	e.style[prop] = value
}

func (e *Element) Style(prop string) string {
	return e.style[prop]
}

// Styles returns a copy of all style properties
func (e *Element) Styles() map[string]string {
	out := make(map[string]string, len(e.style))
	for k, v := range e.style {
		out[k] = v
	}
	return out
}

func (e *Element) AddEventListener(t EventType, l Listener) {
	e.listeners[t] = append(e.listeners[t], l)
}

// Dispatch runs every listener registered for ev.Type in registration order
func (e *Element) Dispatch(ev *DragEvent) {
	for _, l := range e.listeners[ev.Type] {
		l(ev)
	}
}

// Container is an in-memory Surface. Children keep mount order; later
// children are drawn over earlier ones.
type Container struct {
	*Element
	children []*Element
}

func NewContainer() *Container {
	return &Container{Element: NewElement()}
}

func (c *Container) SetPosition(position string) {
	c.SetStyle("position", position)
}

func (c *Container) AppendChild(el *Element) {
	c.children = append(c.children, el)
}

// RemoveChild detaches el; unknown elements are ignored
func (c *Container) RemoveChild(el *Element) {
	if i := slices.Index(c.children, el); i >= 0 {
		c.children = slices.Delete(c.children, i, i+1)
	}
}

// Children returns the mounted elements in mount order
func (c *Container) Children() []*Element {
	return slices.Clone(c.children)
}

// ElementAt returns the topmost draggable child under (x, y), or nil
func (c *Container) ElementAt(x, y float64) *Element {
	for i := len(c.children) - 1; i >= 0; i-- {
		el := c.children[i]
		if el.Draggable && el.Rect.Contains(x, y) {
			return el
		}
	}
	return nil
}
