// Package render draws the blocks mounted on a display surface to an image.
package render

import (
	"fmt"
	"image"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/fogleman/gg"
	"github.com/google/uuid"

	"go-noteroll/display"
)

const (
	margin       = 20.0
	borderRadius = 3.0
)

// DefaultPath returns a fresh file name for a snapshot
func DefaultPath() string {
	return "noteroll-" + uuid.New().String() + ".png"
}

// Image paints every child of surface, in mount order, onto a canvas just
// large enough to hold them plus a margin. Element boxes may have negative
// offsets; the canvas is translated so the top-left block lands at the margin.
func Image(surface *display.Container) image.Image {
	children := surface.Children()
	bounds := extent(children)

	w := int(math.Ceil(bounds.Width + 2*margin))
	h := int(math.Ceil(bounds.Height + 2*margin))
	dc := gg.NewContext(w, h)

	dc.SetRGB(0.08, 0.05, 0.16)
	dc.Clear()
	dc.Translate(margin-bounds.Left, margin-bounds.Top)

	for _, el := range children {
		r := el.Rect
		dc.DrawRoundedRectangle(r.Left, r.Top, r.Width, r.Height, borderRadius)
		red, green, blue := parseHex(el.Style("background-color"))
		dc.SetRGB(red, green, blue)
		dc.FillPreserve()
		dc.SetRGBA(0, 0, 0, 1)
		dc.SetLineWidth(1)
		dc.Stroke()
	}

	return dc.Image()
}

// PNG encodes Image(surface) to w
func PNG(w io.Writer, surface *display.Container) error {
	dc := gg.NewContextForImage(Image(surface))
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// SavePNG writes Image(surface) to path
func SavePNG(path string, surface *display.Container) error {
	dc := gg.NewContextForImage(Image(surface))
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("save png %s: %w", path, err)
	}
	return nil
}

func extent(children []*display.Element) display.Rect {
	if len(children) == 0 {
		return display.Rect{}
	}
	left, top := math.Inf(1), math.Inf(1)
	right, bottom := math.Inf(-1), math.Inf(-1)
	for _, el := range children {
		r := el.Rect
		left = math.Min(left, r.Left)
		top = math.Min(top, r.Top)
		right = math.Max(right, r.Left+r.Width)
		bottom = math.Max(bottom, r.Top+r.Height)
	}
	return display.Rect{Top: top, Left: left, Width: right - left, Height: bottom - top}
}

// parseHex turns "#rrggbb" into 0-1 components; anything else is white
func parseHex(s string) (r, g, b float64) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return 1, 1, 1
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 1, 1, 1
	}
	return float64(v>>16&0xff) / 255, float64(v>>8&0xff) / 255, float64(v&0xff) / 255
}
