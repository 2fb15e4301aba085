package domain

// Viewport selects which layout of an item is being edited or rendered.
type Viewport string

const (
	ViewportDesktop Viewport = "desktop"
	ViewportMobile  Viewport = "mobile"
)

// Valid reports whether v is a known viewport.
func (v Viewport) Valid() bool {
	return v == ViewportDesktop || v == ViewportMobile
}

// Layout is an item's geometry in grid units. X/Y are non-negative,
// Width/Height are positive. The horizontal axis spans 0..100 units
// (the canvas is normalized to 100 units = 100% of its width); the
// vertical axis is an unbounded scroll.
type Layout struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// MobileLayout carries the mobile geometry of an item. When Customized
// is false the coordinates are not authoritative: renderers derive a
// stacked full-width layout instead, and nothing here is treated as
// real geometry.
type MobileLayout struct {
	Layout
	Customized bool `json:"customized"`
}

// Layouts holds the per-viewport geometry of an item. Desktop is
// always fully defined.
type Layouts struct {
	Desktop Layout       `json:"desktop"`
	Mobile  MobileLayout `json:"mobile"`
}

// Config is the opaque per-item configuration bag. The engine never
// interprets values; the component registry validates keys against the
// item type's schema before they are stored.
type Config map[string]any

// Clone returns a copy that shares no mutable state with c.
// Values are copied one level deep, which is sufficient for
// schema-validated scalar/string/list values.
func (c Config) Clone() Config {
	if c == nil {
		return nil
	}
	out := make(Config, len(c))
	for k, v := range c {
		switch vv := v.(type) {
		case []any:
			out[k] = append([]any(nil), vv...)
		case map[string]any:
			m := make(map[string]any, len(vv))
			for mk, mv := range vv {
				m[mk] = mv
			}
			out[k] = m
		default:
			out[k] = v
		}
	}
	return out
}

// GridItem is one placed element on a canvas.
//
// Invariants maintained by the engine: ID is globally unique across
// all canvases, CanvasID names exactly the canvas whose item list
// contains the item, and ZIndex was drawn from that canvas's counter.
type GridItem struct {
	ID       string  `json:"id"`
	CanvasID string  `json:"canvasId"`
	Type     string  `json:"type"`
	Name     string  `json:"name"`
	ZIndex   int     `json:"zIndex"`
	Layouts  Layouts `json:"layouts"`
	Config   Config  `json:"config"`
}

// Clone returns a deep copy suitable for command snapshots.
func (g GridItem) Clone() GridItem {
	out := g
	out.Config = g.Config.Clone()
	return out
}

// Layout returns the item's layout for the given viewport. For a
// non-customized mobile viewport the desktop layout is returned, since
// the stored mobile coordinates are not authoritative.
func (g *GridItem) Layout(v Viewport) Layout {
	if v == ViewportMobile && g.Layouts.Mobile.Customized {
		return g.Layouts.Mobile.Layout
	}
	return g.Layouts.Desktop
}

// SetLayout stores l as the item's layout for the given viewport.
// Writing the mobile viewport marks it customized.
func (g *GridItem) SetLayout(v Viewport, l Layout) {
	if v == ViewportMobile {
		g.Layouts.Mobile.Layout = l
		g.Layouts.Mobile.Customized = true
		return
	}
	g.Layouts.Desktop = l
}

// Canvas is an ordered container of items. Item order is the paint
// order baseline; ZIndexCounter only ever increases and is the source
// of every z value assigned on this canvas.
type Canvas struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Items         []GridItem `json:"items"`
	ZIndexCounter int        `json:"zIndexCounter"`
}

// Clone returns a deep copy of the canvas and all contained items.
func (c Canvas) Clone() Canvas {
	out := c
	out.Items = make([]GridItem, len(c.Items))
	for i, it := range c.Items {
		out.Items[i] = it.Clone()
	}
	return out
}

// IndexOf returns the position of the item with the given id, or -1.
func (c *Canvas) IndexOf(itemID string) int {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}
