package grid

import (
	"gridboard/internal/domain"
)

// CanvasWidthUnits is the normalized horizontal extent of every
// canvas: 100 grid units = 100% of the container width.
const CanvasWidthUnits = 100

// ApplyBoundaryConstraints clamps a proposed placement into the valid
// range for its component definition and the canvas. Size is clamped
// into [MinSize, MaxSize] (falling back to DefaultSize when the
// proposal carries no size), then position is clamped so the item
// stays inside the canvas horizontally. The vertical axis is an
// unbounded scroll, so y is only clamped to be non-negative.
//
// ok is false when placement is infeasible: even at its minimum width
// the item would not fit the canvas.
func ApplyBoundaryConstraints(def domain.ComponentDefinition, proposed domain.Layout) (domain.Layout, bool) {
	w, h := proposed.Width, proposed.Height
	if w <= 0 {
		w = def.DefaultSize.Width
	}
	if h <= 0 {
		h = def.DefaultSize.Height
	}
	w = clamp(w, def.MinSize.Width, def.MaxSize.Width)
	h = clamp(h, def.MinSize.Height, def.MaxSize.Height)

	// Infeasible only when even the minimum width cannot fit.
	if def.MinSize.Width > CanvasWidthUnits {
		return domain.Layout{}, false
	}
	if w > CanvasWidthUnits {
		w = CanvasWidthUnits
	}

	x, y := ConstrainPositionToCanvas(proposed.X, proposed.Y, w, h, CanvasWidthUnits)
	return domain.Layout{X: x, Y: y, Width: w, Height: h}, true
}

// ConstrainPositionToCanvas clamps only the position, keeping the
// given size. Used when a valid size is carried over from another
// canvas and just the drop position needs re-clamping.
func ConstrainPositionToCanvas(x, y, width, _ float64, canvasWidthUnits float64) (float64, float64) {
	maxX := canvasWidthUnits - width
	if maxX < 0 {
		maxX = 0
	}
	if x < 0 {
		x = 0
	}
	if x > maxX {
		x = maxX
	}
	if y < 0 {
		y = 0
	}
	return x, y
}

func clamp(v, lo, hi float64) float64 {
	if lo > 0 && v < lo {
		v = lo
	}
	if hi > 0 && v > hi {
		v = hi
	}
	return v
}
