package grid

import (
	"fmt"
	"sync"
)

// Config holds the grid sizing parameters. The horizontal unit is a
// percentage of the measured container width, clamped into a pixel
// range; the vertical unit is a fixed pixel height.
type Config struct {
	GridSizePercent float64 `json:"gridSizePercent"`
	MinGridSizePx   float64 `json:"minGridSizePx"`
	MaxGridSizePx   float64 `json:"maxGridSizePx"`
	RowHeightPx     float64 `json:"rowHeightPx"`
}

// DefaultConfig returns the standard grid sizing.
func DefaultConfig() Config {
	return Config{
		GridSizePercent: 2,
		MinGridSizePx:   10,
		MaxGridSizePx:   50,
		RowHeightPx:     20,
	}
}

type cacheEntry struct {
	containerWidth float64
	pixelsPerUnit  float64
}

// Transform converts between pixels and grid units. It caches one
// scale factor per canvas so that with N items on a canvas a resize
// costs one cache write, not N container measurements. The transform
// never measures anything itself: the rendering layer is the single
// writer and must call SetGridSizeCache after every measurement, and
// before any read that follows a width change.
//
// The cache is guarded by its own lock so measurement writes and
// conversion reads can come from different goroutines.
type Transform struct {
	rowHeight float64

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

// NewTransform creates a Transform with the given vertical unit size.
func NewTransform(cfg Config) *Transform {
	return &Transform{
		rowHeight: cfg.RowHeightPx,
		cache:     make(map[string]cacheEntry),
	}
}

// SetGridSizeCache records the measured container width for a canvas
// and derives its horizontal pixels-per-unit scale. This is the only
// write path into the cache.
func (t *Transform) SetGridSizeCache(canvasID string, measuredWidthPx float64, cfg Config) {
	ppu := measuredWidthPx * cfg.GridSizePercent / 100
	if ppu < cfg.MinGridSizePx {
		ppu = cfg.MinGridSizePx
	}
	if ppu > cfg.MaxGridSizePx {
		ppu = cfg.MaxGridSizePx
	}
	t.mu.Lock()
	t.cache[canvasID] = cacheEntry{containerWidth: measuredWidthPx, pixelsPerUnit: ppu}
	t.mu.Unlock()
}

// InvalidateCanvas drops the cached entry for a canvas. Called when a
// canvas is removed or its container unmounts.
func (t *Transform) InvalidateCanvas(canvasID string) {
	t.mu.Lock()
	delete(t.cache, canvasID)
	t.mu.Unlock()
}

// Reset drops every cached entry. Called on import: the cache is never
// persisted and must be rebuilt from fresh measurements.
func (t *Transform) Reset() {
	t.mu.Lock()
	t.cache = make(map[string]cacheEntry)
	t.mu.Unlock()
}

// PixelsPerUnitX returns the cached horizontal scale for a canvas.
func (t *Transform) PixelsPerUnitX(canvasID string) (float64, error) {
	t.mu.RLock()
	e, ok := t.cache[canvasID]
	t.mu.RUnlock()
	if !ok {
		return 0, fmt.Errorf("no grid size cached for canvas %s", canvasID)
	}
	return e.pixelsPerUnit, nil
}

// ContainerWidth returns the container width the canvas's cache entry
// was computed from.
func (t *Transform) ContainerWidth(canvasID string) (float64, error) {
	t.mu.RLock()
	e, ok := t.cache[canvasID]
	t.mu.RUnlock()
	if !ok {
		return 0, fmt.Errorf("no grid size cached for canvas %s", canvasID)
	}
	return e.containerWidth, nil
}

// GridToPixelsX converts horizontal grid units to pixels for a canvas.
func (t *Transform) GridToPixelsX(canvasID string, units float64) (float64, error) {
	ppu, err := t.PixelsPerUnitX(canvasID)
	if err != nil {
		return 0, err
	}
	return units * ppu, nil
}

// PixelsToGridX converts horizontal pixels to grid units for a canvas.
func (t *Transform) PixelsToGridX(canvasID string, px float64) (float64, error) {
	ppu, err := t.PixelsPerUnitX(canvasID)
	if err != nil {
		return 0, err
	}
	return px / ppu, nil
}

// GridToPixelsY converts vertical grid units to pixels. The vertical
// unit is fixed and independent of any canvas.
func (t *Transform) GridToPixelsY(units float64) float64 {
	return units * t.rowHeight
}

// PixelsToGridY converts vertical pixels to grid units.
func (t *Transform) PixelsToGridY(px float64) float64 {
	return px / t.rowHeight
}
