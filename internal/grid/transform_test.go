package grid_test

import (
	"testing"

	"gridboard/internal/grid"
)

func TestTransform_ResponsiveHorizontalScale(t *testing.T) {
	tr := grid.NewTransform(grid.DefaultConfig())
	tr.SetGridSizeCache("c1", 1000, grid.DefaultConfig())

	ppu, err := tr.PixelsPerUnitX("c1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 1000px × 2% = 20px per unit, inside [10, 50]
	if ppu != 20 {
		t.Fatalf("expected 20 px/unit, got %v", ppu)
	}

	x, err := tr.PixelsToGridX("c1", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if x != 5 {
		t.Errorf("PixelsToGridX(100) = %v, want 5", x)
	}
	px, err := tr.GridToPixelsX("c1", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if px != 200 {
		t.Errorf("GridToPixelsX(10) = %v, want 200", px)
	}
}

func TestTransform_ScaleClamping(t *testing.T) {
	cfg := grid.DefaultConfig()
	tests := []struct {
		name    string
		widthPx float64
		wantPPU float64
	}{
		{"narrow container clamps to min", 200, 10}, // 200×2% = 4 → 10
		{"wide container clamps to max", 10000, 50}, // 10000×2% = 200 → 50
		{"mid container stays unclamped", 1500, 30}, // 1500×2% = 30
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := grid.NewTransform(cfg)
			tr.SetGridSizeCache("c1", tt.widthPx, cfg)
			ppu, err := tr.PixelsPerUnitX("c1")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ppu != tt.wantPPU {
				t.Errorf("ppu = %v, want %v", ppu, tt.wantPPU)
			}
		})
	}
}

func TestTransform_ReadWithoutCacheFails(t *testing.T) {
	tr := grid.NewTransform(grid.DefaultConfig())
	if _, err := tr.PixelsToGridX("missing", 100); err == nil {
		t.Fatal("expected error reading an unprimed cache")
	}
	if _, err := tr.ContainerWidth("missing"); err == nil {
		t.Fatal("expected error reading an unprimed container width")
	}
}

func TestTransform_ContainerWidthRoundTrip(t *testing.T) {
	tr := grid.NewTransform(grid.DefaultConfig())
	tr.SetGridSizeCache("c1", 1234, grid.DefaultConfig())
	w, err := tr.ContainerWidth("c1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w != 1234 {
		t.Errorf("ContainerWidth = %v, want the measured 1234", w)
	}
}

func TestTransform_CacheIdempotence(t *testing.T) {
	tr := grid.NewTransform(grid.DefaultConfig())
	tr.SetGridSizeCache("c1", 1234, grid.DefaultConfig())

	first, err := tr.GridToPixelsX("c1", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		got, err := tr.GridToPixelsX("c1", 7)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != first {
			t.Fatalf("read %d diverged: %v != %v", i, got, first)
		}
	}

	// A new measurement is the only thing that changes the result.
	tr.SetGridSizeCache("c1", 2000, grid.DefaultConfig())
	changed, _ := tr.GridToPixelsX("c1", 7)
	if changed == first {
		t.Error("expected result to change after cache refresh")
	}
}

func TestTransform_VerticalAxisIsFixed(t *testing.T) {
	tr := grid.NewTransform(grid.DefaultConfig())
	// No canvas cache needed: the vertical unit is constant.
	if got := tr.GridToPixelsY(6); got != 120 {
		t.Errorf("GridToPixelsY(6) = %v, want 120", got)
	}
	if got := tr.PixelsToGridY(200); got != 10 {
		t.Errorf("PixelsToGridY(200) = %v, want 10", got)
	}
}

func TestTransform_InvalidateCanvas(t *testing.T) {
	tr := grid.NewTransform(grid.DefaultConfig())
	tr.SetGridSizeCache("c1", 1000, grid.DefaultConfig())
	tr.InvalidateCanvas("c1")
	if _, err := tr.PixelsPerUnitX("c1"); err == nil {
		t.Fatal("expected error after invalidation")
	}
}
