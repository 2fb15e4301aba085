package domain

import "time"

// ExportVersion is the current GridExport format version.
const ExportVersion = 1

// ExportCanvas is one canvas in the persisted format.
type ExportCanvas struct {
	Name  string     `json:"name,omitempty"`
	Items []GridItem `json:"items"`
}

// ExportMetadata carries document timestamps.
type ExportMetadata struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// GridExport is the JSON-serializable persisted form of a grid
// document. The coordinate cache is deliberately absent: it is derived
// from live container measurements and rebuilt from scratch on load.
type GridExport struct {
	Version     int                     `json:"version"`
	Canvases    map[string]ExportCanvas `json:"canvases"`
	CanvasOrder []string                `json:"canvasOrder"`
	Viewport    Viewport                `json:"viewport"`
	Metadata    ExportMetadata          `json:"metadata"`
}
