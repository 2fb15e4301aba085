package grid

import (
	"gridboard/internal/domain"
)

// State is the complete layout state of one builder instance: every
// canvas, every item, selection and viewport. Each Engine owns exactly
// one State; nothing here is process-global.
type State struct {
	canvases map[string]*domain.Canvas
	order    []string // canvas insertion order, used for deterministic export

	SelectedItemID   string
	SelectedCanvasID string
	ActiveCanvasID   string
	Viewport         domain.Viewport
	ShowGrid         bool
}

// NewState creates an empty State in the desktop viewport.
func NewState() *State {
	return &State{
		canvases: make(map[string]*domain.Canvas),
		Viewport: domain.ViewportDesktop,
		ShowGrid: true,
	}
}

// Canvas returns the canvas with the given id, or nil.
func (s *State) Canvas(id string) *domain.Canvas {
	return s.canvases[id]
}

// CanvasIDs returns all canvas ids in insertion order.
func (s *State) CanvasIDs() []string {
	return append([]string(nil), s.order...)
}

// CanvasCount returns the number of canvases.
func (s *State) CanvasCount() int {
	return len(s.order)
}

// FindItem locates an item by id across all canvases and returns it
// together with its canvas and index, or (nil, nil, -1).
func (s *State) FindItem(itemID string) (*domain.GridItem, *domain.Canvas, int) {
	for _, id := range s.order {
		c := s.canvases[id]
		if i := c.IndexOf(itemID); i >= 0 {
			return &c.Items[i], c, i
		}
	}
	return nil, nil, -1
}

// ItemCount returns the total number of items across all canvases.
func (s *State) ItemCount() int {
	n := 0
	for _, c := range s.canvases {
		n += len(c.Items)
	}
	return n
}

// AddCanvas inserts a new empty canvas at the given position in the
// canvas order. A position < 0 or past the end appends. Adding an id
// that already exists is a no-op.
func (s *State) AddCanvas(id, name string, position int) {
	if _, ok := s.canvases[id]; ok {
		return
	}
	s.canvases[id] = &domain.Canvas{ID: id, Name: name}
	if position < 0 || position >= len(s.order) {
		s.order = append(s.order, id)
		return
	}
	s.order = append(s.order, "")
	copy(s.order[position+1:], s.order[position:])
	s.order[position] = id
}

// RestoreCanvas reinstates a previously removed canvas, including its
// items and z counter, at the given position in the canvas order.
func (s *State) RestoreCanvas(c domain.Canvas, position int) {
	restored := c.Clone()
	s.canvases[c.ID] = &restored
	if position < 0 || position >= len(s.order) {
		s.order = append(s.order, c.ID)
		return
	}
	s.order = append(s.order, "")
	copy(s.order[position+1:], s.order[position:])
	s.order[position] = c.ID
}

// RemoveCanvas deletes a canvas and returns its position in the canvas
// order, or -1 if the id is unknown. Contained items go with it;
// callers snapshot first when the removal must be reversible.
func (s *State) RemoveCanvas(id string) int {
	if _, ok := s.canvases[id]; !ok {
		return -1
	}
	delete(s.canvases, id)
	for i, cid := range s.order {
		if cid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			if s.ActiveCanvasID == id {
				s.ActiveCanvasID = ""
			}
			if s.SelectedCanvasID == id {
				s.SelectedCanvasID = ""
			}
			return i
		}
	}
	return -1
}
