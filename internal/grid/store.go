package grid

import (
	"gridboard/internal/domain"
)

// Structural mutation primitives. These are pure data operations with
// no undo bookkeeping and no notifications; the Engine and the command
// types compose them into reversible operations. All of them are total
// for valid ids — callers validate existence first.

// InsertItem places item into the canvas at the given index. An index
// < 0 or past the end appends. The item's CanvasID is rewritten to
// keep membership consistent.
func (s *State) InsertItem(canvasID string, item domain.GridItem, index int) {
	c := s.canvases[canvasID]
	if c == nil {
		return
	}
	item.CanvasID = canvasID
	if index < 0 || index >= len(c.Items) {
		c.Items = append(c.Items, item)
		return
	}
	c.Items = append(c.Items, domain.GridItem{})
	copy(c.Items[index+1:], c.Items[index:])
	c.Items[index] = item
}

// RemoveItem removes the item by id from the canvas and returns the
// removed item and its former index. ok is false when either the
// canvas or the item does not exist.
func (s *State) RemoveItem(canvasID, itemID string) (item domain.GridItem, index int, ok bool) {
	c := s.canvases[canvasID]
	if c == nil {
		return domain.GridItem{}, -1, false
	}
	i := c.IndexOf(itemID)
	if i < 0 {
		return domain.GridItem{}, -1, false
	}
	item = c.Items[i]
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	if s.SelectedItemID == itemID {
		s.SelectedItemID = ""
	}
	return item, i, true
}

// ReplaceItem overwrites the stored item that shares item's id,
// keeping its position in the canvas order.
func (s *State) ReplaceItem(canvasID string, item domain.GridItem) {
	c := s.canvases[canvasID]
	if c == nil {
		return
	}
	if i := c.IndexOf(item.ID); i >= 0 {
		item.CanvasID = canvasID
		c.Items[i] = item
	}
}

// NextZIndex returns the canvas's current z counter value and then
// advances it. The counter never decreases, so every value handed out
// paints above all earlier ones on that canvas.
func (s *State) NextZIndex(canvasID string) int {
	c := s.canvases[canvasID]
	if c == nil {
		return 0
	}
	z := c.ZIndexCounter
	c.ZIndexCounter++
	return z
}

// BumpZCounterTo raises the canvas's z counter to at least z. Used on
// import so future assignments stay above restored items.
func (s *State) BumpZCounterTo(canvasID string, z int) {
	c := s.canvases[canvasID]
	if c != nil && c.ZIndexCounter < z {
		c.ZIndexCounter = z
	}
}
