package grid

// DefaultHistoryLimit bounds the undo stack. Forty matches the prune
// threshold used for persisted revisions; nothing in the command
// semantics requires a particular bound, only that one exists.
const DefaultHistoryLimit = 40

// History is the linear undo/redo stack. Pushing a new command clears
// the redo side — there is no branching history. Undo and redo on an
// empty stack are defined no-ops.
type History struct {
	limit     int
	undoStack []Command // top = last element
	redoStack []Command
}

// NewHistory creates a History with the given depth bound; a bound
// <= 0 falls back to DefaultHistoryLimit.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit}
}

// Push records an already-applied command and clears the redo stack.
// The oldest entry is dropped when the bound is exceeded.
func (h *History) Push(cmd Command) {
	h.undoStack = append(h.undoStack, cmd)
	if len(h.undoStack) > h.limit {
		copy(h.undoStack, h.undoStack[1:])
		h.undoStack = h.undoStack[:len(h.undoStack)-1]
	}
	h.redoStack = h.redoStack[:0]
}

// Undo reverses the most recent command. Returns the command that was
// undone, or nil when the stack is empty.
func (h *History) Undo(st *State) Command {
	if len(h.undoStack) == 0 {
		return nil
	}
	cmd := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	cmd.Undo(st)
	h.redoStack = append(h.redoStack, cmd)
	return cmd
}

// Redo re-applies the most recently undone command. Returns the
// command that was redone, or nil when the stack is empty.
func (h *History) Redo(st *State) Command {
	if len(h.redoStack) == 0 {
		return nil
	}
	cmd := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	cmd.Redo(st)
	h.undoStack = append(h.undoStack, cmd)
	return cmd
}

// CanUndo reports whether an undo is available.
func (h *History) CanUndo() bool { return len(h.undoStack) > 0 }

// CanRedo reports whether a redo is available.
func (h *History) CanRedo() bool { return len(h.redoStack) > 0 }

// Len returns the undo stack depth.
func (h *History) Len() int { return len(h.undoStack) }

// Clear drops both stacks. Called on import, when the prior history no
// longer describes the live state.
func (h *History) Clear() {
	h.undoStack = h.undoStack[:0]
	h.redoStack = h.redoStack[:0]
}
