package mcpserver

import (
	"context"
	"testing"
	"time"
)

// pendingActionID polls until the queue has one in-flight action and
// returns its id.
func pendingActionID(t *testing.T, q *ApprovalQueue) string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		q.mu.Lock()
		for id := range q.pending {
			q.mu.Unlock()
			return id
		}
		q.mu.Unlock()
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("no pending action appeared")
	return ""
}

func TestApprovalQueue_ApproveResolvesRequest(t *testing.T) {
	q := NewApprovalQueue(context.Background(), nil)

	result := make(chan bool, 1)
	go func() {
		ok, _ := q.Request("delete_item", "remove one item")
		result <- ok
	}()

	id := pendingActionID(t, q)
	q.Approve(id)

	select {
	case ok := <-result:
		if !ok {
			t.Error("approved request reported rejection")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("request never resolved")
	}
}

func TestApprovalQueue_RejectResolvesRequest(t *testing.T) {
	q := NewApprovalQueue(context.Background(), nil)

	result := make(chan bool, 1)
	go func() {
		ok, _ := q.Request("remove_canvas", "remove a canvas")
		result <- ok
	}()

	id := pendingActionID(t, q)
	q.Reject(id)

	select {
	case ok := <-result:
		if ok {
			t.Error("rejected request reported approval")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("request never resolved")
	}
}

// A verdict for an already-resolved or timed-out action must return
// immediately instead of parking the caller on a dead channel.
func TestApprovalQueue_DuplicateVerdictDoesNotBlock(t *testing.T) {
	q := NewApprovalQueue(context.Background(), nil)

	result := make(chan bool, 1)
	go func() {
		ok, _ := q.Request("delete_item", "remove one item")
		result <- ok
	}()

	id := pendingActionID(t, q)
	q.Approve(id)
	<-result

	done := make(chan struct{})
	go func() {
		q.Approve(id)
		q.Reject(id)
		q.Approve("never-existed")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("duplicate verdict blocked")
	}
}

func TestApprovalQueue_Timeout(t *testing.T) {
	q := NewApprovalQueue(context.Background(), nil)
	q.timeout = 50 * time.Millisecond

	ok, err := q.Request("delete_item", "remove one item")
	if ok {
		t.Error("timed-out request reported approval")
	}
	if err == nil {
		t.Error("expected a timeout error")
	}
}
