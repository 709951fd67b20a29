package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestPending_RespondDeliversResult(t *testing.T) {
	r := New()
	done := make(chan struct{})
	var result any
	var err error

	go func() {
		result, err = r.RequestPending(context.Background(), "srv", "sampling", map[string]any{"prompt": "hi"})
		close(done)
	}()

	var id string
	require.Eventually(t, func() bool {
		pending := r.EnumeratePending()
		if len(pending) != 1 {
			return false
		}
		id = pending[0].ID
		return true
	}, time.Second, time.Millisecond)

	require.NoError(t, r.Respond(id, "the answer"))
	<-done

	assert.NoError(t, err)
	assert.Equal(t, "the answer", result)
	assert.Empty(t, r.EnumeratePending())
}

func TestRequestPending_RejectDeliversError(t *testing.T) {
	r := New()
	done := make(chan struct{})
	var err error

	go func() {
		_, err = r.RequestPending(context.Background(), "srv", "elicitation", nil)
		close(done)
	}()

	var id string
	require.Eventually(t, func() bool {
		pending := r.EnumeratePending()
		if len(pending) != 1 {
			return false
		}
		id = pending[0].ID
		return true
	}, time.Second, time.Millisecond)

	require.NoError(t, r.Reject(id, "operator declined"))
	<-done

	require.Error(t, err)
	assert.Contains(t, err.Error(), "operator declined")
}

func TestRequestPending_CallerContextCancellation(t *testing.T) {
	r := New()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	var err error

	go func() {
		_, err = r.RequestPending(ctx, "srv", "sampling", nil)
		close(done)
	}()

	require.Eventually(t, func() bool { return len(r.EnumeratePending()) == 1 }, time.Second, time.Millisecond)
	cancel()
	<-done

	require.Error(t, err)
}

func TestRemoveServer_RejectsOnlyThatServersPending(t *testing.T) {
	r := New()
	ctx := context.Background()
	_ = r.AddServer(ctx, "srv-a", unsupportedConfig())
	_ = r.AddServer(ctx, "srv-b", unsupportedConfig())

	doneA := make(chan struct{})
	doneB := make(chan struct{})
	var errA, errB error

	go func() {
		_, errA = r.RequestPending(context.Background(), "srv-a", "sampling", nil)
		close(doneA)
	}()
	go func() {
		_, errB = r.RequestPending(context.Background(), "srv-b", "sampling", nil)
		close(doneB)
	}()

	require.Eventually(t, func() bool { return len(r.EnumeratePending()) == 2 }, time.Second, time.Millisecond)

	require.NoError(t, r.RemoveServer("srv-a"))
	<-doneA

	require.Error(t, errA)
	assert.Contains(t, errA.Error(), "srv-a")

	select {
	case <-doneB:
		t.Fatal("srv-b's pending request should not have been rejected")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, r.Respond(r.EnumeratePending()[0].ID, "ok"))
	<-doneB
	assert.NoError(t, errB)
}

func TestShutdown_RejectsAllPending(t *testing.T) {
	r := New()
	done := make(chan struct{})
	var err error

	go func() {
		_, err = r.RequestPending(context.Background(), "srv", "sampling", nil)
		close(done)
	}()

	require.Eventually(t, func() bool { return len(r.EnumeratePending()) == 1 }, time.Second, time.Millisecond)

	r.Shutdown()
	<-done

	require.Error(t, err)
}
