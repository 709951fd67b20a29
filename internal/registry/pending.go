package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RequestPending registers a sampling or elicitation request initiated by a
// backend and blocks until an operator responds, rejects, the per-request
// timeout elapses, the owning server is removed, or the registry shuts
// down.
func (r *Registry) RequestPending(ctx context.Context, server, kind string, payload map[string]any) (any, error) {
	id := uuid.NewString()
	pctx, cancel := context.WithTimeout(context.Background(), DefaultPendingRequestTimeout)
	p := &PendingRequest{
		ID:        id,
		Server:    server,
		Kind:      kind,
		Payload:   payload,
		CreatedAt: time.Now(),
		resultCh:  make(chan pendingOutcome, 1),
		ctx:       pctx,
		cancel:    cancel,
	}

	r.mu.Lock()
	if r.shuttingDown {
		r.mu.Unlock()
		cancel()
		return nil, fmt.Errorf("Registry shutting down")
	}
	r.pending[id] = p
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		delete(r.pending, id)
		r.mu.Unlock()
		cancel()
	}()

	select {
	case outcome := <-p.resultCh:
		return outcome.result, outcome.err
	case <-pctx.Done():
		return nil, fmt.Errorf("pending %s request timed out after %s", kind, DefaultPendingRequestTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// EnumeratePending lists every outstanding sampling/elicitation request.
func (r *Registry) EnumeratePending() []PendingRequest {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]PendingRequest, 0, len(r.pending))
	for _, p := range r.pending {
		out = append(out, PendingRequest{
			ID: p.ID, Server: p.Server, Kind: p.Kind, Payload: p.Payload, CreatedAt: p.CreatedAt,
		})
	}
	return out
}

// Respond delivers an operator's answer to a pending request.
func (r *Registry) Respond(id string, result any) error {
	r.mu.RLock()
	p, ok := r.pending[id]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("no pending request %q", id)
	}
	p.resultCh <- pendingOutcome{result: result}
	return nil
}

// Reject delivers an operator's rejection of a pending request.
func (r *Registry) Reject(id string, reason string) error {
	r.mu.RLock()
	p, ok := r.pending[id]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("no pending request %q", id)
	}
	p.resultCh <- pendingOutcome{err: fmt.Errorf("%s", reason)}
	return nil
}

// rejectServerPending rejects every pending request belonging to server
// with the given reason, used by RemoveServer.
func (r *Registry) rejectServerPending(server, reason string) {
	r.mu.Lock()
	var matched []*PendingRequest
	for id, p := range r.pending {
		if p.Server == server {
			matched = append(matched, p)
			delete(r.pending, id)
		}
	}
	r.mu.Unlock()

	for _, p := range matched {
		p.resultCh <- pendingOutcome{err: fmt.Errorf("%s", reason)}
		p.cancel()
	}
}
