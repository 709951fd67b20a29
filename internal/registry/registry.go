// Package registry implements the server registry: the gateway's
// collection of live backend MCP connections, plus the out-of-band
// notification/log buffers and pending sampling/elicitation requests the
// sandbox assumes are handled stably elsewhere.
package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/cloudshipai/codemode-gateway/internal/capability"
	"github.com/cloudshipai/codemode-gateway/internal/config"
	"github.com/cloudshipai/codemode-gateway/internal/logging"
)

// DefaultPendingRequestTimeout is how long a sampling/elicitation request
// waits for an operator response before it is abandoned.
const DefaultPendingRequestTimeout = 5 * time.Minute

// Notification is a buffered out-of-band message from a backend.
type Notification struct {
	Server    string
	Method    string
	Params    map[string]any
	Timestamp time.Time
}

// LogEntry is a buffered log message a backend emitted.
type LogEntry struct {
	Server    string
	Level     string
	Message   string
	Timestamp time.Time
}

// PendingRequest is a sampling or elicitation request a backend is waiting
// on an operator to answer.
type PendingRequest struct {
	ID        string
	Server    string
	Kind      string // "sampling" or "elicitation"
	Payload   map[string]any
	CreatedAt time.Time
	resultCh  chan pendingOutcome
	ctx       context.Context
	cancel    context.CancelFunc
}

type pendingOutcome struct {
	result any
	err    error
}

// Registry holds backend connections and the buffers/bookkeeping the
// gateway's Capability API and search engine read from.
type Registry struct {
	mu          sync.RWMutex
	connections map[string]*Connection
	// order records registration order so fan-out listings can preserve it
	// ("aggregated listings preserve the iteration order of
	// registered servers") instead of Go's randomized map iteration.
	order         []string
	notifications []Notification
	logs          []LogEntry
	pending       map[string]*PendingRequest
	shuttingDown  bool
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		connections: make(map[string]*Connection),
		pending:     make(map[string]*PendingRequest),
	}
}

// AddServer connects to a backend described by cfg and registers it under
// name. Replaces ClientManager.AddServer+ConnectToServer with a single
// call, since this registry does not model a separate "configured but not
// yet connected" state.
func (r *Registry) AddServer(ctx context.Context, name string, cfg config.BackendServerConfig) error {
	r.mu.Lock()
	if _, exists := r.connections[name]; exists {
		r.mu.Unlock()
		return fmt.Errorf("server %q already registered", name)
	}
	conn := &Connection{Name: name, Status: capability.StatusReconnecting}
	r.connections[name] = conn
	r.order = append(r.order, name)
	r.mu.Unlock()

	transportLayer, err := buildTransport(cfg)
	if err != nil {
		r.markError(name)
		return fmt.Errorf("building transport for %q: %w", name, err)
	}

	mcpClient := client.NewClient(transportLayer)
	mcpClient.OnNotification(func(n mcp.JSONRPCNotification) {
		r.handleNotification(name, n)
	})

	if err := mcpClient.Start(ctx); err != nil {
		r.markError(name)
		return fmt.Errorf("starting client for %q: %w", name, err)
	}

	initRequest := mcp.InitializeRequest{}
	initRequest.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcp.Implementation{Name: "Codemode Gateway", Version: "1.0.0"}
	initRequest.Params.Capabilities = mcp.ClientCapabilities{}

	initResult, err := mcpClient.Initialize(ctx, initRequest)
	if err != nil {
		mcpClient.Close()
		r.markError(name)
		return fmt.Errorf("initializing client for %q: %w", name, err)
	}

	r.mu.Lock()
	conn.Client = mcpClient
	conn.Status = capability.StatusConnected
	conn.Capabilities = capability.Capabilities{
		Tools:     initResult.Capabilities.Tools != nil,
		Resources: initResult.Capabilities.Resources != nil,
		Prompts:   initResult.Capabilities.Prompts != nil,
	}
	r.mu.Unlock()

	logging.Info("connected to backend server %q", name)
	return nil
}

func buildTransport(cfg config.BackendServerConfig) (transport.Interface, error) {
	switch cfg.Type {
	case "stdio":
		var envSlice []string
		for k, v := range cfg.Env {
			envSlice = append(envSlice, fmt.Sprintf("%s=%s", k, v))
		}
		return transport.NewStdio(cfg.Command, envSlice, cfg.Args...), nil
	case "http":
		return transport.NewStreamableHTTP(cfg.URL)
	case "sse":
		return transport.NewSSE(cfg.URL)
	default:
		return nil, fmt.Errorf("unsupported transport type %q", cfg.Type)
	}
}

func (r *Registry) markError(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if conn, ok := r.connections[name]; ok {
		conn.Status = capability.StatusError
	}
}

// RemoveServer disconnects and forgets a backend, rejecting any of its
// pending sampling/elicitation requests.
func (r *Registry) RemoveServer(name string) error {
	r.mu.Lock()
	conn, exists := r.connections[name]
	if !exists {
		r.mu.Unlock()
		return fmt.Errorf("server %q not registered", name)
	}
	delete(r.connections, name)
	r.removeFromOrder(name)
	r.mu.Unlock()

	if conn.Client != nil {
		if err := conn.Client.Close(); err != nil {
			logging.Error("closing client for %q: %v", name, err)
		}
	}

	r.rejectServerPending(name, fmt.Sprintf("Server '%s' disconnected", name))
	logging.Info("removed backend server %q", name)
	return nil
}

// Shutdown disconnects every backend and rejects every pending request.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	r.shuttingDown = true
	names := make([]string, 0, len(r.connections))
	for name := range r.connections {
		names = append(names, name)
	}
	r.mu.Unlock()

	for _, name := range names {
		r.mu.RLock()
		conn := r.connections[name]
		r.mu.RUnlock()
		if conn != nil && conn.Client != nil {
			_ = conn.Client.Close()
		}
	}

	r.mu.Lock()
	r.connections = make(map[string]*Connection)
	r.order = nil
	pending := make([]*PendingRequest, 0, len(r.pending))
	for _, p := range r.pending {
		pending = append(pending, p)
	}
	r.pending = make(map[string]*PendingRequest)
	r.mu.Unlock()

	for _, p := range pending {
		p.resultCh <- pendingOutcome{err: fmt.Errorf("Registry shutting down")}
		p.cancel()
	}

	logging.Info("registry shutdown complete")
}

// HasServer reports whether a server is registered, regardless of status.
func (r *Registry) HasServer(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.connections[name]
	return ok
}

// ListServers returns a snapshot of every registered server, regardless of
// status, in registration order (tie-break rule).
func (r *Registry) ListServers() []capability.ServerInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]capability.ServerInfo, 0, len(r.order))
	for _, name := range r.order {
		if conn, ok := r.connections[name]; ok {
			out = append(out, conn.info())
		}
	}
	return out
}

// ConnectedNames returns the names of every server currently connected, in
// registration order.
func (r *Registry) ConnectedNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for _, name := range r.order {
		if conn, ok := r.connections[name]; ok && conn.Status == capability.StatusConnected {
			out = append(out, name)
		}
	}
	return out
}

// removeFromOrder deletes name from the registration-order slice. Caller
// must hold r.mu.
func (r *Registry) removeFromOrder(name string) {
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}

func (r *Registry) connectedClient(name string) (*client.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.connections[name]
	if !ok {
		return nil, fmt.Errorf("server %q not found", name)
	}
	if conn.Status != capability.StatusConnected {
		return nil, fmt.Errorf("server %q is not connected (status=%s)", name, conn.Status)
	}
	return conn.Client, nil
}
