package registry

import (
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// handleNotification is the mcp-go client's OnNotification callback,
// installed per connection in AddServer. "notifications/message" is the
// protocol's logging notification and is routed to the log buffer;
// everything else (progress, resource/tool list-changed, cancellation)
// lands in the generic notification buffer.
func (r *Registry) handleNotification(server string, n mcp.JSONRPCNotification) {
	params := n.Params.AdditionalFields
	if n.Method == "notifications/message" {
		level, _ := params["level"].(string)
		if level == "" {
			level = "info"
		}
		r.RecordLog(server, level, fmt.Sprintf("%v", params["data"]))
		return
	}
	r.RecordNotification(server, n.Method, params)
}

// RecordNotification appends an out-of-band notification from a backend to
// the drainable buffer.
func (r *Registry) RecordNotification(server, method string, params map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, Notification{
		Server: server, Method: method, Params: params, Timestamp: time.Now(),
	})
}

// RecordLog appends a backend-originated log message to the drainable
// buffer.
func (r *Registry) RecordLog(server, level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, LogEntry{
		Server: server, Level: level, Message: message, Timestamp: time.Now(),
	})
}

// GetNotifications returns a snapshot of buffered notifications and clears
// the buffer.
func (r *Registry) GetNotifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.notifications
	r.notifications = nil
	return out
}

// GetLogs returns a snapshot of buffered backend log messages and clears
// the buffer.
func (r *Registry) GetLogs() []LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.logs
	r.logs = nil
	return out
}
