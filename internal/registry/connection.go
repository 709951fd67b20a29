package registry

import (
	"github.com/mark3labs/mcp-go/client"

	"github.com/cloudshipai/codemode-gateway/internal/capability"
)

// Connection is a named handle onto a backend MCP server, folded into a
// single struct per server rather than three parallel maps.
type Connection struct {
	Name         string
	Status       capability.Status
	Capabilities capability.Capabilities
	Client       *client.Client
}

func (c *Connection) info() capability.ServerInfo {
	return capability.ServerInfo{
		Name:         c.Name,
		Status:       c.Status,
		Capabilities: c.Capabilities,
	}
}
