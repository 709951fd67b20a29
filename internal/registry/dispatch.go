package registry

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/cloudshipai/codemode-gateway/internal/capability"
)

// ListToolsFor lists the tools advertised by one connected server.
func (r *Registry) ListToolsFor(ctx context.Context, server string) ([]capability.ToolInfo, error) {
	c, err := r.connectedClient(server)
	if err != nil {
		return nil, err
	}
	result, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("listing tools from %q: %w", server, err)
	}
	out := make([]capability.ToolInfo, 0, len(result.Tools))
	for _, t := range result.Tools {
		out = append(out, capability.ToolInfo{
			Server:      server,
			Name:        t.Name,
			Description: t.Description,
			InputSchema: asMap(t.InputSchema),
		})
	}
	return out, nil
}

// CallTool dispatches a tool call to a named server.
func (r *Registry) CallTool(ctx context.Context, server, tool string, args map[string]any) (*capability.ToolResult, error) {
	c, err := r.connectedClient(server)
	if err != nil {
		return nil, err
	}
	req := mcp.CallToolRequest{}
	req.Params.Name = tool
	req.Params.Arguments = args
	result, err := c.CallTool(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("calling tool %q on %q: %w", tool, server, err)
	}
	return &capability.ToolResult{
		Content: contentBlocks(result.Content),
		IsError: result.IsError,
	}, nil
}

// ListResourcesFor lists the resources advertised by one connected server.
func (r *Registry) ListResourcesFor(ctx context.Context, server string) ([]capability.ResourceInfo, error) {
	c, err := r.connectedClient(server)
	if err != nil {
		return nil, err
	}
	result, err := c.ListResources(ctx, mcp.ListResourcesRequest{})
	if err != nil {
		return nil, fmt.Errorf("listing resources from %q: %w", server, err)
	}
	out := make([]capability.ResourceInfo, 0, len(result.Resources))
	for _, res := range result.Resources {
		out = append(out, capability.ResourceInfo{
			Server:      server,
			URI:         res.URI,
			Name:        res.Name,
			Description: res.Description,
			MimeType:    res.MIMEType,
		})
	}
	return out, nil
}

// ListResourceTemplatesFor lists the resource templates advertised by one
// connected server.
func (r *Registry) ListResourceTemplatesFor(ctx context.Context, server string) ([]capability.ResourceTemplateInfo, error) {
	c, err := r.connectedClient(server)
	if err != nil {
		return nil, err
	}
	result, err := c.ListResourceTemplates(ctx, mcp.ListResourceTemplatesRequest{})
	if err != nil {
		return nil, fmt.Errorf("listing resource templates from %q: %w", server, err)
	}
	out := make([]capability.ResourceTemplateInfo, 0, len(result.ResourceTemplates))
	for _, rt := range result.ResourceTemplates {
		out = append(out, capability.ResourceTemplateInfo{
			Server:      server,
			URITemplate: rt.URITemplate.Raw(),
			Name:        rt.Name,
			Description: rt.Description,
			MimeType:    rt.MIMEType,
		})
	}
	return out, nil
}

// ReadResource dispatches a resource read to a named server.
func (r *Registry) ReadResource(ctx context.Context, server, uri string) (*capability.ResourceContent, error) {
	c, err := r.connectedClient(server)
	if err != nil {
		return nil, err
	}
	req := mcp.ReadResourceRequest{}
	req.Params.URI = uri
	result, err := c.ReadResource(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("reading resource %q from %q: %w", uri, server, err)
	}
	items := make([]capability.ResourceContentItem, 0, len(result.Contents))
	for _, rc := range result.Contents {
		var item capability.ResourceContentItem
		if b, err := json.Marshal(rc); err == nil {
			_ = json.Unmarshal(b, &item)
		}
		items = append(items, item)
	}
	return &capability.ResourceContent{Contents: items}, nil
}

// ListPromptsFor lists the prompts advertised by one connected server.
func (r *Registry) ListPromptsFor(ctx context.Context, server string) ([]capability.PromptInfo, error) {
	c, err := r.connectedClient(server)
	if err != nil {
		return nil, err
	}
	result, err := c.ListPrompts(ctx, mcp.ListPromptsRequest{})
	if err != nil {
		return nil, fmt.Errorf("listing prompts from %q: %w", server, err)
	}
	out := make([]capability.PromptInfo, 0, len(result.Prompts))
	for _, p := range result.Prompts {
		args := make([]capability.PromptArgument, 0, len(p.Arguments))
		for _, a := range p.Arguments {
			args = append(args, capability.PromptArgument{
				Name:        a.Name,
				Description: a.Description,
				Required:    a.Required,
			})
		}
		out = append(out, capability.PromptInfo{
			Server:      server,
			Name:        p.Name,
			Description: p.Description,
			Arguments:   args,
		})
	}
	return out, nil
}

// GetPrompt dispatches a prompt retrieval to a named server.
func (r *Registry) GetPrompt(ctx context.Context, server, name string, args map[string]string) (*capability.PromptResult, error) {
	c, err := r.connectedClient(server)
	if err != nil {
		return nil, err
	}
	req := mcp.GetPromptRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	result, err := c.GetPrompt(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("getting prompt %q from %q: %w", name, server, err)
	}
	messages := make([]capability.PromptMessage, 0, len(result.Messages))
	for _, m := range result.Messages {
		content := map[string]any{}
		if b, err := json.Marshal(m.Content); err == nil {
			_ = json.Unmarshal(b, &content)
		}
		messages = append(messages, capability.PromptMessage{
			Role:    string(m.Role),
			Content: content,
		})
	}
	return &capability.PromptResult{Description: result.Description, Messages: messages}, nil
}

// asMap round-trips a schema value through JSON so callers get a plain
// map[string]any regardless of the mcp-go library's concrete schema type.
func asMap(v any) map[string]any {
	out := map[string]any{}
	b, err := json.Marshal(v)
	if err != nil {
		return out
	}
	_ = json.Unmarshal(b, &out)
	return out
}

// contentBlocks round-trips a CallToolResult's content array through JSON
// into our own ContentBlock shape, tolerating whichever concrete Content
// implementations (text, image, ...) the backend returned.
func contentBlocks(content []mcp.Content) []capability.ContentBlock {
	out := make([]capability.ContentBlock, 0, len(content))
	for _, c := range content {
		var block capability.ContentBlock
		if b, err := json.Marshal(c); err == nil {
			_ = json.Unmarshal(b, &block)
		}
		out = append(out, block)
	}
	return out
}
