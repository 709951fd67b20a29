// Package search implements the search engine: a pure fan-out-and-
// filter transformation over a Registry snapshot, used by the
// `codemode_search` tool to collapse per-backend capability enumeration
// into one grouped result.
package search

import (
	"context"
	"regexp"

	"github.com/cloudshipai/codemode-gateway/internal/capability"
	"github.com/cloudshipai/codemode-gateway/internal/codemode/patternmatch"
)

// Backend is the subset of *registry.Registry the search engine needs.
type Backend interface {
	ConnectedNames() []string
	ListToolsFor(ctx context.Context, server string) ([]capability.ToolInfo, error)
	ListResourcesFor(ctx context.Context, server string) ([]capability.ResourceInfo, error)
	ListPromptsFor(ctx context.Context, server string) ([]capability.PromptInfo, error)
	ListServers() []capability.ServerInfo
}

// Kind enumerates the capability categories a search can target.
type Kind string

const (
	KindTools     Kind = "tools"
	KindResources Kind = "resources"
	KindPrompts   Kind = "prompts"
	KindServers   Kind = "servers"
	KindAll       Kind = "all"
)

// Request is the input to Search ("Search tool" input).
type Request struct {
	Query          string
	Type           Kind
	Server         string
	IncludeSchemas bool
}

// Result is the grouped output; fields are omitted (nil) when the
// requested Type excludes that category.
type Result struct {
	Tools     []capability.ToolInfo     `json:"tools,omitempty"`
	Resources []capability.ResourceInfo `json:"resources,omitempty"`
	Prompts   []capability.PromptInfo   `json:"prompts,omitempty"`
	Servers   []capability.ServerInfo   `json:"servers,omitempty"`
}

// Engine runs searches against a Backend.
type Engine struct {
	backend Backend
}

// New returns a search Engine over backend.
func New(backend Backend) *Engine {
	return &Engine{backend: backend}
}

// kinds expands "all" to every concrete category, preserving a stable
// enumeration order.
func kinds(t Kind) []Kind {
	if t == KindAll || t == "" {
		return []Kind{KindServers, KindTools, KindResources, KindPrompts}
	}
	return []Kind{t}
}

// Search executes req against the Backend snapshot. Failures from
// individual backends are suppressed: a wholly failing search
// still returns an empty grouped result, never an error.
func (e *Engine) Search(ctx context.Context, req Request) Result {
	queryRE := patternmatch.Query(req.Query)

	var serverFilter func(name string) bool
	if req.Server == "" {
		serverFilter = func(string) bool { return true }
	} else {
		serverFilter = func(name string) bool { return patternmatch.Server(req.Server, name) }
	}

	var out Result
	for _, kind := range kinds(req.Type) {
		switch kind {
		case KindServers:
			out.Servers = e.searchServers(serverFilter, queryRE)
		case KindTools:
			out.Tools = e.searchTools(ctx, serverFilter, queryRE, req.IncludeSchemas)
		case KindResources:
			out.Resources = e.searchResources(ctx, serverFilter, queryRE)
		case KindPrompts:
			out.Prompts = e.searchPrompts(ctx, serverFilter, queryRE)
		}
	}
	return out
}

func (e *Engine) searchServers(serverFilter func(string) bool, queryRE *regexp.Regexp) []capability.ServerInfo {
	var out []capability.ServerInfo
	for _, s := range e.backend.ListServers() {
		if !serverFilter(s.Name) {
			continue
		}
		if queryRE.MatchString(s.Name) {
			out = append(out, s)
		}
	}
	return out
}

func (e *Engine) searchTools(ctx context.Context, serverFilter func(string) bool, queryRE *regexp.Regexp, includeSchemas bool) []capability.ToolInfo {
	var out []capability.ToolInfo
	for _, name := range e.backend.ConnectedNames() {
		if !serverFilter(name) {
			continue
		}
		items, err := e.backend.ListToolsFor(ctx, name)
		if err != nil {
			continue
		}
		for _, t := range items {
			if !queryRE.MatchString(t.Name) && !queryRE.MatchString(t.Description) {
				continue
			}
			if !includeSchemas {
				t.InputSchema = nil
			}
			out = append(out, t)
		}
	}
	return out
}

func (e *Engine) searchResources(ctx context.Context, serverFilter func(string) bool, queryRE *regexp.Regexp) []capability.ResourceInfo {
	var out []capability.ResourceInfo
	for _, name := range e.backend.ConnectedNames() {
		if !serverFilter(name) {
			continue
		}
		items, err := e.backend.ListResourcesFor(ctx, name)
		if err != nil {
			continue
		}
		for _, r := range items {
			if !queryRE.MatchString(r.Name) && !queryRE.MatchString(r.Description) && !queryRE.MatchString(r.URI) {
				continue
			}
			out = append(out, r)
		}
	}
	return out
}

func (e *Engine) searchPrompts(ctx context.Context, serverFilter func(string) bool, queryRE *regexp.Regexp) []capability.PromptInfo {
	var out []capability.PromptInfo
	for _, name := range e.backend.ConnectedNames() {
		if !serverFilter(name) {
			continue
		}
		items, err := e.backend.ListPromptsFor(ctx, name)
		if err != nil {
			continue
		}
		for _, p := range items {
			if !queryRE.MatchString(p.Name) && !queryRE.MatchString(p.Description) {
				continue
			}
			out = append(out, p)
		}
	}
	return out
}
