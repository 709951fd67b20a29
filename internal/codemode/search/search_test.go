package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudshipai/codemode-gateway/internal/capability"
)

type fakeBackend struct {
	servers   []capability.ServerInfo
	tools     map[string][]capability.ToolInfo
	resources map[string][]capability.ResourceInfo
	prompts   map[string][]capability.PromptInfo
	failFor   string
}

func (f *fakeBackend) ListServers() []capability.ServerInfo { return f.servers }

func (f *fakeBackend) ConnectedNames() []string {
	names := make([]string, 0, len(f.servers))
	for _, s := range f.servers {
		names = append(names, s.Name)
	}
	return names
}

func (f *fakeBackend) ListToolsFor(_ context.Context, server string) ([]capability.ToolInfo, error) {
	if server == f.failFor {
		return nil, errors.New("backend unreachable")
	}
	return f.tools[server], nil
}

func (f *fakeBackend) ListResourcesFor(_ context.Context, server string) ([]capability.ResourceInfo, error) {
	if server == f.failFor {
		return nil, errors.New("backend unreachable")
	}
	return f.resources[server], nil
}

func (f *fakeBackend) ListPromptsFor(_ context.Context, server string) ([]capability.PromptInfo, error) {
	if server == f.failFor {
		return nil, errors.New("backend unreachable")
	}
	return f.prompts[server], nil
}

func newFixture() *fakeBackend {
	return &fakeBackend{
		servers: []capability.ServerInfo{
			{Name: "weather-api", Status: capability.StatusConnected, Capabilities: capability.Capabilities{Tools: true}},
			{Name: "billing-core", Status: capability.StatusConnected, Capabilities: capability.Capabilities{Tools: true, Resources: true}},
		},
		tools: map[string][]capability.ToolInfo{
			"weather-api": {
				{Server: "weather-api", Name: "get_forecast", Description: "Returns a 7-day forecast", InputSchema: map[string]any{"type": "object"}},
			},
			"billing-core": {
				{Server: "billing-core", Name: "charge_card", Description: "Charges a stored payment method"},
			},
		},
		resources: map[string][]capability.ResourceInfo{
			"billing-core": {
				{Server: "billing-core", URI: "billing://invoices/latest", Name: "latest-invoice"},
			},
		},
		prompts: map[string][]capability.PromptInfo{},
	}
}

func TestSearch_DefaultTypeCoversEveryCategory(t *testing.T) {
	e := New(newFixture())
	result := e.Search(context.Background(), Request{Query: ""})

	assert.Len(t, result.Servers, 2)
	assert.Len(t, result.Tools, 2)
	assert.Len(t, result.Resources, 1)
	assert.Nil(t, result.Prompts)
}

func TestSearch_FiltersByTypeTools(t *testing.T) {
	e := New(newFixture())
	result := e.Search(context.Background(), Request{Query: "", Type: KindTools})

	assert.Nil(t, result.Servers)
	assert.Nil(t, result.Resources)
	assert.Len(t, result.Tools, 2)
}

func TestSearch_QueryMatchesNameOrDescription(t *testing.T) {
	e := New(newFixture())
	result := e.Search(context.Background(), Request{Query: "forecast", Type: KindTools})

	require.Len(t, result.Tools, 1)
	assert.Equal(t, "get_forecast", result.Tools[0].Name)

	result = e.Search(context.Background(), Request{Query: "payment method", Type: KindTools})
	require.Len(t, result.Tools, 1)
	assert.Equal(t, "charge_card", result.Tools[0].Name)
}

func TestSearch_ServerFilterRestrictsFanOut(t *testing.T) {
	e := New(newFixture())
	result := e.Search(context.Background(), Request{Query: "", Type: KindTools, Server: "billing.*"})

	require.Len(t, result.Tools, 1)
	assert.Equal(t, "charge_card", result.Tools[0].Name)
}

func TestSearch_IncludeSchemasTogglesInputSchema(t *testing.T) {
	e := New(newFixture())

	withSchemas := e.Search(context.Background(), Request{Query: "forecast", Type: KindTools, IncludeSchemas: true})
	require.Len(t, withSchemas.Tools, 1)
	assert.NotNil(t, withSchemas.Tools[0].InputSchema)

	withoutSchemas := e.Search(context.Background(), Request{Query: "forecast", Type: KindTools, IncludeSchemas: false})
	require.Len(t, withoutSchemas.Tools, 1)
	assert.Nil(t, withoutSchemas.Tools[0].InputSchema)
}

func TestSearch_SuppressesPerBackendErrors(t *testing.T) {
	fixture := newFixture()
	fixture.failFor = "weather-api"
	e := New(fixture)

	result := e.Search(context.Background(), Request{Query: "", Type: KindTools})

	require.Len(t, result.Tools, 1)
	assert.Equal(t, "charge_card", result.Tools[0].Name)
}

func TestSearch_UnmatchedQueryYieldsEmptyResult(t *testing.T) {
	e := New(newFixture())
	result := e.Search(context.Background(), Request{Query: "nonexistent-capability-xyz"})

	assert.Empty(t, result.Servers)
	assert.Empty(t, result.Tools)
	assert.Empty(t, result.Resources)
	assert.Empty(t, result.Prompts)
}

func TestSearch_MalformedRegexFallsBackWithoutError(t *testing.T) {
	e := New(newFixture())
	result := e.Search(context.Background(), Request{Query: "(unterminated", Type: KindTools})

	assert.Empty(t, result.Tools)
}
