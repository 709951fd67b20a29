package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudshipai/codemode-gateway/internal/capability"
	"github.com/cloudshipai/codemode-gateway/internal/config"
)

// unsupportedConfig fails buildTransport immediately (no process spawned,
// no network dial), so AddServer registers the entry and returns an error
// synchronously — enough to exercise registration bookkeeping without a
// live backend.
func unsupportedConfig() config.BackendServerConfig {
	return config.BackendServerConfig{Type: "unsupported"}
}

func TestAddServer_PreservesRegistrationOrder(t *testing.T) {
	r := New()
	ctx := context.Background()

	names := []string{"charlie", "alpha", "bravo"}
	for _, name := range names {
		err := r.AddServer(ctx, name, unsupportedConfig())
		require.Error(t, err)
	}

	servers := r.ListServers()
	require.Len(t, servers, 3)
	got := make([]string, len(servers))
	for i, s := range servers {
		got[i] = s.Name
	}
	assert.Equal(t, names, got)
}

func TestAddServer_RejectsDuplicateName(t *testing.T) {
	r := New()
	ctx := context.Background()

	_ = r.AddServer(ctx, "dup", unsupportedConfig())
	err := r.AddServer(ctx, "dup", unsupportedConfig())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestAddServer_FailureMarksStatusError(t *testing.T) {
	r := New()
	ctx := context.Background()
	_ = r.AddServer(ctx, "broken", unsupportedConfig())

	servers := r.ListServers()
	require.Len(t, servers, 1)
	assert.Equal(t, capability.StatusError, servers[0].Status)
}

func TestConnectedNames_ExcludesUnconnectedServers(t *testing.T) {
	r := New()
	ctx := context.Background()
	_ = r.AddServer(ctx, "broken", unsupportedConfig())

	assert.Empty(t, r.ConnectedNames())
}

func TestRemoveServer_RemovesFromOrderAndMap(t *testing.T) {
	r := New()
	ctx := context.Background()
	for _, name := range []string{"a", "b", "c"} {
		_ = r.AddServer(ctx, name, unsupportedConfig())
	}

	require.NoError(t, r.RemoveServer("b"))

	servers := r.ListServers()
	got := make([]string, len(servers))
	for i, s := range servers {
		got[i] = s.Name
	}
	assert.Equal(t, []string{"a", "c"}, got)
	assert.False(t, r.HasServer("b"))
}

func TestRemoveServer_UnknownNameErrors(t *testing.T) {
	r := New()
	err := r.RemoveServer("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")
}

func TestShutdown_ClearsRegistrationsAndOrder(t *testing.T) {
	r := New()
	ctx := context.Background()
	for _, name := range []string{"a", "b"} {
		_ = r.AddServer(ctx, name, unsupportedConfig())
	}

	r.Shutdown()

	assert.Empty(t, r.ListServers())
	assert.Empty(t, r.ConnectedNames())
	assert.False(t, r.HasServer("a"))
}

func TestHasServer(t *testing.T) {
	r := New()
	ctx := context.Background()
	assert.False(t, r.HasServer("x"))
	_ = r.AddServer(ctx, "x", unsupportedConfig())
	assert.True(t, r.HasServer("x"))
}
