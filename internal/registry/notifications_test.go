package registry

import (
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleNotification_LogMessageRoutesToLogBuffer(t *testing.T) {
	r := New()
	n := mcp.JSONRPCNotification{}
	n.Method = "notifications/message"
	n.Params.AdditionalFields = map[string]any{"level": "warning", "data": "disk almost full"}

	r.handleNotification("weather-api", n)

	assert.Empty(t, r.GetNotifications())
	logs := r.GetLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, "weather-api", logs[0].Server)
	assert.Equal(t, "warning", logs[0].Level)
	assert.Equal(t, "disk almost full", logs[0].Message)
}

func TestHandleNotification_LogMessageDefaultsLevelToInfo(t *testing.T) {
	r := New()
	n := mcp.JSONRPCNotification{}
	n.Method = "notifications/message"
	n.Params.AdditionalFields = map[string]any{"data": "started"}

	r.handleNotification("weather-api", n)

	logs := r.GetLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, "info", logs[0].Level)
}

func TestHandleNotification_OtherMethodRoutesToNotificationBuffer(t *testing.T) {
	r := New()
	n := mcp.JSONRPCNotification{}
	n.Method = "notifications/tools/list_changed"

	r.handleNotification("billing-core", n)

	assert.Empty(t, r.GetLogs())
	notifications := r.GetNotifications()
	require.Len(t, notifications, 1)
	assert.Equal(t, "billing-core", notifications[0].Server)
	assert.Equal(t, "notifications/tools/list_changed", notifications[0].Method)
}

func TestGetNotificationsAndGetLogs_DrainAndClear(t *testing.T) {
	r := New()
	r.RecordNotification("s", "m", nil)
	r.RecordLog("s", "info", "hi")

	require.Len(t, r.GetNotifications(), 1)
	require.Len(t, r.GetLogs(), 1)

	assert.Empty(t, r.GetNotifications())
	assert.Empty(t, r.GetLogs())
}
