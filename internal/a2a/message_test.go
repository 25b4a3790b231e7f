package a2a

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage_Text(t *testing.T) {
	tests := []struct {
		name    string
		message Message
		want    string
	}{
		{
			name:    "single text part",
			message: Message{Parts: []Part{{Kind: "text", Text: "Add expense 1500"}}},
			want:    "Add expense 1500",
		},
		{
			name: "multiple text parts joined with space",
			message: Message{Parts: []Part{
				{Kind: "text", Text: "Add expense"},
				{Kind: "text", Text: "1500"},
			}},
			want: "Add expense 1500",
		},
		{
			name: "non-text parts skipped",
			message: Message{Parts: []Part{
				{Kind: "file"},
				{Kind: "text", Text: "show summary"},
			}},
			want: "show summary",
		},
		{
			name:    "no parts",
			message: Message{},
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.message.Text())
		})
	}
}

func TestPushNotificationAuth_BearerToken(t *testing.T) {
	tests := []struct {
		name string
		auth *PushNotificationAuth
		want string
	}{
		{name: "nil auth", auth: nil, want: ""},
		{name: "token only", auth: &PushNotificationAuth{Token: "tok"}, want: "tok"},
		{name: "credentials only", auth: &PushNotificationAuth{Credentials: "cred"}, want: "cred"},
		{name: "credentials win over token", auth: &PushNotificationAuth{Credentials: "cred", Token: "tok"}, want: "cred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.auth.BearerToken())
		})
	}
}

func TestNormalizeParams_Send(t *testing.T) {
	raw := json.RawMessage(`{
		"message": {
			"kind": "message",
			"role": "user",
			"messageId": "m-1",
			"contextId": "ctx-1",
			"taskId": "task-1",
			"parts": [{"kind": "text", "text": "Add expense 1500"}]
		},
		"configuration": {
			"pushNotificationConfig": {
				"url": "https://example.com/hook",
				"authentication": {"credentials": "secret"}
			}
		}
	}`)

	batch, rpcErr := NormalizeParams(MethodMessageSend, raw)

	require.Nil(t, rpcErr)
	require.Len(t, batch.Messages, 1)
	assert.Equal(t, "Add expense 1500", batch.Messages[0].Text())
	assert.Equal(t, "ctx-1", batch.ContextID)
	assert.Equal(t, "task-1", batch.TaskID)
	require.NotNil(t, batch.Configuration)
	require.NotNil(t, batch.Configuration.PushNotificationConfig)
	assert.Equal(t, "https://example.com/hook", batch.Configuration.PushNotificationConfig.URL)
	assert.Equal(t, "secret", batch.Configuration.PushNotificationConfig.Authentication.BearerToken())
}

func TestNormalizeParams_SendTopLevelIDsWin(t *testing.T) {
	raw := json.RawMessage(`{
		"contextId": "outer-ctx",
		"taskId": "outer-task",
		"message": {"contextId": "inner-ctx", "taskId": "inner-task", "parts": []}
	}`)

	batch, rpcErr := NormalizeParams(MethodMessageSend, raw)

	require.Nil(t, rpcErr)
	assert.Equal(t, "outer-ctx", batch.ContextID)
	assert.Equal(t, "outer-task", batch.TaskID)
}

func TestNormalizeParams_Batch(t *testing.T) {
	raw := json.RawMessage(`{
		"contextId": "ctx-1",
		"messages": [
			{"parts": [{"kind": "text", "text": "Add income 2000"}]},
			{"parts": [{"kind": "text", "text": "show summary"}]}
		]
	}`)

	batch, rpcErr := NormalizeParams(MethodMessageBatch, raw)

	require.Nil(t, rpcErr)
	require.Len(t, batch.Messages, 2)
	assert.Equal(t, "ctx-1", batch.ContextID)
}

func TestNormalizeParams_Errors(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		raw      string
		wantCode int
	}{
		{name: "unsupported method", method: "message/stream", raw: `{}`, wantCode: CodeInvalidRequest},
		{name: "missing params", method: MethodMessageSend, raw: ``, wantCode: CodeInvalidParams},
		{name: "malformed params", method: MethodMessageSend, raw: `[1,2]`, wantCode: CodeInvalidParams},
		{name: "send without message", method: MethodMessageSend, raw: `{"contextId": "ctx-1"}`, wantCode: CodeInvalidParams},
		{name: "batch with empty messages", method: MethodMessageBatch, raw: `{"messages": []}`, wantCode: CodeInvalidParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch, rpcErr := NormalizeParams(tt.method, json.RawMessage(tt.raw))

			assert.Nil(t, batch)
			require.NotNil(t, rpcErr)
			assert.Equal(t, tt.wantCode, rpcErr.Code)
		})
	}
}
