package a2a

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Methods accepted on the RPC endpoint.
const (
	MethodMessageSend  = "message/send"
	MethodMessageBatch = "message/batch"
)

// Well-known values for Message.Kind, Message.Role and task states.
const (
	KindMessage    = "message"
	KindTask       = "task"
	RoleUser       = "user"
	RoleAgent      = "agent"
	StateCompleted = "completed"
)

// Message is one conversational turn.
type Message struct {
	Kind      string         `json:"kind,omitempty"`
	Role      string         `json:"role,omitempty"`
	Parts     []Part         `json:"parts,omitempty"`
	MessageID string         `json:"messageId,omitempty"`
	TaskID    string         `json:"taskId,omitempty"`
	ContextID string         `json:"contextId,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Part is one typed fragment of a message.
type Part struct {
	Kind string `json:"kind"`
	Text string `json:"text,omitempty"`
}

// Text concatenates all text-bearing parts of the message, space separated.
func (m Message) Text() string {
	var texts []string
	for _, part := range m.Parts {
		if part.Kind == "text" && part.Text != "" {
			texts = append(texts, part.Text)
		}
	}

	return strings.Join(texts, " ")
}

// PushNotificationAuth carries webhook credentials supplied by the caller.
type PushNotificationAuth struct {
	Schemes     []string `json:"schemes,omitempty"`
	Credentials string   `json:"credentials,omitempty"`
	Token       string   `json:"token,omitempty"`
}

// BearerToken returns the token to place in the webhook Authorization header.
// Credentials take precedence over Token when both are present.
func (a *PushNotificationAuth) BearerToken() string {
	if a == nil {
		return ""
	}
	if a.Credentials != "" {
		return a.Credentials
	}

	return a.Token
}

// PushNotificationConfig names the callback URL for result delivery.
type PushNotificationConfig struct {
	URL            string                `json:"url"`
	Authentication *PushNotificationAuth `json:"authentication,omitempty"`
}

// Configuration is the optional per-request delivery configuration.
type Configuration struct {
	PushNotificationConfig *PushNotificationConfig `json:"pushNotificationConfig,omitempty"`
}

// TaskStatus reports the terminal state of a processed task.
type TaskStatus struct {
	State   string   `json:"state"`
	Message *Message `json:"message,omitempty"`
}

// Artifact is a produced output attached to a task. The budget agent emits
// none but the envelope always carries the (empty) list.
type Artifact struct {
	ArtifactID string `json:"artifactId,omitempty"`
	Parts      []Part `json:"parts,omitempty"`
}

// TaskResult is the result envelope returned for every processed request.
type TaskResult struct {
	ID        string     `json:"id"`
	ContextID string     `json:"contextId"`
	Status    TaskStatus `json:"status"`
	Artifacts []Artifact `json:"artifacts"`
	History   []Message  `json:"history"`
	Kind      string     `json:"kind"`
}

// Batch is the canonical inbound shape all methods normalize to before any
// business logic runs.
type Batch struct {
	Messages      []Message
	ContextID     string
	TaskID        string
	Configuration *Configuration
}

// sendParams is the raw params shape shared by both methods.
type sendParams struct {
	Message       *Message       `json:"message,omitempty"`
	Messages      []Message      `json:"messages,omitempty"`
	ContextID     string         `json:"contextId,omitempty"`
	TaskID        string         `json:"taskId,omitempty"`
	Configuration *Configuration `json:"configuration,omitempty"`
}

// NormalizeParams decodes raw params for the given method into one canonical
// Batch. message/send requires params.message; message/batch requires a
// non-empty params.messages list. Any other method is rejected.
func NormalizeParams(method string, raw json.RawMessage) (*Batch, *Error) {
	switch method {
	case MethodMessageSend, MethodMessageBatch:
	default:
		return nil, NewError(CodeInvalidRequest, fmt.Sprintf("unsupported method %q", method), nil)
	}

	if len(raw) == 0 {
		return nil, NewError(CodeInvalidParams, "params are required", nil)
	}

	var params sendParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, NewError(CodeInvalidParams, "malformed params", err.Error())
	}

	batch := &Batch{
		ContextID:     params.ContextID,
		TaskID:        params.TaskID,
		Configuration: params.Configuration,
	}

	switch method {
	case MethodMessageSend:
		if params.Message == nil {
			return nil, NewError(CodeInvalidParams, "message is required", nil)
		}
		batch.Messages = []Message{*params.Message}
		if batch.ContextID == "" {
			batch.ContextID = params.Message.ContextID
		}
		if batch.TaskID == "" {
			batch.TaskID = params.Message.TaskID
		}
	case MethodMessageBatch:
		if len(params.Messages) == 0 {
			return nil, NewError(CodeInvalidParams, "messages list is empty", nil)
		}
		batch.Messages = params.Messages
	}

	return batch, nil
}
