package model

import "github.com/google/uuid"

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a model-issued request to run a tool.
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}

type Message struct {
	Role    Role
	Content string

	// ToolName names the tool whose result a tool-role message carries.
	ToolName string
	// ToolCallID links a tool-role message to the call it answers, when the
	// backend issued one.
	ToolCallID string

	// ToolCalls is only set on assistant messages.
	ToolCalls []ToolCall
}

// Conversation is an append-only, ordered list of messages.
type Conversation struct {
	ID       string
	Messages []*Message
}

func NewConversation() *Conversation {
	return &Conversation{ID: uuid.NewString()}
}

func (c *Conversation) Append(msgs ...*Message) {
	c.Messages = append(c.Messages, msgs...)
}

func UserMessage(content string) *Message {
	return &Message{Role: RoleUser, Content: content}
}

func SystemMessage(content string) *Message {
	return &Message{Role: RoleSystem, Content: content}
}

func ToolMessage(call ToolCall, content string) *Message {
	return &Message{Role: RoleTool, Content: content, ToolName: call.Name, ToolCallID: call.ID}
}
