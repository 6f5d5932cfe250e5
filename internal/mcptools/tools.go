// Package mcptools exposes conversations to agents as MCP tools.
package mcptools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/flemzord/chatlist/internal/conversation"
	"github.com/flemzord/chatlist/pkg/message"
)

const serverName = "chatlist"

// messageView is the JSON shape returned by list_messages.
type messageView struct {
	Position    int          `json:"position"`
	Kind        message.Kind `json:"kind"`
	Sender      string       `json:"sender,omitempty"`
	Text        string       `json:"text,omitempty"`
	HasImage    bool         `json:"hasImage,omitempty"`
	Timestamp   string       `json:"timestamp"`
	TimeLabel   string       `json:"timeLabel"`
	TimeVisible bool         `json:"timeVisible"`
	NameVisible bool         `json:"nameVisible"`
}

// NewServer returns an MCP server with every conversation tool registered.
func NewServer(mgr *conversation.Manager, version string) *server.MCPServer {
	s := server.NewMCPServer(serverName, version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	s.AddTools(Tools(mgr)...)
	return s
}

// Tools returns the conversation tools bound to mgr.
func Tools(mgr *conversation.Manager) []server.ServerTool {
	t := &toolset{mgr: mgr}
	return []server.ServerTool{
		{
			Tool: mcp.NewTool("list_conversations",
				mcp.WithDescription("List conversations with their message counts."),
			),
			Handler: t.listConversations,
		},
		{
			Tool: mcp.NewTool("create_conversation",
				mcp.WithDescription("Create an empty conversation."),
				mcp.WithString("id", mcp.Description("Conversation ID. Generated when omitted.")),
			),
			Handler: t.createConversation,
		},
		{
			Tool: mcp.NewTool("list_messages",
				mcp.WithDescription("List the messages of a conversation with their display state."),
				mcp.WithString("conversation", mcp.Required(), mcp.Description("Conversation ID.")),
			),
			Handler: t.listMessages,
		},
		{
			Tool: mcp.NewTool("append_message",
				mcp.WithDescription("Append a text message to a conversation."),
				mcp.WithString("conversation", mcp.Required(), mcp.Description("Conversation ID.")),
				mcp.WithString("text", mcp.Required(), mcp.Description("Message text.")),
				mcp.WithString("sender", mcp.Description("Sender display name.")),
				mcp.WithString("timestamp", mcp.Description("Raw timestamp in the configured layout.")),
				mcp.WithBoolean("is_sender", mcp.Description("True when the local user sent the message.")),
			),
			Handler: t.appendMessage,
		},
		{
			Tool: mcp.NewTool("remove_message",
				mcp.WithDescription("Remove the message at a position."),
				mcp.WithString("conversation", mcp.Required(), mcp.Description("Conversation ID.")),
				mcp.WithNumber("position", mcp.Required(), mcp.Description("Zero-based row position.")),
			),
			Handler: t.removeMessage,
		},
		{
			Tool: mcp.NewTool("clear_messages",
				mcp.WithDescription("Remove every message of a conversation."),
				mcp.WithString("conversation", mcp.Required(), mcp.Description("Conversation ID.")),
			),
			Handler: t.clearMessages,
		},
	}
}

type toolset struct {
	mgr *conversation.Manager
}

func (t *toolset) listConversations(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(t.mgr.Summaries())
}

func (t *toolset) createConversation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := t.mgr.Create(ctx, req.GetString("id", ""))
	if err != nil {
		return toolError(err)
	}
	return mcp.NewToolResultText(id), nil
}

func (t *toolset) listMessages(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("conversation")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	list, err := t.mgr.Get(id)
	if err != nil {
		return toolError(err)
	}
	rows := list.Rows()
	out := make([]messageView, len(rows))
	for i, r := range rows {
		out[i] = view(r)
	}
	return jsonResult(out)
}

func (t *toolset) appendMessage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("conversation")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rec := message.NewText(
		req.GetString("sender", ""),
		text,
		req.GetString("timestamp", ""),
		req.GetBool("is_sender", false),
	)
	stamped, err := t.mgr.Append(ctx, id, rec)
	if err != nil {
		return toolError(err)
	}
	list, err := t.mgr.Get(id)
	if err != nil {
		return toolError(err)
	}
	return jsonResult(view(conversation.Row{
		Position: list.Len() - 1,
		Kind:     stamped.Kind(),
		Record:   stamped,
	}))
}

func (t *toolset) removeMessage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("conversation")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	pos, err := req.RequireInt("position")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := t.mgr.RemoveAt(ctx, id, pos); err != nil {
		return toolError(err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("removed message %d from %s", pos, id)), nil
}

func (t *toolset) clearMessages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("conversation")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	changed, err := t.mgr.ClearAll(ctx, id)
	if err != nil {
		return toolError(err)
	}
	if !changed {
		return mcp.NewToolResultText(id + " was already empty"), nil
	}
	return mcp.NewToolResultText("cleared " + id), nil
}

func view(r conversation.Row) messageView {
	rec := r.Record
	return messageView{
		Position:    r.Position,
		Kind:        r.Kind,
		Sender:      rec.SenderName,
		Text:        rec.Text(),
		HasImage:    rec.HasImage(),
		Timestamp:   rec.TimestampRaw,
		TimeLabel:   rec.TimeLabel,
		TimeVisible: rec.TimeVisible,
		NameVisible: rec.NameVisible,
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("mcptools: encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// toolError reports domain failures to the caller as tool errors, so the
// agent can correct itself. Anything else is a protocol-level error.
func toolError(err error) (*mcp.CallToolResult, error) {
	switch {
	case errors.Is(err, conversation.ErrNotFound),
		errors.Is(err, conversation.ErrOutOfRange),
		errors.Is(err, conversation.ErrExists):
		return mcp.NewToolResultError(err.Error()), nil
	default:
		return nil, err
	}
}
