// Package live serves list screens over a websocket. Each connection mounts
// one listview.Controller and streams its snapshots to the browser.
package live

import (
	"encoding/json"

	"github.com/odyssey-erp/backoffice/internal/listview"
)

// Client message types.
const (
	MsgSetFilter     = "setFilter"
	MsgSetSearch     = "setSearch"
	MsgSetEntityID   = "setEntityId"
	MsgSetSort       = "setSort"
	MsgSetPage       = "setPage"
	MsgSetPageSize   = "setPageSize"
	MsgNavigate      = "navigate"
	MsgSetDatabase   = "setDatabase"
	MsgCreate        = "create"
	MsgUpdate        = "update"
	MsgRequestDelete = "requestDelete"
	MsgCancelDelete  = "cancelDelete"
	MsgConfirmDelete = "confirmDelete"
	MsgPing          = "ping"
)

// Server message types.
const (
	MsgSnapshot = "snapshot"
	MsgMutation = "mutation"
	MsgError    = "error"
	MsgPong     = "pong"
)

// ClientMessage is the envelope of every browser to server message.
type ClientMessage struct {
	Type string          `json:"type"`
	ID   string          `json:"id,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

// FilterData is the payload of setFilter.
type FilterData struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ValueData is the payload of setSearch, setEntityId, setSort and setDatabase.
type ValueData struct {
	Value string `json:"value"`
}

// NumberData is the payload of setPage and setPageSize.
type NumberData struct {
	Value int `json:"value"`
}

// RowData targets one row: requestDelete and update.
type RowData struct {
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ServerMessage is the envelope of every server to browser message.
type ServerMessage struct {
	Type      string `json:"type"`
	RequestID string `json:"requestId,omitempty"`
	Data      any    `json:"data,omitempty"`
}

// ErrorData carries a rejected message.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MutationData reports the outcome of create, update or confirmDelete.
type MutationData struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// NavigateData is the payload of navigate.
type NavigateData = listview.Intent
