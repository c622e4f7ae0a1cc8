package live

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/backoffice/internal/backend"
	"github.com/odyssey-erp/backoffice/internal/listview"
)

type item struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type wireSnapshot struct {
	Version uint64 `json:"version"`
	Source  string `json:"source"`
	State   struct {
		Page     int    `json:"page"`
		PageSize int    `json:"pageSize"`
		Search   string `json:"search"`
		EntityID string `json:"entityId"`
	} `json:"state"`
	Rows     []item               `json:"rows"`
	Total    int                  `json:"totalCount"`
	Loading  bool                 `json:"loading"`
	Error    string               `json:"error"`
	Delete   listview.DeleteState `json:"delete"`
	Mutation string               `json:"mutationError"`
}

type wireMessage struct {
	Type      string          `json:"type"`
	RequestID string          `json:"requestId"`
	Data      json.RawMessage `json:"data"`
}

type itemBackend struct {
	mu      sync.Mutex
	queries []listview.QueryState
	sources []string
	delErr  error
}

func (b *itemBackend) fetch(_ context.Context, source string, q listview.QueryState) (listview.Page[item], error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queries = append(b.queries, q)
	b.sources = append(b.sources, source)
	return listview.Page[item]{Rows: []item{{ID: 1, Name: "first"}}, Total: 1}, nil
}

func (b *itemBackend) remove(_ context.Context, _ string, _ string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.delErr
}

func (b *itemBackend) lastQuery() listview.QueryState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queries[len(b.queries)-1]
}

func itemScreen(b *itemBackend) Screen[item] {
	return Screen[item]{
		Name: "items",
		Noun: "item",
		Options: listview.Options{
			PageSizes:       listview.DefaultPageSizes,
			DefaultPageSize: 10,
			SortFields:      []string{"id", "name"},
			DefaultSort:     "id",
			Filters:         []string{"kind"},
		},
		Keys:   listview.IntentKeys{EntityID: "itemId"},
		Fetch:  b.fetch,
		Delete: b.remove,
	}
}

func newLiveServer(t *testing.T, b *itemBackend) *httptest.Server {
	t.Helper()
	h := NewHandler(slog.Default(), listview.NewRefreshSignal(),
		func(*http.Request) backend.Database { return backend.DatabaseSeed },
		[]Binding{itemScreen(b)},
		WithQuiet(5*time.Millisecond, nil))
	r := chi.NewRouter()
	h.MountRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.CloseNow() })
	return conn
}

// readUntil returns the first message of the given type that satisfies match.
func readUntil(t *testing.T, conn *websocket.Conn, kind string, match func(wireMessage) bool) wireMessage {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		var msg wireMessage
		require.NoError(t, wsjson.Read(ctx, conn, &msg))
		if msg.Type == kind && (match == nil || match(msg)) {
			return msg
		}
	}
}

func loadedSnapshot(t *testing.T, conn *websocket.Conn, match func(wireSnapshot) bool) wireSnapshot {
	t.Helper()
	var snap wireSnapshot
	readUntil(t, conn, MsgSnapshot, func(m wireMessage) bool {
		var s wireSnapshot
		if err := json.Unmarshal(m.Data, &s); err != nil || s.Loading {
			return false
		}
		if match != nil && !match(s) {
			return false
		}
		snap = s
		return true
	})
	return snap
}

func send(t *testing.T, conn *websocket.Conn, msgType, id string, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, wsjson.Write(ctx, conn, ClientMessage{Type: msgType, ID: id, Data: raw}))
}

func TestConnectMountsWithIntentAndDatabase(t *testing.T) {
	b := &itemBackend{}
	conn := dial(t, newLiveServer(t, b), "/live/items?itemId=7")

	snap := loadedSnapshot(t, conn, nil)
	assert.Equal(t, "SEED", snap.Source)
	assert.Equal(t, "7", snap.State.EntityID)
	assert.Equal(t, 1, snap.Total)
	require.Len(t, snap.Rows, 1)
	assert.Equal(t, "first", snap.Rows[0].Name)
	assert.Equal(t, "7", b.lastQuery().EntityID)
}

func TestSearchSchedulesFetch(t *testing.T) {
	b := &itemBackend{}
	conn := dial(t, newLiveServer(t, b), "/live/items")
	loadedSnapshot(t, conn, nil)

	send(t, conn, MsgSetSearch, "1", ValueData{Value: "ann"})
	snap := loadedSnapshot(t, conn, func(s wireSnapshot) bool { return s.State.Search == "ann" })
	assert.Equal(t, 0, snap.State.Page)

	require.Eventually(t, func() bool {
		b.mu.Lock()
		defer b.mu.Unlock()
		return b.queries[len(b.queries)-1].Search == "ann"
	}, 2*time.Second, 5*time.Millisecond)
}

func TestSetDatabaseSwitchesSource(t *testing.T) {
	b := &itemBackend{}
	conn := dial(t, newLiveServer(t, b), "/live/items")
	loadedSnapshot(t, conn, nil)

	send(t, conn, MsgSetDatabase, "1", ValueData{Value: "prod"})
	snap := loadedSnapshot(t, conn, func(s wireSnapshot) bool { return s.Source == "PROD" })
	assert.Equal(t, "PROD", snap.Source)

	send(t, conn, MsgSetDatabase, "2", ValueData{Value: "staging"})
	msg := readUntil(t, conn, MsgError, nil)
	assert.Equal(t, "2", msg.RequestID)
}

func TestInvalidMessagesAreRejected(t *testing.T) {
	b := &itemBackend{}
	conn := dial(t, newLiveServer(t, b), "/live/items")
	loadedSnapshot(t, conn, nil)

	cases := []struct {
		msgType string
		data    any
		code    string
	}{
		{MsgSetPageSize, NumberData{Value: 13}, "invalid_state"},
		{MsgSetSort, ValueData{Value: "balance"}, "invalid_state"},
		{MsgSetFilter, FilterData{Name: "colour", Value: "red"}, "invalid_state"},
		{MsgConfirmDelete, struct{}{}, "invalid_delete"},
		{MsgCreate, map[string]string{"name": "x"}, "unsupported"},
		{"explode", struct{}{}, "bad_message"},
	}
	for i, tc := range cases {
		id := string(rune('a' + i))
		send(t, conn, tc.msgType, id, tc.data)
		msg := readUntil(t, conn, MsgError, func(m wireMessage) bool { return m.RequestID == id })
		var data ErrorData
		require.NoError(t, json.Unmarshal(msg.Data, &data))
		assert.Equal(t, tc.code, data.Code, tc.msgType)
	}
}

func TestDeleteFailureKeepsConfirmationOpen(t *testing.T) {
	b := &itemBackend{delErr: &backend.APIError{Operation: "delete item", StatusCode: 409, Message: "Item has dependants"}}
	conn := dial(t, newLiveServer(t, b), "/live/items")
	loadedSnapshot(t, conn, nil)

	send(t, conn, MsgRequestDelete, "1", RowData{ID: "1"})
	send(t, conn, MsgConfirmDelete, "2", struct{}{})
	msg := readUntil(t, conn, MsgMutation, func(m wireMessage) bool { return m.RequestID == "2" })
	var result MutationData
	require.NoError(t, json.Unmarshal(msg.Data, &result))
	assert.False(t, result.OK)
	assert.Equal(t, "Item has dependants", result.Error)

	b.mu.Lock()
	b.delErr = nil
	b.mu.Unlock()
	send(t, conn, MsgConfirmDelete, "3", struct{}{})
	msg = readUntil(t, conn, MsgMutation, func(m wireMessage) bool { return m.RequestID == "3" })
	require.NoError(t, json.Unmarshal(msg.Data, &result))
	assert.True(t, result.OK)
}

func TestPingPong(t *testing.T) {
	conn := dial(t, newLiveServer(t, &itemBackend{}), "/live/items")
	send(t, conn, MsgPing, "p1", struct{}{})
	msg := readUntil(t, conn, MsgPong, nil)
	assert.Equal(t, "p1", msg.RequestID)
}

func TestUnknownScreen(t *testing.T) {
	srv := newLiveServer(t, &itemBackend{})
	resp, err := http.Get(srv.URL + "/live/nothing")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "application/problem+json", resp.Header.Get("Content-Type"))
}

func TestDecodeCreateValidatesSource(t *testing.T) {
	create := DecodeCreate(func(_ context.Context, db backend.Database, req map[string]string) (string, error) {
		if req["name"] == "" {
			return "", errors.New("name required")
		}
		return string(db) + ":" + req["name"], nil
	})
	assert.NoError(t, create(context.Background(), "SEED", json.RawMessage(`{"name":"a"}`)))
	assert.Error(t, create(context.Background(), "LOCAL", json.RawMessage(`{"name":"a"}`)))
	assert.Error(t, create(context.Background(), "SEED", json.RawMessage(`{}`)))
	assert.Error(t, create(context.Background(), "SEED", nil))
}
