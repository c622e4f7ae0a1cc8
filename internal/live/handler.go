package live

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/odyssey-erp/backoffice/internal/backend"
	"github.com/odyssey-erp/backoffice/internal/listview"
	"github.com/odyssey-erp/backoffice/internal/platform/httpx"
)

const writeTimeout = 5 * time.Second

// ConnectionObserver tracks open live connections.
type ConnectionObserver interface {
	LiveConnected(screen string)
	LiveDisconnected(screen string)
}

// Handler upgrades /live/{screen} requests and runs one table per connection.
type Handler struct {
	logger   *slog.Logger
	screens  map[string]Binding
	refresh  *listview.RefreshSignal
	database func(r *http.Request) backend.Database

	origins  []string
	quiet    time.Duration
	after    listview.AfterFunc
	observer listview.Observer
	conns    ConnectionObserver
}

// Option customises a Handler.
type Option func(*Handler)

// WithOriginPatterns allows cross origin websocket upgrades from the given hosts.
func WithOriginPatterns(patterns ...string) Option {
	return func(h *Handler) { h.origins = patterns }
}

// WithQuiet overrides the fetch debounce.
func WithQuiet(d time.Duration, after listview.AfterFunc) Option {
	return func(h *Handler) {
		h.quiet = d
		h.after = after
	}
}

// WithObservers records fetch and connection metrics.
func WithObservers(fetches listview.Observer, conns ConnectionObserver) Option {
	return func(h *Handler) {
		h.observer = fetches
		h.conns = conns
	}
}

// NewHandler builds a Handler. database resolves the operator's selected
// dataset for the upgrading request.
func NewHandler(logger *slog.Logger, refresh *listview.RefreshSignal, database func(r *http.Request) backend.Database, screens []Binding, opts ...Option) *Handler {
	h := &Handler{
		logger:   logger,
		screens:  make(map[string]Binding, len(screens)),
		refresh:  refresh,
		database: database,
		quiet:    listview.DefaultQuiet,
	}
	for _, s := range screens {
		h.screens[s.ScreenName()] = s
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// MountRoutes registers the websocket endpoint.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/live/{screen}", h.Connect)
}

// Connect upgrades the request and serves messages until the socket closes.
func (h *Handler) Connect(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "screen")
	binding, ok := h.screens[name]
	if !ok {
		httpx.RespondError(w, fmt.Errorf("%w: live screen %q", httpx.ErrNotFound, name))
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.origins})
	if err != nil {
		h.logger.Warn("live: websocket accept", slog.Any("error", err))
		return
	}
	defer conn.CloseNow()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	logger := h.logger.With(slog.String("screen", name), slog.String("conn", uuid.NewString()))
	out := &outbox{conn: conn, ctx: ctx, logger: logger}
	sess, err := binding.open(sessionConfig{
		source:   h.database(r).String(),
		query:    r.URL.Query(),
		refresh:  h.refresh,
		quiet:    h.quiet,
		after:    h.after,
		logger:   logger,
		observer: h.observer,
		emit:     out.snapshot,
	})
	if err != nil {
		logger.Error("live: open screen", slog.Any("error", err))
		conn.Close(websocket.StatusInternalError, "screen unavailable")
		return
	}
	if h.conns != nil {
		h.conns.LiveConnected(name)
		defer h.conns.LiveDisconnected(name)
	}
	defer sess.close()
	sess.mount(ctx)

	for {
		var msg ClientMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			if status := websocket.CloseStatus(err); status != -1 {
				logger.Debug("live: connection closed", slog.Int("status", int(status)))
			}
			return
		}
		reply, err := sess.handle(ctx, msg)
		if err != nil {
			out.send(ServerMessage{Type: MsgError, RequestID: msg.ID, Data: ErrorData{Code: errorCode(err), Message: err.Error()}})
			continue
		}
		if reply != nil {
			out.send(*reply)
		}
	}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, errBadMessage):
		return "bad_message"
	case errors.Is(err, ErrUnsupported):
		return "unsupported"
	case errors.Is(err, listview.ErrUnknownFilter), errors.Is(err, listview.ErrUnknownSortField),
		errors.Is(err, listview.ErrInvalidPage), errors.Is(err, listview.ErrInvalidPageSize):
		return "invalid_state"
	case errors.Is(err, listview.ErrDeleteNotPending), errors.Is(err, listview.ErrDeleteInProgress):
		return "invalid_delete"
	default:
		return "rejected"
	}
}

// outbox serialises writes. Snapshots can be emitted from fetch goroutines
// in any order; an older version than the last one sent is dropped.
type outbox struct {
	conn   *websocket.Conn
	ctx    context.Context
	logger *slog.Logger

	mu          sync.Mutex
	lastVersion uint64
}

func (o *outbox) snapshot(version uint64, data any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if version <= o.lastVersion {
		return
	}
	o.lastVersion = version
	o.writeLocked(ServerMessage{Type: MsgSnapshot, Data: data})
}

func (o *outbox) send(msg ServerMessage) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.writeLocked(msg)
}

func (o *outbox) writeLocked(msg ServerMessage) {
	if o.ctx.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(o.ctx, writeTimeout)
	defer cancel()
	if err := wsjson.Write(ctx, o.conn, msg); err != nil {
		o.logger.Debug("live: write", slog.String("type", msg.Type), slog.Any("error", err))
	}
}
