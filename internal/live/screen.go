package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/odyssey-erp/backoffice/internal/backend"
	"github.com/odyssey-erp/backoffice/internal/listview"
)

// ErrUnsupported is returned for a mutation the screen does not offer.
var ErrUnsupported = errors.New("live: operation not supported")

// Screen describes one entity table. Sources are backend database names.
type Screen[T any] struct {
	Name    string
	Noun    string
	Options listview.Options
	Keys    listview.IntentKeys
	Fetch   listview.FetchFunc[T]
	Delete  listview.DeleteFunc
	Create  func(ctx context.Context, source string, payload json.RawMessage) error
	Update  func(ctx context.Context, source, id string, payload json.RawMessage) error
}

// Binding is a Screen with its row type erased so screens of different
// entities can share one handler.
type Binding interface {
	ScreenName() string
	open(cfg sessionConfig) (session, error)
}

type sessionConfig struct {
	source   string
	query    url.Values
	refresh  *listview.RefreshSignal
	quiet    time.Duration
	after    listview.AfterFunc
	logger   *slog.Logger
	observer listview.Observer
	emit     func(version uint64, snapshot any)
}

type session interface {
	mount(ctx context.Context)
	handle(ctx context.Context, msg ClientMessage) (*ServerMessage, error)
	close()
}

// ScreenName implements Binding.
func (s Screen[T]) ScreenName() string { return s.Name }

func (s Screen[T]) open(cfg sessionConfig) (session, error) {
	initial := listview.ParseState(cfg.query, s.Options)
	ctrl, err := listview.New(listview.Config[T]{
		Name:      s.Name,
		Noun:      s.Noun,
		Options:   s.Options,
		Source:    cfg.source,
		Fetch:     s.Fetch,
		Delete:    s.Delete,
		Intents:   []listview.IntentSource{listview.NewQueryIntent(cfg.query, s.Keys)},
		Initial:   &initial,
		Refresh:   cfg.refresh,
		Quiet:     cfg.quiet,
		AfterFunc: cfg.after,
		Logger:    cfg.logger,
		Observer:  cfg.observer,
		OnChange: func(snap listview.Snapshot[T]) {
			cfg.emit(snap.Version, snap)
		},
	})
	if err != nil {
		return nil, err
	}
	return &screenSession[T]{screen: s, ctrl: ctrl}, nil
}

type screenSession[T any] struct {
	screen Screen[T]
	ctrl   *listview.Controller[T]
}

func (s *screenSession[T]) mount(ctx context.Context) { s.ctrl.Mount(ctx) }

func (s *screenSession[T]) close() { s.ctrl.Close() }

// handle applies one client message. A returned error is a protocol level
// rejection; mutation failures come back as a mutation message instead.
func (s *screenSession[T]) handle(ctx context.Context, msg ClientMessage) (*ServerMessage, error) {
	switch msg.Type {
	case MsgSetFilter:
		var d FilterData
		if err := decode(msg.Data, &d); err != nil {
			return nil, err
		}
		return nil, s.ctrl.SetFilter(d.Name, d.Value)
	case MsgSetSearch, MsgSetEntityID, MsgSetSort, MsgSetDatabase:
		var d ValueData
		if err := decode(msg.Data, &d); err != nil {
			return nil, err
		}
		return nil, s.applyValue(msg.Type, d.Value)
	case MsgSetPage, MsgSetPageSize:
		var d NumberData
		if err := decode(msg.Data, &d); err != nil {
			return nil, err
		}
		if msg.Type == MsgSetPage {
			return nil, s.ctrl.SetPage(d.Value)
		}
		return nil, s.ctrl.SetPageSize(d.Value)
	case MsgNavigate:
		var d NavigateData
		if err := decode(msg.Data, &d); err != nil {
			return nil, err
		}
		s.ctrl.Navigate(d)
		return nil, nil
	case MsgCreate:
		if s.screen.Create == nil {
			return nil, ErrUnsupported
		}
		err := s.ctrl.Mutate(ctx, "create", func(ctx context.Context, source string) error {
			return s.screen.Create(ctx, source, msg.Data)
		})
		return s.mutation(msg.ID, err, s.ctrl.Snapshot().Mutation), nil
	case MsgUpdate:
		if s.screen.Update == nil {
			return nil, ErrUnsupported
		}
		var d RowData
		if err := decode(msg.Data, &d); err != nil {
			return nil, err
		}
		err := s.ctrl.Mutate(ctx, "update", func(ctx context.Context, source string) error {
			return s.screen.Update(ctx, source, d.ID, d.Payload)
		})
		return s.mutation(msg.ID, err, s.ctrl.Snapshot().Mutation), nil
	case MsgRequestDelete:
		var d RowData
		if err := decode(msg.Data, &d); err != nil {
			return nil, err
		}
		return nil, s.ctrl.RequestDelete(d.ID)
	case MsgCancelDelete:
		return nil, s.ctrl.CancelDelete()
	case MsgConfirmDelete:
		if err := s.ctrl.ConfirmDelete(ctx); err != nil {
			if errors.Is(err, listview.ErrDeleteNotPending) || errors.Is(err, listview.ErrDeleteInProgress) {
				return nil, err
			}
			return s.mutation(msg.ID, err, s.ctrl.Snapshot().Delete.Err), nil
		}
		return s.mutation(msg.ID, nil, ""), nil
	case MsgPing:
		return &ServerMessage{Type: MsgPong, RequestID: msg.ID}, nil
	default:
		return nil, fmt.Errorf("%w: unknown message type %q", errBadMessage, msg.Type)
	}
}

func (s *screenSession[T]) applyValue(kind, value string) error {
	switch kind {
	case MsgSetSearch:
		return s.ctrl.SetSearch(value)
	case MsgSetEntityID:
		return s.ctrl.SetEntityID(value)
	case MsgSetSort:
		return s.ctrl.SetSort(value)
	default:
		db, err := backend.ParseDatabase(value)
		if err != nil {
			return err
		}
		s.ctrl.SetSource(db.String())
		return nil
	}
}

func (s *screenSession[T]) mutation(requestID string, err error, message string) *ServerMessage {
	data := MutationData{OK: err == nil}
	if err != nil {
		data.Error = message
	}
	return &ServerMessage{Type: MsgMutation, RequestID: requestID, Data: data}
}

var errBadMessage = errors.New("live: bad message")

func decode(raw json.RawMessage, dest any) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: missing data", errBadMessage)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("%w: %v", errBadMessage, err)
	}
	return nil
}

// SourceFetch adapts a service list method that takes a backend database.
func SourceFetch[T any](list func(ctx context.Context, db backend.Database, q listview.QueryState) (listview.Page[T], error)) listview.FetchFunc[T] {
	return func(ctx context.Context, source string, q listview.QueryState) (listview.Page[T], error) {
		db, err := backend.ParseDatabase(source)
		if err != nil {
			return listview.Page[T]{}, err
		}
		return list(ctx, db, q)
	}
}

// SourceDelete adapts a service delete method that takes a backend database.
func SourceDelete(del func(ctx context.Context, db backend.Database, id string) error) listview.DeleteFunc {
	return func(ctx context.Context, source, id string) error {
		db, err := backend.ParseDatabase(source)
		if err != nil {
			return err
		}
		return del(ctx, db, id)
	}
}

// DecodeCreate adapts a service create method taking a typed request.
func DecodeCreate[Req any, Out any](create func(ctx context.Context, db backend.Database, req Req) (Out, error)) func(ctx context.Context, source string, payload json.RawMessage) error {
	return func(ctx context.Context, source string, payload json.RawMessage) error {
		db, err := backend.ParseDatabase(source)
		if err != nil {
			return err
		}
		var req Req
		if err := decode(payload, &req); err != nil {
			return err
		}
		_, err = create(ctx, db, req)
		return err
	}
}
