package listview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Page is one fetched slice of rows plus the total across all pages.
type Page[T any] struct {
	Rows  []T `json:"rows"`
	Total int `json:"totalCount"`
}

// FetchFunc reads one page for the given data source.
type FetchFunc[T any] func(ctx context.Context, source string, q QueryState) (Page[T], error)

// DeleteFunc removes one row.
type DeleteFunc func(ctx context.Context, source, id string) error

// Observer counts fetches. Implementations must be safe for concurrent use.
type Observer interface {
	FetchIssued(screen string)
	FetchDiscarded(screen string)
}

// Config wires a Controller.
type Config[T any] struct {
	// Name labels logs and metrics, e.g. "customers".
	Name string
	// Noun is the singular used in error messages, e.g. "customer".
	Noun    string
	Options Options
	Source  string
	Fetch   FetchFunc[T]
	Delete  DeleteFunc
	Intents []IntentSource
	Refresh *RefreshSignal
	// Initial restores a table from a URL; nil starts at Options.Initial.
	Initial *QueryState

	Quiet     time.Duration
	AfterFunc AfterFunc
	OnChange  func(Snapshot[T])
	Logger    *slog.Logger
	Observer  Observer
}

// Snapshot is everything a view needs to draw the table.
type Snapshot[T any] struct {
	Version  uint64      `json:"version"`
	Screen   string      `json:"screen"`
	Source   string      `json:"source"`
	State    StateView   `json:"state"`
	Rows     []T         `json:"rows"`
	Total    int         `json:"totalCount"`
	Loading  bool        `json:"loading"`
	Error    string      `json:"error,omitempty"`
	Delete   DeleteState `json:"delete"`
	Mutation string      `json:"mutationError,omitempty"`
}

// StateView is the JSON shape of QueryState.
type StateView struct {
	Page          int               `json:"page"`
	PageSize      int               `json:"pageSize"`
	SortField     string            `json:"sortField"`
	SortDirection SortDirection     `json:"sortDirection"`
	Search        string            `json:"search"`
	Filters       map[string]string `json:"filters"`
	EntityID      string            `json:"entityId,omitempty"`
}

func viewOf(q QueryState) StateView {
	filters := make(map[string]string, len(q.Filters))
	for k, v := range q.Filters {
		filters[k] = v
	}
	return StateView{
		Page:          q.Page,
		PageSize:      q.PageSize,
		SortField:     q.SortField,
		SortDirection: q.SortDirection,
		Search:        q.Search,
		Filters:       filters,
		EntityID:      q.EntityID,
	}
}

// Controller drives one mounted table.
type Controller[T any] struct {
	cfg    Config[T]
	logger *slog.Logger
	sched  *Scheduler
	router *StateIntent

	mu          sync.Mutex
	ctx         context.Context
	state       QueryState
	source      string
	rows        []T
	total       int
	loading     bool
	err         error
	mutationErr string
	del         DeleteState
	seq         uint64
	version     uint64
	mounted     bool
	closed      bool
	unsubscribe func()

	inflight sync.WaitGroup
}

// New validates cfg and returns an unmounted Controller.
func New[T any](cfg Config[T]) (*Controller[T], error) {
	if cfg.Fetch == nil {
		return nil, errors.New("listview: fetch function required")
	}
	if err := cfg.Options.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Noun == "" {
		cfg.Noun = cfg.Name
	}
	router := &StateIntent{}
	cfg.Intents = append(cfg.Intents, router)
	state := cfg.Options.Initial()
	state.Filters = map[string]string{}
	if cfg.Initial != nil {
		state = cfg.Initial.clone()
	}
	return &Controller[T]{
		cfg:    cfg,
		logger: logger.With(slog.String("screen", cfg.Name)),
		sched:  NewScheduler(cfg.Quiet, cfg.AfterFunc),
		router: router,
		ctx:    context.Background(),
		state:  state,
		source: cfg.Source,
		del:    DeleteState{Phase: DeleteIdle},
	}, nil
}

// Mount absorbs any pending intent and fetches immediately.
func (c *Controller[T]) Mount(ctx context.Context) {
	c.mu.Lock()
	if c.mounted || c.closed {
		c.mu.Unlock()
		return
	}
	c.mounted = true
	c.ctx = context.WithoutCancel(ctx)
	c.absorbLocked()
	if c.cfg.Refresh != nil {
		c.unsubscribe = c.cfg.Refresh.Subscribe(func(uint64) {
			c.mu.Lock()
			snap := c.scheduleLocked()
			c.mu.Unlock()
			c.emit(snap)
		})
	}
	snap := c.fetchLocked()
	c.mu.Unlock()
	c.emit(snap)
}

// Navigate delivers an intent to an already mounted table, as a route change would.
func (c *Controller[T]) Navigate(in Intent) {
	c.router.Push(in)
	c.Sync()
}

// Sync absorbs pending intents and fetches at once when any was found.
func (c *Controller[T]) Sync() {
	c.mu.Lock()
	if !c.mounted || c.closed || !c.intentPending() {
		c.mu.Unlock()
		return
	}
	c.absorbLocked()
	snap := c.fetchLocked()
	c.mu.Unlock()
	c.emit(snap)
}

func (c *Controller[T]) intentPending() bool {
	for _, src := range c.cfg.Intents {
		if src.Pending() {
			return true
		}
	}
	return false
}

func (c *Controller[T]) absorbLocked() {
	for _, src := range c.cfg.Intents {
		in, ok := src.Take()
		if !ok {
			continue
		}
		c.state = c.state.Absorb(c.knownFilters(in))
		c.logger.Debug("navigation intent absorbed",
			slog.String("entity_id", in.EntityID),
			slog.String("search", in.Search))
	}
}

func (c *Controller[T]) knownFilters(in Intent) Intent {
	out := Intent{EntityID: in.EntityID, Search: in.Search, Filters: map[string]string{}}
	for name, value := range in.Filters {
		if c.cfg.Options.checkFilter(name) != nil {
			c.logger.Warn("intent filter ignored", slog.String("filter", name))
			continue
		}
		out.Filters[name] = value
	}
	return out
}

// SetFilter sets a structured filter; empty clears it.
func (c *Controller[T]) SetFilter(name, value string) error {
	if err := c.cfg.Options.checkFilter(name); err != nil {
		return err
	}
	return c.transition(func(q QueryState) QueryState { return q.WithFilter(name, value) })
}

// SetSearch replaces the free-text term.
func (c *Controller[T]) SetSearch(term string) error {
	return c.transition(func(q QueryState) QueryState { return q.WithSearch(term) })
}

// SetEntityID replaces the exact identifier filter.
func (c *Controller[T]) SetEntityID(id string) error {
	return c.transition(func(q QueryState) QueryState { return q.WithEntityID(id) })
}

// SetSort sorts by field, toggling the direction when it is already active.
func (c *Controller[T]) SetSort(field string) error {
	if err := c.cfg.Options.checkSortField(field); err != nil {
		return err
	}
	return c.transition(func(q QueryState) QueryState { return q.WithSort(field) })
}

// SetPage moves to another page.
func (c *Controller[T]) SetPage(page int) error {
	if page < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPage, page)
	}
	return c.transition(func(q QueryState) QueryState { return q.WithPage(page) })
}

// SetPageSize changes the number of rows per page.
func (c *Controller[T]) SetPageSize(size int) error {
	if err := c.cfg.Options.checkPageSize(size); err != nil {
		return err
	}
	return c.transition(func(q QueryState) QueryState { return q.WithPageSize(size) })
}

// SetSource switches the data source; the page is kept.
func (c *Controller[T]) SetSource(source string) {
	c.mu.Lock()
	if c.closed || source == c.source {
		c.mu.Unlock()
		return
	}
	c.source = source
	snap := c.scheduleLocked()
	c.mu.Unlock()
	c.emit(snap)
}

func (c *Controller[T]) transition(fn func(QueryState) QueryState) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	next := fn(c.state)
	if next.Equal(c.state) {
		c.mu.Unlock()
		return nil
	}
	c.state = next
	snap := c.scheduleLocked()
	c.mu.Unlock()
	c.emit(snap)
	return nil
}

func (c *Controller[T]) scheduleLocked() *Snapshot[T] {
	if c.closed {
		return nil
	}
	c.sched.Schedule(c.FetchList)
	return c.publishLocked()
}

// FetchList reads the current page now. It does nothing while a navigation
// intent is still waiting to be absorbed.
func (c *Controller[T]) FetchList() {
	c.mu.Lock()
	if c.closed || c.intentPending() {
		c.mu.Unlock()
		return
	}
	snap := c.fetchLocked()
	c.mu.Unlock()
	c.emit(snap)
}

func (c *Controller[T]) fetchLocked() *Snapshot[T] {
	c.sched.Cancel()
	c.seq++
	seq := c.seq
	q := c.state.clone()
	source := c.source
	ctx := c.ctx
	c.loading = true
	if c.cfg.Observer != nil {
		c.cfg.Observer.FetchIssued(c.cfg.Name)
	}

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		page, err := c.cfg.Fetch(ctx, source, q)
		c.complete(seq, page, err)
	}()
	return c.publishLocked()
}

func (c *Controller[T]) complete(seq uint64, page Page[T], err error) {
	c.mu.Lock()
	if c.closed || seq != c.seq {
		c.mu.Unlock()
		c.logger.Debug("stale fetch discarded", slog.Uint64("seq", seq))
		if c.cfg.Observer != nil {
			c.cfg.Observer.FetchDiscarded(c.cfg.Name)
		}
		return
	}
	c.loading = false
	if err != nil {
		c.err = err
		c.logger.Warn("fetch failed", slog.Any("error", err))
	} else {
		c.err = nil
		c.rows = page.Rows
		c.total = page.Total
		if c.total < 0 {
			c.total = 0
		}
	}
	snap := c.publishLocked()
	c.mu.Unlock()
	c.emit(snap)
}

// Mutate runs a create or update; verb names it in the failure message.
// The operation validates its input before any network call. Success
// triggers exactly one fetch; failure leaves the rows alone.
func (c *Controller[T]) Mutate(ctx context.Context, verb string, op func(ctx context.Context, source string) error) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	source := c.source
	c.mu.Unlock()

	err := op(ctx, source)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return err
	}
	var snap *Snapshot[T]
	if err != nil {
		c.mutationErr = describe(err, "Failed to "+verb+" "+c.cfg.Noun)
		snap = c.publishLocked()
	} else {
		c.mutationErr = ""
		snap = c.fetchLocked()
	}
	c.mu.Unlock()
	c.emit(snap)
	return err
}

// RequestDelete opens the confirmation for id.
func (c *Controller[T]) RequestDelete(id string) error {
	return c.deleteTransition(func(d DeleteState) (DeleteState, error) { return d.Request(id) })
}

// CancelDelete closes the confirmation.
func (c *Controller[T]) CancelDelete() error {
	return c.deleteTransition(DeleteState.Cancel)
}

func (c *Controller[T]) deleteTransition(fn func(DeleteState) (DeleteState, error)) error {
	c.mu.Lock()
	next, err := fn(c.del)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.del = next
	snap := c.publishLocked()
	c.mu.Unlock()
	c.emit(snap)
	return nil
}

// ConfirmDelete deletes the pending id. On success the table fetches once;
// on failure the confirmation stays open carrying the backend message.
// A closed controller issues no delete.
func (c *Controller[T]) ConfirmDelete(ctx context.Context) error {
	if c.cfg.Delete == nil {
		return errors.New("listview: delete not supported")
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	next, err := c.del.Confirm()
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.del = next
	id := next.ID
	source := c.source
	snap := c.publishLocked()
	c.mu.Unlock()
	c.emit(snap)

	delErr := c.cfg.Delete(ctx, source, id)

	c.mu.Lock()
	c.del = c.del.Resolve(delErr, describe(delErr, "Failed to delete "+c.cfg.Noun))
	if c.closed {
		c.mu.Unlock()
		return delErr
	}
	if delErr != nil {
		c.logger.Warn("delete failed", slog.String("id", id), slog.Any("error", delErr))
		snap = c.publishLocked()
	} else {
		snap = c.fetchLocked()
	}
	c.mu.Unlock()
	c.emit(snap)
	return delErr
}

// Close unmounts the table: the pending timer is cancelled and in-flight
// results are discarded.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.sched.Stop()
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

// Wait blocks until every issued fetch has returned.
func (c *Controller[T]) Wait() {
	c.inflight.Wait()
}

// State returns a copy of the current query state.
func (c *Controller[T]) State() QueryState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Err returns the last fetch error, nil after a successful fetch.
func (c *Controller[T]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Snapshot returns the current view without bumping the version.
func (c *Controller[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller[T]) publishLocked() *Snapshot[T] {
	c.version++
	snap := c.snapshotLocked()
	return &snap
}

func (c *Controller[T]) snapshotLocked() Snapshot[T] {
	rows := make([]T, len(c.rows))
	copy(rows, c.rows)
	snap := Snapshot[T]{
		Version:  c.version,
		Screen:   c.cfg.Name,
		Source:   c.source,
		State:    viewOf(c.state),
		Rows:     rows,
		Total:    c.total,
		Loading:  c.loading,
		Delete:   c.del,
		Mutation: c.mutationErr,
	}
	if c.err != nil {
		snap.Error = describe(c.err, "Failed to fetch "+c.cfg.Name)
	}
	return snap
}

func (c *Controller[T]) emit(snap *Snapshot[T]) {
	if snap == nil || c.cfg.OnChange == nil {
		return
	}
	c.cfg.OnChange(*snap)
}

type userMessager interface {
	UserMessage() string
}

// describe picks the message an operator sees for err.
func describe(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var um userMessager
	if errors.As(err, &um) {
		if msg := um.UserMessage(); msg != "" {
			return msg
		}
	}
	return fallback
}
