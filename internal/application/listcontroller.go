package application

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ericfisherdev/washdesk/internal/domain/model"
	"github.com/ericfisherdev/washdesk/internal/domain/port/driven"
)

// Fallback notification texts used when the backend does not provide one.
const (
	DeleteSuccessFallback = "Item deleted successfully"
	DeleteErrorFallback   = "Failed to delete item"
)

// ErrDeleteUnsupported is returned by RequestDelete on controllers built
// without a delete function.
var ErrDeleteUnsupported = errors.New("delete is not supported for this resource")

// ErrorMessager is implemented by backend errors that carry a structured,
// user-displayable message.
type ErrorMessager interface {
	UserMessage() string
}

// DeleteRejectedError reports a delete the backend answered without error
// but did not carry out.
type DeleteRejectedError struct {
	Result model.DeleteResult
}

func (e *DeleteRejectedError) Error() string {
	if e.Result.ErrorCode != "" {
		return "delete rejected: " + e.Result.ErrorCode
	}
	return "delete rejected"
}

// UserMessage returns the backend message, if any.
func (e *DeleteRejectedError) UserMessage() string {
	return e.Result.Message
}

// ListState is the snapshot of a list screen exposed to the presentation layer.
type ListState[T any] struct {
	Page         int
	PerPage      int
	Keyword      string // Committed keyword, part of the fetch key.
	InputKeyword string // Raw keyword as typed, shown in the search box.
	IsLoading    bool
	IsError      bool
	Err          error
	Data         model.Page[T]
	IsDeleting   bool
}

// ListControllerConfig tunes a ListController.
type ListControllerConfig struct {
	PerPage  int
	Debounce time.Duration
}

// ListController drives one list screen: paging, debounced keyword search and
// delete with notifications. Results are cached by (resource, page, perPage,
// keyword); only the result of the last-issued fetch for the active key is
// applied, stale results are dropped.
type ListController[T any] struct {
	resource string
	list     driven.ListFunc[T]
	remove   driven.DeleteFunc
	cache    *QueryCache
	notifier driven.Notifier
	logger   *slog.Logger
	debounce *Debouncer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.Mutex
	page       int
	perPage    int
	keyword    string
	input      string
	loading    bool
	err        error
	data       model.Page[T]
	deleting   int
	issued     uint64
	applied    uint64
	closed     bool
	subscriber chan struct{}
}

// NewListController creates a controller for resource. remove may be nil for
// read-only collections. The controller's background fetches are bound to ctx;
// Close must be called when the screen goes away.
func NewListController[T any](
	ctx context.Context,
	resource string,
	list driven.ListFunc[T],
	remove driven.DeleteFunc,
	cache *QueryCache,
	notifier driven.Notifier,
	cfg ListControllerConfig,
	logger *slog.Logger,
) *ListController[T] {
	if cfg.PerPage <= 0 {
		cfg.PerPage = model.DefaultPerPage
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 500 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(ctx)
	return &ListController[T]{
		resource:   resource,
		list:       list,
		remove:     remove,
		cache:      cache,
		notifier:   notifier,
		logger:     logger.With("resource", resource),
		debounce:   NewDebouncer(cfg.Debounce),
		ctx:        ctx,
		cancel:     cancel,
		page:       model.DefaultPage,
		perPage:    cfg.PerPage,
		subscriber: make(chan struct{}, 1),
	}
}

// Close cancels pending keyword commits and in-flight background fetches. No
// background fetch starts once Close has been called.
func (c *ListController[T]) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.debounce.Cancel()
	c.cancel()
	c.wg.Wait()
}

// Changes returns a channel that receives a value whenever the state changes.
// Notifications coalesce: a slow reader sees at most one pending signal.
func (c *ListController[T]) Changes() <-chan struct{} {
	return c.subscriber
}

// State returns a snapshot of the current state.
func (c *ListController[T]) State() ListState[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	return ListState[T]{
		Page:         c.page,
		PerPage:      c.perPage,
		Keyword:      c.keyword,
		InputKeyword: c.input,
		IsLoading:    c.loading,
		IsError:      c.err != nil,
		Err:          c.err,
		Data:         c.data,
		IsDeleting:   c.deleting > 0,
	}
}

// Key returns the cache key of the active query.
func (c *ListController[T]) Key() model.CacheKey {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.keyLocked()
}

// SetKeyword updates the search box immediately and commits the keyword to
// the fetch key once no further call has happened for the debounce window.
// Committing resets the page to 1.
func (c *ListController[T]) SetKeyword(raw string) {
	c.mu.Lock()
	c.input = raw
	c.mu.Unlock()
	c.changed()

	c.debounce.Schedule(func() {
		c.mu.Lock()
		if c.closed || c.keyword == raw {
			c.mu.Unlock()
			return
		}
		c.keyword = raw
		c.page = model.DefaultPage
		key, seq := c.issueLocked()
		c.mu.Unlock()

		c.loadAsync(key, seq)
	})
}

// SetPage moves to the zero-based page index. No bounds checking is done:
// an out-of-range page yields an empty page from the backend.
func (c *ListController[T]) SetPage(index int) {
	c.mu.Lock()
	c.page = index + 1
	key, seq := c.issueLocked()
	c.mu.Unlock()

	c.loadAsync(key, seq)
}

// SetPerPage changes the page size and always resets the page to 1.
func (c *ListController[T]) SetPerPage(n int) {
	if n <= 0 {
		return
	}

	c.mu.Lock()
	c.perPage = n
	c.page = model.DefaultPage
	key, seq := c.issueLocked()
	c.mu.Unlock()

	c.loadAsync(key, seq)
}

// Refresh fetches the active key and waits for the result. A fresh cached
// result is returned without a network call.
func (c *ListController[T]) Refresh(ctx context.Context) error {
	c.mu.Lock()
	key, seq := c.issueLocked()
	c.mu.Unlock()

	return c.load(ctx, key, seq)
}

// Invalidate marks the resource stale and refetches the active key.
func (c *ListController[T]) Invalidate() {
	c.cache.Invalidate(c.resource)

	c.mu.Lock()
	key, seq := c.issueLocked()
	c.mu.Unlock()

	c.loadAsync(key, seq)
}

// RequestDelete deletes one entity. Exactly one notification is emitted per
// call. On success the resource is invalidated and onSuccess (may be nil) is
// invoked; on failure the error is returned so the caller can keep its
// confirmation open.
func (c *ListController[T]) RequestDelete(ctx context.Context, req model.DeleteRequest, onSuccess func()) error {
	if c.remove == nil {
		c.notify(model.NotificationError, "Failed", DeleteErrorFallback)
		return ErrDeleteUnsupported
	}

	c.mu.Lock()
	c.deleting++
	c.mu.Unlock()
	c.changed()

	defer func() {
		c.mu.Lock()
		c.deleting--
		c.mu.Unlock()
		c.changed()
	}()

	res, err := c.remove(ctx, req)
	if err == nil && !res.Success {
		err = &DeleteRejectedError{Result: res}
	}
	if err != nil {
		c.logger.Error("delete failed", "id", req.ID, "error", err)
		c.notify(model.NotificationError, "Failed", errorMessage(err, DeleteErrorFallback))
		return err
	}

	msg := res.Message
	if msg == "" {
		msg = DeleteSuccessFallback
	}
	c.logger.Info("deleted", "id", req.ID)
	c.notify(model.NotificationSuccess, "Success", msg)

	c.Invalidate()
	if onSuccess != nil {
		onSuccess()
	}
	return nil
}

func (c *ListController[T]) keyLocked() model.CacheKey {
	return model.CacheKey{
		Resource: c.resource,
		Page:     c.page,
		PerPage:  c.perPage,
		Keyword:  c.keyword,
	}
}

// issueLocked records a new fetch for the active key and marks the screen as loading.
func (c *ListController[T]) issueLocked() (model.CacheKey, uint64) {
	c.issued++
	c.loading = true
	return c.keyLocked(), c.issued
}

func (c *ListController[T]) loadAsync(key model.CacheKey, seq uint64) {
	// wg.Add under mu so Close never waits on a group that can still grow.
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.wg.Add(1)
	c.mu.Unlock()

	c.changed()
	go func() {
		defer c.wg.Done()
		if err := c.load(c.ctx, key, seq); err != nil && !errors.Is(err, context.Canceled) {
			c.logger.Debug("list fetch failed", "page", key.Page, "per_page", key.PerPage, "error", err)
		}
	}()
}

func (c *ListController[T]) load(ctx context.Context, key model.CacheKey, seq uint64) error {
	page, err := FetchTyped(ctx, c.cache, key, func(ctx context.Context) (model.Page[T], error) {
		return c.list(ctx, key.Query())
	})

	c.mu.Lock()
	// Apply only if the key is still the one on screen and no later fetch
	// has already landed.
	if key != c.keyLocked() || seq < c.applied {
		c.mu.Unlock()
		return err
	}
	c.applied = seq
	if seq == c.issued {
		c.loading = false
	}
	c.err = err
	if err == nil {
		c.data = page
	}
	c.mu.Unlock()

	c.changed()
	return err
}

func (c *ListController[T]) notify(level model.NotificationLevel, title, description string) {
	if c.notifier == nil {
		return
	}
	c.notifier.Notify(model.Notification{
		Level:       level,
		Title:       title,
		Description: description,
		Position:    model.PositionTopRight,
	})
}

func (c *ListController[T]) changed() {
	select {
	case c.subscriber <- struct{}{}:
	default:
	}
}

// errorMessage extracts the first structured backend message from err, or
// returns fallback when there is none.
func errorMessage(err error, fallback string) string {
	var m ErrorMessager
	if errors.As(err, &m) {
		if msg := m.UserMessage(); msg != "" {
			return msg
		}
	}
	return fallback
}
