// Package search holds the search screen state: the search form, one page
// of server-side results and the actions that change them.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/arthur-debert/congvan/listing"
	"github.com/arthur-debert/congvan/notify"
	"github.com/arthur-debert/congvan/types"
)

// DefaultPageSize is the initial number of results per page
const DefaultPageSize = 3

// Option configures a Controller
type Option func(*Controller)

// WithNotifier sets where failures are reported
func WithNotifier(n notify.Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

// WithLogger sets the controller logger
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithPageSize sets the initial page size
func WithPageSize(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// Controller is the search screen of one viewer. It is safe for
// concurrent use; the last dispatched search wins.
type Controller struct {
	backend  Backend
	notifier notify.Notifier
	logger   *slog.Logger
	pageSize int

	mu     sync.Mutex
	state  State
	seq    uint64
	cancel context.CancelFunc
	closed bool
}

// New creates a controller with the default form
func New(backend Backend, opts ...Option) *Controller {
	c := &Controller{
		backend:  backend,
		notifier: notify.Discard,
		logger:   slog.Default(),
		pageSize: DefaultPageSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.state = c.initialState(types.DefaultSearchParams())
	return c
}

func (c *Controller) initialState(params types.SearchParams) State {
	return State{
		Params:   params,
		Columns:  types.SearchColumns(params.DocumentType),
		PageSize: c.pageSize,
	}
}

// State returns a copy of the current state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	s.Results = slices.Clone(c.state.Results)
	return s
}

// UpdateField sets one form field. Changing the register resets the form
// to its defaults for the new register, swaps the columns and clears the
// results in the same step; an in-flight search is abandoned.
func (c *Controller) UpdateField(field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if field == types.FieldDocumentType {
		t, err := types.ParseDocumentType(value)
		if err != nil {
			return err
		}
		c.switchTypeLocked(t)
		return nil
	}

	params, err := c.state.Params.With(field, value)
	if err != nil {
		return err
	}
	c.state.Params = params
	return nil
}

// SetParams replaces the whole form, as when it is submitted at once.
// A register change behaves as in UpdateField; readers never see the
// defaults in between.
func (c *Controller) SetParams(params types.SearchParams) error {
	if _, err := types.ParseDocumentType(string(params.DocumentType)); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.switchTypeLocked(params.DocumentType)
	c.state.Params = params
	return nil
}

// switchTypeLocked resets the state for register t unless it is already
// the current one
func (c *Controller) switchTypeLocked(t types.DocumentType) {
	if t == c.state.Params.DocumentType {
		return
	}
	c.abandonLocked()
	params := types.DefaultSearchParams()
	params.DocumentType = t
	pageSize := c.state.PageSize
	c.state = c.initialState(params)
	c.state.PageSize = pageSize
	c.logger.Debug("search register changed", "type", t)
}

// Submit starts a new search from the first page
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	c.state.PageIndex = 0
	c.mu.Unlock()
	return c.Search(ctx)
}

// SetPage moves to another result page and searches again. A positive size
// also changes the page size.
func (c *Controller) SetPage(ctx context.Context, index, size int) error {
	c.mu.Lock()
	if size > 0 {
		c.state.PageSize = size
	}
	c.state.PageIndex = max(index, 0)
	c.mu.Unlock()
	return c.Search(ctx)
}

// Search queries the backend for the current page. On success the results
// are sorted by issue date, undated last. On failure the results are
// cleared and a notification is emitted. Either way HasSearched becomes
// true. A search superseded by a newer one returns ErrStale and changes
// nothing.
func (c *Controller) Search(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return types.ErrClosed
	}
	c.abandonLocked()
	c.seq++
	id := c.seq
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.state.Loading = true
	params := c.state.Params
	page, size := c.state.PageIndex+1, c.state.PageSize
	c.mu.Unlock()
	defer cancel()

	logger := c.logger.With("op", "search", "type", params.DocumentType, "page", page, "request", id)
	logger.Debug("searching", "params", params.Values().Encode())

	result, err := c.backend.SearchDocuments(ctx, params, page, size)

	c.mu.Lock()
	defer c.mu.Unlock()
	if id != c.seq {
		logger.Debug("discarding superseded response")
		return types.ErrStale
	}
	c.cancel = nil
	c.state.Loading = false
	if c.closed {
		return types.ErrClosed
	}

	c.state.HasSearched = true
	if err != nil {
		c.state.Results = nil
		logger.Warn("search failed", "error", err)
		if !errors.Is(err, context.Canceled) {
			c.notifier.Notify(notify.Notification{
				Severity: notify.Error,
				Summary:  "Lỗi",
				Detail:   "Không thể tìm kiếm văn bản. Vui lòng thử lại.",
			})
		}
		return fmt.Errorf("search failed: %w", err)
	}

	c.state.TotalItems = result.Pagination.TotalItems
	c.state.Results = listing.SortByIssuedDate(result.Documents)
	logger.Info("search completed", "results", len(c.state.Results), "total", c.state.TotalItems)
	return nil
}

// Reset restores the default form, default columns and empty results
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.abandonLocked()
	pageSize := c.state.PageSize
	c.state = c.initialState(types.DefaultSearchParams())
	c.state.PageSize = pageSize
}

// DownloadAttachment fetches an attachment and hands it to save under its
// short display name. An empty t means the register being searched. A
// failure is reported as a retryable error notification.
func (c *Controller) DownloadAttachment(ctx context.Context, filename string, t types.DocumentType, save SaveFunc) error {
	if t == "" {
		c.mu.Lock()
		t = c.state.Params.DocumentType
		c.mu.Unlock()
	}
	name := types.ShortFileName(filename)
	logger := c.logger.With("op", "download", "type", t, "file", filename)

	err := c.download(ctx, filename, t, name, save)
	if err != nil {
		logger.Warn("attachment download failed", "error", err)
		c.notifier.Notify(notify.Notification{
			Severity: notify.Error,
			Summary:  "Không thể tải tệp đính kèm",
			Detail:   fmt.Sprintf("%s: vui lòng thử lại sau.", name),
		})
		return err
	}
	logger.Debug("attachment saved", "name", name)
	return nil
}

func (c *Controller) download(ctx context.Context, filename string, t types.DocumentType, name string, save SaveFunc) error {
	rc, err := c.backend.DownloadAttachment(ctx, t, filename)
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()
	if err := save(name, rc); err != nil {
		return fmt.Errorf("failed to save %s: %w", name, err)
	}
	return nil
}

// Close abandons any in-flight search. Later searches return ErrClosed.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.abandonLocked()
}

// abandonLocked cancels the in-flight search and invalidates its response
func (c *Controller) abandonLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.seq++
	c.state.Loading = false
}
