// Package dashboard holds the home screen state: the full list of one
// register, split into waiting and finished tables that are sorted and
// paginated in memory.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/arthur-debert/congvan/listing"
	"github.com/arthur-debert/congvan/notify"
	"github.com/arthur-debert/congvan/types"
)

const (
	// DefaultPageSize is the rows per table page
	DefaultPageSize = 3
	// DefaultLoadSize is how many documents one load fetches
	DefaultLoadSize = 1000
)

// Fetcher loads one page of a register from the backend
type Fetcher interface {
	ListDocuments(ctx context.Context, t types.DocumentType, page, pageSize int) (*types.ListResult, error)
}

// Option configures a Controller
type Option func(*Controller)

// WithNotifier sets where load failures are reported
func WithNotifier(n notify.Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

// WithLogger sets the controller logger
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithPageSize sets the initial page size of both tables
func WithPageSize(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.sizes[types.Waiting] = n
			c.sizes[types.Finished] = n
		}
	}
}

// WithLoadSize sets how many documents a load asks for
func WithLoadSize(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.loadSize = n
		}
	}
}

// WithSortKey sets the ordering of both tables
func WithSortKey(k listing.SortKey) Option {
	return func(c *Controller) { c.sortKey = k }
}

// Controller is the dashboard state of one viewer. All methods are safe
// for concurrent use. The held snapshot is replaced, never modified in
// place, so slices returned by Snapshot stay valid and unchanged.
type Controller struct {
	fetcher  Fetcher
	notifier notify.Notifier
	logger   *slog.Logger
	loadSize int
	sortKey  listing.SortKey

	mu       sync.Mutex
	docType  types.DocumentType
	docs     []types.Document
	version  uint64
	seq      uint64
	cancel   context.CancelFunc
	loading  bool
	closed   bool
	pages    map[types.Partition]int
	sizes    map[types.Partition]int
	marked   types.Code
	markSeq  uint64
	markStop *time.Timer
}

// New creates an empty controller showing the incoming register
func New(fetcher Fetcher, opts ...Option) *Controller {
	c := &Controller{
		fetcher:  fetcher,
		notifier: notify.Discard,
		logger:   slog.Default(),
		loadSize: DefaultLoadSize,
		sortKey:  listing.ByDocumentNumber,
		docType:  types.Incoming,
		pages:    map[types.Partition]int{types.Waiting: 0, types.Finished: 0},
		sizes:    map[types.Partition]int{types.Waiting: DefaultPageSize, types.Finished: DefaultPageSize},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load fetches the register t and replaces the snapshot with it. A load
// supersedes any load still in flight: the older one is cancelled and its
// response, should it still arrive, is dropped with ErrStale. On failure
// the previous snapshot is kept and a notification is emitted.
func (c *Controller) Load(ctx context.Context, t types.DocumentType) error {
	if !t.Valid() {
		return fmt.Errorf("failed to load: %w: %q", types.ErrUnknownDocumentType, t)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return types.ErrClosed
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.seq++
	id := c.seq
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.loading = true
	loadSize := c.loadSize
	c.mu.Unlock()
	defer cancel()

	logger := c.logger.With("op", "load", "type", t, "request", id)
	logger.Debug("loading documents", "size", loadSize)

	result, err := c.fetcher.ListDocuments(ctx, t, 1, loadSize)

	c.mu.Lock()
	defer c.mu.Unlock()
	if id != c.seq {
		logger.Debug("discarding superseded response")
		return types.ErrStale
	}
	c.loading = false
	c.cancel = nil
	if c.closed {
		return types.ErrClosed
	}

	if err != nil {
		logger.Warn("load failed", "error", err)
		if !errors.Is(err, context.Canceled) {
			c.notifier.Notify(notify.Notification{
				Severity: notify.Error,
				Summary:  "Lỗi",
				Detail:   fmt.Sprintf("Không thể tải danh sách %s", strings.ToLower(t.Label())),
			})
		}
		return fmt.Errorf("failed to load %s documents: %w", t, err)
	}

	if t != c.docType {
		c.pages[types.Waiting] = 0
		c.pages[types.Finished] = 0
		c.clearMarkLocked()
	}
	c.docType = t
	c.docs = listing.WithIssuedAt(result.Documents)
	c.version++
	for _, p := range []types.Partition{types.Waiting, types.Finished} {
		n := len(listing.Filter(c.docs, p))
		c.pages[p] = listing.ClampPage(c.pages[p], n, c.sizes[p])
	}
	logger.Info("documents loaded", "count", len(c.docs), "version", c.version)
	return nil
}

// Type returns the register of the current snapshot
func (c *Controller) Type() types.DocumentType {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.docType
}

// Snapshot returns the held documents. Callers must not modify the slice.
func (c *Controller) Snapshot() []types.Document {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.docs
}

// Version increases every time the snapshot is replaced
func (c *Controller) Version() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// Loading reports whether a load is in flight
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Partition returns both tables, each sorted
func (c *Controller) Partition() (waiting, finished []types.Document) {
	c.mu.Lock()
	defer c.mu.Unlock()
	waiting, finished = listing.Split(c.docs)
	return listing.Sort(waiting, c.sortKey), listing.Sort(finished, c.sortKey)
}

// View returns the current page of one table
func (c *Controller) View(p types.Partition) listing.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return listing.Derive(c.docs, p, c.sortKey, c.pages[p], c.sizes[p])
}

// PageOf returns the page index and size of one table
func (c *Controller) PageOf(p types.Partition) (index, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pages[p], c.sizes[p]
}

// SetPage moves one table to page index. A positive size also changes the
// page size. The index is clamped to the pages that exist.
func (c *Controller) SetPage(p types.Partition, index, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if size > 0 {
		c.sizes[p] = size
	}
	n := len(listing.Filter(c.docs, p))
	c.pages[p] = listing.ClampPage(index, n, c.sizes[p])
}

// Lookup finds a document of the snapshot by id
func (c *Controller) Lookup(id types.Code) (types.Document, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := listing.IndexOf(c.docs, id)
	if i < 0 {
		return types.Document{}, false
	}
	return c.docs[i], true
}

// Resolve is Lookup that also returns the register the document belongs
// to, read under the same lock
func (c *Controller) Resolve(id types.Code) (types.Document, types.DocumentType, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := listing.IndexOf(c.docs, id)
	if i < 0 {
		return types.Document{}, c.docType, false
	}
	return c.docs[i], c.docType, true
}

// ApplyStatusTransition replaces the document id of register t with a copy
// carrying the new status and fields. An unknown id, or a board that has
// switched to another register, leaves the snapshot untouched and reports
// false.
func (c *Controller) ApplyStatusTransition(t types.DocumentType, id types.Code, status string, fields map[string]string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t != c.docType {
		c.logger.Info("status transition ignored: register changed", "id", id, "type", t, "showing", c.docType)
		return false
	}
	next, ok := listing.ApplyTransition(c.docs, id, status, fields)
	if !ok {
		c.logger.Info("status transition ignored: document not in snapshot", "id", id, "status", status)
		return false
	}
	c.docs = next
	c.version++
	c.logger.Debug("status transition applied", "id", id, "status", status, "version", c.version)
	return true
}

// Relocate moves table p to the page holding document id of register t
// and returns that page. When the document is not in p, or the board shows
// another register, nothing changes.
func (c *Controller) Relocate(t types.DocumentType, id types.Code, p types.Partition) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t != c.docType {
		return 0, false
	}
	page, ok := listing.Locate(listing.Sorted(c.docs, p, c.sortKey), id, c.sizes[p])
	if !ok {
		return 0, false
	}
	c.pages[p] = page
	return page, true
}

// MarkHighlight flags document id of register t for ttl. A newer mark
// replaces an older one; a mark for a register the board no longer shows
// is dropped.
func (c *Controller) MarkHighlight(t types.DocumentType, id types.Code, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t != c.docType {
		return
	}
	c.clearMarkLocked()
	c.marked = id
	c.markSeq++
	seq := c.markSeq
	c.markStop = time.AfterFunc(ttl, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.markSeq == seq {
			c.marked = ""
			c.markStop = nil
		}
	})
}

// Highlight returns the flagged document id, or "" when none is
func (c *Controller) Highlight() types.Code {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.marked
}

// Close aborts an in-flight load and stops the highlight timer. Later
// calls to Load return ErrClosed.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.loading = false
	c.clearMarkLocked()
}

func (c *Controller) clearMarkLocked() {
	if c.markStop != nil {
		c.markStop.Stop()
		c.markStop = nil
	}
	c.markSeq++
	c.marked = ""
}
