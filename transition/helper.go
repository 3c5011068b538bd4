// Package transition runs the status actions of the dashboard: it asks the
// backend to change a document's status and, once the backend has
// confirmed, applies the change locally, turns the table to the page
// showing the document and flags it for a moment.
package transition

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/arthur-debert/congvan/internal/validation"
	"github.com/arthur-debert/congvan/notify"
	"github.com/arthur-debert/congvan/types"
)

// DefaultHighlight is how long a moved document stays flagged
const DefaultHighlight = 3 * time.Second

// ErrNoRecipient is returned by Transfer without a recipient
var ErrNoRecipient = errors.New("transfer needs a recipient")

// ErrWrongRegister is returned by an action the current register does not
// offer
var ErrWrongRegister = errors.New("action not available for this register")

// Patcher sends status updates to the backend
type Patcher interface {
	UpdateStatus(ctx context.Context, t types.DocumentType, number types.Code, update types.StatusUpdate) error
}

// Board is the dashboard state the helper updates. The mutating methods
// take the register the action was resolved against and do nothing once
// the board shows another one.
type Board interface {
	Resolve(id types.Code) (types.Document, types.DocumentType, bool)
	ApplyStatusTransition(t types.DocumentType, id types.Code, status string, fields map[string]string) bool
	Relocate(t types.DocumentType, id types.Code, p types.Partition) (int, bool)
	MarkHighlight(t types.DocumentType, id types.Code, ttl time.Duration)
}

// Outcome describes where a moved document ended up
type Outcome struct {
	ID        types.Code
	Partition types.Partition
	Page      int
	// Applied is false when the document left the snapshot, or the board
	// switched register, while the backend was answering; the backend
	// change still happened
	Applied bool
}

// Option configures a Helper
type Option func(*Helper)

// WithNotifier sets where results are reported
func WithNotifier(n notify.Notifier) Option {
	return func(h *Helper) { h.notifier = n }
}

// WithLogger sets the helper logger
func WithLogger(l *slog.Logger) Option {
	return func(h *Helper) { h.logger = l }
}

// WithHighlight sets how long a moved document stays flagged
func WithHighlight(d time.Duration) Option {
	return func(h *Helper) {
		if d > 0 {
			h.highlight = d
		}
	}
}

// Helper runs status actions against one dashboard
type Helper struct {
	patcher   Patcher
	board     Board
	notifier  notify.Notifier
	logger    *slog.Logger
	highlight time.Duration
	// expect, when set, is the register the caller is acting on
	expect types.DocumentType
}

// New creates a helper acting on board
func New(patcher Patcher, board Board, opts ...Option) *Helper {
	h := &Helper{
		patcher:   patcher,
		board:     board,
		notifier:  notify.Discard,
		logger:    slog.Default(),
		highlight: DefaultHighlight,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// In returns a helper that only acts while the board shows register t
func (h *Helper) In(t types.DocumentType) *Helper {
	c := *h
	c.expect = t
	return &c
}

// action is one kind of status change
type action struct {
	name    string
	success string
	failure string
}

var (
	actFinish   = action{"finish", "Đã kết thúc văn bản số %s", "Không thể kết thúc văn bản số %s"}
	actPublish  = action{"publish", "Đã ban hành văn bản số %s", "Không thể ban hành văn bản số %s"}
	actRecover  = action{"recover", "Đã khôi phục văn bản số %s", "Không thể khôi phục văn bản số %s"}
	actTransfer = action{"transfer", "Đã chuyển văn bản số %s cho %s", "Không thể chuyển văn bản số %s"}
	actReturn   = action{"return", "Đã cập nhật và kết thúc văn bản số %s", "Không thể cập nhật văn bản số %s"}
)

// builder makes the status update once the document's register is known
type builder func(t types.DocumentType) (types.StatusUpdate, error)

func fixed(update types.StatusUpdate) builder {
	return func(types.DocumentType) (types.StatusUpdate, error) { return update, nil }
}

// Finish moves a waiting document to finished
func (h *Helper) Finish(ctx context.Context, id types.Code) (Outcome, error) {
	return h.run(ctx, actFinish, id, fixed(types.StatusUpdate{Status: types.StatusFinished}))
}

// Publish finishes an outgoing document, marking it as issued
func (h *Helper) Publish(ctx context.Context, id types.Code) (Outcome, error) {
	return h.run(ctx, actPublish, id, func(t types.DocumentType) (types.StatusUpdate, error) {
		if t != types.Outgoing {
			return types.StatusUpdate{}, fmt.Errorf("publish %s: %w", id, ErrWrongRegister)
		}
		return types.StatusUpdate{Status: types.StatusFinished}, nil
	})
}

// Recover moves a finished document back to waiting
func (h *Helper) Recover(ctx context.Context, id types.Code) (Outcome, error) {
	return h.run(ctx, actRecover, id, fixed(types.StatusUpdate{Status: types.StatusWaiting}))
}

// Transfer finishes a document by handing it to recipient
func (h *Helper) Transfer(ctx context.Context, id types.Code, recipient string) (Outcome, error) {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return Outcome{ID: id}, fmt.Errorf("transfer %s: %w", id, ErrNoRecipient)
	}
	return h.run(ctx, actTransfer, id, fixed(types.StatusUpdate{
		Status:            types.StatusFinished,
		InternalRecipient: recipient,
	}))
}

// Return saves an edited document and finishes it. The draft is validated
// against the document's register first; the recipient is never part of
// the saved body.
func (h *Helper) Return(ctx context.Context, id types.Code, draft types.Draft) (Outcome, error) {
	return h.run(ctx, actReturn, id, func(t types.DocumentType) (types.StatusUpdate, error) {
		if err := validation.Draft(t, draft); err != nil {
			return types.StatusUpdate{}, err
		}
		fields := draft.Fields()
		delete(fields, "internalRecipient")
		return types.StatusUpdate{Status: types.StatusFinished, Fields: fields}, nil
	})
}

func (h *Helper) run(ctx context.Context, act action, id types.Code, build builder) (Outcome, error) {
	out := Outcome{ID: id}
	logger := h.logger.With("action", act.name, "id", id)

	doc, t, ok := h.board.Resolve(id)
	if !ok || (h.expect != "" && t != h.expect) {
		logger.Info("action ignored: document not in snapshot", "expected", h.expect)
		return out, fmt.Errorf("%s %s: %w", act.name, id, types.ErrNotFound)
	}
	update, err := build(t)
	if err != nil {
		return out, err
	}
	out.Partition = types.PartitionOf(update.Status)
	logger = logger.With("type", t, "status", update.Status)

	number := doc.DocumentNumber
	if number == "" {
		number = doc.ID
	}
	label := number.String()

	if err := h.patcher.UpdateStatus(ctx, t, number, update); err != nil {
		logger.Warn("backend rejected status change", "error", err)
		if types.FieldErrorsOf(err) == nil {
			h.notifier.Notify(notify.Notification{
				Severity: notify.Error,
				Summary:  "Lỗi",
				Detail:   fmt.Sprintf(act.failure, label),
			})
		}
		return out, err
	}

	out.Applied = h.board.ApplyStatusTransition(t, id, update.Status, update.LocalFields())
	if out.Applied {
		if page, found := h.board.Relocate(t, id, out.Partition); found {
			out.Page = page
		}
		h.board.MarkHighlight(t, id, h.highlight)
	}

	detail := fmt.Sprintf(act.success, label)
	if act.name == actTransfer.name {
		detail = fmt.Sprintf(act.success, label, update.InternalRecipient)
	}
	h.notifier.Notify(notify.Notification{Severity: notify.Success, Summary: "Thành công", Detail: detail})
	logger.Info("status changed", "partition", out.Partition, "page", out.Page, "applied", out.Applied)
	return out, nil
}
