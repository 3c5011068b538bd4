package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/arthur-debert/congvan/notify"
	"github.com/arthur-debert/congvan/transition"
	"github.com/arthur-debert/congvan/types"
)

type dashboardPage struct {
	page
	Type     types.DocumentType
	Loading  bool
	Waiting  table
	Finished table
}

// handleDashboard reloads the register and renders both tables. Query
// parameters: type, waiting_page, waiting_size, finished_page,
// finished_size.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ws := s.sessions.Acquire(w, r)
	q := r.URL.Query()

	t := ws.Dashboard.Type()
	if v := q.Get("type"); v != "" {
		parsed, err := types.ParseDocumentType(v)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		t = parsed
	}

	// failures are already queued as notifications
	_ = ws.Dashboard.Load(r.Context(), t)

	for _, p := range []types.Partition{types.Waiting, types.Finished} {
		index, size := ws.Dashboard.PageOf(p)
		changed := false
		if v, err := strconv.Atoi(q.Get(string(p) + "_page")); err == nil {
			index, changed = v, true
		}
		if v, err := strconv.Atoi(q.Get(string(p) + "_size")); err == nil && v > 0 {
			size, changed = v, true
		}
		if changed {
			ws.Dashboard.SetPage(p, index, size)
		}
	}

	shown := ws.Dashboard.Type()
	marked := ws.Dashboard.Highlight()
	data := dashboardPage{
		page:    newPage(ws, "Bảng điều khiển · "+shown.Label()),
		Type:    shown,
		Loading: ws.Dashboard.Loading(),
	}
	wIndex, _ := ws.Dashboard.PageOf(types.Waiting)
	fIndex, _ := ws.Dashboard.PageOf(types.Finished)
	data.Waiting = dashboardTable(shown, types.Waiting, ws.Dashboard.View(types.Waiting), wIndex, marked)
	data.Finished = dashboardTable(shown, types.Finished, ws.Dashboard.View(types.Finished), fIndex, marked)
	s.render(w, http.StatusOK, "dashboard.html", data)
}

// handleAction runs finish, publish, recover or transfer on one document
// and returns to the dashboard, which then shows the page holding it
func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	ws := s.sessions.Acquire(w, r)
	t, err := documentType(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	id := types.Code(chi.URLParam(r, "id"))
	back := "/?type=" + string(t)

	if err := s.ensureType(r.Context(), ws, t); err != nil {
		redirect(w, r, back)
		return
	}

	ctx := r.Context()
	helper := ws.Transitions.In(t)
	switch chi.URLParam(r, "action") {
	case "finish":
		_, err = helper.Finish(ctx, id)
	case "publish":
		_, err = helper.Publish(ctx, id)
	case "recover":
		_, err = helper.Recover(ctx, id)
	case "transfer":
		_, err = helper.Transfer(ctx, id, r.PostFormValue("recipient"))
	default:
		http.NotFound(w, r)
		return
	}

	switch {
	case err == nil:
	case errors.Is(err, types.ErrNotFound):
		ws.Notes.Notify(notify.Notification{
			Severity: notify.Warn,
			Summary:  "Không tìm thấy văn bản",
			Detail:   "Danh sách đã thay đổi, vui lòng thử lại.",
		})
	case errors.Is(err, transition.ErrNoRecipient):
		ws.Notes.Notify(notify.Notification{Severity: notify.Warn, Summary: "Vui lòng nhập người nhận"})
	case errors.Is(err, transition.ErrWrongRegister):
		ws.Notes.Notify(notify.Notification{Severity: notify.Warn, Summary: "Thao tác không áp dụng cho sổ văn bản này"})
	case types.FieldErrorsOf(err) != nil:
		ws.Notes.Notify(notify.Notification{
			Severity: notify.Error,
			Summary:  "Dữ liệu không hợp lệ",
			Detail:   err.Error(),
		})
	}
	redirect(w, r, back)
}
