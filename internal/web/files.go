package web

import (
	"bytes"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/arthur-debert/congvan/formats"
	"github.com/arthur-debert/congvan/listing"
	"github.com/arthur-debert/congvan/types"
)

// contentDisposition names a download, keeping non-ASCII names intact
func contentDisposition(name string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": name})
}

// handleAttachment streams one attachment under its short name. When the
// backend fails the browser goes back where it came from and the error
// shows as a notification.
func (s *Server) handleAttachment(w http.ResponseWriter, r *http.Request) {
	ws := s.sessions.Acquire(w, r)
	t, err := documentType(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	filename := chi.URLParam(r, "filename")

	err = ws.Search.DownloadAttachment(r.Context(), filename, t, func(name string, body io.Reader) error {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Disposition", contentDisposition(name))
		_, err := io.Copy(w, body)
		return err
	})
	if err != nil && w.Header().Get("Content-Disposition") == "" {
		back := r.Referer()
		if back == "" {
			back = "/"
		}
		redirect(w, r, back)
	}
}

// handleExport writes one table in the requested format. Scope waiting or
// finished exports the whole dashboard table; search exports the current
// result page.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ws := s.sessions.Acquire(w, r)
	format, err := formats.Get(chi.URLParam(r, "format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	scope := chi.URLParam(r, "scope")
	var (
		t       types.DocumentType
		docs    []types.Document
		columns types.ColumnSet
		offset  int
	)
	switch scope {
	case string(types.Waiting), string(types.Finished):
		p := types.Partition(scope)
		t = ws.Dashboard.Type()
		docs = listing.Sorted(ws.Dashboard.Snapshot(), p, listing.ByDocumentNumber)
		columns = types.DashboardColumns(t, p)
	case "search":
		st := ws.Search.State()
		t = st.Params.DocumentType
		docs = st.Results
		columns = st.Columns
		offset = st.Offset()
	default:
		http.NotFound(w, r)
		return
	}

	now := s.now()
	label := formats.ScopeLabel(scope)
	tbl := formats.BuildTable(t.Label()+" · "+label, docs, columns, offset)
	tbl.GeneratedAt = now

	var buf bytes.Buffer
	if err := format.Write(&buf, tbl); err != nil {
		s.logger.Error("export failed", "format", format.Name, "scope", scope, "error", err)
		http.Error(w, "Không thể xuất dữ liệu", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", format.ContentType)
	w.Header().Set("Content-Disposition", contentDisposition(formats.Filename(t, label, format, now)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = io.Copy(w, &buf)
}
