package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/arthur-debert/congvan/internal/validation"
	"github.com/arthur-debert/congvan/notify"
	"github.com/arthur-debert/congvan/types"
)

type formPage struct {
	page
	Type    types.DocumentType
	Editing bool
	ID      types.Code
	Number  string
	Action  string
	Fields  []formField
	Message string
}

// inputKinds maps fields to their form control; others are text inputs
var inputKinds = map[string]string{
	"receivedDate":      "date",
	"issuedDate":        "date",
	"dueDate":           "date",
	"summary":           "textarea",
	"processingOpinion": "textarea",
	"priority":          "select",
	"type":              "select",
	"receivingMethod":   "select",
}

var selectOptions = map[string][]types.Option{
	"priority":        types.PriorityOptions,
	"type":            types.KindOptions,
	"receivingMethod": types.ReceivingMethodOptions,
}

// formFields lays out the draft fields of register t. Outgoing documents
// are not received, so they have no received date or receiving method.
func formFields(t types.DocumentType, d types.Draft, errs types.FieldErrors) []formField {
	fields := make([]formField, 0, len(types.DraftFields))
	for _, name := range types.DraftFields {
		if t == types.Outgoing && (name == "receivedDate" || name == "receivingMethod") {
			continue
		}
		input := inputKinds[name]
		if input == "" {
			input = "text"
		}
		fields = append(fields, formField{
			Name:     name,
			Label:    types.Headers[name],
			Value:    d.Get(name),
			Error:    errs[name],
			Input:    input,
			Options:  selectOptions[name],
			Required: validation.Required(t, name),
		})
	}
	return fields
}

// draftFromForm reads the posted form into a draft
func draftFromForm(r *http.Request) types.Draft {
	var d types.Draft
	for _, name := range types.DraftFields {
		_ = d.Set(name, strings.TrimSpace(r.PostFormValue(name)))
	}
	return d
}

func (s *Server) handleNewForm(w http.ResponseWriter, r *http.Request) {
	ws := s.sessions.Acquire(w, r)
	t := ws.Dashboard.Type()
	if v := r.URL.Query().Get("type"); v != "" {
		parsed, err := types.ParseDocumentType(v)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		t = parsed
	}
	s.render(w, http.StatusOK, "form.html", formPage{
		page:   newPage(ws, "Thêm "+strings.ToLower(t.Label())),
		Type:   t,
		Action: "/documents",
		Fields: formFields(t, types.Draft{}, nil),
	})
}

// handleCreate validates the posted draft, creates the document and
// returns to the dashboard of its register. Validation problems, local or
// reported by the backend, re-render the form with per-field messages.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	ws := s.sessions.Acquire(w, r)
	t, err := types.ParseDocumentType(r.PostFormValue("documentType"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	draft := draftFromForm(r)

	rerender := func(errs types.FieldErrors, message string) {
		s.render(w, http.StatusUnprocessableEntity, "form.html", formPage{
			page:    newPage(ws, "Thêm "+strings.ToLower(t.Label())),
			Type:    t,
			Action:  "/documents",
			Fields:  formFields(t, draft, errs),
			Message: message,
		})
	}

	if errs := validation.CheckDraft(t, draft); errs != nil {
		rerender(errs, "")
		return
	}

	doc, err := s.backend.CreateDocument(r.Context(), t, draft)
	if err != nil {
		s.logger.Warn("create failed", "type", t, "error", err)
		if errs := types.FieldErrorsOf(err); errs != nil {
			rerender(errs, "Dữ liệu không hợp lệ, vui lòng kiểm tra lại.")
			return
		}
		rerender(nil, "Không thể thêm văn bản. Vui lòng thử lại.")
		return
	}

	ws.Notes.Notify(notify.Successf("Thành công", "Đã thêm văn bản số %s", doc.DocumentNumber))
	if err := ws.Dashboard.Load(r.Context(), t); err == nil {
		_, _ = ws.Dashboard.Relocate(t, doc.ID, types.PartitionOf(doc.Status))
		ws.Dashboard.MarkHighlight(t, doc.ID, s.highlight)
	}
	redirect(w, r, "/?type="+string(t))
}

// handleEditForm prefills the edit form from the session's snapshot; the
// id must name a document the dashboard currently holds
func (s *Server) handleEditForm(w http.ResponseWriter, r *http.Request) {
	ws := s.sessions.Acquire(w, r)
	t, err := documentType(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.ensureType(r.Context(), ws, t); err != nil {
		redirect(w, r, "/?type="+string(t))
		return
	}
	id := types.Code(chi.URLParam(r, "id"))
	doc, ok := ws.Dashboard.Lookup(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	s.render(w, http.StatusOK, "form.html", s.editPage(ws, t, doc, types.DraftFrom(doc), nil, ""))
}

func (s *Server) editPage(ws *Workspace, t types.DocumentType, doc types.Document, draft types.Draft, errs types.FieldErrors, message string) formPage {
	return formPage{
		page:    newPage(ws, "Cập nhật văn bản số "+doc.DocumentNumber.String()),
		Type:    t,
		Editing: true,
		ID:      doc.ID,
		Number:  doc.DocumentNumber.String(),
		Action:  "/documents/" + string(t) + "/" + doc.ID.String() + "/return",
		Fields:  formFields(t, draft, errs),
		Message: message,
	}
}

// handleReturn saves the edited document and finishes it
func (s *Server) handleReturn(w http.ResponseWriter, r *http.Request) {
	ws := s.sessions.Acquire(w, r)
	t, err := documentType(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.ensureType(r.Context(), ws, t); err != nil {
		redirect(w, r, "/?type="+string(t))
		return
	}
	id := types.Code(chi.URLParam(r, "id"))
	doc, shown, ok := ws.Dashboard.Resolve(id)
	if !ok || shown != t {
		http.NotFound(w, r)
		return
	}
	draft := draftFromForm(r)
	draft.DocumentNumber = doc.DocumentNumber.String()

	_, err = ws.Transitions.In(t).Return(r.Context(), id, draft)
	switch {
	case err == nil:
		redirect(w, r, "/?type="+string(t))
	case types.FieldErrorsOf(err) != nil:
		var verr *validation.Error
		message := "Dữ liệu không hợp lệ, vui lòng kiểm tra lại."
		if errors.As(err, &verr) {
			message = ""
		}
		s.render(w, http.StatusUnprocessableEntity, "form.html",
			s.editPage(ws, t, doc, draft, types.FieldErrorsOf(err), message))
	case errors.Is(err, types.ErrNotFound):
		http.NotFound(w, r)
	default:
		s.render(w, http.StatusBadGateway, "form.html", s.editPage(ws, t, doc, draft, nil, ""))
	}
}
