package web

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/arthur-debert/congvan/formats"
	"github.com/arthur-debert/congvan/internal/validation"
	"github.com/arthur-debert/congvan/search"
	"github.com/arthur-debert/congvan/types"
)

type searchField struct {
	Name  string
	Label string
	Value string
	Error string
	Date  bool
}

type searchPage struct {
	page
	Params      types.SearchParams
	Fields      []searchField
	HasSearched bool
	Results     table
}

var searchLabels = map[string]string{
	types.FieldIssuedDateFrom:  "Ban hành từ ngày",
	types.FieldIssuedDateTo:    "Đến ngày",
	types.FieldAuthor:          types.Headers["author"],
	types.FieldReferenceNumber: types.Headers["referenceNumber"],
	types.FieldSummary:         types.Headers["summary"],
}

func (s *Server) renderSearch(w http.ResponseWriter, ws *Workspace, status int, errs types.FieldErrors) {
	st := ws.Search.State()
	data := searchPage{
		page:        newPage(ws, "Tìm kiếm văn bản"),
		Params:      st.Params,
		HasSearched: st.HasSearched,
	}
	for _, name := range types.SearchFields[1:] {
		value, _ := st.Params.Get(name)
		data.Fields = append(data.Fields, searchField{
			Name:  name,
			Label: searchLabels[name],
			Value: value,
			Error: errs[name],
			Date:  name == types.FieldIssuedDateFrom || name == types.FieldIssuedDateTo,
		})
	}

	t := st.Params.DocumentType
	params := st.Params
	pagination := st.Pagination()
	pages, sizes := pageLinks(url.Values{}, "/search", "", pagination, st.PageIndex)
	data.Results = table{
		Type:      t,
		Title:     formats.ScopeLabel("search"),
		Headers:   st.Columns.Headers(),
		PageIndex: st.PageIndex,
		PageSize:  st.PageSize,
		Rows: buildRows(t, st.Results, st.Columns, st.Offset(), "", func(d types.Document) map[string][]search.Segment {
			return search.Highlights(d, params)
		}),
		Pagination: pagination,
		Pages:      pages,
		Sizes:      sizes,
		ExportLink: "/export/search/",
		Exports:    formats.All(),
	}
	s.render(w, status, "search.html", data)
}

// handleSearchPage shows the search screen. page and size query
// parameters move through the results of the last search.
func (s *Server) handleSearchPage(w http.ResponseWriter, r *http.Request) {
	ws := s.sessions.Acquire(w, r)
	q := r.URL.Query()
	index, errIndex := strconv.Atoi(q.Get("page"))
	size, errSize := strconv.Atoi(q.Get("size"))
	if (errIndex == nil || errSize == nil) && ws.Search.State().HasSearched {
		st := ws.Search.State()
		if errIndex != nil {
			index = st.PageIndex
		}
		if errSize != nil {
			size = 0
		}
		// failures are queued as notifications
		_ = ws.Search.SetPage(r.Context(), index, size)
	}
	s.renderSearch(w, ws, http.StatusOK, nil)
}

// handleSearch takes the posted form. action=switch only changes the
// register, which resets the form; anything else submits a search.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	ws := s.sessions.Acquire(w, r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if r.PostForm.Get("action") == "switch" {
		if err := ws.Search.UpdateField(types.FieldDocumentType, r.PostForm.Get(types.FieldDocumentType)); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		redirect(w, r, "/search")
		return
	}

	params := types.DefaultSearchParams()
	for _, field := range types.SearchFields {
		value := strings.TrimSpace(r.PostForm.Get(field))
		if field == types.FieldDocumentType && value == "" {
			continue
		}
		params, _ = params.With(field, value)
	}
	if err := validation.Search(params); err != nil {
		if params.DocumentType.Valid() {
			_ = ws.Search.SetParams(params)
		}
		s.renderSearch(w, ws, http.StatusUnprocessableEntity, types.FieldErrorsOf(err))
		return
	}
	if err := ws.Search.SetParams(params); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	_ = ws.Search.Submit(r.Context())
	redirect(w, r, "/search")
}

func (s *Server) handleSearchReset(w http.ResponseWriter, r *http.Request) {
	ws := s.sessions.Acquire(w, r)
	ws.Search.Reset()
	redirect(w, r, "/search")
}
