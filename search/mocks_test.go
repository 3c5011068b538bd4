package search

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"github.com/arthur-debert/congvan/types"
)

// searchCall records one SearchDocuments invocation
type searchCall struct {
	Params   types.SearchParams
	Page     int
	PageSize int
}

// MockBackend implements Backend for testing
type MockBackend struct {
	mu     sync.Mutex
	result *types.ListResult
	err    error
	files  map[string][]byte
	calls  []searchCall
	gates  []chan struct{}
}

// NewMockBackend creates a mock answering every search with documents
func NewMockBackend(documents []types.Document, total int) *MockBackend {
	return &MockBackend{
		result: &types.ListResult{
			Documents:  documents,
			Pagination: types.Pagination{TotalItems: total},
		},
		files: map[string][]byte{},
	}
}

// SetError configures the mock to return an error
func (m *MockBackend) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SetResult replaces the search answer
func (m *MockBackend) SetResult(documents []types.Document, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.result = &types.ListResult{Documents: documents, Pagination: types.Pagination{TotalItems: total}}
}

// Hold makes the next search block until the returned channel is closed
func (m *MockBackend) Hold() chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	gate := make(chan struct{})
	m.gates = append(m.gates, gate)
	return gate
}

// Calls returns the recorded searches
func (m *MockBackend) Calls() []searchCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]searchCall(nil), m.calls...)
}

// SearchDocuments returns the configured result or error
func (m *MockBackend) SearchDocuments(ctx context.Context, params types.SearchParams, page, pageSize int) (*types.ListResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, searchCall{Params: params, Page: page, PageSize: pageSize})
	var gate chan struct{}
	if len(m.gates) > 0 {
		gate, m.gates = m.gates[0], m.gates[1:]
	}
	result, err := m.result, m.err
	m.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DownloadAttachment serves configured files
func (m *MockBackend) DownloadAttachment(ctx context.Context, t types.DocumentType, filename string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	content, ok := m.files[string(t)+"/"+filename]
	if !ok {
		return nil, errors.New("404 not found")
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

// SampleDocuments provides search results out of issue-date order
func SampleDocuments() []types.Document {
	return []types.Document{
		{ID: "1", ReferenceNumber: "12/UBND", Author: "UBND Thành phố", Summary: "Kế hoạch năm", IssuedDate: "", Status: types.StatusWaiting},
		{ID: "2", ReferenceNumber: "08/STC", Author: "Sở Tài chính", Summary: "Quyết toán ngân sách", IssuedDate: "01/01/2024", Status: types.StatusFinished},
		{ID: "3", ReferenceNumber: "45/SYT", Author: "Sở Y tế", Summary: "Báo cáo", IssuedDate: "2023-06-30", Status: types.StatusFinished},
		{ID: "4", ReferenceNumber: "02/VP", Author: "Văn phòng", Summary: "Lịch họp", IssuedDate: "31/02/2023", Status: types.StatusWaiting},
	}
}
