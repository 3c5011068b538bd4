package dashboard

import (
	"context"
	"sync"

	"github.com/arthur-debert/congvan/types"
)

// MockFetcher implements Fetcher for testing
type MockFetcher struct {
	mu    sync.Mutex
	docs  map[types.DocumentType][]types.Document
	err   error
	gates []chan struct{}
	calls int
}

// NewMockFetcher creates a mock serving docs for the incoming register
func NewMockFetcher(docs []types.Document) *MockFetcher {
	return &MockFetcher{docs: map[types.DocumentType][]types.Document{types.Incoming: docs}}
}

// SetDocuments sets the documents served for t
func (m *MockFetcher) SetDocuments(t types.DocumentType, docs []types.Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[t] = docs
}

// SetError configures the mock to return an error
func (m *MockFetcher) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Hold makes the next call block until the returned channel is closed
func (m *MockFetcher) Hold() chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	gate := make(chan struct{})
	m.gates = append(m.gates, gate)
	return gate
}

// Calls returns how many times ListDocuments ran
func (m *MockFetcher) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// ListDocuments returns the mock documents or error
func (m *MockFetcher) ListDocuments(ctx context.Context, t types.DocumentType, page, pageSize int) (*types.ListResult, error) {
	m.mu.Lock()
	m.calls++
	var gate chan struct{}
	if len(m.gates) > 0 {
		gate, m.gates = m.gates[0], m.gates[1:]
	}
	docs, err := m.docs[t], m.err
	m.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return &types.ListResult{
		Documents:  docs,
		Pagination: types.NewPagination(len(docs), page-1, pageSize),
	}, nil
}

// fiveIncoming is the end-to-end scenario register: five incoming
// documents, two of them waiting
func fiveIncoming() []types.Document {
	return []types.Document{
		{ID: "a", DocumentNumber: "1", Status: types.StatusFinished},
		{ID: "b", DocumentNumber: "2", Status: types.StatusWaiting},
		{ID: "c", DocumentNumber: "3", Status: types.StatusFinished},
		{ID: "d", DocumentNumber: "4", Status: types.StatusWaiting},
		{ID: "e", DocumentNumber: "5", Status: types.StatusFinished},
	}
}
