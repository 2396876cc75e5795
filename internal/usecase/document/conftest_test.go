package document

import (
	"context"
	"sync"

	"github.com/kailas-cloud/docsearch/internal/domain"
	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
	"github.com/kailas-cloud/docsearch/internal/domain/search/ordering"
)

// --- Mocks ---

type mockRepo struct {
	docs      map[string]domdoc.Document
	saveErr   error
	deleteErr error
	listErr   error
	listTotal int

	gotPage  int
	gotLimit int
	gotBy    ordering.Field
}

func newMockRepo() *mockRepo {
	return &mockRepo{docs: make(map[string]domdoc.Document)}
}

func (m *mockRepo) Save(_ context.Context, doc *domdoc.Document) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.docs[doc.ID()] = *doc
	return nil
}

func (m *mockRepo) FindByID(_ context.Context, id string) (domdoc.Document, error) {
	d, ok := m.docs[id]
	if !ok {
		return domdoc.Document{}, domain.ErrDocumentNotFound
	}
	return d, nil
}

func (m *mockRepo) Delete(_ context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.docs[id]; !ok {
		return domain.ErrDocumentNotFound
	}
	delete(m.docs, id)
	return nil
}

func (m *mockRepo) List(
	_ context.Context, page, limit int, by ordering.Field, _ ordering.Direction,
) ([]domdoc.Document, int, error) {
	m.gotPage, m.gotLimit, m.gotBy = page, limit, by
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	out := make([]domdoc.Document, 0, len(m.docs))
	for _, d := range m.docs {
		out = append(out, d)
	}
	return out, m.listTotal, nil
}

type mockBlobs struct {
	mu      sync.Mutex
	data    map[string][]byte
	next    int
	saveErr error
	deleted []string
}

func newMockBlobs() *mockBlobs {
	return &mockBlobs{data: make(map[string][]byte)}
}

func (m *mockBlobs) Save(_ context.Context, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return "", m.saveErr
	}
	m.next++
	h := "blob-" + string(rune('0'+m.next))
	m.data[h] = append([]byte(nil), data...)
	return h, nil
}

func (m *mockBlobs) Read(_ context.Context, handle string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.data[handle]
	if !ok {
		return nil, domain.ErrBlobNotFound
	}
	return d, nil
}

func (m *mockBlobs) Delete(_ context.Context, handle string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, handle)
	m.deleted = append(m.deleted, handle)
	return nil
}

type mockCache struct {
	clears int
	err    error
}

func (m *mockCache) Clear(_ context.Context) (int, error) {
	m.clears++
	return 3, m.err
}
