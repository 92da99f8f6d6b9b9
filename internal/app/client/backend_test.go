package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/exp/slog"

	"herdbook/internal/domain/animal"
)

// fakeBackend in-memory implementation of the registration API
type fakeBackend struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]animal.Registration

	posts   map[string]int
	puts    int
	deletes int
	exports int
	tokens  []string

	// insertStatus returns a non-zero status to fail the n-th POST for a number
	insertStatus func(number string, attempt int) int
	updateStatus int
	exportStatus int
	omitID       bool
	onInsert     func()

	server *httptest.Server
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	b := &fakeBackend{
		nextID: 1,
		items:  make(map[int64]animal.Registration),
		posts:  make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
	})
	mux.HandleFunc("POST /register", b.handleInsert)
	mux.HandleFunc("PUT /register/{id}", b.handleUpdate)
	mux.HandleFunc("DELETE /register", b.handleDelete)
	mux.HandleFunc("GET /export", b.handleExport)

	b.server = httptest.NewServer(mux)
	t.Cleanup(b.server.Close)

	return b
}

func (b *fakeBackend) api() *httpClient {
	return newHTTPClient(b.server.URL, 5*time.Second, slog.Default())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (b *fakeBackend) authorize(r *http.Request) {
	b.tokens = append(b.tokens, strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
}

func (b *fakeBackend) handleInsert(w http.ResponseWriter, r *http.Request) {
	var req animal.InsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	b.mu.Lock()
	b.authorize(r)
	b.posts[req.AnimalNumber]++
	attempt := b.posts[req.AnimalNumber]
	hook := b.onInsert
	b.mu.Unlock()

	if hook != nil {
		hook()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.insertStatus != nil {
		if status := b.insertStatus(req.AnimalNumber, attempt); status != 0 {
			writeJSON(w, status, map[string]string{"error": "insert failed"})
			return
		}
	}

	key := animal.NewNaturalKey(req.AnimalNumber, req.CreatedAt)
	var id int64
	for existing, item := range b.items {
		if item.Key() == key {
			id = existing
		}
	}
	if id == 0 {
		id = b.nextID
		b.nextID++
		b.items[id] = animal.Registration{ID: id, Fields: req.Fields, CreatedAt: key.CreatedAt}
	}

	if b.omitID {
		writeJSON(w, http.StatusOK, map[string]string{"status": "Ok"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "status": "Ok"})
}

func (b *fakeBackend) handleUpdate(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.authorize(r)
	b.puts++

	if b.updateStatus != 0 {
		writeJSON(w, b.updateStatus, map[string]string{"error": "update failed"})
		return
	}

	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	item, ok := b.items[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	var fields animal.Fields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	item.Fields = fields
	b.items[id] = item

	writeJSON(w, http.StatusOK, map[string]string{"status": "Ok"})
}

func (b *fakeBackend) handleDelete(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.authorize(r)
	b.deletes++

	var req animal.DeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	key := animal.NewNaturalKey(req.AnimalNumber, req.CreatedAt)
	for id, item := range b.items {
		if item.Key() == key {
			delete(b.items, id)
			writeJSON(w, http.StatusOK, map[string]string{"status": "Ok"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
}

func (b *fakeBackend) handleExport(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.authorize(r)
	b.exports++

	if b.exportStatus != 0 {
		writeJSON(w, b.exportStatus, map[string]string{"error": "export failed"})
		return
	}
	if r.URL.Query().Get("format") != "json" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "format"})
		return
	}

	items := make([]animal.Registration, 0, len(b.items))
	for _, item := range b.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })

	writeJSON(w, http.StatusOK, animal.ExportResponse{Count: len(items), Items: items})
}

func (b *fakeBackend) seed(fields animal.Fields, createdAt time.Time) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.items[id] = animal.Registration{ID: id, Fields: fields, CreatedAt: animal.NormalizeTime(createdAt)}
	return id
}

func (b *fakeBackend) item(id int64) (animal.Registration, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	item, ok := b.items[id]
	return item, ok
}

func (b *fakeBackend) postCount(number string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.posts[number]
}

func (b *fakeBackend) counts() (puts, deletes, exports int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.puts, b.deletes, b.exports
}

func (b *fakeBackend) set(fn func(b *fakeBackend)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(b)
}
