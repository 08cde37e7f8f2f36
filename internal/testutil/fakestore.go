package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
)

// Row is a raw record as the store would hold it.
type Row = map[string]any

// FakeStore is an in-memory stand-in for the tabular data store. It serves
// the REST subset the client uses: eq filters, or=() disjunctions with eq
// and ilike conditions, order, limit, and offset. Inserted rows get a
// uuid id unless one is supplied.
type FakeStore struct {
	mu     sync.Mutex
	tables map[string][]Row
	server *httptest.Server

	// EmptyWriteBodies makes POST answer 201 with an empty body, matching
	// stores that ignore the representation preference.
	EmptyWriteBodies bool

	// FailPost maps resource names ("tags", "links") to a status code that
	// every POST to that resource should fail with. Zero means succeed.
	FailPost map[string]int

	// FailPostAfter allows N successful POSTs to a resource before failing
	// the rest with a 500. Exercises partial-write paths.
	FailPostAfter map[string]int
}

// NewFakeStore starts a fake store that shuts down with the test.
func NewFakeStore(t *testing.T) *FakeStore {
	t.Helper()
	f := &FakeStore{
		tables:        map[string][]Row{},
		FailPost:      map[string]int{},
		FailPostAfter: map[string]int{},
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

// URL returns the base URL to point a client at.
func (f *FakeStore) URL() string {
	return f.server.URL
}

// Rows returns a copy of a table's rows.
func (f *FakeStore) Rows(table string) []Row {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Row, len(f.tables[table]))
	copy(out, f.tables[table])
	return out
}

// Seed inserts a row directly, assigning an id when absent, and returns it.
func (f *FakeStore) Seed(table string, row Row) Row {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := row["id"]; !ok {
		row["id"] = uuid.NewString()
	}
	f.tables[table] = append(f.tables[table], row)
	return row
}

func (f *FakeStore) handle(w http.ResponseWriter, r *http.Request) {
	table := strings.TrimPrefix(r.URL.Path, "/rest/v1/")
	if table == r.URL.Path || table == "" {
		http.Error(w, `{"message":"unknown resource"}`, http.StatusNotFound)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodGet:
		f.handleGet(w, r, table)
	case http.MethodPost:
		f.handlePost(w, r, table)
	case http.MethodPatch:
		f.handlePatch(w, r, table)
	case http.MethodDelete:
		f.handleDelete(w, r, table)
	default:
		http.Error(w, `{"message":"method not allowed"}`, http.StatusMethodNotAllowed)
	}
}

func (f *FakeStore) handleGet(w http.ResponseWriter, r *http.Request, table string) {
	rows := f.match(table, r.URL.Query())
	if order := r.URL.Query().Get("order"); order != "" {
		sortRows(rows, order)
	}
	rows = slice(rows, r.URL.Query())
	writeJSON(w, http.StatusOK, rows)
}

func (f *FakeStore) handlePost(w http.ResponseWriter, r *http.Request, table string) {
	if status := f.FailPost[table]; status != 0 {
		http.Error(w, `{"message":"insert rejected"}`, status)
		return
	}
	if n, ok := f.FailPostAfter[table]; ok {
		if n <= 0 {
			http.Error(w, `{"message":"insert rejected"}`, http.StatusInternalServerError)
			return
		}
		f.FailPostAfter[table] = n - 1
	}
	var row Row
	if err := json.NewDecoder(r.Body).Decode(&row); err != nil {
		http.Error(w, `{"message":"invalid body"}`, http.StatusBadRequest)
		return
	}
	if _, ok := row["id"]; !ok {
		row["id"] = uuid.NewString()
	}
	f.tables[table] = append(f.tables[table], row)

	if f.EmptyWriteBodies {
		w.WriteHeader(http.StatusCreated)
		return
	}
	writeJSON(w, http.StatusCreated, []Row{row})
}

func (f *FakeStore) handlePatch(w http.ResponseWriter, r *http.Request, table string) {
	var patch Row
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, `{"message":"invalid body"}`, http.StatusBadRequest)
		return
	}
	matched := f.match(table, r.URL.Query())
	for _, row := range matched {
		for k, v := range patch {
			row[k] = v
		}
	}
	writeJSON(w, http.StatusOK, matched)
}

func (f *FakeStore) handleDelete(w http.ResponseWriter, r *http.Request, table string) {
	matched := f.match(table, r.URL.Query())
	remaining := f.tables[table][:0]
	for _, row := range f.tables[table] {
		if !containsRow(matched, row) {
			remaining = append(remaining, row)
		}
	}
	f.tables[table] = remaining
	w.WriteHeader(http.StatusNoContent)
}

// match returns the rows satisfying every filter in the query. Matched rows
// are the live maps, so PATCH mutates in place.
func (f *FakeStore) match(table string, query map[string][]string) []Row {
	var out []Row
	for _, row := range f.tables[table] {
		if rowMatches(row, query) {
			out = append(out, row)
		}
	}
	if out == nil {
		out = []Row{}
	}
	return out
}

func rowMatches(row Row, query map[string][]string) bool {
	for key, values := range query {
		switch key {
		case "select", "order", "limit", "offset":
			continue
		}
		for _, v := range values {
			if key == "or" {
				if !orMatches(row, v) {
					return false
				}
				continue
			}
			if !condMatches(row, key, v) {
				return false
			}
		}
	}
	return true
}

// orMatches evaluates "(field.op.value,field.op.value)".
func orMatches(row Row, expr string) bool {
	expr = strings.TrimPrefix(expr, "(")
	expr = strings.TrimSuffix(expr, ")")
	for _, cond := range strings.Split(expr, ",") {
		parts := strings.SplitN(cond, ".", 2)
		if len(parts) != 2 {
			continue
		}
		if condMatches(row, parts[0], parts[1]) {
			return true
		}
	}
	return false
}

// condMatches evaluates one "op.value" condition against a row field.
func condMatches(row Row, field, opValue string) bool {
	parts := strings.SplitN(opValue, ".", 2)
	if len(parts) != 2 {
		return false
	}
	op, want := parts[0], parts[1]
	got := stringField(row, field)
	switch op {
	case "eq":
		return got == want
	case "ilike":
		want = strings.Trim(want, "%")
		return strings.Contains(strings.ToLower(got), strings.ToLower(want))
	default:
		return false
	}
}

func stringField(row Row, field string) string {
	switch v := row[field].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		b, _ := json.Marshal(v)
		return string(b)
	}
}

// sortRows orders rows by "column.asc" or "column.desc" string comparison.
// RFC3339 timestamps sort correctly this way.
func sortRows(rows []Row, order string) {
	parts := strings.SplitN(order, ".", 2)
	column := parts[0]
	desc := len(parts) == 2 && parts[1] == "desc"
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := stringField(rows[i], column), stringField(rows[j], column)
		if desc {
			return a > b
		}
		return a < b
	})
}

func slice(rows []Row, query map[string][]string) []Row {
	offset := intParam(query, "offset")
	if offset > len(rows) {
		offset = len(rows)
	}
	rows = rows[offset:]
	if limit := intParam(query, "limit"); limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}

func intParam(query map[string][]string, key string) int {
	values := query[key]
	if len(values) == 0 {
		return 0
	}
	n, _ := strconv.Atoi(values[0])
	return n
}

func containsRow(rows []Row, target Row) bool {
	for _, r := range rows {
		if sameRow(r, target) {
			return true
		}
	}
	return false
}

// sameRow compares by identity when ids exist, by full equality otherwise
// (note_tags rows have no natural id in some schemas).
func sameRow(a, b Row) bool {
	if aid, ok := a["id"]; ok {
		return aid == b["id"]
	}
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if stringField(a, k) != stringField(b, k) {
			return false
		}
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
