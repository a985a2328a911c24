package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	dom "Essence/internal/domain"
	"Essence/internal/dto"
	"Essence/internal/repo"
	"Essence/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	gin.EnableJsonDecoderDisallowUnknownFields()
	m.Run()
}

// memRepo mirrors the SQL semantics of PGEssenceRepo in memory:
// serial ids, ILIKE-style substring match, id-ordered pages.
type memRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   []dom.Essence
}

func newMemRepo() *memRepo { return &memRepo{} }

func (r *memRepo) Create(_ context.Context, e dom.Essence) (dom.Essence, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	e.ID = r.nextID
	r.rows = append(r.rows, e)
	return e, nil
}

func (r *memRepo) CreateBatch(ctx context.Context, es []dom.Essence) ([]dom.Essence, error) {
	out := make([]dom.Essence, 0, len(es))
	for _, e := range es {
		row, err := r.Create(ctx, e)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

func (r *memRepo) GetByID(_ context.Context, id int64) (dom.Essence, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.rows {
		if e.ID == id {
			return e, nil
		}
	}
	return dom.Essence{}, pgx.ErrNoRows
}

func (r *memRepo) List(_ context.Context, f repo.EssenceFilter) ([]dom.Essence, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []dom.Essence
	for _, e := range r.rows {
		if f.Name != "" && !strings.Contains(strings.ToLower(e.Name), strings.ToLower(f.Name)) {
			continue
		}
		if f.IsDone != nil && e.IsDone != *f.IsDone {
			continue
		}
		if f.MinQuantity != nil && e.Quantity < *f.MinQuantity {
			continue
		}
		if f.MaxQuantity != nil && e.Quantity > *f.MaxQuantity {
			continue
		}
		matched = append(matched, e)
	}
	if f.Offset >= len(matched) {
		return nil, nil
	}
	matched = matched[f.Offset:]
	if f.Limit < len(matched) {
		matched = matched[:f.Limit]
	}
	return matched, nil
}

func (r *memRepo) Update(_ context.Context, id int64, e dom.Essence) (dom.Essence, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].ID == id {
			e.ID = id
			r.rows[i] = e
			return e, nil
		}
	}
	return dom.Essence{}, pgx.ErrNoRows
}

func (r *memRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].ID == id {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *memRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

func newTestRouter(t *testing.T) (*gin.Engine, *memRepo) {
	t.Helper()
	fake := newMemRepo()
	h := NewEssenceHandler(service.NewEssenceService(fake, nil))
	r := gin.New()
	api := r.Group("/api/essences")
	api.GET("", h.List)
	api.POST("", h.Create)
	api.POST("/bulk", h.BulkCreate)
	api.GET("/:id", h.GetByID)
	api.PUT("/:id", h.Replace)
	api.PATCH("/:id", h.Update)
	api.DELETE("/:id", h.Delete)
	return r, fake
}

func doRequest(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("")
	} else {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeOne(t *testing.T, w *httptest.ResponseRecorder) dto.EssenceResponse {
	t.Helper()
	var out dto.EssenceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []dto.EssenceResponse {
	t.Helper()
	var out []dto.EssenceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func seed(t *testing.T, r *gin.Engine, body string) dto.EssenceResponse {
	t.Helper()
	w := doRequest(t, r, http.MethodPost, "/api/essences", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeOne(t, w)
}

func TestCreateAndGetRoundtrip(t *testing.T) {
	r, _ := newTestRouter(t)

	created := seed(t, r, `{"name":"Apple","quantity":5}`)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "Apple", created.Name)
	assert.Equal(t, int64(5), created.Quantity)
	assert.False(t, created.IsDone)

	w := doRequest(t, r, http.MethodGet, "/api/essences/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created, decodeOne(t, w))
}

func TestCreateQuantityZeroAndExplicitDone(t *testing.T) {
	r, _ := newTestRouter(t)

	e := seed(t, r, `{"name":"Empty","quantity":0,"is_done":true}`)
	assert.Equal(t, int64(0), e.Quantity)
	assert.True(t, e.IsDone)
}

func TestCreateValidation(t *testing.T) {
	r, fake := newTestRouter(t)

	cases := map[string]string{
		"missing name":      `{"quantity":5}`,
		"missing quantity":  `{"name":"Apple"}`,
		"negative quantity": `{"name":"Apple","quantity":-1}`,
		"name too long":     `{"name":"` + strings.Repeat("a", 256) + `","quantity":1}`,
		"unknown field":     `{"name":"Apple","quantity":5,"color":"red"}`,
		"wrong type":        `{"name":"Apple","quantity":"five"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := doRequest(t, r, http.MethodPost, "/api/essences", body)
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
		})
	}
	assert.Equal(t, 0, fake.count())
}

func TestGetNotFound(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doRequest(t, r, http.MethodGet, "/api/essences/42", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "essence not found")
}

func TestGetInvalidID(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doRequest(t, r, http.MethodGet, "/api/essences/abc", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func seedFruit(t *testing.T, r *gin.Engine) {
	t.Helper()
	seed(t, r, `{"name":"Apple","quantity":5}`)
	seed(t, r, `{"name":"Apricot","quantity":3,"is_done":true}`)
	seed(t, r, `{"name":"Banana","quantity":10}`)
}

func TestListNameFilter(t *testing.T) {
	r, _ := newTestRouter(t)
	seedFruit(t, r)

	w := doRequest(t, r, http.MethodGet, "/api/essences?name=ap", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeList(t, w)
	require.Len(t, list, 2)
	assert.Equal(t, "Apple", list[0].Name)
	assert.Equal(t, "Apricot", list[1].Name)
}

func TestListQuantityBounds(t *testing.T) {
	r, _ := newTestRouter(t)
	seedFruit(t, r)

	w := doRequest(t, r, http.MethodGet, "/api/essences?min_quantity=4&max_quantity=10", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeList(t, w)
	require.Len(t, list, 2)
	assert.Equal(t, "Apple", list[0].Name)
	assert.Equal(t, "Banana", list[1].Name)
}

func TestListIsDoneFilter(t *testing.T) {
	r, _ := newTestRouter(t)
	seedFruit(t, r)

	w := doRequest(t, r, http.MethodGet, "/api/essences?is_done=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeList(t, w)
	require.Len(t, list, 1)
	assert.Equal(t, "Apricot", list[0].Name)
}

func TestListPagination(t *testing.T) {
	r, _ := newTestRouter(t)
	seedFruit(t, r)

	w := doRequest(t, r, http.MethodGet, "/api/essences?limit=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeList(t, w)
	require.Len(t, list, 1)
	assert.Equal(t, "Apple", list[0].Name)

	w = doRequest(t, r, http.MethodGet, "/api/essences?name=ap&limit=1&offset=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	list = decodeList(t, w)
	require.Len(t, list, 1)
	assert.Equal(t, "Apricot", list[0].Name)

	w = doRequest(t, r, http.MethodGet, "/api/essences?offset=10", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeList(t, w), 0)
}

func TestListBadQueryParams(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, q := range []string{
		"limit=0",
		"limit=101",
		"offset=-1",
		"min_quantity=-1",
		"max_quantity=-5",
		"is_done=banana",
		"limit=many",
	} {
		t.Run(q, func(t *testing.T) {
			w := doRequest(t, r, http.MethodGet, "/api/essences?"+q, "")
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
		})
	}
}

func TestListEmptyIsJSONArray(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doRequest(t, r, http.MethodGet, "/api/essences", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}

func TestBulkCreatePreservesOrder(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doRequest(t, r, http.MethodPost, "/api/essences/bulk",
		`[{"name":"Apple","quantity":5},{"name":"Apricot","quantity":3,"is_done":true},{"name":"Banana","quantity":10}]`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	list := decodeList(t, w)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"Apple", "Apricot", "Banana"}, []string{list[0].Name, list[1].Name, list[2].Name})
	assert.Equal(t, int64(1), list[0].ID)
	assert.Equal(t, int64(3), list[2].ID)
}

func TestBulkCreateRejectsWholeRequest(t *testing.T) {
	r, fake := newTestRouter(t)

	w := doRequest(t, r, http.MethodPost, "/api/essences/bulk",
		`[{"name":"Apple","quantity":5},{"name":"Bad","quantity":-1}]`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	assert.Equal(t, 0, fake.count())

	w = doRequest(t, r, http.MethodPost, "/api/essences/bulk",
		`[{"name":"Apple","quantity":5,"color":"red"}]`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, 0, fake.count())
}

func TestReplace(t *testing.T) {
	r, _ := newTestRouter(t)
	created := seed(t, r, `{"name":"Apple","quantity":5}`)

	w := doRequest(t, r, http.MethodPut, "/api/essences/1", `{"name":"Pear","quantity":7,"is_done":true}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := decodeOne(t, w)
	assert.Equal(t, created.ID, out.ID)
	assert.Equal(t, "Pear", out.Name)
	assert.Equal(t, int64(7), out.Quantity)
	assert.True(t, out.IsDone)

	// Same values again: every field is still written.
	w = doRequest(t, r, http.MethodPut, "/api/essences/1", `{"name":"Pear","quantity":7,"is_done":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, out, decodeOne(t, w))
}

func TestReplaceRequiresAllFields(t *testing.T) {
	r, _ := newTestRouter(t)
	seed(t, r, `{"name":"Apple","quantity":5}`)

	w := doRequest(t, r, http.MethodPut, "/api/essences/1", `{"name":"Pear","quantity":7}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestReplaceNotFound(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doRequest(t, r, http.MethodPut, "/api/essences/9", `{"name":"Pear","quantity":7,"is_done":false}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPatchAppliesOnlySuppliedFields(t *testing.T) {
	r, _ := newTestRouter(t)
	seed(t, r, `{"name":"Apple","quantity":5,"is_done":true}`)

	w := doRequest(t, r, http.MethodPatch, "/api/essences/1", `{"quantity":9}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := decodeOne(t, w)
	assert.Equal(t, "Apple", out.Name)
	assert.Equal(t, int64(9), out.Quantity)
	assert.True(t, out.IsDone)

	// Explicit false is present, not absent.
	w = doRequest(t, r, http.MethodPatch, "/api/essences/1", `{"is_done":false}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decodeOne(t, w).IsDone)
}

func TestPatchEmptyPayloadIsNoOp(t *testing.T) {
	r, _ := newTestRouter(t)
	created := seed(t, r, `{"name":"Apple","quantity":5}`)

	w := doRequest(t, r, http.MethodPatch, "/api/essences/1", `{}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created, decodeOne(t, w))
}

func TestPatchValidation(t *testing.T) {
	r, _ := newTestRouter(t)
	seed(t, r, `{"name":"Apple","quantity":5}`)

	w := doRequest(t, r, http.MethodPatch, "/api/essences/1", `{"quantity":-2}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doRequest(t, r, http.MethodPatch, "/api/essences/1", `{"shape":"round"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestPatchNotFound(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doRequest(t, r, http.MethodPatch, "/api/essences/7", `{"quantity":1}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteThenNotFound(t *testing.T) {
	r, _ := newTestRouter(t)
	seed(t, r, `{"name":"Apple","quantity":5}`)

	w := doRequest(t, r, http.MethodDelete, "/api/essences/1", "")
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = doRequest(t, r, http.MethodDelete, "/api/essences/1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, r, http.MethodGet, "/api/essences/1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, r, http.MethodPatch, "/api/essences/1", `{"quantity":1}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, r, http.MethodPut, "/api/essences/1", `{"name":"X","quantity":1,"is_done":false}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeletedIDIsNotReused(t *testing.T) {
	r, _ := newTestRouter(t)
	seed(t, r, `{"name":"Apple","quantity":5}`)

	w := doRequest(t, r, http.MethodDelete, "/api/essences/1", "")
	require.Equal(t, http.StatusNoContent, w.Code)

	next := seed(t, r, `{"name":"Pear","quantity":1}`)
	assert.Equal(t, int64(2), next.ID)
}
