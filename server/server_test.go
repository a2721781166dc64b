package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/babushkian/OTBot/model"
	"github.com/babushkian/OTBot/notify"
	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSubmissions struct {
	subs []*model.Submission
	err  error
}

func (m *memSubmissions) GetByID(_ context.Context, id string) (*model.Submission, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, s := range m.subs {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}

func (m *memSubmissions) GetByStatus(_ context.Context, status model.Status) ([]*model.Submission, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*model.Submission
	for _, s := range m.subs {
		if s.Status == status {
			out = append(out, s)
		}
	}
	return out, nil
}

type memLocations []model.Location

func (m memLocations) List(context.Context) ([]model.Location, error) { return m, nil }

type htmlRenderer struct{}

func (htmlRenderer) Render(title string, subs ...*model.Submission) (notify.Document, error) {
	return notify.Document{Name: "report-1.html", ContentType: "text/html", Data: []byte("<h1>" + title + "</h1>")}, nil
}

func newRouter(subs *memSubmissions) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupRoutes(router, NewSubmissionHandler(subs, memLocations{{ID: 1, Name: "Warehouse"}}, htmlRenderer{}, 1.9))
	return router
}

func fixtures() *memSubmissions {
	return &memSubmissions{subs: []*model.Submission{
		{ID: "a", Number: 1, Status: model.StatusPendingReview, Photos: []model.Photo{
			{Hash: "p1", AspectRatio: 0.7}, {Hash: "p2", AspectRatio: 0.6}, {Hash: "p3", AspectRatio: 1.8},
		}},
		{ID: "b", Number: 2, Status: model.StatusActive},
	}}
}

func get(t *testing.T, router *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealth(t *testing.T) {
	w := get(t, newRouter(fixtures()), "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestListSubmissions(t *testing.T) {
	router := newRouter(fixtures())

	w := get(t, router, "/api/submissions")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Count       int                `json:"count"`
		Submissions []model.Submission `json:"submissions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)

	w = get(t, router, "/api/submissions?status=active")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Submissions, 1)
	assert.Equal(t, "b", resp.Submissions[0].ID)

	w = get(t, router, "/api/submissions?status=deleted")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetSubmission(t *testing.T) {
	router := newRouter(fixtures())

	w := get(t, router, "/api/submissions/a")
	require.Equal(t, http.StatusOK, w.Code)
	var sub model.Submission
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sub))
	assert.Equal(t, 1, sub.Number)

	assert.Equal(t, http.StatusNotFound, get(t, router, "/api/submissions/zzz").Code)
}

func TestLayout(t *testing.T) {
	router := newRouter(fixtures())

	w := get(t, router, "/api/submissions/a/layout")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Rows [][]model.Photo `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Rows, 2)
	assert.Equal(t, "p3", resp.Rows[0][0].Hash)
	assert.Equal(t, "p1", resp.Rows[1][0].Hash)
	assert.Equal(t, "p2", resp.Rows[1][1].Hash)

	assert.Equal(t, http.StatusUnprocessableEntity, get(t, router, "/api/submissions/b/layout").Code)
}

func TestReport(t *testing.T) {
	w := get(t, newRouter(fixtures()), "/api/submissions/a/report")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "Violation report")
}

func TestLocations(t *testing.T) {
	w := get(t, newRouter(fixtures()), "/api/locations")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Warehouse")
}

func TestStorageFailure(t *testing.T) {
	subs := fixtures()
	subs.err = errors.New("disk gone")
	router := newRouter(subs)

	assert.Equal(t, http.StatusInternalServerError, get(t, router, "/api/submissions").Code)
	assert.Equal(t, http.StatusInternalServerError, get(t, router, "/api/submissions/a").Code)
}
