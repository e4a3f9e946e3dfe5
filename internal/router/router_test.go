package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"bot_dashboard/internal/handler"
	"bot_dashboard/internal/model"
	"bot_dashboard/internal/service"
	"bot_dashboard/internal/service/votesystem"
	"bot_dashboard/pkg/util/jwt"
)

type stubVote struct{}

func (stubVote) IsOwner(string) bool { return false }
func (stubVote) Get(context.Context, string) (*model.FeatureRequest, error) {
	return nil, nil
}
func (stubVote) GetMany(context.Context, int, int, string, bool, string) (*votesystem.Page, error) {
	return &votesystem.Page{Cards: []model.FeatureRequest{}}, nil
}
func (stubVote) Add(context.Context, string, string, string) (*model.FeatureRequest, error) {
	return &model.FeatureRequest{}, nil
}
func (stubVote) Approve(context.Context, string, string) (*model.FeatureRequest, error) {
	return &model.FeatureRequest{}, nil
}
func (stubVote) Update(context.Context, []votesystem.FeatureEdit, string) error { return nil }
func (stubVote) Delete(context.Context, string, string) error                   { return nil }
func (stubVote) AddVote(context.Context, string, string, string) (*model.FeatureRequest, error) {
	return &model.FeatureRequest{}, nil
}

type stubWs struct{}

func (stubWs) ServeWs(w http.ResponseWriter, _ *http.Request) error {
	w.WriteHeader(http.StatusBadRequest)
	return nil
}

type pathTracker chan string

func (p pathTracker) Track(_ context.Context, _ string, path string) (bool, error) {
	p <- path
	return true, nil
}

func newEngineWith(tracker pathTracker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	jwt.Init("router-test-secret", 5)
	handlers := handler.NewHandlers(&service.Services{Vote: stubVote{}}, stubWs{})
	r := gin.New()
	if tracker == nil {
		NewRouter(handlers, nil).RegisterRoutes(r)
	} else {
		NewRouter(handlers, tracker).RegisterRoutes(r)
	}
	return r
}

func newEngine() *gin.Engine {
	return newEngineWith(nil)
}

func TestPublicAndProtectedRoutes(t *testing.T) {
	r := newEngine()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/vote/list", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	for _, path := range []string{"/api/v1/vote/add", "/api/v1/vote/approve", "/api/v1/vote/update", "/api/v1/vote/delete", "/api/v1/vote/addvote"} {
		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/internal/user", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, _ := jwt.GenerateAccessToken("111")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/internal/user", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.JSONEq(t, `{"id":"111","dev":false}`, w.Body.String())
}

func TestMetricsRoute(t *testing.T) {
	w := httptest.NewRecorder()
	newEngine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestPageViewCoversRoutesOutsideAPI(t *testing.T) {
	tracker := make(pathTracker, 1)
	r := newEngineWith(tracker)
	r.GET("/dashboard", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte("<html></html>"))
	})

	token, _ := jwt.GenerateAccessToken("111")
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Accept", "text/html")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	select {
	case path := <-tracker:
		assert.Equal(t, "/dashboard", path)
	case <-time.After(2 * time.Second):
		t.Fatal("page view not tracked")
	}
}
