package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/freelance-market/internal/config"
	"github.com/ignatzorin/freelance-market/internal/http/handlers"
	"github.com/ignatzorin/freelance-market/internal/service"
)

// testRouter собирает маршрутизатор на пустых хэндлерах: без токена запросы
// не доходят до сервисов, поэтому достаточно проверки регистрации маршрутов.
func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Env:             "test",
		AllowedOrigins:  []string{},
		RateLimitLimit:  100,
		RateLimitPeriod: time.Minute,
	}
	tokens := service.NewTokenManager("access-secret", "refresh-secret", time.Minute, time.Hour)

	return SetupRouter(
		cfg,
		handlers.NewAuthHandler(nil),
		handlers.NewProfileHandler(nil),
		handlers.NewProjectHandler(nil),
		handlers.NewProposalHandler(nil),
		handlers.NewNotificationHandler(nil),
		handlers.NewStatsHandler(nil, nil, nil),
		handlers.NewMediaHandler(nil, nil),
		handlers.NewWSHandler(nil, tokens),
		handlers.NewHealthHandler(nil),
		tokens,
	)
}

func TestRouter_ProjectLifecycleVerbs(t *testing.T) {
	r := testRouter()
	projectID := uuid.New().String()

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodPut, "/api/projects/" + projectID + "/complete"},
		{http.MethodPut, "/api/projects/" + projectID + "/cancel"},
		{http.MethodPut, "/api/projects/" + projectID + "/auto-accept"},
		{http.MethodPost, "/api/projects/" + projectID + "/submit"},
		{http.MethodGet, "/api/projects/" + projectID + "/submissions"},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(tc.method, tc.path, nil)
		r.ServeHTTP(w, req)

		// Маршрут зарегистрирован: без токена отвечает 401, а не 404
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)
	}

	// Завершение и отмена не принимают POST
	for _, path := range []string{
		"/api/projects/" + projectID + "/complete",
		"/api/projects/" + projectID + "/cancel",
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, path, nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code, "POST %s", path)
	}
}
