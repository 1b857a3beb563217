package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/validation"
)

const testSecret = "test-secret"

type testAPI struct {
	t      *testing.T
	router *gin.Engine
	db     *gorm.DB
	auth   *service.AuthService
}

func setupTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, validation.RegisterBindings())

	db := testhelpers.SetupTestDatabase(t)
	cfg := &config.Config{
		JWTSecret:   testSecret,
		TokenTTL:    time.Hour,
		PageSize:    6,
		MaxPageSize: 100,
	}

	router := gin.New()
	router.Use(middleware.ErrorHandler(zap.NewNop()))
	RegisterRoutes(router, Dependencies{
		DB:     db,
		Images: service.NewLocalImageStore(t.TempDir(), "/media/"),
		Config: cfg,
		Log:    zap.NewNop(),
	})

	return &testAPI{
		t:      t,
		router: router,
		db:     db,
		auth:   service.NewAuthService(db, testSecret, time.Hour, nil),
	}
}

// token returns a valid auth token for user
func (a *testAPI) token(user *models.User) string {
	a.t.Helper()
	token, err := a.auth.GenerateToken(user)
	require.NoError(a.t, err)
	return token
}

// do sends a request with an optional JSON body and token
func (a *testAPI) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}

	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}
