package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/wes-io-live/support-service/internal/config"
	"github.com/weiawesome/wes-io-live/support-service/internal/domain"
	"github.com/weiawesome/wes-io-live/support-service/internal/hub"
	"github.com/weiawesome/wes-io-live/support-service/internal/kafka"
	"github.com/weiawesome/wes-io-live/support-service/internal/repository"
	"github.com/weiawesome/wes-io-live/support-service/internal/service"
	"github.com/weiawesome/wes-io-live/support-service/internal/testutil"
	"github.com/weiawesome/wes-io-live/support-service/pkg/jwt"
	"github.com/weiawesome/wes-io-live/support-service/pkg/log"
	"github.com/weiawesome/wes-io-live/support-service/pkg/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type testServer struct {
	hub       *hub.Hub
	lifecycle service.Lifecycle
	pipeline  service.Pipeline
	jwt       *jwt.Manager
	engine    *gin.Engine
	mux       *http.ServeMux
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	manager, err := jwt.NewManager("test-secret", "support-test", time.Hour)
	require.NoError(t, err)

	repo := repository.NewGormThreadRepository(testutil.NewDB(t))
	h := hub.NewHub(nil)
	t.Cleanup(h.Close)

	notifier := service.NewNotifier(h, kafka.NoopProducer{})
	pipeline := service.NewPipeline(repo, notifier, nil)
	lifecycle := service.NewLifecycle(repo, pipeline, notifier, nil)

	engine := gin.New()
	NewHTTPHandler(lifecycle, pipeline, middleware.NewAuthMiddleware(manager)).RegisterRoutes(engine)

	wsCfg := config.WebSocketConfig{
		PingInterval:   time.Second,
		PongWait:       5 * time.Second,
		WriteWait:      time.Second,
		MaxMessageSize: 4096,
		SendBuffer:     16,
	}
	mux := http.NewServeMux()
	NewWSHandler(h, lifecycle, manager, nil, wsCfg).RegisterRoutes(mux, log.HTTPMiddleware(log.L()))

	return &testServer{
		hub:       h,
		lifecycle: lifecycle,
		pipeline:  pipeline,
		jwt:       manager,
		engine:    engine,
		mux:       mux,
	}
}

func (s *testServer) token(t *testing.T, u domain.UserSummary) string {
	t.Helper()
	tok, err := s.jwt.GenerateToken(u.ID, u.Email, string(u.Kind))
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, path string, u *domain.UserSummary, body interface{}) (int, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if u != nil {
		req.Header.Set(middleware.AuthHeaderKey, middleware.BearerPrefix+s.token(t, *u))
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

var (
	endUser  = domain.UserSummary{ID: "user-1", Email: "user@example.com", Kind: domain.UserKindEndUser}
	stranger = domain.UserSummary{ID: "user-2", Email: "other@example.com", Kind: domain.UserKindEndUser}
	adminA   = domain.UserSummary{ID: "admin-a", Email: "a@example.com", Kind: domain.UserKindAdmin}
	adminB   = domain.UserSummary{ID: "admin-b", Email: "b@example.com", Kind: domain.UserKindAdmin}
)
