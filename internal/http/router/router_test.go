package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/baggiolabs/baggio/internal/domain/repository"
	adminctrl "github.com/baggiolabs/baggio/internal/http/controllers/admin"
	authctrl "github.com/baggiolabs/baggio/internal/http/controllers/auth"
	healthctrl "github.com/baggiolabs/baggio/internal/http/controllers/health"
	"github.com/baggiolabs/baggio/internal/http/router"
	adminsvc "github.com/baggiolabs/baggio/internal/http/services/admin"
	authsvc "github.com/baggiolabs/baggio/internal/http/services/auth"
	jwtx "github.com/baggiolabs/baggio/internal/jwt"
	"github.com/baggiolabs/baggio/internal/security/password"
	"github.com/baggiolabs/baggio/internal/stats"
	"github.com/baggiolabs/baggio/internal/store/memory"
)

type capturingMailer struct{ lastTo, lastLink string }

func (m *capturingMailer) SendMagicLink(to, link string) error {
	m.lastTo, m.lastLink = to, link
	return nil
}

type env struct {
	handler http.Handler
	svc     *authsvc.Service
	users   *memory.UserRepo
	counter *stats.Counter
	mailer  *capturingMailer
}

func newEnv(t *testing.T) *env {
	t.Helper()
	codec, err := jwtx.NewCodec("baggio", []byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	users := memory.NewUserRepo()
	counts := memory.NewCountRepo()
	svc := authsvc.NewService(users, memory.NewRevokedRepo(), codec, authsvc.Config{
		ValidDuration:       time.Hour,
		RefreshableDuration: 24 * time.Hour,
	})
	counter := stats.New(counts)
	mailer := &capturingMailer{}

	handler := router.New(router.Deps{
		Auth:      authctrl.NewControllers(svc, nil, mailer, counter, "http://test/magic/login"),
		Dashboard: adminctrl.NewDashboardController(adminsvc.NewDashboardService(users, counts, counter)),
		Health:    healthctrl.NewController(noopPinger{}),
		Verifier:  svc,
		Views:     counter,
	})
	return &env{handler: handler, svc: svc, users: users, counter: counter, mailer: mailer}
}

type noopPinger struct{}

func (noopPinger) Ping(context.Context) error { return nil }

func (e *env) addUser(t *testing.T, username, email, pwd, role string) {
	t.Helper()
	hash, err := password.Hash(password.Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, KeyLen: 32}, pwd)
	require.NoError(t, err)
	require.NoError(t, e.users.Create(context.Background(), &repository.User{
		Username: username, Email: email, PasswordHash: hash, Role: role, Active: true,
	}))
}

func (e *env) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *env) login(t *testing.T, email, pwd string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": pwd}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestLoginFlow(t *testing.T) {
	e := newEnv(t)
	e.addUser(t, "maria", "maria@baggio.com", "secreta", "USER")

	tok := e.login(t, "maria@baggio.com", "secreta")

	// Password malo y email inexistente devuelven el mismo 401.
	rec := e.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "maria@baggio.com", "password": "mala"}, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = e.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "nadie@baggio.com", "password": "mala"}, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Introspect del token emitido.
	rec = e.do(t, http.MethodPost, "/api/auth/introspect", map[string]string{"token": tok}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"valid":true`)
}

func TestLogoutAndRefreshFlow(t *testing.T) {
	e := newEnv(t)
	e.addUser(t, "maria", "maria@baggio.com", "secreta", "USER")
	tok := e.login(t, "maria@baggio.com", "secreta")

	// Refresh canjea y quema el viejo.
	rec := e.do(t, http.MethodPost, "/api/auth/refresh", map[string]string{"token": tok}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEqual(t, tok, resp.Token)

	rec = e.do(t, http.MethodPost, "/api/auth/refresh", map[string]string{"token": tok}, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code, "refresh es single-use")

	// Logout del nuevo: 204, y logout repetido también 204.
	rec = e.do(t, http.MethodPost, "/api/auth/logout", map[string]string{"token": resp.Token}, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = e.do(t, http.MethodPost, "/api/auth/logout", map[string]string{"token": resp.Token}, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/auth/introspect", map[string]string{"token": resp.Token}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"valid":false`)
}

func TestRegisterAndMagicLoginFlow(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/register", map[string]string{
		"username": "nueva", "email": "nueva@baggio.com", "password": "secreta123",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Equal(t, "nueva@baggio.com", e.mailer.lastTo)
	require.NotEmpty(t, e.mailer.lastLink)

	// Registro duplicado: 409.
	rec = e.do(t, http.MethodPost, "/api/register", map[string]string{
		"username": "nueva", "email": "nueva@baggio.com", "password": "secreta123",
	}, nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	// Antes de activar, el login con credenciales anda pero la cuenta está inactiva.
	u, err := e.users.GetByUsername(context.Background(), "nueva")
	require.NoError(t, err)
	require.False(t, u.Active)

	// Seguir el magic link activa y devuelve sesión. El link cuenta como vista.
	req := httptest.NewRequest(http.MethodGet, e.mailer.lastLink, nil)
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Contains(t, rr.Body.String(), `"token"`)

	u, err = e.users.GetByUsername(context.Background(), "nueva")
	require.NoError(t, err)
	require.True(t, u.Active)

	s, err := e.counter.CurrentStats(context.Background(), time.Now())
	require.NoError(t, err)
	require.EqualValues(t, 1, s.Views, "el magic login cuenta como page view")
	require.EqualValues(t, 1, s.NewUsers, "el registro cuenta como usuario nuevo")
}

func TestChangePasswordFlow(t *testing.T) {
	e := newEnv(t)
	e.addUser(t, "maria", "maria@baggio.com", "secreta", "USER")
	tok := e.login(t, "maria@baggio.com", "secreta")

	rec := e.do(t, http.MethodPost, "/api/auth/change-password", map[string]string{
		"token": tok, "oldPassword": "mala", "newPassword": "nueva123",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/auth/change-password", map[string]string{
		"token": tok, "oldPassword": "secreta", "newPassword": "nueva123",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	e.login(t, "maria@baggio.com", "nueva123")
}

func TestDashboardRequiresAdminScope(t *testing.T) {
	e := newEnv(t)
	e.addUser(t, "maria", "maria@baggio.com", "secreta", "USER")
	e.addUser(t, "root", "root@baggio.com", "secreta", "ADMIN")

	// Sin token.
	rec := e.do(t, http.MethodGet, "/api/admin/dashboard", nil, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Con token de USER.
	userTok := e.login(t, "maria@baggio.com", "secreta")
	rec = e.do(t, http.MethodGet, "/api/admin/dashboard", nil, map[string]string{"Authorization": "Bearer " + userTok})
	require.Equal(t, http.StatusForbidden, rec.Code)

	// Con token de ADMIN.
	adminTok := e.login(t, "root@baggio.com", "secreta")
	rec = e.do(t, http.MethodGet, "/api/admin/dashboard", nil, map[string]string{"Authorization": "Bearer " + adminTok})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		TotalUsers int64   `json:"totalUsers"`
		Users      []int64 `json:"users"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.EqualValues(t, 2, resp.TotalUsers)
	require.Len(t, resp.Users, 3)
}

func TestHealthAndInvalidJSON(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/healthz", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = e.do(t, http.MethodGet, "/readyz", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString("{no-json"))
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}
