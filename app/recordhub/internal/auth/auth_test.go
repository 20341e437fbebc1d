package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/recordhub/app/recordhub/internal/dao"
	"github.com/lk2023060901/recordhub/app/recordhub/internal/model"
	"github.com/lk2023060901/recordhub/app/recordhub/internal/session"
	"github.com/lk2023060901/recordhub/pkg/crypto"
	"github.com/lk2023060901/recordhub/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// TestAuthorize 测试三种鉴权结果
func TestAuthorize(t *testing.T) {
	admin := model.Roles(model.RoleAdmin)
	tests := []struct {
		name     string
		sess     *session.Session
		required model.RoleSet
		want     Decision
	}{
		{name: "no session", sess: nil, required: admin, want: DecisionUnauthenticated},
		{name: "anonymous session", sess: &session.Session{ID: "s"}, required: admin, want: DecisionUnauthenticated},
		{name: "user vs admin", sess: &session.Session{ID: "s", Username: "user", Roles: model.Roles(model.RoleUser)}, required: admin, want: DecisionForbidden},
		{name: "both roles vs admin", sess: &session.Session{ID: "s", Username: "root", Roles: model.Roles(model.RoleAdmin, model.RoleUser)}, required: admin, want: DecisionAllow},
		{name: "user vs any", sess: &session.Session{ID: "s", Username: "user", Roles: model.Roles(model.RoleUser)}, required: model.Roles(model.RoleAdmin, model.RoleUser), want: DecisionAllow},
		{name: "no roles bound", sess: &session.Session{ID: "s", Username: "ghost"}, required: admin, want: DecisionForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Authorize(tt.sess, tt.required)
			assert.Equal(t, tt.want, d, d.String())
		})
	}

	status, msg := DecisionUnauthenticated.Status()
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Unauthorized", msg)
	status, msg = DecisionForbidden.Status()
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Permission denied", msg)
}

type fixture struct {
	store    *session.MemoryStore
	resolver *Resolver
	server   *httptest.Server
	client   *http.Client
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := session.NewMemoryStore()
	resolver := NewResolver(store, session.NewCookies(session.CookieConfig{Secret: "test-secret"}), time.Hour)

	users := dao.NewMemorySet().Users
	authn := NewAuthenticator(users, crypto.NewBcryptHasher(crypto.WithCost(bcrypt.MinCost)), logger.NewNoop())
	require.NoError(t, authn.Seed(context.Background(), DefaultSeedUsers()))

	r := gin.New()
	r.Use(LoadSession(resolver, logger.NewNoop()))
	NewHandler(resolver, authn, logger.NewNoop()).Register(r)
	r.GET("/admin", RequireRoles(model.RoleAdmin), func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	r.GET("/any", RequireRoles(model.RoleAdmin, model.RoleUser), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": FromContext(c).Username})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &fixture{store: store, resolver: resolver, server: srv, client: &http.Client{Jar: jar}}
}

func (f *fixture) do(t *testing.T, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, f.server.URL+path, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := f.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

// TestWhoamiLoginLogout 测试匿名会话、登录与登出
func TestWhoamiLoginLogout(t *testing.T) {
	f := newFixture(t)

	status, body := f.do(t, http.MethodGet, "/api/auth", nil)
	require.Equal(t, http.StatusOK, status)
	sid, _ := body["sessionid"].(string)
	require.NotEmpty(t, sid)
	assert.NotContains(t, body, "username")
	assert.Equal(t, 1, f.store.Len())

	status, body = f.do(t, http.MethodPost, "/api/auth", map[string]string{"username": "admin", "password": "admin"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, sid, body["sessionid"], "login keeps the session id")
	assert.Equal(t, "admin", body["username"])
	assert.Equal(t, []any{float64(0)}, body["roles"])

	status, _ = f.do(t, http.MethodGet, "/admin", nil)
	assert.Equal(t, http.StatusOK, status)

	status, body = f.do(t, http.MethodDelete, "/api/auth", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, sid, body["sessionid"])
	assert.NotContains(t, body, "username")

	s, err := f.store.Get(context.Background(), sid)
	require.NoError(t, err)
	assert.False(t, s.Authenticated())

	status, body = f.do(t, http.MethodGet, "/admin", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Unauthorized", body["error"])
}

// TestLoginFailures 测试错误凭据
func TestLoginFailures(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		body any
	}{
		{name: "wrong password", body: map[string]string{"username": "admin", "password": "nope"}},
		{name: "unknown user", body: map[string]string{"username": "carol", "password": "carol"}},
		{name: "missing fields", body: map[string]string{}},
		{name: "not an object", body: []int{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := f.do(t, http.MethodPost, "/api/auth", tt.body)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Equal(t, "Error [Invalid credentials]", body["error"])
		})
	}
}

// TestRequireRoles 测试角色不足时返回 403
func TestRequireRoles(t *testing.T) {
	f := newFixture(t)

	status, _ := f.do(t, http.MethodGet, "/any", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = f.do(t, http.MethodPost, "/api/auth", map[string]string{"username": "user", "password": "user"})
	require.Equal(t, http.StatusOK, status)

	status, body := f.do(t, http.MethodGet, "/admin", nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Permission denied", body["error"])

	status, body = f.do(t, http.MethodGet, "/any", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "user", body["user"])
}

// TestResolve 测试 cookie 缺失、伪造与会话消失
func TestResolve(t *testing.T) {
	store := session.NewMemoryStore()
	cookies := session.NewCookies(session.CookieConfig{Secret: "k"})
	r := NewResolver(store, cookies, time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	_, err := r.Resolve(req)
	assert.ErrorIs(t, err, ErrNoSession)

	req.AddCookie(&http.Cookie{Name: cookies.Name(), Value: "forged"})
	_, err = r.Resolve(req)
	assert.ErrorIs(t, err, ErrNoSession)

	rec := httptest.NewRecorder()
	s, err := r.Ensure(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodGet, "/ws", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	got, err := r.Resolve(req)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)

	require.NoError(t, store.Delete(context.Background(), s.ID))
	_, err = r.Resolve(req)
	assert.ErrorIs(t, err, ErrNoSession)
}

// TestSeedIdempotent 测试重复种子不覆盖已有账号
func TestSeedIdempotent(t *testing.T) {
	users := dao.NewMemorySet().Users
	a := NewAuthenticator(users, crypto.NewBcryptHasher(crypto.WithCost(bcrypt.MinCost)), logger.NewNoop())
	ctx := context.Background()

	require.NoError(t, a.Seed(ctx, DefaultSeedUsers()))
	require.NoError(t, a.Seed(ctx, []SeedUser{{Username: "admin", Password: "changed"}}))

	_, err := a.Login(ctx, "admin", "changed")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	u, err := a.Login(ctx, "admin", "admin")
	require.NoError(t, err)
	assert.Equal(t, model.Roles(model.RoleAdmin), u.Roles)

	all, err := users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
