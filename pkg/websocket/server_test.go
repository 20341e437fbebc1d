package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func newTestServer(t *testing.T, cfg *Config, serve func(s *Server, w http.ResponseWriter, r *http.Request)) (*Server, *httptest.Server) {
	t.Helper()
	s, err := NewServer(cfg, WithMetrics(NewMetrics(prometheus.NewRegistry(), "test")))
	require.NoError(t, err)
	hs := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		serve(s, w, r)
	}))
	t.Cleanup(func() {
		_ = s.Close()
		hs.Close()
	})
	return s, hs
}

// TestEchoAndStateHooks 测试收发与状态迁移顺序
func TestEchoAndStateHooks(t *testing.T) {
	var mu sync.Mutex
	var transitions []string
	closed := make(chan struct{})

	_, hs := newTestServer(t, nil, func(s *Server, w http.ResponseWriter, r *http.Request) {
		c, err := s.Accept(w, r, nil)
		if err != nil {
			return
		}
		c.OnStateChange(func(_ *Connection, from, to ConnectionState) {
			mu.Lock()
			transitions = append(transitions, from.String()+"->"+to.String())
			mu.Unlock()
			if to == StateClosed {
				close(closed)
			}
		})
		s.Serve(c, HandlerFunc(func(c *Connection, msg *Message) error {
			return c.Send(NewTextMessage(append([]byte("echo:"), msg.Data...)))
		}))
	})

	client, _, err := websocket.DefaultDialer.Dial(wsURL(hs), nil)
	require.NoError(t, err)

	require.NoError(t, client.WriteMessage(websocket.TextMessage, []byte("hi")))
	_, data, err := client.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "echo:hi", string(data))

	require.NoError(t, client.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	_ = client.Close()

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("connection did not reach CLOSED")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"open->closing", "closing->closed"}, transitions)
}

// TestSendQueueFullAndClosed 测试非阻塞发送的两种失败
func TestSendQueueFullAndClosed(t *testing.T) {
	results := make(chan []error, 1)
	cfg := DefaultConfig()
	cfg.SendQueueSize = 1

	_, hs := newTestServer(t, cfg, func(s *Server, w http.ResponseWriter, r *http.Request) {
		c, err := s.Accept(w, r, nil)
		if err != nil {
			return
		}
		// 未进入 Serve，没有写循环消费队列
		errs := []error{c.Send(NewTextMessage([]byte("1"))), c.Send(NewTextMessage([]byte("2")))}
		s.Discard(c)
		errs = append(errs, c.Send(NewTextMessage([]byte("3"))))
		assert.Equal(t, StateClosed, c.State())
		results <- errs
	})

	client, _, err := websocket.DefaultDialer.Dial(wsURL(hs), nil)
	require.NoError(t, err)
	defer client.Close()

	select {
	case errs := <-results:
		assert.NoError(t, errs[0])
		assert.ErrorIs(t, errs[1], ErrSendQueueFull)
		assert.ErrorIs(t, errs[2], ErrConnectionClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not finish")
	}
}

// TestPerIPLimit 测试单 IP 限额
func TestPerIPLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Pool.MaxConnectionsPerIP = 1

	s, hs := newTestServer(t, cfg, func(s *Server, w http.ResponseWriter, r *http.Request) {
		c, err := s.Accept(w, r, nil)
		if err != nil {
			return
		}
		s.Serve(c, nil)
	})

	first, _, err := websocket.DefaultDialer.Dial(wsURL(hs), nil)
	require.NoError(t, err)
	defer first.Close()
	require.Eventually(t, func() bool { return s.Len() == 1 }, time.Second, 5*time.Millisecond)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(hs), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.rejected.WithLabelValues("ip_limit")))
}

// TestServerClose 测试关闭服务端会关闭所有连接
func TestServerClose(t *testing.T) {
	s, hs := newTestServer(t, nil, func(s *Server, w http.ResponseWriter, r *http.Request) {
		c, err := s.Accept(w, r, nil)
		if err != nil {
			return
		}
		s.Serve(c, nil)
	})

	client, _, err := websocket.DefaultDialer.Dial(wsURL(hs), nil)
	require.NoError(t, err)
	defer client.Close()
	require.Eventually(t, func() bool { return s.Len() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, s.Close())
	assert.Equal(t, 0, s.Len())

	_ = client.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err = client.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(hs), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

// TestOriginChecker 测试来源校验
func TestOriginChecker(t *testing.T) {
	req := func(host, origin string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "http://"+host+"/ws", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		return r
	}

	sameOrigin := originChecker(nil)
	assert.True(t, sameOrigin(req("app.local", "")))
	assert.True(t, sameOrigin(req("app.local", "http://app.local")))
	assert.False(t, sameOrigin(req("app.local", "http://evil.local")))

	listed := originChecker([]string{"http://ui.local/"})
	assert.True(t, listed(req("api.local", "http://ui.local")))
	assert.False(t, listed(req("api.local", "http://other.local")))

	assert.True(t, originChecker([]string{"*"})(req("a", "http://b")))
}

// TestConfigValidate 测试配置补齐
func TestConfigValidate(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 256, cfg.SendQueueSize)
	assert.Equal(t, 10*time.Second, cfg.WriteTimeout)

	bad := &Config{PingInterval: time.Minute, PongTimeout: time.Second}
	assert.ErrorIs(t, bad.Validate(), ErrInvalidConfig)
}
