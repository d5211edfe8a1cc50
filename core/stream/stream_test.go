package stream_test

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/subject/core/stream"
	"github.com/dmitrymomot/subject/pkg/broadcast"
)

type event struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

func waitSubscribers(t *testing.T, subj *broadcast.Subject[event], n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return subj.Stats().Subscribers == n
	}, 2*time.Second, 5*time.Millisecond)
}

func TestPublish(t *testing.T) {
	t.Parallel()

	t.Run("accepts valid payload", func(t *testing.T) {
		t.Parallel()

		subj := broadcast.New[event]()
		defer subj.Close()

		rx, err := subj.Subscribe()
		require.NoError(t, err)

		h := stream.Publish(subj, stream.JSONDecoder[event]())
		req := httptest.NewRequest(http.MethodPost, "/publish", strings.NewReader(`{"id":1,"text":"hi"}`))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusAccepted, rec.Code)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		v, err := rx.Recv(ctx)
		require.NoError(t, err)
		assert.Equal(t, event{ID: 1, Text: "hi"}, v)
	})

	t.Run("rejects wrong method", func(t *testing.T) {
		t.Parallel()

		subj := broadcast.New[event]()
		defer subj.Close()

		rec := httptest.NewRecorder()
		stream.Publish(subj, stream.JSONDecoder[event]()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/publish", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
	})

	t.Run("rejects empty body", func(t *testing.T) {
		t.Parallel()

		subj := broadcast.New[event]()
		defer subj.Close()

		rec := httptest.NewRecorder()
		stream.Publish(subj, stream.JSONDecoder[event]()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/publish", http.NoBody))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), stream.ErrEmptyBody.Error())
	})

	t.Run("rejects invalid json", func(t *testing.T) {
		t.Parallel()

		subj := broadcast.New[event]()
		defer subj.Close()

		rec := httptest.NewRecorder()
		stream.Publish(subj, stream.JSONDecoder[event]()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/publish", strings.NewReader("{")))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects oversized body", func(t *testing.T) {
		t.Parallel()

		subj := broadcast.New[event]()
		defer subj.Close()

		h := stream.Publish(subj, stream.JSONDecoder[event](), stream.WithMaxBodySize(8))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/publish", strings.NewReader(`{"id":1,"text":"too long"}`)))

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("closed subject is unavailable", func(t *testing.T) {
		t.Parallel()

		subj := broadcast.New[event]()
		require.NoError(t, subj.Close())

		rec := httptest.NewRecorder()
		stream.Publish(subj, stream.JSONDecoder[event]()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/publish", strings.NewReader(`{"id":1}`)))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestWebSocket(t *testing.T) {
	t.Parallel()

	t.Run("delivers values then closes normally", func(t *testing.T) {
		t.Parallel()

		subj := broadcast.New[event]()
		srv := httptest.NewServer(stream.WebSocket(subj, stream.JSONEncoder[event]()))
		defer srv.Close()

		conn := dialWS(t, srv)
		waitSubscribers(t, subj, 1)

		require.NoError(t, subj.Send(event{ID: 1, Text: "a"}))
		require.NoError(t, subj.Send(event{ID: 2, Text: "b"}))

		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var got event
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, event{ID: 1, Text: "a"}, got)
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, event{ID: 2, Text: "b"}, got)

		require.NoError(t, subj.Close())

		_, _, err := conn.ReadMessage()
		require.Error(t, err)
		assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
	})

	t.Run("closed subject sends going away", func(t *testing.T) {
		t.Parallel()

		subj := broadcast.New[event]()
		require.NoError(t, subj.Close())

		srv := httptest.NewServer(stream.WebSocket(subj, stream.JSONEncoder[event]()))
		defer srv.Close()

		conn := dialWS(t, srv)
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

		_, _, err := conn.ReadMessage()
		require.Error(t, err)
		assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
	})

	t.Run("disconnected client is pruned", func(t *testing.T) {
		t.Parallel()

		subj := broadcast.New[event]()
		defer subj.Close()

		srv := httptest.NewServer(stream.WebSocket(subj, stream.JSONEncoder[event]()))
		defer srv.Close()

		conn := dialWS(t, srv)
		waitSubscribers(t, subj, 1)
		require.NoError(t, conn.Close())

		require.Eventually(t, func() bool {
			_ = subj.Send(event{ID: 0})
			return subj.Stats().Subscribers == 0
		}, 2*time.Second, 10*time.Millisecond)
	})
}

type noFlush struct {
	http.ResponseWriter
}

func readEvent(t *testing.T, r *bufio.Reader) []string {
	t.Helper()
	var lines []string
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimSuffix(line, "\n")
		if line == "" {
			return lines
		}
		lines = append(lines, line)
	}
}

func TestSSE(t *testing.T) {
	t.Parallel()

	t.Run("streams events with sequential ids", func(t *testing.T) {
		t.Parallel()

		subj := broadcast.New[event]()
		srv := httptest.NewServer(stream.SSE(subj, stream.JSONEncoder[event](), stream.WithEventName("message")))
		defer srv.Close()

		resp, err := http.Get(srv.URL)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

		r := bufio.NewReader(resp.Body)
		assert.Equal(t, []string{": connected"}, readEvent(t, r))

		waitSubscribers(t, subj, 1)
		require.NoError(t, subj.Send(event{ID: 7, Text: "x"}))
		require.NoError(t, subj.Send(event{ID: 8, Text: "y"}))

		assert.Equal(t, []string{"event: message", "id: 1", `data: {"id":7,"text":"x"}`}, readEvent(t, r))
		assert.Equal(t, []string{"event: message", "id: 2", `data: {"id":8,"text":"y"}`}, readEvent(t, r))

		require.NoError(t, subj.Close())
		_, err = io.ReadAll(r)
		assert.NoError(t, err)
	})

	t.Run("splits multi-line payloads", func(t *testing.T) {
		t.Parallel()

		subj := broadcast.New[string]()
		defer subj.Close()

		enc := func(s string) ([]byte, error) { return []byte(s), nil }
		srv := httptest.NewServer(stream.SSE[string](subj, enc))
		defer srv.Close()

		resp, err := http.Get(srv.URL)
		require.NoError(t, err)
		defer resp.Body.Close()

		r := bufio.NewReader(resp.Body)
		readEvent(t, r)

		require.Eventually(t, func() bool { return subj.Stats().Subscribers == 1 }, 2*time.Second, 5*time.Millisecond)
		require.NoError(t, subj.Send("one\ntwo"))

		assert.Equal(t, []string{"id: 1", "data: one", "data: two"}, readEvent(t, r))
	})

	t.Run("writes keepalive comments while idle", func(t *testing.T) {
		t.Parallel()

		subj := broadcast.New[event]()
		defer subj.Close()

		srv := httptest.NewServer(stream.SSE(subj, stream.JSONEncoder[event](), stream.WithKeepAlive(20*time.Millisecond)))
		defer srv.Close()

		resp, err := http.Get(srv.URL)
		require.NoError(t, err)
		defer resp.Body.Close()

		r := bufio.NewReader(resp.Body)
		readEvent(t, r)
		assert.Equal(t, []string{": keepalive"}, readEvent(t, r))
	})

	t.Run("closed subject is unavailable", func(t *testing.T) {
		t.Parallel()

		subj := broadcast.New[event]()
		require.NoError(t, subj.Close())

		rec := httptest.NewRecorder()
		stream.SSE(subj, stream.JSONEncoder[event]()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("requires a flusher", func(t *testing.T) {
		t.Parallel()

		subj := broadcast.New[event]()
		defer subj.Close()

		rec := httptest.NewRecorder()
		stream.SSE(subj, stream.JSONEncoder[event]()).ServeHTTP(noFlush{rec}, httptest.NewRequest(http.MethodGet, "/events", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), stream.ErrStreamingUnsupported.Error())
	})

	t.Run("client disconnect ends the handler", func(t *testing.T) {
		t.Parallel()

		subj := broadcast.New[event]()
		defer subj.Close()

		done := make(chan struct{})
		h := stream.SSE(subj, stream.JSONEncoder[event]())
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer close(done)
			h.ServeHTTP(w, r)
		}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		readEvent(t, bufio.NewReader(resp.Body))

		cancel()
		_ = resp.Body.Close()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal(errors.New("handler did not return after client disconnect"))
		}
	})
}
