package livefeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{}

func serve(t *testing.T, msgs ...string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, m := range msgs {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(m)); err != nil {
				return
			}
		}
		// Hold the connection until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestFeed_LoadReturnsLatestValidSnapshot(t *testing.T) {
	url := serve(t,
		`{"command":"PING","data":null}`,
		`{"command":"BOARD","data":{"columns":[{"id":1,"name":"A","cards":[{"id":1,"title":"x"}]}]}}`,
		`{"command":"BOARD","data":{"columns":[{"id":1},{"id":1}]}}`,
		`{"command":"BOARD","data":{"columns":[{"id":1,"name":"A","cards":[{"id":2,"title":"y"}]}]}}`,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	f, err := Dial(ctx, url, zerolog.Nop())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer f.Close()

	deadline := time.After(2 * time.Second)
	for {
		b, err := f.Load(ctx)
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if len(b.Columns) == 1 && len(b.Columns[0].Cards) == 1 && b.Columns[0].Cards[0].ID == 2 {
			return
		}
		select {
		case <-f.Updates():
		case <-deadline:
			t.Fatalf("never saw the last snapshot; have %+v", b)
		}
	}
}

func TestFeed_LoadHonoursContext(t *testing.T) {
	url := serve(t)
	f, err := Dial(context.Background(), url, zerolog.Nop())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := f.Load(ctx); err == nil {
		t.Fatalf("expected an error without any snapshot")
	}
}
