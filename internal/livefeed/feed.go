// Package livefeed follows board snapshots pushed by the dashboard server over
// a websocket. Each snapshot replaces the previous one; the board reloads from
// the latest snapshot after a change is applied.
package livefeed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"patientboard/internal/model"
	"patientboard/internal/store"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

type Command string

const (
	CommandBoard Command = "BOARD"
)

// Message is one text frame from the board server. Only BOARD frames are
// read; their data is a full board snapshot in the board file's JSON shape.
type Message struct {
	Command Command         `json:"command"`
	Data    json.RawMessage `json:"data"`
}

var ErrClosed = errors.New("live feed closed")

var dialer = &websocket.Dialer{
	Proxy:            http.ProxyFromEnvironment,
	HandshakeTimeout: 10 * time.Second,
}

type Feed struct {
	conn *websocket.Conn
	log  zerolog.Logger

	mu     sync.Mutex
	latest []byte
	err    error

	first     chan struct{}
	firstOnce sync.Once
	updates   chan struct{}
	done      chan struct{}
}

func Dial(ctx context.Context, rawURL string, log zerolog.Logger) (*Feed, error) {
	conn, res, err := dialer.DialContext(ctx, rawURL, nil)
	if res != nil && res.Body != nil {
		_ = res.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	f := &Feed{
		conn:    conn,
		log:     log,
		first:   make(chan struct{}),
		updates: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go f.readLoop()
	return f, nil
}

// Updates fires after each new snapshot. Bursts coalesce into one signal.
func (f *Feed) Updates() <-chan struct{} { return f.updates }

// Done is closed when the connection ends; Err reports why.
func (f *Feed) Done() <-chan struct{} { return f.done }

func (f *Feed) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Load returns the latest snapshot, waiting for the first one to arrive.
func (f *Feed) Load(ctx context.Context) (*model.Board, error) {
	select {
	case <-f.first:
	case <-f.done:
		// A snapshot may have arrived before the connection dropped.
		select {
		case <-f.first:
		default:
			if err := f.Err(); err != nil {
				return nil, err
			}
			return nil, ErrClosed
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	f.mu.Lock()
	raw := f.latest
	f.mu.Unlock()
	return store.DecodeBoard(raw, false)
}

func (f *Feed) Close() error {
	_ = f.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return f.conn.Close()
}

func (f *Feed) readLoop() {
	defer close(f.done)
	for {
		_, data, err := f.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				f.log.Warn().Err(err).Msg("live feed read")
			}
			f.mu.Lock()
			f.err = err
			f.mu.Unlock()
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			f.log.Warn().Err(err).Msg("live feed message")
			continue
		}
		if msg.Command != CommandBoard {
			continue
		}
		// Validate before accepting so Load never hands out a bad board.
		if _, err := store.DecodeBoard(msg.Data, false); err != nil {
			f.log.Warn().Err(err).Msg("live feed snapshot")
			continue
		}

		f.mu.Lock()
		f.latest = append([]byte(nil), msg.Data...)
		f.mu.Unlock()
		f.firstOnce.Do(func() { close(f.first) })
		select {
		case f.updates <- struct{}{}:
		default:
		}
	}
}
