package endpoint

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"patientboard/internal/dnd"
	"patientboard/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	method      string
	path        string
	contentType string
	requestID   string
	body        string
}

func captureServer(t *testing.T, status int) (*httptest.Server, *[]captured) {
	t.Helper()
	var (
		mu  sync.Mutex
		got []captured
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		got = append(got, captured{
			method:      r.Method,
			path:        r.URL.Path,
			contentType: r.Header.Get("Content-Type"),
			requestID:   r.Header.Get(RequestIDHeader),
			body:        string(b),
		})
		mu.Unlock()
		w.WriteHeader(status)
		if status >= 300 {
			_, _ = w.Write([]byte("nope"))
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func TestClient_ReorderWireFormat(t *testing.T) {
	srv, got := captureServer(t, http.StatusOK)
	c, err := New(srv.URL)
	require.NoError(t, err)

	err = c.Reorder(context.Background(), dnd.Reorder{Container: 4, Order: []dnd.ItemID{1, 3, 2}})
	require.NoError(t, err)

	require.Len(t, *got, 1)
	req := (*got)[0]
	assert.Equal(t, http.MethodPost, req.method)
	assert.Equal(t, "/ajaxreorder", req.path)
	assert.Equal(t, "application/json", req.contentType)
	assert.NotEmpty(t, req.requestID)
	assert.Equal(t, `{"Id":4,"Order":[1,3,2]}`, req.body)
}

func TestClient_TransferWireFormat(t *testing.T) {
	srv, got := captureServer(t, http.StatusNoContent)
	c, err := New(srv.URL + "/")
	require.NoError(t, err)

	err = c.Transfer(context.Background(), dnd.Transfer{
		Sender:   dnd.Reorder{Container: 1, Order: nil},
		Receiver: dnd.Reorder{Container: 2, Order: []dnd.ItemID{1, 5}},
		Item:     1,
	})
	require.NoError(t, err)

	require.Len(t, *got, 1)
	assert.Equal(t, "/ajaxtransfer", (*got)[0].path)
	assert.Equal(t, `{"Sender":{"ID":1,"Order":[]},"Receiver":{"ID":2,"Order":[1,5]},"Patient":1}`, (*got)[0].body)
}

func TestClient_SpeciesBoard(t *testing.T) {
	srv, got := captureServer(t, http.StatusOK)
	_, err := New(srv.URL, WithBoardKind(model.BoardKindSpecies))
	require.ErrorIs(t, err, ErrNoHome)

	c, err := New(srv.URL, WithBoardKind(model.BoardKindSpecies), WithHome(9))
	require.NoError(t, err)

	// The configured home wins over the column the drag happened in.
	require.NoError(t, c.Reorder(context.Background(), dnd.Reorder{Container: 4, Order: []dnd.ItemID{3, 1}}))
	require.Len(t, *got, 1)
	assert.Equal(t, "/home/9/species/reorder", (*got)[0].path)
	assert.Equal(t, `{"ID":9,"Order":[3,1]}`, (*got)[0].body)

	err = c.Transfer(context.Background(), dnd.Transfer{})
	assert.ErrorIs(t, err, ErrTransferUnsupported)
	assert.Len(t, *got, 1, "no request for an unsupported transfer")
}

type memRecorder struct {
	mu       sync.Mutex
	failures []Failure
}

func (m *memRecorder) RecordFailure(_ context.Context, f Failure) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = append(m.failures, f)
	return nil
}

func TestClient_StatusErrorIsRecorded(t *testing.T) {
	srv, got := captureServer(t, http.StatusInternalServerError)
	rec := &memRecorder{}
	c, err := New(srv.URL, WithRecorder(rec))
	require.NoError(t, err)

	err = c.Reorder(context.Background(), dnd.Reorder{Container: 1, Order: []dnd.ItemID{2, 1}})
	var se StatusError
	require.True(t, errors.As(err, &se), "expected StatusError, got %v", err)
	assert.Equal(t, http.StatusInternalServerError, se.Status)
	assert.Equal(t, "nope", se.Body)

	require.Len(t, rec.failures, 1)
	f := rec.failures[0]
	assert.Equal(t, "reorder", f.Kind)
	assert.Equal(t, ReorderPath, f.Path)
	assert.Equal(t, (*got)[0].requestID, f.RequestID)
	assert.JSONEq(t, `{"Id":1,"Order":[2,1]}`, string(f.Body))
}

func TestClient_ResendPostsBodyUnchanged(t *testing.T) {
	srv, got := captureServer(t, http.StatusOK)
	c, err := New(srv.URL)
	require.NoError(t, err)

	raw := []byte(`{"Id":1,"Order":[2,1]}`)
	require.NoError(t, c.Resend(context.Background(), "req-7", ReorderPath, raw))
	require.Len(t, *got, 1)
	assert.Equal(t, string(raw), (*got)[0].body)
	assert.Equal(t, "req-7", (*got)[0].requestID)
}

func TestClient_ContextTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err = c.Reorder(ctx, dnd.Reorder{Container: 1})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	_, err := New("care.example.org")
	assert.Error(t, err)
}
