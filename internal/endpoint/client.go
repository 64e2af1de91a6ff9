package endpoint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"patientboard/internal/dnd"
	"patientboard/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RequestIDHeader correlates a request with log lines and outbox rows.
const RequestIDHeader = "X-Request-Id"

var (
	ErrTransferUnsupported = errors.New("species boards cannot transfer")
	ErrNoHome              = errors.New("species boards need a home id")
)

// StatusError is a non-2xx response.
type StatusError struct {
	Path   string
	Status int
	Body   string
}

func (e StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("POST %s: %d %s", e.Path, e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("POST %s: %d %s: %s", e.Path, e.Status, http.StatusText(e.Status), e.Body)
}

// Failure describes a request that did not get a 2xx response.
type Failure struct {
	RequestID string
	Kind      string
	Path      string
	Body      []byte
	Err       error
}

// Recorder keeps failed requests so they can be resent later.
type Recorder interface {
	RecordFailure(ctx context.Context, f Failure) error
}

// Client posts board changes to the dashboard server. It implements
// dnd.Sender.
type Client struct {
	base     *url.URL
	http     *http.Client
	log      zerolog.Logger
	kind     model.BoardKind
	home     int64
	recorder Recorder
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

func WithLogger(l zerolog.Logger) Option {
	return func(cl *Client) { cl.log = l }
}

// WithBoardKind routes reorders to the species endpoint for species boards.
func WithBoardKind(k model.BoardKind) Option {
	return func(cl *Client) { cl.kind = k }
}

// WithHome sets the home whose species list a species board edits. The
// species path and body carry this id whatever container the drag used.
func WithHome(id int64) Option {
	return func(cl *Client) { cl.home = id }
}

func WithRecorder(r Recorder) Option {
	return func(cl *Client) { cl.recorder = r }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("server url must be absolute: %q", baseURL)
	}
	c := &Client{
		base: u,
		http: NewHTTPClient(DefaultHTTPConfig()),
		log:  zerolog.Nop(),
		kind: model.BoardKindPatients,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.kind == model.BoardKindSpecies && c.home <= 0 {
		return nil, ErrNoHome
	}
	return c, nil
}

func (c *Client) Reorder(ctx context.Context, r dnd.Reorder) error {
	if c.kind == model.BoardKindSpecies {
		r.Container = dnd.ContainerID(c.home)
		return c.send(ctx, "species-reorder", SpeciesReorderPath(c.home), NewSpeciesReorderRequest(r))
	}
	return c.send(ctx, "reorder", ReorderPath, NewReorderRequest(r))
}

func (c *Client) Transfer(ctx context.Context, t dnd.Transfer) error {
	if c.kind == model.BoardKindSpecies {
		return ErrTransferUnsupported
	}
	return c.send(ctx, "transfer", TransferPath, NewTransferRequest(t))
}

func (c *Client) send(ctx context.Context, kind, path string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	id := uuid.NewString()
	if err := c.post(ctx, id, path, body); err != nil {
		if c.recorder != nil {
			// The request context may be the reason we failed.
			rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if rerr := c.recorder.RecordFailure(rctx, Failure{RequestID: id, Kind: kind, Path: path, Body: body, Err: err}); rerr != nil {
				c.log.Error().Err(rerr).Str("request_id", id).Msg("record failure")
			}
		}
		return err
	}
	return nil
}

// Resend posts a previously recorded body unchanged.
func (c *Client) Resend(ctx context.Context, requestID, path string, body []byte) error {
	if strings.TrimSpace(requestID) == "" {
		requestID = uuid.NewString()
	}
	return c.post(ctx, requestID, path, body)
}

func (c *Client) post(ctx context.Context, requestID, path string, body []byte) error {
	u := c.base.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("request_id", requestID).Str("path", path).Msg("post failed")
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	// Keep a short excerpt for error messages; drain the rest so the
	// connection can be reused.
	excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	_, _ = io.Copy(io.Discard, resp.Body)

	c.log.Info().
		Str("request_id", requestID).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("post")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return StatusError{Path: path, Status: resp.StatusCode, Body: strings.TrimSpace(string(excerpt))}
	}
	return nil
}
