package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"patientboard/internal/endpoint"
	"patientboard/internal/store"

	"github.com/spf13/cobra"
)

// outboxRecorder journals failed requests in the local store.
type outboxRecorder struct {
	store store.Store
}

func (r outboxRecorder) RecordFailure(ctx context.Context, f endpoint.Failure) error {
	msg := ""
	if f.Err != nil {
		msg = f.Err.Error()
	}
	return r.store.OutboxAppend(ctx, store.OutboxEntry{
		ID:        f.RequestID,
		Kind:      f.Kind,
		Path:      f.Path,
		Body:      json.RawMessage(f.Body),
		LastError: msg,
	})
}

type retryResult struct {
	ID     string             `json:"id"`
	Kind   string             `json:"kind"`
	Status store.OutboxStatus `json:"status"`
	Error  string             `json:"error,omitempty"`
}

func newOutboxCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outbox",
		Short: "Notifications the server did not accept",
	}
	cmd.AddCommand(newOutboxListCmd(app))
	cmd.AddCommand(newOutboxRetryCmd(app))
	return cmd
}

func newOutboxListCmd(app *App) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List outbox entries (oldest first)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var statuses []store.OutboxStatus
			switch strings.ToLower(strings.TrimSpace(status)) {
			case "", "failed":
				statuses = []store.OutboxStatus{store.OutboxFailed}
			case "delivered":
				statuses = []store.OutboxStatus{store.OutboxDelivered}
			case "all":
			default:
				return writeErr(cmd, errUsage("unknown status: %s (failed|delivered|all)", status))
			}
			entries, err := app.store.OutboxList(cmd.Context(), statuses...)
			if err != nil {
				return writeErr(cmd, err)
			}
			if entries == nil {
				entries = []store.OutboxEntry{}
			}
			return writeOut(cmd, app, map[string]any{"data": entries})
		},
	}
	cmd.Flags().StringVar(&status, "status", "failed", "Filter by status (failed|delivered|all)")
	return cmd
}

func newOutboxRetryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "retry [entry-id...]",
		Short: "Resend failed notifications unchanged",
		Long: strings.TrimSpace(`
Resend failed notifications with their original body and request id. With no
ids every failed entry is retried, oldest first. Entries that fail again stay
in the outbox with their attempt count raised.
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}

			var entries []store.OutboxEntry
			if len(args) == 0 {
				entries, err = app.store.OutboxList(ctx, store.OutboxFailed)
				if err != nil {
					return writeErr(cmd, err)
				}
			}
			for _, id := range args {
				e, err := app.store.OutboxGet(ctx, id)
				if errors.Is(err, store.ErrNotFound) {
					return writeErr(cmd, errNotFound("outbox entry", id))
				}
				if err != nil {
					return writeErr(cmd, err)
				}
				entries = append(entries, e)
			}

			results := make([]retryResult, 0, len(entries))
			failed := 0
			for _, e := range entries {
				res := retryResult{ID: e.ID, Kind: e.Kind, Status: store.OutboxDelivered}
				sendErr := client.Resend(ctx, e.ID, e.Path, e.Body)
				if sendErr != nil {
					failed++
					res.Status = store.OutboxFailed
					res.Error = sendErr.Error()
				}
				if err := app.store.OutboxMark(ctx, e.ID, res.Status, res.Error); err != nil {
					return writeErr(cmd, err)
				}
				app.log.Info().Str("request_id", e.ID).Str("status", string(res.Status)).Msg("outbox.retry")
				results = append(results, res)
			}

			if err := writeOut(cmd, app, map[string]any{"data": results}); err != nil {
				return err
			}
			if failed > 0 {
				return writeErr(cmd, fmt.Errorf("%d of %d notifications still failing", failed, len(results)))
			}
			return nil
		},
	}
}
