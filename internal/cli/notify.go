package cli

import (
	"strconv"
	"strings"

	"patientboard/internal/dnd"
	"patientboard/internal/endpoint"
	"patientboard/internal/model"

	"github.com/spf13/cobra"
)

func newReorderCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <container-id> [item-id...]",
		Short: "Send a container's full order to the server",
		Long: strings.TrimSpace(`
Send the complete order of one container, as the board does after a drag
within a column. For species boards the container is the home id.
`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := parseID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			ids, err := parseIDs(args[1:])
			if err != nil {
				return writeErr(cmd, err)
			}
			change := dnd.Change{
				Kind:    dnd.ChangeReorder,
				Reorder: dnd.Reorder{Container: dnd.ContainerID(container), Order: ids},
			}
			return notify(cmd, app, change)
		},
	}
}

func newTransferCmd(app *App) *cobra.Command {
	var (
		patient int64
		from    string
		to      string
	)
	cmd := &cobra.Command{
		Use:   "transfer --patient <id> --from <home>:<ids> --to <home>:<ids>",
		Short: "Move a patient between homes",
		Long: strings.TrimSpace(`
Send both homes' full orders after moving a patient. Orders are comma
separated; an emptied home is written as "<home>:".
`),
		Example: "  patientboard transfer --patient 1 --from 1: --to 2:1,5",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sender, err := parseSide(from)
			if err != nil {
				return writeErr(cmd, err)
			}
			receiver, err := parseSide(to)
			if err != nil {
				return writeErr(cmd, err)
			}
			t := dnd.Transfer{Sender: sender, Receiver: receiver, Item: dnd.ItemID(patient)}
			if err := validateTransfer(t); err != nil {
				return writeErr(cmd, err)
			}
			return notify(cmd, app, dnd.Change{Kind: dnd.ChangeTransfer, Transfer: t})
		},
	}
	cmd.Flags().Int64Var(&patient, "patient", 0, "Patient id that moved (required)")
	cmd.Flags().StringVar(&from, "from", "", "Sending home and its order after the move, e.g. 1:2,3 (required)")
	cmd.Flags().StringVar(&to, "to", "", "Receiving home and its order after the move, e.g. 2:1,5 (required)")
	_ = cmd.MarkFlagRequired("patient")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

// notify sends one change through a notifier, the same path a drag takes.
func notify(cmd *cobra.Command, app *App, change dnd.Change) error {
	client, err := app.client()
	if err != nil {
		return writeErr(cmd, err)
	}
	kind, err := app.boardKind()
	if err != nil {
		return writeErr(cmd, err)
	}
	if kind == model.BoardKindSpecies && change.Kind == dnd.ChangeReorder && int64(change.Reorder.Container) != app.cfg.HomeID {
		return writeErr(cmd, errUsage("species board is home %d, got container %d", app.cfg.HomeID, change.Reorder.Container))
	}
	n := dnd.NewNotifier(client,
		dnd.WithNotifyTimeout(app.cfg.RequestTimeout()),
		dnd.WithNotifyLogger(app.log),
	)
	if err := n.Notify(cmd.Context(), change); err != nil {
		return writeErr(cmd, err)
	}
	return writeOut(cmd, app, map[string]any{
		"data": map[string]any{
			"kind":    change.Kind.String(),
			"request": requestBody(kind, change),
		},
	})
}

func requestBody(kind model.BoardKind, c dnd.Change) any {
	switch {
	case c.Kind == dnd.ChangeTransfer:
		return endpoint.NewTransferRequest(c.Transfer)
	case kind == model.BoardKindSpecies:
		return endpoint.NewSpeciesReorderRequest(c.Reorder)
	default:
		return endpoint.NewReorderRequest(c.Reorder)
	}
}

func validateTransfer(t dnd.Transfer) error {
	if t.Item <= 0 {
		return errUsage("--patient must be a positive id")
	}
	if t.Sender.Container == t.Receiver.Container {
		return errUsage("--from and --to must be different homes")
	}
	seen := map[dnd.ItemID]bool{}
	for _, id := range t.Sender.Order {
		seen[id] = true
	}
	if seen[t.Item] {
		return errUsage("patient %d is still listed in the sending home", t.Item)
	}
	found := false
	for _, id := range t.Receiver.Order {
		if seen[id] {
			return errUsage("id %d is listed in both homes", id)
		}
		if id == t.Item {
			found = true
		}
	}
	if !found {
		return errUsage("patient %d is not listed in the receiving home", t.Item)
	}
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, errUsage("invalid id: %q", s)
	}
	return id, nil
}

// parseIDs reads item ids in order. Duplicates are refused.
func parseIDs(args []string) ([]dnd.ItemID, error) {
	out := make([]dnd.ItemID, 0, len(args))
	seen := map[int64]bool{}
	for _, a := range args {
		id, err := parseID(a)
		if err != nil {
			return nil, err
		}
		if seen[id] {
			return nil, errUsage("duplicate id: %d", id)
		}
		seen[id] = true
		out = append(out, dnd.ItemID(id))
	}
	return out, nil
}

// parseSide reads "<container>:<id>,<id>". The list may be empty.
func parseSide(s string) (dnd.Reorder, error) {
	head, tail, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return dnd.Reorder{}, errUsage("expected <home>:<ids>, got %q", s)
	}
	c, err := parseID(head)
	if err != nil {
		return dnd.Reorder{}, err
	}
	var parts []string
	if strings.TrimSpace(tail) != "" {
		parts = strings.Split(tail, ",")
	}
	ids, err := parseIDs(parts)
	if err != nil {
		return dnd.Reorder{}, err
	}
	return dnd.Reorder{Container: dnd.ContainerID(c), Order: ids}, nil
}
