package dnd

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrBusy is returned while a previous notification has not completed.
var ErrBusy = errors.New("notification in flight")

const DefaultNotifyTimeout = 10 * time.Second

type ChangeKind int

const (
	ChangeReorder ChangeKind = iota
	ChangeTransfer
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeTransfer:
		return "transfer"
	default:
		return "reorder"
	}
}

// Reorder is a container's full order after a within-container move.
type Reorder struct {
	Container ContainerID
	Order     []ItemID
}

// Transfer carries both containers' orders after Item moved from Sender to
// Receiver.
type Transfer struct {
	Sender   Reorder
	Receiver Reorder
	Item     ItemID
}

// Change is exactly one of a Reorder or a Transfer, selected by Kind.
type Change struct {
	Kind     ChangeKind
	Reorder  Reorder
	Transfer Transfer
}

// ChangeFor computes the request for a drop from the lists' final state. It
// reports false when the drop did not move the item.
func ChangeFor(d Drop, lists *Lists) (Change, bool) {
	if !d.Moved {
		return Change{}, false
	}
	if d.From == d.To {
		return Change{
			Kind:    ChangeReorder,
			Reorder: Reorder{Container: d.To, Order: lists.Order(d.To)},
		}, true
	}
	return Change{
		Kind: ChangeTransfer,
		Transfer: Transfer{
			Sender:   Reorder{Container: d.From, Order: lists.Order(d.From)},
			Receiver: Reorder{Container: d.To, Order: lists.Order(d.To)},
			Item:     d.Item,
		},
	}, true
}

// Sender delivers changes to the server.
type Sender interface {
	Reorder(ctx context.Context, r Reorder) error
	Transfer(ctx context.Context, t Transfer) error
}

// NotifyError wraps a failed delivery with the change that failed.
type NotifyError struct {
	Change Change
	Err    error
}

func (e *NotifyError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("notify %s: %v", e.Change.Kind, e.Err)
}

func (e *NotifyError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

type NotifierState int

const (
	NotifierIdle NotifierState = iota
	NotifierInFlight
)

// Notifier sends one change at a time. While a change is in flight Busy
// reports true and further Notify calls fail with ErrBusy. Every Notify
// returns the notifier to Idle, whatever the outcome; the timeout bounds how
// long that can take.
type Notifier struct {
	sender  Sender
	timeout time.Duration
	log     zerolog.Logger

	mu    sync.Mutex
	state NotifierState
}

type NotifierOption func(*Notifier)

func WithNotifyTimeout(d time.Duration) NotifierOption {
	return func(n *Notifier) { n.timeout = d }
}

func WithNotifyLogger(l zerolog.Logger) NotifierOption {
	return func(n *Notifier) { n.log = l }
}

func NewNotifier(sender Sender, opts ...NotifierOption) *Notifier {
	n := &Notifier{
		sender:  sender,
		timeout: DefaultNotifyTimeout,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Notifier) State() NotifierState {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

func (n *Notifier) Busy() bool { return n.State() == NotifierInFlight }

func (n *Notifier) Notify(ctx context.Context, c Change) error {
	n.mu.Lock()
	if n.state == NotifierInFlight {
		n.mu.Unlock()
		return ErrBusy
	}
	n.state = NotifierInFlight
	n.mu.Unlock()

	defer func() {
		n.mu.Lock()
		n.state = NotifierIdle
		n.mu.Unlock()
	}()

	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	start := time.Now()
	var err error
	switch c.Kind {
	case ChangeTransfer:
		err = n.sender.Transfer(ctx, c.Transfer)
	default:
		err = n.sender.Reorder(ctx, c.Reorder)
	}
	ev := n.log.Debug()
	if err != nil {
		ev = n.log.Warn().Err(err)
	}
	ev.Str("kind", c.Kind.String()).Dur("took", time.Since(start)).Msg("notify")
	if err != nil {
		return &NotifyError{Change: c, Err: err}
	}
	return nil
}
