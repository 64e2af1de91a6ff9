package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"patientboard/internal/dnd"
	"patientboard/internal/model"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

// The terminal has one mouse.
const mousePointer = 1

const (
	boardTop      = 1 // title line above the board
	wheelStep     = 4
	flashDuration = 4 * time.Second
	maxNoteHeight = 10
)

type Options struct {
	Source Source
	Sender dnd.Sender
	// Scroll is optional; without it the scroll offset is not kept across
	// reloads.
	Scroll ScrollMemory
	Log    zerolog.Logger
	Kind   model.BoardKind
	// Home is the home a species board belongs to.
	Home int64
	// Timeout bounds each notification. Zero means dnd.DefaultNotifyTimeout.
	Timeout     time.Duration
	ColumnWidth int
	Glyphs      string
}

type boardLoadedMsg struct {
	board    *model.Board
	scroll   int
	restored bool
	err      error
}

type notifyDoneMsg struct {
	change   dnd.Change
	snapshot *dnd.Lists
	board    *model.Board
	err      error
}

// appliedMsg means an accepted change was handed to a pushing source; the
// next snapshot will carry it.
type appliedMsg struct{ err error }

type feedUpdateMsg struct{}

type flashClearMsg struct{ seq int }

type boardModel struct {
	ctx      context.Context
	source   Source
	scroll   ScrollMemory
	notifier *dnd.Notifier
	ctl      *dnd.Controller
	log      zerolog.Logger
	kind     model.BoardKind
	home     int64

	board  *model.Board
	cards  map[int64]model.Card
	cols   []columnView
	layout dnd.Layout

	width    int
	height   int
	scrollX  int
	colWidth int

	// pending is set from the drop until the notification result arrives.
	pending bool
	// stale marks a pushed snapshot that arrived mid-drag or while a change
	// was out.
	stale bool

	selected int64
	showNote bool

	search    textinput.Model
	searching bool
	query     string

	keys keyMap
	help help.Model

	flash    string
	flashErr bool
	flashSeq int
}

type gateFunc func() bool

func (f gateFunc) Busy() bool { return f() }

func newBoardModel(ctx context.Context, opts Options) *boardModel {
	if ctx == nil {
		ctx = context.Background()
	}
	nopts := []dnd.NotifierOption{dnd.WithNotifyLogger(opts.Log)}
	if opts.Timeout > 0 {
		nopts = append(nopts, dnd.WithNotifyTimeout(opts.Timeout))
	}

	m := &boardModel{
		ctx:      ctx,
		source:   opts.Source,
		scroll:   opts.Scroll,
		notifier: dnd.NewNotifier(opts.Sender, nopts...),
		log:      opts.Log,
		kind:     opts.Kind,
		home:     opts.Home,
		cards:    map[int64]model.Card{},
		width:    80,
		height:   24,
		colWidth: opts.ColumnWidth,
		keys:     newKeyMap(),
		help:     help.New(),
	}
	m.ctl = dnd.NewController(nil, nil, gateFunc(func() bool {
		return m.pending || m.notifier.Busy()
	}))
	m.ctl.EnableScroll(true)
	m.ctl.OnPhase = func(p dnd.Phase) {
		m.log.Debug().Str("phase", p.String()).Msg("drag.phase")
	}

	m.search = textinput.New()
	m.search.Prompt = "/"
	m.search.Placeholder = "search patients"
	m.search.CharLimit = 64
	return m
}

func (m *boardModel) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), m.watchCmd())
}

func (m *boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.refresh()
		return m, nil

	case tea.MouseMsg:
		return m, m.handleMouse(msg)

	case tea.BlurMsg:
		// The release may happen outside the terminal where it is never
		// reported.
		if m.ctl.LostCapture(mousePointer) {
			m.log.Debug().Msg("drag.lost_capture")
			m.refresh()
			return m, m.staleReload()
		}
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case boardLoadedMsg:
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Msg("board.load")
			return m, m.setFlash("load failed: "+msg.err.Error(), true)
		}
		if cmd := m.setBoard(msg.board); cmd != nil {
			return m, cmd
		}
		if msg.restored {
			m.scrollX = m.geom().clampScroll(msg.scroll, len(m.cols))
			m.refresh()
		}
		return m, nil

	case notifyDoneMsg:
		m.pending = false
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Str("kind", msg.change.Kind.String()).Msg("change.rejected")
			m.ctl.Restore(msg.snapshot)
			m.refresh()
			// A snapshot pushed while the change was out is newer than the
			// rollback.
			return m, tea.Batch(m.setFlash(rejectMessage(msg.err), true), m.staleReload())
		}
		m.board = msg.board
		reload := m.stale
		m.stale = false
		return m, tea.Batch(m.setFlash("saved", false), m.applyCmd(msg.board, reload))

	case appliedMsg:
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Msg("change.apply")
		}
		return m, nil

	case feedUpdateMsg:
		if m.ctl.Phase() != dnd.PhaseIdle || m.pending {
			m.stale = true
			return m, m.watchCmd()
		}
		return m, tea.Batch(m.loadCmd(), m.watchCmd())

	case flashClearMsg:
		if msg.seq == m.flashSeq {
			m.flash = ""
			m.flashErr = false
		}
		return m, nil
	}
	return m, nil
}

func rejectMessage(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "server did not answer; change undone"
	default:
		return "change not saved: " + err.Error()
	}
}

func (m *boardModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.searching {
		switch {
		case msg.Type == tea.KeyEnter:
			m.searching = false
			m.search.Blur()
			return nil
		case key.Matches(msg, m.keys.ClearSearch):
			m.clearSearch()
			return nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.query = m.search.Value()
		m.refresh()
		return cmd
	}

	switch {
	case msg.Type == tea.KeyCtrlC || key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.ClearSearch):
		if m.ctl.Cancel(mousePointer) {
			m.refresh()
			return m.staleReload()
		}
		m.clearSearch()
	case key.Matches(msg, m.keys.Search):
		if _, dragging := m.ctl.Session(); dragging {
			return nil
		}
		m.searching = true
		return m.search.Focus()
	case key.Matches(msg, m.keys.Left):
		m.scrollBy(-(m.geom().colWidth() + columnGap))
	case key.Matches(msg, m.keys.Right):
		m.scrollBy(m.geom().colWidth() + columnGap)
	case key.Matches(msg, m.keys.Reload):
		if m.ctl.Phase() == dnd.PhaseIdle && !m.pending {
			return m.loadCmd()
		}
	case key.Matches(msg, m.keys.Note):
		if m.selected != 0 {
			m.showNote = !m.showNote
			m.refresh()
		}
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return nil
}

func (m *boardModel) clearSearch() {
	m.searching = false
	m.search.Blur()
	m.search.SetValue("")
	m.query = ""
	m.refresh()
}

func (m *boardModel) filtering() bool {
	return strings.TrimSpace(m.query) != ""
}

func buttonOf(b tea.MouseButton) dnd.Button {
	switch b {
	case tea.MouseButtonLeft:
		return dnd.ButtonPrimary
	case tea.MouseButtonMiddle:
		return dnd.ButtonMiddle
	case tea.MouseButtonRight:
		return dnd.ButtonSecondary
	default:
		return dnd.ButtonNone
	}
}

func (m *boardModel) handleMouse(msg tea.MouseMsg) tea.Cmd {
	ev := dnd.PointerEvent{
		PointerID: mousePointer,
		Button:    buttonOf(msg.Button),
		Pos:       dnd.Point{X: msg.X, Y: msg.Y},
	}

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp, tea.MouseButtonWheelLeft:
			m.scrollBy(-wheelStep)
			return nil
		case tea.MouseButtonWheelDown, tea.MouseButtonWheelRight:
			m.scrollBy(wheelStep)
			return nil
		}
		return m.press(ev)

	case tea.MouseActionMotion:
		m.motion(ev)
		return nil

	case tea.MouseActionRelease:
		return m.release()
	}
	return nil
}

func (m *boardModel) press(ev dnd.PointerEvent) tea.Cmd {
	hit := hitAt(m.layout, m.geom(), ev.Pos)
	if ev.Button != dnd.ButtonPrimary {
		return nil
	}

	switch hit.Kind {
	case dnd.HitInteractive:
		// The [i] button opens the card's note.
		m.selected = int64(hit.Item)
		m.showNote = true
		m.refresh()
		return nil
	case dnd.HitItem:
		m.selected = int64(hit.Item)
		return nil
	case dnd.HitHandle:
		m.selected = int64(hit.Item)
		if m.filtering() || m.searching {
			return m.setFlash("clear the search to move patients", false)
		}
		if m.pending || m.notifier.Busy() {
			return m.setFlash("waiting for the server", false)
		}
	}

	if _, ok := m.ctl.Press(ev, hit); ok {
		m.refresh()
	}
	return nil
}

func (m *boardModel) motion(ev dnd.PointerEvent) {
	mo, ok := m.ctl.Move(ev, m.layout)
	if !ok {
		return
	}
	if s, _ := m.ctl.Session(); s.Kind == dnd.SessionScroll {
		// Content follows the pointer.
		m.scrollBy(-mo.Delta.X)
	}
}

func (m *boardModel) release() tea.Cmd {
	out, ok := m.ctl.Release(mousePointer)
	if !ok {
		return nil
	}
	m.refresh()

	var cmds []tea.Cmd
	if !out.HasChange {
		cmds = append(cmds, m.staleReload())
	}
	if out.HasChange {
		m.pending = true
		m.log.Info().
			Str("kind", out.Change.Kind.String()).
			Int64("item", int64(out.Drop.Item)).
			Int64("from", int64(out.Drop.From)).
			Int64("to", int64(out.Drop.To)).
			Int("index", out.Drop.Index).
			Msg("change.dropped")
		cmds = append(cmds, m.notifyCmd(out), m.setFlash("saving…", false))
	}
	return tea.Batch(cmds...)
}

// staleReload loads a snapshot that arrived while it could not be applied.
func (m *boardModel) staleReload() tea.Cmd {
	if !m.stale {
		return nil
	}
	m.stale = false
	return m.loadCmd()
}

func (m *boardModel) scrollBy(dx int) {
	m.scrollX = m.geom().clampScroll(m.scrollX+dx, len(m.cols))
	m.refresh()
}

// setBoard swaps in a loaded board. It returns a flash command when the
// board cannot be used.
func (m *boardModel) setBoard(b *model.Board) tea.Cmd {
	if err := checkBoard(b, m.kind, m.home); err != nil {
		m.log.Warn().Err(err).Msg("board.kind")
		return m.setFlash(err.Error(), true)
	}
	lists, err := listsFromBoard(b)
	if err != nil {
		m.log.Warn().Err(err).Msg("board.lists")
		return m.setFlash("bad board: "+err.Error(), true)
	}
	m.board = b
	m.cards = map[int64]model.Card{}
	for _, c := range b.Columns {
		for _, card := range c.Cards {
			m.cards[card.ID] = card
		}
	}
	if _, ok := m.cards[m.selected]; !ok {
		m.selected = 0
		m.showNote = false
	}
	m.ctl.Replace(lists)
	m.stale = false
	m.refresh()
	return nil
}

func (m *boardModel) noteHeight() int {
	if !m.showNote || m.selected == 0 {
		return 0
	}
	return min(maxNoteHeight, (m.height-2)/2)
}

func (m *boardModel) geom() boardGeom {
	return boardGeom{
		ColWidth: m.colWidth,
		Top:      boardTop,
		Height:   max(m.height-2-m.noteHeight(), 0),
		Width:    m.width,
		ScrollX:  m.scrollX,
	}
}

func (m *boardModel) refresh() {
	m.cols = buildColumns(m.board, m.ctl.Lists(), m.query)
	g := m.geom()
	m.scrollX = g.clampScroll(m.scrollX, len(m.cols))
	g.ScrollX = m.scrollX
	m.layout = computeLayout(m.cols, g)
}

func (m *boardModel) setFlash(s string, isErr bool) tea.Cmd {
	m.flashSeq++
	m.flash = s
	m.flashErr = isErr
	seq := m.flashSeq
	return tea.Tick(flashDuration, func(time.Time) tea.Msg { return flashClearMsg{seq: seq} })
}

func (m *boardModel) loadCmd() tea.Cmd {
	src, mem, ctx := m.source, m.scroll, m.ctx
	if src == nil {
		return nil
	}
	return func() tea.Msg { return load(ctx, src, mem) }
}

func load(ctx context.Context, src Source, mem ScrollMemory) tea.Msg {
	b, err := src.Load(ctx)
	if err != nil {
		return boardLoadedMsg{err: err}
	}
	msg := boardLoadedMsg{board: b}
	if mem != nil {
		if left, ok, err := mem.RestoreScroll(ctx); err == nil && ok {
			msg.scroll, msg.restored = left, true
		}
	}
	return msg
}

func (m *boardModel) watchCmd() tea.Cmd {
	w, ok := m.source.(Watcher)
	if !ok {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		select {
		case <-w.Updates():
			return feedUpdateMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m *boardModel) notifyCmd(out dnd.Outcome) tea.Cmd {
	n, ctx := m.notifier, m.ctx
	after := boardWithOrder(m.board, m.ctl.Lists())
	return func() tea.Msg {
		err := n.Notify(ctx, out.Change)
		return notifyDoneMsg{change: out.Change, snapshot: out.Snapshot, board: after, err: err}
	}
}

// applyCmd remembers the scroll offset and reloads once the server has
// accepted a change. Pushing sources deliver the new snapshot themselves
// unless one arrived while the change was out (reload).
func (m *boardModel) applyCmd(b *model.Board, reload bool) tea.Cmd {
	src, mem, ctx, left := m.source, m.scroll, m.ctx, m.scrollX
	if src == nil {
		return nil
	}
	return func() tea.Msg {
		if mem != nil {
			if err := mem.RememberScroll(ctx, left); err != nil {
				return appliedMsg{err: fmt.Errorf("remember scroll: %w", err)}
			}
		}
		if a, ok := src.(Applier); ok {
			if err := a.Apply(ctx, b); err != nil {
				return appliedMsg{err: err}
			}
		}
		if _, ok := src.(Watcher); ok && !reload {
			return appliedMsg{}
		}
		return load(ctx, src, mem)
	}
}
