package tui

import (
	"context"

	"patientboard/internal/model"
	"patientboard/internal/store"
)

// Source provides board snapshots. The board reloads from it at start and
// after every change the server accepts.
type Source interface {
	Load(ctx context.Context) (*model.Board, error)
}

// Applier is a Source that must be told about accepted changes because
// nothing else will update it (a snapshot file on disk).
type Applier interface {
	Apply(ctx context.Context, b *model.Board) error
}

// Watcher is a Source that pushes new snapshots on its own.
type Watcher interface {
	Updates() <-chan struct{}
}

// ScrollMemory keeps the board's scroll offset across reloads.
type ScrollMemory interface {
	RememberScroll(ctx context.Context, left int) error
	RestoreScroll(ctx context.Context) (int, bool, error)
}

type FileSource struct {
	File store.BoardFile
}

func (s FileSource) Load(ctx context.Context) (*model.Board, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.File.Load()
}

func (s FileSource) Apply(ctx context.Context, b *model.Board) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.File.Save(b)
}
