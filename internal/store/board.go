package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"patientboard/internal/model"

	"gopkg.in/yaml.v3"
)

// BoardFile is a board snapshot on disk, JSON or YAML by extension.
type BoardFile struct {
	Path string
}

func (f BoardFile) isYAML() bool {
	switch strings.ToLower(filepath.Ext(f.Path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func (f BoardFile) Load() (*model.Board, error) {
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, err
	}
	return DecodeBoard(b, f.isYAML())
}

func (f BoardFile) Save(board *model.Board) error {
	var (
		b   []byte
		err error
	)
	if f.isYAML() {
		b, err = yaml.Marshal(board)
	} else {
		b, err = json.MarshalIndent(board, "", "  ")
	}
	if err != nil {
		return err
	}
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return atomicWriteFile(dir, filepath.Base(f.Path)+".*.tmp", f.Path, b, 0o644)
}

// DecodeBoard parses and validates a board snapshot.
func DecodeBoard(b []byte, isYAML bool) (*model.Board, error) {
	var board model.Board
	var err error
	if isYAML {
		err = yaml.Unmarshal(b, &board)
	} else {
		err = json.Unmarshal(b, &board)
	}
	if err != nil {
		return nil, fmt.Errorf("decode board: %w", err)
	}
	if err := ValidateBoard(&board); err != nil {
		return nil, err
	}
	return &board, nil
}

// ValidateBoard normalizes the kind and checks that column ids and card ids
// are unique. A card may appear in only one column.
func ValidateBoard(board *model.Board) error {
	kind, err := model.ParseBoardKind(string(board.Kind))
	if err != nil {
		return err
	}
	board.Kind = kind
	if kind == model.BoardKindSpecies && len(board.Columns) > 1 {
		return fmt.Errorf("species board has %d columns; expected 1", len(board.Columns))
	}

	cols := map[int64]bool{}
	cards := map[int64]int64{}
	for _, c := range board.Columns {
		if cols[c.ID] {
			return fmt.Errorf("duplicate column id %d", c.ID)
		}
		cols[c.ID] = true
		for _, card := range c.Cards {
			if prev, ok := cards[card.ID]; ok {
				return fmt.Errorf("card %d appears in columns %d and %d", card.ID, prev, c.ID)
			}
			cards[card.ID] = c.ID
		}
	}
	return nil
}
