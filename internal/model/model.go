package model

import (
	"fmt"
	"strings"
	"time"
)

type BoardKind string

const (
	// BoardKindPatients is the dashboard: one column per home, one card per
	// patient. Cards can be reordered and transferred between homes.
	BoardKindPatients BoardKind = "patients"
	// BoardKindSpecies is a home's species list. A single column, reorder only.
	BoardKindSpecies BoardKind = "species"
)

func ParseBoardKind(s string) (BoardKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(BoardKindPatients):
		return BoardKindPatients, nil
	case string(BoardKindSpecies):
		return BoardKindSpecies, nil
	default:
		return "", fmt.Errorf("unknown board kind: %s", s)
	}
}

type Board struct {
	Kind    BoardKind `json:"kind" yaml:"kind"`
	Title   string    `json:"title,omitempty" yaml:"title,omitempty"`
	Columns []Column  `json:"columns" yaml:"columns"`
}

// Column is a home (patients board) or the single species list of a home.
type Column struct {
	ID    int64  `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Cards []Card `json:"cards" yaml:"cards"`
}

// Card is one patient or species row. Cards are listed in display order.
type Card struct {
	ID       int64      `json:"id" yaml:"id"`
	Title    string     `json:"title" yaml:"title"`
	Subtitle string     `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	Tags     []string   `json:"tags,omitempty" yaml:"tags,omitempty"`
	Note     string     `json:"note,omitempty" yaml:"note,omitempty"`
	Since    *time.Time `json:"since,omitempty" yaml:"since,omitempty"`
}

func (b *Board) FindColumn(id int64) (*Column, bool) {
	for i := range b.Columns {
		if b.Columns[i].ID == id {
			return &b.Columns[i], true
		}
	}
	return nil, false
}

func (b *Board) FindCard(id int64) (*Card, *Column, bool) {
	for i := range b.Columns {
		for j := range b.Columns[i].Cards {
			if b.Columns[i].Cards[j].ID == id {
				return &b.Columns[i].Cards[j], &b.Columns[i], true
			}
		}
	}
	return nil, nil, false
}

// Matches reports whether q (already lowercased) occurs in any of the card's
// visible text.
func (c Card) Matches(q string) bool {
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(c.Title), q) || strings.Contains(strings.ToLower(c.Subtitle), q) {
		return true
	}
	for _, t := range c.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}
