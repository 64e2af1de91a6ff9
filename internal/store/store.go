package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const (
	stateFileName = "state.sqlite"
	logFileName   = "patientboard.log"
)

var ErrNotFound = errors.New("not found")

// Store is the local state directory: config, the sqlite state db (session
// keys and the notification outbox) and the log file.
type Store struct {
	Dir string
}

// Open returns the store rooted at dir, or at ConfigDir when dir is empty.
func Open(dir string) (Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		d, err := ConfigDir()
		if err != nil {
			return Store{}, err
		}
		dir = d
	}
	s := Store{Dir: dir}
	if err := s.Ensure(); err != nil {
		return Store{}, err
	}
	return s, nil
}

func (s Store) Ensure() error {
	if strings.TrimSpace(s.Dir) == "" {
		return errors.New("store dir is empty")
	}
	return os.MkdirAll(s.Dir, 0o755)
}

func (s Store) sqlitePath() string { return filepath.Join(s.Dir, stateFileName) }

func (s Store) LogPath() string { return filepath.Join(s.Dir, logFileName) }
