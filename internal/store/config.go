package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"patientboard/internal/model"
)

type GlobalConfig struct {
	// ServerURL is the dashboard server base URL (e.g. https://care.example.org).
	ServerURL string `json:"serverUrl,omitempty"`

	// RequestTimeoutSeconds bounds every reorder/transfer request. Zero means
	// the default.
	RequestTimeoutSeconds int `json:"requestTimeoutSeconds,omitempty"`

	// BoardKind selects which endpoints single-column reorders go to.
	// Values: patients|species
	BoardKind string `json:"boardKind,omitempty"`

	// HomeID is the home whose species list is edited when BoardKind is species.
	HomeID int64 `json:"homeId,omitempty"`

	// TUI holds optional user preferences for the interactive board.
	TUI *TUIConfig `json:"tui,omitempty"`
}

type TUIConfig struct {
	// Glyphs selects the glyph set (e.g. "unicode", "ascii").
	Glyphs string `json:"glyphs,omitempty"`
	// ColumnWidth is the width of one home column in cells.
	ColumnWidth int `json:"columnWidth,omitempty"`
}

const DefaultRequestTimeout = 10 * time.Second

func (c *GlobalConfig) RequestTimeout() time.Duration {
	if c == nil || c.RequestTimeoutSeconds <= 0 {
		return DefaultRequestTimeout
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

func (c *GlobalConfig) Kind() (model.BoardKind, error) {
	if c == nil {
		return model.BoardKindPatients, nil
	}
	return model.ParseBoardKind(c.BoardKind)
}

// Validate checks the fields a client needs before talking to the server.
func (c *GlobalConfig) Validate() error {
	if c == nil {
		return errors.New("nil config")
	}
	if strings.TrimSpace(c.ServerURL) == "" {
		return errors.New("server url is required (set serverUrl in config.json or pass --server)")
	}
	u, err := url.Parse(strings.TrimSpace(c.ServerURL))
	if err != nil {
		return fmt.Errorf("invalid server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid server url scheme: %q", u.Scheme)
	}
	kind, err := c.Kind()
	if err != nil {
		return err
	}
	if kind == model.BoardKindSpecies && c.HomeID <= 0 {
		return errors.New("species boards need a home id")
	}
	return nil
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.patientboard).
	if v := strings.TrimSpace(os.Getenv("PATIENTBOARD_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".patientboard"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

func LoadConfig() (*GlobalConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadConfigAt(path)
}

// LoadConfigAt reads the config at path. A missing file is an empty config.
func LoadConfigAt(path string) (*GlobalConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &GlobalConfig{}, nil
		}
		return nil, err
	}
	var cfg GlobalConfig
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

func SaveConfig(cfg *GlobalConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	// Unique temp name + rename so the TUI and a CLI invocation can't clobber each other.
	return atomicWriteFile(dir, "config.json.*.tmp", path, b, 0o600)
}
