package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_SaveLoad(t *testing.T) {
	t.Setenv("PATIENTBOARD_CONFIG_DIR", t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, &GlobalConfig{}, cfg, "missing config loads empty")

	cfg.ServerURL = "https://care.example.org"
	cfg.RequestTimeoutSeconds = 3
	cfg.TUI = &TUIConfig{Glyphs: "ascii"}
	require.NoError(t, SaveConfig(cfg))

	got, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
	assert.Equal(t, 3*time.Second, got.RequestTimeout())
}

func TestConfig_Validate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		cfg := &GlobalConfig{ServerURL: "http://localhost:8080"}
		assert.NoError(t, cfg.Validate())
		assert.Equal(t, DefaultRequestTimeout, cfg.RequestTimeout())
	})

	t.Run("MissingServer", func(t *testing.T) {
		err := (&GlobalConfig{}).Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "server url is required")
	})

	t.Run("BadScheme", func(t *testing.T) {
		err := (&GlobalConfig{ServerURL: "ftp://x"}).Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "scheme")
	})

	t.Run("SpeciesNeedsHome", func(t *testing.T) {
		err := (&GlobalConfig{ServerURL: "http://x", BoardKind: "species"}).Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "home id")
	})
}

// The board and a CLI invocation in another terminal may both save config.
func TestSaveConfig_ParallelSavesLeaveOneWholeFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PATIENTBOARD_CONFIG_DIR", dir)

	var wg sync.WaitGroup
	errs := make([]error, 32)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = SaveConfig(&GlobalConfig{
				ServerURL: fmt.Sprintf("https://home%d.example.org", i),
				TUI:       &TUIConfig{ColumnWidth: minWidth + i},
			})
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	path := filepath.Join(dir, "config.json")
	cfg, err := LoadConfigAt(path)
	require.NoError(t, err, "config.json must parse after parallel saves")
	require.NotNil(t, cfg.TUI)
	var i int
	_, err = fmt.Sscanf(cfg.ServerURL, "https://home%d.example.org", &i)
	require.NoError(t, err)
	assert.Equal(t, minWidth+i, cfg.TUI.ColumnWidth, "fields come from a single writer")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	ents, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, ents, 1, "no temp files left behind")
}

const minWidth = 12

func TestLoadConfigAt_RejectsBrokenJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"serverUrl":`), 0o600))

	_, err := LoadConfigAt(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}
