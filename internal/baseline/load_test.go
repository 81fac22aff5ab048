package baseline

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCalibration(t *testing.T, profiles map[TimeControl]map[Title]TitleProfile) string {
	t.Helper()

	doc := make(map[string]map[string]TitleProfile, len(profiles))
	for tc, row := range profiles {
		titled := make(map[string]TitleProfile, len(row))
		for title, p := range row {
			titled[string(title)] = p
		}
		doc[string(tc)] = titled
	}

	data, err := toml.Marshal(doc)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "thresholds.toml")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestLoadTableFileRoundTrip(t *testing.T) {
	path := writeCalibration(t, DefaultProfiles())

	table, err := LoadTableFile(path)
	require.NoError(t, err)

	want := DefaultTable().Profile(TitleGM, Bullet)
	assert.Equal(t, want, table.Profile(TitleGM, Bullet))
}

func TestLoadTableFileRejectsBrokenOrdering(t *testing.T) {
	profiles := DefaultProfiles()
	broken := profiles[Classical][TitleUntitled]
	broken.EngineAgreementSuspicious = 0.99
	broken.EngineAgreementVerySuspicious = 0.999
	profiles[Classical][TitleUntitled] = broken

	path := writeCalibration(t, profiles)
	_, err := LoadTableFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "engine agreement threshold increases")
}

func TestLoadTableFileRejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "thresholds.toml")
	require.NoError(t, os.WriteFile(path, []byte("[hyperbullet.GM]\nmin_cpl = 1.0\n"), 0644))

	_, err := LoadTableFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown time control")

	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf("[%s.GOAT]\nmin_cpl = 1.0\n", Classical)), 0644))
	_, err = LoadTableFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown title")
}

func TestLoadTableFileMissingFile(t *testing.T) {
	_, err := LoadTableFile(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
