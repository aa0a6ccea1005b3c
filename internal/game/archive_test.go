package game

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestReplayArchiveSaveAndLoad(t *testing.T) {
	engine := playedEngine(t, 31)
	dir := filepath.Join(t.TempDir(), "replays")
	archive, err := NewReplayArchive(dir, zaptest.NewLogger(t))
	require.NoError(t, err)

	path, err := archive.Save(engine.Recorder(), "replayed")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "replayed.replay"), path)
	assert.False(t, engine.Recorder().IsRecording("replayed"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files are cleaned up")

	original, _ := engine.Recorder().GetReplay("replayed")
	loaded, err := archive.Load("replayed")
	require.NoError(t, err)
	assert.Equal(t, original.Size(), loaded.Size())
	assert.Equal(t, original.LastChecksum(), loaded.LastChecksum())

	_, err = archive.Save(engine.Recorder(), "replayed")
	assert.Error(t, err, "a replay is closed out once")
}

func TestReplayArchiveWithoutDirOnlyVerifies(t *testing.T) {
	engine := playedEngine(t, 5)
	archive, err := NewReplayArchive("", nil)
	require.NoError(t, err)

	path, err := archive.Save(engine.Recorder(), "replayed")
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.False(t, engine.Recorder().IsRecording("replayed"))

	_, err = archive.Load("replayed")
	assert.Error(t, err)
}

func TestReplayArchiveRejectsDivergentReplay(t *testing.T) {
	engine := playedEngine(t, 31)
	replay, _ := engine.Recorder().GetReplay("replayed")
	replay.Entries[len(replay.Entries)-1].Checksum = "bogus"

	archive, err := NewReplayArchive(t.TempDir(), nil)
	require.NoError(t, err)
	_, err = archive.Save(engine.Recorder(), "replayed")
	assert.ErrorContains(t, err, "failed verification")
}

func TestReplayArchiveRejectsUnsafeNames(t *testing.T) {
	archive, err := NewReplayArchive(t.TempDir(), nil)
	require.NoError(t, err)

	for _, id := range []string{"", ".", "..", "../escape", `a\b`} {
		_, err := archive.Path(id)
		assert.Error(t, err, "game id %q", id)
	}
	_, err = archive.Save(NewReplayRecorder(nil), "unknown")
	assert.Error(t, err)
}
