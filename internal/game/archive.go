package game

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const replayExt = ".replay"

// ReplayArchive closes out the replays of finished games. Every saved replay
// is verified; it is also written to dir when dir is set.
type ReplayArchive struct {
	dir    string
	logger *zap.Logger
}

// NewReplayArchive creates an archive writing under dir. An empty dir
// verifies replays without keeping them.
func NewReplayArchive(dir string, logger *zap.Logger) (*ReplayArchive, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create replay dir: %w", err)
		}
	}
	return &ReplayArchive{dir: dir, logger: logger}, nil
}

// Path returns the file a game's replay is archived at.
func (a *ReplayArchive) Path(gameID string) (string, error) {
	if a.dir == "" {
		return "", fmt.Errorf("replay archive has no directory")
	}
	if gameID == "" || gameID == "." || gameID == ".." || strings.ContainsAny(gameID, `/\`) {
		return "", fmt.Errorf("game id %q is not a valid replay name", gameID)
	}
	return filepath.Join(a.dir, gameID+replayExt), nil
}

// Save stops recording gameID, verifies the replay and writes it out. It
// returns the archived path, or "" when the archive has no directory.
func (a *ReplayArchive) Save(recorder *ReplayRecorder, gameID string) (string, error) {
	if !recorder.IsRecording(gameID) {
		return "", fmt.Errorf("game %s is not being recorded", gameID)
	}
	recorder.StopRecording(gameID)

	replay, ok := recorder.GetReplay(gameID)
	if !ok {
		return "", fmt.Errorf("no replay for game %s", gameID)
	}
	if err := replay.Verify(nil); err != nil {
		return "", fmt.Errorf("replay of %s failed verification: %w", gameID, err)
	}
	if a.dir == "" {
		return "", nil
	}

	path, err := a.Path(gameID)
	if err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(a.dir, gameID+"-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create replay file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := replay.Export(tmp); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write replay file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to store replay file: %w", err)
	}

	a.logger.Info("replay archived",
		zap.String("game_id", gameID),
		zap.String("path", path),
		zap.Int("entries", replay.Size()),
	)
	return path, nil
}

// Load reads an archived replay and verifies it still plays back.
func (a *ReplayArchive) Load(gameID string) (*Replay, error) {
	path, err := a.Path(gameID)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open replay: %w", err)
	}
	defer f.Close()

	replay, err := LoadReplay(f)
	if err != nil {
		return nil, err
	}
	if err := replay.Verify(nil); err != nil {
		return nil, fmt.Errorf("archived replay of %s failed verification: %w", gameID, err)
	}
	return replay, nil
}
