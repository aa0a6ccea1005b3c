package game

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"
)

const replayVersion = 1

// ReplayEntry is one accepted command and the checksum of the state it
// produced.
type ReplayEntry struct {
	Command  Command
	Checksum string
}

// Replay is the ordered command log of one game. Together with the seed and
// rules it is enough to rebuild every intermediate state.
type Replay struct {
	GameID  string
	Seed    int64
	Rules   Options
	Entries []ReplayEntry
	mu      sync.RWMutex
}

// NewReplay creates an empty replay for a game.
func NewReplay(gameID string, seed int64, opts Options) *Replay {
	opts.Seed = seed
	opts.Source, opts.ShuffleSource = nil, nil
	return &Replay{
		GameID:  gameID,
		Seed:    seed,
		Rules:   opts,
		Entries: make([]ReplayEntry, 0),
	}
}

// Record appends an accepted command.
func (r *Replay) Record(cmd Command, checksum string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cmd.Seats = append([]Seat(nil), cmd.Seats...)
	cmd.Offer = cmd.Offer.clone()
	cmd.Request = cmd.Request.clone()
	r.Entries = append(r.Entries, ReplayEntry{Command: cmd, Checksum: checksum})
}

// Size returns the number of recorded commands.
func (r *Replay) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.Entries)
}

// EntryAt returns the entry at index.
func (r *Replay) EntryAt(index int) (ReplayEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if index < 0 || index >= len(r.Entries) {
		return ReplayEntry{}, false
	}
	return r.Entries[index], true
}

// LastChecksum returns the checksum after the most recent command.
func (r *Replay) LastChecksum() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.Entries) == 0 {
		return ""
	}
	return r.Entries[len(r.Entries)-1].Checksum
}

// replayMetadata heads an exported replay stream.
type replayMetadata struct {
	GameID     string
	Seed       int64
	Rules      Options
	Timestamp  time.Time
	Version    int
	EntryCount int
}

// Export writes the replay as a gzip-compressed gob stream.
func (r *Replay) Export(w io.Writer) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	gzipWriter := gzip.NewWriter(w)
	encoder := gob.NewEncoder(gzipWriter)

	metadata := replayMetadata{
		GameID:     r.GameID,
		Seed:       r.Seed,
		Rules:      r.Rules,
		Timestamp:  time.Now().UTC(),
		Version:    replayVersion,
		EntryCount: len(r.Entries),
	}
	if err := encoder.Encode(&metadata); err != nil {
		gzipWriter.Close()
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	for i := range r.Entries {
		if err := encoder.Encode(&r.Entries[i]); err != nil {
			gzipWriter.Close()
			return fmt.Errorf("failed to encode entry %d: %w", i, err)
		}
	}

	if err := gzipWriter.Close(); err != nil {
		return fmt.Errorf("failed to flush replay: %w", err)
	}
	return nil
}

// LoadReplay reads a replay written by Export.
func LoadReplay(rd io.Reader) (*Replay, error) {
	gzipReader, err := gzip.NewReader(rd)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	decoder := gob.NewDecoder(gzipReader)

	var metadata replayMetadata
	if err := decoder.Decode(&metadata); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	if metadata.Version != replayVersion {
		return nil, fmt.Errorf("unsupported replay version: %d", metadata.Version)
	}

	replay := NewReplay(metadata.GameID, metadata.Seed, metadata.Rules)
	for i := 0; i < metadata.EntryCount; i++ {
		var entry ReplayEntry
		if err := decoder.Decode(&entry); err != nil {
			return nil, fmt.Errorf("failed to decode entry %d: %w", i, err)
		}
		replay.Entries = append(replay.Entries, entry)
	}

	return replay, nil
}

// Verify re-runs the replay on a fresh engine and checks every checksum.
func (r *Replay) Verify(logger *zap.Logger) error {
	r.mu.RLock()
	entries := append([]ReplayEntry(nil), r.Entries...)
	opts := r.Rules
	r.mu.RUnlock()

	engine := NewEngine(logger, opts)
	if err := engine.CreateGameWithOptions(r.GameID, opts); err != nil {
		return fmt.Errorf("failed to create replay game: %w", err)
	}

	for i, entry := range entries {
		if _, err := engine.Execute(r.GameID, entry.Command); err != nil {
			return fmt.Errorf("replay entry %d (%s) rejected: %w", i, entry.Command.Type, err)
		}
		snap, err := engine.Snapshot(r.GameID)
		if err != nil {
			return err
		}
		if got := snap.Checksum(); got != entry.Checksum {
			return fmt.Errorf("replay diverged at entry %d (%s): checksum %s, recorded %s",
				i, entry.Command.Type, got, entry.Checksum)
		}
	}
	return nil
}

// ReplayRecorder keeps the replays of the games an engine runs.
type ReplayRecorder struct {
	logger  *zap.Logger
	mu      sync.RWMutex
	replays map[string]*Replay // gameID -> Replay
	enabled map[string]bool    // gameID -> whether recording is enabled
}

// NewReplayRecorder creates a new replay recorder.
func NewReplayRecorder(logger *zap.Logger) *ReplayRecorder {
	return &ReplayRecorder{
		logger:  logger,
		replays: make(map[string]*Replay),
		enabled: make(map[string]bool),
	}
}

// StartRecording begins recording a game.
func (rr *ReplayRecorder) StartRecording(gameID string, seed int64, opts Options) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	rr.replays[gameID] = NewReplay(gameID, seed, opts)
	rr.enabled[gameID] = true

	if rr.logger != nil {
		rr.logger.Info("started replay recording",
			zap.String("game_id", gameID),
			zap.Int64("seed", seed),
		)
	}
}

// StopRecording stops recording a game. The replay stays available.
func (rr *ReplayRecorder) StopRecording(gameID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	rr.enabled[gameID] = false

	if rr.logger != nil {
		rr.logger.Info("stopped replay recording",
			zap.String("game_id", gameID),
		)
	}
}

// Record appends a command if recording is enabled for the game.
func (rr *ReplayRecorder) Record(gameID string, cmd Command, checksum string) {
	rr.mu.RLock()
	enabled := rr.enabled[gameID]
	replay := rr.replays[gameID]
	rr.mu.RUnlock()

	if !enabled || replay == nil {
		return
	}

	replay.Record(cmd, checksum)

	if rr.logger != nil {
		rr.logger.Debug("recorded replay entry",
			zap.String("game_id", gameID),
			zap.String("command", string(cmd.Type)),
			zap.Int("entry_count", replay.Size()),
		)
	}
}

// GetReplay returns the replay for a game.
func (rr *ReplayRecorder) GetReplay(gameID string) (*Replay, bool) {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	replay, exists := rr.replays[gameID]
	return replay, exists
}

// ClearReplay drops a replay from memory.
func (rr *ReplayRecorder) ClearReplay(gameID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	delete(rr.replays, gameID)
	delete(rr.enabled, gameID)

	if rr.logger != nil {
		rr.logger.Debug("cleared replay from memory",
			zap.String("game_id", gameID),
		)
	}
}

// IsRecording returns whether recording is enabled for a game.
func (rr *ReplayRecorder) IsRecording(gameID string) bool {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	return rr.enabled[gameID]
}
