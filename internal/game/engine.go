package game

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/siakng/monopoly-server-go/internal/game/rules"
	"go.uber.org/zap"
)

// session serialises commands against one game.
type session struct {
	mu   sync.Mutex
	game *Game
}

// Engine hosts many independent games. Commands against the same game are
// applied one at a time; different games proceed in parallel.
type Engine struct {
	logger   *zap.Logger
	opts     Options
	mu       sync.RWMutex
	sessions map[string]*session
	bus      *rules.EventBus
	recorder *ReplayRecorder
}

// NewEngine creates an engine whose games use opts unless overridden.
func NewEngine(logger *zap.Logger, opts Options) *Engine {
	return &Engine{
		logger:   logger,
		opts:     opts,
		sessions: make(map[string]*session),
		bus:      rules.NewEventBus(),
		recorder: NewReplayRecorder(logger),
	}
}

// Events returns the bus every accepted command's events are published on.
func (e *Engine) Events() *rules.EventBus {
	return e.bus
}

// Recorder returns the engine's replay recorder.
func (e *Engine) Recorder() *ReplayRecorder {
	return e.recorder
}

// CreateGame registers a new waiting game with the engine's options and
// returns its id. An empty id is replaced by a generated one.
func (e *Engine) CreateGame(gameID string) (string, error) {
	if gameID == "" {
		gameID = uuid.NewString()
	}
	if err := e.CreateGameWithOptions(gameID, e.opts); err != nil {
		return "", err
	}
	return gameID, nil
}

// CreateGameWithOptions registers a new waiting game with explicit options.
func (e *Engine) CreateGameWithOptions(gameID string, opts Options) error {
	g, err := NewGame(gameID, opts)
	if err != nil {
		return fmt.Errorf("invalid game options: %w", err)
	}

	e.mu.Lock()
	if _, exists := e.sessions[gameID]; exists {
		e.mu.Unlock()
		return rules.NewError(rules.KindState, "game %s already exists", gameID)
	}
	e.sessions[gameID] = &session{game: g}
	e.mu.Unlock()

	e.recorder.StartRecording(gameID, g.Seed(), opts)

	if e.logger != nil {
		e.logger.Info("game created",
			zap.String("game_id", gameID),
			zap.Int64("seed", g.Seed()),
		)
	}
	return nil
}

// RemoveGame drops a game and its replay, then publishes GAME_REMOVED so
// listeners can release what they hold for it.
func (e *Engine) RemoveGame(gameID string) {
	e.mu.Lock()
	_, existed := e.sessions[gameID]
	delete(e.sessions, gameID)
	e.mu.Unlock()

	if !existed {
		return
	}
	e.recorder.ClearReplay(gameID)
	e.bus.Publish(rules.Event{Type: rules.EventGameRemoved, GameID: gameID})

	if e.logger != nil {
		e.logger.Info("game removed", zap.String("game_id", gameID))
	}
}

// Games lists the hosted game ids in sorted order.
func (e *Engine) Games() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	ids := make([]string, 0, len(e.sessions))
	for id := range e.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (e *Engine) session(gameID string) (*session, error) {
	e.mu.RLock()
	sess, exists := e.sessions[gameID]
	e.mu.RUnlock()

	if !exists {
		return nil, rules.NewError(rules.KindLookup, "game %s not found", gameID)
	}
	return sess, nil
}

// Snapshot returns the current view of a game.
func (e *Engine) Snapshot(gameID string) (*Snapshot, error) {
	sess, err := e.session(gameID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	return sess.game.state.Snapshot(), nil
}

// Execute applies a command. A rejected command leaves the game exactly as
// it was. On success the events end with a STATE_SNAPSHOT and are published
// on the event bus after the game lock is released.
func (e *Engine) Execute(gameID string, cmd Command) ([]rules.Event, error) {
	sess, err := e.session(gameID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	events, err := e.apply(gameID, sess.game, cmd)
	sess.mu.Unlock()

	if err != nil {
		return nil, err
	}

	for i := range events {
		events[i].GameID = gameID
	}
	e.bus.PublishBatch(events)
	return events, nil
}

func (e *Engine) apply(gameID string, g *Game, cmd Command) ([]rules.Event, error) {
	bookmark := g.state.clone()

	events, err := g.Apply(cmd)
	if err != nil {
		g.state = bookmark
		if e.logger != nil {
			e.logger.Info("command rejected",
				zap.String("game_id", gameID),
				zap.String("player_id", cmd.PlayerID),
				zap.String("command", string(cmd.Type)),
				zap.Error(err),
			)
		}
		return nil, err
	}

	snap := g.state.Snapshot()
	checksum := snap.Checksum()

	snapshotEvt := rules.NewEvent(rules.EventStateSnapshot, cmd.PlayerID)
	snapshotEvt.Data = snap
	events = append(events, snapshotEvt)

	e.recorder.Record(gameID, cmd, checksum)

	if e.logger != nil {
		e.logger.Debug("command applied",
			zap.String("game_id", gameID),
			zap.String("player_id", cmd.PlayerID),
			zap.String("command", string(cmd.Type)),
			zap.Int("events", len(events)),
			zap.String("checksum", checksum),
		)
		for _, evt := range events {
			if evt.Type == rules.EventGameOver {
				e.logger.Info("game over",
					zap.String("game_id", gameID),
					zap.String("winner", g.state.Winner),
				)
			}
		}
	}
	return events, nil
}
