package watchers

import (
	"sort"
	"sync"

	"github.com/siakng/monopoly-server-go/internal/game/rules"
)

// Watcher observes events published by the engine.
type Watcher interface {
	Watch(event rules.Event)
}

// PlayerStats accumulates one player's activity in a game.
type PlayerStats struct {
	PlayerID         string `json:"player_id"`
	Rolls            int    `json:"rolls"`
	Doubles          int    `json:"doubles"`
	StartPasses      int    `json:"start_passes"`
	StartBonus       int    `json:"start_bonus"`
	CardsDrawn       int    `json:"cards_drawn"`
	PropertiesBought int    `json:"properties_bought"`
	BuildingsBought  int    `json:"buildings_bought"`
	RentPaid         int    `json:"rent_paid"`
	RentCollected    int    `json:"rent_collected"`
	Bankrupt         bool   `json:"bankrupt"`
}

// StatsWatcher tracks per-player statistics for every game on a bus.
type StatsWatcher struct {
	mu    sync.RWMutex
	games map[string]map[string]*PlayerStats // gameID -> playerID -> stats
}

// NewStatsWatcher creates an empty stats watcher.
func NewStatsWatcher() *StatsWatcher {
	return &StatsWatcher{games: make(map[string]map[string]*PlayerStats)}
}

// Attach subscribes the watcher to bus and returns the subscription handle.
func (w *StatsWatcher) Attach(bus *rules.EventBus) int {
	return bus.Subscribe(w.Watch)
}

// Watch implements the Watcher interface.
func (w *StatsWatcher) Watch(event rules.Event) {
	if event.Type == rules.EventGameRemoved {
		w.Forget(event.GameID)
		return
	}
	if event.GameID == "" || event.PlayerID == "" {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	switch event.Type {
	case rules.EventDiceRolled:
		s := w.playerLocked(event.GameID, event.PlayerID)
		s.Rolls++
		if event.Flag {
			s.Doubles++
		}
	case rules.EventPlayerMoved:
		if event.Flag {
			s := w.playerLocked(event.GameID, event.PlayerID)
			s.StartPasses++
			s.StartBonus += event.Amount
		}
	case rules.EventCardDrawn:
		w.playerLocked(event.GameID, event.PlayerID).CardsDrawn++
	case rules.EventPropertyBought:
		w.playerLocked(event.GameID, event.PlayerID).PropertiesBought++
	case rules.EventBuildingBought:
		w.playerLocked(event.GameID, event.PlayerID).BuildingsBought++
	case rules.EventRentPaid:
		w.playerLocked(event.GameID, event.PlayerID).RentPaid += event.Amount
		if event.TargetID != "" {
			w.playerLocked(event.GameID, event.TargetID).RentCollected += event.Amount
		}
	case rules.EventPlayerBankrupt:
		w.playerLocked(event.GameID, event.PlayerID).Bankrupt = true
	}
}

func (w *StatsWatcher) playerLocked(gameID, playerID string) *PlayerStats {
	players, ok := w.games[gameID]
	if !ok {
		players = make(map[string]*PlayerStats)
		w.games[gameID] = players
	}
	s, ok := players[playerID]
	if !ok {
		s = &PlayerStats{PlayerID: playerID}
		players[playerID] = s
	}
	return s
}

// Player returns a copy of one player's statistics.
func (w *StatsWatcher) Player(gameID, playerID string) PlayerStats {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if s, ok := w.games[gameID][playerID]; ok {
		return *s
	}
	return PlayerStats{PlayerID: playerID}
}

// Game returns copies of every tracked player in a game, sorted by id.
func (w *StatsWatcher) Game(gameID string) []PlayerStats {
	w.mu.RLock()
	defer w.mu.RUnlock()

	players := w.games[gameID]
	out := make([]PlayerStats, 0, len(players))
	for _, s := range players {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out
}

// Forget drops a game's statistics.
func (w *StatsWatcher) Forget(gameID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.games, gameID)
}
