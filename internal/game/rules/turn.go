package rules

import (
	"fmt"
	"strings"
)

// Phase represents where the current turn stands.
type Phase int

const (
	PhaseWaiting Phase = iota
	PhaseRolling
	PhaseEndTurn
	PhaseGameOver
)

var phaseNames = map[Phase]string{
	PhaseWaiting:  "WAITING",
	PhaseRolling:  "ROLLING",
	PhaseEndTurn:  "END_TURN",
	PhaseGameOver: "GAME_OVER",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// InProgress reports whether the game has started and not finished.
func (p Phase) InProgress() bool {
	return p == PhaseRolling || p == PhaseEndTurn
}

// TurnManager tracks whose turn it is and which phase the turn is in.
// Players are addressed by their index in the turn order.
type TurnManager struct {
	current    int
	turnNumber int
	phase      Phase
}

// NewTurnManager creates a turn manager waiting for the game to start.
func NewTurnManager() *TurnManager {
	return &TurnManager{phase: PhaseWaiting}
}

// Current returns the index of the player whose turn it is.
func (tm *TurnManager) Current() int {
	return tm.current
}

// Phase returns the phase currently in progress.
func (tm *TurnManager) Phase() Phase {
	return tm.phase
}

// TurnNumber returns the current turn number (1-based once started).
func (tm *TurnManager) TurnNumber() int {
	return tm.turnNumber
}

// Clone returns an independent copy.
func (tm *TurnManager) Clone() *TurnManager {
	cp := *tm
	return &cp
}

// Require fails with a sequencing error unless the phase is one of allowed.
func (tm *TurnManager) Require(allowed ...Phase) error {
	if tm.phase == PhaseGameOver {
		return NewError(KindSequencing, "game is over")
	}
	for _, phase := range allowed {
		if tm.phase == phase {
			return nil
		}
	}
	names := make([]string, len(allowed))
	for i, phase := range allowed {
		names[i] = phase.String()
	}
	return NewError(KindSequencing, "action not allowed in phase %s (requires %s)", tm.phase, strings.Join(names, " or "))
}

// Start moves the game from waiting into the first player's rolling phase.
func (tm *TurnManager) Start() error {
	if tm.phase != PhaseWaiting {
		return NewError(KindSequencing, "game already started")
	}
	tm.current = 0
	tm.turnNumber = 1
	tm.phase = PhaseRolling
	return nil
}

// EndMovement closes the rolling phase for the current player.
func (tm *TurnManager) EndMovement() {
	if tm.phase == PhaseRolling {
		tm.phase = PhaseEndTurn
	}
}

// Advance hands the turn to the next seat and returns its index.
func (tm *TurnManager) Advance(players int) (int, error) {
	if tm.phase != PhaseEndTurn {
		return tm.current, NewError(KindSequencing, "cannot end turn in phase %s", tm.phase)
	}
	if players <= 0 {
		return tm.current, NewError(KindState, "no players left")
	}
	tm.current = (tm.current + 1) % players
	tm.turnNumber++
	tm.phase = PhaseRolling
	return tm.current, nil
}

// RemoveSeat adjusts the turn pointer after the seat at index is removed.
// remaining is the number of seats left. It reports whether the turn passed
// to another player because the removed seat was the current one.
func (tm *TurnManager) RemoveSeat(index, remaining int) bool {
	if remaining <= 0 {
		tm.current = 0
		return false
	}
	switch {
	case index < tm.current:
		tm.current--
		return false
	case index > tm.current:
		return false
	}

	if tm.current >= remaining {
		tm.current = 0
	}
	if tm.phase.InProgress() {
		tm.turnNumber++
		tm.phase = PhaseRolling
		return true
	}
	return false
}

// Finish ends the game.
func (tm *TurnManager) Finish() {
	tm.phase = PhaseGameOver
}
