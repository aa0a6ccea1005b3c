package game

import (
	"fmt"

	"github.com/siakng/monopoly-server-go/internal/game/dice"
)

// Options holds the tunable rule constants for a game.
type Options struct {
	StartingCash   int
	PassStartBonus int
	BailAmount     int
	JailTurnLimit  int
	MaxDoubles     int
	Houses         int
	Hotels         int
	MinPlayers     int

	// AutoBankruptcy settles unpayable rent immediately in favour of the
	// owner instead of waiting for the debtor to declare bankruptcy.
	AutoBankruptcy bool

	// Seed drives dice, shuffles and trade ids. Zero picks a random seed.
	Seed int64

	// Source and ShuffleSource override the seeded sources. Tests use them
	// to script dice while keeping deck order fixed.
	Source        dice.Source
	ShuffleSource dice.Source
}

// DefaultOptions returns the standard rule set.
func DefaultOptions() Options {
	return Options{
		StartingCash:   1_500_000,
		PassStartBonus: 200_000,
		BailAmount:     50_000,
		JailTurnLimit:  3,
		MaxDoubles:     3,
		Houses:         32,
		Hotels:         12,
		MinPlayers:     2,
		AutoBankruptcy: true,
	}
}

// Validate checks the options are usable.
func (o Options) Validate() error {
	switch {
	case o.StartingCash <= 0:
		return fmt.Errorf("starting cash must be positive, got %d", o.StartingCash)
	case o.PassStartBonus < 0:
		return fmt.Errorf("pass start bonus must not be negative, got %d", o.PassStartBonus)
	case o.BailAmount < 0:
		return fmt.Errorf("bail amount must not be negative, got %d", o.BailAmount)
	case o.JailTurnLimit < 1:
		return fmt.Errorf("jail turn limit must be at least 1, got %d", o.JailTurnLimit)
	case o.MaxDoubles < 1:
		return fmt.Errorf("max doubles must be at least 1, got %d", o.MaxDoubles)
	case o.Houses < 0 || o.Hotels < 0:
		return fmt.Errorf("bank inventory must not be negative, got %d houses and %d hotels", o.Houses, o.Hotels)
	case o.MinPlayers < 1:
		return fmt.Errorf("min players must be at least 1, got %d", o.MinPlayers)
	}
	return nil
}
