package game

import (
	"strings"

	"github.com/siakng/monopoly-server-go/internal/game/board"
	"github.com/siakng/monopoly-server-go/internal/game/cards"
	"github.com/siakng/monopoly-server-go/internal/game/dice"
	"github.com/siakng/monopoly-server-go/internal/game/rules"
)

// requireTurn checks the phase and that actorID holds the turn.
func (g *Game) requireTurn(actorID string, phases ...rules.Phase) (*Player, error) {
	s := g.state
	if err := s.turn.Require(phases...); err != nil {
		return nil, err
	}
	p, err := s.player(actorID)
	if err != nil {
		return nil, err
	}
	if s.CurrentPlayer() != p {
		return nil, rules.NewError(rules.KindSequencing, "it is not %s's turn", p.Name)
	}
	return p, nil
}

// holdsTurn reports whether p is still the current player in the rolling
// phase, i.e. the roll has not been cut short by jail, bankruptcy or game over.
func (g *Game) holdsTurn(p *Player) bool {
	return g.state.turn.Phase() == rules.PhaseRolling && g.state.CurrentPlayer() == p
}

func (g *Game) endMovementFor(p *Player) {
	if g.holdsTurn(p) {
		g.state.turn.EndMovement()
	}
}

// StartGame seats the players and begins the first turn.
func (g *Game) StartGame(actorID string, seats []Seat) ([]rules.Event, error) {
	s := g.state
	if s.turn.Phase() != rules.PhaseWaiting {
		return nil, rules.NewError(rules.KindSequencing, "game already started")
	}
	if len(seats) < g.opts.MinPlayers {
		return nil, rules.NewError(rules.KindState, "need at least %d players, have %d", g.opts.MinPlayers, len(seats))
	}

	seen := make(map[string]bool, len(seats))
	actorSeated := false
	for _, seat := range seats {
		id := strings.TrimSpace(seat.ID)
		if id == "" {
			return nil, rules.NewError(rules.KindState, "seat without player id")
		}
		if seen[id] {
			return nil, rules.NewError(rules.KindState, "player %s seated twice", id)
		}
		seen[id] = true
		if id == actorID {
			actorSeated = true
		}
	}
	if !actorSeated {
		return nil, rules.NewError(rules.KindLookup, "player %s is not seated in game %s", actorID, s.ID)
	}

	s.Players = make([]*Player, 0, len(seats))
	for i, seat := range seats {
		s.Players = append(s.Players, &Player{
			ID:    strings.TrimSpace(seat.ID),
			Name:  seat.Name,
			Color: playerColors[i%len(playerColors)],
			Cash:  g.opts.StartingCash,
		})
	}
	s.Chance, s.CommunityChest = cards.NewStandardDecks(g.shuffle)
	if err := s.turn.Start(); err != nil {
		return nil, err
	}

	evt := rules.NewEventWithAmount(rules.EventGameStarted, actorID, len(seats))
	evt.TargetID = s.Players[0].ID
	return []rules.Event{evt}, nil
}

// RollDice rolls for the current player and resolves the move.
func (g *Game) RollDice(actorID string) ([]rules.Event, error) {
	p, err := g.requireTurn(actorID, rules.PhaseRolling)
	if err != nil {
		return nil, err
	}
	s := g.state

	roll := dice.RollPair(g.dice)
	s.LastRoll, s.HasRoll = roll, true

	rolled := rules.NewEventWithAmount(rules.EventDiceRolled, p.ID, roll.Sum())
	rolled.Dice = []int{roll[0], roll[1]}
	rolled.Flag = roll.Double()
	events := []rules.Event{rolled}

	if p.InJail {
		jailEvents, err := g.rollInJail(p, roll)
		return append(events, jailEvents...), err
	}

	if roll.Double() {
		p.DoublesCount++
		if p.DoublesCount >= g.opts.MaxDoubles {
			return append(events, g.sendToJail(p)...), nil
		}
	} else {
		p.DoublesCount = 0
	}

	moveEvents, err := g.move(p, roll.Sum())
	if err != nil {
		return nil, err
	}
	events = append(events, moveEvents...)

	if !roll.Double() {
		g.endMovementFor(p)
	}
	return events, nil
}

func (g *Game) rollInJail(p *Player, roll dice.Roll) ([]rules.Event, error) {
	s := g.state
	var events []rules.Event

	if !roll.Double() {
		p.JailTurns++
		if p.JailTurns < g.opts.JailTurnLimit {
			evt := rules.NewEventWithAmount(rules.EventJailStateChanged, p.ID, p.JailTurns)
			evt.Flag = true
			s.turn.EndMovement()
			return []rules.Event{evt}, nil
		}

		// Out of attempts: bail is forced before moving.
		charged, bankrupt, err := g.chargeBank(p, g.opts.BailAmount)
		if err != nil {
			return nil, err
		}
		events = append(events, charged...)
		if bankrupt {
			return events, nil
		}
	}

	events = append(events, g.release(p))
	moveEvents, err := g.move(p, roll.Sum())
	if err != nil {
		return nil, err
	}
	events = append(events, moveEvents...)
	g.endMovementFor(p)
	return events, nil
}

// EndTurn passes the turn to the next player.
func (g *Game) EndTurn(actorID string) ([]rules.Event, error) {
	p, err := g.requireTurn(actorID, rules.PhaseEndTurn)
	if err != nil {
		return nil, err
	}
	s := g.state

	if owed := g.rentOwed(p); owed > 0 {
		return nil, rules.NewError(rules.KindState, "rent of %s must be paid before ending the turn", board.FormatMoney(owed))
	}

	next, err := s.turn.Advance(len(s.Players))
	if err != nil {
		return nil, err
	}
	nextPlayer := s.Players[next]
	g.resetTurnState(nextPlayer)

	evt := rules.NewEvent(rules.EventTurnEnded, p.ID)
	evt.TargetID = nextPlayer.ID
	return []rules.Event{evt}, nil
}

func (g *Game) resetTurnState(next *Player) {
	s := g.state
	next.DoublesCount = 0
	s.RentPaid = false
	s.HasRoll = false
	s.LastRoll = dice.Roll{}
}

// PayBail releases the current player from jail before rolling.
func (g *Game) PayBail(actorID string) ([]rules.Event, error) {
	p, err := g.requireTurn(actorID, rules.PhaseRolling)
	if err != nil {
		return nil, err
	}
	if !p.InJail {
		return nil, rules.NewError(rules.KindState, "%s is not in jail", p.Name)
	}
	if p.Cash < g.opts.BailAmount {
		return nil, rules.NewError(rules.KindResource, "insufficient cash for bail: have %d, need %d", p.Cash, g.opts.BailAmount)
	}

	p.Cash -= g.opts.BailAmount
	evt := g.release(p)
	evt.Amount = g.opts.BailAmount
	return []rules.Event{evt}, nil
}

// UseJailCard spends a held release card and returns it to its deck.
func (g *Game) UseJailCard(actorID string) ([]rules.Event, error) {
	p, err := g.requireTurn(actorID, rules.PhaseRolling)
	if err != nil {
		return nil, err
	}
	if !p.InJail {
		return nil, rules.NewError(rules.KindState, "%s is not in jail", p.Name)
	}
	if len(p.HeldCards) == 0 {
		return nil, rules.NewError(rules.KindState, "%s holds no jail release card", p.Name)
	}

	card := p.HeldCards[0]
	if err := g.state.deck(card.Deck).Return(card); err != nil {
		return nil, rules.NewError(rules.KindState, "%v", err)
	}
	p.HeldCards = p.HeldCards[1:]

	evt := g.release(p)
	evt.Data = card
	return []rules.Event{evt}, nil
}

func (g *Game) release(p *Player) rules.Event {
	p.InJail = false
	p.JailTurns = 0
	p.DoublesCount = 0
	return rules.NewEvent(rules.EventJailStateChanged, p.ID)
}

func (g *Game) sendToJail(p *Player) []rules.Event {
	p.Position = board.JailTile
	p.InJail = true
	p.JailTurns = 0
	p.DoublesCount = 0
	g.endMovementFor(p)

	evt := rules.NewEvent(rules.EventJailStateChanged, p.ID)
	evt.Flag = true
	evt.PropertyID = board.JailTile
	return []rules.Event{evt}
}
