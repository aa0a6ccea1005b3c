package game

import (
	"testing"

	"github.com/siakng/monopoly-server-go/internal/game/board"
	"github.com/siakng/monopoly-server-go/internal/game/cards"
	"github.com/siakng/monopoly-server-go/internal/game/dice"
	"github.com/siakng/monopoly-server-go/internal/game/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	alice = "alice"
	bob   = "bob"
	carol = "carol"
)

var streetGroups = []board.Group{
	board.GroupBrown, board.GroupLightBlue, board.GroupPink, board.GroupOrange,
	board.GroupRed, board.GroupYellow, board.GroupGreen, board.GroupDarkBlue,
}

// scriptedOptions returns default rules with dice following faces and a
// fixed shuffle.
func scriptedOptions(faces ...int) Options {
	opts := DefaultOptions()
	opts.Seed = 42
	opts.Source = dice.NewScripted(faces...)
	opts.ShuffleSource = dice.NewSource(7)
	return opts
}

func seatsFor(ids ...string) []Seat {
	seats := make([]Seat, len(ids))
	for i, id := range ids {
		seats[i] = Seat{ID: id, Name: id}
	}
	return seats
}

// startedGame creates a game with the given players seated in order.
func startedGame(t *testing.T, opts Options, ids ...string) *Game {
	t.Helper()
	g, err := NewGame("test-game", opts)
	require.NoError(t, err)
	_, err = g.StartGame(ids[0], seatsFor(ids...))
	require.NoError(t, err)
	return g
}

func mustPlayer(t *testing.T, g *Game, id string) *Player {
	t.Helper()
	p, err := g.state.player(id)
	require.NoError(t, err)
	return p
}

// give hands properties to a player directly.
func give(t *testing.T, g *Game, playerID string, propertyIDs ...int) {
	t.Helper()
	for _, id := range propertyIDs {
		prop, _, err := g.state.property(id)
		require.NoError(t, err)
		prop.OwnerID = playerID
	}
}

// stackDeck replaces a deck with the given card ids on top, the rest in
// printed order below.
func stackDeck(g *Game, kind cards.DeckKind, ids ...int) {
	printed := cards.StandardChance()
	if kind == cards.DeckCommunityChest {
		printed = cards.StandardCommunityChest()
	}
	var top, rest []cards.Card
	for _, id := range ids {
		for _, card := range printed {
			if card.ID == id {
				top = append(top, card)
			}
		}
	}
	for _, card := range printed {
		keep := true
		for _, id := range ids {
			if card.ID == id {
				keep = false
			}
		}
		if keep {
			rest = append(rest, card)
		}
	}
	deck := cards.NewDeck(kind, append(top, rest...))
	if kind == cards.DeckChance {
		g.state.Chance = deck
	} else {
		g.state.CommunityChest = deck
	}
}

func eventTypes(events []rules.Event) []rules.EventType {
	types := make([]rules.EventType, len(events))
	for i, evt := range events {
		types[i] = evt.Type
	}
	return types
}

func findEvent(events []rules.Event, eventType rules.EventType) (rules.Event, bool) {
	for _, evt := range events {
		if evt.Type == eventType {
			return evt, true
		}
	}
	return rules.Event{}, false
}

// checkInvariants asserts the structural rules that must hold after every
// accepted command.
func checkInvariants(t *testing.T, g *Game) {
	t.Helper()
	s := g.state

	live := make(map[string]bool, len(s.Players))
	heldChance, heldChest := 0, 0
	for _, p := range s.Players {
		live[p.ID] = true
		assert.GreaterOrEqual(t, p.Cash, 0, "%s has negative cash", p.ID)
		assert.True(t, p.Position >= 0 && p.Position < board.Size, "%s off board at %d", p.ID, p.Position)
		for _, card := range p.HeldCards {
			if card.Chance() {
				heldChance++
			} else {
				heldChest++
			}
		}
	}

	houses, hotels := 0, 0
	for id, prop := range s.Properties {
		if prop.Owned() {
			assert.True(t, live[prop.OwnerID], "property %d owned by departed player %s", id, prop.OwnerID)
		}
		assert.True(t, prop.Level >= 0 && prop.Level <= board.MaxLevel, "property %d at level %d", id, prop.Level)
		if prop.Mortgaged {
			assert.Zero(t, prop.Level, "mortgaged property %d has buildings", id)
		}
		if prop.Level == board.MaxLevel {
			hotels++
		} else {
			houses += prop.Level
		}
	}
	assert.Equal(t, g.opts.Houses, s.HousesLeft+houses, "house inventory")
	assert.Equal(t, g.opts.Hotels, s.HotelsLeft+hotels, "hotel inventory")

	for _, group := range streetGroups {
		lowest, highest := s.groupLevels(group)
		assert.LessOrEqual(t, highest-lowest, 1, "uneven building in %s", group)
	}

	assert.Equal(t, len(cards.StandardChance()), s.Chance.Len()+heldChance, "chance cards")
	assert.Equal(t, len(cards.StandardCommunityChest()), s.CommunityChest.Len()+heldChest, "community chest cards")
}

// playBot drives a game through the engine with a simple strategy until it
// ends or maxSteps commands were issued, checking invariants as it goes.
func playBot(t *testing.T, engine *Engine, gameID string, maxSteps int) {
	t.Helper()
	g := engine.sessions[gameID].game
	exec := func(cmd Command) error {
		_, err := ledgerExec(t, engine, gameID)(cmd)
		return err
	}

	for step := 0; step < maxSteps && g.state.Phase() != rules.PhaseGameOver; step++ {
		p := g.state.CurrentPlayer()
		require.NotNil(t, p)

		switch g.state.Phase() {
		case rules.PhaseRolling:
			if p.InJail && p.Cash > 400_000 {
				require.NoError(t, exec(Command{Type: CommandPayBail, PlayerID: p.ID}))
			}
			require.NoError(t, exec(Command{Type: CommandRollDice, PlayerID: p.ID}))

		case rules.PhaseEndTurn:
			if g.rentOwed(p) > 0 {
				require.NoError(t, exec(Command{Type: CommandPayRent, PlayerID: p.ID}))
				break
			}
			if prop, tile, err := g.state.property(p.Position); err == nil && !prop.Owned() && p.Cash >= tile.Price+300_000 {
				require.NoError(t, exec(Command{Type: CommandBuyProperty, PlayerID: p.ID}))
			}
			if p.Cash > 600_000 {
				for _, prop := range g.state.ownedBy(p.ID) {
					if prop.Mortgaged {
						_ = exec(Command{Type: CommandUnmortgageProperty, PlayerID: p.ID, PropertyID: prop.ID})
						continue
					}
					_ = exec(Command{Type: CommandBuyBuilding, PlayerID: p.ID, PropertyID: prop.ID})
				}
			}
			if p.Cash < 150_000 {
				for _, prop := range g.state.ownedBy(p.ID) {
					if prop.Level > 0 {
						_ = exec(Command{Type: CommandSellBuilding, PlayerID: p.ID, PropertyID: prop.ID})
						continue
					}
					_ = exec(Command{Type: CommandMortgageProperty, PlayerID: p.ID, PropertyID: prop.ID})
				}
			}
			require.NoError(t, exec(Command{Type: CommandEndTurn, PlayerID: p.ID}))
		}

		checkInvariants(t, g)
	}
}

// bankFlow is the net cash the bank paid out to players across events.
func bankFlow(t *testing.T, events []rules.Event) int {
	t.Helper()
	flow := 0
	for _, evt := range events {
		switch evt.Type {
		case rules.EventPlayerMoved:
			if evt.Flag {
				flow += evt.Amount
			}
		case rules.EventCardDrawn:
			if card, ok := evt.Data.(cards.Card); ok && card.Kind == cards.EffectGrantCash {
				flow += card.Value
			}
		case rules.EventBankCharged, rules.EventPropertyBought, rules.EventPropertyUnmortgaged, rules.EventPlayerRemoved:
			flow -= evt.Amount
		case rules.EventPropertyMortgaged:
			flow += evt.Amount
		case rules.EventBuildingBought:
			tile, ok := board.Property(evt.PropertyID)
			require.True(t, ok)
			flow -= tile.HouseCost
		case rules.EventBuildingSold:
			tile, ok := board.Property(evt.PropertyID)
			require.True(t, ok)
			flow += tile.SellValue()
		case rules.EventJailStateChanged:
			if !evt.Flag {
				flow -= evt.Amount
			}
		case rules.EventPlayerBankrupt:
			if evt.TargetID == "" {
				flow -= evt.Amount
			}
		}
	}
	return flow
}

// ledgerExec returns an executor that checks every command against the
// bank ledger: player cash changes only by what the bank paid or received.
func ledgerExec(t *testing.T, engine *Engine, gameID string) func(Command) ([]rules.Event, error) {
	t.Helper()
	g := engine.sessions[gameID].game
	return func(cmd Command) ([]rules.Event, error) {
		t.Helper()
		before := g.state.totalCash()
		events, err := engine.Execute(gameID, cmd)
		if err != nil {
			assert.Equal(t, before, g.state.totalCash(), "rejected %s moved cash", cmd.Type)
			return nil, err
		}
		assert.Equal(t, before+bankFlow(t, events), g.state.totalCash(), "cash not conserved by %s", cmd.Type)
		return events, nil
	}
}
