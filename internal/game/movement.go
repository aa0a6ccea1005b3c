package game

import (
	"github.com/siakng/monopoly-server-go/internal/game/board"
	"github.com/siakng/monopoly-server-go/internal/game/cards"
	"github.com/siakng/monopoly-server-go/internal/game/rules"
)

// move advances p by steps and resolves the tile it lands on.
func (g *Game) move(p *Player, steps int) ([]rules.Event, error) {
	to, passed := board.Advance(p.Position, steps)
	events := []rules.Event{g.placePlayer(p, to, passed)}

	landing, err := g.resolveLanding(p)
	if err != nil {
		return nil, err
	}
	return append(events, landing...), nil
}

// placePlayer sets the position, paying the pass-start bonus when passedStart.
func (g *Game) placePlayer(p *Player, to int, passedStart bool) rules.Event {
	p.Position = to
	g.state.RentPaid = false

	evt := rules.NewEvent(rules.EventPlayerMoved, p.ID)
	evt.PropertyID = to
	if passedStart {
		p.Cash += g.opts.PassStartBonus
		evt.Amount = g.opts.PassStartBonus
		evt.Flag = true
	}
	return evt
}

func (g *Game) resolveLanding(p *Player) ([]rules.Event, error) {
	tile, _ := board.Get(p.Position)
	switch tile.Kind {
	case board.KindChance:
		return g.drawCard(p, g.state.Chance)
	case board.KindCommunityChest:
		return g.drawCard(p, g.state.CommunityChest)
	case board.KindTax:
		events, _, err := g.chargeBank(p, tile.Tax)
		return events, err
	case board.KindGoToJail:
		return g.sendToJail(p), nil
	}
	return nil, nil
}

// chargeBank debits a payment owed to the bank. A player who cannot cover it
// goes bankrupt to the bank; the second result reports that case.
func (g *Game) chargeBank(p *Player, amount int) ([]rules.Event, bool, error) {
	if amount <= 0 {
		return nil, false, nil
	}
	if p.Cash >= amount {
		p.Cash -= amount
		evt := rules.NewPropertyEvent(rules.EventBankCharged, p.ID, p.Position, amount)
		evt.Description = board.FormatMoney(amount)
		return []rules.Event{evt}, false, nil
	}
	events, err := g.bankrupt(p, "")
	return events, true, err
}

func (g *Game) drawCard(p *Player, deck *cards.Deck) ([]rules.Event, error) {
	card, err := deck.Draw()
	if err != nil {
		return nil, rules.NewError(rules.KindState, "%v", err)
	}

	drawn := rules.NewEventWithAmount(rules.EventCardDrawn, p.ID, card.Value)
	drawn.Flag = card.Chance()
	drawn.Data = card
	drawn.Description = card.Title
	events := []rules.Event{drawn}

	effects, err := g.applyCard(p, card)
	if err != nil {
		return nil, err
	}
	return append(events, effects...), nil
}

func (g *Game) applyCard(p *Player, card cards.Card) ([]rules.Event, error) {
	switch card.Kind {
	case cards.EffectGrantCash:
		p.Cash += card.Value

	case cards.EffectChargeCash:
		events, _, err := g.chargeBank(p, card.Value)
		return events, err

	case cards.EffectAdvanceToTile:
		if card.Target == board.GoToJailTile {
			return g.sendToJail(p), nil
		}
		return []rules.Event{g.placePlayer(p, card.Target, card.Target < p.Position)}, nil

	case cards.EffectAdvanceToNearestRailroad:
		to, wrapped := board.NextOfKind(p.Position, board.KindRailroad)
		return []rules.Event{g.placePlayer(p, to, wrapped)}, nil

	case cards.EffectAdvanceToNearestUtility:
		to, wrapped := board.NextOfKind(p.Position, board.KindUtility)
		return []rules.Event{g.placePlayer(p, to, wrapped)}, nil

	case cards.EffectMoveBack:
		to := board.Back(p.Position, card.Value)
		if to == board.GoToJailTile {
			return g.sendToJail(p), nil
		}
		return []rules.Event{g.placePlayer(p, to, false)}, nil

	case cards.EffectGoToJail:
		return g.sendToJail(p), nil

	case cards.EffectCollectFromAll:
		return g.collectFromAll(p, card.Value)

	case cards.EffectRepairLevy:
		houses, hotels := g.buildingCounts(p.ID)
		events, _, err := g.chargeBank(p, houses*card.Value+hotels*card.HotelValue)
		return events, err

	case cards.EffectJailRelease:
		p.HeldCards = append(p.HeldCards, card)
	}
	return nil, nil
}

// collectFromAll takes amount from every other player. A player who cannot
// pay goes bankrupt to the collector.
func (g *Game) collectFromAll(collector *Player, amount int) ([]rules.Event, error) {
	var events []rules.Event
	payers := make([]*Player, 0, len(g.state.Players))
	for _, other := range g.state.Players {
		if other != collector {
			payers = append(payers, other)
		}
	}
	for _, payer := range payers {
		if payer.Cash >= amount {
			payer.Cash -= amount
			collector.Cash += amount
			continue
		}
		settled, err := g.bankrupt(payer, collector.ID)
		if err != nil {
			return nil, err
		}
		events = append(events, settled...)
	}
	return events, nil
}

func (g *Game) buildingCounts(playerID string) (houses, hotels int) {
	for _, prop := range g.state.ownedBy(playerID) {
		if prop.Level == board.MaxLevel {
			hotels++
		} else {
			houses += prop.Level
		}
	}
	return houses, hotels
}
