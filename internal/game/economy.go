package game

import (
	"github.com/siakng/monopoly-server-go/internal/game/board"
	"github.com/siakng/monopoly-server-go/internal/game/rules"
)

// RentOutcome reports the result of a rent payment. When the payer cannot
// cover the rent nothing is debited and BankruptcyRequired is set.
type RentOutcome struct {
	Amount             int
	CreditorID         string
	BankruptcyRequired bool
}

// BuyProperty purchases the unowned property the current player stands on.
func (g *Game) BuyProperty(actorID string) ([]rules.Event, error) {
	p, err := g.requireTurn(actorID, rules.PhaseEndTurn)
	if err != nil {
		return nil, err
	}
	prop, tile, err := g.state.property(p.Position)
	if err != nil {
		return nil, err
	}
	if prop.Owned() {
		return nil, rules.NewError(rules.KindOwnership, "%s is already owned", tile.Name)
	}
	if p.Cash < tile.Price {
		return nil, rules.NewError(rules.KindResource, "insufficient cash to buy %s: have %d, need %d", tile.Name, p.Cash, tile.Price)
	}

	p.Cash -= tile.Price
	prop.OwnerID = p.ID

	evt := rules.NewPropertyEvent(rules.EventPropertyBought, p.ID, tile.ID, tile.Price)
	evt.Description = tile.Name + " " + board.FormatMoney(tile.Price)
	return []rules.Event{evt}, nil
}

// Rent computes the rent currently due for landing on a property.
func (g *Game) Rent(propertyID int) (int, error) {
	prop, tile, err := g.state.property(propertyID)
	if err != nil {
		return 0, err
	}
	return g.rentFor(prop, tile), nil
}

func (g *Game) rentFor(prop *PropertyState, tile board.Tile) int {
	s := g.state
	if !prop.Owned() {
		return 0
	}
	switch tile.Kind {
	case board.KindUtility:
		if !s.HasRoll {
			return 0
		}
		multiplier := board.UtilityMultiplierSingle
		if s.countOwnedInGroup(prop.OwnerID, board.GroupUtility) == len(board.GroupMembers(board.GroupUtility)) {
			multiplier = board.UtilityMultiplierBoth
		}
		return s.LastRoll.Sum() * multiplier
	case board.KindRailroad:
		owned := s.countOwnedInGroup(prop.OwnerID, board.GroupRailroad)
		if owned < 1 {
			return 0
		}
		return board.RailroadRents[owned-1]
	}

	if prop.Level > 0 {
		return tile.Rent * (1 + 4*prop.Level)
	}
	if s.hasMonopoly(prop.OwnerID, tile.Group) {
		return tile.Rent * 2
	}
	return tile.Rent
}

// rentOwed is the unpaid rent p owes for the tile it stands on.
func (g *Game) rentOwed(p *Player) int {
	if g.state.RentPaid {
		return 0
	}
	prop, tile, err := g.state.property(p.Position)
	if err != nil || !prop.Owned() || prop.OwnerID == p.ID || prop.Mortgaged {
		return 0
	}
	return g.rentFor(prop, tile)
}

// PayRent pays the owner of the tile the current player stands on.
func (g *Game) PayRent(actorID string) (RentOutcome, []rules.Event, error) {
	p, err := g.requireTurn(actorID, rules.PhaseEndTurn)
	if err != nil {
		return RentOutcome{}, nil, err
	}
	s := g.state

	prop, tile, err := s.property(p.Position)
	if err != nil {
		return RentOutcome{}, nil, err
	}
	if !prop.Owned() {
		return RentOutcome{}, nil, rules.NewError(rules.KindOwnership, "%s has no owner", tile.Name)
	}
	if prop.OwnerID == p.ID {
		return RentOutcome{}, nil, rules.NewError(rules.KindOwnership, "%s is owned by %s", tile.Name, p.Name)
	}
	if prop.Mortgaged {
		return RentOutcome{}, nil, rules.NewError(rules.KindState, "%s is mortgaged", tile.Name)
	}
	if s.RentPaid {
		return RentOutcome{}, nil, rules.NewError(rules.KindState, "rent for %s already paid", tile.Name)
	}
	owner, err := s.player(prop.OwnerID)
	if err != nil {
		return RentOutcome{}, nil, err
	}

	amount := g.rentFor(prop, tile)
	outcome := RentOutcome{Amount: amount, CreditorID: owner.ID}
	if p.Cash < amount {
		outcome.BankruptcyRequired = true
		evt := rules.NewPropertyEvent(rules.EventRentUnpayable, p.ID, tile.ID, amount)
		evt.TargetID = owner.ID
		return outcome, []rules.Event{evt}, nil
	}

	p.Cash -= amount
	owner.Cash += amount
	s.RentPaid = true

	evt := rules.NewPropertyEvent(rules.EventRentPaid, p.ID, tile.ID, amount)
	evt.TargetID = owner.ID
	evt.Description = board.FormatMoney(amount)
	return outcome, []rules.Event{evt}, nil
}

// ownedProperty loads a property the actor owns for building or mortgage commands.
func (g *Game) ownedProperty(p *Player, propertyID int) (*PropertyState, board.Tile, error) {
	prop, tile, err := g.state.property(propertyID)
	if err != nil {
		return nil, board.Tile{}, err
	}
	if prop.OwnerID != p.ID {
		return nil, board.Tile{}, rules.NewError(rules.KindOwnership, "%s does not own %s", p.Name, tile.Name)
	}
	return prop, tile, nil
}

// BuyBuilding adds one building level to a street.
func (g *Game) BuyBuilding(actorID string, propertyID int) ([]rules.Event, error) {
	p, err := g.requireTurn(actorID, rules.PhaseRolling, rules.PhaseEndTurn)
	if err != nil {
		return nil, err
	}
	s := g.state
	prop, tile, err := g.ownedProperty(p, propertyID)
	if err != nil {
		return nil, err
	}
	if tile.Kind != board.KindStreet {
		return nil, rules.NewError(rules.KindState, "cannot build on %s", tile.Name)
	}
	if !s.hasMonopoly(p.ID, tile.Group) {
		return nil, rules.NewError(rules.KindResource, "%s requires the whole %s group", tile.Name, tile.Group)
	}
	if s.groupHasMortgage(tile.Group) {
		return nil, rules.NewError(rules.KindState, "cannot build while a %s property is mortgaged", tile.Group)
	}
	if prop.Level >= board.MaxLevel {
		return nil, rules.NewError(rules.KindState, "%s already has a hotel", tile.Name)
	}
	if lowest, _ := s.groupLevels(tile.Group); prop.Level > lowest {
		return nil, rules.NewError(rules.KindResource, "must build evenly across %s", tile.Group)
	}

	hotel := prop.Level == board.MaxLevel-1
	if hotel && s.HotelsLeft == 0 {
		return nil, rules.NewError(rules.KindResource, "bank has no hotels left")
	}
	if !hotel && s.HousesLeft == 0 {
		return nil, rules.NewError(rules.KindResource, "bank has no houses left")
	}
	if p.Cash < tile.HouseCost {
		return nil, rules.NewError(rules.KindResource, "insufficient cash to build on %s: have %d, need %d", tile.Name, p.Cash, tile.HouseCost)
	}

	if hotel {
		s.HotelsLeft--
		s.HousesLeft += board.MaxLevel - 1
	} else {
		s.HousesLeft--
	}
	p.Cash -= tile.HouseCost
	prop.Level++

	evt := rules.NewPropertyEvent(rules.EventBuildingBought, p.ID, tile.ID, prop.Level)
	evt.Description = board.FormatMoney(tile.HouseCost)
	return []rules.Event{evt}, nil
}

// SellBuilding removes one building level and refunds half its cost.
func (g *Game) SellBuilding(actorID string, propertyID int) ([]rules.Event, error) {
	p, err := g.requireTurn(actorID, rules.PhaseRolling, rules.PhaseEndTurn)
	if err != nil {
		return nil, err
	}
	s := g.state
	prop, tile, err := g.ownedProperty(p, propertyID)
	if err != nil {
		return nil, err
	}
	if prop.Level == 0 {
		return nil, rules.NewError(rules.KindState, "%s has no buildings", tile.Name)
	}
	if _, highest := s.groupLevels(tile.Group); prop.Level < highest {
		return nil, rules.NewError(rules.KindResource, "must sell evenly across %s", tile.Group)
	}

	hotel := prop.Level == board.MaxLevel
	if hotel && s.HousesLeft < board.MaxLevel-1 {
		return nil, rules.NewError(rules.KindResource, "bank needs %d houses to break a hotel, has %d", board.MaxLevel-1, s.HousesLeft)
	}

	if hotel {
		s.HotelsLeft++
		s.HousesLeft -= board.MaxLevel - 1
	} else {
		s.HousesLeft++
	}
	refund := tile.SellValue()
	p.Cash += refund
	prop.Level--

	evt := rules.NewPropertyEvent(rules.EventBuildingSold, p.ID, tile.ID, prop.Level)
	evt.Description = board.FormatMoney(refund)
	return []rules.Event{evt}, nil
}

// MortgageProperty mortgages an undeveloped property for half its price.
func (g *Game) MortgageProperty(actorID string, propertyID int) ([]rules.Event, error) {
	p, err := g.requireTurn(actorID, rules.PhaseRolling, rules.PhaseEndTurn)
	if err != nil {
		return nil, err
	}
	prop, tile, err := g.ownedProperty(p, propertyID)
	if err != nil {
		return nil, err
	}
	if prop.Mortgaged {
		return nil, rules.NewError(rules.KindState, "%s is already mortgaged", tile.Name)
	}
	if prop.Level > 0 {
		return nil, rules.NewError(rules.KindState, "sell the buildings on %s first", tile.Name)
	}

	value := tile.MortgageValue()
	prop.Mortgaged = true
	p.Cash += value

	return []rules.Event{rules.NewPropertyEvent(rules.EventPropertyMortgaged, p.ID, tile.ID, value)}, nil
}

// UnmortgageProperty lifts a mortgage for its value plus ten percent.
func (g *Game) UnmortgageProperty(actorID string, propertyID int) ([]rules.Event, error) {
	p, err := g.requireTurn(actorID, rules.PhaseRolling, rules.PhaseEndTurn)
	if err != nil {
		return nil, err
	}
	prop, tile, err := g.ownedProperty(p, propertyID)
	if err != nil {
		return nil, err
	}
	if !prop.Mortgaged {
		return nil, rules.NewError(rules.KindState, "%s is not mortgaged", tile.Name)
	}
	cost := tile.UnmortgageCost()
	if p.Cash < cost {
		return nil, rules.NewError(rules.KindResource, "insufficient cash to unmortgage %s: have %d, need %d", tile.Name, p.Cash, cost)
	}

	p.Cash -= cost
	prop.Mortgaged = false

	return []rules.Event{rules.NewPropertyEvent(rules.EventPropertyUnmortgaged, p.ID, tile.ID, cost)}, nil
}

// DeclareBankruptcy removes the current player, handing everything to
// creditorID or, when empty, back to the bank.
func (g *Game) DeclareBankruptcy(actorID, creditorID string) ([]rules.Event, error) {
	p, err := g.requireTurn(actorID, rules.PhaseRolling, rules.PhaseEndTurn)
	if err != nil {
		return nil, err
	}
	if creditorID != "" {
		creditor, err := g.state.player(creditorID)
		if err != nil {
			return nil, err
		}
		if creditor == p {
			return nil, rules.NewError(rules.KindState, "%s cannot be their own creditor", p.Name)
		}
	}
	return g.bankrupt(p, creditorID)
}

// RemovePlayer takes a player out of the game regardless of turn order.
// Their properties return to the bank.
func (g *Game) RemovePlayer(playerID string) ([]rules.Event, error) {
	s := g.state
	if err := s.turn.Require(rules.PhaseRolling, rules.PhaseEndTurn); err != nil {
		return nil, err
	}
	p, err := s.player(playerID)
	if err != nil {
		return nil, err
	}

	for _, prop := range s.ownedBy(p.ID) {
		g.returnToBank(prop)
	}
	evt := rules.NewEventWithAmount(rules.EventPlayerRemoved, p.ID, p.Cash)
	p.Cash = 0

	dropped, err := g.dropPlayer(p)
	if err != nil {
		return nil, err
	}
	return append([]rules.Event{evt}, dropped...), nil
}

// bankrupt settles p's estate with the creditor (or the bank) and removes p.
func (g *Game) bankrupt(p *Player, creditorID string) ([]rules.Event, error) {
	s := g.state
	var creditor *Player
	if creditorID != "" {
		creditor, _ = s.player(creditorID)
	}

	amount := p.Cash
	p.Cash = 0
	if creditor != nil {
		creditor.Cash += amount
	}
	for _, prop := range s.ownedBy(p.ID) {
		if creditor != nil {
			prop.OwnerID = creditor.ID
			continue
		}
		g.returnToBank(prop)
	}

	evt := rules.NewEventWithAmount(rules.EventPlayerBankrupt, p.ID, amount)
	evt.Description = p.Name
	if creditor != nil {
		evt.TargetID = creditor.ID
	}
	dropped, err := g.dropPlayer(p)
	if err != nil {
		return nil, err
	}
	return append([]rules.Event{evt}, dropped...), nil
}

// returnToBank clears ownership and puts any buildings back into the bank.
func (g *Game) returnToBank(prop *PropertyState) {
	s := g.state
	if prop.Level == board.MaxLevel {
		s.HotelsLeft++
	} else {
		s.HousesLeft += prop.Level
	}
	prop.Level = 0
	prop.Mortgaged = false
	prop.OwnerID = ""
}

// dropPlayer removes p from the turn order once its assets are settled.
func (g *Game) dropPlayer(p *Player) ([]rules.Event, error) {
	s := g.state
	var events []rules.Event

	for _, card := range p.HeldCards {
		if err := s.deck(card.Deck).Return(card); err != nil {
			return nil, rules.NewError(rules.KindState, "%v", err)
		}
	}
	p.HeldCards = nil

	for _, id := range s.sortedTradeIDs() {
		trade := s.Trades[id]
		if trade.InitiatorID != p.ID && trade.TargetID != p.ID {
			continue
		}
		trade.Status = TradeCancelled
		delete(s.Trades, id)
		evt := rules.NewEvent(rules.EventTradeCancelled, p.ID)
		evt.Data = trade
		events = append(events, evt)
	}

	idx := s.playerIndex(p.ID)
	if idx < 0 {
		return events, nil
	}
	s.Players = append(s.Players[:idx], s.Players[idx+1:]...)

	if s.turn.RemoveSeat(idx, len(s.Players)) {
		next := s.Players[s.turn.Current()]
		g.resetTurnState(next)
		evt := rules.NewEvent(rules.EventTurnEnded, p.ID)
		evt.TargetID = next.ID
		events = append(events, evt)
	}

	return append(events, g.checkGameOver()...), nil
}

func (g *Game) checkGameOver() []rules.Event {
	s := g.state
	if !s.turn.Phase().InProgress() || len(s.Players) > 1 {
		return nil
	}
	s.turn.Finish()

	evt := rules.NewEvent(rules.EventGameOver, "")
	if len(s.Players) == 1 {
		s.Winner = s.Players[0].ID
		evt.TargetID = s.Winner
		evt.Description = s.Players[0].Name
	}
	return []rules.Event{evt}
}
