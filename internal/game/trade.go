package game

import (
	"fmt"

	"github.com/siakng/monopoly-server-go/internal/game/rules"
)

// TradeStatus is the lifecycle state of a trade proposal.
type TradeStatus int

const (
	TradePending TradeStatus = iota
	TradeAccepted
	TradeRejected
	TradeCancelled
)

func (s TradeStatus) String() string {
	switch s {
	case TradePending:
		return "PENDING"
	case TradeAccepted:
		return "ACCEPTED"
	case TradeRejected:
		return "REJECTED"
	case TradeCancelled:
		return "CANCELLED"
	default:
		return fmt.Sprintf("TRADE_STATUS_%d", int(s))
	}
}

// MarshalText renders the status by name in JSON payloads.
func (s TradeStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Bundle is one side of a trade.
type Bundle struct {
	Cash        int   `json:"cash"`
	PropertyIDs []int `json:"property_ids"`
}

func (b Bundle) empty() bool {
	return b.Cash == 0 && len(b.PropertyIDs) == 0
}

func (b Bundle) clone() Bundle {
	return Bundle{Cash: b.Cash, PropertyIDs: append([]int(nil), b.PropertyIDs...)}
}

// TradeProposal is an offer from the initiator to the target: the initiator
// gives Offer and receives Request.
type TradeProposal struct {
	ID          string      `json:"id"`
	InitiatorID string      `json:"initiator_id"`
	TargetID    string      `json:"target_id"`
	Offer       Bundle      `json:"offer"`
	Request     Bundle      `json:"request"`
	Status      TradeStatus `json:"status"`
}

func (t *TradeProposal) clone() *TradeProposal {
	cp := *t
	cp.Offer = t.Offer.clone()
	cp.Request = t.Request.clone()
	return &cp
}

// validateBundle checks that owner can hand over the bundle.
func (g *Game) validateBundle(owner *Player, bundle Bundle) error {
	if bundle.Cash < 0 {
		return rules.NewError(rules.KindState, "trade cash must not be negative")
	}
	if owner.Cash < bundle.Cash {
		return rules.NewError(rules.KindResource, "%s has insufficient cash for trade: have %d, need %d", owner.Name, owner.Cash, bundle.Cash)
	}
	seen := make(map[int]bool, len(bundle.PropertyIDs))
	for _, id := range bundle.PropertyIDs {
		prop, tile, err := g.state.property(id)
		if err != nil {
			return err
		}
		if seen[id] {
			return rules.NewError(rules.KindState, "%s listed twice in trade", tile.Name)
		}
		seen[id] = true
		if prop.OwnerID != owner.ID {
			return rules.NewError(rules.KindOwnership, "%s does not own %s", owner.Name, tile.Name)
		}
		if prop.Level > 0 {
			return rules.NewError(rules.KindState, "%s has buildings and cannot be traded", tile.Name)
		}
	}
	return nil
}

func (g *Game) tradeParties(trade *TradeProposal) (*Player, *Player, error) {
	initiator, err := g.state.player(trade.InitiatorID)
	if err != nil {
		return nil, nil, err
	}
	target, err := g.state.player(trade.TargetID)
	if err != nil {
		return nil, nil, err
	}
	return initiator, target, nil
}

func (g *Game) pendingTrade(tradeID string) (*TradeProposal, error) {
	if err := g.state.turn.Require(rules.PhaseRolling, rules.PhaseEndTurn); err != nil {
		return nil, err
	}
	trade, ok := g.state.Trades[tradeID]
	if !ok {
		return nil, rules.NewError(rules.KindLookup, "trade %s not found", tradeID)
	}
	return trade, nil
}

// ProposeTrade records a pending offer from actorID to targetID.
func (g *Game) ProposeTrade(actorID, targetID string, offer, request Bundle) ([]rules.Event, error) {
	s := g.state
	if err := s.turn.Require(rules.PhaseRolling, rules.PhaseEndTurn); err != nil {
		return nil, err
	}
	initiator, err := s.player(actorID)
	if err != nil {
		return nil, err
	}
	target, err := s.player(targetID)
	if err != nil {
		return nil, err
	}
	if initiator == target {
		return nil, rules.NewError(rules.KindState, "cannot trade with yourself")
	}
	if offer.empty() && request.empty() {
		return nil, rules.NewError(rules.KindState, "trade is empty")
	}
	if err := g.validateBundle(initiator, offer); err != nil {
		return nil, err
	}
	// Only ownership of the requested side is checked now; the target's
	// cash is checked on acceptance.
	if err := g.validateBundle(target, Bundle{PropertyIDs: request.PropertyIDs}); err != nil {
		return nil, err
	}
	if request.Cash < 0 {
		return nil, rules.NewError(rules.KindState, "trade cash must not be negative")
	}

	trade := &TradeProposal{
		ID:          g.newTradeID(),
		InitiatorID: initiator.ID,
		TargetID:    target.ID,
		Offer:       offer.clone(),
		Request:     request.clone(),
		Status:      TradePending,
	}
	s.Trades[trade.ID] = trade

	evt := rules.NewEvent(rules.EventTradeProposed, initiator.ID)
	evt.TargetID = target.ID
	evt.Data = trade.clone()
	return []rules.Event{evt}, nil
}

// AcceptTrade executes a pending trade. Only the target may accept.
func (g *Game) AcceptTrade(actorID, tradeID string) ([]rules.Event, error) {
	trade, err := g.pendingTrade(tradeID)
	if err != nil {
		return nil, err
	}
	if trade.TargetID != actorID {
		return nil, rules.NewError(rules.KindSequencing, "only the trade target can accept")
	}
	initiator, target, err := g.tradeParties(trade)
	if err != nil {
		return nil, err
	}
	if err := g.validateBundle(initiator, trade.Offer); err != nil {
		return nil, err
	}
	if err := g.validateBundle(target, trade.Request); err != nil {
		return nil, err
	}

	s := g.state
	initiator.Cash += trade.Request.Cash - trade.Offer.Cash
	target.Cash += trade.Offer.Cash - trade.Request.Cash
	for _, id := range trade.Offer.PropertyIDs {
		s.Properties[id].OwnerID = target.ID
	}
	for _, id := range trade.Request.PropertyIDs {
		s.Properties[id].OwnerID = initiator.ID
	}

	trade.Status = TradeAccepted
	delete(s.Trades, trade.ID)

	evt := rules.NewEvent(rules.EventTradeAccepted, actorID)
	evt.TargetID = initiator.ID
	evt.Data = trade
	return []rules.Event{evt}, nil
}

// RejectTrade declines a pending trade. Only the target may reject.
func (g *Game) RejectTrade(actorID, tradeID string) ([]rules.Event, error) {
	trade, err := g.pendingTrade(tradeID)
	if err != nil {
		return nil, err
	}
	if trade.TargetID != actorID {
		return nil, rules.NewError(rules.KindSequencing, "only the trade target can reject")
	}

	trade.Status = TradeRejected
	delete(g.state.Trades, trade.ID)

	evt := rules.NewEvent(rules.EventTradeRejected, actorID)
	evt.TargetID = trade.InitiatorID
	evt.Data = trade
	return []rules.Event{evt}, nil
}

// CancelTrade withdraws a pending trade. Only the initiator may cancel.
func (g *Game) CancelTrade(actorID, tradeID string) ([]rules.Event, error) {
	trade, err := g.pendingTrade(tradeID)
	if err != nil {
		return nil, err
	}
	if trade.InitiatorID != actorID {
		return nil, rules.NewError(rules.KindSequencing, "only the trade initiator can cancel")
	}

	trade.Status = TradeCancelled
	delete(g.state.Trades, trade.ID)

	evt := rules.NewEvent(rules.EventTradeCancelled, actorID)
	evt.TargetID = trade.TargetID
	evt.Data = trade
	return []rules.Event{evt}, nil
}
