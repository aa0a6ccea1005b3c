package game

import (
	"github.com/siakng/monopoly-server-go/internal/game/rules"
)

// CommandType names a player command.
type CommandType string

const (
	CommandStartGame          CommandType = "start_game"
	CommandRollDice           CommandType = "roll_dice"
	CommandBuyProperty        CommandType = "buy_property"
	CommandPayRent            CommandType = "pay_rent"
	CommandEndTurn            CommandType = "end_turn"
	CommandPayBail            CommandType = "pay_bail"
	CommandUseJailCard        CommandType = "use_jail_card"
	CommandBuyBuilding        CommandType = "buy_building"
	CommandSellBuilding       CommandType = "sell_building"
	CommandMortgageProperty   CommandType = "mortgage_property"
	CommandUnmortgageProperty CommandType = "unmortgage_property"
	CommandDeclareBankruptcy  CommandType = "declare_bankruptcy"
	CommandProposeTrade       CommandType = "propose_trade"
	CommandAcceptTrade        CommandType = "accept_trade"
	CommandRejectTrade        CommandType = "reject_trade"
	CommandCancelTrade        CommandType = "cancel_trade"
	CommandRemovePlayer       CommandType = "remove_player"
)

// Command is one player request against a game. PlayerID is the actor;
// the remaining fields are read according to Type.
type Command struct {
	Type       CommandType `json:"type"`
	PlayerID   string      `json:"player_id"`
	Seats      []Seat      `json:"seats,omitempty"`
	PropertyID int         `json:"property_id,omitempty"`
	TargetID   string      `json:"target_id,omitempty"`
	TradeID    string      `json:"trade_id,omitempty"`
	Offer      Bundle      `json:"offer"`
	Request    Bundle      `json:"request"`
}

// Apply routes a command to its handler. On error the aggregate may be
// partially modified; Engine.Execute restores it from a bookmark.
func (g *Game) Apply(cmd Command) ([]rules.Event, error) {
	switch cmd.Type {
	case CommandStartGame:
		return g.StartGame(cmd.PlayerID, cmd.Seats)
	case CommandRollDice:
		return g.RollDice(cmd.PlayerID)
	case CommandBuyProperty:
		return g.BuyProperty(cmd.PlayerID)
	case CommandPayRent:
		return g.payRent(cmd.PlayerID)
	case CommandEndTurn:
		return g.EndTurn(cmd.PlayerID)
	case CommandPayBail:
		return g.PayBail(cmd.PlayerID)
	case CommandUseJailCard:
		return g.UseJailCard(cmd.PlayerID)
	case CommandBuyBuilding:
		return g.BuyBuilding(cmd.PlayerID, cmd.PropertyID)
	case CommandSellBuilding:
		return g.SellBuilding(cmd.PlayerID, cmd.PropertyID)
	case CommandMortgageProperty:
		return g.MortgageProperty(cmd.PlayerID, cmd.PropertyID)
	case CommandUnmortgageProperty:
		return g.UnmortgageProperty(cmd.PlayerID, cmd.PropertyID)
	case CommandDeclareBankruptcy:
		return g.DeclareBankruptcy(cmd.PlayerID, cmd.TargetID)
	case CommandProposeTrade:
		return g.ProposeTrade(cmd.PlayerID, cmd.TargetID, cmd.Offer, cmd.Request)
	case CommandAcceptTrade:
		return g.AcceptTrade(cmd.PlayerID, cmd.TradeID)
	case CommandRejectTrade:
		return g.RejectTrade(cmd.PlayerID, cmd.TradeID)
	case CommandCancelTrade:
		return g.CancelTrade(cmd.PlayerID, cmd.TradeID)
	case CommandRemovePlayer:
		return g.RemovePlayer(cmd.PlayerID)
	default:
		return nil, rules.NewError(rules.KindState, "unknown command type %q", cmd.Type)
	}
}

// payRent pays rent and, when the payer cannot cover it and automatic
// settlement is on, bankrupts the payer to the owner.
func (g *Game) payRent(actorID string) ([]rules.Event, error) {
	outcome, events, err := g.PayRent(actorID)
	if err != nil {
		return nil, err
	}
	if outcome.BankruptcyRequired && g.opts.AutoBankruptcy {
		p, err := g.state.player(actorID)
		if err != nil {
			return nil, err
		}
		settled, err := g.bankrupt(p, outcome.CreditorID)
		if err != nil {
			return nil, err
		}
		events = append(events, settled...)
	}
	return events, nil
}
