package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/siakng/monopoly-server-go/internal/game/board"
	"github.com/siakng/monopoly-server-go/internal/game/cards"
)

// Snapshot is the serialisable view of a game. It is what clients render and
// what the replay checksums are computed over.
type Snapshot struct {
	GameID         string          `json:"game_id"`
	Phase          string          `json:"phase"`
	TurnNumber     int             `json:"turn_number"`
	CurrentPlayer  string          `json:"current_player,omitempty"`
	Players        []Player        `json:"players"`
	Properties     []PropertyState `json:"properties"`
	ChanceOrder    []int           `json:"chance_order"`
	CommunityOrder []int           `json:"community_chest_order"`
	Trades         []TradeProposal `json:"trades"`
	HousesLeft     int             `json:"houses_left"`
	HotelsLeft     int             `json:"hotels_left"`
	LastRoll       []int           `json:"last_roll,omitempty"`
	RentPaid       bool            `json:"rent_paid"`
	Winner         string          `json:"winner,omitempty"`
}

// Snapshot builds a detached view of the aggregate. Properties are in board
// order and trades are sorted by id.
func (s *GameState) Snapshot() *Snapshot {
	snap := &Snapshot{
		GameID:         s.ID,
		Phase:          s.turn.Phase().String(),
		TurnNumber:     s.turn.TurnNumber(),
		Players:        make([]Player, 0, len(s.Players)),
		Properties:     make([]PropertyState, 0, len(s.Properties)),
		ChanceOrder:    deckOrder(s.Chance),
		CommunityOrder: deckOrder(s.CommunityChest),
		Trades:         make([]TradeProposal, 0, len(s.Trades)),
		HousesLeft:     s.HousesLeft,
		HotelsLeft:     s.HotelsLeft,
		RentPaid:       s.RentPaid,
		Winner:         s.Winner,
	}
	if current := s.CurrentPlayer(); current != nil {
		snap.CurrentPlayer = current.ID
	}
	for _, p := range s.Players {
		snap.Players = append(snap.Players, *p.clone())
	}
	for _, id := range board.OwnableIDs() {
		snap.Properties = append(snap.Properties, *s.Properties[id])
	}
	for _, id := range s.sortedTradeIDs() {
		snap.Trades = append(snap.Trades, *s.Trades[id].clone())
	}
	if s.HasRoll {
		snap.LastRoll = []int{s.LastRoll[0], s.LastRoll[1]}
	}
	return snap
}

func deckOrder(deck *cards.Deck) []int {
	ids := make([]int, 0, deck.Len())
	for _, card := range deck.Cards() {
		ids = append(ids, card.ID)
	}
	return ids
}

// Checksum returns a SHA-256 hex digest of the snapshot's canonical text
// form. Equal game states always produce equal checksums.
func (snap *Snapshot) Checksum() string {
	sum := sha256.Sum256([]byte(snap.canonical()))
	return hex.EncodeToString(sum[:])
}

// canonical renders the snapshot line by line. Players keep turn order since
// that order is part of the state.
func (snap *Snapshot) canonical() string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "GAME:%s|%s|%d|%s|%s\n",
		snap.GameID, snap.Phase, snap.TurnNumber, snap.CurrentPlayer, snap.Winner)
	fmt.Fprintf(&buf, "BANK:%d|%d\n", snap.HousesLeft, snap.HotelsLeft)
	fmt.Fprintf(&buf, "ROLL:%s|%t\n", joinInts(snap.LastRoll), snap.RentPaid)

	for _, p := range snap.Players {
		fmt.Fprintf(&buf, "PLAYER:%s|%s|%s|%d|%d|%t|%d|%d\n",
			p.ID, p.Name, p.Color, p.Cash, p.Position, p.InJail, p.JailTurns, p.DoublesCount)
		for _, card := range p.HeldCards {
			fmt.Fprintf(&buf, "  HELD:%s:%d\n", card.Deck, card.ID)
		}
	}

	for _, prop := range snap.Properties {
		if !prop.Owned() && prop.Level == 0 && !prop.Mortgaged {
			continue
		}
		fmt.Fprintf(&buf, "PROPERTY:%d|%s|%d|%t\n", prop.ID, prop.OwnerID, prop.Level, prop.Mortgaged)
	}

	buf.WriteString("CHANCE:" + joinInts(snap.ChanceOrder) + "\n")
	buf.WriteString("COMMUNITY_CHEST:" + joinInts(snap.CommunityOrder) + "\n")

	for _, trade := range snap.Trades {
		fmt.Fprintf(&buf, "TRADE:%s|%s|%s|%s|%d:%s|%d:%s\n",
			trade.ID, trade.InitiatorID, trade.TargetID, trade.Status,
			trade.Offer.Cash, joinInts(trade.Offer.PropertyIDs),
			trade.Request.Cash, joinInts(trade.Request.PropertyIDs))
	}

	return buf.String()
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}
