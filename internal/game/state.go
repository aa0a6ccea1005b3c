package game

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/google/uuid"
	"github.com/siakng/monopoly-server-go/internal/game/board"
	"github.com/siakng/monopoly-server-go/internal/game/cards"
	"github.com/siakng/monopoly-server-go/internal/game/dice"
	"github.com/siakng/monopoly-server-go/internal/game/rules"
)

// playerColors are assigned to seats in order, wrapping around.
var playerColors = []string{"red", "blue", "green", "yellow"}

// Seat is a player joining the game at start.
type Seat struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Player is a participant still in the game.
type Player struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Color        string       `json:"color"`
	Cash         int          `json:"cash"`
	Position     int          `json:"position"`
	InJail       bool         `json:"in_jail"`
	JailTurns    int          `json:"jail_turns"`
	DoublesCount int          `json:"doubles_count"`
	HeldCards    []cards.Card `json:"held_cards"`
}

func (p *Player) clone() *Player {
	cp := *p
	cp.HeldCards = append([]cards.Card(nil), p.HeldCards...)
	return &cp
}

// PropertyState is the mutable state of one ownable tile.
// Level 0 is undeveloped, 1-4 are houses and 5 is a hotel.
type PropertyState struct {
	ID        int    `json:"id"`
	OwnerID   string `json:"owner_id,omitempty"`
	Level     int    `json:"level"`
	Mortgaged bool   `json:"mortgaged"`
}

// Owned reports whether a player holds the property.
func (p *PropertyState) Owned() bool {
	return p.OwnerID != ""
}

// GameState is the aggregate for one game session.
type GameState struct {
	ID             string
	Players        []*Player
	Properties     map[int]*PropertyState
	Chance         *cards.Deck
	CommunityChest *cards.Deck
	Trades         map[string]*TradeProposal
	HousesLeft     int
	HotelsLeft     int
	LastRoll       dice.Roll
	HasRoll        bool
	RentPaid       bool
	Winner         string

	turn *rules.TurnManager
}

func newGameState(id string, opts Options) *GameState {
	state := &GameState{
		ID:         id,
		Properties: make(map[int]*PropertyState),
		Trades:     make(map[string]*TradeProposal),
		HousesLeft: opts.Houses,
		HotelsLeft: opts.Hotels,
		Chance:     cards.NewDeck(cards.DeckChance, cards.StandardChance()),
		CommunityChest: cards.NewDeck(
			cards.DeckCommunityChest, cards.StandardCommunityChest(),
		),
		turn: rules.NewTurnManager(),
	}
	for _, id := range board.OwnableIDs() {
		state.Properties[id] = &PropertyState{ID: id}
	}
	return state
}

// Phase returns the current phase.
func (s *GameState) Phase() rules.Phase {
	return s.turn.Phase()
}

// CurrentPlayer returns the player whose turn it is, or nil.
func (s *GameState) CurrentPlayer() *Player {
	if len(s.Players) == 0 || s.turn.Phase() == rules.PhaseWaiting {
		return nil
	}
	return s.Players[s.turn.Current()]
}

func (s *GameState) clone() *GameState {
	cp := *s
	cp.Players = make([]*Player, len(s.Players))
	for i, p := range s.Players {
		cp.Players[i] = p.clone()
	}
	cp.Properties = make(map[int]*PropertyState, len(s.Properties))
	for id, prop := range s.Properties {
		propCopy := *prop
		cp.Properties[id] = &propCopy
	}
	cp.Trades = make(map[string]*TradeProposal, len(s.Trades))
	for id, trade := range s.Trades {
		cp.Trades[id] = trade.clone()
	}
	cp.Chance = s.Chance.Clone()
	cp.CommunityChest = s.CommunityChest.Clone()
	cp.turn = s.turn.Clone()
	return &cp
}

func (s *GameState) playerIndex(id string) int {
	for i, p := range s.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s *GameState) player(id string) (*Player, error) {
	idx := s.playerIndex(id)
	if idx < 0 {
		return nil, rules.NewError(rules.KindLookup, "player %s not found", id)
	}
	return s.Players[idx], nil
}

func (s *GameState) property(id int) (*PropertyState, board.Tile, error) {
	tile, ok := board.Property(id)
	if !ok {
		return nil, board.Tile{}, rules.NewError(rules.KindLookup, "tile %d is not an ownable property", id)
	}
	return s.Properties[id], tile, nil
}

func (s *GameState) deck(kind cards.DeckKind) *cards.Deck {
	if kind == cards.DeckChance {
		return s.Chance
	}
	return s.CommunityChest
}

// ownedBy returns the properties held by a player in board order.
func (s *GameState) ownedBy(playerID string) []*PropertyState {
	var out []*PropertyState
	for _, id := range board.OwnableIDs() {
		if prop := s.Properties[id]; prop.OwnerID == playerID {
			out = append(out, prop)
		}
	}
	return out
}

func (s *GameState) countOwnedInGroup(playerID string, group board.Group) int {
	count := 0
	for _, id := range board.GroupMembers(group) {
		if s.Properties[id].OwnerID == playerID {
			count++
		}
	}
	return count
}

// hasMonopoly reports whether playerID owns every member of the group.
func (s *GameState) hasMonopoly(playerID string, group board.Group) bool {
	return playerID != "" && s.countOwnedInGroup(playerID, group) == len(board.GroupMembers(group))
}

func (s *GameState) groupLevels(group board.Group) (lowest, highest int) {
	lowest = board.MaxLevel
	for _, id := range board.GroupMembers(group) {
		level := s.Properties[id].Level
		if level < lowest {
			lowest = level
		}
		if level > highest {
			highest = level
		}
	}
	return lowest, highest
}

func (s *GameState) groupHasMortgage(group board.Group) bool {
	for _, id := range board.GroupMembers(group) {
		if s.Properties[id].Mortgaged {
			return true
		}
	}
	return false
}

// totalCash sums cash across all players.
func (s *GameState) totalCash() int {
	total := 0
	for _, p := range s.Players {
		total += p.Cash
	}
	return total
}

func (s *GameState) sortedTradeIDs() []string {
	ids := make([]string, 0, len(s.Trades))
	for id := range s.Trades {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Game wraps the aggregate with its rule options and random sources.
type Game struct {
	opts    Options
	seed    int64
	dice    dice.Source
	shuffle dice.Source
	ids     *rand.Rand
	state   *GameState
}

// NewGame creates a game in the waiting phase.
func NewGame(id string, opts Options) (*Game, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	seed := opts.Seed
	if seed == 0 {
		var err error
		if seed, err = dice.NewSeed(); err != nil {
			return nil, err
		}
	}
	g := &Game{
		opts:  opts,
		seed:  seed,
		ids:   rand.New(rand.NewSource(seed)),
		state: newGameState(id, opts),
	}
	g.dice = opts.Source
	if g.dice == nil {
		g.dice = dice.NewSource(seed)
	}
	g.shuffle = opts.ShuffleSource
	if g.shuffle == nil {
		g.shuffle = g.dice
	}
	return g, nil
}

// ID returns the game id.
func (g *Game) ID() string {
	return g.state.ID
}

// Seed returns the seed the game's random sources derive from.
func (g *Game) Seed() int64 {
	return g.seed
}

// State exposes the aggregate for read access.
func (g *Game) State() *GameState {
	return g.state
}

func (g *Game) newTradeID() string {
	id, err := uuid.NewRandomFromReader(g.ids)
	if err != nil {
		return fmt.Sprintf("trade-%d", g.ids.Int63())
	}
	return id.String()
}
