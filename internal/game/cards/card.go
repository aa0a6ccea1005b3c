package cards

import "fmt"

// DeckKind identifies which of the two event decks a card belongs to.
type DeckKind int

const (
	DeckCommunityChest DeckKind = iota
	DeckChance
)

var deckNames = map[DeckKind]string{
	DeckCommunityChest: "COMMUNITY_CHEST",
	DeckChance:         "CHANCE",
}

func (d DeckKind) String() string {
	if name, ok := deckNames[d]; ok {
		return name
	}
	return fmt.Sprintf("DECK_%d", int(d))
}

// EffectKind is the closed set of card effects.
type EffectKind int

const (
	EffectGrantCash EffectKind = iota
	EffectChargeCash
	EffectAdvanceToTile
	EffectAdvanceToNearestRailroad
	EffectAdvanceToNearestUtility
	EffectMoveBack
	EffectGoToJail
	EffectCollectFromAll
	EffectRepairLevy
	EffectJailRelease
)

var effectNames = map[EffectKind]string{
	EffectGrantCash:                "GRANT_CASH",
	EffectChargeCash:               "CHARGE_CASH",
	EffectAdvanceToTile:            "ADVANCE_TO_TILE",
	EffectAdvanceToNearestRailroad: "ADVANCE_TO_NEAREST_RAILROAD",
	EffectAdvanceToNearestUtility:  "ADVANCE_TO_NEAREST_UTILITY",
	EffectMoveBack:                 "MOVE_BACK",
	EffectGoToJail:                 "GO_TO_JAIL",
	EffectCollectFromAll:           "COLLECT_FROM_ALL",
	EffectRepairLevy:               "REPAIR_LEVY",
	EffectJailRelease:              "JAIL_RELEASE",
}

func (e EffectKind) String() string {
	if name, ok := effectNames[e]; ok {
		return name
	}
	return fmt.Sprintf("EFFECT_%d", int(e))
}

// MarshalText renders the effect by name in JSON payloads.
func (e EffectKind) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// MarshalText renders the deck by name in JSON payloads.
func (d DeckKind) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// NoTarget marks a card without a destination tile.
const NoTarget = -1

// Card is a single event card. Deck records the deck the card came from so a
// kept card can be returned to the right deck.
type Card struct {
	ID          int        `json:"id"`
	Deck        DeckKind   `json:"deck"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Kind        EffectKind `json:"effect"`
	Value       int        `json:"value,omitempty"`
	HotelValue  int        `json:"hotel_value,omitempty"`
	Target      int        `json:"target"`
}

// Keep reports whether the card is held by the player instead of returning
// to the deck.
func (c Card) Keep() bool {
	return c.Kind == EffectJailRelease
}

// Chance reports whether the card comes from the chance deck.
func (c Card) Chance() bool {
	return c.Deck == DeckChance
}
