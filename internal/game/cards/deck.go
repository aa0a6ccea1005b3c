package cards

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyDeck is returned when drawing from a deck with no cards left.
	ErrEmptyDeck = errors.New("deck is empty")
	// ErrWrongDeck is returned when a card is returned to a deck it did not come from.
	ErrWrongDeck = errors.New("card belongs to a different deck")
)

// Shuffler yields uniformly distributed integers in [0, n).
type Shuffler interface {
	Intn(n int) int
}

// Deck is a cyclic queue of cards. Cards are drawn from the front and put
// back at the bottom; kept cards leave the queue until returned.
type Deck struct {
	kind  DeckKind
	cards []Card
}

// NewDeck builds a deck of the given kind in the provided order.
func NewDeck(kind DeckKind, cards []Card) *Deck {
	d := &Deck{kind: kind, cards: make([]Card, len(cards))}
	copy(d.cards, cards)
	return d
}

// Kind returns which deck this is.
func (d *Deck) Kind() DeckKind {
	return d.kind
}

// Len returns the number of cards currently in the deck.
func (d *Deck) Len() int {
	return len(d.cards)
}

// Cards returns a copy of the deck in draw order.
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}

// Contains reports whether a card with the given id is in the deck.
func (d *Deck) Contains(id int) bool {
	for _, card := range d.cards {
		if card.ID == id {
			return true
		}
	}
	return false
}

// Draw takes the top card. Non-keep cards go straight back to the bottom.
func (d *Deck) Draw() (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, fmt.Errorf("draw from %s: %w", d.kind, ErrEmptyDeck)
	}
	card := d.cards[0]
	d.cards = d.cards[1:]
	if !card.Keep() {
		d.cards = append(d.cards, card)
	}
	return card, nil
}

// Return puts a previously kept card at the bottom of the deck.
func (d *Deck) Return(card Card) error {
	if card.Deck != d.kind {
		return fmt.Errorf("return %s card %d to %s: %w", card.Deck, card.ID, d.kind, ErrWrongDeck)
	}
	d.cards = append(d.cards, card)
	return nil
}

// Shuffle reorders the deck with a Fisher-Yates pass driven by src.
func (d *Deck) Shuffle(src Shuffler) {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Clone returns an independent copy of the deck.
func (d *Deck) Clone() *Deck {
	return NewDeck(d.kind, d.cards)
}
