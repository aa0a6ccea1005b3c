package rules

import (
	"sync"
)

// EventType indicates the category of a game event.
type EventType string

const (
	// Turn events
	EventGameStarted      EventType = "GAME_STARTED"
	EventDiceRolled       EventType = "DICE_ROLLED"
	EventPlayerMoved      EventType = "PLAYER_MOVED"
	EventTurnEnded        EventType = "TURN_ENDED"
	EventJailStateChanged EventType = "JAIL_STATE_CHANGED"
	EventCardDrawn        EventType = "CARD_DRAWN"
	EventStateSnapshot    EventType = "STATE_SNAPSHOT"
	EventGameOver         EventType = "GAME_OVER"
	EventGameRemoved      EventType = "GAME_REMOVED" // published by the engine, not by a command

	// Economy events
	EventPropertyBought      EventType = "PROPERTY_BOUGHT"
	EventRentPaid            EventType = "RENT_PAID"
	EventRentUnpayable       EventType = "RENT_UNPAYABLE"
	EventBuildingBought      EventType = "BUILDING_BOUGHT"
	EventBuildingSold        EventType = "BUILDING_SOLD"
	EventPropertyMortgaged   EventType = "PROPERTY_MORTGAGED"
	EventPropertyUnmortgaged EventType = "PROPERTY_UNMORTGAGED"
	EventPlayerBankrupt      EventType = "PLAYER_BANKRUPT"
	EventPlayerRemoved       EventType = "PLAYER_REMOVED"
	EventBankCharged         EventType = "BANK_CHARGED" // tax, card charge, repair levy or forced bail

	// Trade events
	EventTradeProposed  EventType = "TRADE_PROPOSED"
	EventTradeAccepted  EventType = "TRADE_ACCEPTED"
	EventTradeRejected  EventType = "TRADE_REJECTED"
	EventTradeCancelled EventType = "TRADE_CANCELLED"
)

// Event is a state change broadcast to every client of a game.
type Event struct {
	Type        EventType `json:"type"`
	GameID      string    `json:"game_id,omitempty"`
	PlayerID    string    `json:"player_id,omitempty"`
	TargetID    string    `json:"target_id,omitempty"`   // creditor, counterparty, next player or winner
	PropertyID  int       `json:"property_id,omitempty"` // tile id for property events
	Amount      int       `json:"amount,omitempty"`      // cash moved or new building level
	Flag        bool      `json:"flag,omitempty"`        // in jail, drawn from chance
	Dice        []int     `json:"dice,omitempty"`
	Data        any       `json:"data,omitempty"` // card, trade or snapshot payload
	Description string    `json:"description,omitempty"`
}

// NewEvent creates an event for a player.
func NewEvent(eventType EventType, playerID string) Event {
	return Event{Type: eventType, PlayerID: playerID}
}

// NewEventWithAmount creates an event carrying an amount.
func NewEventWithAmount(eventType EventType, playerID string, amount int) Event {
	evt := NewEvent(eventType, playerID)
	evt.Amount = amount
	return evt
}

// NewPropertyEvent creates an event about a property.
func NewPropertyEvent(eventType EventType, playerID string, propertyID, amount int) Event {
	evt := NewEventWithAmount(eventType, playerID, amount)
	evt.PropertyID = propertyID
	return evt
}

// Listener defines a callback that reacts to incoming events.
type Listener func(Event)

type typedListener struct {
	handle   int
	callback Listener
}

// EventBus provides a synchronous publish/subscribe implementation with type filtering.
type EventBus struct {
	mu             sync.RWMutex
	listeners      map[int]Listener
	typedListeners map[EventType][]typedListener
	nextHandle     int
}

// NewEventBus constructs a fresh event bus instance.
func NewEventBus() *EventBus {
	return &EventBus{
		listeners:      make(map[int]Listener),
		typedListeners: make(map[EventType][]typedListener),
	}
}

// Subscribe registers a listener for all events and returns a handle.
func (bus *EventBus) Subscribe(listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.listeners[handle] = listener
	return handle
}

// SubscribeTyped registers a listener for a specific event type.
func (bus *EventBus) SubscribeTyped(eventType EventType, listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.typedListeners[eventType] = append(bus.typedListeners[eventType], typedListener{
		handle:   handle,
		callback: listener,
	})
	return handle
}

// Unsubscribe removes the listener identified by the provided handle.
func (bus *EventBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	delete(bus.listeners, handle)
	for eventType, listeners := range bus.typedListeners {
		for i := len(listeners) - 1; i >= 0; i-- {
			if listeners[i].handle == handle {
				bus.typedListeners[eventType] = append(listeners[:i], listeners[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers the event to all registered listeners synchronously.
func (bus *EventBus) Publish(event Event) {
	bus.mu.RLock()
	defer bus.mu.RUnlock()

	for _, listener := range bus.listeners {
		listener(event)
	}
	for _, listener := range bus.typedListeners[event.Type] {
		listener.callback(event)
	}
}

// PublishBatch publishes events in order.
func (bus *EventBus) PublishBatch(events []Event) {
	for _, event := range events {
		bus.Publish(event)
	}
}
