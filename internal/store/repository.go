package store

import (
	"context"

	"github.com/google/uuid"
)

// DeckFilter optionally scopes a card query to one deck. The zero value
// matches cards in every deck.
type DeckFilter = uuid.NullUUID

// AllDecks returns a filter matching every deck.
func AllDecks() DeckFilter {
	return DeckFilter{}
}

// ForDeck returns a filter matching a single deck.
func ForDeck(id uuid.UUID) DeckFilter {
	return DeckFilter{UUID: id, Valid: true}
}

// TxFn is a unit of work executed inside a repository transaction. The
// stores it receives are bound to that transaction.
type TxFn func(ctx context.Context, cards CardStore, decks DeckStore) error

// Repository groups the card and deck stores of one backend and owns the
// commit boundary.
type Repository interface {
	// Cards returns a store that operates outside any transaction.
	Cards() CardStore

	// Decks returns a store that operates outside any transaction.
	Decks() DeckStore

	// RunInTx runs fn in a transaction. The transaction commits when fn
	// returns nil and rolls back otherwise. Commit failures are returned as
	// *StoreError wrapping ErrTransactionFailed plus the mapped cause.
	RunInTx(ctx context.Context, fn TxFn) error
}
