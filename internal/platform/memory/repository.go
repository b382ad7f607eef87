package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/store"
	"github.com/samber/lo"
)

// data is one view of the stored entities. The dirty sets are only
// populated for transaction views.
type data struct {
	decks      map[uuid.UUID]domain.Deck
	cards      map[uuid.UUID]domain.Card
	dirtyDecks map[uuid.UUID]struct{}
	dirtyCards map[uuid.UUID]struct{}
}

func newData() *data {
	return &data{
		decks: make(map[uuid.UUID]domain.Deck),
		cards: make(map[uuid.UUID]domain.Card),
	}
}

func (d *data) clone() *data {
	return &data{
		decks:      lo.Assign(d.decks),
		cards:      lo.Assign(d.cards),
		dirtyDecks: make(map[uuid.UUID]struct{}),
		dirtyCards: make(map[uuid.UUID]struct{}),
	}
}

func (d *data) touchDeck(id uuid.UUID) {
	if d.dirtyDecks != nil {
		d.dirtyDecks[id] = struct{}{}
	}
}

func (d *data) touchCard(id uuid.UUID) {
	if d.dirtyCards != nil {
		d.dirtyCards[id] = struct{}{}
	}
}

// Repository is an in-memory store.Repository. Transactions are serialized.
type Repository struct {
	mu   sync.Mutex
	txMu sync.Mutex
	live *data

	failCommits int
	failErr     error
	commits     int
}

// NewRepository creates an empty Repository.
func NewRepository() *Repository {
	return &Repository{live: newData()}
}

// Ensure Repository implements store.Repository interface
var _ store.Repository = (*Repository)(nil)

// Cards implements store.Repository.Cards
func (r *Repository) Cards() store.CardStore {
	return &CardStore{mu: &r.mu, data: r.live}
}

// Decks implements store.Repository.Decks
func (r *Repository) Decks() store.DeckStore {
	return &DeckStore{mu: &r.mu, data: r.live}
}

// FailCommits makes the next n commits fail with err, as a backend would on
// a write conflict or lost connection.
func (r *Repository) FailCommits(n int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failCommits = n
	r.failErr = err
}

// Commits returns the number of successful commits.
func (r *Repository) Commits() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.commits
}

// RunInTx implements store.Repository.RunInTx
func (r *Repository) RunInTx(ctx context.Context, fn store.TxFn) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return store.NewStoreError("transaction", "run_in_tx", "transaction not started",
			fmt.Errorf("%w: %w", store.ErrTransactionFailed, err))
	}

	r.mu.Lock()
	staged := r.live.clone()
	r.mu.Unlock()

	txMu := &sync.Mutex{}
	if err := fn(ctx, &CardStore{mu: txMu, data: staged}, &DeckStore{mu: txMu, data: staged}); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failCommits > 0 {
		r.failCommits--
		return store.NewStoreError("transaction", "run_in_tx", "transaction failed",
			fmt.Errorf("%w: %w", store.ErrTransactionFailed, r.failErr))
	}

	for id := range staged.dirtyDecks {
		if deck, ok := staged.decks[id]; ok {
			r.live.decks[id] = deck
		} else {
			delete(r.live.decks, id)
		}
	}
	for id := range staged.dirtyCards {
		if card, ok := staged.cards[id]; ok {
			r.live.cards[id] = card
		} else {
			delete(r.live.cards, id)
		}
	}
	r.commits++
	return nil
}
