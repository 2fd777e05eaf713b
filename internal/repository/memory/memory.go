// Package memory is an in-process store for local runs and tests. Writes made
// inside WithListingLock are undone when the callback fails.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/repository"
)

type threadKey struct {
	ownerID, renterID, listingID int32
}

// DB holds all in-memory tables behind one lock.
type DB struct {
	mu         sync.RWMutex
	users      map[int32]domain.User
	categories map[int32]domain.Category
	listings   map[int32]domain.Listing
	blackouts  map[int32]domain.BlackoutRange
	rentals    map[int32]domain.Rental
	threads    map[threadKey]domain.ChatThread
	messages   []domain.ChatMessage

	nextBlackoutID int32
	nextRentalID   int32
	nextListingID  int32

	locksMu      sync.Mutex
	listingLocks map[int32]*sync.Mutex

	now func() time.Time
}

func New() *DB {
	return &DB{
		users:        make(map[int32]domain.User),
		categories:   make(map[int32]domain.Category),
		listings:     make(map[int32]domain.Listing),
		blackouts:    make(map[int32]domain.BlackoutRange),
		rentals:      make(map[int32]domain.Rental),
		threads:      make(map[threadKey]domain.ChatThread),
		listingLocks: make(map[int32]*sync.Mutex),
		now:          time.Now,
	}
}

// Store exposes the DB through the repository interfaces.
func (db *DB) Store() *repository.Store {
	return &repository.Store{
		Users:      &userRepository{db: db},
		Categories: &categoryRepository{db: db},
		Listings:   &listingRepository{db: db},
		Blackouts:  &blackoutRepository{db: db},
		Rentals:    &rentalRepository{db: db},
		Chats:      &chatRepository{db: db},
		Tx:         &txRunner{db: db},
	}
}

func (db *DB) AddUser(u domain.User) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.users[u.ID] = u
}

func (db *DB) AddCategory(c domain.Category) {
	db.mu.Lock()
	defer db.mu.Unlock()
	c.Keywords = append([]string(nil), c.Keywords...)
	db.categories[c.ID] = c
}

// AddListing stores l, assigning an id when l.ID is zero.
func (db *DB) AddListing(l domain.Listing) domain.Listing {
	db.mu.Lock()
	defer db.mu.Unlock()
	if l.ID == 0 {
		db.nextListingID++
		l.ID = db.nextListingID
	} else if l.ID > db.nextListingID {
		db.nextListingID = l.ID
	}
	if l.CreatedOn.IsZero() {
		l.CreatedOn = db.now()
	}
	db.listings[l.ID] = l
	return l
}

// PutRental stores r as-is, for seeding rentals in any status.
func (db *DB) PutRental(r domain.Rental) domain.Rental {
	db.mu.Lock()
	defer db.mu.Unlock()
	if r.ID == 0 {
		db.nextRentalID++
		r.ID = db.nextRentalID
	} else if r.ID > db.nextRentalID {
		db.nextRentalID = r.ID
	}
	db.rentals[r.ID] = r
	return r
}

// Messages returns a copy of every chat message written so far.
func (db *DB) Messages() []domain.ChatMessage {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return append([]domain.ChatMessage(nil), db.messages...)
}

// ThreadCount returns the number of distinct chat threads.
func (db *DB) ThreadCount() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.threads)
}

func (db *DB) listingLock(id int32) *sync.Mutex {
	db.locksMu.Lock()
	defer db.locksMu.Unlock()
	l, ok := db.listingLocks[id]
	if !ok {
		l = &sync.Mutex{}
		db.listingLocks[id] = l
	}
	return l
}

// undoLog collects restore steps for writes made inside a transaction.
// Steps run with db.mu held.
type undoLog struct {
	steps []func()
}

func (u *undoLog) push(fn func()) {
	if u != nil {
		u.steps = append(u.steps, fn)
	}
}

func (u *undoLog) rollback(db *DB) {
	db.mu.Lock()
	defer db.mu.Unlock()
	for i := len(u.steps) - 1; i >= 0; i-- {
		u.steps[i]()
	}
}

type txRunner struct {
	db *DB
}

func (t *txRunner) WithListingLock(ctx context.Context, listingID int32, fn func(ctx context.Context, tx repository.BookingTx) error) error {
	lock := t.db.listingLock(listingID)
	lock.Lock()
	defer lock.Unlock()

	t.db.mu.RLock()
	_, ok := t.db.listings[listingID]
	t.db.mu.RUnlock()
	if !ok {
		return &domain.NotFoundError{Entity: "listing", ID: listingID}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	undo := &undoLog{}
	tx := &bookingTx{
		rentals:   &rentalRepository{db: t.db, undo: undo},
		blackouts: &blackoutRepository{db: t.db, undo: undo},
	}
	if err := fn(ctx, tx); err != nil {
		undo.rollback(t.db)
		return err
	}
	return nil
}

type bookingTx struct {
	rentals   *rentalRepository
	blackouts *blackoutRepository
}

func (tx *bookingTx) Rentals() repository.RentalRepository     { return tx.rentals }
func (tx *bookingTx) Blackouts() repository.BlackoutRepository { return tx.blackouts }

func statusIn(s domain.RentalStatus, statuses []domain.RentalStatus) bool {
	if len(statuses) == 0 {
		return true
	}
	for _, st := range statuses {
		if s == st {
			return true
		}
	}
	return false
}

func sortRentals(rs []domain.Rental) {
	sort.Slice(rs, func(i, j int) bool { return rs[i].ID < rs[j].ID })
}
