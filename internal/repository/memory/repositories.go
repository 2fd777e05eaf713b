package memory

import (
	"context"
	"sort"

	"toolshare-backend/internal/domain"

	"github.com/google/uuid"
)

type userRepository struct {
	db *DB
}

func (r *userRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	u, ok := r.db.users[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "user", ID: id}
	}
	return &u, nil
}

type categoryRepository struct {
	db *DB
}

func (r *categoryRepository) GetByID(ctx context.Context, id int32) (*domain.Category, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	c, ok := r.db.categories[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "category", ID: id}
	}
	return &c, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]domain.Category, 0, len(r.db.categories))
	for _, c := range r.db.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type listingRepository struct {
	db *DB
}

func (r *listingRepository) GetView(ctx context.Context, id int32) (*domain.ListingView, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	l, ok := r.db.listings[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "listing", ID: id}
	}
	c, ok := r.db.categories[l.CategoryID]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "category", ID: l.CategoryID}
	}
	return &domain.ListingView{Listing: l, Category: c}, nil
}

func (r *listingRepository) ListByOwner(ctx context.Context, ownerID int32) ([]domain.Listing, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var out []domain.Listing
	for _, l := range r.db.listings {
		if l.OwnerID == ownerID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *listingRepository) UpdateRiskTier(ctx context.Context, listingID, categoryID int32, override, suggested *int32) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	l, ok := r.db.listings[listingID]
	if !ok {
		return &domain.NotFoundError{Entity: "listing", ID: listingID}
	}
	if _, ok := r.db.categories[categoryID]; !ok {
		return &domain.NotFoundError{Entity: "category", ID: categoryID}
	}
	l.CategoryID = categoryID
	l.RiskTierOverride = override
	l.SuggestedTier = suggested
	r.db.listings[listingID] = l
	return nil
}

type blackoutRepository struct {
	db   *DB
	undo *undoLog
}

func (r *blackoutRepository) Create(ctx context.Context, b *domain.BlackoutRange) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.nextBlackoutID++
	b.ID = r.db.nextBlackoutID
	b.CreatedOn = r.db.now()
	r.db.blackouts[b.ID] = *b
	id := b.ID
	r.undo.push(func() { delete(r.db.blackouts, id) })
	return nil
}

func (r *blackoutRepository) GetByID(ctx context.Context, id int32) (*domain.BlackoutRange, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	b, ok := r.db.blackouts[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "blackout", ID: id}
	}
	return &b, nil
}

func (r *blackoutRepository) Delete(ctx context.Context, id int32) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	prev, ok := r.db.blackouts[id]
	if !ok {
		return &domain.NotFoundError{Entity: "blackout", ID: id}
	}
	delete(r.db.blackouts, id)
	r.undo.push(func() { r.db.blackouts[id] = prev })
	return nil
}

func (r *blackoutRepository) ListByListing(ctx context.Context, listingID int32) ([]domain.BlackoutRange, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var out []domain.BlackoutRange
	for _, b := range r.db.blackouts {
		if b.ListingID == listingID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type rentalRepository struct {
	db   *DB
	undo *undoLog
}

func (r *rentalRepository) Create(ctx context.Context, rt *domain.Rental) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.nextRentalID++
	rt.ID = r.db.nextRentalID
	now := r.db.now()
	rt.CreatedOn, rt.UpdatedOn = now, now
	r.db.rentals[rt.ID] = *rt
	id := rt.ID
	r.undo.push(func() { delete(r.db.rentals, id) })
	return nil
}

func (r *rentalRepository) GetByID(ctx context.Context, id int32) (*domain.Rental, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	rt, ok := r.db.rentals[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "rental", ID: id}
	}
	return &rt, nil
}

func (r *rentalRepository) Update(ctx context.Context, rt *domain.Rental) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	prev, ok := r.db.rentals[rt.ID]
	if !ok {
		return &domain.NotFoundError{Entity: "rental", ID: rt.ID}
	}
	rt.UpdatedOn = r.db.now()
	r.db.rentals[rt.ID] = *rt
	r.undo.push(func() { r.db.rentals[prev.ID] = prev })
	return nil
}

func (r *rentalRepository) filter(keep func(domain.Rental) bool) []domain.Rental {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var out []domain.Rental
	for _, rt := range r.db.rentals {
		if keep(rt) {
			out = append(out, rt)
		}
	}
	sortRentals(out)
	return out
}

func (r *rentalRepository) ListByRenter(ctx context.Context, renterID int32) ([]domain.Rental, error) {
	return r.filter(func(rt domain.Rental) bool { return rt.RenterID == renterID }), nil
}

func (r *rentalRepository) ListByOwner(ctx context.Context, ownerID int32) ([]domain.Rental, error) {
	return r.filter(func(rt domain.Rental) bool { return rt.OwnerID == ownerID }), nil
}

func (r *rentalRepository) ListByListing(ctx context.Context, listingID int32, statuses ...domain.RentalStatus) ([]domain.Rental, error) {
	return r.filter(func(rt domain.Rental) bool {
		return rt.ListingID == listingID && statusIn(rt.Status, statuses)
	}), nil
}

func (r *rentalRepository) ListByStatus(ctx context.Context, statuses ...domain.RentalStatus) ([]domain.Rental, error) {
	return r.filter(func(rt domain.Rental) bool { return statusIn(rt.Status, statuses) }), nil
}

type chatRepository struct {
	db *DB
}

func (r *chatRepository) GetOrCreateThread(ctx context.Context, ownerID, renterID, listingID int32) (*domain.ChatThread, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	key := threadKey{ownerID: ownerID, renterID: renterID, listingID: listingID}
	if th, ok := r.db.threads[key]; ok {
		return &th, nil
	}
	th := domain.ChatThread{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		RenterID:  renterID,
		ListingID: listingID,
		CreatedOn: r.db.now(),
	}
	r.db.threads[key] = th
	return &th, nil
}

func (r *chatRepository) CreateMessage(ctx context.Context, msg *domain.ChatMessage) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedOn.IsZero() {
		msg.CreatedOn = r.db.now()
	}
	r.db.messages = append(r.db.messages, *msg)
	return nil
}

func (r *chatRepository) ListMessages(ctx context.Context, threadID string) ([]domain.ChatMessage, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var out []domain.ChatMessage
	for _, m := range r.db.messages {
		if m.ThreadID == threadID {
			out = append(out, m)
		}
	}
	return out, nil
}
