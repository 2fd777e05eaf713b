// Package availability answers whether a listing's dates are free, from its
// blackout ranges and the rentals that hold confirmed occupancy.
package availability

import (
	"sort"

	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/utils"
)

type BlockKind string

const (
	BlockBlackout BlockKind = "blackout"
	BlockRental   BlockKind = "rental"
)

// Block is one contributing range. Reference is the blackout or rental id.
type Block struct {
	Range     utils.DateRange
	Kind      BlockKind
	Reference int32
}

// IntervalSet holds the blocked ranges of a single listing. It is immutable
// after construction and safe for concurrent readers.
type IntervalSet struct {
	listingID int32
	blocks    []Block
}

// New builds the set for a listing. Rentals that do not hold occupancy
// (pending, declined, cancelled, completed, archived) are ignored.
func New(listingID int32, blackouts []domain.BlackoutRange, rentals []domain.Rental) *IntervalSet {
	s := &IntervalSet{listingID: listingID}
	for _, b := range blackouts {
		if b.ListingID != listingID {
			continue
		}
		s.blocks = append(s.blocks, Block{Range: b.Range(), Kind: BlockBlackout, Reference: b.ID})
	}
	for i := range rentals {
		r := &rentals[i]
		if r.ListingID != listingID || !r.Status.HoldsOccupancy() {
			continue
		}
		s.blocks = append(s.blocks, Block{Range: r.Range(), Kind: BlockRental, Reference: r.ID})
	}
	sort.SliceStable(s.blocks, func(i, j int) bool {
		return s.blocks[i].Range.Start.Before(s.blocks[j].Range.Start)
	})
	return s
}

func (s *IntervalSet) ListingID() int32 { return s.listingID }

func (s *IntervalSet) Blocks() []Block {
	out := make([]Block, len(s.blocks))
	copy(out, s.blocks)
	return out
}

// Without returns a copy of the set that ignores the given rental, so a
// rental can be re-checked against everything but itself.
func (s *IntervalSet) Without(rentalID int32) *IntervalSet {
	out := &IntervalSet{listingID: s.listingID}
	for _, b := range s.blocks {
		if b.Kind == BlockRental && b.Reference == rentalID {
			continue
		}
		out.blocks = append(out.blocks, b)
	}
	return out
}

// OnlyRentals drops blackout blocks.
func (s *IntervalSet) OnlyRentals() *IntervalSet {
	out := &IntervalSet{listingID: s.listingID}
	for _, b := range s.blocks {
		if b.Kind == BlockRental {
			out.blocks = append(out.blocks, b)
		}
	}
	return out
}

// OnlyBlackouts drops rental blocks.
func (s *IntervalSet) OnlyBlackouts() *IntervalSet {
	out := &IntervalSet{listingID: s.listingID}
	for _, b := range s.blocks {
		if b.Kind == BlockBlackout {
			out.blocks = append(out.blocks, b)
		}
	}
	return out
}

// Conflicts returns every block overlapping r. Overlap is binary: partial,
// contained and identical ranges all count.
func (s *IntervalSet) Conflicts(r utils.DateRange) []Block {
	var out []Block
	for _, b := range s.blocks {
		if b.Range.Overlaps(r) {
			out = append(out, b)
		}
	}
	return out
}

func (s *IntervalSet) IsFree(r utils.DateRange) bool {
	return len(s.Conflicts(r)) == 0
}

// Check returns an OverlapError when r collides with any block.
func (s *IntervalSet) Check(r utils.DateRange) error {
	conflicts := s.Conflicts(r)
	if len(conflicts) == 0 {
		return nil
	}
	err := &domain.OverlapError{ListingID: s.listingID, Requested: r}
	for _, c := range conflicts {
		err.Conflicts = append(err.Conflicts, c.Range)
	}
	return err
}

// UnavailableDates expands every block day by day and returns the sorted
// union, clipped to window.
func (s *IntervalSet) UnavailableDates(window utils.DateRange) []utils.Date {
	seen := make(map[utils.Date]struct{})
	for _, b := range s.blocks {
		if !b.Range.Overlaps(window) {
			continue
		}
		clipped := b.Range
		if clipped.Start.Before(window.Start) {
			clipped.Start = window.Start
		}
		if clipped.End.After(window.End) {
			clipped.End = window.End
		}
		clipped.Each(func(d utils.Date) {
			seen[d] = struct{}{}
		})
	}
	out := make([]utils.Date, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
