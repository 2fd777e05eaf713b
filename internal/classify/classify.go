// Package classify derives the display status of a rental from its stored
// lifecycle status, its dates and an explicit now.
package classify

import (
	"sort"
	"time"

	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/utils"
)

type DisplayStatus string

const (
	StatusPending   DisplayStatus = "pending"
	StatusUpcoming  DisplayStatus = "upcoming"
	StatusActive    DisplayStatus = "active"
	StatusDueToday  DisplayStatus = "due_today"
	StatusOverdue   DisplayStatus = "overdue"
	StatusCompleted DisplayStatus = "completed"
	StatusArchived  DisplayStatus = "archived"
	StatusDeclined  DisplayStatus = "declined"
	StatusCancelled DisplayStatus = "cancelled"
)

type View string

const (
	ViewRenter View = "renter"
	ViewOwner  View = "owner"
)

// Effective returns the lifecycle status as of today: an approved rental
// whose start date has been reached is active even before a job persists it.
func Effective(r domain.Rental, today utils.Date) domain.RentalStatus {
	if r.Status == domain.RentalStatusApproved && !today.Before(r.StartDate) {
		return domain.RentalStatusActive
	}
	return r.Status
}

// Renter classifies r for the renter's dashboard.
func Renter(r domain.Rental, now time.Time) DisplayStatus {
	today := utils.DateOf(now)
	status := Effective(r, today)

	switch status {
	case domain.RentalStatusPending:
		return StatusPending
	case domain.RentalStatusApproved:
		return StatusUpcoming
	case domain.RentalStatusActive, domain.RentalStatusReturned:
		switch {
		case today.After(r.EndDate):
			return StatusOverdue
		case today == r.EndDate:
			return StatusDueToday
		default:
			return StatusActive
		}
	}
	return passThrough(status)
}

// Owner classifies r for the owner's dashboard. A returned rental stays
// overdue until the owner confirms the return.
func Owner(r domain.Rental, now time.Time) DisplayStatus {
	today := utils.DateOf(now)

	switch r.Status {
	case domain.RentalStatusCompleted, domain.RentalStatusArchived,
		domain.RentalStatusDeclined, domain.RentalStatusCancelled:
		return passThrough(r.Status)
	case domain.RentalStatusPending:
		return StatusPending
	}

	switch {
	case r.StartDate.After(today):
		return StatusUpcoming
	case r.EndDate.Before(today):
		return StatusOverdue
	default:
		return StatusActive
	}
}

func passThrough(s domain.RentalStatus) DisplayStatus {
	switch s {
	case domain.RentalStatusCompleted:
		return StatusCompleted
	case domain.RentalStatusArchived:
		return StatusArchived
	case domain.RentalStatusDeclined:
		return StatusDeclined
	case domain.RentalStatusCancelled:
		return StatusCancelled
	case domain.RentalStatusPending:
		return StatusPending
	}
	return DisplayStatus(s)
}

// Classify dispatches on view.
func Classify(r domain.Rental, now time.Time, view View) DisplayStatus {
	if view == ViewOwner {
		return Owner(r, now)
	}
	return Renter(r, now)
}

type Entry struct {
	Rental  domain.Rental `json:"rental"`
	Display DisplayStatus `json:"display_status"`
}

// Sort orders entries overdue first, most overdue first, then the rest by
// soonest end date. Ties break on rental id so the order is stable across
// refreshes.
func Sort(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		aOver, bOver := a.Display == StatusOverdue, b.Display == StatusOverdue
		if aOver != bOver {
			return aOver
		}
		if c := a.Rental.EndDate.Compare(b.Rental.EndDate); c != 0 {
			return c < 0
		}
		return a.Rental.ID < b.Rental.ID
	})
}

// Dashboard classifies and orders rentals for one view.
func Dashboard(rentals []domain.Rental, now time.Time, view View) []Entry {
	entries := make([]Entry, 0, len(rentals))
	for _, r := range rentals {
		entries = append(entries, Entry{Rental: r, Display: Classify(r, now, view)})
	}
	Sort(entries)
	return entries
}
