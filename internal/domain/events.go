package domain

import "time"

// Event is a booking lifecycle transition handed to the messaging collaborator.
type Event interface {
	EventName() string
	AggregateID() int32
	OccurredAt() time.Time
}

type BookingRequested struct {
	Rental  Rental    `json:"rental"`
	Listing Listing   `json:"listing"`
	Owner   User      `json:"owner"`
	Renter  User      `json:"renter"`
	At      time.Time `json:"at"`
}

func (e BookingRequested) EventName() string     { return "booking.requested" }
func (e BookingRequested) AggregateID() int32    { return e.Rental.ID }
func (e BookingRequested) OccurredAt() time.Time { return e.At }

type BookingApproved struct {
	Rental Rental    `json:"rental"`
	At     time.Time `json:"at"`
}

func (e BookingApproved) EventName() string     { return "booking.approved" }
func (e BookingApproved) AggregateID() int32    { return e.Rental.ID }
func (e BookingApproved) OccurredAt() time.Time { return e.At }

type BookingDeclined struct {
	Rental Rental    `json:"rental"`
	Reason string    `json:"reason"`
	Auto   bool      `json:"auto"` // declined by the engine, not the owner
	At     time.Time `json:"at"`
}

func (e BookingDeclined) EventName() string     { return "booking.declined" }
func (e BookingDeclined) AggregateID() int32    { return e.Rental.ID }
func (e BookingDeclined) OccurredAt() time.Time { return e.At }

type BookingRescheduled struct {
	Rental    Rental    `json:"rental"`
	PrevStart string    `json:"prev_start"`
	PrevEnd   string    `json:"prev_end"`
	At        time.Time `json:"at"`
}

func (e BookingRescheduled) EventName() string     { return "booking.rescheduled" }
func (e BookingRescheduled) AggregateID() int32    { return e.Rental.ID }
func (e BookingRescheduled) OccurredAt() time.Time { return e.At }

type BookingCancelled struct {
	Rental Rental    `json:"rental"`
	At     time.Time `json:"at"`
}

func (e BookingCancelled) EventName() string     { return "booking.cancelled" }
func (e BookingCancelled) AggregateID() int32    { return e.Rental.ID }
func (e BookingCancelled) OccurredAt() time.Time { return e.At }

type BookingReturned struct {
	Rental Rental    `json:"rental"`
	At     time.Time `json:"at"`
}

func (e BookingReturned) EventName() string     { return "booking.returned" }
func (e BookingReturned) AggregateID() int32    { return e.Rental.ID }
func (e BookingReturned) OccurredAt() time.Time { return e.At }

type BookingCompleted struct {
	Rental Rental    `json:"rental"`
	At     time.Time `json:"at"`
}

func (e BookingCompleted) EventName() string     { return "booking.completed" }
func (e BookingCompleted) AggregateID() int32    { return e.Rental.ID }
func (e BookingCompleted) OccurredAt() time.Time { return e.At }
