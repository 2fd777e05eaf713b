package service

import (
	"context"
	"errors"
	"testing"

	"toolshare-backend/internal/domain"

	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessagingService_BookingRequestedWritesTwoMessages(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	messaging := NewMessagingService(f.store.Chats)
	svc := NewBookingService(f.store.Listings, f.store.Rentals, f.store.Blackouts, f.store.Users, f.store.Tx, messaging, 5000)

	rt, err := svc.RequestBooking(ctx, RequestBookingInput{ListingID: requestListingID, RenterID: renterID,
		StartDate: d("2024-07-10"), EndDate: d("2024-07-12")}, testNow)
	require.NoError(t, err)

	msgs := f.db.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, 1, f.db.ThreadCount())
	assert.Equal(t, msgs[0].ThreadID, msgs[1].ThreadID)

	assert.Equal(t, ownerID, msgs[0].RecipientID)
	assert.Contains(t, msgs[0].Body, "Remy Renter")
	assert.Contains(t, msgs[0].Body, "$30.00")
	assert.Equal(t, renterID, msgs[1].RecipientID)
	assert.Contains(t, msgs[1].Body, "$92.00")
	assert.Contains(t, msgs[1].Body, "$50.00")
	for _, m := range msgs {
		assert.Equal(t, domain.MessageKindSystem, m.Kind)
		assert.Equal(t, "booking.requested", m.Attributes["type"])
	}

	_, err = svc.ApproveBooking(ctx, rt.ID, ownerID)
	require.NoError(t, err)
	msgs = f.db.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, 1, f.db.ThreadCount())
	assert.Equal(t, renterID, msgs[2].RecipientID)
	assert.Contains(t, msgs[2].Body, "approved")
}

func TestMessagingService_SendOverdueReminder(t *testing.T) {
	f := newFixture(t)
	messaging := NewMessagingService(f.store.Chats)
	rt := domain.Rental{ID: 7, ListingID: requestListingID, OwnerID: ownerID, RenterID: renterID,
		StartDate: d("2024-06-20"), EndDate: d("2024-06-28")}

	require.NoError(t, messaging.SendOverdueReminder(context.Background(), rt, 3))
	msgs := f.db.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, renterID, msgs[0].RecipientID)
	assert.Contains(t, msgs[0].Body, "3 day(s) overdue")
	assert.Equal(t, "rental.overdue", msgs[0].Attributes["type"])
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "$0.00", formatCents(0))
	assert.Equal(t, "$1.05", formatCents(105))
	assert.Equal(t, "-$12.50", formatCents(-1250))
}

func TestEmailService_Publish(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	var sent []*mail.SGMailV3
	svc := &emailService{
		userRepo:  f.store.Users,
		fromEmail: "noreply@toolshare.test",
		fromName:  "ToolShare",
		send: func(msg *mail.SGMailV3) error {
			sent = append(sent, msg)
			return nil
		},
	}

	rt := domain.Rental{ID: 5, ListingID: requestListingID, OwnerID: ownerID, RenterID: renterID,
		StartDate: d("2024-07-10"), EndDate: d("2024-07-12"), TotalDays: 3, RentalFeeCents: 3000}
	require.NoError(t, svc.Publish(ctx, domain.BookingRequested{
		Rental:  rt,
		Listing: domain.Listing{ID: requestListingID, Title: "Table saw"},
		Owner:   domain.User{ID: ownerID, Name: "Olive Owner", Email: "olive@example.com"},
		Renter:  domain.User{ID: renterID, Name: "Remy Renter"},
	}))
	require.NoError(t, svc.Publish(ctx, domain.BookingDeclined{Rental: rt, Reason: "away that week"}))
	require.NoError(t, svc.Publish(ctx, domain.BookingCancelled{Rental: rt}))

	require.Len(t, sent, 2)
	assert.Equal(t, "New booking request: Table saw", sent[0].Subject)
	assert.Equal(t, "olive@example.com", sent[0].Personalizations[0].To[0].Address)
	assert.Equal(t, "remy@example.com", sent[1].Personalizations[0].To[0].Address)
	assert.Contains(t, sent[1].Content[0].Value, "away that week")
}

func TestEmailService_SendFailure(t *testing.T) {
	svc := &emailService{send: func(*mail.SGMailV3) error { return errors.New("sendgrid error: status 401") }}
	err := svc.SendEmail(context.Background(), "a@example.com", "A", "subject", "body")
	assert.Error(t, err)
}

func TestMultiSink_AttemptsEverySink(t *testing.T) {
	ctx := context.Background()
	event := domain.BookingCancelled{Rental: domain.Rental{ID: 9}}

	failing := new(MockEventSink)
	failing.On("Publish", ctx, event).Return(errors.New("kafka unavailable"))
	ok := new(MockEventSink)
	ok.On("Publish", ctx, event).Return(nil)

	err := MultiSink{failing, nil, ok}.Publish(ctx, event)
	assert.ErrorContains(t, err, "kafka unavailable")
	failing.AssertExpectations(t)
	ok.AssertExpectations(t)

	assert.NoError(t, MultiSink{ok}.Publish(ctx, event))
}
