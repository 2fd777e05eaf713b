package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"toolshare-backend/internal/config"
	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/repository"
	"toolshare-backend/internal/repository/memory"
	"toolshare-backend/internal/service"
	"toolshare-backend/internal/utils"
)

type MockMessagingService struct {
	mock.Mock
}

func (m *MockMessagingService) Publish(ctx context.Context, e domain.Event) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockMessagingService) SendOverdueReminder(ctx context.Context, rt domain.Rental, daysOverdue int) error {
	return m.Called(ctx, rt, daysOverdue).Error(0)
}

type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) Publish(ctx context.Context, e domain.Event) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockEmailService) SendEmail(ctx context.Context, toEmail, toName, subject, body string) error {
	return m.Called(ctx, toEmail, toName, subject, body).Error(0)
}

var jobNow = time.Date(2024, 7, 5, 2, 0, 0, 0, time.UTC)

func d(s string) utils.Date { return utils.MustParseDate(s) }

func seedStore() (*memory.DB, *repository.Store) {
	db := memory.New()
	db.AddUser(domain.User{ID: 1, Name: "Olive Owner", Email: "olive@example.com"})
	db.AddUser(domain.User{ID: 2, Name: "Remy Renter", Email: "remy@example.com"})
	db.AddCategory(domain.Category{ID: 1, Name: "Hand Tools", DefaultRiskTier: 1})
	db.AddListing(domain.Listing{ID: 10, OwnerID: 1, CategoryID: 1, Title: "Ladder", BookingType: domain.BookingTypeRequest})
	return db, db.Store()
}

func putRental(db *memory.DB, id int32, start, end string, status domain.RentalStatus) domain.Rental {
	return db.PutRental(domain.Rental{ID: id, ListingID: 10, OwnerID: 1, RenterID: 2,
		StartDate: d(start), EndDate: d(end), Status: status})
}

func TestSendOverdueReminders(t *testing.T) {
	db, store := seedStore()
	overdue := putRental(db, 1, "2024-06-25", "2024-07-02", domain.RentalStatusActive)
	putRental(db, 2, "2024-07-01", "2024-07-05", domain.RentalStatusActive)   // due today
	putRental(db, 3, "2024-06-20", "2024-06-22", domain.RentalStatusReturned) // awaiting confirmation
	putRental(db, 4, "2024-06-20", "2024-06-21", domain.RentalStatusCompleted)
	lapsed := putRental(db, 5, "2024-07-01", "2024-07-04", domain.RentalStatusApproved) // never activated

	messaging := new(MockMessagingService)
	messaging.On("SendOverdueReminder", mock.Anything, overdue, 3).Return(nil)
	messaging.On("SendOverdueReminder", mock.Anything, lapsed, 1).Return(errors.New("chat down"))
	email := new(MockEmailService)
	email.On("SendEmail", mock.Anything, "remy@example.com", "Remy Renter", "Reminder: Overdue Tool Return",
		mock.MatchedBy(func(body string) bool { return assert.Contains(t, body, "3 day(s) overdue") })).Return(nil)

	jr := NewJobRunner(store, &Services{Messaging: messaging, Email: email}, &config.Config{})
	jr.clock = func() time.Time { return jobNow }

	count, err := jr.sendOverdueReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	messaging.AssertExpectations(t)
	email.AssertExpectations(t)
}

func TestRentalJobs(t *testing.T) {
	db, store := seedStore()
	putRental(db, 1, "2024-07-05", "2024-07-06", domain.RentalStatusApproved)
	putRental(db, 2, "2024-07-08", "2024-07-09", domain.RentalStatusApproved)
	putRental(db, 3, "2024-07-03", "2024-07-04", domain.RentalStatusPending)

	booking := service.NewBookingService(store.Listings, store.Rentals, store.Blackouts, store.Users, store.Tx, nil, 0)
	messaging := new(MockMessagingService)
	jr := NewJobRunner(store, &Services{Booking: booking, Messaging: messaging}, &config.Config{})
	jr.clock = func() time.Time { return jobNow }

	jr.RunAllNightlyJobs()

	ctx := context.Background()
	got, err := store.Rentals.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.RentalStatusActive, got.Status)
	got, _ = store.Rentals.GetByID(ctx, 2)
	assert.Equal(t, domain.RentalStatusApproved, got.Status)
	got, _ = store.Rentals.GetByID(ctx, 3)
	assert.Equal(t, domain.RentalStatusDeclined, got.Status)
	messaging.AssertNotCalled(t, "SendOverdueReminder", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunWithRecovery(t *testing.T) {
	jr := NewJobRunner(nil, &Services{}, &config.Config{})
	assert.NotPanics(t, func() {
		jr.runWithRecovery("Boom", func() { panic("boom") })
	})
}
