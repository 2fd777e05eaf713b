package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/logger"
	"toolshare-backend/internal/repository"

	"github.com/google/uuid"
)

type chatRepository struct {
	db querier
}

func NewChatRepository(db *sql.DB) repository.ChatRepository {
	return &chatRepository{db: db}
}

// GetOrCreateThread relies on the unique (owner_id, renter_id, listing_id)
// index: the insert is a no-op when the thread exists and the select then
// returns whichever row won.
func (r *chatRepository) GetOrCreateThread(ctx context.Context, ownerID, renterID, listingID int32) (*domain.ChatThread, error) {
	logger.EnterMethod("chatRepository.GetOrCreateThread", "ownerID", ownerID, "renterID", renterID, "listingID", listingID)

	insert := `INSERT INTO chat_threads (id, owner_id, renter_id, listing_id, created_on)
	           VALUES ($1, $2, $3, $4, $5)
	           ON CONFLICT (owner_id, renter_id, listing_id) DO NOTHING`
	logger.DatabaseCall("INSERT", "chat_threads", "listingID", listingID)
	_, err := r.db.ExecContext(ctx, insert, uuid.NewString(), ownerID, renterID, listingID, time.Now())
	if err != nil {
		logger.ExitMethodWithError("chatRepository.GetOrCreateThread", err)
		return nil, err
	}

	th := &domain.ChatThread{}
	query := `SELECT id, owner_id, renter_id, listing_id, created_on FROM chat_threads
	          WHERE owner_id = $1 AND renter_id = $2 AND listing_id = $3`
	err = r.db.QueryRowContext(ctx, query, ownerID, renterID, listingID).Scan(&th.ID, &th.OwnerID, &th.RenterID, &th.ListingID, &th.CreatedOn)
	if err != nil {
		logger.ExitMethodWithError("chatRepository.GetOrCreateThread", err)
		return nil, err
	}
	logger.ExitMethod("chatRepository.GetOrCreateThread", "threadID", th.ID)
	return th, nil
}

func (r *chatRepository) CreateMessage(ctx context.Context, m *domain.ChatMessage) error {
	attrs, err := json.Marshal(m.Attributes)
	if err != nil {
		return err
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedOn.IsZero() {
		m.CreatedOn = time.Now()
	}
	query := `INSERT INTO chat_messages (id, thread_id, recipient_id, kind, body, attributes, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	logger.DatabaseCall("INSERT", "chat_messages", "threadID", m.ThreadID)
	_, err = r.db.ExecContext(ctx, query, m.ID, m.ThreadID, m.RecipientID, m.Kind, m.Body, attrs, m.CreatedOn)
	logger.DatabaseResult("INSERT", 1, err, "messageID", m.ID)
	return err
}

func (r *chatRepository) ListMessages(ctx context.Context, threadID string) ([]domain.ChatMessage, error) {
	query := `SELECT id, thread_id, recipient_id, kind, body, attributes, created_on
	          FROM chat_messages WHERE thread_id = $1 ORDER BY created_on, id`
	rows, err := r.db.QueryContext(ctx, query, threadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []domain.ChatMessage
	for rows.Next() {
		var m domain.ChatMessage
		var attrs []byte
		if err := rows.Scan(&m.ID, &m.ThreadID, &m.RecipientID, &m.Kind, &m.Body, &attrs, &m.CreatedOn); err != nil {
			return nil, err
		}
		if len(attrs) > 0 {
			if err := json.Unmarshal(attrs, &m.Attributes); err != nil {
				return nil, err
			}
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
