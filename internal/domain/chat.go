package domain

import "time"

// ChatThread is unique per (owner, renter, listing).
type ChatThread struct {
	ID        string    `json:"id"`
	OwnerID   int32     `json:"owner_id"`
	RenterID  int32     `json:"renter_id"`
	ListingID int32     `json:"listing_id"`
	CreatedOn time.Time `json:"created_on"`
}

type MessageKind string

const (
	MessageKindSystem MessageKind = "system"
	MessageKindUser   MessageKind = "user"
)

type ChatMessage struct {
	ID          string            `json:"id"`
	ThreadID    string            `json:"thread_id"`
	RecipientID int32             `json:"recipient_id"`
	Kind        MessageKind       `json:"kind"`
	Body        string            `json:"body"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	CreatedOn   time.Time         `json:"created_on"`
}
