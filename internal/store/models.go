package store

import "time"

type User struct {
	ID                    string
	Email                 string
	DisplayName           string
	PasswordHash          string
	IsActive              bool
	IsEmailVerified       bool
	VerificationToken     string
	VerificationExpiresAt *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Board is the root of the ownership hierarchy. ListOrderIDs is the
// denormalized display order of the board's lists and must stay a permutation
// of the ids of all lists whose BoardID points here.
type Board struct {
	ID           string
	Title        string
	Description  string
	Background   string
	OwnerID      string
	IsStarred    bool
	ListOrderIDs []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TaskList belongs to exactly one board. CardOrderIDs mirrors ListOrderIDs one
// level down: the display order of the cards whose ListID points here.
type TaskList struct {
	ID           string
	Title        string
	BoardID      string
	CardOrderIDs []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Card lives either inside a list (BoardID and ListID set) or standalone
// (both empty, owned by MemberIDs). An empty BoardID/ListID stands for the
// original's null.
type Card struct {
	ID          string
	Title       string
	Description string
	Cover       string
	BoardID     string
	ListID      string
	MemberIDs   []string
	Labels      []string
	StartDate   *time.Time
	DueDate     *time.Time
	IsCompleted bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

const (
	MessageTypeText = "TEXT"
	MessageTypeCard = "CARD"
)

type Message struct {
	ID         string
	SenderID   string
	ReceiverID string
	Content    string
	Type       string
	CardID     string
	IsRead     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

const (
	FriendshipPending  = "PENDING"
	FriendshipAccepted = "ACCEPTED"
	FriendshipRejected = "REJECTED"
	FriendshipBlocked  = "BLOCKED"
)

type Friendship struct {
	ID        string
	UserID    string
	FriendID  string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Idea struct {
	ID          string
	Title       string
	Description string
	UserID      string
	IsApproved  bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
