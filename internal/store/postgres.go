package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// encodeIDs marshals a string slice into its JSONB representation, writing
// [] rather than null for empty slices.
func encodeIDs(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("marshal id list: %w", err)
	}
	return string(raw), nil
}

func decodeIDs(raw []byte) []string {
	ids := []string{}
	_ = json.Unmarshal(raw, &ids)
	return ids
}

// Users

func (s *PostgresStore) CreateUser(ctx context.Context, user User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, display_name, password_hash, is_active, is_email_verified, verification_token)
		VALUES ($1, LOWER($2), $3, $4, $5, $6, $7)
	`, user.ID, user.Email, user.DisplayName, user.PasswordHash, user.IsActive, user.IsEmailVerified, user.VerificationToken)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, userID string) (User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, email, display_name, password_hash, is_active, is_email_verified, verification_token, created_at, updated_at
		FROM users WHERE id=$1
	`, userID))
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, email, display_name, password_hash, is_active, is_email_verified, verification_token, created_at, updated_at
		FROM users WHERE email=LOWER($1)
	`, email))
}

func (s *PostgresStore) scanUser(row *sql.Row) (User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Email, &user.DisplayName, &user.PasswordHash,
		&user.IsActive, &user.IsEmailVerified, &user.VerificationToken, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *PostgresStore) SearchUsers(ctx context.Context, query string) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, display_name, password_hash, is_active, is_email_verified, verification_token, created_at, updated_at
		FROM users
		WHERE is_active AND (email ILIKE '%' || $1 || '%' OR display_name ILIKE '%' || $1 || '%')
		ORDER BY display_name
		LIMIT 50
	`, query)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		var user User
		if err := rows.Scan(&user.ID, &user.Email, &user.DisplayName, &user.PasswordHash,
			&user.IsActive, &user.IsEmailVerified, &user.VerificationToken, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (s *PostgresStore) UpdateUserVerificationToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET verification_token=$2, verification_expires_at=$3, updated_at=NOW() WHERE id=$1
	`, userID, token, expiresAt)
	if err != nil {
		return fmt.Errorf("update verification token: %w", err)
	}
	return nil
}

func (s *PostgresStore) VerifyUserEmail(ctx context.Context, token string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET is_email_verified=TRUE, verification_token='', updated_at=NOW()
		WHERE verification_token=$1 AND verification_token<>'' AND (verification_expires_at IS NULL OR verification_expires_at > NOW())
	`, token)
	if err != nil {
		return fmt.Errorf("verify email: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("verify email: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *PostgresStore) UpdateUserPassword(ctx context.Context, userID, passwordHash string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET password_hash=$2, updated_at=NOW() WHERE id=$1
	`, userID, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreatePasswordReset(ctx context.Context, userID, token string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO password_resets (token, user_id, expires_at) VALUES ($1, $2, $3)
	`, token, userID, expiresAt)
	if err != nil {
		return fmt.Errorf("create password reset: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetPasswordReset(ctx context.Context, token string) (string, error) {
	var userID string
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id FROM password_resets WHERE token=$1 AND NOT used AND expires_at > NOW()
	`, token).Scan(&userID)
	if err != nil {
		return "", err
	}
	return userID, nil
}

func (s *PostgresStore) MarkPasswordResetUsed(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE password_resets SET used=TRUE WHERE token=$1`, token)
	if err != nil {
		return fmt.Errorf("mark password reset used: %w", err)
	}
	return nil
}

// Boards

func (s *PostgresStore) InsertBoard(ctx context.Context, board Board) error {
	order, err := encodeIDs(board.ListOrderIDs)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO boards (id, title, description, background, owner_id, is_starred, list_order_ids)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb)
	`, board.ID, board.Title, board.Description, board.Background, board.OwnerID, board.IsStarred, order)
	if err != nil {
		return fmt.Errorf("insert board: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetBoard(ctx context.Context, boardID string) (Board, error) {
	var board Board
	var orderRaw []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, background, owner_id, is_starred, list_order_ids, created_at, updated_at
		FROM boards WHERE id=$1
	`, boardID).Scan(&board.ID, &board.Title, &board.Description, &board.Background,
		&board.OwnerID, &board.IsStarred, &orderRaw, &board.CreatedAt, &board.UpdatedAt)
	if err != nil {
		return Board{}, err
	}
	board.ListOrderIDs = decodeIDs(orderRaw)
	return board, nil
}

func (s *PostgresStore) ListBoardsByOwner(ctx context.Context, ownerID string) ([]Board, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, background, owner_id, is_starred, list_order_ids, created_at, updated_at
		FROM boards WHERE owner_id=$1
		ORDER BY created_at
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	defer rows.Close()

	boards := make([]Board, 0)
	for rows.Next() {
		var board Board
		var orderRaw []byte
		if err := rows.Scan(&board.ID, &board.Title, &board.Description, &board.Background,
			&board.OwnerID, &board.IsStarred, &orderRaw, &board.CreatedAt, &board.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan board: %w", err)
		}
		board.ListOrderIDs = decodeIDs(orderRaw)
		boards = append(boards, board)
	}
	return boards, rows.Err()
}

func (s *PostgresStore) UpdateBoard(ctx context.Context, board Board) error {
	order, err := encodeIDs(board.ListOrderIDs)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE boards SET title=$2, description=$3, background=$4, is_starred=$5, list_order_ids=$6::jsonb, updated_at=NOW()
		WHERE id=$1
	`, board.ID, board.Title, board.Description, board.Background, board.IsStarred, order)
	if err != nil {
		return fmt.Errorf("update board: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteBoard(ctx context.Context, boardID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM boards WHERE id=$1`, boardID)
	if err != nil {
		return fmt.Errorf("delete board: %w", err)
	}
	return nil
}

// Lists

func (s *PostgresStore) InsertList(ctx context.Context, list TaskList) error {
	order, err := encodeIDs(list.CardOrderIDs)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO lists (id, title, board_id, card_order_ids)
		VALUES ($1, $2, $3, $4::jsonb)
	`, list.ID, list.Title, list.BoardID, order)
	if err != nil {
		return fmt.Errorf("insert list: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetList(ctx context.Context, listID string) (TaskList, error) {
	var list TaskList
	var orderRaw []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, board_id, card_order_ids, created_at, updated_at
		FROM lists WHERE id=$1
	`, listID).Scan(&list.ID, &list.Title, &list.BoardID, &orderRaw, &list.CreatedAt, &list.UpdatedAt)
	if err != nil {
		return TaskList{}, err
	}
	list.CardOrderIDs = decodeIDs(orderRaw)
	return list, nil
}

func (s *PostgresStore) ListListsByBoard(ctx context.Context, boardID string) ([]TaskList, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, board_id, card_order_ids, created_at, updated_at
		FROM lists WHERE board_id=$1
		ORDER BY created_at
	`, boardID)
	if err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}
	defer rows.Close()

	lists := make([]TaskList, 0)
	for rows.Next() {
		var list TaskList
		var orderRaw []byte
		if err := rows.Scan(&list.ID, &list.Title, &list.BoardID, &orderRaw, &list.CreatedAt, &list.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan list: %w", err)
		}
		list.CardOrderIDs = decodeIDs(orderRaw)
		lists = append(lists, list)
	}
	return lists, rows.Err()
}

func (s *PostgresStore) UpdateList(ctx context.Context, list TaskList) error {
	order, err := encodeIDs(list.CardOrderIDs)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE lists SET title=$2, card_order_ids=$3::jsonb, updated_at=NOW() WHERE id=$1
	`, list.ID, list.Title, order)
	if err != nil {
		return fmt.Errorf("update list: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteList(ctx context.Context, listID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM lists WHERE id=$1`, listID)
	if err != nil {
		return fmt.Errorf("delete list: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteListsByBoard(ctx context.Context, boardID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM lists WHERE board_id=$1`, boardID)
	if err != nil {
		return fmt.Errorf("delete lists by board: %w", err)
	}
	return nil
}

// Cards

func (s *PostgresStore) InsertCard(ctx context.Context, card Card) error {
	members, err := encodeIDs(card.MemberIDs)
	if err != nil {
		return err
	}
	labels, err := encodeIDs(card.Labels)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO cards (id, title, description, cover, board_id, list_id, member_ids, labels, start_date, due_date, is_completed)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8::jsonb, $9, $10, $11)
	`, card.ID, card.Title, card.Description, card.Cover, card.BoardID, card.ListID,
		members, labels, card.StartDate, card.DueDate, card.IsCompleted)
	if err != nil {
		return fmt.Errorf("insert card: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetCard(ctx context.Context, cardID string) (Card, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, cover, board_id, list_id, member_ids, labels, start_date, due_date, is_completed, created_at, updated_at
		FROM cards WHERE id=$1
	`, cardID)
	var card Card
	var members, labels []byte
	err := row.Scan(&card.ID, &card.Title, &card.Description, &card.Cover, &card.BoardID, &card.ListID,
		&members, &labels, &card.StartDate, &card.DueDate, &card.IsCompleted, &card.CreatedAt, &card.UpdatedAt)
	if err != nil {
		return Card{}, err
	}
	card.MemberIDs = decodeIDs(members)
	card.Labels = decodeIDs(labels)
	return card, nil
}

func (s *PostgresStore) listCards(ctx context.Context, where string, arg any) ([]Card, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, cover, board_id, list_id, member_ids, labels, start_date, due_date, is_completed, created_at, updated_at
		FROM cards WHERE `+where+`
		ORDER BY created_at
	`, arg)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	cards := make([]Card, 0)
	for rows.Next() {
		var card Card
		var members, labels []byte
		if err := rows.Scan(&card.ID, &card.Title, &card.Description, &card.Cover, &card.BoardID, &card.ListID,
			&members, &labels, &card.StartDate, &card.DueDate, &card.IsCompleted, &card.CreatedAt, &card.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		card.MemberIDs = decodeIDs(members)
		card.Labels = decodeIDs(labels)
		cards = append(cards, card)
	}
	return cards, rows.Err()
}

func (s *PostgresStore) ListCardsByBoard(ctx context.Context, boardID string) ([]Card, error) {
	return s.listCards(ctx, `board_id=$1`, boardID)
}

func (s *PostgresStore) ListCardsByList(ctx context.Context, listID string) ([]Card, error) {
	return s.listCards(ctx, `list_id=$1`, listID)
}

func (s *PostgresStore) ListCardsByMember(ctx context.Context, userID string) ([]Card, error) {
	return s.listCards(ctx, `member_ids ? $1`, userID)
}

func (s *PostgresStore) UpdateCard(ctx context.Context, card Card) error {
	members, err := encodeIDs(card.MemberIDs)
	if err != nil {
		return err
	}
	labels, err := encodeIDs(card.Labels)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE cards SET title=$2, description=$3, cover=$4, board_id=$5, list_id=$6,
			member_ids=$7::jsonb, labels=$8::jsonb, start_date=$9, due_date=$10, is_completed=$11, updated_at=NOW()
		WHERE id=$1
	`, card.ID, card.Title, card.Description, card.Cover, card.BoardID, card.ListID,
		members, labels, card.StartDate, card.DueDate, card.IsCompleted)
	if err != nil {
		return fmt.Errorf("update card: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteCard(ctx context.Context, cardID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE id=$1`, cardID)
	if err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteCardsByBoard(ctx context.Context, boardID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE board_id=$1`, boardID)
	if err != nil {
		return fmt.Errorf("delete cards by board: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteCardsByList(ctx context.Context, listID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE list_id=$1`, listID)
	if err != nil {
		return fmt.Errorf("delete cards by list: %w", err)
	}
	return nil
}

// Messages

func (s *PostgresStore) InsertMessage(ctx context.Context, message Message) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, sender_id, receiver_id, content, type, card_id, is_read)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, message.ID, message.SenderID, message.ReceiverID, message.Content, message.Type, message.CardID, message.IsRead)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetMessage(ctx context.Context, messageID string) (Message, error) {
	var message Message
	err := s.db.QueryRowContext(ctx, `
		SELECT id, sender_id, receiver_id, content, type, card_id, is_read, created_at, updated_at
		FROM messages WHERE id=$1
	`, messageID).Scan(&message.ID, &message.SenderID, &message.ReceiverID, &message.Content,
		&message.Type, &message.CardID, &message.IsRead, &message.CreatedAt, &message.UpdatedAt)
	if err != nil {
		return Message{}, err
	}
	return message, nil
}

func (s *PostgresStore) scanMessages(rows *sql.Rows) ([]Message, error) {
	defer rows.Close()
	messages := make([]Message, 0)
	for rows.Next() {
		var message Message
		if err := rows.Scan(&message.ID, &message.SenderID, &message.ReceiverID, &message.Content,
			&message.Type, &message.CardID, &message.IsRead, &message.CreatedAt, &message.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, message)
	}
	return messages, rows.Err()
}

func (s *PostgresStore) ListConversation(ctx context.Context, userID, otherUserID string) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sender_id, receiver_id, content, type, card_id, is_read, created_at, updated_at
		FROM messages
		WHERE (sender_id=$1 AND receiver_id=$2) OR (sender_id=$2 AND receiver_id=$1)
		ORDER BY created_at
	`, userID, otherUserID)
	if err != nil {
		return nil, fmt.Errorf("list conversation: %w", err)
	}
	return s.scanMessages(rows)
}

func (s *PostgresStore) ListMessagesByUser(ctx context.Context, userID string) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sender_id, receiver_id, content, type, card_id, is_read, created_at, updated_at
		FROM messages
		WHERE sender_id=$1 OR receiver_id=$1
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return s.scanMessages(rows)
}

func (s *PostgresStore) MarkMessageRead(ctx context.Context, messageID string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE messages SET is_read=TRUE, updated_at=NOW() WHERE id=$1`, messageID)
	if err != nil {
		return fmt.Errorf("mark message read: %w", err)
	}
	return nil
}

func (s *PostgresStore) CountUnreadMessages(ctx context.Context, receiverID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM messages WHERE receiver_id=$1 AND NOT is_read
	`, receiverID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread messages: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) DeleteMessage(ctx context.Context, messageID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE id=$1`, messageID)
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}

// Friendships

func (s *PostgresStore) InsertFriendship(ctx context.Context, friendship Friendship) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO friendships (id, user_id, friend_id, status) VALUES ($1, $2, $3, $4)
	`, friendship.ID, friendship.UserID, friendship.FriendID, friendship.Status)
	if err != nil {
		return fmt.Errorf("insert friendship: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetFriendship(ctx context.Context, friendshipID string) (Friendship, error) {
	return s.scanFriendship(s.db.QueryRowContext(ctx, `
		SELECT id, user_id, friend_id, status, created_at, updated_at
		FROM friendships WHERE id=$1
	`, friendshipID))
}

// GetFriendshipBetween matches the exact direction: userID sent to friendID.
func (s *PostgresStore) GetFriendshipBetween(ctx context.Context, userID, friendID string) (Friendship, error) {
	return s.scanFriendship(s.db.QueryRowContext(ctx, `
		SELECT id, user_id, friend_id, status, created_at, updated_at
		FROM friendships WHERE user_id=$1 AND friend_id=$2
	`, userID, friendID))
}

func (s *PostgresStore) scanFriendship(row *sql.Row) (Friendship, error) {
	var friendship Friendship
	err := row.Scan(&friendship.ID, &friendship.UserID, &friendship.FriendID,
		&friendship.Status, &friendship.CreatedAt, &friendship.UpdatedAt)
	if err != nil {
		return Friendship{}, err
	}
	return friendship, nil
}

func (s *PostgresStore) listFriendships(ctx context.Context, column, id, status string) ([]Friendship, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, friend_id, status, created_at, updated_at
		FROM friendships WHERE `+column+`=$1 AND status=$2
		ORDER BY created_at
	`, id, status)
	if err != nil {
		return nil, fmt.Errorf("list friendships: %w", err)
	}
	defer rows.Close()

	friendships := make([]Friendship, 0)
	for rows.Next() {
		var friendship Friendship
		if err := rows.Scan(&friendship.ID, &friendship.UserID, &friendship.FriendID,
			&friendship.Status, &friendship.CreatedAt, &friendship.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan friendship: %w", err)
		}
		friendships = append(friendships, friendship)
	}
	return friendships, rows.Err()
}

func (s *PostgresStore) ListFriendshipsByUser(ctx context.Context, userID, status string) ([]Friendship, error) {
	return s.listFriendships(ctx, "user_id", userID, status)
}

func (s *PostgresStore) ListFriendshipsByFriend(ctx context.Context, friendID, status string) ([]Friendship, error) {
	return s.listFriendships(ctx, "friend_id", friendID, status)
}

func (s *PostgresStore) UpdateFriendshipStatus(ctx context.Context, friendshipID, status string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE friendships SET status=$2, updated_at=NOW() WHERE id=$1
	`, friendshipID, status)
	if err != nil {
		return fmt.Errorf("update friendship: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteFriendship(ctx context.Context, friendshipID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM friendships WHERE id=$1`, friendshipID)
	if err != nil {
		return fmt.Errorf("delete friendship: %w", err)
	}
	return nil
}

// Ideas

func (s *PostgresStore) InsertIdea(ctx context.Context, idea Idea) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ideas (id, title, description, user_id, is_approved) VALUES ($1, $2, $3, $4, $5)
	`, idea.ID, idea.Title, idea.Description, idea.UserID, idea.IsApproved)
	if err != nil {
		return fmt.Errorf("insert idea: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetIdea(ctx context.Context, ideaID string) (Idea, error) {
	var idea Idea
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, user_id, is_approved, created_at, updated_at
		FROM ideas WHERE id=$1
	`, ideaID).Scan(&idea.ID, &idea.Title, &idea.Description, &idea.UserID, &idea.IsApproved, &idea.CreatedAt, &idea.UpdatedAt)
	if err != nil {
		return Idea{}, err
	}
	return idea, nil
}

func (s *PostgresStore) listIdeas(ctx context.Context, where string, args ...any) ([]Idea, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, user_id, is_approved, created_at, updated_at
		FROM ideas `+where+`
		ORDER BY created_at DESC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("list ideas: %w", err)
	}
	defer rows.Close()

	ideas := make([]Idea, 0)
	for rows.Next() {
		var idea Idea
		if err := rows.Scan(&idea.ID, &idea.Title, &idea.Description, &idea.UserID,
			&idea.IsApproved, &idea.CreatedAt, &idea.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan idea: %w", err)
		}
		ideas = append(ideas, idea)
	}
	return ideas, rows.Err()
}

func (s *PostgresStore) ListIdeas(ctx context.Context) ([]Idea, error) {
	return s.listIdeas(ctx, "")
}

func (s *PostgresStore) ListIdeasByUser(ctx context.Context, userID string) ([]Idea, error) {
	return s.listIdeas(ctx, "WHERE user_id=$1", userID)
}

func (s *PostgresStore) ListApprovedIdeas(ctx context.Context) ([]Idea, error) {
	return s.listIdeas(ctx, "WHERE is_approved")
}

func (s *PostgresStore) UpdateIdea(ctx context.Context, idea Idea) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE ideas SET title=$2, description=$3, is_approved=$4, updated_at=NOW() WHERE id=$1
	`, idea.ID, idea.Title, idea.Description, idea.IsApproved)
	if err != nil {
		return fmt.Errorf("update idea: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteIdea(ctx context.Context, ideaID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM ideas WHERE id=$1`, ideaID)
	if err != nil {
		return fmt.Errorf("delete idea: %w", err)
	}
	return nil
}
