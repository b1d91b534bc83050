package app

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"time"

	"taskboard/api/internal/ordering"
	"taskboard/api/internal/store"
	"taskboard/api/internal/util"
)

type SendMessageInput struct {
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
	Type       string `json:"type"`
	CardID     string `json:"cardId"`
}

// SendMessage delivers a TEXT or CARD message. Sharing a card adds the
// receiver to the card's members, which is what grants them access to it.
func (s *Service) SendMessage(ctx context.Context, actorID string, input SendMessageInput) (map[string]any, error) {
	if input.ReceiverID == actorID {
		return nil, errValidation("cannot message yourself")
	}
	if _, err := s.store.GetUserByID(ctx, input.ReceiverID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errNotFound("Receiver not found")
		}
		return nil, err
	}

	msgType := strings.ToUpper(strings.TrimSpace(input.Type))
	if msgType == "" {
		msgType = store.MessageTypeText
	}
	if msgType != store.MessageTypeText && msgType != store.MessageTypeCard {
		return nil, errValidation("type must be TEXT or CARD")
	}

	cardID := ""
	if msgType == store.MessageTypeCard {
		card, err := s.authorizeCard(ctx, input.CardID, actorID)
		if err != nil {
			return nil, err
		}
		card.MemberIDs = ordering.Append(card.MemberIDs, input.ReceiverID)
		card.UpdatedAt = time.Now().UTC()
		if err := s.store.UpdateCard(ctx, card); err != nil {
			return nil, err
		}
		s.indexCard(card, s.cardOwner(ctx, card))
		cardID = card.ID
	} else if strings.TrimSpace(input.Content) == "" {
		return nil, errValidation("content is required")
	}

	message := store.Message{
		ID:         util.NewID("msg"),
		SenderID:   actorID,
		ReceiverID: input.ReceiverID,
		Content:    strings.TrimSpace(input.Content),
		Type:       msgType,
		CardID:     cardID,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	if err := s.store.InsertMessage(ctx, message); err != nil {
		return nil, err
	}
	return messagePayload(message), nil
}

// GetConversation returns both directions between the actor and another user,
// oldest first.
func (s *Service) GetConversation(ctx context.Context, actorID, otherUserID string) ([]map[string]any, error) {
	messages, err := s.store.ListConversation(ctx, actorID, otherUserID)
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, 0, len(messages))
	for _, message := range messages {
		items = append(items, messagePayload(message))
	}
	return items, nil
}

// MarkMessageRead is receiver-only.
func (s *Service) MarkMessageRead(ctx context.Context, actorID, messageID string) error {
	message, err := s.store.GetMessage(ctx, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return errNotFound("Message not found")
	}
	if err != nil {
		return err
	}
	if message.ReceiverID != actorID {
		return errForbidden("Only the receiver can mark a message read")
	}
	return s.store.MarkMessageRead(ctx, messageID)
}

// MarkConversationRead marks every unread message the actor received from the
// other user.
func (s *Service) MarkConversationRead(ctx context.Context, actorID, otherUserID string) error {
	messages, err := s.store.ListConversation(ctx, actorID, otherUserID)
	if err != nil {
		return err
	}
	for _, message := range messages {
		if message.ReceiverID == actorID && !message.IsRead {
			if err := s.store.MarkMessageRead(ctx, message.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

// ListConversations groups the actor's messages by counterpart and returns
// the last message and unread count per conversation, most recent first.
func (s *Service) ListConversations(ctx context.Context, actorID string) ([]map[string]any, error) {
	messages, err := s.store.ListMessagesByUser(ctx, actorID)
	if err != nil {
		return nil, err
	}

	type conversation struct {
		last   store.Message
		unread int
	}
	byOther := make(map[string]*conversation)
	for _, message := range messages {
		other := message.SenderID
		if other == actorID {
			other = message.ReceiverID
		}
		conv, ok := byOther[other]
		if !ok {
			conv = &conversation{}
			byOther[other] = conv
		}
		if message.CreatedAt.After(conv.last.CreatedAt) {
			conv.last = message
		}
		if message.ReceiverID == actorID && !message.IsRead {
			conv.unread++
		}
	}

	items := make([]map[string]any, 0, len(byOther))
	for other, conv := range byOther {
		entry := map[string]any{
			"userId":      other,
			"lastMessage": messagePayload(conv.last),
			"unreadCount": conv.unread,
		}
		if user, err := s.store.GetUserByID(ctx, other); err == nil {
			entry["displayName"] = user.DisplayName
		}
		items = append(items, entry)
	}
	sort.Slice(items, func(i, j int) bool {
		a := items[i]["lastMessage"].(map[string]any)["createdAt"].(time.Time)
		b := items[j]["lastMessage"].(map[string]any)["createdAt"].(time.Time)
		return a.After(b)
	})
	return items, nil
}

func (s *Service) UnreadMessageCount(ctx context.Context, actorID string) (int, error) {
	return s.store.CountUnreadMessages(ctx, actorID)
}

// DeleteMessage is sender-only.
func (s *Service) DeleteMessage(ctx context.Context, actorID, messageID string) error {
	message, err := s.store.GetMessage(ctx, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return errNotFound("Message not found")
	}
	if err != nil {
		return err
	}
	if message.SenderID != actorID {
		return errForbidden("Only the sender can delete a message")
	}
	return s.store.DeleteMessage(ctx, messageID)
}

func messagePayload(message store.Message) map[string]any {
	return map[string]any{
		"id":         message.ID,
		"senderId":   message.SenderID,
		"receiverId": message.ReceiverID,
		"content":    message.Content,
		"type":       message.Type,
		"cardId":     message.CardID,
		"isRead":     message.IsRead,
		"createdAt":  message.CreatedAt,
		"updatedAt":  message.UpdatedAt,
	}
}

// Friendships

// SendFriendRequest creates a PENDING request. Duplicates in either direction
// are rejected.
func (s *Service) SendFriendRequest(ctx context.Context, actorID, friendID string) (map[string]any, error) {
	if friendID == actorID {
		return nil, errValidation("cannot friend yourself")
	}
	if _, err := s.store.GetUserByID(ctx, friendID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errNotFound("User not found")
		}
		return nil, err
	}

	// The original checks both directions with two exact-direction lookups.
	if _, err := s.store.GetFriendshipBetween(ctx, actorID, friendID); err == nil {
		return nil, errValidation("friendship already exists")
	}
	if _, err := s.store.GetFriendshipBetween(ctx, friendID, actorID); err == nil {
		return nil, errValidation("friendship already exists")
	}

	friendship := store.Friendship{
		ID:        util.NewID("frd"),
		UserID:    actorID,
		FriendID:  friendID,
		Status:    store.FriendshipPending,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.store.InsertFriendship(ctx, friendship); err != nil {
		return nil, err
	}
	return friendshipPayload(friendship), nil
}

// RespondToFriendRequest accepts or rejects a PENDING request; receiver only.
func (s *Service) RespondToFriendRequest(ctx context.Context, actorID, friendshipID, status string) (map[string]any, error) {
	if status != store.FriendshipAccepted && status != store.FriendshipRejected {
		return nil, errValidation("status must be ACCEPTED or REJECTED")
	}

	friendship, err := s.store.GetFriendship(ctx, friendshipID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errNotFound("Friend request not found")
	}
	if err != nil {
		return nil, err
	}
	if friendship.FriendID != actorID {
		return nil, errForbidden("Only the receiver can respond to a friend request")
	}
	if friendship.Status != store.FriendshipPending {
		return nil, errValidation("friend request is not pending")
	}

	if err := s.store.UpdateFriendshipStatus(ctx, friendshipID, status); err != nil {
		return nil, err
	}
	friendship.Status = status
	friendship.UpdatedAt = time.Now().UTC()
	return friendshipPayload(friendship), nil
}

// RemoveFriendship deletes the relationship; either side may do it.
func (s *Service) RemoveFriendship(ctx context.Context, actorID, friendshipID string) error {
	friendship, err := s.store.GetFriendship(ctx, friendshipID)
	if errors.Is(err, sql.ErrNoRows) {
		return errNotFound("Friendship not found")
	}
	if err != nil {
		return err
	}
	if friendship.UserID != actorID && friendship.FriendID != actorID {
		return errForbidden("Not your friendship")
	}
	return s.store.DeleteFriendship(ctx, friendshipID)
}

// ListFriends returns accepted friendships in both directions as user
// summaries.
func (s *Service) ListFriends(ctx context.Context, actorID string) ([]map[string]any, error) {
	sent, err := s.store.ListFriendshipsByUser(ctx, actorID, store.FriendshipAccepted)
	if err != nil {
		return nil, err
	}
	received, err := s.store.ListFriendshipsByFriend(ctx, actorID, store.FriendshipAccepted)
	if err != nil {
		return nil, err
	}

	items := make([]map[string]any, 0, len(sent)+len(received))
	for _, friendship := range sent {
		items = append(items, s.friendEntry(ctx, friendship, friendship.FriendID))
	}
	for _, friendship := range received {
		items = append(items, s.friendEntry(ctx, friendship, friendship.UserID))
	}
	return items, nil
}

// ListPendingRequests returns requests awaiting the actor's response.
func (s *Service) ListPendingRequests(ctx context.Context, actorID string) ([]map[string]any, error) {
	pending, err := s.store.ListFriendshipsByFriend(ctx, actorID, store.FriendshipPending)
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, 0, len(pending))
	for _, friendship := range pending {
		items = append(items, s.friendEntry(ctx, friendship, friendship.UserID))
	}
	return items, nil
}

// ListSentRequests returns the actor's outstanding requests.
func (s *Service) ListSentRequests(ctx context.Context, actorID string) ([]map[string]any, error) {
	sent, err := s.store.ListFriendshipsByUser(ctx, actorID, store.FriendshipPending)
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, 0, len(sent))
	for _, friendship := range sent {
		items = append(items, s.friendEntry(ctx, friendship, friendship.FriendID))
	}
	return items, nil
}

func (s *Service) friendEntry(ctx context.Context, friendship store.Friendship, otherID string) map[string]any {
	entry := friendshipPayload(friendship)
	entry["userId"] = otherID
	if user, err := s.store.GetUserByID(ctx, otherID); err == nil {
		entry["displayName"] = user.DisplayName
		entry["email"] = user.Email
	}
	return entry
}

func friendshipPayload(friendship store.Friendship) map[string]any {
	return map[string]any{
		"id":        friendship.ID,
		"status":    friendship.Status,
		"createdAt": friendship.CreatedAt,
		"updatedAt": friendship.UpdatedAt,
	}
}

// Ideas

type IdeaInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (s *Service) CreateIdea(ctx context.Context, actorID string, input IdeaInput) (map[string]any, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, errValidation("title is required")
	}
	idea := store.Idea{
		ID:          util.NewID("idea"),
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		UserID:      actorID,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	if err := s.store.InsertIdea(ctx, idea); err != nil {
		return nil, err
	}
	return ideaPayload(idea), nil
}

func (s *Service) GetIdea(ctx context.Context, ideaID string) (map[string]any, error) {
	idea, err := s.store.GetIdea(ctx, ideaID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errNotFound("Idea not found")
	}
	if err != nil {
		return nil, err
	}
	return ideaPayload(idea), nil
}

func (s *Service) ListIdeas(ctx context.Context) ([]map[string]any, error) {
	ideas, err := s.store.ListIdeas(ctx)
	if err != nil {
		return nil, err
	}
	return ideaPayloads(ideas), nil
}

func (s *Service) ListMyIdeas(ctx context.Context, actorID string) ([]map[string]any, error) {
	ideas, err := s.store.ListIdeasByUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return ideaPayloads(ideas), nil
}

func (s *Service) ListApprovedIdeas(ctx context.Context) ([]map[string]any, error) {
	ideas, err := s.store.ListApprovedIdeas(ctx)
	if err != nil {
		return nil, err
	}
	return ideaPayloads(ideas), nil
}

func (s *Service) UpdateIdea(ctx context.Context, actorID, ideaID string, input IdeaInput) (map[string]any, error) {
	idea, err := s.store.GetIdea(ctx, ideaID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errNotFound("Idea not found")
	}
	if err != nil {
		return nil, err
	}
	if idea.UserID != actorID {
		return nil, errForbidden("Not your idea")
	}

	if title := strings.TrimSpace(input.Title); title != "" {
		idea.Title = title
	}
	idea.Description = strings.TrimSpace(input.Description)
	idea.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateIdea(ctx, idea); err != nil {
		return nil, err
	}
	return ideaPayload(idea), nil
}

// ApproveIdea carries no ownership check: any signed-in user can approve,
// matching the upstream behavior this API replaces.
func (s *Service) ApproveIdea(ctx context.Context, ideaID string) (map[string]any, error) {
	idea, err := s.store.GetIdea(ctx, ideaID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errNotFound("Idea not found")
	}
	if err != nil {
		return nil, err
	}
	idea.IsApproved = true
	idea.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateIdea(ctx, idea); err != nil {
		return nil, err
	}
	return ideaPayload(idea), nil
}

func (s *Service) DeleteIdea(ctx context.Context, actorID, ideaID string) error {
	idea, err := s.store.GetIdea(ctx, ideaID)
	if errors.Is(err, sql.ErrNoRows) {
		return errNotFound("Idea not found")
	}
	if err != nil {
		return err
	}
	if idea.UserID != actorID {
		return errForbidden("Not your idea")
	}
	return s.store.DeleteIdea(ctx, ideaID)
}

func ideaPayload(idea store.Idea) map[string]any {
	return map[string]any{
		"id":          idea.ID,
		"title":       idea.Title,
		"description": idea.Description,
		"userId":      idea.UserID,
		"isApproved":  idea.IsApproved,
		"createdAt":   idea.CreatedAt,
		"updatedAt":   idea.UpdatedAt,
	}
}

func ideaPayloads(ideas []store.Idea) []map[string]any {
	items := make([]map[string]any, 0, len(ideas))
	for _, idea := range ideas {
		items = append(items, ideaPayload(idea))
	}
	return items
}
