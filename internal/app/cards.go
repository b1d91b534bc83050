package app

import (
	"context"
	"strings"
	"time"

	"taskboard/api/internal/ordering"
	"taskboard/api/internal/search"
	"taskboard/api/internal/store"
	"taskboard/api/internal/util"
)

type CreateCardInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Cover       string     `json:"cover"`
	Labels      []string   `json:"labels"`
	MemberIDs   []string   `json:"memberIds"`
	StartDate   *time.Time `json:"startDate"`
	DueDate     *time.Time `json:"dueDate"`
}

type UpdateCardInput struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Cover       *string    `json:"cover"`
	Labels      []string   `json:"labels"`
	MemberIDs   []string   `json:"memberIds"`
	StartDate   *time.Time `json:"startDate"`
	DueDate     *time.Time `json:"dueDate"`
	IsCompleted *bool      `json:"isCompleted"`
}

type MoveCardInput struct {
	TargetListID string `json:"targetListId"`
	Index        int    `json:"index"`
}

// CreateCard creates a card inside a list and appends it to the list's
// cardOrderIds.
func (s *Service) CreateCard(ctx context.Context, actorID, listID string, input CreateCardInput) (map[string]any, error) {
	list, board, err := s.authorizeList(ctx, listID, actorID)
	if err != nil {
		return nil, err
	}

	card, err := newCard(actorID, input)
	if err != nil {
		return nil, err
	}
	card.BoardID = board.ID
	card.ListID = list.ID

	if err := s.store.InsertCard(ctx, card); err != nil {
		return nil, err
	}

	list.CardOrderIDs = ordering.Append(list.CardOrderIDs, card.ID)
	list.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateList(ctx, list); err != nil {
		return nil, err
	}

	s.indexCard(card, board.OwnerID)
	return cardPayload(card), nil
}

// CreateStandaloneCard creates a card outside any board. The creator becomes
// a member; membership is the only ownership a standalone card has.
func (s *Service) CreateStandaloneCard(ctx context.Context, actorID string, input CreateCardInput) (map[string]any, error) {
	card, err := newCard(actorID, input)
	if err != nil {
		return nil, err
	}
	card.MemberIDs = ordering.Append(card.MemberIDs, actorID)

	if err := s.store.InsertCard(ctx, card); err != nil {
		return nil, err
	}
	s.indexCard(card, "")
	return cardPayload(card), nil
}

func newCard(actorID string, input CreateCardInput) (store.Card, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return store.Card{}, errValidation("title is required")
	}
	labels := input.Labels
	if labels == nil {
		labels = []string{}
	}
	members := input.MemberIDs
	if members == nil {
		members = []string{}
	}
	return store.Card{
		ID:          util.NewID("crd"),
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Cover:       strings.TrimSpace(input.Cover),
		Labels:      labels,
		MemberIDs:   members,
		StartDate:   input.StartDate,
		DueDate:     input.DueDate,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}, nil
}

// ListMemberCards returns every card the actor is a member of, standalone
// cards included.
func (s *Service) ListMemberCards(ctx context.Context, actorID string) ([]map[string]any, error) {
	cards, err := s.store.ListCardsByMember(ctx, actorID)
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, 0, len(cards))
	for _, card := range cards {
		items = append(items, cardPayload(card))
	}
	return items, nil
}

func (s *Service) GetCard(ctx context.Context, actorID, cardID string) (map[string]any, error) {
	card, err := s.authorizeCard(ctx, cardID, actorID)
	if err != nil {
		return nil, err
	}
	return cardPayload(card), nil
}

func (s *Service) UpdateCard(ctx context.Context, actorID, cardID string, input UpdateCardInput) (map[string]any, error) {
	card, err := s.authorizeCard(ctx, cardID, actorID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, errValidation("title cannot be empty")
		}
		card.Title = title
	}
	if input.Description != nil {
		card.Description = strings.TrimSpace(*input.Description)
	}
	if input.Cover != nil {
		card.Cover = strings.TrimSpace(*input.Cover)
	}
	if input.Labels != nil {
		card.Labels = input.Labels
	}
	if input.MemberIDs != nil {
		card.MemberIDs = input.MemberIDs
	}
	if input.StartDate != nil {
		card.StartDate = input.StartDate
	}
	if input.DueDate != nil {
		card.DueDate = input.DueDate
	}
	if input.IsCompleted != nil {
		card.IsCompleted = *input.IsCompleted
	}
	card.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateCard(ctx, card); err != nil {
		return nil, err
	}
	s.indexCard(card, s.cardOwner(ctx, card))
	return cardPayload(card), nil
}

// MoveCard relocates a card within its board: out of the source list's order,
// into the target list's order at a clamped position, then the card's own
// list reference. Removal always precedes insertion so a same-list move
// computes the clamp bound against the shrunk array. Cross-board targets are
// rejected before any write.
func (s *Service) MoveCard(ctx context.Context, actorID, cardID string, input MoveCardInput) (map[string]any, error) {
	card, err := s.authorizeCard(ctx, cardID, actorID)
	if err != nil {
		return nil, err
	}
	if card.ListID == "" {
		return nil, errInvalidArgument("Card is not in a list", nil)
	}

	source, _, err := s.authorizeList(ctx, card.ListID, actorID)
	if err != nil {
		return nil, err
	}
	target, _, err := s.authorizeList(ctx, input.TargetListID, actorID)
	if err != nil {
		return nil, err
	}

	if target.BoardID != card.BoardID {
		return nil, errInvalidArgument("Cannot move a card to a list on another board",
			map[string]any{"code": "CROSS_BOARD_MOVE"})
	}

	if err := guardStoredOrder(source.CardOrderIDs, "list "+source.ID+" cardOrderIds"); err != nil {
		return nil, err
	}
	if err := guardStoredOrder(target.CardOrderIDs, "list "+target.ID+" cardOrderIds"); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if source.ID == target.ID {
		source.CardOrderIDs = ordering.InsertAt(ordering.Remove(source.CardOrderIDs, card.ID), card.ID, input.Index)
		source.UpdatedAt = now
		if err := s.store.UpdateList(ctx, source); err != nil {
			return nil, err
		}
		return cardPayload(card), nil
	}

	source.CardOrderIDs = ordering.Remove(source.CardOrderIDs, card.ID)
	source.UpdatedAt = now
	if err := s.store.UpdateList(ctx, source); err != nil {
		return nil, err
	}

	target.CardOrderIDs = ordering.InsertAt(target.CardOrderIDs, card.ID, input.Index)
	target.UpdatedAt = now
	if err := s.store.UpdateList(ctx, target); err != nil {
		return nil, err
	}

	card.ListID = target.ID
	card.UpdatedAt = now
	if err := s.store.UpdateCard(ctx, card); err != nil {
		return nil, err
	}
	return cardPayload(card), nil
}

// DeleteCard removes the card and, for listed cards, its entry in the list's
// cardOrderIds.
func (s *Service) DeleteCard(ctx context.Context, actorID, cardID string) error {
	card, err := s.authorizeCard(ctx, cardID, actorID)
	if err != nil {
		return err
	}

	// Unlist first, delete second: a retry after a partial failure still finds
	// the card and the removal is an idempotent no-op.
	if card.ListID != "" {
		list, err := s.store.GetList(ctx, card.ListID)
		if err == nil {
			list.CardOrderIDs = ordering.Remove(list.CardOrderIDs, cardID)
			list.UpdatedAt = time.Now().UTC()
			if err := s.store.UpdateList(ctx, list); err != nil {
				return err
			}
		}
	}

	if err := s.store.DeleteCard(ctx, cardID); err != nil {
		return err
	}

	if s.search != nil {
		s.search.DeleteCard(cardID)
	}
	return nil
}

// cardOwner resolves the owning board's owner for search scoping; "" for
// standalone cards.
func (s *Service) cardOwner(ctx context.Context, card store.Card) string {
	if card.BoardID == "" {
		return ""
	}
	board, err := s.store.GetBoard(ctx, card.BoardID)
	if err != nil {
		return ""
	}
	return board.OwnerID
}

func (s *Service) indexCard(card store.Card, ownerID string) {
	if s.search == nil {
		return
	}
	s.search.IndexCard(search.CardRecord{
		ID:          card.ID,
		Title:       card.Title,
		Description: card.Description,
		Labels:      card.Labels,
		BoardID:     card.BoardID,
		ListID:      card.ListID,
		OwnerID:     ownerID,
		MemberIDs:   card.MemberIDs,
	})
}

func cardPayload(card store.Card) map[string]any {
	return map[string]any{
		"id":          card.ID,
		"title":       card.Title,
		"description": card.Description,
		"cover":       card.Cover,
		"boardId":     card.BoardID,
		"listId":      card.ListID,
		"memberIds":   card.MemberIDs,
		"labels":      card.Labels,
		"startDate":   card.StartDate,
		"dueDate":     card.DueDate,
		"isCompleted": card.IsCompleted,
		"createdAt":   card.CreatedAt,
		"updatedAt":   card.UpdatedAt,
	}
}
