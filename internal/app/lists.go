package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"taskboard/api/internal/ordering"
	"taskboard/api/internal/store"
	"taskboard/api/internal/util"
)

type CreateListInput struct {
	Title string `json:"title"`
}

type UpdateListInput struct {
	Title *string `json:"title"`
}

// CreateList appends a new list to the board and to the board's listOrderIds.
func (s *Service) CreateList(ctx context.Context, actorID, boardID string, input CreateListInput) (map[string]any, error) {
	board, err := s.authorizeBoard(ctx, boardID, actorID)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, errValidation("title is required")
	}

	list := store.TaskList{
		ID:           util.NewID("lst"),
		Title:        title,
		BoardID:      board.ID,
		CardOrderIDs: []string{},
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	if err := s.store.InsertList(ctx, list); err != nil {
		return nil, err
	}

	board.ListOrderIDs = ordering.Append(board.ListOrderIDs, list.ID)
	board.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateBoard(ctx, board); err != nil {
		return nil, err
	}

	return listSummary(list), nil
}

func (s *Service) GetList(ctx context.Context, actorID, listID string) (map[string]any, error) {
	list, _, err := s.authorizeList(ctx, listID, actorID)
	if err != nil {
		return nil, err
	}

	cards, err := s.store.ListCardsByList(ctx, listID)
	if err != nil {
		return nil, err
	}
	cardsByID := make(map[string]store.Card, len(cards))
	for _, card := range cards {
		cardsByID[card.ID] = card
	}

	projected := make([]map[string]any, 0, len(list.CardOrderIDs))
	for _, cardID := range list.CardOrderIDs {
		card, ok := cardsByID[cardID]
		if !ok {
			continue
		}
		projected = append(projected, cardPayload(card))
	}

	payload := listSummary(list)
	payload["cards"] = projected
	return payload, nil
}

func (s *Service) UpdateList(ctx context.Context, actorID, listID string, input UpdateListInput) (map[string]any, error) {
	list, _, err := s.authorizeList(ctx, listID, actorID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, errValidation("title cannot be empty")
		}
		list.Title = title
	}
	list.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateList(ctx, list); err != nil {
		return nil, err
	}
	return listSummary(list), nil
}

// ReorderCards replaces the list's card order wholesale. The payload must be
// a permutation of the list's live cards.
func (s *Service) ReorderCards(ctx context.Context, actorID, listID string, order []string) (map[string]any, error) {
	list, _, err := s.authorizeList(ctx, listID, actorID)
	if err != nil {
		return nil, err
	}
	if err := guardStoredOrder(list.CardOrderIDs, "list "+list.ID+" cardOrderIds"); err != nil {
		return nil, err
	}

	cards, err := s.store.ListCardsByList(ctx, listID)
	if err != nil {
		return nil, err
	}
	live := make([]string, 0, len(cards))
	for _, card := range cards {
		live = append(live, card.ID)
	}

	next, err := ordering.Replace(live, order)
	if errors.Is(err, ordering.ErrNotPermutation) {
		return nil, errInvalidArgument(err.Error(), nil)
	}
	if err != nil {
		return nil, err
	}

	list.CardOrderIDs = next
	list.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateList(ctx, list); err != nil {
		return nil, err
	}
	return listSummary(list), nil
}

// DeleteList cascades to the list's cards and removes the list from the
// board's listOrderIds. Removal from the order array is idempotent, so a
// retried delete converges.
func (s *Service) DeleteList(ctx context.Context, actorID, listID string) error {
	_, board, err := s.authorizeList(ctx, listID, actorID)
	if err != nil {
		return err
	}

	cards, err := s.store.ListCardsByList(ctx, listID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteCardsByList(ctx, listID); err != nil {
		return err
	}
	if err := s.store.DeleteList(ctx, listID); err != nil {
		return err
	}

	board.ListOrderIDs = ordering.Remove(board.ListOrderIDs, listID)
	board.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateBoard(ctx, board); err != nil {
		return err
	}

	if s.search != nil {
		for _, card := range cards {
			s.search.DeleteCard(card.ID)
		}
	}
	return nil
}

func listSummary(list store.TaskList) map[string]any {
	return map[string]any{
		"id":           list.ID,
		"title":        list.Title,
		"boardId":      list.BoardID,
		"cardOrderIds": list.CardOrderIDs,
		"createdAt":    list.CreatedAt,
		"updatedAt":    list.UpdatedAt,
	}
}
