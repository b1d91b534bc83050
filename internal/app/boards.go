package app

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"taskboard/api/internal/export"
	"taskboard/api/internal/ordering"
	"taskboard/api/internal/search"
	"taskboard/api/internal/store"
	"taskboard/api/internal/util"
)

type CreateBoardInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Background  string `json:"background"`
}

type UpdateBoardInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Background  *string `json:"background"`
}

func (s *Service) ListBoards(ctx context.Context, actorID string) ([]map[string]any, error) {
	boards, err := s.store.ListBoardsByOwner(ctx, actorID)
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, 0, len(boards))
	for _, board := range boards {
		items = append(items, boardSummary(board))
	}
	return items, nil
}

func (s *Service) CreateBoard(ctx context.Context, actorID string, input CreateBoardInput) (map[string]any, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, errValidation("title is required")
	}

	board := store.Board{
		ID:           util.NewID("brd"),
		Title:        title,
		Description:  strings.TrimSpace(input.Description),
		Background:   strings.TrimSpace(input.Background),
		OwnerID:      actorID,
		ListOrderIDs: []string{},
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	if err := s.store.InsertBoard(ctx, board); err != nil {
		return nil, err
	}
	s.indexBoard(board)
	return boardSummary(board), nil
}

// GetBoard returns the full aggregate: lists in listOrderIds order, each with
// its cards in cardOrderIds order. Ids in an order array with no live child
// are skipped rather than failing the read.
func (s *Service) GetBoard(ctx context.Context, actorID, boardID string) (map[string]any, error) {
	board, err := s.authorizeBoard(ctx, boardID, actorID)
	if err != nil {
		return nil, err
	}
	return s.projectBoard(ctx, board)
}

func (s *Service) UpdateBoard(ctx context.Context, actorID, boardID string, input UpdateBoardInput) (map[string]any, error) {
	board, err := s.authorizeBoard(ctx, boardID, actorID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, errValidation("title cannot be empty")
		}
		board.Title = title
	}
	if input.Description != nil {
		board.Description = strings.TrimSpace(*input.Description)
	}
	if input.Background != nil {
		board.Background = strings.TrimSpace(*input.Background)
	}
	board.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateBoard(ctx, board); err != nil {
		return nil, err
	}
	s.indexBoard(board)
	return boardSummary(board), nil
}

func (s *Service) StarBoard(ctx context.Context, actorID, boardID string, starred bool) (map[string]any, error) {
	board, err := s.authorizeBoard(ctx, boardID, actorID)
	if err != nil {
		return nil, err
	}
	board.IsStarred = starred
	board.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateBoard(ctx, board); err != nil {
		return nil, err
	}
	return boardSummary(board), nil
}

// ReorderLists replaces the board's list order wholesale. The payload must be
// a permutation of the board's live lists.
func (s *Service) ReorderLists(ctx context.Context, actorID, boardID string, order []string) (map[string]any, error) {
	board, err := s.authorizeBoard(ctx, boardID, actorID)
	if err != nil {
		return nil, err
	}
	if err := guardStoredOrder(board.ListOrderIDs, "board "+board.ID+" listOrderIds"); err != nil {
		return nil, err
	}

	lists, err := s.store.ListListsByBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	live := make([]string, 0, len(lists))
	for _, list := range lists {
		live = append(live, list.ID)
	}

	next, err := ordering.Replace(live, order)
	if errors.Is(err, ordering.ErrNotPermutation) {
		return nil, errInvalidArgument(err.Error(), nil)
	}
	if err != nil {
		return nil, err
	}

	board.ListOrderIDs = next
	board.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateBoard(ctx, board); err != nil {
		return nil, err
	}
	return boardSummary(board), nil
}

// DeleteBoard cascades: all cards on the board, then all lists, then the
// board itself. The writes are sequential; each step is idempotent so a retry
// after partial failure converges.
func (s *Service) DeleteBoard(ctx context.Context, actorID, boardID string) error {
	board, err := s.authorizeBoard(ctx, boardID, actorID)
	if err != nil {
		return err
	}

	cards, err := s.store.ListCardsByBoard(ctx, boardID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteCardsByBoard(ctx, boardID); err != nil {
		return err
	}
	if err := s.store.DeleteListsByBoard(ctx, boardID); err != nil {
		return err
	}
	if err := s.store.DeleteBoard(ctx, boardID); err != nil {
		return err
	}

	if s.search != nil {
		s.search.DeleteBoard(board.ID)
		for _, card := range cards {
			s.search.DeleteCard(card.ID)
		}
	}
	return nil
}

// ExportBoard renders the projected board to the requested format.
func (s *Service) ExportBoard(ctx context.Context, actorID, boardID string, format export.Format) (*export.Result, error) {
	board, err := s.authorizeBoard(ctx, boardID, actorID)
	if err != nil {
		return nil, err
	}
	if s.exporter == nil {
		return nil, errNotFound("Export not available")
	}

	owner, err := s.store.GetUserByID(ctx, board.OwnerID)
	if err != nil {
		return nil, err
	}

	lists, cardsByID, err := s.loadBoardChildren(ctx, board.ID)
	if err != nil {
		return nil, err
	}

	data := export.BoardData{
		Title:       board.Title,
		Description: board.Description,
		OwnerName:   owner.DisplayName,
		UpdatedAt:   board.UpdatedAt,
		Lists:       []export.ListData{},
	}
	for _, listID := range board.ListOrderIDs {
		list, ok := lists[listID]
		if !ok {
			continue
		}
		ld := export.ListData{Title: list.Title, Cards: []export.CardData{}}
		for _, cardID := range list.CardOrderIDs {
			card, ok := cardsByID[cardID]
			if !ok {
				continue
			}
			ld.Cards = append(ld.Cards, export.CardData{
				Title:       card.Title,
				Description: card.Description,
				Labels:      card.Labels,
				DueDate:     card.DueDate,
				IsCompleted: card.IsCompleted,
			})
		}
		data.Lists = append(data.Lists, ld)
	}

	return s.exporter.Export(ctx, data, format)
}

func (s *Service) loadBoardChildren(ctx context.Context, boardID string) (map[string]store.TaskList, map[string]store.Card, error) {
	lists, err := s.store.ListListsByBoard(ctx, boardID)
	if err != nil {
		return nil, nil, err
	}
	cards, err := s.store.ListCardsByBoard(ctx, boardID)
	if err != nil {
		return nil, nil, err
	}

	listsByID := make(map[string]store.TaskList, len(lists))
	for _, list := range lists {
		listsByID[list.ID] = list
	}
	cardsByID := make(map[string]store.Card, len(cards))
	for _, card := range cards {
		cardsByID[card.ID] = card
	}
	return listsByID, cardsByID, nil
}

func (s *Service) projectBoard(ctx context.Context, board store.Board) (map[string]any, error) {
	listsByID, cardsByID, err := s.loadBoardChildren(ctx, board.ID)
	if err != nil {
		return nil, err
	}

	projected := make([]map[string]any, 0, len(listsByID))
	for _, listID := range board.ListOrderIDs {
		list, ok := listsByID[listID]
		if !ok {
			continue
		}
		cards := make([]map[string]any, 0, len(list.CardOrderIDs))
		for _, cardID := range list.CardOrderIDs {
			card, ok := cardsByID[cardID]
			if !ok {
				continue
			}
			cards = append(cards, cardPayload(card))
		}
		payload := listSummary(list)
		payload["cards"] = cards
		projected = append(projected, payload)
	}

	payload := boardSummary(board)
	payload["lists"] = projected
	return payload, nil
}

func (s *Service) indexBoard(board store.Board) {
	if s.search == nil {
		return
	}
	s.search.IndexBoard(search.BoardRecord{
		ID:          board.ID,
		Title:       board.Title,
		Description: board.Description,
		OwnerID:     board.OwnerID,
	})
}

func boardSummary(board store.Board) map[string]any {
	return map[string]any{
		"id":           board.ID,
		"title":        board.Title,
		"description":  board.Description,
		"background":   board.Background,
		"ownerId":      board.OwnerID,
		"isStarred":    board.IsStarred,
		"listOrderIds": board.ListOrderIDs,
		"createdAt":    board.CreatedAt,
		"updatedAt":    board.UpdatedAt,
	}
}

// guardStoredOrder aborts an operation when a persisted order array carries a
// duplicate id. That state indicates a prior bug or external tampering, is
// logged, and is never repaired automatically.
func guardStoredOrder(order []string, what string) error {
	seen := make(map[string]bool, len(order))
	for _, id := range order {
		if seen[id] {
			log.Printf("ordering: duplicate id %q in %s", id, what)
			return errInvalidState("Stored order is corrupted")
		}
		seen[id] = true
	}
	return nil
}
