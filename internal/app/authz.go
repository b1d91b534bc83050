package app

import (
	"context"
	"database/sql"
	"errors"

	"taskboard/api/internal/ordering"
	"taskboard/api/internal/store"
)

// Authorization walks the ownership chain on every call: Card -> TaskList ->
// Board -> ownerId, or memberIds for standalone cards. Nothing is cached, so
// a move or an ownership change is reflected by the very next request. A
// missing link in the chain is NotFound; an intact chain ending at a different
// owner is Forbidden. Every mutating operation authorizes before its first
// write.

// authorizeBoard returns the board when actorID owns it.
func (s *Service) authorizeBoard(ctx context.Context, boardID, actorID string) (store.Board, error) {
	board, err := s.store.GetBoard(ctx, boardID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Board{}, errNotFound("Board not found")
	}
	if err != nil {
		return store.Board{}, err
	}
	if board.OwnerID != actorID {
		return store.Board{}, errForbidden("You do not own this board")
	}
	return board, nil
}

// authorizeList resolves the list's board and checks ownership. A list whose
// board has vanished is reported as missing, not forbidden.
func (s *Service) authorizeList(ctx context.Context, listID, actorID string) (store.TaskList, store.Board, error) {
	list, err := s.store.GetList(ctx, listID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.TaskList{}, store.Board{}, errNotFound("List not found")
	}
	if err != nil {
		return store.TaskList{}, store.Board{}, err
	}

	board, err := s.store.GetBoard(ctx, list.BoardID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.TaskList{}, store.Board{}, errNotFound("Board not found")
	}
	if err != nil {
		return store.TaskList{}, store.Board{}, err
	}
	if board.OwnerID != actorID {
		return store.TaskList{}, store.Board{}, errForbidden("You do not own this board")
	}
	return list, board, nil
}

// authorizeCard checks the actor against whichever chain the card is in:
// listed cards resolve through list and board to the owner, standalone cards
// are owned by their members.
func (s *Service) authorizeCard(ctx context.Context, cardID, actorID string) (store.Card, error) {
	card, err := s.store.GetCard(ctx, cardID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Card{}, errNotFound("Card not found")
	}
	if err != nil {
		return store.Card{}, err
	}

	if card.ListID != "" {
		if _, _, err := s.authorizeList(ctx, card.ListID, actorID); err != nil {
			return store.Card{}, err
		}
		return card, nil
	}

	// A card can carry a board reference without a list. Tolerated, resolved
	// through the board.
	if card.BoardID != "" {
		if _, err := s.authorizeBoard(ctx, card.BoardID, actorID); err != nil {
			return store.Card{}, err
		}
		return card, nil
	}

	if !ordering.Contains(card.MemberIDs, actorID) {
		return store.Card{}, errForbidden("You are not a member of this card")
	}
	return card, nil
}
