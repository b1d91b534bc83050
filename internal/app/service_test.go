package app

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"taskboard/api/internal/config"
	"taskboard/api/internal/store"
)

// fakeStore is a map-backed dataStore. Sequenced writes (move, cascade
// delete) land here exactly as they would in Postgres, so tests can assert on
// the intermediate state the service leaves behind.
type fakeStore struct {
	users       map[string]store.User
	boards      map[string]store.Board
	lists       map[string]store.TaskList
	cards       map[string]store.Card
	messages    map[string]store.Message
	friendships map[string]store.Friendship
	ideas       map[string]store.Idea
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:       map[string]store.User{},
		boards:      map[string]store.Board{},
		lists:       map[string]store.TaskList{},
		cards:       map[string]store.Card{},
		messages:    map[string]store.Message{},
		friendships: map[string]store.Friendship{},
		ideas:       map[string]store.Idea{},
	}
}

func (f *fakeStore) GetUserByID(_ context.Context, id string) (store.User, error) {
	user, ok := f.users[id]
	if !ok {
		return store.User{}, sql.ErrNoRows
	}
	return user, nil
}

func (f *fakeStore) SearchUsers(_ context.Context, query string) ([]store.User, error) {
	query = strings.ToLower(query)
	var out []store.User
	for _, user := range f.users {
		if strings.Contains(strings.ToLower(user.DisplayName), query) ||
			strings.Contains(strings.ToLower(user.Email), query) {
			out = append(out, user)
		}
	}
	return out, nil
}

func (f *fakeStore) InsertBoard(_ context.Context, b store.Board) error {
	f.boards[b.ID] = b
	return nil
}

func (f *fakeStore) GetBoard(_ context.Context, id string) (store.Board, error) {
	board, ok := f.boards[id]
	if !ok {
		return store.Board{}, sql.ErrNoRows
	}
	return board, nil
}

func (f *fakeStore) ListBoardsByOwner(_ context.Context, ownerID string) ([]store.Board, error) {
	var out []store.Board
	for _, board := range f.boards {
		if board.OwnerID == ownerID {
			out = append(out, board)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) UpdateBoard(_ context.Context, b store.Board) error {
	if _, ok := f.boards[b.ID]; !ok {
		return sql.ErrNoRows
	}
	f.boards[b.ID] = b
	return nil
}

func (f *fakeStore) DeleteBoard(_ context.Context, id string) error {
	delete(f.boards, id)
	return nil
}

func (f *fakeStore) InsertList(_ context.Context, l store.TaskList) error {
	f.lists[l.ID] = l
	return nil
}

func (f *fakeStore) GetList(_ context.Context, id string) (store.TaskList, error) {
	list, ok := f.lists[id]
	if !ok {
		return store.TaskList{}, sql.ErrNoRows
	}
	return list, nil
}

func (f *fakeStore) ListListsByBoard(_ context.Context, boardID string) ([]store.TaskList, error) {
	var out []store.TaskList
	for _, list := range f.lists {
		if list.BoardID == boardID {
			out = append(out, list)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) UpdateList(_ context.Context, l store.TaskList) error {
	if _, ok := f.lists[l.ID]; !ok {
		return sql.ErrNoRows
	}
	f.lists[l.ID] = l
	return nil
}

func (f *fakeStore) DeleteList(_ context.Context, id string) error {
	delete(f.lists, id)
	return nil
}

func (f *fakeStore) DeleteListsByBoard(_ context.Context, boardID string) error {
	for id, list := range f.lists {
		if list.BoardID == boardID {
			delete(f.lists, id)
		}
	}
	return nil
}

func (f *fakeStore) InsertCard(_ context.Context, c store.Card) error {
	f.cards[c.ID] = c
	return nil
}

func (f *fakeStore) GetCard(_ context.Context, id string) (store.Card, error) {
	card, ok := f.cards[id]
	if !ok {
		return store.Card{}, sql.ErrNoRows
	}
	return card, nil
}

func (f *fakeStore) ListCardsByBoard(_ context.Context, boardID string) ([]store.Card, error) {
	var out []store.Card
	for _, card := range f.cards {
		if card.BoardID == boardID {
			out = append(out, card)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) ListCardsByList(_ context.Context, listID string) ([]store.Card, error) {
	var out []store.Card
	for _, card := range f.cards {
		if card.ListID == listID {
			out = append(out, card)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) ListCardsByMember(_ context.Context, userID string) ([]store.Card, error) {
	var out []store.Card
	for _, card := range f.cards {
		for _, member := range card.MemberIDs {
			if member == userID {
				out = append(out, card)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) UpdateCard(_ context.Context, c store.Card) error {
	if _, ok := f.cards[c.ID]; !ok {
		return sql.ErrNoRows
	}
	f.cards[c.ID] = c
	return nil
}

func (f *fakeStore) DeleteCard(_ context.Context, id string) error {
	delete(f.cards, id)
	return nil
}

func (f *fakeStore) DeleteCardsByBoard(_ context.Context, boardID string) error {
	for id, card := range f.cards {
		if card.BoardID == boardID {
			delete(f.cards, id)
		}
	}
	return nil
}

func (f *fakeStore) DeleteCardsByList(_ context.Context, listID string) error {
	for id, card := range f.cards {
		if card.ListID == listID {
			delete(f.cards, id)
		}
	}
	return nil
}

func (f *fakeStore) InsertMessage(_ context.Context, m store.Message) error {
	f.messages[m.ID] = m
	return nil
}

func (f *fakeStore) GetMessage(_ context.Context, id string) (store.Message, error) {
	message, ok := f.messages[id]
	if !ok {
		return store.Message{}, sql.ErrNoRows
	}
	return message, nil
}

func (f *fakeStore) ListConversation(_ context.Context, a, b string) ([]store.Message, error) {
	var out []store.Message
	for _, message := range f.messages {
		if (message.SenderID == a && message.ReceiverID == b) ||
			(message.SenderID == b && message.ReceiverID == a) {
			out = append(out, message)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) ListMessagesByUser(_ context.Context, userID string) ([]store.Message, error) {
	var out []store.Message
	for _, message := range f.messages {
		if message.SenderID == userID || message.ReceiverID == userID {
			out = append(out, message)
		}
	}
	return out, nil
}

func (f *fakeStore) MarkMessageRead(_ context.Context, id string) error {
	message, ok := f.messages[id]
	if !ok {
		return sql.ErrNoRows
	}
	message.IsRead = true
	f.messages[id] = message
	return nil
}

func (f *fakeStore) CountUnreadMessages(_ context.Context, userID string) (int, error) {
	count := 0
	for _, message := range f.messages {
		if message.ReceiverID == userID && !message.IsRead {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) DeleteMessage(_ context.Context, id string) error {
	delete(f.messages, id)
	return nil
}

func (f *fakeStore) InsertFriendship(_ context.Context, fr store.Friendship) error {
	f.friendships[fr.ID] = fr
	return nil
}

func (f *fakeStore) GetFriendship(_ context.Context, id string) (store.Friendship, error) {
	friendship, ok := f.friendships[id]
	if !ok {
		return store.Friendship{}, sql.ErrNoRows
	}
	return friendship, nil
}

func (f *fakeStore) GetFriendshipBetween(_ context.Context, userID, friendID string) (store.Friendship, error) {
	for _, friendship := range f.friendships {
		if friendship.UserID == userID && friendship.FriendID == friendID {
			return friendship, nil
		}
	}
	return store.Friendship{}, sql.ErrNoRows
}

func (f *fakeStore) UpdateFriendshipStatus(_ context.Context, id, status string) error {
	friendship, ok := f.friendships[id]
	if !ok {
		return sql.ErrNoRows
	}
	friendship.Status = status
	f.friendships[id] = friendship
	return nil
}

func (f *fakeStore) DeleteFriendship(_ context.Context, id string) error {
	delete(f.friendships, id)
	return nil
}

func (f *fakeStore) ListFriendshipsByUser(_ context.Context, userID, status string) ([]store.Friendship, error) {
	var out []store.Friendship
	for _, friendship := range f.friendships {
		if friendship.UserID == userID && friendship.Status == status {
			out = append(out, friendship)
		}
	}
	return out, nil
}

func (f *fakeStore) ListFriendshipsByFriend(_ context.Context, friendID, status string) ([]store.Friendship, error) {
	var out []store.Friendship
	for _, friendship := range f.friendships {
		if friendship.FriendID == friendID && friendship.Status == status {
			out = append(out, friendship)
		}
	}
	return out, nil
}

func (f *fakeStore) InsertIdea(_ context.Context, i store.Idea) error {
	f.ideas[i.ID] = i
	return nil
}

func (f *fakeStore) GetIdea(_ context.Context, id string) (store.Idea, error) {
	idea, ok := f.ideas[id]
	if !ok {
		return store.Idea{}, sql.ErrNoRows
	}
	return idea, nil
}

func (f *fakeStore) ListIdeas(_ context.Context) ([]store.Idea, error) {
	var out []store.Idea
	for _, idea := range f.ideas {
		out = append(out, idea)
	}
	return out, nil
}

func (f *fakeStore) ListIdeasByUser(_ context.Context, userID string) ([]store.Idea, error) {
	var out []store.Idea
	for _, idea := range f.ideas {
		if idea.UserID == userID {
			out = append(out, idea)
		}
	}
	return out, nil
}

func (f *fakeStore) ListApprovedIdeas(_ context.Context) ([]store.Idea, error) {
	var out []store.Idea
	for _, idea := range f.ideas {
		if idea.IsApproved {
			out = append(out, idea)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateIdea(_ context.Context, i store.Idea) error {
	if _, ok := f.ideas[i.ID]; !ok {
		return sql.ErrNoRows
	}
	f.ideas[i.ID] = i
	return nil
}

func (f *fakeStore) DeleteIdea(_ context.Context, id string) error {
	delete(f.ideas, id)
	return nil
}

func (f *fakeStore) Ping(context.Context) error { return nil }

type fakeSessions struct {
	tokens map[string]string
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{tokens: map[string]string{}}
}

func (f *fakeSessions) SaveRefreshSession(_ context.Context, tokenHash, userID string, _ time.Time) error {
	f.tokens[tokenHash] = userID
	return nil
}

func (f *fakeSessions) LookupRefreshSession(_ context.Context, tokenHash string) (string, error) {
	userID, ok := f.tokens[tokenHash]
	if !ok {
		return "", errors.New("refresh session not found")
	}
	return userID, nil
}

func (f *fakeSessions) RevokeRefreshSession(_ context.Context, tokenHash string) error {
	delete(f.tokens, tokenHash)
	return nil
}

func newTestService(f *fakeStore) *Service {
	return &Service{
		cfg: config.Config{
			JWTSecret:  "test-secret",
			AccessTTL:  time.Minute,
			RefreshTTL: time.Hour,
		},
		store:    f,
		sessions: newFakeSessions(),
	}
}

func seedUser(f *fakeStore, id, name string) {
	f.users[id] = store.User{
		ID:          id,
		Email:       id + "@example.com",
		DisplayName: name,
		IsActive:    true,
	}
}

// seedBoard builds a board with two lists of two cards each and consistent
// order arrays.
func seedBoard(f *fakeStore, owner string) (boardID string, listIDs []string, cardIDs []string) {
	boardID = "brd_1"
	listIDs = []string{"lst_a", "lst_b"}
	cardIDs = []string{"crd_1", "crd_2", "crd_3", "crd_4"}

	f.boards[boardID] = store.Board{
		ID:           boardID,
		Title:        "Roadmap",
		OwnerID:      owner,
		ListOrderIDs: []string{"lst_a", "lst_b"},
	}
	f.lists["lst_a"] = store.TaskList{
		ID: "lst_a", Title: "Todo", BoardID: boardID,
		CardOrderIDs: []string{"crd_1", "crd_2"},
	}
	f.lists["lst_b"] = store.TaskList{
		ID: "lst_b", Title: "Done", BoardID: boardID,
		CardOrderIDs: []string{"crd_3", "crd_4"},
	}
	for i, id := range cardIDs {
		listID := "lst_a"
		if i >= 2 {
			listID = "lst_b"
		}
		f.cards[id] = store.Card{
			ID: id, Title: "Card " + id, BoardID: boardID, ListID: listID,
			MemberIDs: []string{}, Labels: []string{},
		}
	}
	return boardID, listIDs, cardIDs
}

func assertDomainCode(t *testing.T, err error, code string) *DomainError {
	t.Helper()
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected DomainError, got %v", err)
	}
	if domainErr.Code != code {
		t.Fatalf("expected code %s, got %s (%s)", code, domainErr.Code, domainErr.Message)
	}
	return domainErr
}

func TestGetBoardProjectsOrderArrays(t *testing.T) {
	f := newFakeStore()
	seedUser(f, "usr_o", "Owner")
	boardID, _, _ := seedBoard(f, "usr_o")
	svc := newTestService(f)

	// Reverse the stored list order; the projection must follow it.
	board := f.boards[boardID]
	board.ListOrderIDs = []string{"lst_b", "lst_a"}
	f.boards[boardID] = board

	payload, err := svc.GetBoard(context.Background(), "usr_o", boardID)
	if err != nil {
		t.Fatalf("GetBoard: %v", err)
	}
	lists := payload["lists"].([]map[string]any)
	if len(lists) != 2 {
		t.Fatalf("expected 2 lists, got %d", len(lists))
	}
	if lists[0]["id"] != "lst_b" || lists[1]["id"] != "lst_a" {
		t.Fatalf("lists not in listOrderIds order: %v, %v", lists[0]["id"], lists[1]["id"])
	}
	cards := lists[1]["cards"].([]map[string]any)
	if cards[0]["id"] != "crd_1" || cards[1]["id"] != "crd_2" {
		t.Fatalf("cards not in cardOrderIds order")
	}
}

func TestGetBoardSkipsDanglingOrderEntries(t *testing.T) {
	f := newFakeStore()
	seedUser(f, "usr_o", "Owner")
	boardID, _, _ := seedBoard(f, "usr_o")
	svc := newTestService(f)

	board := f.boards[boardID]
	board.ListOrderIDs = []string{"lst_a", "lst_gone", "lst_b"}
	f.boards[boardID] = board

	payload, err := svc.GetBoard(context.Background(), "usr_o", boardID)
	if err != nil {
		t.Fatalf("GetBoard: %v", err)
	}
	lists := payload["lists"].([]map[string]any)
	if len(lists) != 2 {
		t.Fatalf("dangling id should be skipped, got %d lists", len(lists))
	}
}

func TestBoardAccessByNonOwner(t *testing.T) {
	f := newFakeStore()
	seedUser(f, "usr_o", "Owner")
	seedUser(f, "usr_x", "Other")
	boardID, _, _ := seedBoard(f, "usr_o")
	svc := newTestService(f)

	if _, err := svc.GetBoard(context.Background(), "usr_x", boardID); err == nil {
		t.Fatal("expected error")
	} else {
		assertDomainCode(t, err, "FORBIDDEN")
	}

	if _, err := svc.StarBoard(context.Background(), "usr_x", boardID, true); err == nil {
		t.Fatal("expected error")
	} else {
		assertDomainCode(t, err, "FORBIDDEN")
	}
	if f.boards[boardID].IsStarred {
		t.Fatal("forbidden star must not write")
	}

	if _, err := svc.GetBoard(context.Background(), "usr_o", "brd_missing"); err == nil {
		t.Fatal("expected error")
	} else {
		assertDomainCode(t, err, "NOT_FOUND")
	}
}

func TestCreateListAppendsToBoardOrder(t *testing.T) {
	f := newFakeStore()
	seedUser(f, "usr_o", "Owner")
	boardID, _, _ := seedBoard(f, "usr_o")
	svc := newTestService(f)

	payload, err := svc.CreateList(context.Background(), "usr_o", boardID, CreateListInput{Title: "Doing"})
	if err != nil {
		t.Fatalf("CreateList: %v", err)
	}
	listID := payload["id"].(string)

	order := f.boards[boardID].ListOrderIDs
	if len(order) != 3 || order[2] != listID {
		t.Fatalf("new list must be appended to listOrderIds, got %v", order)
	}
}

func TestMoveCardAcrossLists(t *testing.T) {
	f := newFakeStore()
	seedUser(f, "usr_o", "Owner")
	_, _, _ = seedBoard(f, "usr_o")
	svc := newTestService(f)

	payload, err := svc.MoveCard(context.Background(), "usr_o", "crd_1", MoveCardInput{
		TargetListID: "lst_b",
		Index:        1,
	})
	if err != nil {
		t.Fatalf("MoveCard: %v", err)
	}
	if payload["listId"] != "lst_b" {
		t.Fatalf("card listId not updated: %v", payload["listId"])
	}

	source := f.lists["lst_a"].CardOrderIDs
	if len(source) != 1 || source[0] != "crd_2" {
		t.Fatalf("card not removed from source order: %v", source)
	}
	target := f.lists["lst_b"].CardOrderIDs
	want := []string{"crd_3", "crd_1", "crd_4"}
	for i, id := range want {
		if target[i] != id {
			t.Fatalf("target order %v, want %v", target, want)
		}
	}
	if f.cards["crd_1"].ListID != "lst_b" {
		t.Fatal("stored card listId not updated")
	}
}

func TestMoveCardIntoEmptyList(t *testing.T) {
	f := newFakeStore()
	seedUser(f, "usr_o", "Owner")
	boardID, _, _ := seedBoard(f, "usr_o")
	f.lists["lst_c"] = store.TaskList{ID: "lst_c", Title: "Empty", BoardID: boardID, CardOrderIDs: []string{}}
	board := f.boards[boardID]
	board.ListOrderIDs = append(board.ListOrderIDs, "lst_c")
	f.boards[boardID] = board
	svc := newTestService(f)

	if _, err := svc.MoveCard(context.Background(), "usr_o", "crd_1", MoveCardInput{
		TargetListID: "lst_c",
		Index:        0,
	}); err != nil {
		t.Fatalf("MoveCard: %v", err)
	}
	if got := f.lists["lst_a"].CardOrderIDs; len(got) != 1 || got[0] != "crd_2" {
		t.Fatalf("source order = %v", got)
	}
	if got := f.lists["lst_c"].CardOrderIDs; len(got) != 1 || got[0] != "crd_1" {
		t.Fatalf("target order = %v", got)
	}
	if f.cards["crd_1"].ListID != "lst_c" {
		t.Fatal("card listId not updated")
	}
	if f.cards["crd_1"].BoardID != boardID {
		t.Fatal("boardId must be unchanged by a move")
	}
}

func TestListWithDanglingBoardIsNotFound(t *testing.T) {
	f := newFakeStore()
	seedUser(f, "usr_o", "Owner")
	f.lists["lst_orphan"] = store.TaskList{ID: "lst_orphan", Title: "Orphan", BoardID: "brd_gone", CardOrderIDs: []string{}}
	svc := newTestService(f)

	_, err := svc.GetList(context.Background(), "usr_o", "lst_orphan")
	assertDomainCode(t, err, "NOT_FOUND")
}

func TestMoveCardClampsIndex(t *testing.T) {
	f := newFakeStore()
	seedUser(f, "usr_o", "Owner")
	_, _, _ = seedBoard(f, "usr_o")
	svc := newTestService(f)

	if _, err := svc.MoveCard(context.Background(), "usr_o", "crd_1", MoveCardInput{
		TargetListID: "lst_b",
		Index:        99,
	}); err != nil {
		t.Fatalf("MoveCard: %v", err)
	}
	target := f.lists["lst_b"].CardOrderIDs
	if target[len(target)-1] != "crd_1" {
		t.Fatalf("oversized index must clamp to end, got %v", target)
	}

	if _, err := svc.MoveCard(context.Background(), "usr_o", "crd_2", MoveCardInput{
		TargetListID: "lst_a",
		Index:        -5,
	}); err != nil {
		t.Fatalf("MoveCard: %v", err)
	}
	if f.lists["lst_a"].CardOrderIDs[0] != "crd_2" {
		t.Fatal("negative index must clamp to front")
	}
}

func TestMoveCardWithinListRemovesBeforeInserting(t *testing.T) {
	f := newFakeStore()
	seedUser(f, "usr_o", "Owner")
	_, _, _ = seedBoard(f, "usr_o")
	svc := newTestService(f)

	// Moving the first of two cards to index 1 must land it at the end, since
	// the clamp bound is computed after removal.
	if _, err := svc.MoveCard(context.Background(), "usr_o", "crd_1", MoveCardInput{
		TargetListID: "lst_a",
		Index:        1,
	}); err != nil {
		t.Fatalf("MoveCard: %v", err)
	}
	order := f.lists["lst_a"].CardOrderIDs
	if len(order) != 2 || order[0] != "crd_2" || order[1] != "crd_1" {
		t.Fatalf("same-list move produced %v", order)
	}
}

func TestMoveCardCrossBoardRejected(t *testing.T) {
	f := newFakeStore()
	seedUser(f, "usr_o", "Owner")
	_, _, _ = seedBoard(f, "usr_o")
	f.boards["brd_2"] = store.Board{ID: "brd_2", Title: "Other", OwnerID: "usr_o", ListOrderIDs: []string{"lst_z"}}
	f.lists["lst_z"] = store.TaskList{ID: "lst_z", Title: "Inbox", BoardID: "brd_2", CardOrderIDs: []string{}}
	svc := newTestService(f)

	_, err := svc.MoveCard(context.Background(), "usr_o", "crd_1", MoveCardInput{
		TargetListID: "lst_z",
		Index:        0,
	})
	domainErr := assertDomainCode(t, err, "INVALID_ARGUMENT")
	details, ok := domainErr.Details.(map[string]any)
	if !ok || details["code"] != "CROSS_BOARD_MOVE" {
		t.Fatalf("expected CROSS_BOARD_MOVE details, got %v", domainErr.Details)
	}

	// Nothing may have been written.
	if len(f.lists["lst_a"].CardOrderIDs) != 2 {
		t.Fatal("source order mutated by rejected move")
	}
	if len(f.lists["lst_z"].CardOrderIDs) != 0 {
		t.Fatal("target order mutated by rejected move")
	}
	if f.cards["crd_1"].ListID != "lst_a" {
		t.Fatal("card mutated by rejected move")
	}
}

func TestReorderListsRejectsNonPermutation(t *testing.T) {
	f := newFakeStore()
	seedUser(f, "usr_o", "Owner")
	boardID, _, _ := seedBoard(f, "usr_o")
	svc := newTestService(f)

	_, err := svc.ReorderLists(context.Background(), "usr_o", boardID, []string{"lst_a"})
	assertDomainCode(t, err, "INVALID_ARGUMENT")

	_, err = svc.ReorderLists(context.Background(), "usr_o", boardID, []string{"lst_a", "lst_a"})
	assertDomainCode(t, err, "INVALID_ARGUMENT")

	payload, err := svc.ReorderLists(context.Background(), "usr_o", boardID, []string{"lst_b", "lst_a"})
	if err != nil {
		t.Fatalf("ReorderLists: %v", err)
	}
	order := payload["listOrderIds"].([]string)
	if order[0] != "lst_b" || order[1] != "lst_a" {
		t.Fatalf("reorder not applied: %v", order)
	}
}

func TestReorderRejectsCorruptStoredOrder(t *testing.T) {
	f := newFakeStore()
	seedUser(f, "usr_o", "Owner")
	boardID, _, _ := seedBoard(f, "usr_o")
	svc := newTestService(f)

	board := f.boards[boardID]
	board.ListOrderIDs = []string{"lst_a", "lst_a", "lst_b"}
	f.boards[boardID] = board

	_, err := svc.ReorderLists(context.Background(), "usr_o", boardID, []string{"lst_b", "lst_a"})
	assertDomainCode(t, err, "INVALID_STATE")

	// The corrupt array must not be repaired.
	if len(f.boards[boardID].ListOrderIDs) != 3 {
		t.Fatal("stored order must not be auto-repaired")
	}
}

func TestDeleteListCascades(t *testing.T) {
	f := newFakeStore()
	seedUser(f, "usr_o", "Owner")
	boardID, _, _ := seedBoard(f, "usr_o")
	svc := newTestService(f)

	if err := svc.DeleteList(context.Background(), "usr_o", "lst_a"); err != nil {
		t.Fatalf("DeleteList: %v", err)
	}
	if _, ok := f.lists["lst_a"]; ok {
		t.Fatal("list not deleted")
	}
	if _, ok := f.cards["crd_1"]; ok {
		t.Fatal("cards of deleted list must be deleted")
	}
	order := f.boards[boardID].ListOrderIDs
	if len(order) != 1 || order[0] != "lst_b" {
		t.Fatalf("list not removed from board order: %v", order)
	}
}

func TestDeleteBoardCascades(t *testing.T) {
	f := newFakeStore()
	seedUser(f, "usr_o", "Owner")
	boardID, _, _ := seedBoard(f, "usr_o")
	svc := newTestService(f)

	if err := svc.DeleteBoard(context.Background(), "usr_o", boardID); err != nil {
		t.Fatalf("DeleteBoard: %v", err)
	}
	if len(f.boards) != 0 || len(f.lists) != 0 || len(f.cards) != 0 {
		t.Fatalf("cascade incomplete: %d boards, %d lists, %d cards",
			len(f.boards), len(f.lists), len(f.cards))
	}
}

func TestStandaloneCardMembership(t *testing.T) {
	f := newFakeStore()
	seedUser(f, "usr_a", "Avery")
	seedUser(f, "usr_b", "Blake")
	svc := newTestService(f)

	payload, err := svc.CreateStandaloneCard(context.Background(), "usr_a", CreateCardInput{Title: "Groceries"})
	if err != nil {
		t.Fatalf("CreateStandaloneCard: %v", err)
	}
	cardID := payload["id"].(string)

	if _, err := svc.GetCard(context.Background(), "usr_a", cardID); err != nil {
		t.Fatalf("creator must be a member: %v", err)
	}
	_, err = svc.GetCard(context.Background(), "usr_b", cardID)
	assertDomainCode(t, err, "FORBIDDEN")
}

func TestSendCardMessageAddsReceiverToMembers(t *testing.T) {
	f := newFakeStore()
	seedUser(f, "usr_a", "Avery")
	seedUser(f, "usr_b", "Blake")
	svc := newTestService(f)

	payload, err := svc.CreateStandaloneCard(context.Background(), "usr_a", CreateCardInput{Title: "Trip plan"})
	if err != nil {
		t.Fatalf("CreateStandaloneCard: %v", err)
	}
	cardID := payload["id"].(string)

	if _, err := svc.SendMessage(context.Background(), "usr_a", SendMessageInput{
		ReceiverID: "usr_b",
		Type:       "CARD",
		CardID:     cardID,
	}); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	// Sharing the card grants the receiver access.
	if _, err := svc.GetCard(context.Background(), "usr_b", cardID); err != nil {
		t.Fatalf("receiver should be a member after card share: %v", err)
	}

	// Re-sharing must not duplicate the membership.
	if _, err := svc.SendMessage(context.Background(), "usr_a", SendMessageInput{
		ReceiverID: "usr_b",
		Type:       "CARD",
		CardID:     cardID,
	}); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	members := f.cards[cardID].MemberIDs
	count := 0
	for _, id := range members {
		if id == "usr_b" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("receiver appears %d times in memberIds", count)
	}
}

func TestConversationReadFlow(t *testing.T) {
	f := newFakeStore()
	seedUser(f, "usr_a", "Avery")
	seedUser(f, "usr_b", "Blake")
	svc := newTestService(f)

	for _, content := range []string{"hi", "are you there?"} {
		if _, err := svc.SendMessage(context.Background(), "usr_a", SendMessageInput{
			ReceiverID: "usr_b",
			Content:    content,
		}); err != nil {
			t.Fatalf("SendMessage: %v", err)
		}
	}

	count, err := svc.UnreadMessageCount(context.Background(), "usr_b")
	if err != nil || count != 2 {
		t.Fatalf("unread count = %d, err %v", count, err)
	}

	// Sender cannot mark the message read.
	messages, _ := svc.GetConversation(context.Background(), "usr_a", "usr_b")
	messageID := messages[0]["id"].(string)
	err = svc.MarkMessageRead(context.Background(), "usr_a", messageID)
	assertDomainCode(t, err, "FORBIDDEN")

	if err := svc.MarkConversationRead(context.Background(), "usr_b", "usr_a"); err != nil {
		t.Fatalf("MarkConversationRead: %v", err)
	}
	count, _ = svc.UnreadMessageCount(context.Background(), "usr_b")
	if count != 0 {
		t.Fatalf("unread count after read = %d", count)
	}
}

func TestFriendRequestFlow(t *testing.T) {
	f := newFakeStore()
	seedUser(f, "usr_a", "Avery")
	seedUser(f, "usr_b", "Blake")
	svc := newTestService(f)

	if _, err := svc.SendFriendRequest(context.Background(), "usr_a", "usr_a"); err == nil {
		t.Fatal("self-request must be rejected")
	}

	payload, err := svc.SendFriendRequest(context.Background(), "usr_a", "usr_b")
	if err != nil {
		t.Fatalf("SendFriendRequest: %v", err)
	}
	requestID := payload["id"].(string)

	// Duplicates in either direction are rejected.
	if _, err := svc.SendFriendRequest(context.Background(), "usr_a", "usr_b"); err == nil {
		t.Fatal("duplicate request must be rejected")
	}
	if _, err := svc.SendFriendRequest(context.Background(), "usr_b", "usr_a"); err == nil {
		t.Fatal("reverse duplicate must be rejected")
	}

	// Only the receiver can accept.
	_, err = svc.RespondToFriendRequest(context.Background(), "usr_a", requestID, store.FriendshipAccepted)
	assertDomainCode(t, err, "FORBIDDEN")

	if _, err := svc.RespondToFriendRequest(context.Background(), "usr_b", requestID, store.FriendshipAccepted); err != nil {
		t.Fatalf("accept: %v", err)
	}

	// Accepting twice fails: the request is no longer pending.
	if _, err := svc.RespondToFriendRequest(context.Background(), "usr_b", requestID, store.FriendshipAccepted); err == nil {
		t.Fatal("accepting a non-pending request must fail")
	}

	friends, err := svc.ListFriends(context.Background(), "usr_b")
	if err != nil || len(friends) != 1 {
		t.Fatalf("ListFriends = %d entries, err %v", len(friends), err)
	}
	if friends[0]["userId"] != "usr_a" {
		t.Fatalf("friend entry points at %v", friends[0]["userId"])
	}
}

func TestIdeaApprovalHasNoOwnershipCheck(t *testing.T) {
	f := newFakeStore()
	seedUser(f, "usr_a", "Avery")
	seedUser(f, "usr_b", "Blake")
	svc := newTestService(f)

	payload, err := svc.CreateIdea(context.Background(), "usr_a", IdeaInput{Title: "Dark mode"})
	if err != nil {
		t.Fatalf("CreateIdea: %v", err)
	}
	ideaID := payload["id"].(string)

	// Any signed-in user can approve.
	if _, err := svc.ApproveIdea(context.Background(), ideaID); err != nil {
		t.Fatalf("ApproveIdea: %v", err)
	}
	approved, _ := svc.ListApprovedIdeas(context.Background())
	if len(approved) != 1 {
		t.Fatalf("approved list has %d entries", len(approved))
	}

	// Update and delete stay owner-only.
	_, err = svc.UpdateIdea(context.Background(), "usr_b", ideaID, IdeaInput{Title: "Darker mode"})
	assertDomainCode(t, err, "FORBIDDEN")
	err = svc.DeleteIdea(context.Background(), "usr_b", ideaID)
	assertDomainCode(t, err, "FORBIDDEN")
}

func TestSessionLifecycle(t *testing.T) {
	f := newFakeStore()
	seedUser(f, "usr_a", "Avery")
	svc := newTestService(f)

	session, err := svc.CreateSession(context.Background(), "usr_a")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if session.Token == "" || session.RefreshToken == "" {
		t.Fatal("session missing tokens")
	}

	parsed, err := svc.SessionFromToken(context.Background(), session.Token)
	if err != nil {
		t.Fatalf("SessionFromToken: %v", err)
	}
	if parsed.UserID != "usr_a" || parsed.UserName != "Avery" {
		t.Fatalf("parsed session = %+v", parsed)
	}

	rotated, err := svc.Refresh(context.Background(), session.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if rotated.RefreshToken == session.RefreshToken {
		t.Fatal("refresh token must rotate")
	}
	// The old token is revoked.
	if _, err := svc.Refresh(context.Background(), session.RefreshToken); err == nil {
		t.Fatal("revoked refresh token must not work")
	}

	// Deactivated accounts lose access on the next call.
	user := f.users["usr_a"]
	user.IsActive = false
	f.users["usr_a"] = user
	if _, err := svc.SessionFromToken(context.Background(), rotated.Token); err == nil {
		t.Fatal("deactivated user must not authenticate")
	}
}
