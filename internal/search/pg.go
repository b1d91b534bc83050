package search

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

// Pg implements Searcher with plain ILIKE queries against Postgres as a
// fallback when Meilisearch is unavailable.
type Pg struct {
	db *sql.DB
}

// NewPg creates a Postgres-backed searcher.
func NewPg(db *sql.DB) *Pg {
	return &Pg{db: db}
}

// Healthy always returns true: if Postgres is down, the whole app is down.
func (p *Pg) Healthy() bool {
	return true
}

// Search runs a UNION ALL over boards and cards, scoped to the actor. Boards
// match when the actor owns them; cards when the actor owns the parent board
// or appears in member_ids.
func (p *Pg) Search(q Query) ([]Result, int, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, 0, nil
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	var subQueries []string

	if q.FilterType == "" || q.FilterType == ResultBoard {
		subQueries = append(subQueries, `
			SELECT 'board'::text AS type, b.id, b.title, b.description AS snippet,
				''::text AS board_id, ''::text AS list_id
			FROM boards b
			WHERE b.owner_id = $2
			  AND (b.title ILIKE '%' || $1 || '%' OR b.description ILIKE '%' || $1 || '%')`)
	}

	if q.FilterType == "" || q.FilterType == ResultCard {
		subQueries = append(subQueries, `
			SELECT 'card'::text AS type, c.id, c.title, c.description AS snippet,
				c.board_id, c.list_id
			FROM cards c
			WHERE (c.member_ids ? $2
			       OR EXISTS (SELECT 1 FROM boards b WHERE b.id = c.board_id AND b.owner_id = $2))
			  AND (c.title ILIKE '%' || $1 || '%'
			       OR c.description ILIKE '%' || $1 || '%'
			       OR c.labels::text ILIKE '%' || $1 || '%')`)
	}

	if len(subQueries) == 0 {
		return nil, 0, nil
	}

	union := strings.Join(subQueries, " UNION ALL ")
	countSQL := fmt.Sprintf("SELECT count(*) FROM (%s) sub", union)
	dataSQL := fmt.Sprintf(`SELECT type, id, title, snippet, board_id, list_id
		FROM (%s) sub
		ORDER BY title
		LIMIT %d OFFSET %d`, union, limit, offset)

	ctx := context.Background()
	args := []any{q.Text, q.ActorID}

	var total int
	if err := p.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pg search count: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, dataSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pg search query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var typ string
		if err := rows.Scan(&typ, &r.ID, &r.Title, &r.Snippet, &r.BoardID, &r.ListID); err != nil {
			return nil, 0, fmt.Errorf("pg search scan: %w", err)
		}
		r.Type = ResultType(typ)
		results = append(results, r)
	}

	return results, total, rows.Err()
}

// LoadAllRecords returns all searchable records for full reindexing.
func (p *Pg) LoadAllRecords(ctx context.Context) ([]BoardRecord, []CardRecord, error) {
	boardRows, err := p.db.QueryContext(ctx, `
		SELECT id, title, description, owner_id FROM boards
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("load boards: %w", err)
	}
	defer boardRows.Close()

	boards := make([]BoardRecord, 0)
	owners := make(map[string]string)
	for boardRows.Next() {
		var b BoardRecord
		if err := boardRows.Scan(&b.ID, &b.Title, &b.Description, &b.OwnerID); err != nil {
			return nil, nil, fmt.Errorf("scan board: %w", err)
		}
		owners[b.ID] = b.OwnerID
		boards = append(boards, b)
	}
	if err := boardRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate boards: %w", err)
	}

	cardRows, err := p.db.QueryContext(ctx, `
		SELECT id, title, description, labels, board_id, list_id, member_ids FROM cards
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("load cards: %w", err)
	}
	defer cardRows.Close()

	cards := make([]CardRecord, 0)
	for cardRows.Next() {
		var c CardRecord
		var labels, members []byte
		if err := cardRows.Scan(&c.ID, &c.Title, &c.Description, &labels, &c.BoardID, &c.ListID, &members); err != nil {
			return nil, nil, fmt.Errorf("scan card: %w", err)
		}
		c.Labels = decodeJSONStrings(labels)
		c.MemberIDs = decodeJSONStrings(members)
		c.OwnerID = owners[c.BoardID]
		cards = append(cards, c)
	}
	if err := cardRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate cards: %w", err)
	}

	return boards, cards, nil
}

func decodeJSONStrings(raw []byte) []string {
	out := []string{}
	_ = json.Unmarshal(raw, &out)
	return out
}
