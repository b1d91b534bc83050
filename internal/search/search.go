package search

// ResultType identifies the kind of entity in a search result.
type ResultType string

const (
	ResultBoard ResultType = "board"
	ResultCard  ResultType = "card"
)

// Result is a single search hit returned to the caller.
type Result struct {
	Type    ResultType `json:"type"`
	ID      string     `json:"id"`
	Title   string     `json:"title"`
	Snippet string     `json:"snippet"`
	BoardID string     `json:"boardId,omitempty"`
	ListID  string     `json:"listId,omitempty"`
}

// Query describes a search request. ActorID scopes results to boards the
// caller owns and cards the caller is a member of.
type Query struct {
	Text       string
	ActorID    string
	FilterType ResultType // empty = all types
	Limit      int
	Offset     int
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// Searcher can execute a full-text search.
type Searcher interface {
	Search(q Query) ([]Result, int, error)
	Healthy() bool
}

// Indexer can push entities into a search index.
type Indexer interface {
	IndexBoard(b BoardRecord) error
	IndexCard(c CardRecord) error
	DeleteBoard(id string) error
	DeleteCard(id string) error
}

// BoardRecord is the data we index for a board.
type BoardRecord struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	OwnerID     string `json:"ownerId"`
}

// CardRecord is the data we index for a card. OwnerID is the owning board's
// owner at index time, "" for standalone cards.
type CardRecord struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Labels      []string `json:"labels"`
	BoardID     string   `json:"boardId"`
	ListID      string   `json:"listId"`
	OwnerID     string   `json:"ownerId"`
	MemberIDs   []string `json:"memberIds"`
}
