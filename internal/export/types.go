// Package export renders a board to PDF or DOCX.
package export

import (
	"errors"
	"time"
)

// Format represents the export output format
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

// BoardData is the fully projected board handed to the exporter: lists in
// display order, each with its cards in display order.
type BoardData struct {
	Title       string
	Description string
	OwnerName   string
	UpdatedAt   time.Time
	Lists       []ListData
}

// ListData is one column of the board.
type ListData struct {
	Title string
	Cards []CardData
}

// CardData is one card within a list.
type CardData struct {
	Title       string
	Description string
	Labels      []string
	DueDate     *time.Time
	IsCompleted bool
}

// Result contains the export output
type Result struct {
	Data     []byte
	Filename string
	MimeType string
}

var (
	// ErrPDFDependencyMissing indicates PDF export runtime dependencies are unavailable.
	ErrPDFDependencyMissing = errors.New("export pdf dependency missing")
	// ErrDOCXDependencyMissing indicates DOCX export runtime dependencies are unavailable.
	ErrDOCXDependencyMissing = errors.New("export docx dependency missing")
)
