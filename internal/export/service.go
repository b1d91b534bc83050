package export

import (
	"context"
	"fmt"
)

// Service renders boards to downloadable files.
type Service struct{}

// NewService creates a new export service
func NewService() *Service {
	return &Service{}
}

// Export generates an export of the projected board in the requested format.
func (s *Service) Export(ctx context.Context, data BoardData, format Format) (*Result, error) {
	html, err := RenderBoardHTML(data)
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}

	switch format {
	case FormatPDF:
		return exportPDF(html, data.Title)
	case FormatDOCX:
		return exportDOCX(html, data.Title)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}
