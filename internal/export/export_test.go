package export

import (
	"strings"
	"testing"
	"time"
)

func TestRenderBoardHTML(t *testing.T) {
	due := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	data := BoardData{
		Title:       "Launch Plan",
		Description: "Everything for the spring launch",
		OwnerName:   "Avery",
		UpdatedAt:   time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Lists: []ListData{
			{
				Title: "Doing",
				Cards: []CardData{
					{
						Title:       "Write copy",
						Description: "Landing page hero text",
						Labels:      []string{"marketing"},
						DueDate:     &due,
					},
					{Title: "Ship beta", IsCompleted: true},
				},
			},
			{Title: "Done"},
		},
	}

	html, err := RenderBoardHTML(data)
	if err != nil {
		t.Fatalf("RenderBoardHTML() error = %v", err)
	}

	for _, want := range []string{
		"Launch Plan",
		"Everything for the spring launch",
		"Doing",
		"Write copy",
		"Landing page hero text",
		"marketing",
		"Due Mar 14, 2026",
		"No cards",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("HTML missing %q", want)
		}
	}
}

func TestRenderBoardHTMLEscapesContent(t *testing.T) {
	data := BoardData{
		Title: "<script>alert(1)</script>",
		Lists: []ListData{},
	}
	html, err := RenderBoardHTML(data)
	if err != nil {
		t.Fatalf("RenderBoardHTML() error = %v", err)
	}
	if strings.Contains(html, "<script>alert(1)</script>") {
		t.Error("title was not escaped")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello World", "Hello-World"},
		{"My Board v1.2", "My-Board-v12"},
		{"Special!@#$%Chars", "SpecialChars"},
		{"", "board"},
		{"Very Long Title That Exceeds Fifty Characters Limit", "Very-Long-Title-That-Exceeds-Fifty-Characters-Limi"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := sanitizeFilename(tt.input)
			if result != tt.expected {
				t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestPercentEncodeForDataURL(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"hello world", "hello%20world"},
		{"test+sign", "test%2Bsign"},
		{"special<>", "special%3C%3E"},
		{"normal-text.txt", "normal-text.txt"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := percentEncodeForDataURL(tt.input)
			if result != tt.expected {
				t.Errorf("percentEncodeForDataURL(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}
