package app

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// SearchUsers finds active users by display name or email. The actor is
// excluded from the results.
func (s *Service) SearchUsers(ctx context.Context, actorID, query string) ([]map[string]any, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []map[string]any{}, nil
	}
	users, err := s.store.SearchUsers(ctx, query)
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, 0, len(users))
	for _, user := range users {
		if user.ID == actorID {
			continue
		}
		items = append(items, map[string]any{
			"id":          user.ID,
			"displayName": user.DisplayName,
			"email":       user.Email,
		})
	}
	return items, nil
}

// GetUser returns a public profile.
func (s *Service) GetUser(ctx context.Context, userID string) (map[string]any, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errNotFound("User not found")
	}
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"id":          user.ID,
		"displayName": user.DisplayName,
		"email":       user.Email,
		"createdAt":   user.CreatedAt,
	}, nil
}
