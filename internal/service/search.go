package service

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"techsupport/internal/models"
)

type SearchResult struct {
	Query     string            `json:"query"`
	Users     []models.User     `json:"users"`
	Computers []models.Computer `json:"computers"`
}

type SearchService struct {
	db *gorm.DB
}

func NewSearchService(db *gorm.DB) *SearchService {
	return &SearchService{db: db}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching q as a literal substring.
// Case is folded by the store on both sides of the comparison.
func containsPattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}

// Search matches users by full name or email and computers by computer_id,
// case-insensitively. An empty query matches everything.
func (s *SearchService) Search(ctx context.Context, q string) (*SearchResult, error) {
	pattern := containsPattern(q)
	res := &SearchResult{Query: q}

	db := s.db.WithContext(ctx)
	if err := db.
		Where(`LOWER(full_name) LIKE LOWER(?) ESCAPE '\' OR LOWER(email) LIKE LOWER(?) ESCAPE '\'`, pattern, pattern).
		Order("full_name asc, id asc").
		Find(&res.Users).Error; err != nil {
		return nil, err
	}
	if err := db.
		Preload("AssignedUser").
		Where(`LOWER(computer_id) LIKE LOWER(?) ESCAPE '\'`, pattern).
		Order("computer_id asc").
		Find(&res.Computers).Error; err != nil {
		return nil, err
	}
	return res, nil
}
