package db

import (
	"sort"
	"strings"

	"github.com/marcus/folio/internal/models"
)

// SearchResult holds a document with relevance scoring for ranked search
type SearchResult struct {
	Document   models.Document
	Score      int    // Higher = better match (0-100)
	MatchField string // Primary field that matched: 'id', 'title', 'path'
}

// SearchDocuments ranks stored documents against query. Documents that do
// not match are omitted.
func (db *DB) SearchDocuments(query string) ([]SearchResult, error) {
	docs, err := db.ListDocuments()
	if err != nil {
		return nil, err
	}

	queryLower := strings.ToLower(query)
	results := make([]SearchResult, 0, len(docs))

	for _, doc := range docs {
		score := 0
		matchField := ""

		titleLower := strings.ToLower(doc.Title)
		pathLower := strings.ToLower(doc.Path)

		// Score by match quality (highest wins)
		if strings.EqualFold(doc.ID, query) {
			score = 100
			matchField = "id"
		} else if strings.EqualFold(doc.Title, query) {
			score = 80
			matchField = "title"
		} else if strings.HasPrefix(titleLower, queryLower) {
			score = 70
			matchField = "title"
		} else if strings.Contains(titleLower, queryLower) {
			score = 60
			matchField = "title"
		} else if strings.Contains(pathLower, queryLower) {
			score = 40
			matchField = "path"
		}
		if score == 0 {
			continue
		}

		results = append(results, SearchResult{
			Document:   doc,
			Score:      score,
			MatchField: matchField,
		})
	}

	// Sort by score DESC, then most recently updated
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Document.UpdatedAt.After(results[j].Document.UpdatedAt)
	})

	return results, nil
}
