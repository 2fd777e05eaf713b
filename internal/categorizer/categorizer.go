// Package categorizer suggests a listing category from its free-text title.
package categorizer

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/logger"
)

type Suggestion struct {
	CategoryID int32   `json:"category_id"`
	Confidence float64 `json:"confidence"`
}

// Suggester returns nil when it has nothing to offer.
type Suggester interface {
	SuggestCategory(ctx context.Context, title string) (*Suggestion, error)
}

// KeywordSuggester matches title words against each category's keywords and name.
type KeywordSuggester struct {
	categories    []domain.Category
	minConfidence float64
}

func NewKeywordSuggester(categories []domain.Category, minConfidence float64) *KeywordSuggester {
	cats := make([]domain.Category, len(categories))
	copy(cats, categories)
	sort.Slice(cats, func(i, j int) bool { return cats[i].ID < cats[j].ID })
	return &KeywordSuggester{categories: cats, minConfidence: minConfidence}
}

func (s *KeywordSuggester) SuggestCategory(ctx context.Context, title string) (*Suggestion, error) {
	words := tokenize(title)
	if len(words) == 0 {
		return nil, nil
	}

	var best *Suggestion
	for _, cat := range s.categories {
		keywords := append([]string{}, cat.Keywords...)
		keywords = append(keywords, tokenize(cat.Name)...)
		hits := 0
		for _, w := range words {
			for _, k := range keywords {
				if w == strings.ToLower(k) {
					hits++
					break
				}
			}
		}
		if hits == 0 {
			continue
		}
		confidence := float64(hits) / float64(len(words))
		if best == nil || confidence > best.Confidence {
			best = &Suggestion{CategoryID: cat.ID, Confidence: confidence}
		}
	}

	if best == nil || best.Confidence < s.minConfidence {
		return nil, nil
	}
	logger.Debug("Category suggested", "title", title, "category_id", best.CategoryID, "confidence", best.Confidence)
	return best, nil
}

func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len(f) > 1 {
			out = append(out, f)
		}
	}
	return out
}
