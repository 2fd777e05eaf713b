package categorizer

import (
	"context"
	"testing"

	"toolshare-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywordSuggester_SuggestCategory(t *testing.T) {
	cats := []domain.Category{
		{ID: 1, Name: "Hand Tools", Keywords: []string{"hammer", "wrench", "screwdriver"}},
		{ID: 2, Name: "Power Tools", Keywords: []string{"drill", "saw", "sander"}},
		{ID: 3, Name: "Heavy Equipment", Keywords: []string{"excavator", "generator", "chainsaw"}},
	}
	s := NewKeywordSuggester(cats, 0.2)
	ctx := context.Background()

	t.Run("Match on keyword", func(t *testing.T) {
		got, err := s.SuggestCategory(ctx, "Cordless DRILL, 18V")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, int32(2), got.CategoryID)
	})

	t.Run("Best category wins", func(t *testing.T) {
		got, err := s.SuggestCategory(ctx, "chainsaw generator")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, int32(3), got.CategoryID)
		assert.Equal(t, 1.0, got.Confidence)
	})

	t.Run("No match", func(t *testing.T) {
		got, err := s.SuggestCategory(ctx, "kayak paddle")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Below confidence threshold", func(t *testing.T) {
		got, err := s.SuggestCategory(ctx, "vintage red wooden handle hammer box set")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
