package pricing

import (
	"context"
	"unicode/utf8"

	"toolshare-backend/internal/categorizer"
	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/logger"
)

// MinTitleLength is the shortest title the categorizer is consulted for.
const MinTitleLength = 3

// CategoryLookup resolves a category id; ok is false when unknown.
type CategoryLookup func(id int32) (domain.Category, bool)

// Selection tracks the category and tier choice while a listing is being
// drafted. It is not safe for concurrent use.
type Selection struct {
	CategoryID    int32
	AutoSuggested bool // CategoryID came from the categorizer
	Suggestion    *categorizer.Suggestion
	ManualTier    *int32

	lookup       CategoryLookup
	pickedByHand bool
}

func NewSelection(lookup CategoryLookup) *Selection {
	return &Selection{lookup: lookup}
}

// OnTitleChange consults the suggester for titles of at least MinTitleLength
// runes. Shorter titles only reset a category the categorizer picked. A nil
// or failing suggester leaves the selection as it is.
func (s *Selection) OnTitleChange(ctx context.Context, title string, suggester categorizer.Suggester) {
	if utf8.RuneCountInString(title) < MinTitleLength {
		if s.AutoSuggested {
			s.CategoryID = 0
			s.AutoSuggested = false
			s.Suggestion = nil
		}
		return
	}
	if suggester == nil {
		return
	}

	suggestion, err := suggester.SuggestCategory(ctx, title)
	if err != nil {
		logger.Warn("Category suggester failed, keeping current selection", "error", err)
		return
	}
	if suggestion == nil {
		return
	}
	if s.pickedByHand {
		// a category chosen by hand keeps the suggestion detached until the
		// manual tier override is cleared
		return
	}
	s.Suggestion = suggestion
	if s.ManualTier != nil {
		return
	}
	if suggestion.CategoryID == s.CategoryID {
		return
	}
	s.CategoryID = suggestion.CategoryID
	s.AutoSuggested = true
}

// PickCategory records a manual category choice and detaches the current
// suggestion. Title changes do not attach a new one while the pick stands.
func (s *Selection) PickCategory(id int32) {
	s.CategoryID = id
	s.AutoSuggested = false
	s.Suggestion = nil
	s.pickedByHand = id != 0
}

// SetManualTier overrides the tier and clears the auto-suggested flag. The
// suggestion stays attached so clearing the override falls back to it.
func (s *Selection) SetManualTier(tier int32) {
	s.ManualTier = &tier
	s.AutoSuggested = false
}

// ClearManualTier drops the override and any hand pick; auto-suggestion
// resumes on the next qualifying title change.
func (s *Selection) ClearManualTier() {
	s.ManualTier = nil
	s.pickedByHand = false
}

// SuggestedTier is the default tier of the attached suggestion's category.
func (s *Selection) SuggestedTier() *int32 {
	if s.pickedByHand || s.Suggestion == nil || s.lookup == nil {
		return nil
	}
	cat, ok := s.lookup(s.Suggestion.CategoryID)
	if !ok {
		return nil
	}
	tier := cat.DefaultRiskTier
	return &tier
}

// Inputs returns resolver inputs for the current state.
func (s *Selection) Inputs() TierInputs {
	in := TierInputs{ManualTier: s.ManualTier, SuggestedTier: s.SuggestedTier()}
	if s.lookup != nil {
		if cat, ok := s.lookup(s.CategoryID); ok {
			in.Category = cat
		}
	}
	return in
}

func (s *Selection) Resolve() Resolution {
	return Resolve(s.Inputs())
}
