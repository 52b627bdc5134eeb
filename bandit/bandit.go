// Package bandit implements the per-user Beta-Bernoulli belief model and
// Thompson-sampling selection over article categories.
package bandit

import (
	"errors"
	"sort"
)

// ErrUnknownUser is returned when an operation is asked about a user
// absent from the belief parameters. No default entry is synthesized.
var ErrUnknownUser = errors.New("unknown user")

// Belief holds the Beta distribution pseudo-counts for one
// (user, category) pair. Alpha starts at 1 and gains one increment per
// observed click; Beta stays at 1 (no negative signal is modeled).
type Belief struct {
	Alpha int
	Beta  int
}

// Params maps user id to category to belief. A Params value is an
// immutable snapshot: initialization and updates build new snapshots
// rather than mutating one in place (see Store).
type Params map[string]map[string]Belief

// CategoryCount pairs a category with its observed click count.
type CategoryCount struct {
	Category string
	Clicks   int
}

// Initialize derives belief parameters for every user in the click
// history: one entry per category with alpha = 1, beta = 1, plus one
// alpha increment per clicked article that resolves to a known category.
// Article ids missing from categoryByID are skipped silently. The result
// is total over the category set for every user present.
func Initialize(history map[string]map[string]struct{}, categoryByID map[string]string, categories []string) Params {
	params := make(Params, len(history))
	for userID, clicked := range history {
		beliefs := make(map[string]Belief, len(categories))
		for _, category := range categories {
			beliefs[category] = Belief{Alpha: 1, Beta: 1}
		}
		for articleID := range clicked {
			category, ok := categoryByID[articleID]
			if !ok {
				continue
			}
			b := beliefs[category]
			b.Alpha++
			beliefs[category] = b
		}
		params[userID] = beliefs
	}
	return params
}

// Reinitialize is a full recomputation from the current history
// snapshot, replacing the entire prior mapping. It is the batch/recovery
// path; Store.Bump is the equivalent incremental path.
func Reinitialize(history map[string]map[string]struct{}, categoryByID map[string]string, categories []string) Params {
	return Initialize(history, categoryByID, categories)
}

// MostViewedCategories returns the user's categories ordered by observed
// click count, descending. The count is alpha - 1, inverting the prior
// seeding. Deterministic: ties break by category name.
func MostViewedCategories(userID string, params Params) ([]CategoryCount, error) {
	beliefs, ok := params[userID]
	if !ok {
		return nil, errUnknown(userID)
	}

	counts := make([]CategoryCount, 0, len(beliefs))
	for category, b := range beliefs {
		counts = append(counts, CategoryCount{Category: category, Clicks: b.Alpha - 1})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Clicks != counts[j].Clicks {
			return counts[i].Clicks > counts[j].Clicks
		}
		return counts[i].Category < counts[j].Category
	})
	return counts, nil
}

func errUnknown(userID string) error {
	return &UnknownUserError{UserID: userID}
}

// UnknownUserError reports which user id was not found. It matches
// ErrUnknownUser under errors.Is.
type UnknownUserError struct {
	UserID string
}

func (e *UnknownUserError) Error() string {
	return "unknown user " + e.UserID
}

func (e *UnknownUserError) Is(target error) bool {
	return target == ErrUnknownUser
}
