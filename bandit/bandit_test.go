package bandit

import (
	"errors"
	"reflect"
	"testing"
)

func set(ids ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

var (
	testCategories   = []string{"sports", "tech", "finance"}
	testCategoryByID = map[string]string{
		"N1": "sports",
		"N2": "sports",
		"N3": "tech",
		"N4": "finance",
	}
)

func TestInitialize_TotalCoverage(t *testing.T) {
	history := map[string]map[string]struct{}{
		"U1": set("N1", "N2"),
		"U2": set(),
		"U3": set("N3"),
	}

	params := Initialize(history, testCategoryByID, testCategories)

	if len(params) != 3 {
		t.Fatalf("expected 3 users, got %d", len(params))
	}
	for userID, beliefs := range params {
		if len(beliefs) != len(testCategories) {
			t.Errorf("user %s: expected %d categories, got %d", userID, len(testCategories), len(beliefs))
		}
		for category, b := range beliefs {
			if b.Alpha < 1 {
				t.Errorf("user %s category %s: alpha %d < 1", userID, category, b.Alpha)
			}
			if b.Beta != 1 {
				t.Errorf("user %s category %s: beta %d, want 1", userID, category, b.Beta)
			}
		}
	}
}

func TestInitialize_CountsClicksPerCategory(t *testing.T) {
	history := map[string]map[string]struct{}{
		"U1": set("N1", "N2", "N3"),
	}

	params := Initialize(history, testCategoryByID, testCategories)

	want := map[string]Belief{
		"sports":  {Alpha: 3, Beta: 1},
		"tech":    {Alpha: 2, Beta: 1},
		"finance": {Alpha: 1, Beta: 1},
	}
	if !reflect.DeepEqual(params["U1"], want) {
		t.Errorf("beliefs = %v, want %v", params["U1"], want)
	}
}

func TestInitialize_SkipsUnresolvableIDs(t *testing.T) {
	history := map[string]map[string]struct{}{
		"U1": set("N1", "bogus", "missing"),
	}

	params := Initialize(history, testCategoryByID, testCategories)

	if got := params["U1"]["sports"].Alpha; got != 2 {
		t.Errorf("sports alpha = %d, want 2", got)
	}
	total := 0
	for _, b := range params["U1"] {
		total += b.Alpha - 1
	}
	if total != 1 {
		t.Errorf("total observed clicks = %d, want 1 (unresolvable ids must be skipped)", total)
	}
}

func TestReinitialize_Idempotent(t *testing.T) {
	history := map[string]map[string]struct{}{
		"U1": set("N1", "N4"),
		"U2": set("N3"),
	}

	first := Reinitialize(history, testCategoryByID, testCategories)
	second := Reinitialize(history, testCategoryByID, testCategories)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("reinitialize not idempotent: %v vs %v", first, second)
	}
}

func TestMostViewedCategories(t *testing.T) {
	history := map[string]map[string]struct{}{
		"U1": set("N1", "N2"), // 2 sports clicks
	}
	categories := []string{"sports", "tech"}
	params := Initialize(history, testCategoryByID, categories)

	counts, err := MostViewedCategories("U1", params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []CategoryCount{
		{Category: "sports", Clicks: 2},
		{Category: "tech", Clicks: 0},
	}
	if !reflect.DeepEqual(counts, want) {
		t.Errorf("counts = %v, want %v", counts, want)
	}
}

func TestMostViewedCategories_SumsToResolvableClicks(t *testing.T) {
	history := map[string]map[string]struct{}{
		"U1": set("N1", "N2", "N3", "N4", "bogus"),
	}
	params := Initialize(history, testCategoryByID, testCategories)

	counts, err := MostViewedCategories("U1", params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	total := 0
	for _, c := range counts {
		total += c.Clicks
	}
	if total != 4 {
		t.Errorf("click total = %d, want 4", total)
	}
	for i := 1; i < len(counts); i++ {
		if counts[i].Clicks > counts[i-1].Clicks {
			t.Errorf("counts not descending: %v", counts)
		}
	}
}

func TestMostViewedCategories_UnknownUser(t *testing.T) {
	params := Initialize(nil, testCategoryByID, testCategories)

	_, err := MostViewedCategories("no-such-user", params)
	if !errors.Is(err, ErrUnknownUser) {
		t.Fatalf("expected ErrUnknownUser, got %v", err)
	}
}

func TestClickIncrementsExactlyOneCategory(t *testing.T) {
	history := map[string]map[string]struct{}{
		"U1": set("N1"),
	}
	before := Initialize(history, testCategoryByID, testCategories)

	// A previously-unseen user clicks a tech article, then beliefs are rebuilt.
	history["U2"] = set("N3")
	after := Reinitialize(history, testCategoryByID, testCategories)

	if !reflect.DeepEqual(after["U1"], before["U1"]) {
		t.Errorf("existing user changed: %v vs %v", after["U1"], before["U1"])
	}
	for category, b := range after["U2"] {
		wantAlpha := 1
		if category == "tech" {
			wantAlpha = 2
		}
		if b.Alpha != wantAlpha {
			t.Errorf("U2 %s alpha = %d, want %d", category, b.Alpha, wantAlpha)
		}
	}
}

func TestUnknownUserError_Message(t *testing.T) {
	err := errUnknown("U42")
	if err.Error() != "unknown user U42" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, ErrUnknownUser) {
		t.Error("expected errors.Is match with ErrUnknownUser")
	}
}
