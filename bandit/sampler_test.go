package bandit

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"news-recommender/catalog"
)

// fakeSource returns a fixed catalog of n articles per category.
type fakeSource struct {
	perCategory map[string]int
}

func (f *fakeSource) InCategory(category string) []*catalog.Article {
	n := f.perCategory[category]
	articles := make([]*catalog.Article, n)
	for i := range articles {
		articles[i] = &catalog.Article{
			ID:       fmt.Sprintf("%s-%d", category, i),
			Category: category,
		}
	}
	return articles
}

func heavyParams() Params {
	history := map[string]map[string]struct{}{
		"U1": set("N1", "N2"),
	}
	return Initialize(history, testCategoryByID, testCategories)
}

func TestRankCategories_CoversAllCategories(t *testing.T) {
	s := NewSeededSampler(1)
	ranked, err := s.RankCategories("U1", heavyParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ranked) != len(testCategories) {
		t.Fatalf("expected %d entries, got %d", len(testCategories), len(ranked))
	}
	seen := make(map[string]bool)
	for _, cs := range ranked {
		if cs.Score < 0 || cs.Score > 1 {
			t.Errorf("category %s: score %f outside [0,1]", cs.Category, cs.Score)
		}
		seen[cs.Category] = true
	}
	for _, category := range testCategories {
		if !seen[category] {
			t.Errorf("category %s missing from ranking", category)
		}
	}
}

func TestRankCategories_Descending(t *testing.T) {
	s := NewSeededSampler(7)
	ranked, err := s.RankCategories("U1", heavyParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].Score > ranked[i-1].Score {
			t.Errorf("scores not descending: %v", ranked)
		}
	}
}

func TestRankCategories_SeededReproducible(t *testing.T) {
	params := heavyParams()

	first, err := NewSeededSampler(42).RankCategories("U1", params)
	if err != nil {
		t.Fatal(err)
	}
	second, err := NewSeededSampler(42).RankCategories("U1", params)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("same seed produced different rankings: %v vs %v", first, second)
	}
}

func TestRankCategories_UnknownUser(t *testing.T) {
	s := NewSeededSampler(1)
	_, err := s.RankCategories("no-such-user", heavyParams())
	if !errors.Is(err, ErrUnknownUser) {
		t.Fatalf("expected ErrUnknownUser, got %v", err)
	}
}

func TestRecommendTopArticles_SizeBound(t *testing.T) {
	s := NewSeededSampler(3)
	src := &fakeSource{perCategory: map[string]int{
		"sports": 10, "tech": 10, "finance": 10,
	}}

	articles, err := s.RecommendTopArticles("U1", heavyParams(), src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(articles) != ResultLimit {
		t.Errorf("expected %d articles, got %d", ResultLimit, len(articles))
	}
}

func TestRecommendTopArticles_FewerWhenPoolSmall(t *testing.T) {
	s := NewSeededSampler(3)
	src := &fakeSource{perCategory: map[string]int{
		"sports": 1, "tech": 1, "finance": 1,
	}}

	articles, err := s.RecommendTopArticles("U1", heavyParams(), src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(articles) != 3 {
		t.Errorf("expected 3 articles (1 per category), got %d", len(articles))
	}
}

func TestRecommendTopArticles_EmptyCatalog(t *testing.T) {
	s := NewSeededSampler(3)
	src := &fakeSource{perCategory: map[string]int{}}

	articles, err := s.RecommendTopArticles("U1", heavyParams(), src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(articles) != 0 {
		t.Errorf("expected no articles, got %d", len(articles))
	}
}

func TestRecommendTopArticles_NoDuplicatesWithinCategory(t *testing.T) {
	s := NewSeededSampler(9)
	src := &fakeSource{perCategory: map[string]int{
		"sports": 5, "tech": 5, "finance": 5,
	}}

	for seed := uint64(0); seed < 20; seed++ {
		s = NewSeededSampler(seed)
		articles, err := s.RecommendTopArticles("U1", heavyParams(), src)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		seen := make(map[string]bool)
		for _, a := range articles {
			if seen[a.ID] {
				t.Errorf("seed %d: article %s appears twice", seed, a.ID)
			}
			seen[a.ID] = true
		}
	}
}

func TestRecommendTopArticles_UnknownUser(t *testing.T) {
	s := NewSeededSampler(1)
	src := &fakeSource{perCategory: map[string]int{"sports": 3}}

	_, err := s.RecommendTopArticles("no-such-user", heavyParams(), src)
	if !errors.Is(err, ErrUnknownUser) {
		t.Fatalf("expected ErrUnknownUser, got %v", err)
	}
}

func TestRecommendTopArticles_DoesNotMutateParams(t *testing.T) {
	params := heavyParams()
	var want Params = Initialize(map[string]map[string]struct{}{
		"U1": set("N1", "N2"),
	}, testCategoryByID, testCategories)

	s := NewSeededSampler(5)
	src := &fakeSource{perCategory: map[string]int{"sports": 4, "tech": 4, "finance": 4}}
	if _, err := s.RecommendTopArticles("U1", params, src); err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(params, want) {
		t.Errorf("params mutated by recommendation: %v", params)
	}
}
