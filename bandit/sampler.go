package bandit

import (
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"news-recommender/catalog"
)

const (
	// TopCategories is how many sampled categories feed article selection.
	TopCategories = 3
	// PerCategorySample caps the uniform article draw per category.
	PerCategorySample = 5
	// ResultLimit caps the final recommendation list.
	ResultLimit = 5
)

// ArticleSource supplies the articles assigned to a category. Satisfied
// by *catalog.Catalog.
type ArticleSource interface {
	InCategory(category string) []*catalog.Article
}

// CategoryScore pairs a category with its sampled score for one request.
type CategoryScore struct {
	Category string
	Score    float64
}

// Sampler draws Thompson samples and random article selections. The
// zero-argument constructor uses the process-wide pseudorandom source;
// NewSeededSampler pins the source for reproducible draws.
type Sampler struct {
	src rand.Source
	rnd *rand.Rand
}

// NewSampler returns a Sampler backed by the shared pseudorandom source.
func NewSampler() *Sampler {
	return &Sampler{}
}

// NewSeededSampler returns a Sampler with a deterministic source.
// Intended for tests; draws depend only on the seed and call order.
func NewSeededSampler(seed uint64) *Sampler {
	src := rand.NewPCG(seed, seed)
	return &Sampler{src: src, rnd: rand.New(src)}
}

// RankCategories draws one Beta(alpha, beta) sample per category of the
// user's beliefs and returns the categories sorted by sampled score,
// descending. Categories are drawn in lexical order so a seeded sampler
// produces identical rankings for identical inputs.
func (s *Sampler) RankCategories(userID string, params Params) ([]CategoryScore, error) {
	beliefs, ok := params[userID]
	if !ok {
		return nil, errUnknown(userID)
	}

	categories := make([]string, 0, len(beliefs))
	for category := range beliefs {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	scores := make([]CategoryScore, 0, len(categories))
	for _, category := range categories {
		b := beliefs[category]
		dist := distuv.Beta{
			Alpha: float64(b.Alpha),
			Beta:  float64(b.Beta),
			Src:   s.src,
		}
		scores = append(scores, CategoryScore{Category: category, Score: dist.Rand()})
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
	return scores, nil
}

// RecommendTopArticles ranks the user's categories, samples up to
// PerCategorySample articles uniformly without replacement from each of
// the top TopCategories, shuffles the combined pool once, and returns
// the first ResultLimit records. Articles from a lower-ranked category
// can be shuffled out entirely; that is the intended policy. Pure with
// respect to the belief parameters.
func (s *Sampler) RecommendTopArticles(userID string, params Params, articles ArticleSource) ([]catalog.Article, error) {
	ranked, err := s.RankCategories(userID, params)
	if err != nil {
		return nil, err
	}
	if len(ranked) > TopCategories {
		ranked = ranked[:TopCategories]
	}

	var pool []catalog.Article
	for _, cs := range ranked {
		candidates := articles.InCategory(cs.Category)
		n := min(PerCategorySample, len(candidates))
		for _, idx := range s.perm(len(candidates))[:n] {
			pool = append(pool, *candidates[idx])
		}
	}

	s.shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	if len(pool) > ResultLimit {
		pool = pool[:ResultLimit]
	}
	return pool, nil
}

func (s *Sampler) perm(n int) []int {
	if s.rnd != nil {
		return s.rnd.Perm(n)
	}
	return rand.Perm(n)
}

func (s *Sampler) shuffle(n int, swap func(i, j int)) {
	if n < 2 {
		return
	}
	if s.rnd != nil {
		s.rnd.Shuffle(n, swap)
		return
	}
	rand.Shuffle(n, swap)
}
