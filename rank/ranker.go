package rank

import (
	"math"
	"slices"
	"time"

	"github.com/auricle-ai/auricle/core"
)

// DefaultHalfLife is the default recency half-life. Two weeks keeps recent
// meetings ahead without burying older material; tune per corpus.
const DefaultHalfLife = 14 * 24 * time.Hour

// Weights blends the three ranking signals. Callers tune them per use case;
// they are normalized before scoring, so they need not sum to 1.
type Weights struct {
	Similarity float64
	Lexical    float64
	Recency    float64
}

// DefaultWeights favors semantic similarity, with keyword overlap and
// recency as secondary signals.
func DefaultWeights() Weights {
	return Weights{Similarity: 0.60, Lexical: 0.25, Recency: 0.15}
}

func (w Weights) normalized() Weights {
	sum := w.Similarity + w.Lexical + w.Recency
	if sum <= 0 {
		return Weights{}
	}
	return Weights{
		Similarity: w.Similarity / sum,
		Lexical:    w.Lexical / sum,
		Recency:    w.Recency / sum,
	}
}

// Config holds the tunable ranking parameters.
type Config struct {
	Weights  Weights
	HalfLife time.Duration
}

// DefaultConfig returns the default ranking configuration.
func DefaultConfig() Config {
	return Config{Weights: DefaultWeights(), HalfLife: DefaultHalfLife}
}

func (c Config) withDefaults() Config {
	if c.Weights == (Weights{}) {
		c.Weights = DefaultWeights()
	}
	if c.HalfLife <= 0 {
		c.HalfLife = DefaultHalfLife
	}
	return c
}

// Query is the ranking input: the query text and, when available, its
// embedding. A nil embedding degrades ranking to lexical+recency.
type Query struct {
	Text      string
	Embedding []float32
}

// Scored is one ranked candidate with its blended score and the individual
// signals that produced it.
type Scored struct {
	Chunk      *core.Chunk
	Score      float64
	Similarity float64
	Lexical    float64
	Recency    float64
	// Degraded is set when similarity could not be computed for this
	// candidate (query or chunk embedding absent) and its weight was
	// redistributed to the other signals.
	Degraded bool
}

// Rank scores and orders candidates by a weighted blend of semantic
// similarity, lexical overlap, and recency. It is a pure function of its
// inputs: no hidden state, same inputs always produce the same order.
//
// Candidates are sorted by score descending; ties break by sequence index
// ascending, then CreatedAt descending.
func Rank(query Query, candidates []*core.Chunk, cfg Config, now time.Time) []Scored {
	cfg = cfg.withDefaults()
	weights := cfg.Weights.normalized()

	scored := make([]Scored, 0, len(candidates))
	for _, chunk := range candidates {
		if chunk == nil {
			continue
		}
		scored = append(scored, scoreOne(query, chunk, weights, cfg.HalfLife, now))
	}

	slices.SortFunc(scored, func(a, b Scored) int {
		if a.Score != b.Score {
			if a.Score > b.Score {
				return -1
			}
			return 1
		}
		if a.Chunk.SequenceIndex != b.Chunk.SequenceIndex {
			return a.Chunk.SequenceIndex - b.Chunk.SequenceIndex
		}
		if a.Chunk.CreatedAt.After(b.Chunk.CreatedAt) {
			return -1
		}
		if b.Chunk.CreatedAt.After(a.Chunk.CreatedAt) {
			return 1
		}
		return 0
	})
	return scored
}

// RecencyScore computes exp(-age/halfLife): 1 at age zero, strictly
// decreasing as age grows. Ages in the future clamp to zero.
func RecencyScore(age, halfLife time.Duration) float64 {
	if halfLife <= 0 {
		halfLife = DefaultHalfLife
	}
	if age < 0 {
		age = 0
	}
	return math.Exp(-float64(age) / float64(halfLife))
}

// SimilarityScore maps cosine similarity into [0, 1].
func SimilarityScore(a, b []float32) float64 {
	return (Cosine(a, b) + 1) / 2
}

func scoreOne(query Query, chunk *core.Chunk, weights Weights, halfLife time.Duration, now time.Time) Scored {
	s := Scored{Chunk: chunk}

	s.Lexical = LexicalScore(chunk.Text, query.Text)
	s.Recency = RecencyScore(now.Sub(chunk.CreatedAt), halfLife)

	if len(query.Embedding) > 0 && len(chunk.Embedding) > 0 {
		s.Similarity = SimilarityScore(query.Embedding, chunk.Embedding)
		s.Score = weights.Similarity*s.Similarity +
			weights.Lexical*s.Lexical +
			weights.Recency*s.Recency
		return s
	}

	// Similarity unavailable: redistribute its weight so the remaining
	// signals still sum to 1 for this candidate.
	s.Degraded = true
	rest := weights.Lexical + weights.Recency
	if rest <= 0 {
		return s
	}
	s.Score = (weights.Lexical/rest)*s.Lexical + (weights.Recency/rest)*s.Recency
	return s
}
