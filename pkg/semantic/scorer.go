package semantic

import (
	"context"
	"errors"
	"fmt"
)

// Classification buckets a similarity score.
type Classification string

const (
	Identical             Classification = "identical"
	Paraphrase            Classification = "paraphrase"
	SemanticallyDifferent Classification = "semantically_different"
	// Unknown marks records whose embedding call failed; the comparison as
	// a whole still succeeds.
	Unknown Classification = "unknown"
)

// Thresholds is a named classification profile. Scores at or above
// Identical are near-exact rewordings; scores at or above Paraphrase are
// meaning-preserving rewordings; everything below differs in meaning.
type Thresholds struct {
	Identical  float64 `yaml:"identical" json:"identical"`
	Paraphrase float64 `yaml:"paraphrase" json:"paraphrase"`
}

// DefaultThresholds returns the stock profile.
func DefaultThresholds() Thresholds {
	return Thresholds{Identical: 0.92, Paraphrase: 0.75}
}

var (
	// ErrInvalidThresholds is wrapped by every threshold validation failure.
	ErrInvalidThresholds = errors.New("invalid similarity thresholds")
	// ErrInvalidEmbedder is returned when a scorer is built without an embedder.
	ErrInvalidEmbedder = errors.New("embedder is required")
)

// Validate rejects profiles whose bounds make classification meaningless.
func (t Thresholds) Validate() error {
	if t.Identical < 0 || t.Identical > 1 {
		return fmt.Errorf("%w: identical %v out of [0,1]", ErrInvalidThresholds, t.Identical)
	}
	if t.Paraphrase < 0 || t.Paraphrase > 1 {
		return fmt.Errorf("%w: paraphrase %v out of [0,1]", ErrInvalidThresholds, t.Paraphrase)
	}
	if t.Identical <= t.Paraphrase {
		return fmt.Errorf("%w: identical %v must exceed paraphrase %v", ErrInvalidThresholds, t.Identical, t.Paraphrase)
	}
	return nil
}

// Verdict is the semantic outcome for one string pair. Similarity is always
// in [0,1]: the scorer's cosine metric is signed and gets normalized via
// (cos+1)/2 before classification.
type Verdict struct {
	Similarity     float64        `json:"similarity"`
	Classification Classification `json:"classification"`
	Profile        string         `json:"threshold_profile"`
}

// Scorer classifies string pairs using one embedder, one threshold profile,
// and optionally one cache. A scorer is bound to a single model for its
// lifetime, so scores within a run are always comparable.
type Scorer struct {
	embedder   Embedder
	thresholds Thresholds
	profile    string
	cache      Cache
}

// ScorerOption configures optional Scorer dependencies.
type ScorerOption func(*Scorer)

// WithCache sets a vector cache consulted before the embedder is called.
func WithCache(c Cache) ScorerOption {
	return func(s *Scorer) { s.cache = c }
}

// WithProfile names the threshold profile recorded in every verdict.
func WithProfile(name string) ScorerOption {
	return func(s *Scorer) { s.profile = name }
}

// NewScorer creates a scorer. The embedder is required and the thresholds
// are validated up front, before any comparison runs.
func NewScorer(embedder Embedder, thresholds Thresholds, opts ...ScorerOption) (*Scorer, error) {
	if embedder == nil {
		return nil, ErrInvalidEmbedder
	}
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}

	s := &Scorer{
		embedder:   embedder,
		thresholds: thresholds,
		profile:    "default",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Profile returns the name of the scorer's threshold profile.
func (s *Scorer) Profile() string { return s.profile }

// Score compares two strings and returns a verdict.
//
// Byte-equal strings are Identical without touching the embedder, so exact
// matches can never be misclassified by embedding noise. If exactly one
// string is empty the pair is SemanticallyDifferent without an embedding
// call, since embedding behavior on empty input is undefined.
func (s *Scorer) Score(ctx context.Context, textA, textB string) (Verdict, error) {
	if textA == textB {
		return Verdict{Similarity: 1.0, Classification: Identical, Profile: s.profile}, nil
	}
	if textA == "" || textB == "" {
		return Verdict{Similarity: 0.0, Classification: SemanticallyDifferent, Profile: s.profile}, nil
	}

	vecA, err := s.embed(ctx, textA)
	if err != nil {
		return Verdict{}, err
	}
	vecB, err := s.embed(ctx, textB)
	if err != nil {
		return Verdict{}, err
	}

	similarity := clamp01((CosineSimilarity(vecA, vecB) + 1) / 2)
	return Verdict{
		Similarity:     similarity,
		Classification: s.classify(similarity),
		Profile:        s.profile,
	}, nil
}

func (s *Scorer) classify(similarity float64) Classification {
	switch {
	case similarity >= s.thresholds.Identical:
		return Identical
	case similarity >= s.thresholds.Paraphrase:
		return Paraphrase
	default:
		return SemanticallyDifferent
	}
}

func (s *Scorer) embed(ctx context.Context, text string) ([]float32, error) {
	if s.cache != nil {
		return s.cache.GetOrCompute(ctx, text, func(ctx context.Context) ([]float32, error) {
			return s.embedder.Embed(ctx, text)
		})
	}
	return s.embedder.Embed(ctx, text)
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
