package semantic

import (
	"context"
	"errors"
	"math"
	"testing"
)

// stubEmbedder returns a fixed vector per text and fails the test if asked
// to embed anything it has no vector for.
type stubEmbedder struct {
	vectors map[string][]float32
}

func (s stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec, ok := s.vectors[text]
	if !ok {
		return nil, errors.New("unexpected embed call for " + text)
	}
	return vec, nil
}

// panicEmbedder fails on every call; used to verify degenerate cases never
// reach the provider.
type panicEmbedder struct{}

func (panicEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return nil, errors.New("provider must not be invoked for " + text)
}

func TestScore_EqualStringsSkipProvider(t *testing.T) {
	scorer, err := NewScorer(panicEmbedder{}, DefaultThresholds())
	if err != nil {
		t.Fatalf("NewScorer error: %v", err)
	}

	verdict, err := scorer.Score(context.Background(), "same text", "same text")
	if err != nil {
		t.Fatalf("Score error: %v", err)
	}
	if verdict.Similarity != 1.0 {
		t.Errorf("Expected similarity 1.0, got %v", verdict.Similarity)
	}
	if verdict.Classification != Identical {
		t.Errorf("Expected identical, got %s", verdict.Classification)
	}
}

func TestScore_EmptyStringSkipsProvider(t *testing.T) {
	scorer, err := NewScorer(panicEmbedder{}, DefaultThresholds())
	if err != nil {
		t.Fatalf("NewScorer error: %v", err)
	}

	verdict, err := scorer.Score(context.Background(), "", "non-empty")
	if err != nil {
		t.Fatalf("Score error: %v", err)
	}
	if verdict.Similarity != 0.0 {
		t.Errorf("Expected similarity 0.0, got %v", verdict.Similarity)
	}
	if verdict.Classification != SemanticallyDifferent {
		t.Errorf("Expected semantically_different, got %s", verdict.Classification)
	}
}

func TestScore_IdenticalVectors(t *testing.T) {
	scorer, err := NewScorer(stubEmbedder{vectors: map[string][]float32{
		"the cat": {1, 0},
		"a cat":   {1, 0},
	}}, DefaultThresholds())
	if err != nil {
		t.Fatalf("NewScorer error: %v", err)
	}

	verdict, err := scorer.Score(context.Background(), "the cat", "a cat")
	if err != nil {
		t.Fatalf("Score error: %v", err)
	}
	if math.Abs(verdict.Similarity-1.0) > 1e-9 {
		t.Errorf("Expected similarity 1.0, got %v", verdict.Similarity)
	}
	if verdict.Classification != Identical {
		t.Errorf("Expected identical, got %s", verdict.Classification)
	}
}

func TestScore_OrthogonalVectorsNormalizeToMidpoint(t *testing.T) {
	// Signed cosine 0 normalizes to 0.5, below the paraphrase threshold.
	scorer, err := NewScorer(stubEmbedder{vectors: map[string][]float32{
		"cats": {1, 0},
		"tax":  {0, 1},
	}}, DefaultThresholds())
	if err != nil {
		t.Fatalf("NewScorer error: %v", err)
	}

	verdict, err := scorer.Score(context.Background(), "cats", "tax")
	if err != nil {
		t.Fatalf("Score error: %v", err)
	}
	if math.Abs(verdict.Similarity-0.5) > 1e-9 {
		t.Errorf("Expected similarity 0.5, got %v", verdict.Similarity)
	}
	if verdict.Classification != SemanticallyDifferent {
		t.Errorf("Expected semantically_different, got %s", verdict.Classification)
	}
}

func TestScore_OppositeVectorsClampToZero(t *testing.T) {
	scorer, err := NewScorer(stubEmbedder{vectors: map[string][]float32{
		"up":   {1, 0},
		"down": {-1, 0},
	}}, DefaultThresholds())
	if err != nil {
		t.Fatalf("NewScorer error: %v", err)
	}

	verdict, err := scorer.Score(context.Background(), "up", "down")
	if err != nil {
		t.Fatalf("Score error: %v", err)
	}
	if verdict.Similarity < 0 || verdict.Similarity > 1 {
		t.Errorf("Expected similarity in [0,1], got %v", verdict.Similarity)
	}
}

func TestClassify_ThresholdBoundaries(t *testing.T) {
	scorer, err := NewScorer(panicEmbedder{}, DefaultThresholds())
	if err != nil {
		t.Fatalf("NewScorer error: %v", err)
	}

	tests := []struct {
		similarity float64
		want       Classification
	}{
		{1.0, Identical},
		{0.92, Identical}, // inclusive boundary
		{0.9199, Paraphrase},
		{0.75, Paraphrase}, // inclusive boundary
		{0.7499, SemanticallyDifferent},
		{0.0, SemanticallyDifferent},
	}

	for _, tt := range tests {
		if got := scorer.classify(tt.similarity); got != tt.want {
			t.Errorf("classify(%v): expected %s, got %s", tt.similarity, tt.want, got)
		}
	}
}

func TestScore_VerdictCarriesProfile(t *testing.T) {
	scorer, err := NewScorer(panicEmbedder{}, DefaultThresholds(), WithProfile("strict"))
	if err != nil {
		t.Fatalf("NewScorer error: %v", err)
	}

	verdict, err := scorer.Score(context.Background(), "x", "x")
	if err != nil {
		t.Fatalf("Score error: %v", err)
	}
	if verdict.Profile != "strict" {
		t.Errorf("Expected profile strict, got %q", verdict.Profile)
	}
}

func TestScore_ProviderErrorPropagates(t *testing.T) {
	scorer, err := NewScorer(panicEmbedder{}, DefaultThresholds())
	if err != nil {
		t.Fatalf("NewScorer error: %v", err)
	}

	if _, err := scorer.Score(context.Background(), "a", "b"); err == nil {
		t.Error("Expected provider error to propagate")
	}
}

func TestNewScorer_RequiresEmbedder(t *testing.T) {
	if _, err := NewScorer(nil, DefaultThresholds()); err != ErrInvalidEmbedder {
		t.Errorf("Expected ErrInvalidEmbedder, got %v", err)
	}
}

func TestThresholds_Validate(t *testing.T) {
	tests := []struct {
		name       string
		thresholds Thresholds
		wantErr    bool
	}{
		{"defaults", DefaultThresholds(), false},
		{"identical above one", Thresholds{Identical: 1.2, Paraphrase: 0.5}, true},
		{"paraphrase negative", Thresholds{Identical: 0.9, Paraphrase: -0.1}, true},
		{"identical below paraphrase", Thresholds{Identical: 0.5, Paraphrase: 0.8}, true},
		{"identical equals paraphrase", Thresholds{Identical: 0.8, Paraphrase: 0.8}, true},
		{"custom valid", Thresholds{Identical: 0.99, Paraphrase: 0.5}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.thresholds.Validate()
			if tt.wantErr && err == nil {
				t.Error("Expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
			if tt.wantErr && err != nil && !errors.Is(err, ErrInvalidThresholds) {
				t.Errorf("Expected ErrInvalidThresholds, got %v", err)
			}
		})
	}
}

func TestCosineSimilarity_EdgeCases(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"both empty", nil, nil, 0},
		{"length mismatch", []float32{1, 0}, []float32{1, 0, 0}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CosineSimilarity(tt.a, tt.b); got != tt.want {
				t.Errorf("CosineSimilarity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCosineSimilarity_Identical(t *testing.T) {
	got := CosineSimilarity([]float32{3, 4}, []float32{3, 4})
	if math.Abs(got-1.0) > 1e-6 {
		t.Errorf("Expected 1.0, got %v", got)
	}
}
