package annotator

import (
	"context"
	"errors"
	"testing"

	"github.com/wonderfulspam/semdiff/pkg/differ"
	"github.com/wonderfulspam/semdiff/pkg/jsontree"
	"github.com/wonderfulspam/semdiff/pkg/semantic"
)

// pairEmbedder maps texts to vectors and fails for anything unmapped.
type pairEmbedder struct {
	vectors map[string][]float32
}

func (p pairEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec, ok := p.vectors[text]
	if !ok {
		return nil, &semantic.ProviderError{Model: "stub", Err: errors.New("no vector for " + text)}
	}
	return vec, nil
}

func stringChange(path jsontree.Path, oldText, newText string) differ.ChangeRecord {
	oldVal := jsontree.MustParse(`"` + oldText + `"`)
	newVal := jsontree.MustParse(`"` + newText + `"`)
	return differ.ChangeRecord{
		Path: path,
		Kind: differ.ChangeValue,
		Old:  &oldVal,
		New:  &newVal,
	}
}

func newTestAnnotator(t *testing.T, embedder semantic.Embedder, opts ...Option) *Annotator {
	t.Helper()
	scorer, err := semantic.NewScorer(embedder, semantic.DefaultThresholds())
	if err != nil {
		t.Fatalf("NewScorer error: %v", err)
	}
	a, err := New(scorer, opts...)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	return a
}

func TestAnnotate_PartialProviderFailure(t *testing.T) {
	// Three eligible string changes; the middle pair has no vectors, so it
	// degrades to unknown while the others still classify.
	embedder := pairEmbedder{vectors: map[string][]float32{
		"the cat sat":  {1, 0},
		"a cat sat":    {1, 0},
		"hello world":  {0, 1},
		"bonjour tout": {1, 0},
	}}
	a := newTestAnnotator(t, embedder)

	records := []differ.ChangeRecord{
		stringChange(jsontree.Root.Child("a"), "the cat sat", "a cat sat"),
		stringChange(jsontree.Root.Child("b"), "unmapped one", "unmapped two"),
		stringChange(jsontree.Root.Child("c"), "hello world", "bonjour tout"),
	}

	out, errCount := a.Annotate(context.Background(), records)
	if errCount != 1 {
		t.Fatalf("Expected 1 degraded record, got %d", errCount)
	}
	if len(out) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(out))
	}

	// Input order is preserved.
	for i, rec := range out {
		if rec.Path.String() != records[i].Path.String() {
			t.Errorf("Record %d: expected path %s, got %s", i, records[i].Path, rec.Path)
		}
		if rec.Semantic == nil {
			t.Errorf("Record %d: expected a semantic verdict", i)
		}
	}

	if out[0].Semantic.Classification != semantic.Identical {
		t.Errorf("Expected identical for matching vectors, got %s", out[0].Semantic.Classification)
	}
	if out[1].Semantic.Classification != semantic.Unknown {
		t.Errorf("Expected unknown for failed pair, got %s", out[1].Semantic.Classification)
	}
	if out[2].Semantic.Classification != semantic.SemanticallyDifferent {
		t.Errorf("Expected semantically_different for orthogonal vectors, got %s", out[2].Semantic.Classification)
	}
}

func TestAnnotate_NonStringRecordsPassThrough(t *testing.T) {
	a := newTestAnnotator(t, pairEmbedder{})

	oldNum := jsontree.MustParse("1")
	newNum := jsontree.MustParse("2")
	added := jsontree.MustParse(`"fresh"`)
	records := []differ.ChangeRecord{
		{Path: jsontree.Root.Child("count"), Kind: differ.ChangeValue, Old: &oldNum, New: &newNum},
		{Path: jsontree.Root.Child("note"), Kind: differ.ChangeAdded, New: &added},
	}

	out, errCount := a.Annotate(context.Background(), records)
	if errCount != 0 {
		t.Fatalf("Expected no errors, got %d", errCount)
	}
	for i, rec := range out {
		if rec.Semantic != nil {
			t.Errorf("Record %d: expected no semantic verdict for non-string change", i)
		}
	}
}

func TestAnnotate_EqualStringsNeverCallProvider(t *testing.T) {
	// An empty vector map fails any embed call, so a clean run proves the
	// byte-equal fast path held.
	a := newTestAnnotator(t, pairEmbedder{})

	records := []differ.ChangeRecord{
		stringChange(jsontree.Root.Child("x"), "same", "same"),
	}
	out, errCount := a.Annotate(context.Background(), records)
	if errCount != 0 {
		t.Fatalf("Expected no errors, got %d", errCount)
	}
	if out[0].Semantic == nil || out[0].Semantic.Classification != semantic.Identical {
		t.Fatalf("Expected identical verdict, got %+v", out[0].Semantic)
	}
}

func TestStructural(t *testing.T) {
	records := []differ.ChangeRecord{
		stringChange(jsontree.Root.Child("a"), "x", "y"),
	}
	out := Structural(records)
	if len(out) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(out))
	}
	if out[0].Semantic != nil {
		t.Error("Structural records must carry no verdict")
	}
	if out[0].Kind != differ.ChangeValue {
		t.Errorf("Expected value_changed kind, got %s", out[0].Kind)
	}
}

func TestNew_RequiresScorer(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Error("Expected error for nil scorer")
	}
}

func TestAnnotate_ManyRecordsBoundedWorkers(t *testing.T) {
	embedder := pairEmbedder{vectors: map[string][]float32{}}
	for _, text := range []string{"a0", "a1", "a2", "a3", "a4", "a5", "a6", "a7",
		"b0", "b1", "b2", "b3", "b4", "b5", "b6", "b7"} {
		embedder.vectors[text] = []float32{1, 0}
	}
	a := newTestAnnotator(t, embedder, WithWorkers(2))

	var records []differ.ChangeRecord
	for i := 0; i < 8; i++ {
		oldText := string(rune('a')) + string(rune('0'+i))
		newText := string(rune('b')) + string(rune('0'+i))
		records = append(records, stringChange(jsontree.Root.Index(i), oldText, newText))
	}

	out, errCount := a.Annotate(context.Background(), records)
	if errCount != 0 {
		t.Fatalf("Expected no errors, got %d", errCount)
	}
	for i, rec := range out {
		if rec.Semantic == nil || rec.Semantic.Classification != semantic.Identical {
			t.Errorf("Record %d: expected identical verdict, got %+v", i, rec.Semantic)
		}
	}
}
