// Package aggregator assembles annotated change records into a layered
// report: a tree mirroring the document shape for drill-down, the flat
// record list for auditing, and summary counts.
package aggregator

import (
	"fmt"
	"strings"

	"github.com/wonderfulspam/semdiff/pkg/annotator"
	"github.com/wonderfulspam/semdiff/pkg/differ"
	"github.com/wonderfulspam/semdiff/pkg/jsontree"
	"github.com/wonderfulspam/semdiff/pkg/semantic"
)

// Summary counts changes by classification. Value changes between strings
// whose verdict is identical or paraphrase land in ValueChangedParaphrase:
// they are rewordings, not meaningful differences, and are excluded from
// Meaningful while staying in the record list.
type Summary struct {
	Added                  int `json:"added"`
	Removed                int `json:"removed"`
	TypeChanged            int `json:"type_changed"`
	ValueChangedStructural int `json:"value_changed_structural"`
	ValueChangedParaphrase int `json:"value_changed_paraphrase"`
	Unchanged              int `json:"unchanged"`
	ErrorCount             int `json:"error_count"`
	Meaningful             int `json:"meaningful_changes"`
}

// Node is one position in the layered tree. Interior nodes carry no record,
// only descendants; records sit at the changed leaves. Children keep the
// order the differ emitted them in.
type Node struct {
	Name     string            `json:"name,omitempty"`
	Path     string            `json:"path"`
	Record   *annotator.Record `json:"record,omitempty"`
	Children []*Node           `json:"children,omitempty"`

	byName map[string]*Node
}

// Result is the layered diff report.
type Result struct {
	Root       *Node              `json:"root"`
	Records    []annotator.Record `json:"records"`
	Summary    Summary            `json:"summary"`
	HasChanges bool               `json:"has_changes"`
	Headline   string             `json:"headline"`
}

// Aggregate builds the layered report from annotated records. errorCount is
// the number of records the annotator degraded to Unknown.
func Aggregate(records []annotator.Record, errorCount int) *Result {
	result := &Result{
		Root:    newNode("", "/"),
		Records: records,
	}
	result.Summary.ErrorCount = errorCount

	for i := range records {
		rec := records[i]
		result.tally(rec)
		result.insert(rec)
		if rec.Kind != differ.ChangeUnchanged {
			result.HasChanges = true
		}
	}

	result.Summary.Meaningful = result.Summary.Added +
		result.Summary.Removed +
		result.Summary.TypeChanged +
		result.Summary.ValueChangedStructural
	result.Headline = result.headline()

	return result
}

// Under returns the records at or below path, in emission order.
func (r *Result) Under(path jsontree.Path) []annotator.Record {
	var out []annotator.Record
	for _, rec := range r.Records {
		if rec.Path.HasPrefix(path) {
			out = append(out, rec)
		}
	}
	return out
}

func (r *Result) tally(rec annotator.Record) {
	switch rec.Kind {
	case differ.ChangeAdded:
		r.Summary.Added++
	case differ.ChangeRemoved:
		r.Summary.Removed++
	case differ.ChangeTypeChanged:
		r.Summary.TypeChanged++
	case differ.ChangeUnchanged:
		r.Summary.Unchanged++
	case differ.ChangeValue:
		if rec.Semantic != nil &&
			(rec.Semantic.Classification == semantic.Identical ||
				rec.Semantic.Classification == semantic.Paraphrase) {
			r.Summary.ValueChangedParaphrase++
		} else {
			r.Summary.ValueChangedStructural++
		}
	}
}

func (r *Result) insert(rec annotator.Record) {
	node := r.Root
	for i, segment := range rec.Path {
		child, ok := node.byName[segment]
		if !ok {
			child = newNode(segment, rec.Path[:i+1].String())
			node.byName[segment] = child
			node.Children = append(node.Children, child)
		}
		node = child
	}
	recCopy := rec
	node.Record = &recCopy
}

func (r *Result) headline() string {
	if !r.HasChanges {
		return "No differences found"
	}

	parts := []string{fmt.Sprintf("%d meaningful changes", r.Summary.Meaningful)}
	if r.Summary.ValueChangedParaphrase > 0 {
		parts = append(parts, fmt.Sprintf("%d rewordings", r.Summary.ValueChangedParaphrase))
	}
	if r.Summary.ErrorCount > 0 {
		parts = append(parts, fmt.Sprintf("%d unscored", r.Summary.ErrorCount))
	}
	return strings.Join(parts, ", ")
}

func newNode(name, path string) *Node {
	return &Node{
		Name:   name,
		Path:   path,
		byName: map[string]*Node{},
	}
}
