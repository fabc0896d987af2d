package differ

import (
	"github.com/wonderfulspam/semdiff/pkg/jsontree"
)

type ChangeKind string

const (
	ChangeAdded       ChangeKind = "added"
	ChangeRemoved     ChangeKind = "removed"
	ChangeTypeChanged ChangeKind = "type_changed"
	ChangeValue       ChangeKind = "value_changed"
	ChangeUnchanged   ChangeKind = "unchanged"
)

// ChangeRecord describes one difference between the old and new document at
// a path. Added records carry no old value; removed records carry no new
// value.
type ChangeRecord struct {
	Path jsontree.Path   `json:"path"`
	Kind ChangeKind      `json:"kind"`
	Old  *jsontree.Value `json:"old,omitempty"`
	New  *jsontree.Value `json:"new,omitempty"`
}

// IsStringChange reports whether the record is a value change between two
// strings, which makes it eligible for semantic scoring.
func (r ChangeRecord) IsStringChange() bool {
	return r.Kind == ChangeValue &&
		r.Old != nil && r.Old.Kind() == jsontree.String &&
		r.New != nil && r.New.Kind() == jsontree.String
}
