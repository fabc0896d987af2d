// Package differ aligns two JSON document trees and enumerates their
// structural differences as path-tagged change records. The walk is purely
// structural; semantic annotation of string changes happens downstream.
package differ

import (
	"github.com/wonderfulspam/semdiff/pkg/jsontree"
)

// Diff compares two documents and returns their differences in document
// order. Unchanged leaves are omitted.
func Diff(oldDoc, newDoc jsontree.Value) []ChangeRecord {
	w := &walker{}
	w.walk(jsontree.Root, oldDoc, newDoc)
	return w.records
}

// DiffComplete is Diff with unchanged leaves included, for callers that need
// a full accounting of both documents.
func DiffComplete(oldDoc, newDoc jsontree.Value) []ChangeRecord {
	w := &walker{includeUnchanged: true}
	w.walk(jsontree.Root, oldDoc, newDoc)
	return w.records
}

type walker struct {
	includeUnchanged bool
	records          []ChangeRecord
}

func (w *walker) walk(path jsontree.Path, oldVal, newVal jsontree.Value) {
	// A type mismatch subsumes everything beneath it. This also means a
	// number-to-string change is never treated as a value change, keeping
	// it out of semantic scoring.
	if oldVal.Kind() != newVal.Kind() {
		w.emit(ChangeRecord{
			Path: path,
			Kind: ChangeTypeChanged,
			Old:  valuePtr(oldVal),
			New:  valuePtr(newVal),
		})
		return
	}

	switch oldVal.Kind() {
	case jsontree.Object:
		w.walkObject(path, oldVal, newVal)
	case jsontree.Array:
		w.walkArray(path, oldVal, newVal)
	default:
		w.walkScalar(path, oldVal, newVal)
	}
}

func (w *walker) walkObject(path jsontree.Path, oldVal, newVal jsontree.Value) {
	for _, key := range oldVal.Keys() {
		ov, _ := oldVal.Field(key)
		if nv, ok := newVal.Field(key); ok {
			w.walk(path.Child(key), ov, nv)
		} else {
			w.emit(ChangeRecord{
				Path: path.Child(key),
				Kind: ChangeRemoved,
				Old:  valuePtr(ov),
			})
		}
	}
	for _, key := range newVal.Keys() {
		if _, ok := oldVal.Field(key); ok {
			continue
		}
		nv, _ := newVal.Field(key)
		w.emit(ChangeRecord{
			Path: path.Child(key),
			Kind: ChangeAdded,
			New:  valuePtr(nv),
		})
	}
}

// walkArray aligns elements positionally. A single insertion at the front of
// an array therefore shows up as element-wise value changes plus a trailing
// addition; content-aware alignment is out of scope.
func (w *walker) walkArray(path jsontree.Path, oldVal, newVal jsontree.Value) {
	oldLen, newLen := oldVal.Len(), newVal.Len()
	shared := oldLen
	if newLen < shared {
		shared = newLen
	}
	for i := 0; i < shared; i++ {
		w.walk(path.Index(i), oldVal.Index(i), newVal.Index(i))
	}
	for i := shared; i < oldLen; i++ {
		w.emit(ChangeRecord{
			Path: path.Index(i),
			Kind: ChangeRemoved,
			Old:  valuePtr(oldVal.Index(i)),
		})
	}
	for i := shared; i < newLen; i++ {
		w.emit(ChangeRecord{
			Path: path.Index(i),
			Kind: ChangeAdded,
			New:  valuePtr(newVal.Index(i)),
		})
	}
}

func (w *walker) walkScalar(path jsontree.Path, oldVal, newVal jsontree.Value) {
	if jsontree.Equal(oldVal, newVal) {
		if w.includeUnchanged {
			w.emit(ChangeRecord{
				Path: path,
				Kind: ChangeUnchanged,
				Old:  valuePtr(oldVal),
				New:  valuePtr(newVal),
			})
		}
		return
	}
	w.emit(ChangeRecord{
		Path: path,
		Kind: ChangeValue,
		Old:  valuePtr(oldVal),
		New:  valuePtr(newVal),
	})
}

func (w *walker) emit(rec ChangeRecord) {
	w.records = append(w.records, rec)
}

func valuePtr(v jsontree.Value) *jsontree.Value {
	return &v
}
