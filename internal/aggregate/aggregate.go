// Package aggregate folds occurrences into per-key, per-document counts.
package aggregate

import (
	"sort"

	"github.com/n0roo/content-locator/internal/content"
)

// Entry is the usage of one key on one document.
type Entry struct {
	Title  string `json:"title"`
	ID     int64  `json:"id"`
	Type   string `json:"type"`
	Status string `json:"status"`
	Count  int    `json:"count"`

	ViewURL string `json:"view_url,omitempty"`
	EditURL string `json:"edit_url,omitempty"`
}

// Group is one key with its entries and the sum of their counts.
type Group struct {
	Key     string  `json:"key"`
	Total   int     `json:"total"`
	Entries []Entry `json:"entries"`
}

// orderedMap keeps insertion order of its keys.
type orderedMap[K comparable, V any] struct {
	keys   []K
	values map[K]V
}

func newOrderedMap[K comparable, V any]() *orderedMap[K, V] {
	return &orderedMap[K, V]{values: make(map[K]V)}
}

func (m *orderedMap[K, V]) get(k K) (V, bool) {
	v, ok := m.values[k]
	return v, ok
}

func (m *orderedMap[K, V]) set(k K, v V) {
	if _, ok := m.values[k]; !ok {
		m.keys = append(m.keys, k)
	}
	m.values[k] = v
}

func (m *orderedMap[K, V]) len() int {
	return len(m.keys)
}

// Table accumulates key -> document id -> entry.
type Table struct {
	groups *orderedMap[string, *orderedMap[int64, *Entry]]
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{groups: newOrderedMap[string, *orderedMap[int64, *Entry]]()}
}

// Add records one occurrence of key on doc. The first occurrence captures
// the document metadata; later ones only increment the count.
func (t *Table) Add(key string, doc content.Document) {
	t.entry(key, doc).Count++
}

// AddOnce records key on doc with count 1. Repeats for the same pair are
// ignored.
func (t *Table) AddOnce(key string, doc content.Document) {
	t.entry(key, doc).Count = 1
}

func (t *Table) entry(key string, doc content.Document) *Entry {
	docs, ok := t.groups.get(key)
	if !ok {
		docs = newOrderedMap[int64, *Entry]()
		t.groups.set(key, docs)
	}
	e, ok := docs.get(doc.ID)
	if !ok {
		e = &Entry{Title: doc.Title, ID: doc.ID, Type: doc.Type, Status: doc.Status}
		docs.set(doc.ID, e)
	}
	return e
}

// Len returns the number of distinct keys.
func (t *Table) Len() int {
	return t.groups.len()
}

// Count returns the count of key on a document, 0 when absent.
func (t *Table) Count(key string, docID int64) int {
	docs, ok := t.groups.get(key)
	if !ok {
		return 0
	}
	if e, ok := docs.get(docID); ok {
		return e.Count
	}
	return 0
}

// Groups returns the keys in lexicographic order with totals. Entries keep
// the order in which their documents were first seen.
func (t *Table) Groups() []Group {
	keys := append([]string(nil), t.groups.keys...)
	sort.Strings(keys)

	out := make([]Group, 0, len(keys))
	for _, k := range keys {
		docs, _ := t.groups.get(k)
		g := Group{Key: k, Entries: make([]Entry, 0, docs.len())}
		for _, id := range docs.keys {
			e, _ := docs.get(id)
			g.Entries = append(g.Entries, *e)
			g.Total += e.Count
		}
		out = append(out, g)
	}
	return out
}
