// Package content defines the documents and field definitions a scan reads,
// and the store interfaces the report core depends on.
package content

import (
	"context"
	"errors"
	"strings"
)

// Document types
const (
	TypePost       = "post"
	TypePage       = "page"
	TypeAttachment = "attachment"
	TypeBlock      = "wp_block"
)

// Document statuses
const (
	StatusPublish   = "publish"
	StatusDraft     = "draft"
	StatusInherit   = "inherit"
	StatusAutoDraft = "auto-draft"
	StatusTrash     = "trash"
)

// Field kinds the field scanner understands
const (
	FieldTrueFalse = "true_false"
	FieldCheckbox  = "checkbox"
	FieldText      = "text"
)

var (
	// ErrNotFound is returned when a document or title lookup has no result.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable is returned when the field system is not installed.
	ErrUnavailable = errors.New("field system unavailable")
)

// Document is a read-only snapshot of a stored page or post.
type Document struct {
	ID     int64  `json:"id" yaml:"id"`
	Title  string `json:"title" yaml:"title"`
	Type   string `json:"type" yaml:"type"`
	Status string `json:"status" yaml:"status"`
	Body   string `json:"body,omitempty" yaml:"body"`
}

// FieldGroup is a named set of field definitions.
type FieldGroup struct {
	Key   string `json:"key" yaml:"key"`
	Title string `json:"title" yaml:"title"`
}

// FieldDef describes one field of a group.
type FieldDef struct {
	Key        string `json:"key" yaml:"key"`
	Name       string `json:"name" yaml:"name"`
	Label      string `json:"label" yaml:"label"`
	Kind       string `json:"kind" yaml:"kind"`
	GroupTitle string `json:"group_title" yaml:"-"`
}

// StoredValue is the raw stored value of a field on one document.
type StoredValue struct {
	DocumentID int64
	Raw        string
}

// Filter is the coarse body pre-filter of a corpus query. A body passes
// when it contains any of the substrings; an empty filter passes everything.
type Filter struct {
	Contains []string
}

// Match reports whether body passes the filter.
func (f Filter) Match(body string) bool {
	if len(f.Contains) == 0 {
		return true
	}
	for _, s := range f.Contains {
		if strings.Contains(body, s) {
			return true
		}
	}
	return false
}

// Query selects documents for a scan.
type Query struct {
	Types            []string
	ExcludedStatuses []string
	Filter           Filter
}

// Accepts reports whether doc satisfies the type and status constraints.
// The body filter is not applied.
func (q Query) Accepts(doc Document) bool {
	if len(q.Types) > 0 && !contains(q.Types, doc.Type) {
		return false
	}
	return !contains(q.ExcludedStatuses, doc.Status)
}

// DocumentStore provides read access to the document corpus.
type DocumentStore interface {
	QueryDocuments(ctx context.Context, q Query) ([]Document, error)
	// FetchDocument returns ErrNotFound when id does not exist.
	FetchDocument(ctx context.Context, id int64) (Document, error)
}

// TitleResolver looks up the display title of a reusable fragment.
type TitleResolver interface {
	// ResolveTitle returns ErrNotFound when id does not exist.
	ResolveTitle(ctx context.Context, id int64) (string, error)
}

// FieldRegistry exposes field definitions and their stored values.
type FieldRegistry interface {
	ListFieldGroups(ctx context.Context) ([]FieldGroup, error)
	ListFields(ctx context.Context, group FieldGroup) ([]FieldDef, error)
	FetchStoredValues(ctx context.Context, fieldName string) ([]StoredValue, error)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
