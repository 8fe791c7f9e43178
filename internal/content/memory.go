package content

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Corpus is the YAML representation of a document corpus with its field
// definitions and stored field values. It seeds the database on import and
// backs MemoryStore for database-less scans.
type Corpus struct {
	Documents   []Document    `yaml:"documents"`
	FieldGroups []CorpusGroup `yaml:"field_groups,omitempty"`
	Values      []CorpusValue `yaml:"values,omitempty"`
}

// CorpusGroup is a field group together with its fields.
type CorpusGroup struct {
	FieldGroup `yaml:",inline"`
	Fields     []FieldDef `yaml:"fields"`
}

// CorpusValue is a stored field value in a corpus file.
type CorpusValue struct {
	Document int64  `yaml:"document"`
	Field    string `yaml:"field"`
	Value    string `yaml:"value"`
}

// LoadCorpus reads a YAML corpus file.
func LoadCorpus(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("코퍼스 파일 읽기 실패: %w", err)
	}
	return ParseCorpus(data)
}

// ParseCorpus decodes a YAML corpus.
func ParseCorpus(data []byte) (*Corpus, error) {
	var c Corpus
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("코퍼스 파싱 실패: %w", err)
	}
	seen := make(map[int64]bool, len(c.Documents))
	for _, d := range c.Documents {
		if seen[d.ID] {
			return nil, fmt.Errorf("중복 문서 ID: %d", d.ID)
		}
		seen[d.ID] = true
	}
	return &c, nil
}

// MemoryStore is an in-memory DocumentStore, TitleResolver and FieldRegistry.
type MemoryStore struct {
	docs   []Document
	byID   map[int64]int
	groups []CorpusGroup
	values map[string][]StoredValue

	// FieldsUnavailable makes the registry methods return ErrUnavailable.
	FieldsUnavailable bool
}

// NewMemoryStore builds a store from a corpus. A nil corpus gives an empty store.
func NewMemoryStore(c *Corpus) *MemoryStore {
	s := &MemoryStore{
		byID:   make(map[int64]int),
		values: make(map[string][]StoredValue),
	}
	if c == nil {
		return s
	}
	for _, d := range c.Documents {
		s.AddDocument(d)
	}
	s.groups = append(s.groups, c.FieldGroups...)
	for _, v := range c.Values {
		s.SetValue(v.Field, v.Document, v.Value)
	}
	return s
}

// AddDocument adds or replaces a document.
func (s *MemoryStore) AddDocument(d Document) {
	if i, ok := s.byID[d.ID]; ok {
		s.docs[i] = d
		return
	}
	s.byID[d.ID] = len(s.docs)
	s.docs = append(s.docs, d)
}

// AddFieldGroup registers a group with its fields.
func (s *MemoryStore) AddFieldGroup(g FieldGroup, fields ...FieldDef) {
	s.groups = append(s.groups, CorpusGroup{FieldGroup: g, Fields: fields})
}

// SetValue appends a stored value for a field name.
func (s *MemoryStore) SetValue(fieldName string, docID int64, raw string) {
	s.values[fieldName] = append(s.values[fieldName], StoredValue{DocumentID: docID, Raw: raw})
}

// QueryDocuments returns matching documents in insertion order.
func (s *MemoryStore) QueryDocuments(ctx context.Context, q Query) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []Document
	for _, d := range s.docs {
		if q.Accepts(d) && q.Filter.Match(d.Body) {
			out = append(out, d)
		}
	}
	return out, nil
}

// FetchDocument returns a document by id.
func (s *MemoryStore) FetchDocument(_ context.Context, id int64) (Document, error) {
	i, ok := s.byID[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return s.docs[i], nil
}

// ResolveTitle returns the title of any stored document.
func (s *MemoryStore) ResolveTitle(ctx context.Context, id int64) (string, error) {
	d, err := s.FetchDocument(ctx, id)
	if err != nil {
		return "", err
	}
	return d.Title, nil
}

// ListFieldGroups returns the registered groups.
func (s *MemoryStore) ListFieldGroups(context.Context) ([]FieldGroup, error) {
	if s.FieldsUnavailable {
		return nil, ErrUnavailable
	}
	out := make([]FieldGroup, 0, len(s.groups))
	for _, g := range s.groups {
		out = append(out, g.FieldGroup)
	}
	return out, nil
}

// ListFields returns the fields of a group with GroupTitle filled in.
func (s *MemoryStore) ListFields(_ context.Context, group FieldGroup) ([]FieldDef, error) {
	if s.FieldsUnavailable {
		return nil, ErrUnavailable
	}
	for _, g := range s.groups {
		if g.Key != group.Key {
			continue
		}
		out := make([]FieldDef, len(g.Fields))
		for i, f := range g.Fields {
			f.GroupTitle = g.Title
			out[i] = f
		}
		return out, nil
	}
	return nil, nil
}

// FetchStoredValues returns every stored value of a field name.
func (s *MemoryStore) FetchStoredValues(_ context.Context, fieldName string) ([]StoredValue, error) {
	if s.FieldsUnavailable {
		return nil, ErrUnavailable
	}
	return append([]StoredValue(nil), s.values[fieldName]...), nil
}
