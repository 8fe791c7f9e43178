package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/n0roo/content-locator/internal/content"
)

// Store serves documents and field definitions from a Database.
type Store struct {
	db Database
}

var (
	_ content.DocumentStore = (*Store)(nil)
	_ content.TitleResolver = (*Store)(nil)
	_ content.FieldRegistry = (*Store)(nil)
)

// NewStore creates a store over an open database.
func NewStore(d Database) *Store {
	return &Store{db: d}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// QueryDocuments returns documents matching q ordered by id. The body filter
// is pushed down as LIKE clauses and re-checked in Go.
func (s *Store) QueryDocuments(ctx context.Context, q content.Query) ([]content.Document, error) {
	var where []string
	var args []any

	if len(q.Types) > 0 {
		where = append(where, fmt.Sprintf("type IN (%s)", placeholders(len(q.Types))))
		for _, t := range q.Types {
			args = append(args, t)
		}
	}
	if len(q.ExcludedStatuses) > 0 {
		where = append(where, fmt.Sprintf("status NOT IN (%s)", placeholders(len(q.ExcludedStatuses))))
		for _, st := range q.ExcludedStatuses {
			args = append(args, st)
		}
	}
	if len(q.Filter.Contains) > 0 {
		likes := make([]string, 0, len(q.Filter.Contains))
		for _, sub := range q.Filter.Contains {
			likes = append(likes, `body LIKE ? ESCAPE '\'`)
			args = append(args, "%"+likeEscaper.Replace(sub)+"%")
		}
		where = append(where, "("+strings.Join(likes, " OR ")+")")
	}

	query := `SELECT id, title, type, status, body FROM documents`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("문서 조회 실패: %w", err)
	}
	defer rows.Close()

	var docs []content.Document
	for rows.Next() {
		var d content.Document
		if err := rows.Scan(&d.ID, &d.Title, &d.Type, &d.Status, &d.Body); err != nil {
			return nil, fmt.Errorf("문서 읽기 실패: %w", err)
		}
		// LIKE는 대소문자를 구분하지 않으므로 다시 확인
		if q.Filter.Match(d.Body) {
			docs = append(docs, d)
		}
	}
	return docs, rows.Err()
}

// FetchDocument returns one document by id.
func (s *Store) FetchDocument(ctx context.Context, id int64) (content.Document, error) {
	var d content.Document
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, type, status, body FROM documents WHERE id = ?`, id,
	).Scan(&d.ID, &d.Title, &d.Type, &d.Status, &d.Body)
	if errors.Is(err, sql.ErrNoRows) {
		return content.Document{}, content.ErrNotFound
	}
	if err != nil {
		return content.Document{}, fmt.Errorf("문서 %d 조회 실패: %w", id, err)
	}
	return d, nil
}

// ResolveTitle returns the title of the document with the given id.
func (s *Store) ResolveTitle(ctx context.Context, id int64) (string, error) {
	var title string
	err := s.db.QueryRowContext(ctx, `SELECT title FROM documents WHERE id = ?`, id).Scan(&title)
	if errors.Is(err, sql.ErrNoRows) {
		return "", content.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("제목 조회 실패: %w", err)
	}
	return title, nil
}

// ListFieldGroups returns field groups in position order. A database
// without field tables reports content.ErrUnavailable.
func (s *Store) ListFieldGroups(ctx context.Context) ([]content.FieldGroup, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, title FROM field_groups ORDER BY position, key`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", content.ErrUnavailable, err)
	}
	defer rows.Close()

	var groups []content.FieldGroup
	for rows.Next() {
		var g content.FieldGroup
		if err := rows.Scan(&g.Key, &g.Title); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// ListFields returns the fields of a group in position order.
func (s *Store) ListFields(ctx context.Context, group content.FieldGroup) ([]content.FieldDef, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, name, label, kind FROM fields WHERE group_key = ? ORDER BY position, key`, group.Key)
	if err != nil {
		return nil, fmt.Errorf("필드 조회 실패: %w", err)
	}
	defer rows.Close()

	var defs []content.FieldDef
	for rows.Next() {
		f := content.FieldDef{GroupTitle: group.Title}
		if err := rows.Scan(&f.Key, &f.Name, &f.Label, &f.Kind); err != nil {
			return nil, err
		}
		defs = append(defs, f)
	}
	return defs, rows.Err()
}

// FetchStoredValues returns every stored value of a field name in insertion
// order.
func (s *Store) FetchStoredValues(ctx context.Context, fieldName string) ([]content.StoredValue, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT document_id, value FROM field_values WHERE field_name = ? ORDER BY seq`, fieldName)
	if err != nil {
		return nil, fmt.Errorf("필드 값 조회 실패: %w", err)
	}
	defer rows.Close()

	var values []content.StoredValue
	for rows.Next() {
		var v content.StoredValue
		var raw sql.NullString
		if err := rows.Scan(&v.DocumentID, &raw); err != nil {
			return nil, err
		}
		v.Raw = raw.String
		values = append(values, v)
	}
	return values, rows.Err()
}

// Stats counts stored rows per table.
type Stats struct {
	Documents   int            `json:"documents"`
	ByType      map[string]int `json:"by_type"`
	FieldGroups int            `json:"field_groups"`
	Fields      int            `json:"fields"`
	Values      int            `json:"values"`
}

// Stats returns row counts for the status endpoint.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{ByType: make(map[string]int)}

	rows, err := s.db.QueryContext(ctx, `SELECT type, COUNT(*) FROM documents GROUP BY type`)
	if err != nil {
		return nil, fmt.Errorf("통계 조회 실패: %w", err)
	}
	for rows.Next() {
		var t string
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			rows.Close()
			return nil, err
		}
		st.ByType[t] = n
		st.Documents += n
	}
	rows.Close()

	counts := []struct {
		table string
		dst   *int
	}{
		{"field_groups", &st.FieldGroups},
		{"fields", &st.Fields},
		{"field_values", &st.Values},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+c.table).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("%s 카운트 실패: %w", c.table, err)
		}
	}
	return st, nil
}
