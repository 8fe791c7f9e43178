package db

import (
	"context"
	"fmt"

	"github.com/n0roo/content-locator/internal/content"
)

// ImportResult counts the rows written by Import.
type ImportResult struct {
	Documents   int `json:"documents"`
	FieldGroups int `json:"field_groups"`
	Fields      int `json:"fields"`
	Values      int `json:"values"`
}

// Import writes a corpus into the database in one transaction. Documents,
// groups and fields are upserted by key. With replace set, existing rows are
// removed first.
func (s *Store) Import(ctx context.Context, corpus *content.Corpus, replace bool) (*ImportResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("트랜잭션 시작 실패: %w", err)
	}
	defer tx.Rollback()

	if replace {
		for _, table := range []string{"field_values", "fields", "field_groups", "documents"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return nil, fmt.Errorf("%s 비우기 실패: %w", table, err)
			}
		}
	}

	result := &ImportResult{}

	for _, d := range corpus.Documents {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO documents (id, title, type, status, body)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				title = excluded.title, type = excluded.type,
				status = excluded.status, body = excluded.body`,
			d.ID, d.Title, d.Type, d.Status, d.Body)
		if err != nil {
			return nil, fmt.Errorf("문서 %d 저장 실패: %w", d.ID, err)
		}
		result.Documents++
	}

	for gi, g := range corpus.FieldGroups {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO field_groups (key, title, position) VALUES (?, ?, ?)
			ON CONFLICT (key) DO UPDATE SET title = excluded.title, position = excluded.position`,
			g.Key, g.Title, gi)
		if err != nil {
			return nil, fmt.Errorf("필드 그룹 %s 저장 실패: %w", g.Key, err)
		}
		result.FieldGroups++

		for fi, f := range g.Fields {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO fields (key, group_key, name, label, kind, position) VALUES (?, ?, ?, ?, ?, ?)
				ON CONFLICT (key) DO UPDATE SET
					group_key = excluded.group_key, name = excluded.name,
					label = excluded.label, kind = excluded.kind, position = excluded.position`,
				f.Key, g.Key, f.Name, f.Label, f.Kind, fi)
			if err != nil {
				return nil, fmt.Errorf("필드 %s 저장 실패: %w", f.Key, err)
			}
			result.Fields++
		}
	}

	if len(corpus.Values) > 0 {
		var next int64
		if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM field_values`).Scan(&next); err != nil {
			return nil, fmt.Errorf("값 순번 조회 실패: %w", err)
		}
		for _, v := range corpus.Values {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO field_values (seq, document_id, field_name, value) VALUES (?, ?, ?, ?)`,
				next, v.Document, v.Field, v.Value)
			if err != nil {
				return nil, fmt.Errorf("필드 값 저장 실패 (%s/%d): %w", v.Field, v.Document, err)
			}
			next++
			result.Values++
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("커밋 실패: %w", err)
	}
	return result, nil
}
