// Package fields finds documents where a boolean-like custom field is set.
package fields

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/n0roo/content-locator/internal/aggregate"
	"github.com/n0roo/content-locator/internal/content"
)

// Options configures a Scanner.
type Options struct {
	// Kinds are the field kinds that are scanned.
	Kinds []string
	// Types restricts matches to these document types.
	Types []string
	// ExcludedStatus drops documents with this status (attachment metadata).
	ExcludedStatus string
}

// DefaultOptions returns the standard scanner options.
func DefaultOptions() Options {
	return Options{
		Kinds:          []string{content.FieldTrueFalse, content.FieldCheckbox},
		Types:          []string{content.TypePost, content.TypePage},
		ExcludedStatus: content.StatusInherit,
	}
}

// Scanner walks the field registry and collects truthy stored values.
type Scanner struct {
	registry content.FieldRegistry
	docs     content.DocumentStore
	opts     Options
	logger   *zap.Logger
}

// NewScanner creates a scanner. registry may be nil when no field system is
// installed.
func NewScanner(registry content.FieldRegistry, docs content.DocumentStore, opts Options, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{registry: registry, docs: docs, opts: opts, logger: logger}
}

// Key is the grouping key of a field: "Label (Group Title)".
func Key(label, groupTitle string) string {
	return label + " (" + groupTitle + ")"
}

// Scan returns a table keyed by field, one entry with count 1 per matching
// document. The table is never nil. A missing field system yields an empty
// table and an error wrapping content.ErrUnavailable; failures of single
// fields are logged and skipped.
func (s *Scanner) Scan(ctx context.Context) (*aggregate.Table, error) {
	table := aggregate.NewTable()
	if s.registry == nil || s.docs == nil {
		return table, content.ErrUnavailable
	}

	groups, err := s.registry.ListFieldGroups(ctx)
	if err != nil {
		return table, fmt.Errorf("필드 그룹 조회 실패: %w", err)
	}

	for _, group := range groups {
		defs, err := s.registry.ListFields(ctx, group)
		if err != nil {
			if errors.Is(err, content.ErrUnavailable) {
				return table, err
			}
			s.logger.Warn("field list failed", zap.String("group", group.Key), zap.Error(err))
			continue
		}
		for _, def := range defs {
			if !s.scannable(def) {
				continue
			}
			if err := s.scanField(ctx, table, group, def); err != nil {
				if ctx.Err() != nil {
					return table, ctx.Err()
				}
				s.logger.Warn("field scan failed",
					zap.String("group", group.Key),
					zap.String("field", def.Name),
					zap.Error(err))
			}
		}
	}
	return table, nil
}

func (s *Scanner) scannable(def content.FieldDef) bool {
	for _, k := range s.opts.Kinds {
		if def.Kind == k {
			return true
		}
	}
	return false
}

func (s *Scanner) scanField(ctx context.Context, table *aggregate.Table, group content.FieldGroup, def content.FieldDef) error {
	values, err := s.registry.FetchStoredValues(ctx, def.Name)
	if err != nil {
		return err
	}

	key := Key(def.Label, group.Title)
	for _, v := range values {
		if !IsTruthy(v.Raw) {
			continue
		}
		doc, err := s.docs.FetchDocument(ctx, v.DocumentID)
		if err != nil {
			if errors.Is(err, content.ErrNotFound) {
				continue
			}
			return fmt.Errorf("문서 %d 조회 실패: %w", v.DocumentID, err)
		}
		if !s.qualifies(doc) {
			continue
		}
		table.AddOnce(key, doc)
	}
	return nil
}

func (s *Scanner) qualifies(doc content.Document) bool {
	if doc.Status == s.opts.ExcludedStatus {
		return false
	}
	for _, t := range s.opts.Types {
		if doc.Type == t {
			return true
		}
	}
	return false
}
