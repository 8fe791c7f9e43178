package report

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/n0roo/content-locator/internal/aggregate"
	"github.com/n0roo/content-locator/internal/classifier"
	"github.com/n0roo/content-locator/internal/content"
	"github.com/n0roo/content-locator/internal/fields"
	"github.com/n0roo/content-locator/internal/fragment"
)

// Options configures a Builder.
type Options struct {
	Types            []string
	ExcludedStatuses []string

	FieldBlockPrefix string
	PlaceholderTitle string

	FieldKinds          []string
	FieldExcludedStatus string

	// Timeout bounds one build. Zero means no limit.
	Timeout time.Duration
}

// DefaultOptions returns the standard corpus and classification settings.
func DefaultOptions() Options {
	fo := fields.DefaultOptions()
	return Options{
		Types:               []string{content.TypePost, content.TypePage},
		ExcludedStatuses:    []string{content.StatusInherit, content.StatusAutoDraft, content.StatusTrash},
		FieldBlockPrefix:    classifier.DefaultFieldPrefix,
		PlaceholderTitle:    classifier.DefaultPlaceholderTitle,
		FieldKinds:          fo.Kinds,
		FieldExcludedStatus: fo.ExcludedStatus,
	}
}

// Sources are the external collaborators a build reads from. Fields may be
// nil when no field system is installed; Titles defaults to nil-safe
// placeholder resolution.
type Sources struct {
	Documents content.DocumentStore
	Titles    content.TitleResolver
	Fields    content.FieldRegistry
}

// Builder runs extraction, classification and aggregation over a corpus.
type Builder struct {
	src        Sources
	opts       Options
	extractor  fragment.Extractor
	classifier *classifier.Classifier
	scanner    *fields.Scanner
	logger     *zap.Logger
	now        func() time.Time
}

// NewBuilder creates a builder.
func NewBuilder(src Sources, opts Options, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		src:       src,
		opts:      opts,
		extractor: fragment.NewExtractor(),
		classifier: classifier.New(src.Titles, classifier.Options{
			FieldPrefix:      opts.FieldBlockPrefix,
			PlaceholderTitle: opts.PlaceholderTitle,
		}, logger),
		scanner: fields.NewScanner(src.Fields, src.Documents, fields.Options{
			Kinds:          opts.FieldKinds,
			Types:          opts.Types,
			ExcludedStatus: opts.FieldExcludedStatus,
		}, logger),
		logger: logger,
		now:    time.Now,
	}
}

// WithExtractor replaces the markup extractor.
func (b *Builder) WithExtractor(e fragment.Extractor) *Builder {
	b.extractor = e
	return b
}

// Query returns the corpus query a build runs.
func (b *Builder) Query() content.Query {
	return content.Query{
		Types:            b.opts.Types,
		ExcludedStatuses: b.opts.ExcludedStatuses,
		Filter:           content.Filter{Contains: []string{fragment.MarkerPrefix, fragment.ShortcodeOpen}},
	}
}

// Build scans the corpus and returns the report. It never fails: store
// errors, a missing field system and an expired deadline leave the affected
// buckets empty or partial and are listed in Report.Warnings.
func (b *Builder) Build(ctx context.Context) *Report {
	if b.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.opts.Timeout)
		defer cancel()
	}

	start := b.now()
	r := &Report{ID: uuid.NewString(), GeneratedAt: start}
	log := b.logger.With(zap.String("report_id", r.ID))

	tables := make(map[BucketName]*aggregate.Table, len(BucketNames))
	for _, name := range BucketNames {
		tables[name] = aggregate.NewTable()
	}
	used := make(map[string]bool)

	docs, err := b.queryDocuments(ctx)
	if err != nil {
		r.warn(log, "문서 조회 실패", err)
	}
	r.Documents = len(docs)

	for i, doc := range docs {
		err := ctx.Err()
		if err == nil {
			err = b.scanDocument(ctx, doc, tables, used)
		}
		if err != nil {
			r.warn(log, fmt.Sprintf("스캔 중단 (%d/%d 문서)", i, len(docs)), err)
			break
		}
	}

	if err := ctx.Err(); err != nil {
		r.warn(log, "필드 스캔 생략", err)
	} else {
		fieldTable, err := b.scanner.Scan(ctx)
		switch {
		case errors.Is(err, content.ErrUnavailable):
			r.warn(log, "필드 시스템 없음", err)
		case err != nil:
			r.warn(log, "필드 스캔 실패", err)
		}
		tables[FieldUsages] = fieldTable
	}

	for _, name := range BucketNames {
		r.Buckets = append(r.Buckets, Bucket{
			Name:   name,
			Title:  name.Title(),
			Groups: tables[name].Groups(),
		})
	}
	r.UsedFieldBlocks = make([]string, 0, len(used))
	for name := range used {
		r.UsedFieldBlocks = append(r.UsedFieldBlocks, name)
	}
	sort.Strings(r.UsedFieldBlocks)

	log.Info("report built",
		zap.Int("documents", r.Documents),
		zap.Int("warnings", len(r.Warnings)),
		zap.Duration("elapsed", b.now().Sub(start)))
	return r
}

func (b *Builder) queryDocuments(ctx context.Context) ([]content.Document, error) {
	if b.src.Documents == nil {
		return nil, errors.New("document store not configured")
	}
	return b.src.Documents.QueryDocuments(ctx, b.Query())
}

// scanDocument records one document's occurrences. A document interrupted
// mid-classification contributes nothing.
func (b *Builder) scanDocument(ctx context.Context, doc content.Document, tables map[BucketName]*aggregate.Table, used map[string]bool) error {
	occ := b.extractor.Extract(doc.Body)

	results := make([]classifier.Result, len(occ.Blocks))
	for i, block := range occ.Blocks {
		res, err := b.classifier.Classify(ctx, block)
		if err != nil {
			return err
		}
		results[i] = res
	}

	for i, res := range results {
		if res.Category == classifier.FieldBlock {
			used[occ.Blocks[i].Name] = true
		}
		tables[bucketFor(res.Category)].Add(res.Key, doc)
	}
	for _, sc := range occ.Shortcodes {
		tables[Shortcodes].Add(sc.Text, doc)
	}
	return nil
}

func (r *Report) warn(log *zap.Logger, msg string, err error) {
	log.Warn(msg, zap.Error(err))
	r.Warnings = append(r.Warnings, fmt.Sprintf("%s: %v", msg, err))
}
