package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/n0roo/content-locator/internal/aggregate"
	"github.com/n0roo/content-locator/internal/content"
	"github.com/n0roo/content-locator/internal/fragment"
)

func newBuilder(t *testing.T, s *content.MemoryStore) *Builder {
	t.Helper()
	return NewBuilder(Sources{Documents: s, Titles: s, Fields: s}, DefaultOptions(), zaptest.NewLogger(t))
}

func corpusStore() *content.MemoryStore {
	s := content.NewMemoryStore(nil)
	s.AddDocument(content.Document{ID: 5, Title: "Post A", Type: "post", Status: "publish",
		Body: `<!-- wp:paragraph --> hello <!-- wp:paragraph -->`})
	s.AddDocument(content.Document{ID: 6, Title: "Landing", Type: "page", Status: "draft",
		Body: `<!-- wp:block {"ref":9} /--><!-- wp:block {"ref":77} /--><!-- wp:acf/hero {"name":"acf/hero"} /-->[gallery ids="1,2"]`})
	s.AddDocument(content.Document{ID: 7, Title: "Contact", Type: "page", Status: "publish",
		Body: `<!-- wp:core/heading --><!-- wp:paragraph -->[contact-form-7 id="3"][gallery ids="1,2"]`})
	s.AddDocument(content.Document{ID: 8, Title: "photo.jpg", Type: "attachment", Status: "inherit",
		Body: `<!-- wp:paragraph -->[caption]`})
	s.AddDocument(content.Document{ID: 9, Title: "My Pattern", Type: "wp_block", Status: "publish",
		Body: `<!-- wp:paragraph -->`})
	s.AddDocument(content.Document{ID: 10, Title: "Trashed", Type: "post", Status: "trash",
		Body: `<!-- wp:paragraph -->`})

	s.AddFieldGroup(content.FieldGroup{Key: "group_1", Title: "Page Options"},
		content.FieldDef{Key: "field_1", Name: "features", Label: "Features", Kind: content.FieldCheckbox})
	s.SetValue("features", 6, `a:2:{i:0;s:3:"yes";i:1;s:2:"no";}`)
	s.SetValue("features", 8, `a:2:{i:0;s:3:"yes";i:1;s:2:"no";}`)
	return s
}

func TestBuildNativeBlockCounts(t *testing.T) {
	r := newBuilder(t, corpusStore()).Build(context.Background())

	native := r.Bucket(NativeBlocks)
	require.NotNil(t, native)
	g, ok := native.Group("paragraph")
	require.True(t, ok)

	assert.Equal(t, 3, g.Total)
	assert.Equal(t, []aggregate.Entry{
		{Title: "Post A", ID: 5, Type: "post", Status: "publish", Count: 2},
		{Title: "Contact", ID: 7, Type: "page", Status: "publish", Count: 1},
	}, g.Entries)
}

func TestBuildBuckets(t *testing.T) {
	r := newBuilder(t, corpusStore()).Build(context.Background())

	keys := func(name BucketName) []string {
		var out []string
		for _, g := range r.Bucket(name).Groups {
			out = append(out, g.Key)
		}
		return out
	}

	assert.Equal(t, []string{"paragraph"}, keys(NativeBlocks))
	assert.Equal(t, []string{"core/heading"}, keys(CustomBlocks))
	assert.Equal(t, []string{"acf/hero"}, keys(FieldBlocks))
	assert.Equal(t, []string{"My Pattern", "Unknown Pattern"}, keys(Patterns))
	assert.Equal(t, []string{`[contact-form-7 id="3"]`, `[gallery ids="1,2"]`}, keys(Shortcodes))
	assert.Equal(t, []string{"Features (Page Options)"}, keys(FieldUsages))
	assert.Equal(t, []string{"acf/hero"}, r.UsedFieldBlocks)

	// 3 of 6 documents pass the corpus query
	assert.Equal(t, 3, r.Documents)
	assert.Empty(t, r.Warnings)
}

func TestBuildBucketOrder(t *testing.T) {
	r := newBuilder(t, content.NewMemoryStore(nil)).Build(context.Background())

	require.Len(t, r.Buckets, len(BucketNames))
	for i, name := range BucketNames {
		assert.Equal(t, name, r.Buckets[i].Name)
		assert.Equal(t, name.Title(), r.Buckets[i].Title)
		assert.Empty(t, r.Buckets[i].Groups)
	}
}

func TestBuildShortcodeKeyIsLiteral(t *testing.T) {
	r := newBuilder(t, corpusStore()).Build(context.Background())

	g, ok := r.Bucket(Shortcodes).Group(`[gallery ids="1,2"]`)
	require.True(t, ok)
	assert.Equal(t, 2, g.Total)
	assert.Len(t, g.Entries, 2)
}

func TestBuildFieldUsageExcludesInherit(t *testing.T) {
	r := newBuilder(t, corpusStore()).Build(context.Background())

	g, ok := r.Bucket(FieldUsages).Group("Features (Page Options)")
	require.True(t, ok)
	require.Len(t, g.Entries, 1)
	assert.Equal(t, int64(6), g.Entries[0].ID)
	assert.Equal(t, 1, g.Entries[0].Count)
}

func TestBuildAttachmentNeverIncluded(t *testing.T) {
	r := newBuilder(t, corpusStore()).Build(context.Background())

	for _, b := range r.Buckets {
		for _, g := range b.Groups {
			for _, e := range g.Entries {
				assert.NotEqual(t, int64(8), e.ID, "attachment in %s/%s", b.Name, g.Key)
			}
		}
	}
	_, ok := r.Bucket(Shortcodes).Group("[caption]")
	assert.False(t, ok)
}

// Totals equal the raw occurrence counts over the scanned corpus.
func TestBuildConservesCounts(t *testing.T) {
	s := corpusStore()
	b := newBuilder(t, s)
	r := b.Build(context.Background())

	docs, err := s.QueryDocuments(context.Background(), b.Query())
	require.NoError(t, err)

	raw := map[string]int{}
	for _, d := range docs {
		for _, sc := range fragment.ExtractShortcodes(d.Body) {
			raw[sc.Text]++
		}
	}
	for key, n := range raw {
		g, ok := r.Bucket(Shortcodes).Group(key)
		require.True(t, ok, key)
		assert.Equal(t, n, g.Total, key)
	}

	blocks := 0
	for _, d := range docs {
		blocks += len(fragment.ExtractBlocks(d.Body))
	}
	sum := 0
	for _, name := range []BucketName{NativeBlocks, CustomBlocks, FieldBlocks, Patterns} {
		sum += r.Bucket(name).Total()
	}
	assert.Equal(t, blocks, sum)
}

func TestBuildIdempotent(t *testing.T) {
	b := newBuilder(t, corpusStore())

	first := b.Build(context.Background())
	second := b.Build(context.Background())

	assert.NotEqual(t, first.ID, second.ID)
	if diff := cmp.Diff(first, second, cmpopts.IgnoreFields(Report{}, "ID", "GeneratedAt")); diff != "" {
		t.Errorf("reports differ (-first +second):\n%s", diff)
	}
}

func TestBuildFieldsUnavailable(t *testing.T) {
	s := corpusStore()
	s.FieldsUnavailable = true

	r := newBuilder(t, s).Build(context.Background())

	assert.Empty(t, r.Bucket(FieldUsages).Groups)
	assert.NotEmpty(t, r.Bucket(NativeBlocks).Groups)
	require.Len(t, r.Warnings, 1)
}

func TestBuildWithoutFieldRegistry(t *testing.T) {
	s := corpusStore()
	r := NewBuilder(Sources{Documents: s, Titles: s}, DefaultOptions(), nil).Build(context.Background())

	assert.Empty(t, r.Bucket(FieldUsages).Groups)
	assert.NotEmpty(t, r.Bucket(Patterns).Groups)
}

type failingStore struct {
	*content.MemoryStore
}

func (failingStore) QueryDocuments(context.Context, content.Query) ([]content.Document, error) {
	return nil, errors.New("database is locked")
}

func TestBuildQueryFailureIsPartial(t *testing.T) {
	s := corpusStore()
	fs := failingStore{s}
	r := NewBuilder(Sources{Documents: fs, Titles: s, Fields: s}, DefaultOptions(), nil).Build(context.Background())

	assert.Zero(t, r.Documents)
	assert.Empty(t, r.Bucket(NativeBlocks).Groups)
	// field scan still runs
	assert.NotEmpty(t, r.Bucket(FieldUsages).Groups)
	require.NotEmpty(t, r.Warnings)
	assert.Contains(t, r.Warnings[0], "database is locked")
}

func TestBuildNoDocumentStore(t *testing.T) {
	r := NewBuilder(Sources{}, DefaultOptions(), nil).Build(context.Background())

	assert.Len(t, r.Buckets, len(BucketNames))
	assert.NotEmpty(t, r.Warnings)
}

func TestBuildCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newBuilder(t, corpusStore()).Build(ctx)

	assert.Len(t, r.Buckets, len(BucketNames))
	assert.NotEmpty(t, r.Warnings)
	assert.Empty(t, r.Bucket(NativeBlocks).Groups)
}

func TestBuildTimeoutOption(t *testing.T) {
	opts := DefaultOptions()
	opts.Timeout = time.Minute
	s := corpusStore()

	r := NewBuilder(Sources{Documents: s, Titles: s, Fields: s}, opts, nil).Build(context.Background())
	assert.Empty(t, r.Warnings)
}

// blockingResolver waits for the build to end before answering
type blockingResolver struct{}

func (blockingResolver) ResolveTitle(ctx context.Context, _ int64) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func interruptedStore() *content.MemoryStore {
	s := content.NewMemoryStore(nil)
	s.AddDocument(content.Document{ID: 1, Title: "First", Type: "post", Status: "publish",
		Body: `<!-- wp:paragraph -->[gallery]`})
	s.AddDocument(content.Document{ID: 2, Title: "Landing", Type: "page", Status: "publish",
		Body: `<!-- wp:paragraph --><!-- wp:block {"ref":9} /-->[gallery]`})
	s.AddDocument(content.Document{ID: 3, Title: "Last", Type: "post", Status: "publish",
		Body: `<!-- wp:paragraph -->`})
	s.AddDocument(content.Document{ID: 9, Title: "My Pattern", Type: "wp_block", Status: "publish"})

	s.AddFieldGroup(content.FieldGroup{Key: "group_1", Title: "Page Options"},
		content.FieldDef{Key: "field_1", Name: "hide_title", Label: "Hide Title", Kind: content.FieldTrueFalse})
	s.SetValue("hide_title", 1, "1")
	return s
}

func assertInterrupted(t *testing.T, r *Report) {
	t.Helper()

	g, ok := r.Bucket(NativeBlocks).Group("paragraph")
	require.True(t, ok)
	assert.Equal(t, 1, g.Total, "only the document scanned before the interruption counts")
	g, ok = r.Bucket(Shortcodes).Group("[gallery]")
	require.True(t, ok)
	assert.Equal(t, 1, g.Total)

	assert.Empty(t, r.Bucket(Patterns).Groups)
	_, ok = r.Bucket(Patterns).Group(DefaultOptions().PlaceholderTitle)
	assert.False(t, ok)
	assert.Empty(t, r.Bucket(FieldUsages).Groups)

	require.Len(t, r.Warnings, 2)
	assert.Contains(t, r.Warnings[0], "1/3")
	assert.Contains(t, r.Warnings[1], "필드 스캔 생략")
}

func TestBuildTimeoutExpires(t *testing.T) {
	opts := DefaultOptions()
	opts.Timeout = 20 * time.Millisecond
	s := interruptedStore()

	r := NewBuilder(Sources{Documents: s, Titles: blockingResolver{}, Fields: s}, opts, zaptest.NewLogger(t)).
		Build(context.Background())

	assertInterrupted(t, r)
	assert.Contains(t, r.Warnings[0], context.DeadlineExceeded.Error())
}

// cancellingResolver cancels the build from inside a title lookup
type cancellingResolver struct {
	cancel context.CancelFunc
}

func (r cancellingResolver) ResolveTitle(ctx context.Context, _ int64) (string, error) {
	r.cancel()
	return "", ctx.Err()
}

func TestBuildCancelledDuringLookup(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := interruptedStore()

	r := NewBuilder(Sources{Documents: s, Titles: cancellingResolver{cancel: cancel}, Fields: s}, DefaultOptions(), nil).
		Build(ctx)

	assertInterrupted(t, r)
	assert.Contains(t, r.Warnings[1], context.Canceled.Error())
}

type fixedExtractor struct{}

func (fixedExtractor) Extract(string) fragment.Occurrences {
	return fragment.Occurrences{Blocks: []fragment.Block{{Name: "custom"}}}
}

func TestBuildWithExtractor(t *testing.T) {
	b := newBuilder(t, corpusStore()).WithExtractor(fixedExtractor{})
	r := b.Build(context.Background())

	g, ok := r.Bucket(NativeBlocks).Group("custom")
	require.True(t, ok)
	assert.Equal(t, 3, g.Total)
	assert.Empty(t, r.Bucket(Shortcodes).Groups)
}

func TestBucketNames(t *testing.T) {
	assert.True(t, Patterns.Valid())
	assert.False(t, BucketName("nope").Valid())
	assert.Equal(t, "ACF Blocks", FieldBlocks.Title())
	assert.Equal(t, "nope", BucketName("nope").Title())
}
