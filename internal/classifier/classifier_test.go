package classifier

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/n0roo/content-locator/internal/content"
	"github.com/n0roo/content-locator/internal/fragment"
)

type stubResolver map[int64]string

func (s stubResolver) ResolveTitle(_ context.Context, id int64) (string, error) {
	title, ok := s[id]
	if !ok {
		return "", content.ErrNotFound
	}
	return title, nil
}

type failingResolver struct{}

func (failingResolver) ResolveTitle(context.Context, int64) (string, error) {
	return "", errors.New("connection reset")
}

func TestClassify(t *testing.T) {
	c := New(stubResolver{9: "My Pattern", 10: ""}, Options{}, zaptest.NewLogger(t))
	ctx := context.Background()

	tests := []struct {
		name  string
		block fragment.Block
		want  Result
	}{
		{"native", fragment.Block{Name: "paragraph"}, Result{NativeBlock, "paragraph"}},
		{"custom", fragment.Block{Name: "core/heading"}, Result{CustomBlock, "core/heading"}},
		{"field block", fragment.Block{Name: "acf/hero"}, Result{FieldBlock, "acf/hero"}},
		{"pattern", fragment.Block{Name: "block", Ref: 9, HasRef: true}, Result{Pattern, "My Pattern"}},
		{"unresolved pattern", fragment.Block{Name: "block", Ref: 404, HasRef: true}, Result{Pattern, DefaultPlaceholderTitle}},
		{"empty title", fragment.Block{Name: "block", Ref: 10, HasRef: true}, Result{Pattern, DefaultPlaceholderTitle}},
		{"block without ref", fragment.Block{Name: "block"}, Result{NativeBlock, "block"}},
		{"field prefix wins over slash", fragment.Block{Name: "acf/x"}, Result{FieldBlock, "acf/x"}},
		{"acf without slash", fragment.Block{Name: "acf"}, Result{NativeBlock, "acf"}},
		{"ref on non-pattern block", fragment.Block{Name: "core/embed", Ref: 3, HasRef: true}, Result{CustomBlock, "core/embed"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Classify(ctx, tt.block)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyResolverFailure(t *testing.T) {
	c := New(failingResolver{}, Options{}, zaptest.NewLogger(t))

	got, err := c.Classify(context.Background(), fragment.Block{Name: "block", Ref: 1, HasRef: true})
	require.NoError(t, err)
	assert.Equal(t, Result{Pattern, DefaultPlaceholderTitle}, got)
}

// cancellingResolver ends the build while a lookup is in flight
type cancellingResolver struct {
	cancel context.CancelFunc
}

func (r cancellingResolver) ResolveTitle(ctx context.Context, _ int64) (string, error) {
	r.cancel()
	return "", ctx.Err()
}

func TestClassifyInterruptedLookup(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c := New(cancellingResolver{cancel: cancel}, Options{}, zaptest.NewLogger(t))

	got, err := c.Classify(ctx, fragment.Block{Name: "block", Ref: 9, HasRef: true})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Result{}, got)

	// non-pattern blocks need no lookup
	got, err = c.Classify(ctx, fragment.Block{Name: "paragraph"})
	require.NoError(t, err)
	assert.Equal(t, Result{NativeBlock, "paragraph"}, got)
}

func TestClassifyNilResolver(t *testing.T) {
	c := New(nil, Options{PlaceholderTitle: "?"}, nil)

	got, err := c.Classify(context.Background(), fragment.Block{Name: "block", Ref: 1, HasRef: true})
	require.NoError(t, err)
	assert.Equal(t, Result{Pattern, "?"}, got)
}

func TestCustomFieldPrefix(t *testing.T) {
	c := New(nil, Options{FieldPrefix: "meta/"}, nil)

	assert.Equal(t, FieldBlock, c.Category(fragment.Block{Name: "meta/box"}))
	assert.Equal(t, CustomBlock, c.Category(fragment.Block{Name: "acf/hero"}))
}

// Every name maps to exactly one category.
func TestCategoryTotal(t *testing.T) {
	c := New(nil, Options{}, nil)
	names := []string{"", "block", "a", "a/b", "acf/", "acf/a", "x-y/z", "ACF/hero"}

	for _, name := range names {
		for _, hasRef := range []bool{false, true} {
			cat := c.Category(fragment.Block{Name: name, HasRef: hasRef, Ref: 1})
			assert.Contains(t, Categories, cat, "name=%q ref=%v", name, hasRef)
		}
	}
}

func TestCategoryString(t *testing.T) {
	assert.Equal(t, "native", NativeBlock.String())
	assert.Equal(t, "pattern", Pattern.String())
	assert.Equal(t, "unknown", Category(99).String())
}
