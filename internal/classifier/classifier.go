package classifier

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/n0roo/content-locator/internal/content"
	"github.com/n0roo/content-locator/internal/fragment"
)

// Category is the bucket a block occurrence falls into.
type Category int

const (
	NativeBlock Category = iota
	CustomBlock
	FieldBlock
	Pattern
)

// Categories lists every category in declaration order.
var Categories = []Category{NativeBlock, CustomBlock, FieldBlock, Pattern}

func (c Category) String() string {
	switch c {
	case NativeBlock:
		return "native"
	case CustomBlock:
		return "custom"
	case FieldBlock:
		return "field"
	case Pattern:
		return "pattern"
	}
	return "unknown"
}

const (
	DefaultFieldPrefix      = "acf/"
	DefaultPlaceholderTitle = "Unknown Pattern"

	patternBlockName = "block"
)

// Result is the classification of one block.
type Result struct {
	Category Category
	// Key groups occurrences: the resolved title for patterns, the block
	// name otherwise.
	Key string
}

// Options configures a Classifier.
type Options struct {
	FieldPrefix      string
	PlaceholderTitle string
}

// Classifier assigns block occurrences to categories.
type Classifier struct {
	resolver    content.TitleResolver
	fieldPrefix string
	placeholder string
	logger      *zap.Logger
}

// New creates a classifier. A nil resolver resolves every reference to the
// placeholder title.
func New(resolver content.TitleResolver, opts Options, logger *zap.Logger) *Classifier {
	if opts.FieldPrefix == "" {
		opts.FieldPrefix = DefaultFieldPrefix
	}
	if opts.PlaceholderTitle == "" {
		opts.PlaceholderTitle = DefaultPlaceholderTitle
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{
		resolver:    resolver,
		fieldPrefix: opts.FieldPrefix,
		placeholder: opts.PlaceholderTitle,
		logger:      logger,
	}
}

// Category returns the category of a block without resolving titles.
func (c *Classifier) Category(b fragment.Block) Category {
	switch {
	case b.Name == patternBlockName && b.HasRef:
		return Pattern
	case strings.HasPrefix(b.Name, c.fieldPrefix):
		return FieldBlock
	case strings.Contains(b.Name, "/"):
		return CustomBlock
	default:
		return NativeBlock
	}
}

// Classify returns the category and grouping key of a block. It fails only
// when ctx ends during a pattern title lookup; the occurrence must then be
// dropped rather than counted under the placeholder.
func (c *Classifier) Classify(ctx context.Context, b fragment.Block) (Result, error) {
	cat := c.Category(b)
	if cat != Pattern {
		return Result{Category: cat, Key: b.Name}, nil
	}
	title, err := c.resolveTitle(ctx, b.Ref)
	if err != nil {
		return Result{}, err
	}
	return Result{Category: Pattern, Key: title}, nil
}

func (c *Classifier) resolveTitle(ctx context.Context, ref int64) (string, error) {
	if c.resolver == nil {
		return c.placeholder, nil
	}
	title, err := c.resolver.ResolveTitle(ctx, ref)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if !errors.Is(err, content.ErrNotFound) {
			c.logger.Warn("pattern title lookup failed", zap.Int64("ref", ref), zap.Error(err))
		}
		return c.placeholder, nil
	}
	if title == "" {
		return c.placeholder, nil
	}
	return title, nil
}
