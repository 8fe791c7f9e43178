// Package report builds the content usage inventory.
package report

import (
	"time"

	"github.com/n0roo/content-locator/internal/aggregate"
	"github.com/n0roo/content-locator/internal/classifier"
)

// BucketName identifies one of the six report buckets.
type BucketName string

const (
	NativeBlocks BucketName = "native_blocks"
	CustomBlocks BucketName = "custom_blocks"
	FieldBlocks  BucketName = "field_blocks"
	FieldUsages  BucketName = "field_usages"
	Patterns     BucketName = "patterns"
	Shortcodes   BucketName = "shortcodes"
)

// BucketNames lists the buckets in display order.
var BucketNames = []BucketName{NativeBlocks, CustomBlocks, FieldBlocks, FieldUsages, Patterns, Shortcodes}

var bucketTitles = map[BucketName]string{
	NativeBlocks: "Native Blocks",
	CustomBlocks: "Custom Blocks",
	FieldBlocks:  "ACF Blocks",
	FieldUsages:  "True/False ACF Fields",
	Patterns:     "Patterns",
	Shortcodes:   "Shortcodes",
}

// Title returns the display title of the bucket.
func (n BucketName) Title() string {
	if t, ok := bucketTitles[n]; ok {
		return t
	}
	return string(n)
}

// Valid reports whether n names a known bucket.
func (n BucketName) Valid() bool {
	_, ok := bucketTitles[n]
	return ok
}

func bucketFor(c classifier.Category) BucketName {
	switch c {
	case classifier.Pattern:
		return Patterns
	case classifier.FieldBlock:
		return FieldBlocks
	case classifier.CustomBlock:
		return CustomBlocks
	default:
		return NativeBlocks
	}
}

// Bucket is one category of the report with its sorted groups.
type Bucket struct {
	Name   BucketName        `json:"name"`
	Title  string            `json:"title"`
	Groups []aggregate.Group `json:"groups"`
}

// Total returns the sum of all group totals.
func (b Bucket) Total() int {
	n := 0
	for _, g := range b.Groups {
		n += g.Total
	}
	return n
}

// Group returns the group with the given key.
func (b Bucket) Group(key string) (aggregate.Group, bool) {
	for _, g := range b.Groups {
		if g.Key == key {
			return g, true
		}
	}
	return aggregate.Group{}, false
}

// Report is the result of one scan. It is rebuilt on every request.
type Report struct {
	ID          string    `json:"id"`
	GeneratedAt time.Time `json:"generated_at"`
	// Documents is the number of documents returned by the corpus query.
	Documents       int      `json:"documents"`
	Buckets         []Bucket `json:"buckets"`
	UsedFieldBlocks []string `json:"used_field_blocks"`
	Warnings        []string `json:"warnings,omitempty"`
}

// Bucket returns the named bucket, or nil.
func (r *Report) Bucket(name BucketName) *Bucket {
	for i := range r.Buckets {
		if r.Buckets[i].Name == name {
			return &r.Buckets[i]
		}
	}
	return nil
}
