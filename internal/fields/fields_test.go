package fields

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/n0roo/content-locator/internal/aggregate"
	"github.com/n0roo/content-locator/internal/content"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		raw  string
		want any
	}{
		{`1`, "1"},
		{`yes`, "yes"},
		{`s:3:"yes";`, "yes"},
		{`i:1;`, int64(1)},
		{`b:1;`, true},
		{`d:0.5;`, 0.5},
		{`N;`, nil},
		{`a:2:{i:0;s:3:"yes";i:1;s:2:"no";}`, []any{"yes", "no"}},
		{`a:1:{s:3:"key";s:1:"1";}`, []any{"1"}},
		{`a:1:{i:0;a:1:{i:0;s:1:"x";}}`, []any{[]any{"x"}}},
		{`["yes","no"]`, []any{"yes", "no"}},
		{`s:20:"truncated";`, `s:20:"truncated";`},
		{`a:2:{i:0;s:1:"1";}`, `a:2:{i:0;s:1:"1";}`},
		{`O:8:"stdClass":0:{}`, `O:8:"stdClass":0:{}`},
		{`[not json`, `[not json`},
		{``, ``},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, Decode(tt.raw))
		})
	}
}

func TestDecodeCorruptArrayLength(t *testing.T) {
	for _, raw := range []string{`a:-1:{}`, `a:9223372036854775807:{}`, `a:99999:{i:0;s:1:"1";}`, `a:1:{i:0;a:-5:{}}`} {
		assert.NotPanics(t, func() {
			assert.Equal(t, raw, Decode(raw))
		}, raw)
	}
}

func TestDecodeArrayKeyOrder(t *testing.T) {
	assert.Equal(t, []any{"a", "b", "c"}, Decode(`a:3:{s:1:"z";s:1:"c";i:1;s:1:"b";i:0;s:1:"a";}`))
}

func TestDecodeMultibyteString(t *testing.T) {
	// length counts bytes
	assert.Equal(t, "예", Decode(`s:3:"예";`))
}

func TestIsTruthy(t *testing.T) {
	truthy := []string{
		`1`,
		`yes`,
		`s:1:"1";`,
		`s:3:"yes";`,
		`a:2:{i:0;s:3:"yes";i:1;s:2:"no";}`,
		`a:1:{i:0;s:1:"1";}`,
		`a:1:{i:0;i:1;}`,
		`["yes","no"]`,
		`{"a":"1"}`,
	}
	falsy := []string{
		``,
		`0`,
		`no`,
		`Yes`,
		`true`,
		`i:1;`,
		`b:1;`,
		`a:0:{}`,
		`a:1:{i:0;s:2:"no";}`,
		`["no"]`,
		`[["yes"]]`,
		`a:-1:{}`,
		`a:9223372036854775807:{}`,
		`a:1:{i:0;a:-5:{}}`,
	}

	for _, raw := range truthy {
		assert.True(t, IsTruthy(raw), "expected truthy: %s", raw)
	}
	for _, raw := range falsy {
		assert.False(t, IsTruthy(raw), "expected falsy: %s", raw)
	}
}

func newStore() *content.MemoryStore {
	s := content.NewMemoryStore(nil)
	s.AddDocument(content.Document{ID: 1, Title: "About", Type: "page", Status: "publish"})
	s.AddDocument(content.Document{ID: 2, Title: "Logo", Type: "attachment", Status: "inherit"})
	s.AddDocument(content.Document{ID: 3, Title: "Revision", Type: "page", Status: "inherit"})
	s.AddDocument(content.Document{ID: 4, Title: "News", Type: "post", Status: "draft"})
	s.AddDocument(content.Document{ID: 5, Title: "Product", Type: "product", Status: "publish"})

	s.AddFieldGroup(content.FieldGroup{Key: "group_1", Title: "Page Options"},
		content.FieldDef{Key: "field_1", Name: "hide_title", Label: "Hide Title", Kind: content.FieldTrueFalse},
		content.FieldDef{Key: "field_2", Name: "features", Label: "Features", Kind: content.FieldCheckbox},
		content.FieldDef{Key: "field_3", Name: "subtitle", Label: "Subtitle", Kind: content.FieldText},
	)
	return s
}

func TestScan(t *testing.T) {
	s := newStore()
	s.SetValue("hide_title", 1, "1")
	s.SetValue("hide_title", 4, "0")
	s.SetValue("hide_title", 5, "1")
	s.SetValue("hide_title", 99, "1")
	s.SetValue("features", 1, `a:2:{i:0;s:3:"yes";i:1;s:2:"no";}`)
	s.SetValue("features", 3, `a:2:{i:0;s:3:"yes";i:1;s:2:"no";}`)
	s.SetValue("features", 2, `a:1:{i:0;s:3:"yes";}`)
	s.SetValue("features", 4, `["1"]`)
	s.SetValue("subtitle", 1, "yes")

	scanner := NewScanner(s, s, DefaultOptions(), zaptest.NewLogger(t))
	table, err := scanner.Scan(context.Background())
	require.NoError(t, err)

	groups := table.Groups()
	require.Len(t, groups, 2)

	assert.Equal(t, "Features (Page Options)", groups[0].Key)
	assert.Equal(t, []aggregate.Entry{
		{Title: "About", ID: 1, Type: "page", Status: "publish", Count: 1},
		{Title: "News", ID: 4, Type: "post", Status: "draft", Count: 1},
	}, groups[0].Entries)

	assert.Equal(t, "Hide Title (Page Options)", groups[1].Key)
	assert.Equal(t, 1, groups[1].Total)
}

func TestScanDuplicateValueCountsOnce(t *testing.T) {
	s := newStore()
	s.SetValue("hide_title", 1, "1")
	s.SetValue("hide_title", 1, "yes")

	table, err := NewScanner(s, s, DefaultOptions(), nil).Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, table.Count(Key("Hide Title", "Page Options"), 1))
}

func TestScanSkipsCorruptValue(t *testing.T) {
	s := newStore()
	s.SetValue("features", 1, `a:-1:{}`)
	s.SetValue("features", 4, `a:1:{i:0;s:3:"yes";}`)

	var table *aggregate.Table
	require.NotPanics(t, func() {
		var err error
		table, err = NewScanner(s, s, DefaultOptions(), nil).Scan(context.Background())
		require.NoError(t, err)
	})
	key := Key("Features", "Page Options")
	assert.Zero(t, table.Count(key, 1))
	assert.Equal(t, 1, table.Count(key, 4))
}

func TestScanUnavailable(t *testing.T) {
	s := newStore()
	s.FieldsUnavailable = true

	table, err := NewScanner(s, s, DefaultOptions(), nil).Scan(context.Background())
	assert.True(t, errors.Is(err, content.ErrUnavailable))
	require.NotNil(t, table)
	assert.Zero(t, table.Len())
}

func TestScanNilRegistry(t *testing.T) {
	table, err := NewScanner(nil, newStore(), DefaultOptions(), nil).Scan(context.Background())
	assert.ErrorIs(t, err, content.ErrUnavailable)
	assert.Zero(t, table.Len())
}

type brokenValues struct {
	*content.MemoryStore
}

func (brokenValues) FetchStoredValues(context.Context, string) ([]content.StoredValue, error) {
	return nil, errors.New("disk I/O error")
}

func TestScanSkipsFailingField(t *testing.T) {
	s := newStore()
	table, err := NewScanner(brokenValues{s}, s, DefaultOptions(), zaptest.NewLogger(t)).Scan(context.Background())
	require.NoError(t, err)
	assert.Zero(t, table.Len())
}

func TestKey(t *testing.T) {
	assert.Equal(t, "Hide Title (Page Options)", Key("Hide Title", "Page Options"))
}
