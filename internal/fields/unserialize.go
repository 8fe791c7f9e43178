package fields

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/elliotchance/phpserialize"
)

var errSyntax = errors.New("invalid serialized value")

// arrayHeader matches every "a:N:{" header, nested ones included
var arrayHeader = regexp.MustCompile(`a:(-?\d+):\{`)

// Decode turns a stored raw value into a Go value. PHP serialized scalars
// and arrays are decoded first, then JSON arrays and objects; anything else
// is returned unchanged as a string. Arrays decode to []any holding their
// values in key order, keys dropped.
func Decode(raw string) any {
	if v, err := unserialize(raw); err == nil {
		return v
	}
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
		var v any
		if err := json.Unmarshal([]byte(trimmed), &v); err == nil {
			return flattenJSON(v)
		}
	}
	return raw
}

func flattenJSON(v any) any {
	switch t := v.(type) {
	case map[string]any:
		// object member order is lost; values are only tested for membership
		out := make([]any, 0, len(t))
		for _, mv := range t {
			out = append(out, mv)
		}
		return out
	default:
		return v
	}
}

// unserialize decodes a PHP serialize() string. Objects and references are
// not supported. Corrupt input yields errSyntax, never a panic.
func unserialize(raw string) (v any, err error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, errSyntax
	}
	if err := checkArrayLengths(s); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			v, err = nil, fmt.Errorf("%w: %v", errSyntax, r)
		}
	}()

	data := []byte(s)
	switch s[0] {
	case 'N':
		return nil, phpserialize.UnmarshalNil(data)
	case 'b':
		return phpserialize.UnmarshalBool(data)
	case 'i':
		return phpserialize.UnmarshalInt(data)
	case 'd':
		return phpserialize.UnmarshalFloat(data)
	case 's':
		return phpserialize.UnmarshalString(data)
	case 'a':
		m, err := phpserialize.UnmarshalAssociativeArray(data)
		if err != nil {
			return nil, err
		}
		if declared := arrayHeader.FindStringSubmatch(s); declared == nil || declared[1] != strconv.Itoa(len(m)) {
			return nil, fmt.Errorf("%w: array length mismatch", errSyntax)
		}
		return arrayValues(m), nil
	}
	return nil, fmt.Errorf("%w: unsupported type %q", errSyntax, s[0])
}

// checkArrayLengths rejects array headers whose element count is negative or
// larger than the input could hold. Each element needs at least four bytes.
func checkArrayLengths(s string) error {
	for _, m := range arrayHeader.FindAllStringSubmatch(s, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 0 || n > len(s)/4 {
			return fmt.Errorf("%w: array length %s", errSyntax, m[1])
		}
	}
	return nil
}

// arrayValues orders a decoded PHP array by key and keeps only the values.
// Nested arrays are converted the same way.
func arrayValues(m map[any]any) []any {
	keys := make([]any, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keyLess(keys[i], keys[j]) })

	out := make([]any, 0, len(keys))
	for _, k := range keys {
		v := m[k]
		if nested, ok := v.(map[any]any); ok {
			v = arrayValues(nested)
		}
		out = append(out, v)
	}
	return out
}

// keyLess sorts integer keys numerically ahead of string keys
func keyLess(a, b any) bool {
	ai, aInt := intKey(a)
	bi, bInt := intKey(b)
	switch {
	case aInt && bInt:
		return ai < bi
	case aInt != bInt:
		return aInt
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}

func intKey(k any) (int64, bool) {
	switch t := k.(type) {
	case int64:
		return t, true
	case int:
		return int64(t), true
	}
	return 0, false
}
