package fields

import "strconv"

// truthyValues are the stored forms of a checked boolean field.
var truthyValues = map[string]bool{"1": true, "yes": true}

// IsTruthy reports whether a raw stored value counts as set:
//   - the decoded value is the string "1" or "yes", or
//   - the decoded value is a list with an element equal to "1" or "yes".
//
// List elements compare by their string form, so an integer 1 or a boolean
// true element counts; a bare top-level integer does not.
func IsTruthy(raw string) bool {
	switch v := Decode(raw).(type) {
	case string:
		return truthyValues[v]
	case []any:
		for _, item := range v {
			if truthyValues[elementString(item)] {
				return true
			}
		}
	}
	return false
}

func elementString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "1"
		}
	}
	return ""
}
