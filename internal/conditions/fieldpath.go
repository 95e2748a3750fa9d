// internal/conditions/fieldpath.go
package conditions

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/flowbuilder/branchkeeper/internal/types"
)

/*
 * Field path resolution for input records.
 *
 * Resolves dot-separated paths (message.chat.id) through nested records and
 * sequences. A segment made only of digits indexes a sequence; any other
 * segment is a record key.
 *
 * Missing data is not an error: a missing key, an out-of-range index, or a
 * traversal into a scalar or null reports Found=false and the operator table
 * decides what undefined means. Resolution is bounded by the segment count.
 *
 * Fast paths cover map[string]any and []any (what encoding/json and structpb
 * produce). Other string-keyed maps and slices go through reflection so a
 * Go caller can pass typed values.
 */

// ResolveResult contains the resolved value and whether the path exists.
// Found with a nil Value means the field is present and null.
type ResolveResult struct {
	Value any
	Found bool
}

// SplitPath returns the segments of a dotted field path.
// Returns nil for the empty path.
func SplitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

// Resolve walks record following the dotted path.
func Resolve(path string, record types.Record) ResolveResult {
	return resolveSegments(SplitPath(path), record)
}

// resolveSegments walks pre-split segments. Compiled rules split once and
// reuse the slice for every record.
func resolveSegments(segments []string, record types.Record) ResolveResult {
	if len(segments) == 0 {
		return ResolveResult{}
	}

	var current any = record
	for _, seg := range segments {
		next, ok := step(current, seg)
		if !ok {
			return ResolveResult{}
		}
		current = next
	}

	return ResolveResult{Value: current, Found: true}
}

// step descends one segment into current.
func step(current any, seg string) (any, bool) {
	switch v := current.(type) {
	case nil:
		return nil, false
	case map[string]any:
		val, ok := v[seg]
		return val, ok
	case []any:
		idx, ok := parseIndex(seg)
		if !ok || idx >= len(v) {
			return nil, false
		}
		return v[idx], true
	}

	rv := reflect.ValueOf(current)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		keyType := rv.Type().Key()
		if keyType.Kind() != reflect.String {
			return nil, false
		}
		val := rv.MapIndex(reflect.ValueOf(seg).Convert(keyType))
		if !val.IsValid() {
			return nil, false
		}
		return val.Interface(), true
	case reflect.Slice, reflect.Array:
		idx, ok := parseIndex(seg)
		if !ok || idx >= rv.Len() {
			return nil, false
		}
		return rv.Index(idx).Interface(), true
	default:
		// Scalar value but path continues
		return nil, false
	}
}

// parseIndex accepts only plain non-negative decimal integers ("0", "12").
func parseIndex(seg string) (int, bool) {
	if seg == "" {
		return 0, false
	}
	for _, c := range seg {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	idx, err := strconv.Atoi(seg)
	if err != nil {
		return 0, false
	}
	return idx, true
}
