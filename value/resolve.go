package value

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUndefined is matched by every *PathError.
var ErrUndefined = errors.New("undefined variable")

// PathError reports the first segment of Path that could
// not be resolved.
type PathError struct {
	Path    string
	Segment string
	Reason  string
}

func (pe *PathError) Error() string {
	return fmt.Sprintf(
		"%s %q: segment %q %s",
		ErrUndefined, pe.Path, pe.Segment, pe.Reason,
	)
}

// Unwrap returns ErrUndefined.
func (pe *PathError) Unwrap() error {
	return ErrUndefined
}

// Resolve looks up a dotted path such as "person.name" or
// "tags.0" in ctx. Bracket indexes ("tags[0]") are
// accepted as an alternative spelling. Numeric segments
// index arrays; on objects every segment is a key.
func Resolve(ctx *Object, path string) (Value, error) {
	var cur Value = ctx
	if ctx == nil {
		cur = &Object{}
	}

	for _, seg := range splitPath(path) {
		undefined := func(reason string) error {
			return &PathError{Path: path, Segment: seg, Reason: reason}
		}

		if seg == "" {
			return nil, undefined("is empty")
		}

		switch v := cur.(type) {
		case *Object:
			next, ok := v.Get(seg)
			if !ok {
				return nil, undefined("is not defined")
			}

			cur = next
		case Array:
			idx, ok := parseIndex(seg)
			if !ok {
				return nil, undefined("is not an array index")
			}

			if idx >= len(v) {
				return nil, undefined(fmt.Sprintf(
					"is out of range (length %d)", len(v),
				))
			}

			cur = v[idx]
		default:
			return nil, undefined(fmt.Sprintf(
				"cannot index a %s", KindOf(cur),
			))
		}
	}

	return cur, nil
}

// splitPath turns a[0].b into [a 0 b].
func splitPath(path string) []string {
	if strings.ContainsAny(path, "[]") {
		path = strings.NewReplacer("[", ".", "]", "").Replace(path)
	}

	return strings.Split(path, ".")
}

func parseIndex(seg string) (int, bool) {
	for i := 0; i < len(seg); i++ {
		if seg[i] < '0' || seg[i] > '9' {
			return 0, false
		}
	}

	idx, err := strconv.Atoi(seg)
	if err != nil {
		return 0, false
	}

	return idx, true
}
