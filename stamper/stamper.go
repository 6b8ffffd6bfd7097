package stamper

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/valyala/fasttemplate"

	"github.com/byte4ever/fml/value"
)

// Stamps maps workspace status keys to their values.
type Stamps map[string]string

// LoadStamps reads workspace status files and merges them
// into a single map. Each line is "KEY VALUE" with the
// first space as delimiter. Lines without a space are
// skipped. Later files override earlier ones.
func LoadStamps(infoFiles ...string) (Stamps, error) {
	const errCtx = "loading stamps"

	stamps := make(Stamps)

	for _, sf := range infoFiles {
		content, err := os.ReadFile(sf) //nolint:gosec // paths from CLI flags
		if err != nil {
			return nil, fmt.Errorf("%s: %w", errCtx, err)
		}

		stamps.parse(string(content))
	}

	return stamps, nil
}

func (st Stamps) parse(content string) {
	for _, line := range strings.Split(content, "\n") {
		key, val, ok := strings.Cut(strings.TrimSuffix(line, "\r"), " ")
		if ok && key != "" {
			st[key] = val
		}
	}
}

// Stamp substitutes {KEY} placeholders in format. Unknown
// keys are left as they are.
func (st Stamps) Stamp(format string) string {
	return fasttemplate.ExecuteFuncString(
		format, "{", "}",
		func(w io.Writer, tag string) (int, error) {
			if val, ok := st[tag]; ok {
				return io.WriteString(w, val)
			}

			return io.WriteString(w, "{"+tag+"}")
		},
	)
}

// Object returns the stamps as string members of an
// object, sorted by key.
func (st Stamps) Object() *value.Object {
	obj := value.NewObject()

	for _, key := range slices.Sorted(maps.Keys(st)) {
		obj.Set(key, value.String(st[key]))
	}

	return obj
}

// Stamp loads workspace status variables from infoFiles
// and substitutes {KEY} placeholders in format.
func Stamp(infoFiles []string, format string) (string, error) {
	const errCtx = "stamping"

	stamps, err := LoadStamps(infoFiles...)
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	return stamps.Stamp(format), nil
}
