package value

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"
)

// FileFormat identifies the syntax of a context file.
type FileFormat string

const (
	FormatJSON FileFormat = "json"
	FormatYAML FileFormat = "yaml"
	FormatTOML FileFormat = "toml"
)

// FormatForPath picks a FileFormat from the extension of
// path.
func FormatForPath(path string) (FileFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}

	return "", fmt.Errorf(
		"unsupported context file extension %q", filepath.Ext(path),
	)
}

// DecodeFile reads and decodes the context file at path.
func DecodeFile(path string) (*Object, error) {
	const errCtx = "decoding context file"

	format, err := FormatForPath(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	data, err := os.ReadFile(path) //nolint:gosec // path from CLI flag
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	obj, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", errCtx, path, err)
	}

	return obj, nil
}

// Decode parses data as a mapping and keeps the key order
// of the document. JSON is read by the YAML decoder, which
// accepts it as a subset.
func Decode(data []byte, format FileFormat) (*Object, error) {
	switch format {
	case FormatJSON, FormatYAML:
		return decodeYAML(data)
	case FormatTOML:
		return decodeTOML(data)
	}

	return nil, fmt.Errorf("unknown context format %q", format)
}

func decodeYAML(data []byte) (*Object, error) {
	const errCtx = "decoding yaml"

	if len(bytes.TrimSpace(data)) == 0 {
		return &Object{}, nil
	}

	var doc any
	if err := yaml.UnmarshalWithOptions(
		data, &doc, yaml.UseOrderedMap(),
	); err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	if doc == nil {
		return &Object{}, nil
	}

	v, err := FromGo(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	obj, ok := v.(*Object)
	if !ok {
		return nil, fmt.Errorf(
			"%s: top level must be a mapping, got %s",
			errCtx, KindOf(v),
		)
	}

	return obj, nil
}

// decodeTOML decodes into plain maps and then restores
// document order from the metadata key list.
func decodeTOML(data []byte) (*Object, error) {
	const errCtx = "decoding toml"

	var doc map[string]any

	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	order := make(map[string]int)

	for i, key := range md.Keys() {
		joined := strings.Join(key, "\x00")
		if _, seen := order[joined]; !seen {
			order[joined] = i
		}
	}

	tc := tomlConverter{order: order}

	return tc.object("", doc)
}

type tomlConverter struct {
	order map[string]int
}

func (tc tomlConverter) object(prefix string, m map[string]any) (*Object, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	rank := func(k string) int {
		if pos, ok := tc.order[prefix+k]; ok {
			return pos
		}

		return len(tc.order)
	}

	sort.SliceStable(keys, func(i, j int) bool {
		ri, rj := rank(keys[i]), rank(keys[j])
		if ri != rj {
			return ri < rj
		}

		return keys[i] < keys[j]
	})

	obj := &Object{}

	for _, k := range keys {
		v, err := tc.convert(prefix+k+"\x00", m[k])
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}

		obj.Set(k, v)
	}

	return obj, nil
}

func (tc tomlConverter) convert(prefix string, in any) (Value, error) {
	switch v := in.(type) {
	case map[string]any:
		return tc.object(prefix, v)
	case []map[string]any:
		arr := make(Array, 0, len(v))

		for _, el := range v {
			obj, err := tc.object(prefix, el)
			if err != nil {
				return nil, err
			}

			arr = append(arr, obj)
		}

		return arr, nil
	case []any:
		arr := make(Array, 0, len(v))

		for _, el := range v {
			conv, err := tc.convert(prefix, el)
			if err != nil {
				return nil, err
			}

			arr = append(arr, conv)
		}

		return arr, nil
	}

	return FromGo(in)
}
