package value

import (
	"fmt"
	"sort"
	"time"

	json "github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
)

// FromGo converts an ordinary Go value into a Value. It
// accepts the shapes produced by JSON, YAML and TOML
// decoders as well as hand-built maps and slices. Keys of
// plain Go maps are sorted because maps carry no order;
// use *Object or yaml.MapSlice to keep a specific order.
func FromGo(in any) (Value, error) {
	switch v := in.(type) {
	case nil:
		return Null{}, nil
	case Value:
		if obj, ok := v.(*Object); ok && obj == nil {
			return Null{}, nil
		}

		return v, nil
	case string:
		return String(v), nil
	case []byte:
		return String(v), nil
	case bool:
		return Bool(v), nil
	case int:
		return Number(v), nil
	case int8:
		return Number(v), nil
	case int16:
		return Number(v), nil
	case int32:
		return Number(v), nil
	case int64:
		return Number(v), nil
	case uint:
		return Number(v), nil
	case uint8:
		return Number(v), nil
	case uint16:
		return Number(v), nil
	case uint32:
		return Number(v), nil
	case uint64:
		return Number(v), nil
	case float32:
		return Number(v), nil
	case float64:
		return Number(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("converting number %q: %w", v, err)
		}

		return Number(f), nil
	case time.Time:
		return String(v.Format(time.RFC3339Nano)), nil
	case []any:
		return arrayFrom(len(v), func(i int) any { return v[i] })
	case []string:
		return arrayFrom(len(v), func(i int) any { return v[i] })
	case []int:
		return arrayFrom(len(v), func(i int) any { return v[i] })
	case []float64:
		return arrayFrom(len(v), func(i int) any { return v[i] })
	case []map[string]any:
		return arrayFrom(len(v), func(i int) any { return v[i] })
	case map[string]any:
		return objectFromMap(v)
	case map[string]string:
		obj := &Object{}
		for _, k := range sortedKeys(v) {
			obj.Set(k, String(v[k]))
		}

		return obj, nil
	case yaml.MapSlice:
		obj := &Object{}
		for _, item := range v {
			val, err := FromGo(item.Value)
			if err != nil {
				return nil, err
			}

			obj.Set(fmt.Sprint(item.Key), val)
		}

		return obj, nil
	case map[any]any:
		obj := &Object{}

		keys := make([]string, 0, len(v))
		byKey := make(map[string]any, len(v))

		for k, val := range v {
			ks := fmt.Sprint(k)
			keys = append(keys, ks)
			byKey[ks] = val
		}

		sort.Strings(keys)

		for _, k := range keys {
			val, err := FromGo(byKey[k])
			if err != nil {
				return nil, err
			}

			obj.Set(k, val)
		}

		return obj, nil
	}

	return nil, fmt.Errorf("unsupported context value of type %T", in)
}

// ObjectFromMap converts m into an Object with sorted keys.
func ObjectFromMap(m map[string]any) (*Object, error) {
	return objectFromMap(m)
}

func objectFromMap(m map[string]any) (*Object, error) {
	obj := &Object{}

	for _, k := range sortedKeys(m) {
		val, err := FromGo(m[k])
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}

		obj.Set(k, val)
	}

	return obj, nil
}

func arrayFrom(n int, at func(int) any) (Value, error) {
	arr := make(Array, 0, n)

	for i := 0; i < n; i++ {
		val, err := FromGo(at(i))
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}

		arr = append(arr, val)
	}

	return arr, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
