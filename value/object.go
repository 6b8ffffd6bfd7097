package value

import "strings"

// Object is a string-keyed mapping that remembers the
// order in which keys were first set. The zero value is an
// empty object ready to use.
type Object struct {
	keys   []string
	fields map[string]Value
}

// Member is a key/value pair used to build an Object.
type Member struct {
	Key   string
	Value Value
}

// NewObject returns an object holding members in order.
// A repeated key keeps its first position and its last
// value.
func NewObject(members ...Member) *Object {
	obj := &Object{}
	for _, m := range members {
		obj.Set(m.Key, m.Value)
	}

	return obj
}

// Set stores v under key.
func (o *Object) Set(key string, v Value) {
	if o.fields == nil {
		o.fields = make(map[string]Value)
	}

	if _, ok := o.fields[key]; !ok {
		o.keys = append(o.keys, key)
	}

	if v == nil {
		v = Null{}
	}

	o.fields[key] = v
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return nil, false
	}

	v, ok := o.fields[key]

	return v, ok
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}

	return append([]string(nil), o.keys...)
}

// Len returns the number of keys.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}

	return len(o.keys)
}

// Members returns the key/value pairs in order.
func (o *Object) Members() []Member {
	if o == nil {
		return nil
	}

	out := make([]Member, 0, len(o.keys))
	for _, k := range o.keys {
		out = append(out, Member{Key: k, Value: o.fields[k]})
	}

	return out
}

// SetPath stores v under a dotted path, creating
// intermediate objects. A non-object found on the way is
// replaced.
func (o *Object) SetPath(path string, v Value) {
	segs := strings.Split(path, ".")
	cur := o

	for _, seg := range segs[:len(segs)-1] {
		next, ok := cur.Get(seg)

		child, isObj := next.(*Object)
		if !ok || !isObj || child == nil {
			child = &Object{}
			cur.Set(seg, child)
		}

		cur = child
	}

	cur.Set(segs[len(segs)-1], v)
}

// Merge copies every member of src into o. Nested objects
// present on both sides are merged recursively; anything
// else in src wins.
func (o *Object) Merge(src *Object) {
	for _, m := range src.Members() {
		srcObj, srcIsObj := m.Value.(*Object)
		if srcIsObj {
			if dst, ok := o.fields[m.Key].(*Object); ok && dst != nil {
				dst.Merge(srcObj)

				continue
			}
		}

		o.Set(m.Key, m.Value)
	}
}
