package value

// Value is one of String, Number, Bool, Null, Array or
// *Object.
type Value interface {
	kind() Kind
}

// Kind names the variant of a Value.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
	KindNull
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindNull:
		return "null"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	}

	return "unknown"
}

type (
	String string
	Number float64
	Bool   bool
	Null   struct{}
	Array  []Value
)

func (String) kind() Kind  { return KindString }
func (Number) kind() Kind  { return KindNumber }
func (Bool) kind() Kind    { return KindBool }
func (Null) kind() Kind    { return KindNull }
func (Array) kind() Kind   { return KindArray }
func (*Object) kind() Kind { return KindObject }

// KindOf returns the variant of v. A nil Value is Null.
func KindOf(v Value) Kind {
	if v == nil {
		return KindNull
	}

	if obj, ok := v.(*Object); ok && obj == nil {
		return KindNull
	}

	return v.kind()
}
