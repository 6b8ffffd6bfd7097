package value

import (
	"bytes"
	"math"
	"strings"

	json "github.com/goccy/go-json"
)

const indentStep = "  "

// Format renders v for insertion into template output.
// Scalars print as plain text: strings verbatim, numbers
// in shortest form, booleans as true/false and null as
// "null". Arrays and objects are pretty-printed as JSON
// with two-space indentation, in insertion order.
func Format(v Value) string {
	switch tv := v.(type) {
	case nil, Null:
		return "null"
	case String:
		return string(tv)
	case Number:
		return formatNumber(float64(tv))
	case Bool:
		if tv {
			return "true"
		}

		return "false"
	case *Object:
		if tv == nil {
			return "null"
		}

		var sb strings.Builder
		writePretty(&sb, tv, "")

		return sb.String()
	case Array:
		var sb strings.Builder
		writePretty(&sb, v, "")

		return sb.String()
	}

	return ""
}

func writePretty(sb *strings.Builder, v Value, indent string) {
	switch tv := v.(type) {
	case nil, Null:
		sb.WriteString("null")
	case String:
		sb.WriteString(quote(string(tv)))
	case Number:
		f := float64(tv)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			sb.WriteString("null")

			return
		}

		sb.WriteString(formatNumber(f))
	case Bool:
		sb.WriteString(Format(tv))
	case Array:
		if len(tv) == 0 {
			sb.WriteString("[]")

			return
		}

		inner := indent + indentStep

		sb.WriteString("[\n")

		for i, el := range tv {
			sb.WriteString(inner)
			writePretty(sb, el, inner)

			if i < len(tv)-1 {
				sb.WriteByte(',')
			}

			sb.WriteByte('\n')
		}

		sb.WriteString(indent)
		sb.WriteByte(']')
	case *Object:
		if tv == nil {
			sb.WriteString("null")

			return
		}

		if tv.Len() == 0 {
			sb.WriteString("{}")

			return
		}

		inner := indent + indentStep
		members := tv.Members()

		sb.WriteString("{\n")

		for i, m := range members {
			sb.WriteString(inner)
			sb.WriteString(quote(m.Key))
			sb.WriteString(": ")
			writePretty(sb, m.Value, inner)

			if i < len(members)-1 {
				sb.WriteByte(',')
			}

			sb.WriteByte('\n')
		}

		sb.WriteString(indent)
		sb.WriteByte('}')
	}
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}

	// -0 prints as 0.
	if f == 0 {
		f = 0
	}

	b, err := json.Marshal(f)
	if err != nil {
		return "NaN"
	}

	return trimExponent(string(b))
}

// trimExponent drops leading zeros of an exponent, so
// "1e-07" becomes "1e-7" and "1e+021" becomes "1e+21".
func trimExponent(s string) string {
	idx := strings.IndexAny(s, "eE")
	if idx < 0 {
		return s
	}

	mant, exp := s[:idx+1], s[idx+1:]

	sign := ""
	if exp != "" && (exp[0] == '-' || exp[0] == '+') {
		sign, exp = exp[:1], exp[1:]
	}

	if digits := strings.TrimLeft(exp, "0"); digits != "" {
		exp = digits
	} else if exp != "" {
		exp = "0"
	}

	return mant + sign + exp
}

func quote(s string) string {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(s); err != nil {
		return `""`
	}

	return strings.TrimSuffix(buf.String(), "\n")
}
