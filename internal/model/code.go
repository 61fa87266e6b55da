package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Code is a reference option code. Codes are either integers (lum, atm, ...)
// or strings ("2A", "<=30", "01"); the distinction is kept through JSON and YAML catalogs.
type Code struct {
	str   string
	num   int
	isInt bool
}

// IntCode builds an integer code
func IntCode(n int) Code {
	return Code{num: n, str: strconv.Itoa(n), isInt: true}
}

// StringCode builds a string code
func StringCode(s string) Code {
	return Code{str: s}
}

// IsInt reports whether the code is integer-typed
func (c Code) IsInt() bool { return c.isInt }

// Int returns the integer value when the code is integer-typed
func (c Code) Int() (int, bool) { return c.num, c.isInt }

// IsZero reports whether the code was never set
func (c Code) IsZero() bool { return !c.isInt && c.str == "" }

func (c Code) String() string { return c.str }

// Value returns the code as an int or a string
func (c Code) Value() any {
	if c.isInt {
		return c.num
	}
	return c.str
}

// CodeOf converts an untyped form value into a Code.
func CodeOf(v any) Code {
	switch t := v.(type) {
	case Code:
		return t
	case int:
		return IntCode(t)
	case int64:
		return IntCode(int(t))
	case float64:
		if t == math.Trunc(t) && !math.IsInf(t, 0) {
			return IntCode(int(t))
		}
	case json.Number:
		if n, err := strconv.Atoi(t.String()); err == nil {
			return IntCode(n)
		}
	case string:
		return StringCode(t)
	}
	return StringCode(ValueString(v))
}

func (c Code) MarshalJSON() ([]byte, error) {
	if c.isInt {
		return []byte(strconv.Itoa(c.num)), nil
	}
	return json.Marshal(c.str)
}

func (c *Code) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = StringCode(s)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("code must be an integer or a string: %s", data)
	}
	*c = IntCode(n)
	return nil
}

func (c *Code) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: code must be a scalar", node.Line)
	}
	// Unquoted 01 resolves to !!int but is the department code "01".
	if node.ShortTag() == "!!int" {
		if n, err := strconv.Atoi(node.Value); err == nil && strconv.Itoa(n) == node.Value {
			*c = IntCode(n)
			return nil
		}
	}
	*c = StringCode(node.Value)
	return nil
}

// ValueString renders an untyped form value the way it is compared against
// catalog codes: integral floats lose their fractional part.
func ValueString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case Code:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
