package tracewrap

import (
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"
)

// MaxAttributeLength bounds captured values, counted in characters.
const MaxAttributeLength = 250

// fmtPanic is what fmt prints in place of a value whose String or Error method
// panicked somewhere inside a composite.
const fmtPanic = "(PANIC="

// stringify renders v for an attribute. A panicking String or Error method is
// an error rather than text.
func stringify(v any) (s string, err error) {
	defer func() {
		if r := recover(); r != nil {
			s, err = "", fmt.Errorf("stringify %T: %v", v, r)
		}
	}()

	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return "<nil>", nil
	}
	switch x := v.(type) {
	case error:
		s = x.Error()
	case fmt.Stringer:
		s = x.String()
	default:
		s = fmt.Sprint(v)
		if strings.Contains(s, fmtPanic) {
			return "", fmt.Errorf("stringify %T: %s", v, s)
		}
	}
	return truncate(s), nil
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= MaxAttributeLength {
		return s
	}
	return string([]rune(s)[:MaxAttributeLength]) + "..."
}

func errorMessage(err error) (msg string) {
	defer func() {
		if r := recover(); r != nil {
			msg = fmt.Sprintf("%T", err)
		}
	}()
	return err.Error()
}
