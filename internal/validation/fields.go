// Package validation checks contractor additional-data values against their
// declared field types.
package validation

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Field types accepted for contractor additional data.
const (
	TypeString   = "string"
	TypeInt      = "int"
	TypeDouble   = "double"
	TypeChar     = "char"
	TypeBool     = "bool"
	TypeDatetime = "datetime"
)

// datetimeLayouts are the locale-invariant formats accepted for datetime
// values. Kept in one place so the accepted forms are easy to audit.
var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Check reports whether value is a valid literal of the declared field type.
// Unknown types are always invalid. The check is pure and has no side effects.
func Check(fieldType, value string) bool {
	switch fieldType {
	case TypeString:
		// string can be more or less anything
		return true
	case TypeInt:
		_, err := strconv.ParseInt(value, 10, 64)
		return err == nil
	case TypeDouble:
		_, err := strconv.ParseFloat(value, 64)
		return err == nil
	case TypeChar:
		return utf8.RuneCountInString(value) == 1
	case TypeBool:
		// Only "true"/"false" (any casing), not the wider strconv.ParseBool set.
		lower := strings.ToLower(value)
		return lower == "true" || lower == "false"
	case TypeDatetime:
		for _, layout := range datetimeLayouts {
			if _, err := time.Parse(layout, value); err == nil {
				return true
			}
		}
		return false
	default:
		return false
	}
}
