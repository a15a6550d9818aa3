// utils/validation.go
package utils

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ttacon/libphonenumber"
)

// FieldErrors converts a gin binding error into a field -> message map keyed
// by the json name of each offending field.
func FieldErrors(err error, dst any) map[string]string {
	out := map[string]string{}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			out[jsonKey(dst, fe.StructField())] = messageForTag(fe.Tag(), fe.Param())
		}
		return out
	}

	var te *json.UnmarshalTypeError
	if errors.As(err, &te) && te.Field != "" {
		out[te.Field] = "Expected " + te.Type.String()
		return out
	}

	out["_"] = "Malformed request body"
	return out
}

func jsonKey(dst any, structField string) string {
	t := reflect.TypeOf(dst)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return strings.ToLower(structField)
	}
	f, ok := t.FieldByName(structField)
	if !ok {
		return strings.ToLower(structField)
	}
	tag, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if tag == "" || tag == "-" {
		return strings.ToLower(structField)
	}
	return tag
}

func messageForTag(tag, param string) string {
	switch tag {
	case "required":
		return "Required"
	case "uuid", "uuid4":
		return "Invalid uuid"
	case "datetime":
		return "Expected date in " + param + " format"
	case "oneof":
		return "Must be one of: " + strings.ReplaceAll(param, " ", ", ")
	case "min":
		return "Must be at least " + param
	case "max":
		return "Must be at most " + param
	default:
		return "Invalid value"
	}
}

// DefaultPhoneRegion is assumed for numbers written without a country code.
const DefaultPhoneRegion = "US"

// ValidatePhone reports whether phone is a dialable number.
func ValidatePhone(phone string) bool {
	p, err := libphonenumber.Parse(phone, DefaultPhoneRegion)
	if err != nil {
		return false
	}
	return libphonenumber.IsValidNumber(p)
}
