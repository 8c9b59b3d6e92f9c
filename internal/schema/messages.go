package schema

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Label turns a field name into the sentence-case label used in messages:
// "zip_code" becomes "Zip code" and "organization_id" becomes
// "Organization".
func Label(field string) string {
	words := strings.Fields(strings.ReplaceAll(field, "_", " "))
	if len(words) > 1 && words[len(words)-1] == "id" {
		words = words[:len(words)-1]
	}
	if len(words) == 0 {
		return field
	}
	// A Caser is stateful; build one per call.
	words[0] = cases.Title(language.English).String(words[0])
	return strings.Join(words, " ")
}

var formatNames = map[string]string{
	"2006-01-02": "YYYY-MM-DD",
	"15:04":      "HH:MM",
}

func message(fe validator.FieldError) string {
	label := Label(fe.Field())
	param := fe.Param()
	text := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "email":
		return label + " must be a valid email address"
	case "min":
		if text {
			return fmt.Sprintf("%s must be at least %s characters", label, param)
		}
		return fmt.Sprintf("%s must be at least %s", label, param)
	case "max":
		if text {
			return fmt.Sprintf("%s must be at most %s characters", label, param)
		}
		return fmt.Sprintf("%s must be at most %s", label, param)
	case "gte":
		return fmt.Sprintf("%s must be at least %s", label, param)
	case "lte":
		return fmt.Sprintf("%s must be at most %s", label, param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", label, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.Join(strings.Fields(param), ", "))
	case "datetime":
		if name, ok := formatNames[param]; ok {
			param = name
		}
		return fmt.Sprintf("%s must use the format %s", label, param)
	case "hexcolor":
		return label + " must be a hex color such as #1a2b3c"
	case "maxbytes":
		return fmt.Sprintf("%s must be at most %s bytes", label, param)
	case "username":
		return label + " may only contain letters, numbers and underscores"
	default:
		return label + " is invalid"
	}
}
