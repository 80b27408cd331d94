package serverutils

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

var spreadsheetExtensions = map[string]bool{
	".csv":  true,
	".xlsx": true,
}

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields by their form name so messages match what the user typed into.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"form", "json"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})

	_ = v.RegisterValidation("spreadsheet", func(fl validator.FieldLevel) bool {
		return IsSpreadsheet(fl.Field().String())
	})
	return v
}

// IsSpreadsheet reports whether the filename has an extension the backend parses.
func IsSpreadsheet(filename string) bool {
	return spreadsheetExtensions[strings.ToLower(filepath.Ext(filename))]
}

// ValidationError carries one readable message per failing field.
type ValidationError struct {
	Fields map[string]string
	order  []string
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.order))
	for _, f := range e.order {
		msgs = append(msgs, e.Fields[f])
	}
	return strings.Join(msgs, "; ")
}

func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		if _, seen := out.Fields[fe.Field()]; seen {
			continue
		}
		out.Fields[fe.Field()] = fieldMessage(fe)
		out.order = append(out.order, fe.Field())
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "spreadsheet":
		return fmt.Sprintf("%s must be a .csv or .xlsx spreadsheet", fe.Field())
	case "gt":
		return fmt.Sprintf("%s must not be empty", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag())
	}
}
