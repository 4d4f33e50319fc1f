// Package validation provides the schema validator shared by request binding,
// response shaping and configuration loading.
//
// Shapes are declared as Go structs; constraints live in the `binding` struct tag
// (required, min, max, email, gte, uuid, ...). Violations are reported with the
// JSON field name so they can be returned to clients as-is.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// TagName is the struct tag that carries constraints.
const TagName = "binding"

// Violation describes a single field that failed validation.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is returned when a value does not satisfy its declared shape.
type Error struct {
	Violations []Violation
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validator checks values against their struct-tag shape.
// It satisfies gin's binding.StructValidator so it can be installed as the
// binding engine without the package importing gin.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator that reports JSON field names.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName(TagName)
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "uri", "env"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	// 登録失敗はタグ名の誤りのみで、起動時に気づくべきものなのでpanicさせる
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("maxbytes", maxBytes); err != nil {
		panic(err)
	}
	return &Validator{validate: v}
}

// ValidateStruct validates a struct, a pointer to one, or a slice of them.
// Any other kind is accepted as-is.
func (v *Validator) ValidateStruct(obj any) error {
	if obj == nil {
		return nil
	}
	value := reflect.ValueOf(obj)
	for value.Kind() == reflect.Ptr {
		if value.IsNil() {
			return nil
		}
		value = value.Elem()
	}

	switch value.Kind() {
	case reflect.Struct:
		if err := v.validate.Struct(value.Interface()); err != nil {
			return Normalize(err)
		}
		return nil
	case reflect.Slice, reflect.Array:
		var violations []Violation
		for i := 0; i < value.Len(); i++ {
			if err := v.ValidateStruct(value.Index(i).Interface()); err != nil {
				var verr *Error
				if !errors.As(err, &verr) {
					return err
				}
				for _, vi := range verr.Violations {
					violations = append(violations, Violation{
						Field:   fmt.Sprintf("[%d].%s", i, vi.Field),
						Message: vi.Message,
					})
				}
			}
		}
		if len(violations) > 0 {
			return &Error{Violations: violations}
		}
		return nil
	default:
		return nil
	}
}

// maxBytes limits the encoded length of a string, unlike max which counts runes.
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}
	return len(field.String()) <= limit
}

// Engine exposes the underlying go-playground validator.
func (v *Validator) Engine() any {
	return v.validate
}

// Normalize converts decoding and validator errors into *Error.
// Errors it does not recognise are reported as an invalid payload.
func Normalize(err error) error {
	if err == nil {
		return nil
	}

	var verr *Error
	if errors.As(err, &verr) {
		return verr
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		out := make([]Violation, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			out = append(out, Violation{Field: fieldPath(fe), Message: message(fe)})
		}
		return &Error{Violations: out}
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "payload"
		}
		return &Error{Violations: []Violation{{Field: field, Message: "must be of type " + typeErr.Type.String()}}}
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &Error{Violations: []Violation{{Field: "payload", Message: "invalid json"}}}
	}

	return &Error{Violations: []Violation{{Field: "payload", Message: "invalid payload"}}}
}

// fieldPath strips the top-level struct name from the namespace
// ("SignupReq.email" -> "email").
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	param := fe.Param()
	switch fe.Tag() {
	case "required":
		return "is required"
	case "notblank":
		return "must not be blank"
	case "maxbytes":
		return "must be at most " + param + " bytes long"
	case "email":
		return "must be a valid email"
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "min":
		if isNumber(fe.Kind()) {
			return "must be at least " + param
		}
		return "must be at least " + param + " characters long"
	case "max":
		if isNumber(fe.Kind()) {
			return "must be at most " + param
		}
		return "must be at most " + param + " characters long"
	case "gte":
		return "must be greater than or equal to " + param
	case "gt":
		return "must be greater than " + param
	case "lte":
		return "must be less than or equal to " + param
	case "oneof":
		return "must be one of [" + param + "]"
	case "url":
		return "must be a valid URL"
	case "hostname_port":
		return "must be a host:port pair"
	default:
		if param != "" {
			return "failed on '" + fe.Tag() + "=" + param + "'"
		}
		return "failed on '" + fe.Tag() + "'"
	}
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
