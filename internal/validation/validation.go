// Package validation runs declarative field rules on request bodies and reports
// one human readable message per failing field.
package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// FieldError describes a single failed rule. Param is the JSON name of the field.
type FieldError struct {
	Msg      string `json:"msg"`
	Param    string `json:"param,omitempty"`
	Location string `json:"location,omitempty"`
}

// Errors is returned by Struct when one or more fields fail.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fe.Msg)
	}
	return strings.Join(msgs, "; ")
}

var (
	validate *validator.Validate
	once     sync.Once
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	})
	return validate
}

// Struct validates s against its `validate` tags. Failing fields report the text of
// their `msg` tag, falling back to a generic "<field> is invalid".
func Struct(s interface{}) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	typ := reflect.TypeOf(s)
	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}

	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Msg:      messageFor(typ, fe),
			Param:    fe.Field(),
			Location: "body",
		})
	}
	return out
}

// Single builds an Errors value carrying one message that is not tied to a field.
func Single(msg string) Errors {
	return Errors{{Msg: msg}}
}

func messageFor(typ reflect.Type, fe validator.FieldError) string {
	if field, ok := typ.FieldByName(fe.StructField()); ok {
		if msg := field.Tag.Get("msg"); msg != "" {
			return msg
		}
	}
	return fe.Field() + " is invalid"
}
