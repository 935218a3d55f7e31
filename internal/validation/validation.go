// Package validation checks request bodies before anything reaches the
// store. Key-level rules (id, unknown keys, presence, null) run on the raw
// document; value rules come from the binding tags of the request models
// and run through gin's validator.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rongwang/book-exchange-server/internal/apperror"
	"github.com/rongwang/book-exchange-server/internal/models"
)

const (
	msgForbiddenID   = "You can't change ID"
	msgExcess        = "Excessive arguments posted"
	msgNotEnoughArgs = "Not enough arguments"
	msgMalformed     = "Malformed JSON body"
)

// patchField is implemented by models.Opt
type patchField interface {
	Unwrap() interface{}
}

var patchFieldType = reflect.TypeOf((*patchField)(nil)).Elem()

var setupOnce sync.Once

// setup teaches gin's validator about Opt fields and json field names.
func setup() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
			return field.Interface().(patchField).Unwrap()
		}, models.Opt[string]{}, models.Opt[int]{}, models.Opt[int64]{}, models.Opt[bool]{})
		// nullable only marks a patch field; null itself is handled in Decode
		_ = v.RegisterValidation("nullable", func(validator.FieldLevel) bool { return true })
	})
}

type options struct {
	missing string
}

// Option adjusts how Decode reports errors
type Option func(*options)

// MissingMessage replaces the MissingArgument message
func MissingMessage(msg string) Option {
	return func(o *options) { o.missing = msg }
}

type field struct {
	index    int
	name     string
	required bool
	nullable bool
	patch    bool
	elem     reflect.Type
}

func fieldsOf(t reflect.Type) map[string]field {
	fields := make(map[string]field, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		name := strings.SplitN(sf.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			continue
		}
		rules := strings.Split(sf.Tag.Get("binding"), ",")
		f := field{index: i, name: name, elem: sf.Type}
		for _, r := range rules {
			switch r {
			case "required":
				f.required = true
			case "nullable":
				f.nullable = true
			}
		}
		if sf.Type.Implements(patchFieldType) {
			f.patch = true
			f.elem = sf.Type.Field(1).Type.Elem()
		}
		for f.elem.Kind() == reflect.Ptr {
			f.elem = f.elem.Elem()
		}
		fields[name] = f
	}
	return fields
}

// Decode parses body into dst, a pointer to a request struct. Rules apply
// in order: id present, unknown key, missing key, bad value. A body whose
// fields are all patch fields must set at least one. An empty body is
// treated as an empty object.
func Decode(body []byte, dst interface{}, opts ...Option) error {
	setup()
	o := options{missing: msgNotEnoughArgs}
	for _, opt := range opts {
		opt(&o)
	}

	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return apperror.Newf(apperror.Internal, "cannot decode into %T", dst)
	}
	rv = rv.Elem()

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		body = []byte("{}")
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return apperror.New(apperror.InvalidArgument, msgMalformed)
	}

	if _, ok := raw["id"]; ok {
		return apperror.New(apperror.ForbiddenMutation, msgForbiddenID)
	}

	fields := fieldsOf(rv.Type())
	for key := range raw {
		if _, ok := fields[key]; !ok {
			return apperror.New(apperror.ExcessArgument, msgExcess)
		}
	}

	patchOnly := true
	for _, f := range fields {
		if !f.patch {
			patchOnly = false
		}
		if _, ok := raw[f.name]; f.required && !ok {
			return apperror.New(apperror.MissingArgument, o.missing)
		}
	}
	if patchOnly && len(raw) == 0 {
		return apperror.New(apperror.MissingArgument, o.missing)
	}

	// Sorted keys keep the reported field stable.
	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		f := fields[key]
		value := bytes.TrimSpace(raw[key])
		if f.patch && !f.nullable && string(value) == "null" {
			return apperror.Newf(apperror.InvalidArgument, "Field '%s' can't be null", f.name)
		}
		if err := json.Unmarshal(value, rv.Field(f.index).Addr().Interface()); err != nil {
			return apperror.Newf(apperror.InvalidArgument, "Field '%s' must be %s", f.name, kindName(f.elem))
		}
	}

	if err := binding.Validator.ValidateStruct(dst); err != nil {
		return fromValidation(err, o.missing)
	}
	return nil
}

func kindName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "an integer"
	default:
		return "a " + t.Kind().String()
	}
}

// fromValidation maps validator failures onto API errors. A missing value
// wins over any other failure.
func fromValidation(err error, missing string) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperror.New(apperror.InvalidArgument, msgMalformed)
	}

	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return apperror.New(apperror.MissingArgument, missing)
		}
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "max":
		return apperror.Newf(apperror.InvalidArgument, "Field '%s' is longer than %s characters", fe.Field(), fe.Param())
	case "min":
		return apperror.Newf(apperror.InvalidArgument, "Field '%s' can't be empty", fe.Field())
	default:
		return apperror.Newf(apperror.InvalidArgument, "Field '%s' is invalid", fe.Field())
	}
}
