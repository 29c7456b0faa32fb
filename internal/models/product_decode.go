package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError describes why a request body could not be turned into a Product.
// Fields maps the JSON key of each offending field to a message; it is empty when
// the body as a whole was malformed.
type ValidationError struct {
	Reason string
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "Invalid Product: " + e.Reason
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + " " + e.Fields[k]
	}
	return "Invalid Product: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report JSON keys instead of Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type productField struct {
	key      string
	required bool
	target   func(p *Product) any
}

// The id key is deliberately absent: identity is always assigned by the store.
var productFields = []productField{
	{"name", true, func(p *Product) any { return &p.Name }},
	{"price", true, func(p *Product) any { return &p.Price }},
	{"stock", true, func(p *Product) any { return &p.Stock }},
	{"size", true, func(p *Product) any { return &p.Size }},
	{"color", true, func(p *Product) any { return &p.Color }},
	{"category", true, func(p *Product) any { return &p.Category }},
	{"description", false, func(p *Product) any { return &p.Description }},
	{"available", true, func(p *Product) any { return &p.Available }},
}

// DecodeProduct builds a transient Product from a JSON object.
// Unknown keys are ignored. On failure the returned error is a *ValidationError
// listing every missing or invalid field.
func DecodeProduct(data []byte) (*Product, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return nil, &ValidationError{Reason: "body of request contained bad or no data"}
	}

	product := &Product{}
	verr := &ValidationError{}
	for _, f := range productFields {
		value, ok := raw[f.key]
		if !ok || bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			if f.required {
				verr.add(f.key, "is required")
			}
			continue
		}
		if err := json.Unmarshal(value, f.target(product)); err != nil {
			verr.add(f.key, "has an invalid type")
		}
	}

	if err := validate.Struct(product); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return nil, fmt.Errorf("failed to validate product: %w", err)
		}
		for _, e := range fieldErrs {
			verr.add(e.Field(), fmt.Sprintf("failed on the '%s' tag", e.Tag()))
		}
	}

	if len(verr.Fields) > 0 {
		return nil, verr
	}
	return product, nil
}
