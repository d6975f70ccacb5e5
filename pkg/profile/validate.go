package profile

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// publishSchema lists what a record needs before it can be made public.
const publishSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["personne"],
  "properties": {
    "personne": {
      "type": "object",
      "required": ["contact"],
      "anyOf": [
        {"properties": {"prenom": {"type": "string", "pattern": "\\S"}}, "required": ["prenom"]},
        {"properties": {"nom": {"type": "string", "pattern": "\\S"}}, "required": ["nom"]}
      ],
      "properties": {
        "contact": {
          "type": "object",
          "required": ["email"],
          "properties": {
            "email": {"type": "string", "minLength": 1, "format": "email"}
          }
        }
      }
    },
    "slug": {"type": "string", "pattern": "^[a-z0-9]+(?:-[a-z0-9]+)*$"},
    "disponibilite": {"enum": ["immediate", "1_month", "3_months", "unavailable"]}
  }
}`

var publishSchemaLoader = gojsonschema.NewStringLoader(publishSchema)

// FieldError is one failed constraint.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when a record cannot be published.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "profile validation failed: " + strings.Join(parts, "; ")
}

// ValidateForPublish checks the record against the publish schema. It
// returns a *ValidationError describing every failed field.
func ValidateForPublish(r Record) error {
	res, err := gojsonschema.Validate(publishSchemaLoader, gojsonschema.NewGoLoader(r))
	if err != nil {
		return fmt.Errorf("validate profile: %w", err)
	}
	if res.Valid() {
		return nil
	}
	verr := &ValidationError{}
	for _, e := range res.Errors() {
		verr.Fields = append(verr.Fields, FieldError{Field: e.Field(), Message: e.Description()})
	}
	return verr
}
