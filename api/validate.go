package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/qri-io/jsonschema"
)

// Request payload schemas, compiled once at startup. Validation failures are
// surfaced per-field in the details array of a validation_failed response.

const registerSchemaJSON = `{
	"type": "object",
	"required": ["name", "email", "password"],
	"properties": {
		"name": {"type": "string", "minLength": 1, "maxLength": 200},
		"email": {"type": "string", "pattern": "^[^@\\s]+@[^@\\s]+\\.[^@\\s]+$"},
		"password": {"type": "string", "minLength": 8, "maxLength": 128}
	}
}`

const createBookingSchemaJSON = `{
	"type": "object",
	"required": ["petId", "pickupAddress", "dropoffAddress", "scheduledAt"],
	"properties": {
		"petId": {"type": "integer", "minimum": 1},
		"pickupAddress": {"type": "string", "minLength": 1, "maxLength": 500},
		"dropoffAddress": {"type": "string", "minLength": 1, "maxLength": 500},
		"scheduledAt": {"type": "integer", "minimum": 0},
		"priceCents": {"type": "integer", "minimum": 0},
		"services": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["name"],
				"properties": {
					"name": {"type": "string", "minLength": 1, "maxLength": 200},
					"priceCents": {"type": "integer", "minimum": 0}
				}
			}
		}
	}
}`

var (
	registerSchema      = mustSchema(registerSchemaJSON)
	createBookingSchema = mustSchema(createBookingSchemaJSON)
)

func mustSchema(src string) *jsonschema.Schema {
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(src), rs); err != nil {
		panic(fmt.Sprintf("invalid request schema: %v", err))
	}
	return rs
}

// validateBody checks raw JSON against a compiled schema and returns
// per-field detail strings for any violations. A nil, nil return means the
// payload is valid.
func validateBody(ctx context.Context, schema *jsonschema.Schema, body []byte) ([]string, error) {
	verrs, err := schema.ValidateBytes(ctx, body)
	if err != nil {
		return nil, err
	}
	if len(verrs) == 0 {
		return nil, nil
	}

	details := make([]string, 0, len(verrs))
	for _, ve := range verrs {
		path := ve.PropertyPath
		if path == "" || path == "/" {
			path = "body"
		}
		details = append(details, fmt.Sprintf("%s: %s", path, ve.Message))
	}
	return details, nil
}
