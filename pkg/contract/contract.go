package contract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-signup/pkg/model"
	"github.com/goliatone/go-signup/pkg/validation"
)

// OperationID names the registration operation in generated documents.
const OperationID = "registerUser"

// ErrNoOperation is returned when a document has no POST operation at the
// requested path.
var ErrNoOperation = errors.New("contract: registration operation not found")

// Document builds the OpenAPI 3 description of the registration endpoint
// from a validation schema. path is the endpoint path ("/users/signUp").
func Document(schema validation.Schema, path string) (*openapi3.T, error) {
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("contract: %w", err)
	}
	path = "/" + strings.TrimLeft(strings.TrimSpace(path), "/")
	if path == "/" {
		return nil, errors.New("contract: path is required")
	}

	body := openapi3.NewObjectSchema()
	for _, name := range model.FieldNames() {
		prop, required := propertySchema(schema.For(name))
		body = body.WithProperty(name, prop)
		if required {
			body.Required = append(body.Required, name)
		}
	}

	envelope := openapi3.NewObjectSchema().
		WithProperty("message", openapi3.NewStringSchema())
	fieldErrors := openapi3.NewObjectSchema().
		WithAdditionalProperties(openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema()))
	errorEnvelope := openapi3.NewObjectSchema().
		WithProperty("message", openapi3.NewStringSchema()).
		WithProperty("errors", fieldErrors)

	operation := openapi3.NewOperation()
	operation.OperationID = OperationID
	operation.Summary = "Register a new user account"
	operation.RequestBody = &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().WithJSONSchema(body).WithRequired(true),
	}
	operation.Responses = openapi3.NewResponses(
		openapi3.WithStatus(http.StatusCreated, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription("user created").WithJSONSchema(envelope),
		}),
		openapi3.WithStatus(http.StatusConflict, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription("username or email already registered").WithJSONSchema(errorEnvelope),
		}),
		openapi3.WithStatus(http.StatusUnprocessableEntity, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription("validation failed").WithJSONSchema(errorEnvelope),
		}),
	)

	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   "Sign up API",
			Version: "1.0.0",
		},
		Paths: openapi3.NewPaths(openapi3.WithPath(path, &openapi3.PathItem{Post: operation})),
	}
	return doc, nil
}

// propertySchema translates validator tags into JSON Schema keywords. Tags
// without a schema equivalent are left to the validator.
func propertySchema(rules []validation.Rule) (*openapi3.Schema, bool) {
	prop := openapi3.NewStringSchema()
	required := false
	for _, rule := range rules {
		for _, tag := range strings.Split(rule.Tag, ",") {
			key, param, _ := strings.Cut(strings.TrimSpace(tag), "=")
			switch key {
			case "required":
				required = true
				if prop.MinLength == 0 {
					prop.MinLength = 1
				}
			case "email":
				prop.Format = "email"
			case "min":
				if n, err := strconv.ParseUint(param, 10, 64); err == nil {
					prop.MinLength = n
				}
			case "max":
				if n, err := strconv.ParseUint(param, 10, 64); err == nil {
					prop.MaxLength = &n
				}
			}
		}
	}
	return prop, required
}

// Load parses and validates a published contract.
func Load(ctx context.Context, data []byte) (*openapi3.T, error) {
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("contract: load document: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("contract: validate: %w", err)
	}
	return doc, nil
}

// RequestSchema returns the JSON request body schema of the first POST
// operation in doc.
func RequestSchema(doc *openapi3.T) (*openapi3.Schema, error) {
	if doc == nil || doc.Paths == nil {
		return nil, ErrNoOperation
	}
	for _, path := range doc.Paths.InMatchingOrder() {
		item := doc.Paths.Value(path)
		if item == nil || item.Post == nil || item.Post.RequestBody == nil || item.Post.RequestBody.Value == nil {
			continue
		}
		media := item.Post.RequestBody.Value.Content.Get("application/json")
		if media == nil || media.Schema == nil || media.Schema.Value == nil {
			continue
		}
		return media.Schema.Value, nil
	}
	return nil, ErrNoOperation
}

// CheckBody validates a request body against the registration operation.
// body may be raw JSON ([]byte, json.RawMessage), a decoded map or any value
// that encodes as a JSON object. The returned error lists every violation;
// use FieldErrors to key them by property.
func CheckBody(ctx context.Context, doc *openapi3.T, body any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	schema, err := RequestSchema(doc)
	if err != nil {
		return err
	}
	value, err := decodeBody(body)
	if err != nil {
		return err
	}
	return schema.VisitJSON(value, openapi3.MultiErrors())
}

func decodeBody(body any) (any, error) {
	var raw []byte
	switch v := body.(type) {
	case nil:
		return nil, errors.New("contract: body is required")
	case map[string]any:
		return v, nil
	case []byte:
		raw = v
	case json.RawMessage:
		raw = v
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("contract: encode body: %w", err)
		}
		raw = encoded
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("contract: decode body: %w", err)
	}
	return out, nil
}

// FieldErrors keys the violations reported by CheckBody by the offending
// property. Violations that cannot be attributed to a property are collected
// under "" so callers can surface them as form-level errors.
func FieldErrors(err error) map[string][]string {
	if err == nil {
		return nil
	}
	out := make(map[string][]string)
	var walk func(error)
	walk = func(err error) {
		var multi openapi3.MultiError
		if errors.As(err, &multi) {
			for _, inner := range multi {
				walk(inner)
			}
			return
		}
		var schemaErr *openapi3.SchemaError
		if errors.As(err, &schemaErr) {
			key := strings.Join(schemaErr.JSONPointer(), ".")
			out[key] = append(out[key], schemaErr.Reason)
			return
		}
		out[""] = append(out[""], err.Error())
	}
	walk(err)
	return out
}

// MarshalJSON renders doc as indented JSON.
func MarshalJSON(doc *openapi3.T) ([]byte, error) {
	if doc == nil {
		return nil, errors.New("contract: document is nil")
	}
	compact, err := doc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("contract: marshal json: %w", err)
	}
	var pretty any
	if err := json.Unmarshal(compact, &pretty); err != nil {
		return nil, fmt.Errorf("contract: marshal json: %w", err)
	}
	return json.MarshalIndent(pretty, "", "  ")
}

// MarshalYAML renders doc as block-style YAML, keeping the key order of the
// JSON encoding.
func MarshalYAML(doc *openapi3.T) ([]byte, error) {
	if doc == nil {
		return nil, errors.New("contract: document is nil")
	}
	data, err := doc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("contract: marshal yaml: %w", err)
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("contract: marshal yaml: %w", err)
	}
	resetStyle(&node)
	return yaml.Marshal(&node)
}

func resetStyle(node *yaml.Node) {
	node.Style = 0
	for _, child := range node.Content {
		resetStyle(child)
	}
}
