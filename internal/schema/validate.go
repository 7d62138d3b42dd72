package schema

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/fastygo/todolist/domain"
)

const (
	todosSchemaURL    = "todolist://schema/todos.json"
	settingsSchemaURL = "todolist://schema/settings.json"
)

//go:embed todos.schema.json
var todosSchemaJSON []byte

//go:embed settings.schema.json
var settingsSchemaJSON []byte

// ValidationError reports the first schema violation found in a stored value.
type ValidationError struct {
	Path    string // JSON path to the offending value, "$" for the root
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Unwrap classifies every schema failure as domain.ErrValidation.
func (e *ValidationError) Unwrap() error {
	return domain.ErrValidation
}

type compiledSchemas struct {
	todos    *jsonschema.Schema
	settings *jsonschema.Schema
}

var loadSchemas = sync.OnceValues(func() (compiledSchemas, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	if err := compiler.AddResource(todosSchemaURL, bytes.NewReader(todosSchemaJSON)); err != nil {
		return compiledSchemas{}, fmt.Errorf("add todos schema: %w", err)
	}
	if err := compiler.AddResource(settingsSchemaURL, bytes.NewReader(settingsSchemaJSON)); err != nil {
		return compiledSchemas{}, fmt.Errorf("add settings schema: %w", err)
	}

	todos, err := compiler.Compile(todosSchemaURL)
	if err != nil {
		return compiledSchemas{}, fmt.Errorf("compile todos schema: %w", err)
	}
	settings, err := compiler.Compile(settingsSchemaURL)
	if err != nil {
		return compiledSchemas{}, fmt.Errorf("compile settings schema: %w", err)
	}
	return compiledSchemas{todos: todos, settings: settings}, nil
})

// ValidateTodos checks a decoded, already migrated task collection. A single
// bad element fails the whole collection.
func ValidateTodos(v any) error {
	schemas, err := loadSchemas()
	if err != nil {
		return err
	}
	return validate(schemas.todos, v)
}

// ValidateSettings checks a decoded settings object.
func ValidateSettings(v any) error {
	schemas, err := loadSchemas()
	if err != nil {
		return err
	}
	return validate(schemas.settings, v)
}

func validate(schema *jsonschema.Schema, v any) error {
	err := schema.Validate(v)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &ValidationError{Path: "$", Message: err.Error()}
	}
	leaf := firstLeaf(ve)
	return &ValidationError{
		Path:    pointerToPath(leaf.InstanceLocation),
		Message: leaf.Message,
	}
}

// firstLeaf walks down the cause tree to the most specific violation.
func firstLeaf(ve *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve
}

// pointerToPath turns a JSON pointer such as "/0/status" into "$[0].status".
func pointerToPath(pointer string) string {
	if pointer == "" || pointer == "/" {
		return "$"
	}
	var b strings.Builder
	b.WriteString("$")
	for _, part := range strings.Split(strings.TrimPrefix(pointer, "/"), "/") {
		part = strings.ReplaceAll(strings.ReplaceAll(part, "~1", "/"), "~0", "~")
		if isIndex(part) {
			b.WriteString("[" + part + "]")
			continue
		}
		b.WriteString("." + part)
	}
	return b.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
