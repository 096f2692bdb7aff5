package validation

import (
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/jonathan/salon-copy/internal/types"
)

var schemaCache sync.Map // types.CharLimits -> *gojsonschema.Schema

// ItemSchema returns the JSON Schema document for one generated item.
func ItemSchema(limits types.CharLimits) map[string]any {
	str := func(max int) map[string]any {
		return map[string]any{"type": "string", "maxLength": max}
	}
	return map[string]any{
		"$schema":  "http://json-schema.org/draft-07/schema#",
		"type":     "object",
		"required": []any{"title", "menu", "comment", "hashtag"},
		"properties": map[string]any{
			"title":   str(limits.Title),
			"menu":    str(limits.Menu),
			"comment": str(limits.Comment),
			"hashtag": map[string]any{
				"type":     "array",
				"minItems": types.MinHashtags,
				"items":    str(limits.HashtagWord),
			},
		},
	}
}

func compiledSchema(limits types.CharLimits) (*gojsonschema.Schema, error) {
	if s, ok := schemaCache.Load(limits); ok {
		return s.(*gojsonschema.Schema), nil
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(ItemSchema(limits)))
	if err != nil {
		return nil, &SchemaError{Cause: err}
	}

	actual, _ := schemaCache.LoadOrStore(limits, schema)
	return actual.(*gojsonschema.Schema), nil
}

// validateItem checks one decoded element against the schema.
func validateItem(schema *gojsonschema.Schema, index int, item any) *ItemError {
	result, err := schema.Validate(gojsonschema.NewGoLoader(item))
	if err != nil {
		return &ItemError{Index: index, Errors: []FieldError{{Field: "(root)", Message: err.Error()}}}
	}
	if result.Valid() {
		return nil
	}

	itemErr := &ItemError{Index: index, Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		itemErr.Errors = append(itemErr.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return itemErr
}
