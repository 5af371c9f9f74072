// Package schema defines the data contracts exchanged between pipeline
// stages, and a type-safe JSON Schema builder used to constrain LLM tool
// calls to those contracts.
package schema

// JSONSchema is a type-safe JSON Schema document, used instead of a bare
// map[string]interface{} so schema construction is checked at compile time.
type JSONSchema struct {
	Type                 string                    `json:"type"`
	Description          string                    `json:"description,omitempty"`
	Properties           map[string]PropertySchema `json:"properties,omitempty"`
	Required             []string                  `json:"required,omitempty"`
	AdditionalProperties *bool                     `json:"additionalProperties,omitempty"`
}

// PropertySchema defines a single property within a JSONSchema.
type PropertySchema struct {
	Type        string          `json:"type"`
	Description string          `json:"description,omitempty"`
	Default     any             `json:"default,omitempty"`
	Enum        []string        `json:"enum,omitempty"`
	Minimum     *float64        `json:"minimum,omitempty"`
	Maximum     *float64        `json:"maximum,omitempty"`
	MinItems    *int            `json:"minItems,omitempty"`
	MaxItems    *int            `json:"maxItems,omitempty"`
	Items       *PropertySchema `json:"items,omitempty"`
}

// Builder provides a fluent API for constructing a JSONSchema that
// constrains an agent's LLM call to its expected output contract.
type Builder struct {
	schema JSONSchema
}

// NewBuilder starts a new schema under construction.
func NewBuilder(description string) *Builder {
	return &Builder{
		schema: JSONSchema{
			Type:        "object",
			Description: description,
			Properties:  make(map[string]PropertySchema),
			Required:    []string{},
		},
	}
}

func (b *Builder) AddString(name, description string, required bool) *Builder {
	b.schema.Properties[name] = PropertySchema{Type: "string", Description: description}
	if required {
		b.schema.Required = append(b.schema.Required, name)
	}
	return b
}

func (b *Builder) AddStringEnum(name, description string, enum []string, required bool) *Builder {
	b.schema.Properties[name] = PropertySchema{Type: "string", Description: description, Enum: enum}
	if required {
		b.schema.Required = append(b.schema.Required, name)
	}
	return b
}

func (b *Builder) AddNumber(name, description string, required bool) *Builder {
	b.schema.Properties[name] = PropertySchema{Type: "number", Description: description}
	if required {
		b.schema.Required = append(b.schema.Required, name)
	}
	return b
}

func (b *Builder) AddNumberWithRange(name, description string, min, max float64, required bool) *Builder {
	b.schema.Properties[name] = PropertySchema{Type: "number", Description: description, Minimum: &min, Maximum: &max}
	if required {
		b.schema.Required = append(b.schema.Required, name)
	}
	return b
}

func (b *Builder) AddInteger(name, description string, required bool) *Builder {
	b.schema.Properties[name] = PropertySchema{Type: "integer", Description: description}
	if required {
		b.schema.Required = append(b.schema.Required, name)
	}
	return b
}

func (b *Builder) AddBoolean(name, description string, required bool) *Builder {
	b.schema.Properties[name] = PropertySchema{Type: "boolean", Description: description}
	if required {
		b.schema.Required = append(b.schema.Required, name)
	}
	return b
}

// AddArray adds an array-of-object property described by an element schema.
func (b *Builder) AddArray(name, description string, element JSONSchema, required bool) *Builder {
	b.schema.Properties[name] = PropertySchema{
		Type:        "array",
		Description: description,
		Items:       objectItems(element),
	}
	if required {
		b.schema.Required = append(b.schema.Required, name)
	}
	return b
}

func (b *Builder) AddStringArray(name, description string, required bool) *Builder {
	b.schema.Properties[name] = PropertySchema{
		Type:        "array",
		Description: description,
		Items:       &PropertySchema{Type: "string"},
	}
	if required {
		b.schema.Required = append(b.schema.Required, name)
	}
	return b
}

func (b *Builder) AddIntegerArray(name, description string, required bool) *Builder {
	b.schema.Properties[name] = PropertySchema{
		Type:        "array",
		Description: description,
		Items:       &PropertySchema{Type: "integer"},
	}
	if required {
		b.schema.Required = append(b.schema.Required, name)
	}
	return b
}

// NoAdditionalProperties locks the schema down to exactly its declared
// properties, matching Anthropic's strict tool-call mode.
func (b *Builder) NoAdditionalProperties() *Builder {
	f := false
	b.schema.AdditionalProperties = &f
	return b
}

// Build returns the constructed schema.
func (b *Builder) Build() JSONSchema {
	return b.schema
}

// objectItems turns a nested JSONSchema into the PropertySchema used for
// array items. Only the fields a nested object item needs are carried over;
// deeper nesting (arrays of arrays of objects) is not required by this
// pipeline's contracts.
func objectItems(s JSONSchema) *PropertySchema {
	return &PropertySchema{Type: s.Type, Description: s.Description}
}

// AsMap renders the schema into the map[string]interface{} shape accepted
// by the ask_llm collaborator interface.
func (b *Builder) AsMap() map[string]any {
	return schemaToMap(b.schema)
}

func schemaToMap(s JSONSchema) map[string]any {
	props := make(map[string]any, len(s.Properties))
	for name, prop := range s.Properties {
		propMap := map[string]any{
			"type": prop.Type,
		}
		if prop.Description != "" {
			propMap["description"] = prop.Description
		}
		if prop.Default != nil {
			propMap["default"] = prop.Default
		}
		if prop.Enum != nil {
			propMap["enum"] = prop.Enum
		}
		if prop.Minimum != nil {
			propMap["minimum"] = *prop.Minimum
		}
		if prop.Maximum != nil {
			propMap["maximum"] = *prop.Maximum
		}
		if prop.MinItems != nil {
			propMap["minItems"] = *prop.MinItems
		}
		if prop.MaxItems != nil {
			propMap["maxItems"] = *prop.MaxItems
		}
		if prop.Items != nil {
			propMap["items"] = map[string]any{"type": prop.Items.Type}
		}
		props[name] = propMap
	}

	result := map[string]any{
		"type":       s.Type,
		"properties": props,
		"required":   s.Required,
	}
	if s.Description != "" {
		result["description"] = s.Description
	}
	if s.AdditionalProperties != nil {
		result["additionalProperties"] = *s.AdditionalProperties
	}
	return result
}
