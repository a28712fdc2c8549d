package validator

import (
	"fmt"
	"sort"
	"strconv"

	"loomhq/atelier/pkg/schema"
)

// Validator checks configuration values against a resolved schema. It is
// stateless and safe for concurrent use.
type Validator struct{}

// New creates a new validator.
func New() *Validator {
	return &Validator{}
}

// Validate checks the configuration object against the resolved schema and
// returns every violation found. The configuration is never mutated.
//
// Supported checks: type (object/string/number/boolean/array), required
// presence, recognized string formats, and recursive validation of nested
// objects and arrays through properties/items. Unknown top-level keys are
// permitted unless the schema sets additionalProperties to false.
func (v *Validator) Validate(config map[string]any, resolved *schema.Resolved) *Result {
	result := &Result{}

	objectSchema := map[string]any{
		"type":       "object",
		"properties": resolved.Properties,
		"required":   requiredAsAny(resolved.Required),
	}
	if resolved.AdditionalProperties != nil {
		objectSchema["additionalProperties"] = *resolved.AdditionalProperties
	}

	v.validateValue(result, "", config, objectSchema)
	return result
}

// validateValue validates one value against one (sub)schema, appending all
// violations to the result.
func (v *Validator) validateValue(result *Result, pointer string, value any, valueSchema map[string]any) {
	declaredType, _ := valueSchema["type"].(string)

	if declaredType != "" && !matchesType(value, declaredType) {
		result.add(pointer,
			fmt.Sprintf("expected %s, got %s", declaredType, describeType(value)),
			declaredType,
		)
		// A value of the wrong type is not recursed into.
		return
	}

	if str, ok := value.(string); ok {
		if name, ok := valueSchema["format"].(string); ok {
			if predicate, known := formats[name]; known && !predicate(str) {
				result.add(pointer,
					fmt.Sprintf("value does not satisfy format %q", name),
					name,
				)
			}
		}
	}

	if object, ok := value.(map[string]any); ok {
		v.validateObject(result, pointer, object, valueSchema)
	}

	if array, ok := value.([]any); ok {
		if items, ok := valueSchema["items"].(map[string]any); ok {
			for i, element := range array {
				v.validateValue(result, childPointer(pointer, strconv.Itoa(i)), element, items)
			}
		}
	}
}

// validateObject applies required, properties, and additionalProperties to
// an object value. Iteration is sorted so that identical inputs always
// yield identical results.
func (v *Validator) validateObject(result *Result, pointer string, object map[string]any, objectSchema map[string]any) {
	properties, _ := objectSchema["properties"].(map[string]any)

	for _, name := range requiredNames(objectSchema["required"]) {
		if _, present := object[name]; !present {
			result.add(childPointer(pointer, name),
				fmt.Sprintf("missing required property %q", name),
				"required",
			)
		}
	}

	for _, name := range sortedKeys(object) {
		propertySchema, ok := properties[name].(map[string]any)
		if !ok {
			continue
		}
		v.validateValue(result, childPointer(pointer, name), object[name], propertySchema)
	}

	if additional, ok := objectSchema["additionalProperties"].(bool); ok && !additional {
		for _, name := range sortedKeys(object) {
			if _, known := properties[name]; !known {
				result.add(childPointer(pointer, name),
					fmt.Sprintf("property %q is not allowed", name),
					"none",
				)
			}
		}
	}
}

// matchesType reports whether a decoded JSON value satisfies the declared
// schema type.
func matchesType(value any, declaredType string) bool {
	switch declaredType {
	case "object":
		_, ok := value.(map[string]any)
		return ok
	case "string":
		_, ok := value.(string)
		return ok
	case "number":
		switch value.(type) {
		case float64, float32, int, int32, int64:
			return true
		}
		return false
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "array":
		_, ok := value.([]any)
		return ok
	default:
		// Unknown declared types are not enforced.
		return true
	}
}

// describeType names a decoded JSON value's type for violation messages.
func describeType(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int32, int64:
		return "number"
	default:
		return fmt.Sprintf("%T", value)
	}
}

// requiredNames extracts the required list from a subschema, which after
// JSON decoding is a []any of strings.
func requiredNames(raw any) []string {
	switch list := raw.(type) {
	case []string:
		return list
	case []any:
		names := make([]string, 0, len(list))
		for _, entry := range list {
			if name, ok := entry.(string); ok {
				names = append(names, name)
			}
		}
		return names
	default:
		return nil
	}
}

func requiredAsAny(names []string) []any {
	out := make([]any, len(names))
	for i, name := range names {
		out[i] = name
	}
	return out
}

func sortedKeys(object map[string]any) []string {
	keys := make([]string, 0, len(object))
	for key := range object {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
