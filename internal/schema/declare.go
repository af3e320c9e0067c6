package schema

// Definition is an OpenAPI-subset schema as accepted by the model's
// structured-output and function-declaration fields.
type Definition map[string]any

// Object declares an object with the given properties; required lists the
// property names the model must always emit.
func Object(props map[string]Definition, required ...string) Definition {
	d := Definition{"type": "OBJECT", "properties": props}
	if len(required) > 0 {
		d["required"] = required
	}
	return d
}

func String(description string) Definition {
	return Definition{"type": "STRING", "description": description}
}

func Enum(description string, values ...string) Definition {
	return Definition{"type": "STRING", "description": description, "enum": values}
}

func Bool(description string) Definition {
	return Definition{"type": "BOOLEAN", "description": description}
}

func Number(description string) Definition {
	return Definition{"type": "NUMBER", "description": description}
}

func Array(description string, items Definition) Definition {
	return Definition{"type": "ARRAY", "description": description, "items": items}
}
