package domain

// ObjectInfo renders the spec in the host's INPUT_TYPES / object_info shape.
func (s Spec) ObjectInfo() map[string]any {
	section := func(inputs []Input) map[string]any {
		m := make(map[string]any, len(inputs))
		for _, in := range inputs {
			m[in.Name] = in.declaration()
		}
		return m
	}

	input := map[string]any{"required": section(s.Required)}
	if len(s.Optional) > 0 {
		input["optional"] = section(s.Optional)
	}
	if len(s.Hidden) > 0 {
		hidden := make(map[string]any, len(s.Hidden))
		for _, in := range s.Hidden {
			hidden[in.Name] = string(in.Type)
		}
		input["hidden"] = hidden
	}

	outputs := make([]string, len(s.ReturnTypes))
	for i, t := range s.ReturnTypes {
		outputs[i] = string(t)
	}
	names := s.ReturnNames
	if len(names) == 0 {
		names = outputs
	}

	return map[string]any{
		"input":        input,
		"output":       outputs,
		"output_name":  names,
		"name":         s.Class,
		"display_name": s.DisplayName,
		"category":     s.Category,
		"description":  s.Description,
		"output_node":  s.OutputNode,
	}
}

// declaration is the (type, options) tuple the host expects per input.
func (i Input) declaration() []any {
	var head any = string(i.Type)
	if i.Type == SocketCombo {
		head = i.Choices
	}
	if len(i.Options) == 0 {
		return []any{head}
	}
	return []any{head, i.Options}
}
