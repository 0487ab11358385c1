// Package template provides a Handlebars template engine for render jobs.
//
// The engine supports Handlebars syntax with custom helpers for common
// operations and the control-flow helpers of pkg/controlflow.
//
// Example usage:
//
//	engine := template.NewEngine(template.WithLogger(logger))
//
//	data := map[string]interface{}{
//	    "state": map[string]interface{}{
//	        "message": "Hello World",
//	        "priority": "high",
//	    },
//	}
//
//	template := "Message: {{state.message}}\nPriority: {{uppercase state.priority}}"
//	result, err := engine.Render(template, data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// Output: Message: Hello World
//	//         Priority: HIGH
//
// Built-in helpers:
//   - uppercase - Convert string to uppercase
//   - lowercase - Convert string to lowercase
//   - trim - Trim whitespace from string
//   - coalesce - Return fallback value if first arg is empty
//   - eq - Equality comparison (coercive, 1 equals "1")
//   - ne - Inequality comparison
//   - gt - Greater than (for numbers)
//   - lt - Less than (for numbers)
//   - contains - Check if string contains substring
//   - join - Join array elements with separator
//   - len - Get length of array/string/map
//   - ifEquals, switch, case, default - see pkg/controlflow
//
// Helpers are registered per engine, never globally, so several engines
// can live in one process. Registering a helper under an existing name
// replaces it and drops every compiled template.
//
// Example with helpers:
//
//	{{uppercase name}}                     # "JOHN"
//	{{coalesce value "N/A"}}               # "N/A" if value is empty
//	{{#if (eq status "active")}}...{{/if}} # Conditional
//	{{#if (gt score 0.8)}}...{{/if}}       # Numeric comparison
//	{{#switch state.priority}}
//	  {{#case "high" "urgent" break=true}}Escalate{{/case}}
//	  {{#default}}Queue{{/default}}
//	{{/switch}}
package template
