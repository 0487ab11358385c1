// Package controlflow adds equality conditionals and switch/case/default
// blocks to Handlebars templates rendered with raymond.
//
// Example usage:
//
//	tpl, err := raymond.Parse(controlflow.Preprocess(source))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	controlflow.Install(tpl)
//
//	out, err := tpl.Exec(data)
//
// Helpers:
//   - ifEquals - Render the block when both arguments are loosely equal, else the {{else}} part
//   - switch   - Open a switch on a value; its body holds case and default blocks
//   - case     - Render when the switch value equals one of the arguments
//   - default  - Render unless an earlier case matched with break=true
//
// Equality is coercive, like == in JavaScript: 1 equals "1", 0 equals false
// and null equals undefined (both nil in Go).
//
// Example template:
//
//	{{#ifEquals user.role "admin"}}Admin{{else}}User{{/ifEquals}}
//
//	{{#switch status}}
//	  {{#case "open" "reopened" break=true}}Open{{/case}}
//	  {{#case "closed"}}Closed{{/case}}
//	  {{#default}}Unknown{{/default}}
//	{{/switch}}
//
// Cases do not exclude each other: every matching case renders, in
// document order, until one of them carries break=true. After that no
// later case or default of the same switch renders. A default placed
// before the breaking case has already rendered by then.
//
// Each switch keeps its selector and break flag in its own private data
// frame, so switches nest freely and the template data is never modified.
// A case or default outside any switch sees no selector: case then only
// matches a nil candidate and default always renders.
package controlflow
