package main

import (
	"fmt"
	"strings"

	"pricewatch"
)

// Run executes the rules command.
func (c *RulesCmd) Run(deps *Dependencies) error {
	for i, rule := range deps.Rules {
		if i > 0 {
			fmt.Fprintln(deps.Stdout)
		}
		fmt.Fprintf(deps.Stdout, "%s (match %q)\n", rule.Name, rule.Match)
		for _, sel := range rule.Selectors {
			fmt.Fprintf(deps.Stdout, "  %s%s\n", sel.Query, selectorNotes(sel))
		}
	}
	return nil
}

func selectorNotes(sel pricewatch.Selector) string {
	var notes []string
	if sel.Attr != "" {
		notes = append(notes, "attr "+sel.Attr)
	}
	if sel.Contains != "" {
		notes = append(notes, fmt.Sprintf("contains %q", sel.Contains))
	}
	if len(notes) == 0 {
		return ""
	}
	return " (" + strings.Join(notes, ", ") + ")"
}
