package render

import (
	"fmt"
	"regexp"
	"strings"
)

// Tooltip template syntax constants
const (
	tooltipPrefix = "{{"
	tooltipSuffix = "}}"
)

// tooltipVarRegex matches tooltip variables like {{name}} or
// {{name | default: "value"}}.
// Group 1: field name. Group 2: the default clause. Group 3: the default
// value itself (may be the empty string).
var tooltipVarRegex = regexp.MustCompile(`\{\{\s*([^|}]+?)(\s*\|\s*default:\s*"([^"]*)")?\s*\}\}`)

// tooltipVar is one parsed tooltip variable.
type tooltipVar struct {
	fullMatch    string
	field        string
	defaultValue string
	hasDefault   bool
}

// TooltipEvaluator substitutes unit fields into tooltip templates like
// "{{name}}: {{percent}}%". Missing fields resolve to the default clause
// when present, otherwise to the empty string.
//
// Parsed templates are cached per evaluator. The cache is not safe for
// concurrent use; each renderer owns its own evaluator.
type TooltipEvaluator struct {
	cache map[string][]tooltipVar
}

// NewTooltipEvaluator creates a tooltip evaluator.
func NewTooltipEvaluator() *TooltipEvaluator {
	return &TooltipEvaluator{cache: make(map[string][]tooltipVar)}
}

// hasTooltipVars checks whether a template contains any variables.
func hasTooltipVars(s string) bool {
	return strings.Contains(s, tooltipPrefix) && strings.Contains(s, tooltipSuffix)
}

// parse extracts the variables of a template, consulting the cache first.
func (e *TooltipEvaluator) parse(template string) []tooltipVar {
	if cached, ok := e.cache[template]; ok {
		return cached
	}

	matches := tooltipVarRegex.FindAllStringSubmatch(template, -1)
	vars := make([]tooltipVar, 0, len(matches))
	for _, match := range matches {
		v := tooltipVar{
			fullMatch: match[0],
			field:     strings.TrimSpace(match[1]),
		}
		if match[2] != "" {
			v.defaultValue = match[3]
			v.hasDefault = true
		}
		vars = append(vars, v)
	}

	e.cache[template] = vars
	return vars
}

// Evaluate substitutes every variable of the template with the matching
// field value.
func (e *TooltipEvaluator) Evaluate(template string, fields map[string]interface{}) string {
	if !hasTooltipVars(template) {
		return template
	}

	result := template
	for _, v := range e.parse(template) {
		value, ok := fields[v.field]
		var text string
		switch {
		case ok && value != nil:
			text = fieldToString(value)
		case v.hasDefault:
			text = v.defaultValue
		}
		result = strings.Replace(result, v.fullMatch, text, 1)
	}
	return result
}

// ValidateTooltip checks a tooltip template for balanced, non-empty
// variable expressions.
func ValidateTooltip(template string) error {
	open := strings.Count(template, tooltipPrefix)
	closed := strings.Count(template, tooltipSuffix)
	if open != closed {
		return fmt.Errorf("unmatched tooltip delimiters (%d '{{' and %d '}}')", open, closed)
	}
	if open == 0 {
		return nil
	}

	if regexp.MustCompile(`\{\{\s*\}\}`).MatchString(template) {
		return fmt.Errorf("empty tooltip variable")
	}

	remainder := tooltipVarRegex.ReplaceAllString(template, "")
	if strings.Contains(remainder, tooltipPrefix) || strings.Contains(remainder, tooltipSuffix) {
		return fmt.Errorf("stray tooltip delimiter")
	}
	return nil
}

// fieldToString renders a field value for display. Float percentages keep
// one decimal; integral floats drop the point.
func fieldToString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%.1f", v)
	case int:
		return fmt.Sprintf("%d", v)
	case bool:
		return fmt.Sprintf("%t", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
