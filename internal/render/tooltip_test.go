package render

import "testing"

// TestTooltipEvaluate tests variable substitution.
func TestTooltipEvaluate(t *testing.T) {
	e := NewTooltipEvaluator()
	fields := map[string]interface{}{
		"name":    "Fairfax",
		"percent": 66.7,
		"total":   3,
	}

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{
			name:     "plain substitution",
			template: "{{name}}: {{percent}}%",
			want:     "Fairfax: 66.7%",
		},
		{
			name:     "no variables",
			template: "static text",
			want:     "static text",
		},
		{
			name:     "missing field",
			template: "{{name}} in {{state}}",
			want:     "Fairfax in ",
		},
		{
			name:     "missing field with default",
			template: `{{state | default: "VA"}}`,
			want:     "VA",
		},
		{
			name:     "integer field",
			template: "{{total}} records",
			want:     "3 records",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Evaluate(tt.template, fields); got != tt.want {
				t.Errorf("Evaluate(%q) = %q, want %q", tt.template, got, tt.want)
			}
		})
	}
}

// TestTooltipCacheReuse tests that a repeated template parses once and
// still evaluates correctly.
func TestTooltipCacheReuse(t *testing.T) {
	e := NewTooltipEvaluator()
	template := "{{name}}"

	first := e.Evaluate(template, map[string]interface{}{"name": "a"})
	second := e.Evaluate(template, map[string]interface{}{"name": "b"})
	if first != "a" || second != "b" {
		t.Errorf("got %q then %q, want a then b", first, second)
	}
	if len(e.cache) != 1 {
		t.Errorf("cache size = %d, want 1", len(e.cache))
	}
}

// TestValidateTooltip tests template syntax validation.
func TestValidateTooltip(t *testing.T) {
	tests := []struct {
		name     string
		template string
		wantErr  bool
	}{
		{name: "valid", template: "{{name}}: {{percent}}%", wantErr: false},
		{name: "no variables", template: "plain", wantErr: false},
		{name: "empty", template: "", wantErr: false},
		{name: "unmatched open", template: "{{name", wantErr: true},
		{name: "empty variable", template: "{{}}", wantErr: true},
		{name: "inverted pair", template: "}}{{", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTooltip(tt.template)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTooltip(%q) error = %v, wantErr %v", tt.template, err, tt.wantErr)
			}
		})
	}
}
