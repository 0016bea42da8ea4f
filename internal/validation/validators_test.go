package validation

import "testing"

func TestValidatePriority(t *testing.T) {
	t.Parallel()

	valid := []string{"none", "low", "medium", "high"}
	for _, p := range valid {
		if err := ValidatePriority(p); err != nil {
			t.Errorf("ValidatePriority(%q) = %v, want nil", p, err)
		}
	}

	invalid := []string{"", "urgent", "HIGH", "critical"}
	for _, p := range invalid {
		if err := ValidatePriority(p); err == nil {
			t.Errorf("ValidatePriority(%q) = nil, want error", p)
		}
	}
}

func TestPriorityValidatorTag(t *testing.T) {
	t.Parallel()

	type payload struct {
		Priority string `validate:"priority"`
	}

	if err := Validate.Struct(payload{Priority: "medium"}); err != nil {
		t.Errorf("valid priority rejected: %v", err)
	}
	if err := Validate.Struct(payload{Priority: ""}); err != nil {
		t.Errorf("empty optional priority rejected: %v", err)
	}
	if err := Validate.Struct(payload{Priority: "whenever"}); err == nil {
		t.Error("invalid priority accepted")
	}
}

func TestSanitizeText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"trims whitespace", "  hello  ", "hello"},
		{"strips control chars", "he\x00llo\x07", "hello"},
		{"keeps newline and tab", "a\n\tb", "a\n\tb"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SanitizeText(tt.input); got != tt.expected {
				t.Errorf("SanitizeText(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
