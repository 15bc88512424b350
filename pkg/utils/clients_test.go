package utils

import "testing"

func TestValidateClientName(t *testing.T) {
	valid := []string{"acme", "acme-labs", "Client 42", " padded "}
	for _, name := range valid {
		if err := ValidateClientName(name); err != nil {
			t.Errorf("ValidateClientName(%q): unexpected error %v", name, err)
		}
	}

	invalid := []string{"", "   ", "a/b", `a\b`, "..", "up..dir"}
	for _, name := range invalid {
		if err := ValidateClientName(name); err == nil {
			t.Errorf("ValidateClientName(%q): expected error", name)
		}
	}
}
