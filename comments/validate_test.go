package comments

import (
	"strings"
	"testing"
)

func TestValidateContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"plain", "nice shot", false},
		{"multiline", "line one\nline two", false},
		{"empty", "", true},
		{"whitespace only", "   \n ", true},
		{"at limit", strings.Repeat("a", MaxContentLength), false},
		{"over limit", strings.Repeat("a", MaxContentLength+1), true},
		{"control char", "bell\a", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateContent(tt.content)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateContent(%q) error = %v, wantErr %v", tt.content, err, tt.wantErr)
			}
		})
	}
}
