package common

import (
	"testing"
)

func TestValidateOutputFormat(t *testing.T) {
	enabled := []string{"json", "text", "markdown", "badge"}

	tests := []struct {
		name    string
		format  string
		formats []string
		wantErr string
	}{
		{
			name:    "json enabled",
			format:  "json",
			formats: enabled,
		},
		{
			name:    "badge enabled",
			format:  "badge",
			formats: enabled,
		},
		{
			name:    "yaml not registered",
			format:  "yaml",
			formats: enabled,
			wantErr: `output format "yaml" is not enabled (choose one of: json, text, markdown, badge)`,
		},
		{
			name:    "format names are case sensitive",
			format:  "Markdown",
			formats: enabled,
			wantErr: `output format "Markdown" is not enabled (choose one of: json, text, markdown, badge)`,
		},
		{
			name:    "empty format rejected",
			format:  "",
			formats: enabled,
			wantErr: `output format "" is not enabled (choose one of: json, text, markdown, badge)`,
		},
		{
			name:    "nil list disables the check",
			format:  "yaml",
			formats: nil,
		},
		{
			name:    "single enabled format",
			format:  "text",
			formats: []string{"json"},
			wantErr: `output format "text" is not enabled (choose one of: json)`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format, tt.formats)

			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("ValidateOutputFormat(%q) returned %v, want nil", tt.format, err)
				}
				return
			}

			if err == nil {
				t.Fatalf("ValidateOutputFormat(%q) returned nil, want error", tt.format)
			}
			if err.Error() != tt.wantErr {
				t.Errorf("error = %q, want %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func BenchmarkValidateOutputFormat(b *testing.B) {
	enabled := []string{"json", "text", "markdown", "badge"}

	for b.Loop() {
		_ = ValidateOutputFormat("markdown", enabled)
	}
}
