package youtube

import "testing"

func TestValidateBaseURL(t *testing.T) {
	tests := []struct {
		name         string
		baseURL      string
		allowedHosts []string
		wantErr      bool
	}{
		{name: "empty uses default", baseURL: ""},
		{name: "default host", baseURL: "https://www.googleapis.com/"},
		{name: "alternate google host", baseURL: "https://youtube.googleapis.com"},
		{name: "reject non-absolute URL", baseURL: "www.googleapis.com", wantErr: true},
		{name: "reject http", baseURL: "http://www.googleapis.com", wantErr: true},
		{name: "reject unknown host", baseURL: "https://evil.example", wantErr: true},
		{name: "reject userinfo", baseURL: "https://u:p@www.googleapis.com", wantErr: true},
		{name: "reject query", baseURL: "https://www.googleapis.com?x=1", wantErr: true},
		{
			name:         "allow configured host",
			baseURL:      "https://proxy.internal",
			allowedHosts: []string{" https://proxy.internal:8443/ "},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBaseURL(tt.baseURL, tt.allowedHosts)
			if tt.wantErr && err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestNormalizeAllowedHosts_DefaultWhenEmpty(t *testing.T) {
	out := normalizeAllowedHosts([]string{" ", "https://", "http://"})
	if len(out) != len(defaultAllowedHosts) {
		t.Fatalf("expected default allowed hosts, got %v", out)
	}
}
