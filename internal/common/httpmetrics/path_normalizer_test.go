package httpmetrics

import "testing"

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/health", "/health"},
		{"/metrics", "/metrics"},
		{"/debug/vars", "/debug/vars"},
		{"/debug/users", "/debug/users"},
		{"", "other"},
		{"/wp-admin/setup.php", "other"},
		{"/health/extra", "other"},
	}

	for _, tt := range tests {
		if got := NormalizePath(tt.path); got != tt.want {
			t.Errorf("NormalizePath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
