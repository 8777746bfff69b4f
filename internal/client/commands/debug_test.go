package commands

import "testing"

func TestRawPath(t *testing.T) {
	tests := []struct {
		path, game, want string
	}{
		{"/health", "", "/health"},
		{"games", "", "/api/v1/games"},
		{"games/@/board", "abc", "/api/v1/games/abc/board"},
		{"/api/v1/games/@", "abc", "/api/v1/games/abc"},
		{"games/@", "", "/api/v1/games/@"},
	}

	for _, tt := range tests {
		if got := rawPath(tt.path, tt.game); got != tt.want {
			t.Fatalf("rawPath(%q, %q) = %q, want %q", tt.path, tt.game, got, tt.want)
		}
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := map[string]string{
		"localhost:8080":         "http://localhost:8080",
		"http://example.com/":    "http://example.com",
		"https://chess.test:443": "https://chess.test:443",
	}
	for in, want := range tests {
		if got := normalizeURL(in); got != want {
			t.Fatalf("normalizeURL(%q) = %q, want %q", in, got, want)
		}
	}
}
