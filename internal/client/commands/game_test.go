package commands

import "testing"

func TestParseNewGameArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		color   string
		think   int // -1 when unset
		fen     string
		wantErr bool
	}{
		{"defaults", nil, "w", -1, "", false},
		{"black", []string{"black"}, "b", -1, "", false},
		{"think time", []string{"w", "0"}, "w", 0, "", false},
		{"fen", []string{"b", "250", "4k3/8/8/8/8/8/8/4K3", "w"}, "b", 250, "4k3/8/8/8/8/8/8/4K3 w", false},
		{"bad color", []string{"red"}, "", 0, "", true},
		{"negative think", []string{"w", "-5"}, "", 0, "", true},
		{"think not a number", []string{"w", "fast"}, "", 0, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := parseNewGameArgs(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %v", tt.args)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseNewGameArgs(%v): %v", tt.args, err)
			}
			if req.HumanColor != tt.color {
				t.Fatalf("color = %q, want %q", req.HumanColor, tt.color)
			}
			if tt.think < 0 && req.ThinkTime != nil {
				t.Fatalf("think time = %d, want unset", *req.ThinkTime)
			}
			if tt.think >= 0 && (req.ThinkTime == nil || *req.ThinkTime != tt.think) {
				t.Fatalf("think time = %v, want %d", req.ThinkTime, tt.think)
			}
			if req.FEN != tt.fen {
				t.Fatalf("fen = %q, want %q", req.FEN, tt.fen)
			}
		})
	}
}

func TestSplitMove(t *testing.T) {
	tests := []struct {
		args     []string
		from, to string
		wantErr  bool
	}{
		{[]string{"e2e4"}, "e2", "e4", false},
		{[]string{"g1", "f3"}, "g1", "f3", false},
		{[]string{"e2"}, "", "", true},
		{[]string{"e2", "e3", "e4"}, "", "", true},
	}

	for _, tt := range tests {
		from, to, err := splitMove(tt.args)
		if (err != nil) != tt.wantErr {
			t.Fatalf("splitMove(%v) error = %v, wantErr %v", tt.args, err, tt.wantErr)
		}
		if from != tt.from || to != tt.to {
			t.Fatalf("splitMove(%v) = %s,%s want %s,%s", tt.args, from, to, tt.from, tt.to)
		}
	}
}
