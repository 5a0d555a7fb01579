package database

import "testing"

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in      string
		want    Direction
		wantErr bool
	}{
		{in: "", want: Up},
		{in: "up", want: Up},
		{in: "down", want: Down},
		{in: "sideways", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseDirection(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("ParseDirection(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("ParseDirection(%q) = %q, %v", tt.in, got, err)
		}
	}
}
