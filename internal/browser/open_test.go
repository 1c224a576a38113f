package browser

import (
	"path/filepath"
	"testing"
)

func TestCommand(t *testing.T) {
	abs, err := filepath.Abs("orders.csv")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		goos   string
		target string
		want   []string
	}{
		{"darwin", "https://vendora.io", []string{"open", "https://vendora.io"}},
		{"linux", "https://vendora.io", []string{"xdg-open", "https://vendora.io"}},
		{"windows", "https://vendora.io", []string{"rundll32", "url.dll,FileProtocolHandler", "https://vendora.io"}},
		{"linux", "orders.csv", []string{"xdg-open", abs}},
	}
	for _, tt := range tests {
		cmd, err := command(tt.goos, tt.target)
		if err != nil {
			t.Fatalf("command(%q, %q): %v", tt.goos, tt.target, err)
		}
		if len(cmd.Args) != len(tt.want) {
			t.Fatalf("command(%q, %q) args = %v, want %v", tt.goos, tt.target, cmd.Args, tt.want)
		}
		for i := range tt.want {
			if cmd.Args[i] != tt.want[i] {
				t.Errorf("command(%q, %q) arg %d = %q, want %q", tt.goos, tt.target, i, cmd.Args[i], tt.want[i])
			}
		}
	}
}

func TestCommandErrors(t *testing.T) {
	if _, err := command("linux", ""); err == nil {
		t.Error("empty target should fail")
	}
	if _, err := command("plan9", "https://vendora.io"); err == nil {
		t.Error("unsupported OS should fail")
	}
}
