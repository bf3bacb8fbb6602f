package entity

import "testing"

// TestSanitizeProjectName 项目名净化：合法字符集与空名拒绝
func TestSanitizeProjectName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"simple", "MyNovel", "MyNovel", true},
		{"with space and hyphen", "My Novel-2", "My Novel-2", true},
		{"underscore", "my_novel", "my_novel", true},
		{"trimmed", "  spaced  ", "spaced", true},
		{"empty", "", "", false},
		{"whitespace only", "   ", "", false},
		{"path traversal", "../etc", "", false},
		{"slash", "a/b", "", false},
		{"unicode rejected", "小说", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SanitizeProjectName(tt.input)
			if ok != tt.ok {
				t.Fatalf("SanitizeProjectName(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if got != tt.want {
				t.Fatalf("SanitizeProjectName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestNewEntityID 短标识长度固定为 8
func TestNewEntityID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewEntityID()
		if len(id) != 8 {
			t.Fatalf("expected 8-char id, got %q", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
