package slug

import "testing"

func TestMake(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"single word", "Python", "python"},
		{"spaces", "Other Frameworks", "other-frameworks"},
		{"repeated spaces", "  Other   Frameworks  ", "other-frameworks"},
		{"accents", "Café Crème", "cafe-creme"},
		{"punctuation", "C++ & Go!", "c-go"},
		{"hyphens kept", "django-rest", "django-rest"},
		{"underscores kept", "snake_case name", "snake_case-name"},
		{"digits", "Python 3", "python-3"},
		{"only symbols", "!!!", ""},
		{"non latin dropped", "日本 Go", "go"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Make(tt.in); got != tt.want {
				t.Errorf("Make(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMakeIsDeterministic(t *testing.T) {
	if Make("Python Web") != Make("Python Web") {
		t.Fatal("Make returned different slugs for the same name")
	}
}
