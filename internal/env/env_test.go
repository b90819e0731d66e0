package env

import (
	"testing"
	"time"
)

func TestStr(t *testing.T) {
	t.Setenv("TEST_STR", "hello")
	if got := Str("TEST_STR", "def"); got != "hello" {
		t.Errorf("Str = %q, want %q", got, "hello")
	}
	if got := Str("TEST_STR_MISSING", "def"); got != "def" {
		t.Errorf("Str missing = %q, want default", got)
	}
}

func TestInt(t *testing.T) {
	tests := []struct {
		name  string
		value string
		def   int
		want  int
	}{
		{"valid", "42", 1, 42},
		{"invalid", "abc", 7, 7},
		{"negative", "-3", 1, -3},
		{"empty", "", 9, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_INT", tt.value)
			if got := Int("TEST_INT", tt.def); got != tt.want {
				t.Errorf("Int(%q) = %d, want %d", tt.value, got, tt.want)
			}
		})
	}
}

func TestFloat(t *testing.T) {
	t.Setenv("TEST_FLOAT", "0.25")
	if got := Float("TEST_FLOAT", 1.0); got != 0.25 {
		t.Errorf("Float = %v, want 0.25", got)
	}
	t.Setenv("TEST_FLOAT", "nope")
	if got := Float("TEST_FLOAT", 1.5); got != 1.5 {
		t.Errorf("Float invalid = %v, want default", got)
	}
}

func TestBool(t *testing.T) {
	t.Setenv("TEST_BOOL", "true")
	if !Bool("TEST_BOOL", false) {
		t.Error("Bool(true) = false")
	}
	t.Setenv("TEST_BOOL", "junk")
	if Bool("TEST_BOOL", false) {
		t.Error("Bool(junk) should fall back to default")
	}
}

func TestDuration(t *testing.T) {
	tests := []struct {
		name  string
		value string
		def   time.Duration
		want  time.Duration
	}{
		{"go syntax", "90s", time.Second, 90 * time.Second},
		{"bare seconds", "30", time.Second, 30 * time.Second},
		{"invalid", "soon", 5 * time.Second, 5 * time.Second},
		{"empty", "", 2 * time.Minute, 2 * time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_DUR", tt.value)
			if got := Duration("TEST_DUR", tt.def); got != tt.want {
				t.Errorf("Duration(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestList(t *testing.T) {
	t.Setenv("TEST_LIST", "a, b ,,c")
	got := List("TEST_LIST", "")
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("List = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("List[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if l := List("TEST_LIST_MISSING", ""); l != nil {
		t.Errorf("List missing = %v, want nil", l)
	}
}
