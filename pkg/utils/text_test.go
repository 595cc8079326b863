package utils

import "testing"

func TestTruncate(t *testing.T) {
	if got := Truncate("hello world", 5); got != "hello..." {
		t.Errorf("Truncate=%q", got)
	}
	if got := Truncate("hi", 5); got != "hi" {
		t.Errorf("Truncate short=%q", got)
	}
	if got := Truncate("hello", 0); got != "hello" {
		t.Errorf("Truncate zero maxLen=%q", got)
	}
}

func TestCollapseSpaces(t *testing.T) {
	if got := CollapseSpaces("  a  b\t c \n"); got != "a b c" {
		t.Errorf("CollapseSpaces=%q", got)
	}
	if got := CollapseSpaces("   "); got != "" {
		t.Errorf("CollapseSpaces blank=%q", got)
	}
}
