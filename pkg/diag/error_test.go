package diag

import (
	"testing"
)

func TestError(t *testing.T) {
	setCulpritMarkers(t, "<", ">")
	setMessageMarkers(t, "{", "}")

	err := &Error{
		Type:    "parse error",
		Message: "E488: Trailing characters",
		Context: *NewContext("[test]", "echo a b", Ranging{7, 8}),
	}

	wantErrorString := "[test]:1:8: E488: Trailing characters"
	if got := err.Error(); got != wantErrorString {
		t.Errorf("Error() -> %q, want %q", got, wantErrorString)
	}

	wantRanging := Ranging{From: 7, To: 8}
	if got := err.Range(); got != wantRanging {
		t.Errorf("Range() -> %v, want %v", got, wantRanging)
	}

	wantShow := "Parse error: {E488: Trailing characters}\n  [test]:1:8: echo a <b>"
	if got := err.Show(""); got != wantShow {
		t.Errorf("Show() -> %q, want %q", got, wantShow)
	}
}

func TestError_WithoutName(t *testing.T) {
	err := &Error{Message: "E471: Argument required", Context: Context{Source: "x", Ranging: Ranging{1, 1}}}
	if got := err.Error(); got != "E471: Argument required" {
		t.Errorf("Error() -> %q", got)
	}
}
