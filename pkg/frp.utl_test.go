/* Field Research Portal (FRP) is a component of the TerraLab Research Data Platform.
License:

	[PROPER LEGALESE HERE...]

	INTERIM LICENSE DESCRIPTION:
	In spirit, this license:
	1. Allows <Third Party> to use, modify, and / or distribute this software in perpetuity so long as <Third Party> understands:
		a. The software is provided as is without guarantee of additional support from TerraLab in any form.
		b. The software is provided as is without guarantee of exclusivity.

	2. Prohibits <Third Party> from taking any action which might interfere with TerraLab's right to use, modify and / or distribute this software in perpetuity.
*/

package pkg

import (
	"testing"
	"unicode/utf8"
)

func TestISO8601ToUnixMilli(t *testing.T) {

	cases := []struct {
		in   string
		want int64
	}{
		{"2026-08-20T10:00:00Z", 1787220000000},
		{"2026-08-20T10:00:00.500Z", 1787220000500},
		{"2026-08-20T10:00:00", 1787220000000},
		{"2026-08-20 10:00:00", 1787220000000},
		{"2026-08-20T06:00:00-04:00", 1787220000000},
	}
	for _, tc := range cases {
		got, err := ISO8601ToUnixMilli(tc.in)
		if err != nil {
			t.Errorf("%q should parse: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%q: expected %d, got %d", tc.in, tc.want, got)
		}
	}

	for _, in := range []string{"", "20/08/2026 10:00", "yesterday", "1787565600"} {
		if _, err := ISO8601ToUnixMilli(in); err == nil {
			t.Errorf("%q should not parse", in)
		}
	}
}

func TestValidateStringLength(t *testing.T) {
	if out := ValidateStringLength("abcdef", 4); out != "abcd" {
		t.Errorf("expected abcd, got %q", out)
	}
	if out := ValidateStringLength("abc", 4); out != "abc" {
		t.Errorf("expected abc, got %q", out)
	}

	/* THE CUT BACKS UP TO A RUNE BOUNDARY; NEVER INVALID UTF-8 */
	if out := ValidateStringLength("héllo", 2); out != "h" {
		t.Errorf("expected h, got %q", out)
	}
	out := ValidateStringLength("température élevée", 12)
	if !utf8.ValidString(out) {
		t.Errorf("truncated string is not valid UTF-8: %q", out)
	}
}

func TestUserRoleCascade(t *testing.T) {

	if !UserRole_Admin(ROLE_SUPER) || !UserRole_Operator(ROLE_SUPER) || !UserRole_Viewer(ROLE_SUPER) {
		t.Error("super implies every role below it")
	}
	if !UserRole_Operator(ROLE_ADMIN) || !UserRole_Viewer(ROLE_OPERATOR) {
		t.Error("roles cascade downward")
	}
	if UserRole_Admin(ROLE_OPERATOR) || UserRole_Operator(ROLE_VIEWER) {
		t.Error("roles must not cascade upward")
	}
	if UserRole_Viewer(nil) || UserRole_Viewer("") {
		t.Error("missing role grants nothing")
	}
}

func TestValidateStruct(t *testing.T) {

	in := LoginUserInput{Email: "not-an-email", Password: ""}
	errs := ValidateStruct(in)
	if len(errs) != 2 {
		t.Fatalf("expected 2 validation errors, got %d", len(errs))
	}

	in = LoginUserInput{Email: "ada@example.org", Password: "secret"}
	if errs = ValidateStruct(in); errs != nil {
		t.Errorf("expected no validation errors, got %+v", errs)
	}
}
