package utils_test

import (
	"testing"

	"github.com/Goofygiraffe06/signup/internal/utils"
)

func TestHashEmail(t *testing.T) {
	a := utils.HashEmail("User@Example.com ")
	b := utils.HashEmail("user@example.com")
	if a != b {
		t.Errorf("expected normalized hashes to match: %s != %s", a, b)
	}
	if len(a) != 12 {
		t.Errorf("expected 12 hex chars, got %d", len(a))
	}
	if utils.HashEmail("other@example.com") == a {
		t.Error("different emails hashed to the same prefix")
	}
}

func TestHashToken(t *testing.T) {
	if got := utils.HashToken("abc"); len(got) != 8 {
		t.Errorf("expected 8 hex chars, got %q", got)
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := utils.NormalizeEmail("  Mixed@Case.ORG\t"); got != "mixed@case.org" {
		t.Errorf("NormalizeEmail = %q", got)
	}
}
