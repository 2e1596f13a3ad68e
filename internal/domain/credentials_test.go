package domain

import (
	"regexp"
	"strings"
	"testing"
)

var (
	demoUsernamePattern = regexp.MustCompile(`^demo_[a-z]{4}[0-9]{2}$`)
	demoPasswordPattern = regexp.MustCompile(`^[a-z0-9]{8}$`)
)

func TestGenerateDemoUsername_Pattern(t *testing.T) {
	for _, name := range []string{"Johannes", "Amy", "李", "", "X Æ A-12"} {
		u := GenerateDemoUsername(name)
		if !demoUsernamePattern.MatchString(u) {
			t.Fatalf("username %q from first name %q does not match pattern", u, name)
		}
	}
}

func TestGenerateDemoUsername_UsesFirstName(t *testing.T) {
	u := GenerateDemoUsername("Johannes")
	if !strings.HasPrefix(u, "demo_joha") {
		t.Fatalf("expected letters derived from first name, got %q", u)
	}
}

func TestGenerateDemoPassword_Pattern(t *testing.T) {
	for i := 0; i < 50; i++ {
		p := GenerateDemoPassword()
		if !demoPasswordPattern.MatchString(p) {
			t.Fatalf("password %q does not match pattern", p)
		}
	}
}

func TestAccountTypeDefaultStatus(t *testing.T) {
	if got := AccountTypeLD.DefaultStatus(); got != TrialPending {
		t.Fatalf("ld account should start pending, got %q", got)
	}
	if got := AccountTypeDemo.DefaultStatus(); got != TrialDemoActive {
		t.Fatalf("demo account should start demo_active, got %q", got)
	}
}
