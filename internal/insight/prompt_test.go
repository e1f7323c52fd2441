package insight

import (
	"strings"
	"testing"

	"booknet/pkg/domain"
)

func TestSystemPromptByRole(t *testing.T) {
	admin := SystemPrompt(domain.RoleAdmin)
	user := SystemPrompt(domain.RoleUser)
	if admin == user {
		t.Fatalf("admin and user prompts must differ")
	}
	if !strings.Contains(user, "Never reveal") {
		t.Fatalf("user prompt missing disclosure restriction: %q", user)
	}
	// Every role other than admin gets the restricted prompt.
	if got := SystemPrompt(domain.UserRole("moderator")); got != user {
		t.Fatalf("unrecognized role prompt = %q, want user prompt", got)
	}
}
