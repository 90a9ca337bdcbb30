package authz

import "testing"

func TestResolveIdentity_EmptyCredentialIsAnonymous(t *testing.T) {
	r := NewRegistry(nil, false)
	id, err := r.ResolveIdentity("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.Name != Anonymous.Name {
		t.Fatalf("expected Anonymous, got %+v", id)
	}
}

func TestResolveIdentity_UnknownCredentialIsDenied(t *testing.T) {
	r := NewRegistry(nil, false)
	id, err := r.ResolveIdentity("bogus")
	if err != ErrDenied {
		t.Fatalf("expected ErrDenied, got %v", err)
	}
	if !id.denied {
		t.Fatalf("expected the Denied sentinel, got %+v", id)
	}
}

func TestResolveIdentity_KnownCredential(t *testing.T) {
	r := NewRegistry([]Identity{{Key: "k1", Name: "alice"}}, false)
	id, err := r.ResolveIdentity("k1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.Name != "alice" {
		t.Fatalf("expected alice, got %+v", id)
	}
}

func TestResolveIdentity_RequireAuthenticationDeniesMissingCredential(t *testing.T) {
	r := NewRegistry(nil, true)
	id, err := r.ResolveIdentity("")
	if err != ErrAuthenticationRequired {
		t.Fatalf("expected ErrAuthenticationRequired, got %v", err)
	}
	if !id.denied {
		t.Fatalf("expected the Denied sentinel, got %+v", id)
	}
}

func TestResolveIdentity_RequireAuthenticationStillHonorsKnownCredential(t *testing.T) {
	r := NewRegistry([]Identity{{Key: "k1", Name: "alice"}}, true)
	id, err := r.ResolveIdentity("k1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.Name != "alice" {
		t.Fatalf("expected alice, got %+v", id)
	}
}

func TestAuthorizeToolCall_UnrestrictedIdentityAllowsEverything(t *testing.T) {
	r := NewRegistry(nil, false)
	if allowed, reason := r.AuthorizeToolCall(Anonymous, "datetime", ""); !allowed {
		t.Fatalf("expected default-allow for an identity with no restrictions, got reason %q", reason)
	}
}

func TestAuthorizeToolCall_DeniedSentinelAlwaysDenied(t *testing.T) {
	r := NewRegistry(nil, false)
	allowed, reason := r.AuthorizeToolCall(Denied, "datetime", "")
	if allowed {
		t.Fatal("expected the Denied sentinel to be denied regardless of tool")
	}
	if reason != "Authentication required" {
		t.Fatalf("expected reason %q, got %q", "Authentication required", reason)
	}
}

func TestAuthorizeToolCall_ToolAllowlistEnforced(t *testing.T) {
	r := NewRegistry(nil, false)
	id := Identity{Name: "restricted", AllowedTools: []string{"datetime"}}
	if allowed, reason := r.AuthorizeToolCall(id, "DateTime", ""); !allowed {
		t.Fatalf("expected case-insensitive match against the tool allowlist, reason %q", reason)
	}
	if allowed, _ := r.AuthorizeToolCall(id, "system_info", ""); allowed {
		t.Fatal("expected denial for a tool outside the allowlist")
	}
}

func TestAuthorizeToolCall_ToolWildcardAllowsEverything(t *testing.T) {
	r := NewRegistry(nil, false)
	id := Identity{Name: "all-tools", AllowedTools: []string{"*"}}
	if allowed, reason := r.AuthorizeToolCall(id, "anything_at_all", ""); !allowed {
		t.Fatalf("expected \"*\" to allow every tool, reason %q", reason)
	}
}

func TestAuthorizeToolCall_ActionAllowlistEnforced(t *testing.T) {
	r := NewRegistry(nil, false)
	id := Identity{
		Name:           "writer",
		AllowedActions: map[string][]string{"text_transform": {"uppercase"}},
	}
	if allowed, reason := r.AuthorizeToolCall(id, "text_transform", "uppercase"); !allowed {
		t.Fatalf("expected allowed action to pass, reason %q", reason)
	}
	if allowed, _ := r.AuthorizeToolCall(id, "text_transform", "lowercase"); allowed {
		t.Fatal("expected disallowed action to be denied")
	}
	// A tool with no entry in AllowedActions is unrestricted on action.
	if allowed, reason := r.AuthorizeToolCall(id, "datetime", "whatever"); !allowed {
		t.Fatalf("expected tool absent from AllowedActions to be unrestricted, reason %q", reason)
	}
}

func TestAuthorizeToolCall_ActionWildcardAllowsEverything(t *testing.T) {
	r := NewRegistry(nil, false)
	id := Identity{
		Name:           "writer",
		AllowedActions: map[string][]string{"text_transform": {"*"}},
	}
	if allowed, reason := r.AuthorizeToolCall(id, "text_transform", "anything"); !allowed {
		t.Fatalf("expected \"*\" to allow every action, reason %q", reason)
	}
}

func TestNull_AlwaysAllows(t *testing.T) {
	var a Authorizer = Null{}
	id, err := a.ResolveIdentity("anything")
	if err != nil || id.Name != Anonymous.Name {
		t.Fatalf("Null.ResolveIdentity = %+v, %v; want Anonymous, nil", id, err)
	}
	if allowed, reason := a.AuthorizeToolCall(id, "tool", "action"); !allowed {
		t.Fatalf("Null.AuthorizeToolCall must always return true, got reason %q", reason)
	}
}
