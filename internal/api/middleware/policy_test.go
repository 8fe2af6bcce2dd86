package middleware

import (
	"testing"
)

func TestMatchPath(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"/api/auth/*", "/api/auth/login", true},
		{"/api/auth/*", "/api/auth", true},
		{"/api/auth/*", "/api/authx", false},
		{"/uploads/*", "/uploads/challenges/1-sunrise/x.jpg", true},
		{"/*", "/anything/at/all", true},
		{"/api/challenges", "/api/challenges", true},
		{"/api/challenges", "/api/challenges/days", false},
		{"/api/challenges/*/submit", "/api/challenges/c1/submit", true},
		{"/api/challenges/*/submit", "/api/challenges/c1", false},
		{"/api/challenges/*/submit", "/api/challenges/c1/submit/extra", false},
		{"/api/test/health", "/api/test/me", false},
	}
	for _, tt := range tests {
		if got := matchPath(tt.pattern, tt.path); got != tt.want {
			t.Errorf("matchPath(%q, %q) = %v, want %v", tt.pattern, tt.path, got, tt.want)
		}
	}
}

func TestPolicyFirstMatchWins(t *testing.T) {
	// GET /api/challenges is public, but POST to the same path is ADMIN gated
	// and must not fall through to the public rule.
	var getRule, postRule *rule
	for i := range rules {
		if rules[i].pattern == "/api/challenges" {
			switch rules[i].method {
			case "GET":
				getRule = &rules[i]
			case "POST":
				postRule = &rules[i]
			}
		}
	}
	if getRule == nil || postRule == nil {
		t.Fatal("expected both GET and POST rules for /api/challenges")
	}
	if getRule.req != allowAnyone {
		t.Fatal("GET /api/challenges must allow anonymous")
	}
	if postRule.req != requireRole {
		t.Fatal("POST /api/challenges must be role gated")
	}
}
