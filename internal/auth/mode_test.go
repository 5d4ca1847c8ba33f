package auth

import (
	"errors"
	"testing"
)

func TestResolveMode_LoginForOwnOrigin(t *testing.T) {
	cases := []string{
		"http://localhost:8000/callback",
		"http://localhost:8000/",
		"http://localhost:8000/some/deep/path?x=1",
	}
	for _, uri := range cases {
		mode, err := ResolveMode("http://localhost:8000", uri)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", uri, err)
		}
		if mode != ModeLogin {
			t.Fatalf("expected login mode for %q, got %q", uri, mode)
		}
	}
}

func TestResolveMode_CodeForForeignOrigin(t *testing.T) {
	cases := []string{
		"http://localhost:9000/login",
		"https://localhost:8000/callback", // scheme differs
		"http://localhost:8001/callback",  // port differs
		"https://app.example.com/oauth/done",
	}
	for _, uri := range cases {
		mode, err := ResolveMode("http://localhost:8000", uri)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", uri, err)
		}
		if mode != ModeCode {
			t.Fatalf("expected code mode for %q, got %q", uri, mode)
		}
	}
}

func TestResolveMode_MalformedIsFatal(t *testing.T) {
	cases := []string{
		"",
		"not a url",
		"/relative/only",
		"http://",
	}
	for _, uri := range cases {
		_, err := ResolveMode("http://localhost:8000", uri)
		if !errors.Is(err, ErrMalformedRedirectURI) {
			t.Fatalf("expected ErrMalformedRedirectURI for %q, got %v", uri, err)
		}
	}
}
