package session

import (
	"errors"
	"testing"
	"time"
)

func TestTokenCodec_RoundTrip(t *testing.T) {
	codec := NewTokenCodec([]byte("test-key"), "frontdoor", time.Hour)

	token, err := codec.Issue(Principal{Owner: "built-in", Name: "alice"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	p, err := codec.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.Owner != "built-in" || p.Name != "alice" {
		t.Fatalf("principal = %+v", p)
	}
}

func TestTokenCodec_RejectsWrongKey(t *testing.T) {
	issuer := NewTokenCodec([]byte("key-a"), "frontdoor", time.Hour)
	parser := NewTokenCodec([]byte("key-b"), "frontdoor", time.Hour)

	token, err := issuer.Issue(Principal{Owner: "built-in", Name: "alice"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := parser.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenCodec_RejectsExpired(t *testing.T) {
	codec := NewTokenCodec([]byte("test-key"), "frontdoor", -time.Minute)

	token, err := codec.Issue(Principal{Owner: "built-in", Name: "alice"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := codec.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestTokenCodec_RejectsGarbage(t *testing.T) {
	codec := NewTokenCodec([]byte("test-key"), "frontdoor", time.Hour)
	if _, err := codec.Parse("not.a.jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
