package auth

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestJWTMintAndParse(t *testing.T) {
	m := NewJWTManager("issuer", "aud", "secret")
	tok, err := m.Mint(Subject{UserID: "u1", Email: "u1@example.com", Role: "ADMIN"}, "s1", TokenTypeAccess, 5*time.Minute)
	if err != nil {
		t.Fatalf("mint error: %v", err)
	}

	claims, err := m.Parse(tok)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if claims.UserID != "u1" || claims.SessionID != "s1" || claims.Type != TokenTypeAccess || claims.Role != "ADMIN" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestJWTParseRejectsForeignAndExpiredTokens(t *testing.T) {
	m := NewJWTManager("issuer", "aud", "secret")

	other := NewJWTManager("issuer", "aud", "other-secret")
	tok, _ := other.Mint(Subject{UserID: "u1"}, "s1", TokenTypeAccess, time.Minute)
	if _, err := m.Parse(tok); err == nil {
		t.Fatalf("expected signature mismatch to fail")
	}

	wrongAud := NewJWTManager("issuer", "elsewhere", "secret")
	tok, _ = wrongAud.Mint(Subject{UserID: "u1"}, "s1", TokenTypeAccess, time.Minute)
	if _, err := m.Parse(tok); err == nil {
		t.Fatalf("expected audience mismatch to fail")
	}

	tok, _ = m.Mint(Subject{UserID: "u1"}, "s1", TokenTypeAccess, -time.Minute)
	if _, err := m.Parse(tok); err == nil {
		t.Fatalf("expected expired token to fail")
	}
}

func TestSetAndClearAuthCookies(t *testing.T) {
	r := httptest.NewRecorder()
	cfg := CookieConfig{Domain: "example.com", Secure: true}

	SetAuthCookies(r, cfg, "access", "refresh", 15*time.Minute, 24*time.Hour)
	cookies := r.Result().Cookies()
	if len(cookies) != 2 {
		t.Fatalf("expected auth cookies, got %d", len(cookies))
	}
	if cookies[0].Name != AccessCookieName || cookies[0].MaxAge != 900 || !cookies[0].HttpOnly || !cookies[0].Secure {
		t.Fatalf("unexpected access cookie: %+v", cookies[0])
	}
	if cookies[1].Name != RefreshCookieName || cookies[1].Value != "refresh" {
		t.Fatalf("unexpected refresh cookie: %+v", cookies[1])
	}

	r2 := httptest.NewRecorder()
	ClearAuthCookies(r2, cfg)
	for _, c := range r2.Result().Cookies() {
		if c.MaxAge >= 0 || c.Value != "" {
			t.Fatalf("expected cleared cookie, got %+v", c)
		}
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	if got := ClientIP(req); got != "10.0.0.1" {
		t.Fatalf("expected remote host, got %s", got)
	}
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if got := ClientIP(req); got != "203.0.113.7" {
		t.Fatalf("expected forwarded client, got %s", got)
	}
}
