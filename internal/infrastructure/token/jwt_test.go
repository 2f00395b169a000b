package token

import (
	"errors"
	"testing"
	"time"
)

func TestSignParse_RoundTrip(t *testing.T) {
	iss := NewIssuer("s3cret", 0)
	raw, err := iss.Sign(RoleFarmer, "f-1", "ravi@farm.test")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	c, err := iss.Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Role != RoleFarmer || c.ID != "f-1" || c.Email != "ravi@farm.test" {
		t.Fatalf("unexpected claims: %+v", c)
	}
	if got := c.ExpiresAt.Sub(c.IssuedAt.Time); got != DefaultTTL {
		t.Fatalf("ttl = %s, want %s", got, DefaultTTL)
	}
}

func TestParse_Rejects(t *testing.T) {
	iss := NewIssuer("s3cret", time.Hour)
	good, _ := iss.Sign(RoleLender, "l-1", "bank@test")

	expiredIss := NewIssuer("s3cret", time.Hour)
	expiredIss.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _ := expiredIss.Sign(RoleLender, "l-1", "bank@test")

	cases := []struct {
		name string
		iss  *Issuer
		raw  string
	}{
		{"wrong secret", NewIssuer("other", time.Hour), good},
		{"expired", iss, expired},
		{"garbage", iss, "not.a.jwt"},
		{"empty", iss, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.iss.Parse(tc.raw); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("want ErrInvalidToken, got %v", err)
			}
		})
	}
}
