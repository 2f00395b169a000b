package cache

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/sirupsen/logrus"
)

func quietLog() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestNewRedis_Success(t *testing.T) {
	s := miniredis.RunT(t)

	// non-zero DB to verify it's set
	c, err := NewRedis(s.Addr(), 2, quietLog())
	if err != nil {
		t.Fatalf("NewRedis returned error: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	if got := c.Options().DB; got != 2 {
		t.Fatalf("client DB = %d, want 2", got)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := c.Set(ctx, "idemp:k", "v", time.Minute).Err(); err != nil {
		t.Fatalf("SET err: %v", err)
	}
	got, err := s.DB(2).Get("idemp:k")
	if err != nil || got != "v" {
		t.Fatalf("value in db 2 = %q err=%v", got, err)
	}
}

func TestNewRedis_Failure(t *testing.T) {
	s := miniredis.RunT(t)
	addr := s.Addr()
	s.Close()

	_, err := NewRedis(addr, 0, quietLog())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), addr) {
		t.Fatalf("error should name the address: %v", err)
	}
}
