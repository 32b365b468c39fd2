package pin

import (
	"context"
	"testing"

	"github.com/hellouniverse/transfer-service/internal/utils"
)

func TestBcryptVerifier(t *testing.T) {
	hash, err := utils.HashPin("123456")
	if err != nil {
		t.Fatalf("failed to hash pin: %v", err)
	}
	v := NewBcryptVerifier(hash)

	tests := []struct {
		name   string
		secret string
		want   bool
	}{
		{name: "correct secret accepted", secret: "123456", want: true},
		{name: "wrong secret rejected", secret: "000000", want: false},
		{name: "empty secret rejected", secret: "", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accepted, err := v.Verify(context.Background(), tt.secret)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if accepted != tt.want {
				t.Errorf("expected accepted=%v, got %v", tt.want, accepted)
			}
		})
	}
}

func TestBcryptVerifierInvalidHash(t *testing.T) {
	v := NewBcryptVerifier("not-a-bcrypt-hash")
	accepted, err := v.Verify(context.Background(), "123456")
	if err == nil {
		t.Fatal("expected error for malformed hash")
	}
	if accepted {
		t.Error("malformed hash must never accept")
	}
}

func TestBcryptVerifierHonoursContext(t *testing.T) {
	hash, _ := utils.HashPin("123456")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewBcryptVerifier(hash).Verify(ctx, "123456"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
