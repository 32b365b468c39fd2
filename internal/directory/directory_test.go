package directory

import (
	"context"
	"testing"
)

func TestStaticResolve(t *testing.T) {
	dir := Default()
	tests := []struct {
		name     string
		tag      string
		wantName string
		wantOK   bool
	}{
		{name: "known tag", tag: "@sarah_j", wantName: "Sarah Johnson", wantOK: true},
		{name: "mixed case tag", tag: "@Mike_C", wantName: "Mike Chen", wantOK: true},
		{name: "unknown tag", tag: "@nobody", wantOK: false},
		{name: "empty tag", tag: "", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, ok, err := dir.Resolve(context.Background(), tt.tag)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok != tt.wantOK || name != tt.wantName {
				t.Errorf("expected (%q, %v), got (%q, %v)", tt.wantName, tt.wantOK, name, ok)
			}
		})
	}
}

func TestStaticResolveIsDeterministic(t *testing.T) {
	dir := NewStatic(map[string]string{"@A_Tag": "Someone"})
	for i := 0; i < 3; i++ {
		name, ok, err := dir.Resolve(context.Background(), "@a_tag")
		if err != nil || !ok || name != "Someone" {
			t.Fatalf("pass %d: expected stable hit, got (%q, %v, %v)", i, name, ok, err)
		}
	}
}

func TestStaticResolveHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := Default().Resolve(ctx, "@sarah_j"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
