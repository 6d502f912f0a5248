package client

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ppiankov/skillguard/internal/model"
	"github.com/ppiankov/skillguard/internal/server"
	"github.com/ppiankov/skillguard/internal/skillref"
)

// startTestServer creates a server and returns its address.
func startTestServer(t *testing.T, policyPath string) string {
	t.Helper()

	srv, err := server.New(server.Config{PolicyPath: policyPath}, nil)
	if err != nil {
		t.Fatalf("server.New: %v", err)
	}
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go srv.ServeOn(lis)

	t.Cleanup(func() {
		srv.GracefulStop()
		srv.Close()
	})
	return lis.Addr().String()
}

func TestClientValidate(t *testing.T) {
	addr := startTestServer(t, "")

	c, err := New(addr)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	v, err := c.Validate(ctx, "pr-review-toolkit:made-up-name")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if v.Decision != model.AllowWithWarning {
		t.Errorf("expected warning, got %s", v.Decision)
	}

	v, err = c.Validate(ctx, "missing-delimiter")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if v.Decision != model.Deny || v.ExitCode() != 2 {
		t.Errorf("expected deny/2, got %s/%d", v.Decision, v.ExitCode())
	}
}

func TestFallbackUsesRemotePolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skillguard.yaml")
	if err := os.WriteFile(path, []byte("restricted_namespace: team-tools\nknown_members: [deploy]\n"), 0644); err != nil {
		t.Fatal(err)
	}
	addr := startTestServer(t, path)

	c, err := New(addr)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	f := &Fallback{Remote: c, Local: skillref.NewValidator(nil), Timeout: 5 * time.Second}
	if v := f.Validate("team-tools:rollback"); v.Decision != model.AllowWithWarning {
		t.Errorf("expected remote policy warning, got %s", v.Decision)
	}
}

func TestFallbackUnreachableServerUsesLocal(t *testing.T) {
	// Reserve a port, then close it so nothing is listening
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := lis.Addr().String()
	lis.Close()

	c, err := New(addr)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	f := &Fallback{Remote: c, Local: skillref.NewValidator(nil), Timeout: 500 * time.Millisecond}
	if v := f.Validate("code-simplifier:code-simplifier"); v.Decision != model.Allow {
		t.Errorf("expected local allow, got %s", v.Decision)
	}
	if v := f.Validate("code-simplifier"); v.Decision != model.Deny {
		t.Errorf("expected local deny, got %s", v.Decision)
	}
}

type failingRemote struct{}

func (failingRemote) Validate(context.Context, string) (model.Verdict, error) {
	return model.Verdict{}, errors.New("boom")
}

func TestFallbackOnRemoteError(t *testing.T) {
	f := &Fallback{Remote: failingRemote{}, Local: skillref.NewValidator(nil)}
	if v := f.Validate("pr-review-toolkit:made-up-name"); v.Decision != model.AllowWithWarning {
		t.Errorf("expected local warning, got %s", v.Decision)
	}
}
