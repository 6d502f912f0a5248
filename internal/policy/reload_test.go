package policy

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writePolicy(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write policy: %v", err)
	}
}

func TestHolderReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skillguard.yaml")
	writePolicy(t, path, "known_members: [code-reviewer]\n")

	h, err := NewHolder(path)
	if err != nil {
		t.Fatalf("NewHolder: %v", err)
	}
	cfg, firstHash := h.Current()
	if cfg.IsKnownMember("deploy") {
		t.Fatal("deploy should not be known yet")
	}

	writePolicy(t, path, "known_members: [code-reviewer, deploy]\n")
	if err := h.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	cfg, secondHash := h.Current()
	if !cfg.IsKnownMember("deploy") {
		t.Error("expected deploy after reload")
	}
	if firstHash == secondHash {
		t.Error("expected hash to change after reload")
	}
}

func TestHolderReloadKeepsPreviousOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skillguard.yaml")
	writePolicy(t, path, "known_members: [deploy]\n")

	h, err := NewHolder(path)
	if err != nil {
		t.Fatalf("NewHolder: %v", err)
	}

	writePolicy(t, path, "known_members: [broken\n")
	if err := h.Reload(); err == nil {
		t.Fatal("expected reload error for invalid YAML")
	}
	cfg, _ := h.Current()
	if !cfg.IsKnownMember("deploy") {
		t.Error("expected previous policy to remain active")
	}
}

func TestNewReloaderRequiresFile(t *testing.T) {
	h, err := NewHolder("")
	if err != nil {
		t.Fatalf("NewHolder: %v", err)
	}
	if _, err := NewReloader(h, nil); err == nil {
		t.Fatal("expected error for empty policy path")
	}
}

func TestReloaderPicksUpWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skillguard.yaml")
	writePolicy(t, path, "known_members: [code-reviewer]\n")

	h, err := NewHolder(path)
	if err != nil {
		t.Fatalf("NewHolder: %v", err)
	}
	r, err := NewReloader(h, nil)
	if err != nil {
		t.Fatalf("NewReloader: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = r.Run(ctx)
		close(done)
	}()

	writePolicy(t, path, "known_members: [code-reviewer, deploy]\n")

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		cfg, _ := h.Current()
		if cfg.IsKnownMember("deploy") {
			cancel()
			<-done
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	cancel()
	<-done
	t.Fatal("policy was not reloaded within 5s")
}
