package remoteworker

import (
	"errors"
	"fmt"
	"testing"

	"github.com/five82/distrffmpeg/internal/config"
)

func TestNewDefaultsPlatformToLinux(t *testing.T) {
	w := New(config.WorkerConfig{User: "u", Host: "h", WorkPath: "/work"})
	if w.Platform != "Linux" {
		t.Fatalf("expected default platform Linux, got %q", w.Platform)
	}
	if w.State() != Disconnected {
		t.Fatalf("expected new worker to start Disconnected, got %s", w.State())
	}
	if w.Name != "u@h" {
		t.Fatalf("expected name u@h, got %q", w.Name)
	}
}

func TestRunJobRejectsNonIdleWorker(t *testing.T) {
	w := New(config.WorkerConfig{User: "u", Host: "h", WorkPath: "/work"})
	if err := w.RunJob(nil, nil, nil); err == nil {
		t.Fatal("expected error running a job on a disconnected worker")
	}
}

func TestSSHClientConfigRequiresAuth(t *testing.T) {
	if _, err := sshClientConfig("u", map[string]string{}); err == nil {
		t.Fatal("expected error when neither key_path nor password is configured")
	}
}

func TestSSHClientConfigAcceptsPassword(t *testing.T) {
	cfg, err := sshClientConfig("u", map[string]string{"password": "secret"})
	if err != nil {
		t.Fatalf("sshClientConfig: %v", err)
	}
	if len(cfg.Auth) != 1 {
		t.Fatalf("expected one auth method, got %d", len(cfg.Auth))
	}
}

func TestSSHPortDefaultsTo22(t *testing.T) {
	if got := sshPort(nil); got != "22" {
		t.Fatalf("expected default port 22, got %q", got)
	}
	if got := sshPort(map[string]string{"port": "2222"}); got != "2222" {
		t.Fatalf("expected configured port 2222, got %q", got)
	}
	if got := sshPort(map[string]string{"port": "not-a-port"}); got != "22" {
		t.Fatalf("expected fallback to 22 for malformed port, got %q", got)
	}
}

func TestStateAfterJobErrorDisablesOnMissingShell(t *testing.T) {
	if got := stateAfterJobError(ErrWindowsMissingShell); got != Disconnected {
		t.Fatalf("expected Disconnected after ErrWindowsMissingShell, got %s", got)
	}
	if got := stateAfterJobError(fmt.Errorf("wrapped: %w", ErrWindowsMissingShell)); got != Disconnected {
		t.Fatalf("expected Disconnected after wrapped ErrWindowsMissingShell, got %s", got)
	}
}

func TestStateAfterJobErrorReturnsIdleForOtherFailures(t *testing.T) {
	if got := stateAfterJobError(errors.New("sftp: connection reset")); got != Idle {
		t.Fatalf("expected Idle after a generic job failure, got %s", got)
	}
}

func TestHostKeyCallbackFallsBackWithoutKnownHosts(t *testing.T) {
	cb, err := hostKeyCallback(map[string]string{})
	if err != nil {
		t.Fatalf("hostKeyCallback: %v", err)
	}
	if cb == nil {
		t.Fatal("expected a non-nil fallback callback")
	}
}
