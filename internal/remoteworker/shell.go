package remoteworker

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/five82/distrffmpeg/internal/logging"
)

// sshClientConfig builds an ssh.ClientConfig from a worker's params map.
// Recognized keys: "key_path" (private key file, preferred), "password"
// (fallback), "known_hosts" (host key verification file). A worker with
// neither key_path nor password configured cannot authenticate.
func sshClientConfig(user string, params map[string]string) (*ssh.ClientConfig, error) {
	var auths []ssh.AuthMethod

	if keyPath, ok := params["key_path"]; ok && keyPath != "" {
		key, err := os.ReadFile(keyPath)
		if err != nil {
			return nil, fmt.Errorf("reading private key %s: %w", keyPath, err)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("parsing private key %s: %w", keyPath, err)
		}
		auths = append(auths, ssh.PublicKeys(signer))
	}
	if password, ok := params["password"]; ok && password != "" {
		auths = append(auths, ssh.Password(password))
	}
	if len(auths) == 0 {
		return nil, fmt.Errorf("no key_path or password configured for user %s", user)
	}

	hostKeyCallback, err := hostKeyCallback(params)
	if err != nil {
		return nil, err
	}

	return &ssh.ClientConfig{
		User:            user,
		Auth:            auths,
		HostKeyCallback: hostKeyCallback,
		Timeout:         15 * time.Second,
	}, nil
}

// hostKeyCallback returns a strict known_hosts-backed callback when a
// known_hosts path is configured, falling back to accepting whatever key
// the worker presents. Workers in this system are operator-provisioned
// machines on a private fleet, not arbitrary internet hosts, so the
// fallback is a deliberate convenience rather than an oversight; operators
// who want strict verification set "known_hosts" in the worker's params.
func hostKeyCallback(params map[string]string) (ssh.HostKeyCallback, error) {
	if kh, ok := params["known_hosts"]; ok && kh != "" {
		cb, err := knownhosts.New(kh)
		if err != nil {
			return nil, fmt.Errorf("loading known_hosts %s: %w", kh, err)
		}
		return cb, nil
	}
	return ssh.InsecureIgnoreHostKey(), nil
}

// execCommandLinux runs cmd over a fresh SSH session with a pty, the same
// shape the source uses for its Linux worker path.
func (w *Worker) execCommandLinux(cmd string, log *logging.Logger) (CommandResult, error) {
	log.Logf(logging.Shell, "worker %s running remote Linux command: %s", w.Name, cmd)

	session, err := w.client.NewSession()
	if err != nil {
		return CommandResult{}, fmt.Errorf("opening ssh session: %w", err)
	}
	defer session.Close()

	if err := session.RequestPty("xterm", 80, 40, ssh.TerminalModes{}); err != nil {
		return CommandResult{}, fmt.Errorf("requesting pty: %w", err)
	}

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	exitCode := 0
	if err := session.Run(cmd); err != nil {
		if exitErr, ok := err.(*ssh.ExitError); ok {
			exitCode = exitErr.ExitStatus()
		} else {
			return CommandResult{}, fmt.Errorf("running command: %w", err)
		}
	}

	return CommandResult{Stdout: stdout.Bytes(), Stderr: stderr.Bytes(), ExitCode: exitCode}, nil
}

// execCommandWindows probes for PowerShell, then pipes cmd to it over
// stdin. PowerShell treats a string starting with '"' as a literal string
// rather than a command, so the piped line is prefixed with "& " to force
// execution, exactly as the source does.
func (w *Worker) execCommandWindows(cmd string, log *logging.Logger) (CommandResult, error) {
	log.Logf(logging.Shell, "worker %s running remote Windows command: %s", w.Name, cmd)

	probe, err := w.client.NewSession()
	if err != nil {
		return CommandResult{}, fmt.Errorf("opening ssh session: %w", err)
	}
	probeErr := probe.Run(`powershell -command "$PSVersionTable.PSVersion.Major"`)
	probe.Close()
	if probeErr != nil {
		if _, ok := probeErr.(*ssh.ExitError); !ok {
			return CommandResult{}, fmt.Errorf("probing for powershell: %w", probeErr)
		}
		return CommandResult{}, fmt.Errorf("%w: worker %s", ErrWindowsMissingShell, w.Name)
	}

	session, err := w.client.NewSession()
	if err != nil {
		return CommandResult{}, fmt.Errorf("opening ssh session: %w", err)
	}
	defer session.Close()

	stdin, err := session.StdinPipe()
	if err != nil {
		return CommandResult{}, fmt.Errorf("opening stdin pipe: %w", err)
	}

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	if err := session.Start("powershell -noprofile -noninteractive -"); err != nil {
		return CommandResult{}, fmt.Errorf("starting powershell: %w", err)
	}

	if _, err := stdin.Write([]byte("& " + cmd)); err != nil {
		return CommandResult{}, fmt.Errorf("writing command to powershell stdin: %w", err)
	}
	_ = stdin.Close()

	exitCode := 0
	if err := session.Wait(); err != nil {
		if exitErr, ok := err.(*ssh.ExitError); ok {
			exitCode = exitErr.ExitStatus()
		} else {
			return CommandResult{}, fmt.Errorf("waiting for powershell: %w", err)
		}
	}

	return CommandResult{Stdout: stdout.Bytes(), Stderr: stderr.Bytes(), ExitCode: exitCode}, nil
}
