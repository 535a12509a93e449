// Package remoteworker manages one SSH-reachable worker machine: connecting,
// staging segment files over SFTP, running the worker's share of a job's
// ffmpeg commands, and retrieving the resulting slice.
package remoteworker

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"os"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/five82/distrffmpeg/internal/config"
	"github.com/five82/distrffmpeg/internal/logging"
	"github.com/five82/distrffmpeg/internal/sliceplan"
)

// State is a Worker's connection/availability state.
type State int

const (
	Disconnected State = iota
	Idle
	Busy
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Busy:
		return "busy"
	default:
		return "disconnected"
	}
}

// CommandResult is the outcome of one remote shell invocation.
type CommandResult struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Worker drives one SSH-reachable worker machine through connect, job
// execution, and disconnect. It is not safe for concurrent RunJob calls;
// the dispatcher claims a worker via TryClaim before ever calling RunJob,
// so the Idle->Busy transition and the decision to assign it a job happen
// as a single atomic step.
type Worker struct {
	Name      string
	User      string
	Host      string
	WorkPath  string
	FfmpegBin string
	Params    map[string]string
	Platform  string

	mu            sync.Mutex
	state         State
	client        *ssh.Client
	sftpClient    *sftp.Client
	jobsCompleted int
}

// New constructs a Worker from its config entry. Its Name is set to
// "user@host" and labels the worker in log lines and dispatch events.
func New(wc config.WorkerConfig) *Worker {
	platform := wc.Platform
	if platform == "" {
		platform = "Linux"
	}
	return &Worker{
		Name:      fmt.Sprintf("%s@%s", wc.User, wc.Host),
		User:      wc.User,
		Host:      wc.Host,
		WorkPath:  wc.WorkPath,
		FfmpegBin: wc.FfmpegBin,
		Params:    wc.Params,
		Platform:  platform,
		state:     Disconnected,
	}
}

// State reports the worker's current connection/availability state.
func (w *Worker) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// JobsCompleted returns the number of jobs this worker has finished
// successfully since it was constructed.
func (w *Worker) JobsCompleted() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.jobsCompleted
}

// Connect opens the SSH and SFTP sessions to the worker. A failure to
// connect is not fatal to the run: the worker is left Disconnected and the
// dispatcher simply excludes it from the active pool, matching the
// source's "set connected = False and carry on" behavior.
func (w *Worker) Connect(ctx context.Context, log *logging.Logger) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	clientCfg, err := sshClientConfig(w.User, w.Params)
	if err != nil {
		log.Logf(logging.Warning, "worker %s: building ssh config: %v", w.Name, err)
		w.state = Disconnected
		return nil
	}

	addr := net.JoinHostPort(w.Host, sshPort(w.Params))

	dialer := net.Dialer{Timeout: 15 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		log.Logf(logging.Warning, "worker %s: dial %s: %v", w.Name, addr, err)
		w.state = Disconnected
		return nil
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, clientCfg)
	if err != nil {
		log.Logf(logging.Warning, "worker %s: ssh handshake: %v", w.Name, err)
		_ = conn.Close()
		w.state = Disconnected
		return nil
	}

	client := ssh.NewClient(sshConn, chans, reqs)
	sftpClient, err := sftp.NewClient(client)
	if err != nil {
		log.Logf(logging.Warning, "worker %s: opening sftp session: %v", w.Name, err)
		_ = client.Close()
		w.state = Disconnected
		return nil
	}

	if w.Platform != "Linux" && w.Platform != "Windows" {
		_ = sftpClient.Close()
		_ = client.Close()
		w.state = Disconnected
		return fmt.Errorf("remoteworker: worker %s has invalid platform %q", w.Name, w.Platform)
	}

	w.client = client
	w.sftpClient = sftpClient
	w.state = Idle
	log.Logf(logging.Info, "worker %s connected (%s)", w.Name, w.Platform)
	return nil
}

// Disconnect closes the SFTP and SSH sessions and marks the worker
// Disconnected.
func (w *Worker) Disconnect() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var firstErr error
	if w.sftpClient != nil {
		if err := w.sftpClient.Close(); err != nil {
			firstErr = err
		}
		w.sftpClient = nil
	}
	if w.client != nil {
		if err := w.client.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		w.client = nil
	}
	w.state = Disconnected
	return firstErr
}

// TryClaim marks the worker Busy if and only if it is currently Idle,
// reporting whether the claim succeeded. Callers must hand the worker a
// job via RunJob once claimed; RunJob returns it to Idle on any outcome.
func (w *Worker) TryClaim() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != Idle {
		return false
	}
	w.state = Busy
	return true
}

// execCommand dispatches to the platform-appropriate remote shell
// invocation.
func (w *Worker) execCommand(cmd string, log *logging.Logger) (CommandResult, error) {
	if w.Platform == "Windows" {
		return w.execCommandWindows(cmd, log)
	}
	return w.execCommandLinux(cmd, log)
}

// RunJob runs job's ffmpeg commands on a worker already claimed via
// TryClaim: stages its required segments, executes, and retrieves the
// resulting slice. On any failure the job is handed back untaken so the
// dispatcher can retry it elsewhere, matching the source's
// add_job/_add_job_supervised split.
func (w *Worker) RunJob(ctx context.Context, job *sliceplan.Job, log *logging.Logger) error {
	w.mu.Lock()
	if w.state != Busy {
		w.mu.Unlock()
		return fmt.Errorf("remoteworker: worker %s was not claimed before RunJob (state=%s)", w.Name, w.state)
	}
	w.mu.Unlock()

	job.IncRetries()

	err := w.runJobSupervised(ctx, job, log)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		job.Release()
		w.state = stateAfterJobError(err)
		if w.state == Disconnected {
			log.Logf(logging.Warning, "worker %s: disabling after missing PowerShell", w.Name)
		}
		return err
	}

	job.MarkCompleted()
	w.jobsCompleted++
	w.state = Idle
	return nil
}

// stateAfterJobError decides what state a worker should return to after a
// failed RunJob. Every JobFailed cause returns it to Idle for reassignment
// except ErrWindowsMissingShell: that worker will never grow a shell
// mid-run, so per spec.md §7 it is disabled (Disconnected) instead of
// being handed another job it can only fail the same way.
func stateAfterJobError(err error) State {
	if errors.Is(err, ErrWindowsMissingShell) {
		return Disconnected
	}
	return Idle
}

func (w *Worker) runJobSupervised(ctx context.Context, job *sliceplan.Job, log *logging.Logger) error {
	suffix, err := randomHex(8)
	if err != nil {
		return fmt.Errorf("remoteworker: generating job work path: %w", err)
	}
	jobWorkPath := posixJoin(w.WorkPath, suffix)

	mkdirCmd := fmt.Sprintf(`mkdir -p "%s"`, jobWorkPath)
	if w.Platform == "Windows" {
		mkdirCmd = fmt.Sprintf(`New-Item -ItemType Directory -Force -Path "%s" | Out-Null`, jobWorkPath)
	}
	res, err := w.execCommand(mkdirCmd, log)
	if err != nil {
		return fmt.Errorf("remoteworker: creating job work path: %w", err)
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("remoteworker: mkdir exited %d: %s", res.ExitCode, res.Stderr)
	}

	var manifest strings.Builder
	for _, seg := range job.RequiredSegments {
		local := path.Join(job.SegmentsDir, seg.Filename)
		remote := posixJoin(jobWorkPath, seg.Filename)
		if err := w.putFile(local, remote); err != nil {
			return fmt.Errorf("remoteworker: staging %s: %w", seg.Filename, err)
		}
		fmt.Fprintf(&manifest, "file '%s'\n", seg.Filename)
	}

	segmentsCSVLocal := path.Join(job.SegmentsDir, "segments.csv")
	if err := w.putFile(segmentsCSVLocal, posixJoin(jobWorkPath, "segments.csv")); err != nil {
		return fmt.Errorf("remoteworker: staging segments.csv: %w", err)
	}
	if err := w.putBytes([]byte(manifest.String()), posixJoin(jobWorkPath, "segments.txt")); err != nil {
		return fmt.Errorf("remoteworker: staging segments.txt: %w", err)
	}

	var cmdParts []string
	for _, c := range job.Commands {
		cmdParts = append(cmdParts, w.FfmpegBin+" "+c.GetCommand(true))
	}
	shellCmd := strings.Join(cmdParts, "; ")

	cdCmd := fmt.Sprintf(`cd "%s"; %s`, jobWorkPath, shellCmd)
	if w.Platform == "Windows" {
		cdCmd = fmt.Sprintf(`Set-Location "%s"; %s`, jobWorkPath, shellCmd)
	}
	log.Logf(logging.Shell, "worker %s executing: %s", w.Name, cdCmd)

	res, err = w.execCommand(cdCmd, log)
	if err != nil {
		return fmt.Errorf("remoteworker: running job commands: %w", err)
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("remoteworker: job commands exited %d: %s", res.ExitCode, res.Stderr)
	}

	if err := w.getFile(posixJoin(jobWorkPath, "out.mkv"), job.OutputPath); err != nil {
		return fmt.Errorf("remoteworker: retrieving slice: %w", err)
	}

	cleanupCmd := fmt.Sprintf(`rm -rf "%s"`, jobWorkPath)
	if w.Platform == "Windows" {
		cleanupCmd = fmt.Sprintf(`Remove-Item -Recurse -Force "%s"`, jobWorkPath)
	}
	if _, err := w.execCommand(cleanupCmd, log); err != nil {
		log.Logf(logging.Warning, "worker %s: cleanup of %s failed: %v", w.Name, jobWorkPath, err)
	}

	return nil
}

func (w *Worker) putFile(localPath, remotePath string) error {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return fmt.Errorf("reading local file: %w", err)
	}
	return w.putBytes(data, remotePath)
}

func (w *Worker) putBytes(data []byte, remotePath string) error {
	f, err := w.sftpClient.Create(remotePath)
	if err != nil {
		return fmt.Errorf("creating remote file: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("writing remote file: %w", err)
	}
	return nil
}

func (w *Worker) getFile(remotePath, localPath string) error {
	src, err := w.sftpClient.Open(remotePath)
	if err != nil {
		return fmt.Errorf("opening remote file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("creating local file: %w", err)
	}
	defer dst.Close()

	if _, err := src.WriteTo(dst); err != nil {
		return fmt.Errorf("copying remote file: %w", err)
	}
	return nil
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func posixJoin(elems ...string) string {
	return path.Join(elems...)
}

func sshPort(params map[string]string) string {
	if p, ok := params["port"]; ok && p != "" {
		if _, err := strconv.Atoi(p); err == nil {
			return p
		}
	}
	return "22"
}
