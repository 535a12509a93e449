package reporter

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestLogReporterWritesExpectedLines(t *testing.T) {
	var buf bytes.Buffer
	r := NewLogReporter(&buf)

	r.RunStarted(RunStartInfo{InputFile: "in.mp4", OutputFile: "out.mkv", TotalJobs: 3})
	r.JobFailed(JobFailure{Worker: "u@h", JobIndex: 1, Err: errors.New("boom"), Retries: 1, MaxRetries: 3})
	r.Warning("disk getting full")

	out := buf.String()
	for _, want := range []string{"RUN STARTED", "in.mp4", "Job 2 failed on u@h", "boom", "disk getting full"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected log output to contain %q, got: %s", want, out)
		}
	}
}

func TestCompositeReporterFansOutToAll(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	c := NewCompositeReporter(NewLogReporter(&buf1), NewLogReporter(&buf2))

	c.Warning("both should see this")

	if !strings.Contains(buf1.String(), "both should see this") {
		t.Fatal("expected first reporter to receive the warning")
	}
	if !strings.Contains(buf2.String(), "both should see this") {
		t.Fatal("expected second reporter to receive the warning")
	}
}

func TestNullReporterDiscardsEverything(t *testing.T) {
	var r Reporter = NullReporter{}
	r.RunStarted(RunStartInfo{})
	r.Warning("ignored")
	r.Error(ReporterError{Title: "ignored"})
}
