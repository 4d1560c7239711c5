package sandbox

import (
	"archive/tar"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/google/uuid"

	"github.com/okian/podium/pkg/logger"
)

// Default sandbox configuration constants.
const (
	defaultImage       = "python:3.12-alpine"
	defaultTimeout     = 10 * time.Second
	defaultMemoryBytes = 256 << 20 // 256 MiB

	jobDir = "/job"
)

// harness drives the user script inside the container. The script must
// define score(answer_rows, submission_rows); the harness feeds it the two
// row sequences from input.json and prints the resulting float on stdout.
const harness = `import json, math, sys

with open("/job/input.json") as f:
    payload = json.load(f)
scope = {}
with open("/job/scorer.py") as f:
    exec(compile(f.read(), "scorer.py", "exec"), scope)
fn = scope.get("score")
if not callable(fn):
    sys.stderr.write("scoring code must define score(answer_rows, submission_rows)\n")
    sys.exit(3)
value = float(fn(payload["answer"], payload["submission"]))
if math.isnan(value) or math.isinf(value):
    sys.stderr.write("score is not finite\n")
    sys.exit(4)
sys.stdout.write(repr(value) + "\n")
`

// DockerRunner implements Runner on top of a local container runtime.
// Containers run with networking disabled and a hard memory cap; the wall
// clock bound is enforced host-side and the container is force-removed when
// it trips.
type DockerRunner struct {
	cli         *client.Client
	image       string
	timeout     time.Duration
	memoryBytes int64
	log         logger.Logger
}

// Option applies a configuration option to the DockerRunner.
type Option func(*DockerRunner)

// WithImage sets the container image used for scoring runs.
func WithImage(image string) Option {
	return func(r *DockerRunner) {
		if image != "" {
			r.image = image
		}
	}
}

// WithTimeout sets the wall-clock bound for one scoring run.
func WithTimeout(d time.Duration) Option {
	return func(r *DockerRunner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithMemoryLimit caps container memory in bytes.
func WithMemoryLimit(n int64) Option {
	return func(r *DockerRunner) {
		if n > 0 {
			r.memoryBytes = n
		}
	}
}

// WithLogger sets a custom logger for the runner.
func WithLogger(l logger.Logger) Option {
	return func(r *DockerRunner) {
		if l != nil {
			r.log = l
		}
	}
}

// NewDockerRunner connects to the local container runtime.
func NewDockerRunner(opts ...Option) (*DockerRunner, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	r := &DockerRunner{
		cli:         cli,
		image:       defaultImage,
		timeout:     defaultTimeout,
		memoryBytes: defaultMemoryBytes,
		log:         logger.Get().Named("sandbox"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run executes the scoring script against the two row sequences.
func (r *DockerRunner) Run(ctx context.Context, code string, answer, submission []map[string]string) (float64, error) {
	input, err := json.Marshal(map[string]any{
		"answer":     answer,
		"submission": submission,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: encode input: %v", ErrUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	name := "podium-scorer-" + uuid.NewString()
	created, err := r.cli.ContainerCreate(ctx,
		&container.Config{
			Image:           r.image,
			NetworkDisabled: true,
			WorkingDir:      jobDir,
			Cmd:             []string{"python3", "run.py"},
		},
		&container.HostConfig{
			Resources: container.Resources{
				Memory: r.memoryBytes,
			},
			Privileged:     false,
			ReadonlyRootfs: false,
		},
		nil, nil, name)
	if err != nil {
		return 0, fmt.Errorf("%w: create container: %v", ErrUnavailable, err)
	}
	defer r.dispose(created.ID)

	archive, err := jobArchive(code, input)
	if err != nil {
		return 0, fmt.Errorf("%w: build job archive: %v", ErrUnavailable, err)
	}
	if err := r.cli.CopyToContainer(ctx, created.ID, "/", archive, types.CopyToContainerOptions{}); err != nil {
		return 0, fmt.Errorf("%w: copy job: %v", ErrUnavailable, err)
	}

	if err := r.cli.ContainerStart(ctx, created.ID, types.ContainerStartOptions{}); err != nil {
		return 0, fmt.Errorf("%w: start container: %v", ErrUnavailable, err)
	}

	waitCh, errCh := r.cli.ContainerWait(ctx, created.ID, container.WaitConditionNotRunning)
	select {
	case <-ctx.Done():
		// Wall-clock bound tripped; the script does not get to finish.
		return 0, fmt.Errorf("%w: exceeded %s time bound", ErrInvalidScore, r.timeout)
	case err := <-errCh:
		return 0, waitFailure(ctx, err, r.timeout)
	case wr := <-waitCh:
		stdout, stderr, lerr := r.collectLogs(ctx, created.ID)
		if lerr != nil {
			return 0, lerr
		}
		if wr.StatusCode != 0 {
			return 0, fmt.Errorf("%w: exit %d: %s", ErrInvalidScore, wr.StatusCode, firstLine(stderr))
		}
		return parseScore(stdout)
	}
}

// collectLogs demultiplexes the container's stdout/stderr streams.
func (r *DockerRunner) collectLogs(ctx context.Context, id string) (string, string, error) {
	logs, err := r.cli.ContainerLogs(ctx, id, types.ContainerLogsOptions{
		ShowStdout: true,
		ShowStderr: true,
	})
	if err != nil {
		return "", "", fmt.Errorf("%w: logs: %v", ErrUnavailable, err)
	}
	defer func() { _ = logs.Close() }()

	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, logs); err != nil {
		return "", "", fmt.Errorf("%w: demux logs: %v", ErrUnavailable, err)
	}
	return stdout.String(), stderr.String(), nil
}

// dispose force-removes the container on a background context so cleanup
// still happens after the run deadline expired.
func (r *DockerRunner) dispose(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := r.cli.ContainerRemove(ctx, id, types.ContainerRemoveOptions{Force: true}); err != nil {
		r.log.Warn(ctx, "failed to remove scorer container", logger.String("container", id), logger.Error(err))
	}
}

// waitFailure classifies a ContainerWait error. The wait call also reports
// the run context's own deadline through its error channel, and a tripped
// time bound is the script's fault, not an infrastructure incident.
func waitFailure(ctx context.Context, err error, timeout time.Duration) error {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: exceeded %s time bound", ErrInvalidScore, timeout)
	}
	return fmt.Errorf("%w: wait: %v", ErrUnavailable, err)
}

// parseScore reads the score from the last non-empty stdout line.
func parseScore(stdout string) (float64, error) {
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	v, err := strconv.ParseFloat(last, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: output %q is not a number", ErrInvalidScore, last)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: output %q is not finite", ErrInvalidScore, last)
	}
	return v, nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// jobArchive packs the harness, the user script, and the input payload into
// a tar rooted at /job.
func jobArchive(code string, input []byte) (*bytes.Reader, error) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	files := map[string][]byte{
		"job/run.py":     []byte(harness),
		"job/scorer.py":  []byte(code),
		"job/input.json": input,
	}
	for path, content := range files {
		if err := tw.WriteHeader(&tar.Header{
			Name: path,
			Mode: 0o644,
			Size: int64(len(content)),
		}); err != nil {
			return nil, err
		}
		if _, err := tw.Write(content); err != nil {
			return nil, err
		}
	}
	if err := tw.Close(); err != nil {
		return nil, err
	}
	return bytes.NewReader(buf.Bytes()), nil
}

var _ Runner = (*DockerRunner)(nil)
