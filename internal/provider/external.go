package provider

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"

	"github.com/ready-set-deploy/rsd/internal/component"
	"github.com/ready-set-deploy/rsd/internal/rsderrors"
	"github.com/ready-set-deploy/rsd/internal/rsdfmt"
	"github.com/ready-set-deploy/rsd/internal/system"
)

// External adapts an out-of-tree executable to the Provider interface via
// the subprocess protocol spec.md section 6 defines: the executable is
// invoked with a "gather" or "render" subcommand and an optional qualifier
// argument, reads render's input component from stdin, and writes its
// output to stdout. This is grounded directly on the teacher's own
// external-plugin invocation in pkg/compose/plugins.go: exec.CommandContext,
// a captured stderr buffer, and stdout consumed through a bufio.Scanner.
type External struct {
	id   string
	path string
}

// NewExternal builds a Provider backed by the executable at path, registered
// under id (which need not match the executable's basename).
func NewExternal(id, path string) *External {
	return &External{id: id, path: path}
}

func (e *External) ID() string { return e.id }

// Gather invokes "<path> gather [qualifier]" and parses its stdout as a
// serialized system document.
func (e *External) Gather(ctx context.Context, qualifier []string) (system.System, error) {
	args := []string{"gather"}
	if len(qualifier) > 0 {
		args = append(args, strings.Join(qualifier, "."))
	}

	out, stderr, err := e.runCaptureAll(ctx, args, nil)
	if err != nil {
		return system.System{}, e.wrap(rsderrors.ErrGatherFailed, err, stderr)
	}
	sys, err := rsdfmt.UnmarshalSystem(out)
	if err != nil {
		return system.System{}, e.wrap(rsderrors.ErrGatherFailed, err, stderr)
	}
	return sys, nil
}

// Render invokes "<path> render [qualifier]", feeding the diff component on
// stdin as serialized state, and scans stdout line-by-line for the ordered
// command stream.
func (e *External) Render(ctx context.Context, diff component.Component) ([]string, error) {
	args := []string{"render"}
	if len(diff.Key.Qualifier) > 0 {
		args = append(args, strings.Join(diff.Key.Qualifier, "."))
	}

	input, err := rsdfmt.MarshalComponent(diff)
	if err != nil {
		return nil, err
	}

	lines, stderr, err := e.runScanLines(ctx, args, input)
	if err != nil {
		return nil, e.wrap(rsderrors.ErrRenderFailed, err, stderr)
	}
	return lines, nil
}

func (e *External) command(ctx context.Context, args []string, stdin []byte) (*exec.Cmd, *bytes.Buffer) {
	cmd := exec.CommandContext(ctx, e.path, args...)
	cmd.Env = os.Environ()
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	return cmd, &stderr
}

func (e *External) runCaptureAll(ctx context.Context, args []string, stdin []byte) ([]byte, *bytes.Buffer, error) {
	cmd, stderr := e.command(ctx, args, stdin)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, stderr, err
	}
	if err := cmd.Start(); err != nil {
		return nil, stderr, err
	}

	data, readErr := io.ReadAll(stdout)
	waitErr := cmd.Wait()
	if waitErr != nil {
		return nil, stderr, waitErr
	}
	if readErr != nil {
		return nil, stderr, readErr
	}
	return data, stderr, nil
}

func (e *External) runScanLines(ctx context.Context, args []string, stdin []byte) ([]string, *bytes.Buffer, error) {
	cmd, stderr := e.command(ctx, args, stdin)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, stderr, err
	}
	if err := cmd.Start(); err != nil {
		return nil, stderr, err
	}

	var lines []string
	scanner := bufio.NewScanner(stdout)
	scanner.Split(bufio.ScanLines)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	scanErr := scanner.Err()

	waitErr := cmd.Wait()
	if waitErr != nil {
		return nil, stderr, waitErr
	}
	if scanErr != nil {
		return nil, stderr, scanErr
	}
	return lines, stderr, nil
}

func (e *External) wrap(sentinel error, cause error, stderr *bytes.Buffer) error {
	msg := strings.TrimSpace(stderr.String())
	if msg == "" {
		return rsderrors.Wrap(sentinel, rsderrors.Key{Type: e.id}, "external provider %s: %s", e.id, cause)
	}
	return rsderrors.Wrap(sentinel, rsderrors.Key{Type: e.id}, "external provider %s: %s (stderr: %s)", e.id, errors.Cause(cause), msg)
}
