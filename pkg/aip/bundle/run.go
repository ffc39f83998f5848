package bundle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/provide-io/aipman/pkg/aip"
	aiperrors "github.com/provide-io/aipman/pkg/aip/errors"
)

// Stdio is the terminal a bundle runs attached to.
type Stdio struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Run starts the artifact of pkg with args, waits for it and returns its exit
// code. A non-zero exit is reported through the code, not as an error.
func (m *Materializer) Run(ctx context.Context, pkg aip.Package, args []string) (int, error) {
	return m.RunWithStdio(ctx, pkg, args, Stdio{In: os.Stdin, Out: os.Stdout, Err: os.Stderr})
}

// RunWithStdio is Run with explicit standard streams.
func (m *Materializer) RunWithStdio(ctx context.Context, pkg aip.Package, args []string, stdio Stdio) (int, error) {
	target := m.Path(pkg)
	info, err := os.Stat(target)
	if err != nil || info.IsDir() {
		return -1, fmt.Errorf("%w: %s", aiperrors.ErrArtifactMissing, target)
	}

	cmd := exec.CommandContext(ctx, target, args...)
	cmd.Stdin = stdio.In
	cmd.Stdout = stdio.Out
	cmd.Stderr = stdio.Err

	m.logger.Info("🚀 Executing bundle", "package", pkg.String(), "path", target)
	m.logger.Debug("🚀 Full command with args", "args", args)

	if err := cmd.Start(); err != nil {
		return -1, fmt.Errorf("%w: starting %s: %v", aiperrors.ErrExecutionFailed, target, err)
	}

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			m.logger.Info("⏹️ Process exited", "code", exitErr.ExitCode())
			return exitErr.ExitCode(), nil
		}
		return -1, fmt.Errorf("%w: %v", aiperrors.ErrExecutionFailed, err)
	}

	m.logger.Info("✅ Process completed successfully")
	return 0, nil
}
