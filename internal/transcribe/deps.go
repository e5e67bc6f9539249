package transcribe

import (
	"context"
	"os"
	"os/exec"
)

// commandRunner executes external commands and returns their combined output.
type commandRunner interface {
	CombinedOutput(ctx context.Context, name string, args []string) ([]byte, error)
}

// tempDirCreator creates temporary directories.
type tempDirCreator interface {
	MkdirTemp(dir, pattern string) (string, error)
}

// fileAccessor reads and removes result files.
type fileAccessor interface {
	ReadFile(name string) ([]byte, error)
	Remove(name string) error
	RemoveAll(path string) error
}

// --- Default implementations using real OS functions ---

// osCommandRunner implements commandRunner using exec.CommandContext.
type osCommandRunner struct{}

func (osCommandRunner) CombinedOutput(ctx context.Context, name string, args []string) ([]byte, error) {
	// #nosec G204 -- name and args are controlled by the transcriber, not user input
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}

// osTempDirCreator implements tempDirCreator using os.MkdirTemp.
type osTempDirCreator struct{}

func (osTempDirCreator) MkdirTemp(dir, pattern string) (string, error) {
	return os.MkdirTemp(dir, pattern)
}

// osFileAccessor implements fileAccessor using the os package.
type osFileAccessor struct{}

func (osFileAccessor) ReadFile(name string) ([]byte, error) {
	// #nosec G304 -- paths are constructed from our own scratch directory
	return os.ReadFile(name)
}

func (osFileAccessor) Remove(name string) error {
	return os.Remove(name)
}

func (osFileAccessor) RemoveAll(path string) error {
	return os.RemoveAll(path)
}
