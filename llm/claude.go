package llm

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// nestedSessionEnv が子プロセスに残っていると、CLI が入れ子起動として拒否する
const nestedSessionEnv = "CLAUDECODE"

// ClaudeCLI は、claude CLI をワンショットのサブプロセスとして呼び出します。
type ClaudeCLI struct {
	command string
	timeout time.Duration
	logger  *slog.Logger
}

type ClaudeOption func(*ClaudeCLI)

// WithCommand は、実行ファイルを差し替えます。
func WithCommand(command string) ClaudeOption {
	return func(c *ClaudeCLI) { c.command = command }
}

func WithTimeout(d time.Duration) ClaudeOption {
	return func(c *ClaudeCLI) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithLogger(l *slog.Logger) ClaudeOption {
	return func(c *ClaudeCLI) {
		if l != nil {
			c.logger = l
		}
	}
}

func NewClaudeCLI(opts ...ClaudeOption) *ClaudeCLI {
	c := &ClaudeCLI{
		command: "claude",
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate は `claude -p <prompt>` を実行し、標準出力を返します。
func (c *ClaudeCLI) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.command, "-p", prompt)
	cmd.Env = childEnv(os.Environ())
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	c.logger.Debug("claude cli finished", "elapsed", time.Since(start), "stdout_bytes", stdout.Len())
	if err == nil {
		return stdout.String(), nil
	}

	execErr := &CollaboratorExecutionError{
		Backend: "claude",
		Stderr:  stderr.String(),
		Err:     err,
	}
	var exitErr *exec.ExitError
	switch {
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		execErr.Kind = KindNotFound
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		execErr.Kind = KindTimeout
		execErr.Err = ctx.Err()
	case errors.As(err, &exitErr):
		execErr.Kind = KindExit
		execErr.ExitCode = exitErr.ExitCode()
	default:
		execErr.Kind = KindFailure
	}
	return "", execErr
}

func childEnv(environ []string) []string {
	env := make([]string, 0, len(environ))
	for _, kv := range environ {
		if strings.HasPrefix(kv, nestedSessionEnv+"=") {
			continue
		}
		env = append(env, kv)
	}
	return env
}

var _ LLM = (*ClaudeCLI)(nil)
