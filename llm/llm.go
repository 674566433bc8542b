package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// DefaultTimeout は、1回の生成呼び出しに許す時間です。
const DefaultTimeout = 120 * time.Second

type LLM interface {
	// Generate は、プロンプトを1回だけ送り、生成されたテキストをそのまま返します。
	Generate(ctx context.Context, prompt string) (string, error)
}

// ErrorKind は、外部生成器の失敗の種類です。
type ErrorKind string

const (
	KindNotFound ErrorKind = "not_found"
	KindTimeout  ErrorKind = "timeout"
	KindExit     ErrorKind = "exit"
	KindFailure  ErrorKind = "failure"
)

// CollaboratorExecutionError は、外部生成器が起動できない・時間切れ・異常終了したことを示します。
type CollaboratorExecutionError struct {
	Backend  string
	Kind     ErrorKind
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CollaboratorExecutionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s collaborator %s", e.Backend, e.Kind)
	if e.Kind == KindExit {
		fmt.Fprintf(&b, " (code %d)", e.ExitCode)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if s := strings.TrimSpace(e.Stderr); s != "" {
		fmt.Fprintf(&b, "\n%s", s)
	}
	return b.String()
}

func (e *CollaboratorExecutionError) Unwrap() error {
	return e.Err
}
