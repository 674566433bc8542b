package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sat8bit/charagen/batch"
	"github.com/sat8bit/charagen/bus"
	"github.com/sat8bit/charagen/llm"
	"github.com/sat8bit/charagen/message"
	"github.com/sat8bit/charagen/store"
)

// loop は、指示を受けて生成・保存・一覧表示を繰り返す対話モードです。
type loop struct {
	pipeline *batch.Pipeline
	store    store.Store
	bus      bus.Bus
	out      io.Writer
}

// run は、入力が尽きるか ctx が終わるまで指示を読み続けます。
func (l *loop) run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		fmt.Fprint(l.out, "指示 > ")
		select {
		case <-ctx.Done():
			fmt.Fprintln(l.out, "\n終了します")
			return nil
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(l.out, "\n終了します")
				return nil
			}
			if instruction := strings.TrimSpace(line); instruction != "" {
				// 表示済みなので対話は続ける
				_ = l.handle(ctx, instruction)
			}
		}
	}
}

// handle は、1件の指示を処理します。失敗はエラーメッセージとして表示したうえで、
// reportedError に包んで返します。
func (l *loop) handle(ctx context.Context, instruction string) error {
	l.send(message.KindSystem, "生成中...")

	res, err := l.pipeline.Generate(ctx, instruction)
	if err != nil {
		l.report(err)
		return &reportedError{err: err}
	}

	b, err := l.store.SaveBatch(ctx, instruction, res.Sheets)
	if err != nil {
		l.send(message.KindError, err.Error())
		return &reportedError{err: err}
	}

	l.send(message.KindBatchDone, fmt.Sprintf("%d人のキャラクターを生成しました", len(b.Entries)))
	for _, e := range b.Entries {
		l.send(message.KindSheet, e.Summary(displayRef(b, e)))
	}
	if n := len(res.Rejections); n > 0 {
		l.send(message.KindSystem, fmt.Sprintf("%d件は検証に通らなかったため保存していません", n))
	}
	l.send(message.KindSystem, "保存先: "+b.Location+string(os.PathSeparator))
	return nil
}

// reportedError は、バスに表示済みのエラーです。main は再表示せず終了コードだけ返します。
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

func (l *loop) report(err error) {
	var (
		execErr *llm.CollaboratorExecutionError
		exErr   *batch.ExtractionError
		allErr  *batch.AllCandidatesInvalidError
	)
	switch {
	case errors.As(err, &exErr), errors.As(err, &allErr):
		l.send(message.KindError, "キャラクターを生成できませんでした。指示を変えてみてください。")
		l.send(message.KindSystem, err.Error())
	case errors.As(err, &execErr) && execErr.Kind == llm.KindNotFound:
		l.send(message.KindError, err.Error())
		l.send(message.KindSystem, "claude CLI がインストールされているか確認してください")
	default:
		l.send(message.KindError, err.Error())
	}
}

func (l *loop) send(kind message.Kind, text string) {
	_ = l.bus.Broadcast(message.New(kind, text))
}

func displayRef(b *store.Batch, e store.Entry) string {
	if filepath.Dir(e.Ref) == b.Location {
		return filepath.Base(e.Ref)
	}
	return e.Ref
}
