package worker

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/YuminosukeSato/simulix/pkg/errors"
)

// maxLineBytes は1行の要求の最大サイズ
const maxLineBytes = 1 << 20

// Serve は r から改行区切りの JSON 要求を読み、応答を改行区切りの JSON で w に書く
//
// 応答は完了した順に書かれ、ID で要求と対応付けられる。入力が EOF に達すると
// 未完了の要求の応答をすべて書いてから nil を返す。ctx がキャンセルされると
// ワーカーを閉じ、残りの要求に応答してから ctx.Err() を返す。
func Serve(ctx context.Context, r io.Reader, w io.Writer, wk *Worker) error {
	enc := json.NewEncoder(w)
	var (
		writeMu  sync.Mutex
		writes   sync.WaitGroup
		writeErr error
	)
	write := func(resp Response) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := enc.Encode(resp); err != nil && writeErr == nil {
			writeErr = errors.Wrap(err, "write response")
		}
	}
	respond := func(task *Task) {
		writes.Add(1)
		go func() {
			defer writes.Done()
			<-task.Done()
			write(task.resp)
		}()
	}

	lines := make(chan []byte)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
		for sc.Scan() {
			line := append([]byte(nil), sc.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	var err error
loop:
	for {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break loop
		case line, ok := <-lines:
			if !ok {
				select {
				case err = <-scanErr:
				default:
				}
				break loop
			}
			if len(line) == 0 {
				continue
			}
			var req Request
			if derr := json.Unmarshal(line, &req); derr != nil {
				write(errorResponse("", errors.Wrap(derr, "invalid request")))
				continue
			}
			respond(wk.Submit(req))
		}
	}

	if ctx.Err() != nil {
		wk.Close()
	}
	writes.Wait()

	if err != nil {
		return err
	}
	writeMu.Lock()
	defer writeMu.Unlock()
	return writeErr
}
