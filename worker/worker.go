package worker

import (
	"context"
	"sync"
	"time"

	"github.com/YuminosukeSato/simulix/core/random"
	"github.com/YuminosukeSato/simulix/linear"
	"github.com/YuminosukeSato/simulix/pkg/errors"
	"github.com/YuminosukeSato/simulix/pkg/log"
	"github.com/google/uuid"
)

// ErrClosed は Close 後の要求、または Close で打ち切られた要求のエラー
var ErrClosed = errors.New("worker closed")

// ComputeFunc はトレードオフ曲線を計算する関数
type ComputeFunc func(ctx context.Context, p linear.TradeoffParams) (*linear.TradeoffCurve, error)

// DefaultCompute は実行ごとに異なる乱数源で linear.CalculateTradeoffCurve を呼ぶ
func DefaultCompute(ctx context.Context, p linear.TradeoffParams) (*linear.TradeoffCurve, error) {
	return linear.CalculateTradeoffCurve(ctx, p, random.NewUnseeded())
}

// Task は投入された要求で、応答はちょうど1回だけ確定する
type Task struct {
	ID string

	req  Request
	done chan struct{}
	resp Response

	// reason は実行中にキャンセルされた理由（ErrSuperseded または ErrClosed）
	reason error
}

func newTask(req Request) *Task {
	return &Task{ID: req.ID, req: req, done: make(chan struct{})}
}

func (t *Task) complete(resp Response) {
	t.resp = resp
	close(t.done)
}

// Done は応答が確定すると閉じるチャネルを返す
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait は応答が確定するまで待つ
func (t *Task) Wait(ctx context.Context) (Response, error) {
	select {
	case <-t.done:
		return t.resp, nil
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
}

// Worker は同時に1つだけ計算を実行するタスクランナー
type Worker struct {
	compute ComputeFunc
	logger  log.Logger

	mu      sync.Mutex
	running *Task
	cancel  context.CancelFunc
	pending *Task
	closed  bool
	wg      sync.WaitGroup
}

// Option はWorkerの設定オプション
type Option func(*Worker)

// WithCompute は計算関数を差し替える
func WithCompute(fn ComputeFunc) Option {
	return func(w *Worker) {
		w.compute = fn
	}
}

// New は新しいWorkerを作成する
func New(opts ...Option) *Worker {
	w := &Worker{
		compute: DefaultCompute,
		logger:  log.GetLoggerWithName("worker").With(log.ComponentKey, "worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Submit は要求を投入し、その応答を待つための Task を返す
//
// 実行中の計算があればキャンセルし、待機中の要求は superseded として応答する。
// パラメータが不正な要求は実行中・待機中の要求を置き換えない。
func (w *Worker) Submit(req Request) *Task {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	task := newTask(req)

	if req.Type != TypeCalculateTradeoff {
		task.complete(errorResponse(req.ID, errors.Newf("unsupported message type %q", req.Type)))
		return task
	}
	// 不正な要求は実行中の計算に影響させずに即座に応答する
	if err := req.Params.Validate(); err != nil {
		task.complete(errorResponse(req.ID, err))
		return task
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		task.complete(errorResponse(req.ID, ErrClosed))
		return task
	}

	if w.running == nil {
		w.start(task)
		return task
	}

	if w.pending != nil {
		w.logger.Debug("pending request superseded", log.RequestIDKey, w.pending.ID)
		w.pending.complete(errorResponse(w.pending.ID, errors.ErrSuperseded))
	}
	w.pending = task
	if w.running.reason == nil {
		w.running.reason = errors.ErrSuperseded
		w.cancel()
	}
	return task
}

// start は task を実行中にする。w.mu を保持した状態で呼ぶ
func (w *Worker) start(task *Task) {
	ctx, cancel := context.WithCancel(context.Background())
	w.running = task
	w.cancel = cancel

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer cancel()

		resp := w.execute(ctx, task)

		w.mu.Lock()
		defer w.mu.Unlock()
		task.complete(resp)
		w.running = nil
		w.cancel = nil
		if next := w.pending; next != nil && !w.closed {
			w.pending = nil
			w.start(next)
		}
	}()
}

func (w *Worker) execute(ctx context.Context, task *Task) Response {
	logger := w.logger.With(log.RequestIDKey, task.ID)
	start := time.Now()

	curve, err := errors.SafeCall("worker.tradeoff", func() (*linear.TradeoffCurve, error) {
		return w.compute(ctx, task.req.Params)
	})
	if err != nil {
		if ctx.Err() != nil {
			w.mu.Lock()
			reason := task.reason
			w.mu.Unlock()
			if reason != nil {
				err = reason
			}
		}
		logger.Warn("tradeoff request failed", log.ErrAttrKey, err.Error())
		return errorResponse(task.ID, err)
	}

	logger.Info("tradeoff request completed",
		log.SamplesKey, task.req.Params.SampleSize,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return completeResponse(task.ID, curve)
}

// Close は実行中の計算をキャンセルし、待機中の要求に ErrClosed で応答して、
// すべての応答が確定するまで待つ
func (w *Worker) Close() {
	w.mu.Lock()
	w.closed = true
	if w.pending != nil {
		w.pending.complete(errorResponse(w.pending.ID, ErrClosed))
		w.pending = nil
	}
	if w.running != nil && w.running.reason == nil {
		w.running.reason = ErrClosed
		w.cancel()
	}
	w.mu.Unlock()

	w.wg.Wait()
}
