package worker

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"prime-pool/internal/logger"
	"prime-pool/internal/prime"
	"prime-pool/internal/queue"
	"prime-pool/internal/sink"
)

// Recorder はワーカーの進捗を記録するインターフェース
type Recorder interface {
	IncClaimed()
	IncPrimes()
	ObserveEvaluation(d time.Duration)
	WorkerStarted()
	WorkerFinished()
}

type nopRecorder struct{}

func (nopRecorder) IncClaimed()                     {}
func (nopRecorder) IncPrimes()                      {}
func (nopRecorder) ObserveEvaluation(time.Duration) {}
func (nopRecorder) WorkerStarted()                  {}
func (nopRecorder) WorkerFinished()                 {}

// Stats はワーカー1つ分の集計
type Stats struct {
	Claimed uint64 // 取得した項目数
	Found   uint64 // 発見した素数の数
}

// Option はワーカーの設定を変更する
type Option func(*Worker)

// WithRecorder は進捗の記録先を設定する
func WithRecorder(r Recorder) Option {
	return func(w *Worker) {
		if r != nil {
			w.recorder = r
		}
	}
}

// WithTracer はトレーサーを設定する
func WithTracer(t trace.Tracer) Option {
	return func(w *Worker) {
		if t != nil {
			w.tracer = t
		}
	}
}

// Worker は分配器から項目を取得して素数判定するループ
type Worker struct {
	id       int
	claimer  queue.Claimer
	sink     sink.Sink
	recorder Recorder
	tracer   trace.Tracer

	// Run を実行するゴルーチンだけが書き込む
	stats Stats
}

// New は新しいワーカーを作成する
func New(id int, claimer queue.Claimer, s sink.Sink, opts ...Option) *Worker {
	w := &Worker{
		id:       id,
		claimer:  claimer,
		sink:     s,
		recorder: nopRecorder{},
		tracer:   otel.Tracer("prime-pool/worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// ID はワーカー番号を返す
func (w *Worker) ID() int {
	return w.id
}

// Stats は集計を返す
// Run の終了後にのみ呼び出すこと
func (w *Worker) Stats() Stats {
	return w.stats
}

// Run は分配が終了するまで項目を処理する
// 素数判定は分配器のロックの外で行われる
// 記録先への書き込みに失敗した場合はエラーを返して終了する
func (w *Worker) Run(ctx context.Context) error {
	source := logger.WorkerSource(w.id)
	_, span := w.tracer.Start(ctx, "worker.run",
		trace.WithAttributes(attribute.Int("worker.id", w.id)))
	defer span.End()

	w.recorder.WorkerStarted()
	defer w.recorder.WorkerFinished()

	logger.Debug(source, "Worker started")

	for {
		n, ok := w.claimer.Next()
		if !ok {
			break
		}
		w.stats.Claimed++
		w.recorder.IncClaimed()

		start := time.Now()
		isPrime := prime.IsPrime(n)
		w.recorder.ObserveEvaluation(time.Since(start))

		if !isPrime {
			continue
		}
		w.stats.Found++
		w.recorder.IncPrimes()

		if err := w.sink.Record(w.id, n); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to record prime")
			return fmt.Errorf("worker %d: %w", w.id, err)
		}
	}

	span.SetAttributes(
		attribute.Int64("worker.claimed", int64(w.stats.Claimed)),
		attribute.Int64("worker.found", int64(w.stats.Found)),
	)
	logger.Debug(source, "Worker finished: claimed=%d found=%d", w.stats.Claimed, w.stats.Found)
	return nil
}
