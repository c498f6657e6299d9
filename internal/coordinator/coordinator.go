package coordinator

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"prime-pool/internal/config"
	"prime-pool/internal/events"
	"prime-pool/internal/logger"
	"prime-pool/internal/metrics"
	"prime-pool/internal/queue"
	"prime-pool/internal/sink"
	"prime-pool/internal/worker"
)

const source = "coordinator"

// Config は1回の実行の設定
type Config struct {
	Workers   int            // ワーカー数
	MaxNumber int            // 探索上限 (1 未満なら空の実行)
	Strategy  queue.Strategy // 分配戦略
	Mode      sink.Mode      // 出力モード
	Output    io.Writer      // 結果の出力先 (nil なら破棄)
}

// DefaultConfig はデフォルト設定を返す
func DefaultConfig() Config {
	return Config{
		Workers:   config.DefaultThreads,
		MaxNumber: config.DefaultMaxNumber,
		Strategy:  queue.StrategySharedQueue,
		Mode:      sink.ModeImmediate,
		Output:    os.Stdout,
	}
}

// Validate は設定を検証する
func (c Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if _, err := queue.ParseStrategy(string(c.Strategy)); err != nil {
		return err
	}
	if _, err := sink.ParseMode(string(c.Mode)); err != nil {
		return err
	}
	return nil
}

// Engine はワーカーの起動、終了ハンドシェイク、結合、集計を行う
type Engine struct {
	config   Config
	eventBus *events.Bus
	metrics  *metrics.Metrics
	tracer   trace.Tracer

	mu      sync.RWMutex
	running bool
}

// New は新しいEngineを作成する
func New(cfg Config) *Engine {
	if cfg.Output == nil {
		cfg.Output = io.Discard
	}
	if cfg.Strategy == "" {
		cfg.Strategy = queue.StrategySharedQueue
	}
	if cfg.Mode == "" {
		cfg.Mode = sink.ModeImmediate
	}
	return &Engine{
		config: cfg,
		tracer: otel.Tracer("prime-pool/coordinator"),
	}
}

// SetEventBus はイベントバスを設定する
func (e *Engine) SetEventBus(bus *events.Bus) {
	e.eventBus = bus
}

// SetMetrics はメトリクスを設定する
func (e *Engine) SetMetrics(m *metrics.Metrics) {
	e.metrics = m
}

// SetTracer はトレーサーを設定する
func (e *Engine) SetTracer(t trace.Tracer) {
	if t != nil {
		e.tracer = t
	}
}

// IsRunning は実行中かどうかを返す
func (e *Engine) IsRunning() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.running
}

func (e *Engine) publish(event events.Event) {
	if e.eventBus != nil {
		e.eventBus.Publish(event)
	}
}

func (e *Engine) recorder() worker.Recorder {
	if e.metrics == nil {
		return nil
	}
	return e.metrics
}

// Run は自然に枯渇するまで実行する
// ワーカーの失敗は実行全体の失敗として返し、部分的な復旧は行わない
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return nil, fmt.Errorf("engine is already running")
	}
	e.running = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
	}()

	cfg := e.config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	runID := uuid.NewString()

	ctx, span := e.tracer.Start(ctx, "coordinator.run", trace.WithAttributes(
		attribute.String("run.id", runID),
		attribute.String("run.strategy", string(cfg.Strategy)),
		attribute.String("run.mode", string(cfg.Mode)),
		attribute.Int("run.workers", cfg.Workers),
		attribute.Int("run.max_number", cfg.MaxNumber),
	))
	defer span.End()

	// ワーカーが観測する前にキューを埋める
	dist, err := queue.New(cfg.Strategy, cfg.Workers, cfg.MaxNumber)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create distributor")
		return nil, fmt.Errorf("failed to create distributor: %w", err)
	}

	var (
		s         sink.Sink
		stream    *sink.Stream
		collector *sink.Collector
	)
	switch cfg.Mode {
	case sink.ModeCollect:
		collector = sink.NewCollector(cfg.Workers)
		s = collector
	default:
		stream = sink.NewStream(cfg.Output)
		s = stream
	}

	result := &Result{
		RunID:     runID,
		Strategy:  cfg.Strategy,
		Mode:      cfg.Mode,
		Workers:   cfg.Workers,
		MaxNumber: cfg.MaxNumber,
	}

	if _, err := fmt.Fprintf(cfg.Output, "\n=== %s + %s ===\n", cfg.Strategy.Title(), cfg.Mode.Title()); err != nil {
		return nil, fmt.Errorf("failed to write banner: %w", err)
	}
	result.StartTime = time.Now()
	if e.metrics != nil {
		// スナップショットを今回の実行分だけにする
		e.metrics.Reset()
	}
	if _, err := fmt.Fprintf(cfg.Output, "Start Time: %s\n", FormatTimestamp(result.StartTime)); err != nil {
		return nil, fmt.Errorf("failed to write start time: %w", err)
	}

	logger.Info(source, "Run %s started: %d workers, max=%d, strategy=%s, mode=%s",
		runID, cfg.Workers, cfg.MaxNumber, dist.Name(), cfg.Mode)
	e.publish(events.NewRunStartedEvent(runID, dist.Name(), cfg.Workers, cfg.MaxNumber))

	workers := make([]*worker.Worker, cfg.Workers)
	g, gctx := errgroup.WithContext(ctx)
	for id := range cfg.Workers {
		w := worker.New(id, dist.Claimer(id), s,
			worker.WithRecorder(e.recorder()),
			worker.WithTracer(e.tracer),
		)
		workers[id] = w

		g.Go(func() error {
			err := w.Run(gctx)
			if err != nil {
				// 残りのワーカーとコーディネーターの待機を解除する
				logger.Error(logger.WorkerSource(id), "Worker failed: %v", err)
				dist.Abort()
			}
			stats := w.Stats()
			e.publish(events.NewWorkerFinishedEvent(runID, id, stats.Claimed, stats.Found))
			return err
		})
	}

	// 終了ハンドシェイク: 空を確認 -> フラグ -> 全員を起こす
	dist.AwaitExhaustion()
	logger.Debug(source, "Queue exhausted, waiting for %d workers", cfg.Workers)
	e.publish(events.NewQueueExhaustedEvent(runID))
	span.AddEvent("queue_exhausted")

	// 全ワーカーの終了を待つ (タイムアウトなし)
	runErr := g.Wait()

	result.WorkerStats = make([]worker.Stats, cfg.Workers)
	for id, w := range workers {
		result.WorkerStats[id] = w.Stats()
	}

	if runErr != nil {
		span.RecordError(runErr)
		span.SetStatus(codes.Error, "worker failed")
		e.publish(events.NewRunFailedEvent(runID, runErr))
		return nil, fmt.Errorf("run %s aborted: %w", runID, runErr)
	}

	// 結合後にのみ各ワーカーのバッファを読む
	if collector != nil {
		if err := collector.Flush(cfg.Output); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to flush results")
			return nil, err
		}
		result.PerWorker = collector.Buffers()
		result.TotalPrimes = collector.Count()
	} else {
		result.TotalPrimes = stream.Count()
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)
	if _, err := fmt.Fprintf(cfg.Output, "End Time: %s\n", FormatTimestamp(result.EndTime)); err != nil {
		return nil, fmt.Errorf("failed to write end time: %w", err)
	}

	if e.metrics != nil {
		e.metrics.ObserveRun(result.Duration)
		snap := e.metrics.Snapshot()
		result.Metrics = &snap
	}
	span.SetAttributes(attribute.Int("run.primes", result.TotalPrimes))
	e.publish(events.NewRunCompletedEvent(runID, uint64(result.TotalPrimes), result.Duration))
	logger.Info(source, "Run %s completed: %d primes in %v",
		runID, result.TotalPrimes, result.Duration.Round(time.Millisecond))

	return result, nil
}
