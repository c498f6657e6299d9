// Package main is the entry point for prime-pool.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"go.uber.org/automaxprocs/maxprocs"

	"prime-pool/internal/config"
	"prime-pool/internal/coordinator"
	"prime-pool/internal/events"
	"prime-pool/internal/logger"
	"prime-pool/internal/metrics"
	"prime-pool/internal/prime"
	"prime-pool/internal/queue"
	"prime-pool/internal/sink"
)

var (
	version = "dev"
)

// options はコマンドラインフラグの値
type options struct {
	configFile  string
	threads     int
	maxNumber   int
	strategy    string
	mode        string
	logLevel    string
	metricsAddr string
	summary     bool
	verify      bool
	showVersion bool

	// 明示的に指定されたフラグ
	set map[string]bool
}

func main() {
	opts := parseFlags()

	if opts.showVersion {
		fmt.Printf("prime-pool version %s\n", version)
		return
	}

	if err := run(opts); err != nil {
		logger.Error("", "%v", err)
		os.Exit(1)
	}
}

func parseFlags() options {
	var opts options

	flag.StringVar(&opts.configFile, "config", config.DefaultFile, "設定ファイルパス (key=value または YAML)")
	flag.IntVar(&opts.threads, "threads", 0, "ワーカー数 (設定ファイルより優先)")
	flag.IntVar(&opts.maxNumber, "max", 0, "探索上限 (設定ファイルより優先)")
	flag.StringVar(&opts.strategy, "strategy", "", "分配戦略 (queue, channel, range)")
	flag.StringVar(&opts.mode, "mode", "", "出力モード (immediate, collect)")
	flag.StringVar(&opts.logLevel, "log-level", "info", "ログレベル (debug, info, warn, error)")
	flag.StringVar(&opts.metricsAddr, "metrics-addr", "", "Prometheus メトリクスの公開アドレス (例: :9090)")
	flag.BoolVar(&opts.summary, "summary", false, "実行レポートを stderr に表示")
	flag.BoolVar(&opts.verify, "verify", false, "逐次計算の結果と素数の数を照合")
	flag.BoolVar(&opts.showVersion, "version", false, "バージョンを表示")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `prime-pool - Parallel Prime Search over a Shared Work Queue

Usage:
  primepool [options]

Options:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # config.txt を読み込んで実行
  primepool

  # 設定を上書き
  primepool --threads 8 --max 100000

  # ワーカーごとに集めてから出力
  primepool --mode collect --strategy range

  # メトリクスを公開しながら実行
  primepool --metrics-addr :9090 --summary
`)
	}

	flag.Parse()

	opts.set = make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		opts.set[f.Name] = true
	})
	return opts
}

// loadConfig は設定ファイルを読み込み、フラグで上書きする
func loadConfig(opts options) (config.Config, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		if errors.Is(err, config.ErrUnreadable) {
			fmt.Printf("Could not open config file. Using defaults: threads=%d, max=%d\n",
				config.DefaultThreads, config.DefaultMaxNumber)
		}
		logger.Warn("config", "%v", err)
	}

	if opts.set["threads"] {
		cfg.Threads = opts.threads
	}
	if opts.set["max"] {
		cfg.MaxNumber = opts.maxNumber
	}
	if opts.set["strategy"] {
		cfg.Strategy = opts.strategy
	}
	if opts.set["mode"] {
		cfg.Mode = opts.mode
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("設定検証エラー: %w", err)
	}
	return cfg, nil
}

// run は1回の探索を実行する
func run(opts options) error {
	level, err := logger.ParseLevel(opts.logLevel)
	if err != nil {
		return err
	}
	logger.SetLevel(level)

	// ログレベル設定後に呼び、--log-level debug で出力されるようにする
	setMaxProcs()

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	strategy, err := queue.ParseStrategy(cfg.Strategy)
	if err != nil {
		return err
	}
	mode, err := sink.ParseMode(cfg.Mode)
	if err != nil {
		return err
	}

	fmt.Printf("Configuration: %s\n", cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New(metrics.DefaultNamespace)
	if opts.metricsAddr != "" {
		go func() {
			if err := m.Serve(ctx, opts.metricsAddr); err != nil {
				logger.Warn("metrics", "%v", err)
			}
		}()
		logger.Info("metrics", "Serving metrics on %s/metrics", opts.metricsAddr)
	}

	bus := events.NewBus()
	done := logEvents(bus.Subscribe())

	engine := coordinator.New(coordinator.Config{
		Workers:   cfg.Threads,
		MaxNumber: cfg.MaxNumber,
		Strategy:  strategy,
		Mode:      mode,
		Output:    os.Stdout,
	})
	engine.SetEventBus(bus)
	engine.SetMetrics(m)

	result, err := engine.Run(ctx)
	bus.Close()
	<-done
	if err != nil {
		return err
	}

	if opts.summary {
		fmt.Fprintln(os.Stderr, result.Report())
	}

	if opts.verify {
		if want := prime.Count(cfg.MaxNumber); result.TotalPrimes != want {
			return fmt.Errorf("verification failed: found %d primes, sequential count is %d", result.TotalPrimes, want)
		}
		logger.Info("", "Verified %d primes against sequential count", result.TotalPrimes)
	}

	return nil
}

// setMaxProcs はコンテナの CPU クォータに GOMAXPROCS を合わせる
func setMaxProcs() {
	if _, err := maxprocs.Set(maxprocs.Logger(logger.Default.Printf(logger.LevelDebug, "maxprocs"))); err != nil {
		logger.Warn("maxprocs", "%v", err)
	}
}

// logEvents はイベントをデバッグログに出力する
func logEvents(ch <-chan events.Event) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range ch {
			switch e.Type {
			case events.EventWorkerFinished:
				logger.Debug(logger.WorkerSource(e.WorkerID), "%s: claimed=%d found=%d", e.Type, e.Data.Claimed, e.Data.Found)
			case events.EventRunFailed:
				logger.Debug("events", "%s: %s", e.Type, e.Data.Error)
			default:
				logger.Debug("events", "%s (run %s)", e.Type, e.RunID)
			}
		}
	}()
	return done
}
