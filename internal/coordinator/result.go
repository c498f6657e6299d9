package coordinator

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"prime-pool/internal/logger"
	"prime-pool/internal/metrics"
	"prime-pool/internal/queue"
	"prime-pool/internal/sink"
	"prime-pool/internal/worker"
)

// FormatTimestamp は YYYY-MM-DD HH:MM:SS.mmm 形式の時刻を返す
func FormatTimestamp(t time.Time) string {
	return t.Format(logger.TimestampLayout)
}

// Result は実行結果
type Result struct {
	RunID     string
	Strategy  queue.Strategy
	Mode      sink.Mode
	Workers   int
	MaxNumber int

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// ワーカーごとの集計 (インデックス = ワーカー番号)
	WorkerStats []worker.Stats
	// ワーカーごとの素数 (collect モードのみ)
	PerWorker [][]int

	TotalPrimes int

	// メトリクスが設定されている場合のみ
	Metrics *metrics.Snapshot
}

// TotalClaimed は全ワーカーが取得した項目数を返す
func (r *Result) TotalClaimed() uint64 {
	var total uint64
	for _, s := range r.WorkerStats {
		total += s.Claimed
	}
	return total
}

// Primes は全ワーカーの素数を昇順で返す
// immediate モードでは結果を保持しないため nil を返す
func (r *Result) Primes() []int {
	if r.PerWorker == nil {
		return nil
	}
	var merged []int
	for _, b := range r.PerWorker {
		merged = append(merged, b...)
	}
	slices.Sort(merged)
	return merged
}

// Report は結果をフォーマットして返す
func (r *Result) Report() string {
	var b strings.Builder

	fmt.Fprintf(&b, `
================================================================================
                         RUN REPORT: %s
================================================================================

EXECUTION SUMMARY
-----------------
  Strategy:       %s
  Mode:           %s
  Workers:        %d
  Max Number:     %d
  Start Time:     %s
  End Time:       %s
  Duration:       %v

RESULTS
-------
  Items Claimed:  %d
  Primes Found:   %d

`,
		r.RunID,
		r.Strategy,
		r.Mode,
		r.Workers,
		r.MaxNumber,
		FormatTimestamp(r.StartTime),
		FormatTimestamp(r.EndTime),
		r.Duration.Round(time.Microsecond),
		r.TotalClaimed(),
		r.TotalPrimes,
	)

	if r.Metrics != nil {
		fmt.Fprintf(&b, `
THROUGHPUT
----------
  Items/sec:      %.2f
  Avg Evaluation: %v

`, r.Metrics.ItemsPerSecond, r.Metrics.AverageEvaluation)
	}

	b.WriteString("WORKER STATISTICS\n-----------------\n")
	for id, s := range r.WorkerStats {
		fmt.Fprintf(&b, "  %-12s claimed=%-8d found=%d\n", logger.WorkerSource(id)+":", s.Claimed, s.Found)
	}

	b.WriteString("\n================================================================================")
	return b.String()
}
