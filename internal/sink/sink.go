// Package sink records the primes discovered by workers.
//
// Stream prints every discovery immediately, so lines from different
// workers interleave in scheduling order. Collector keeps one private
// buffer per worker and prints them after all workers have been joined,
// grouped by worker index.
package sink

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
)

// ErrUnknownMode は未知の出力モードが指定されたことを表す
var ErrUnknownMode = errors.New("unknown output mode")

// Sink は発見した素数の記録先
type Sink interface {
	Record(workerID, n int) error
}

// Ensure sinks implement Sink
var (
	_ Sink = (*Stream)(nil)
	_ Sink = (*Collector)(nil)
)

// Mode は出力モード
type Mode string

const (
	ModeImmediate Mode = "immediate"
	ModeCollect   Mode = "collect"
)

// Title は表示用のモード名を返す
func (m Mode) Title() string {
	switch m {
	case ModeImmediate:
		return "Immediate Print"
	case ModeCollect:
		return "Collect and Print"
	default:
		return string(m)
	}
}

// ParseMode は文字列を Mode に変換する
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "immediate", "print":
		return ModeImmediate, nil
	case "collect":
		return ModeCollect, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// FormatLine は素数1件分の出力行を返す
func FormatLine(workerID, n int) string {
	return fmt.Sprintf("[Thread %d] Prime found: %d", workerID, n)
}

// Stream は発見のたびに出力する
// 書き込みは専用のミューテックスで直列化され、キューのロックとは独立している
type Stream struct {
	mu    sync.Mutex
	out   io.Writer
	count atomic.Int64
}

// NewStream は out に書き込む Stream を作成する
func NewStream(out io.Writer) *Stream {
	return &Stream{out: out}
}

// Record は1行出力する
func (s *Stream) Record(workerID, n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := fmt.Fprintln(s.out, FormatLine(workerID, n)); err != nil {
		return fmt.Errorf("failed to write prime %d: %w", n, err)
	}
	s.count.Add(1)
	return nil
}

// Count は出力した件数を返す
func (s *Stream) Count() int {
	return int(s.count.Load())
}

// Collector はワーカーごとのバッファに素数を蓄積する
// 各バッファは担当ワーカーだけが書き込むためロックを持たない
type Collector struct {
	buffers [][]int
}

// NewCollector は workers 個のバッファを持つ Collector を作成する
func NewCollector(workers int) *Collector {
	return &Collector{
		buffers: make([][]int, max(workers, 0)),
	}
}

// Record は workerID のバッファに追加する
func (c *Collector) Record(workerID, n int) error {
	if workerID < 0 || workerID >= len(c.buffers) {
		return fmt.Errorf("worker %d out of range [0, %d)", workerID, len(c.buffers))
	}
	c.buffers[workerID] = append(c.buffers[workerID], n)
	return nil
}

// Buffers はワーカーごとのバッファを返す
// 全ワーカーの終了後にのみ呼び出すこと
func (c *Collector) Buffers() [][]int {
	return c.buffers
}

// Count は蓄積した件数を返す
// 全ワーカーの終了後にのみ呼び出すこと
func (c *Collector) Count() int {
	total := 0
	for _, b := range c.buffers {
		total += len(b)
	}
	return total
}

// Merged は全バッファを結合して昇順で返す
// 全ワーカーの終了後にのみ呼び出すこと
func (c *Collector) Merged() []int {
	merged := make([]int, 0, c.Count())
	for _, b := range c.buffers {
		merged = append(merged, b...)
	}
	slices.Sort(merged)
	return merged
}

// Flush はワーカー番号順、発見順に出力する
// 全ワーカーの終了後にのみ呼び出すこと
func (c *Collector) Flush(out io.Writer) error {
	for id, b := range c.buffers {
		for _, n := range b {
			if _, err := fmt.Fprintln(out, FormatLine(id, n)); err != nil {
				return fmt.Errorf("failed to flush results of worker %d: %w", id, err)
			}
		}
	}
	return nil
}
