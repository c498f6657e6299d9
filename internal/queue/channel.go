package queue

import "sync"

// ChannelQueue はクローズ済みのバッファ付きチャネルによるキュー
// チャネルのクローズが終了フラグとブロードキャストを兼ねる
type ChannelQueue struct {
	items chan int

	drained     chan struct{}
	drainedOnce sync.Once
	abort       chan struct{}
	abortOnce   sync.Once
}

// NewChannelQueue は 1..maxNumber を投入してクローズしたキューを作成する
func NewChannelQueue(maxNumber int) *ChannelQueue {
	size := max(maxNumber, 0)
	q := &ChannelQueue{
		items:   make(chan int, size),
		drained: make(chan struct{}),
		abort:   make(chan struct{}),
	}
	for i := 1; i <= size; i++ {
		q.items <- i
	}
	close(q.items)
	return q
}

// Name は戦略名を返す
func (q *ChannelQueue) Name() string {
	return string(StrategyChannel)
}

// Claimer は workerID 用の取得口を返す
func (q *ChannelQueue) Claimer(_ int) Claimer {
	return ClaimerFunc(q.Next)
}

// Next は次の項目を受信する
func (q *ChannelQueue) Next() (int, bool) {
	select {
	case <-q.abort:
		return 0, false
	default:
	}

	select {
	case <-q.abort:
		return 0, false
	case item, ok := <-q.items:
		if !ok || len(q.items) == 0 {
			q.markDrained()
		}
		return item, ok
	}
}

func (q *ChannelQueue) markDrained() {
	q.drainedOnce.Do(func() { close(q.drained) })
}

// AwaitExhaustion は全項目が受信されるまで待機する
func (q *ChannelQueue) AwaitExhaustion() {
	if len(q.items) == 0 {
		q.markDrained()
	}

	select {
	case <-q.drained:
	case <-q.abort:
	}
}

// Abort は残りの項目を破棄する
func (q *ChannelQueue) Abort() {
	q.abortOnce.Do(func() { close(q.abort) })
}

// Len は未受信の項目数を返す
func (q *ChannelQueue) Len() int {
	return len(q.items)
}
