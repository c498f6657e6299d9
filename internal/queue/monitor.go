package queue

import (
	"errors"
	"sync"
)

// ErrNotEmpty は未取得の項目が残っている状態で終了フラグを立てようとしたことを表す
var ErrNotEmpty = errors.New("queue still holds unclaimed items")

// Monitor はミューテックスと条件変数で保護された FIFO キュー
// キューと終了フラグはこの1つのロックだけで保護される
type Monitor struct {
	mu   sync.Mutex
	cond *sync.Cond

	items     []int
	claimed   int
	exhausted bool // false -> true の一方向のみ
	aborted   bool
}

// NewMonitor は 1..maxNumber を投入済みのキューを作成する
// maxNumber < 1 の場合は空のキューになる
func NewMonitor(maxNumber int) *Monitor {
	m := &Monitor{}
	m.cond = sync.NewCond(&m.mu)
	if maxNumber > 0 {
		m.items = make([]int, 0, maxNumber)
		for i := 1; i <= maxNumber; i++ {
			m.items = append(m.items, i)
		}
	}
	return m
}

// Name は戦略名を返す
func (m *Monitor) Name() string {
	return string(StrategySharedQueue)
}

// Claimer は workerID 用の取得口を返す
// 共有キューでは全ワーカーが同じ取得口を使う
func (m *Monitor) Claimer(_ int) Claimer {
	return ClaimerFunc(m.Next)
}

// claimLocked は先頭の項目を取り出す
// 呼び出し側が m.mu を保持していること
func (m *Monitor) claimLocked() (int, bool) {
	if len(m.items) == 0 {
		return 0, false
	}

	item := m.items[0]
	m.items = m.items[1:]
	m.claimed++

	// 最後の項目を取り出したワーカーはコーディネーターを起こす
	// 終了フラグは立てない
	if len(m.items) == 0 {
		m.cond.Broadcast()
	}
	return item, true
}

// TryClaim はブロックせずに先頭の項目を取り出す
func (m *Monitor) TryClaim() (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.claimLocked()
}

// Next は項目が取得できるか終了フラグが立つまで待機する
// 空のキューで起こされた場合はフラグを確認して再び待機する
func (m *Monitor) Next() (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for {
		if item, ok := m.claimLocked(); ok {
			return item, true
		}
		if !m.awaitWorkLocked() {
			return 0, false
		}
	}
}

// AwaitWorkOrExhaustion はキューが空でなくなるか終了フラグが立つまで待機する
// 戻った時点で項目が残っていれば true を返す
func (m *Monitor) AwaitWorkOrExhaustion() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.awaitWorkLocked()
}

// awaitWorkLocked は Wait の前後で必ず条件を確認し直す
// 呼び出し側が m.mu を保持していること
func (m *Monitor) awaitWorkLocked() bool {
	for len(m.items) == 0 && !m.exhausted {
		m.cond.Wait()
	}
	return len(m.items) > 0
}

// IsExhausted は終了フラグを返す
func (m *Monitor) IsExhausted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exhausted
}

// MarkExhausted はキューが空であることを確認して終了フラグを立てる
func (m *Monitor) MarkExhausted() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.markExhaustedLocked()
}

// markExhaustedLocked は空を確認してからフラグを立て、待機中の全員を起こす
// 呼び出し側が m.mu を保持していること
func (m *Monitor) markExhaustedLocked() error {
	if len(m.items) > 0 {
		return ErrNotEmpty
	}
	m.exhausted = true
	m.cond.Broadcast()
	return nil
}

// AwaitExhaustion はキューが空になるまで待機し、終了フラグを立てて全員を起こす
// 待機前に空かどうかを自分で確認するので、ワーカーの通知がなくても終了できる
func (m *Monitor) AwaitExhaustion() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for m.markExhaustedLocked() != nil {
		m.cond.Wait()
	}
}

// Abort は未取得の項目を破棄して終了フラグを立てる
func (m *Monitor) Abort() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = nil
	m.aborted = true
	_ = m.markExhaustedLocked()
}

// Aborted は Abort が呼ばれたかどうかを返す
func (m *Monitor) Aborted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.aborted
}

// Len は未取得の項目数を返す
func (m *Monitor) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Claimed は取得済みの項目数を返す
func (m *Monitor) Claimed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.claimed
}
