package queue

import "sync/atomic"

// RangePartition は 1..maxNumber をワーカー数で連続した範囲に分割する
// 各範囲は作成時に決まり、取得時の同期は不要
type RangePartition struct {
	workers   int
	maxNumber int
	aborted   atomic.Bool
}

// NewRangePartition は新しい RangePartition を作成する
func NewRangePartition(workers, maxNumber int) *RangePartition {
	return &RangePartition{
		workers:   max(workers, 1),
		maxNumber: maxNumber,
	}
}

// Name は戦略名を返す
func (p *RangePartition) Name() string {
	return string(StrategyRange)
}

// Bounds は workerID が担当する閉区間 [start, end] を返す
// 最後のワーカーは割り切れなかった残りも担当する
// start > end の場合は担当なし
func (p *RangePartition) Bounds(workerID int) (start, end int) {
	if workerID < 0 || workerID >= p.workers {
		return 1, 0
	}

	size := p.maxNumber / p.workers
	start = workerID*size + 1
	end = (workerID + 1) * size
	if workerID == p.workers-1 {
		end = p.maxNumber
	}
	return start, end
}

// Batch は workerID が担当する項目を昇順で返す
func (p *RangePartition) Batch(workerID int) []int {
	start, end := p.Bounds(workerID)
	if start > end {
		return nil
	}

	batch := make([]int, 0, end-start+1)
	for n := start; n <= end; n++ {
		batch = append(batch, n)
	}
	return batch
}

// Claimer は workerID の範囲を順に返す取得口を作成する
func (p *RangePartition) Claimer(workerID int) Claimer {
	next, end := p.Bounds(workerID)
	return ClaimerFunc(func() (int, bool) {
		if p.aborted.Load() || next > end {
			return 0, false
		}
		item := next
		next++
		return item, true
	})
}

// AwaitExhaustion は何もしない
// 各ワーカーは自分の範囲を使い切った時点で終了する
func (p *RangePartition) AwaitExhaustion() {}

// Abort は以降の取得を打ち切る
func (p *RangePartition) Abort() {
	p.aborted.Store(true)
}
