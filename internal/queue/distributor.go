package queue

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownStrategy は未知の分配戦略が指定されたことを表す
var ErrUnknownStrategy = errors.New("unknown distribution strategy")

// Claimer はワーカー1つ分の取得口
type Claimer interface {
	// Next は次の作業項目を取得する
	// 分配が終了していれば false を返す
	Next() (int, bool)
}

// ClaimerFunc は関数を Claimer として扱うアダプタ
type ClaimerFunc func() (int, bool)

// Next は f を呼び出す
func (f ClaimerFunc) Next() (int, bool) {
	return f()
}

// Distributor は作業項目の分配方式を定義するインターフェース
type Distributor interface {
	// Name は戦略名を返す
	Name() string
	// Claimer は workerID 用の取得口を返す
	Claimer(workerID int) Claimer
	// AwaitExhaustion は全項目が取得されるまで待機し、ワーカーに終了を通知する
	AwaitExhaustion()
	// Abort は残りの項目を破棄し、待機中の全員を起こす
	Abort()
}

// Ensure strategies implement Distributor
var (
	_ Distributor = (*Monitor)(nil)
	_ Distributor = (*ChannelQueue)(nil)
	_ Distributor = (*RangePartition)(nil)
)

// Strategy は分配戦略の種類
type Strategy string

const (
	StrategySharedQueue Strategy = "queue"
	StrategyChannel     Strategy = "channel"
	StrategyRange       Strategy = "range"
)

// Strategies は利用可能な戦略を返す
func Strategies() []Strategy {
	return []Strategy{StrategySharedQueue, StrategyChannel, StrategyRange}
}

// Title は表示用の戦略名を返す
func (s Strategy) Title() string {
	switch s {
	case StrategySharedQueue:
		return "Individual Number Testing"
	case StrategyChannel:
		return "Individual Number Testing (channel)"
	case StrategyRange:
		return "Range Division"
	default:
		return string(s)
	}
}

// ParseStrategy は文字列を Strategy に変換する
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "queue", "shared-queue":
		return StrategySharedQueue, nil
	case "channel", "chan":
		return StrategyChannel, nil
	case "range", "partition":
		return StrategyRange, nil
	default:
		return "", fmt.Errorf("%w: %q (available: %v)", ErrUnknownStrategy, s, Strategies())
	}
}

// New は戦略に応じた Distributor を作成する
// 項目 1..maxNumber はワーカーが観測する前にすべて投入される
func New(strategy Strategy, workers, maxNumber int) (Distributor, error) {
	switch strategy {
	case StrategySharedQueue:
		return NewMonitor(maxNumber), nil
	case StrategyChannel:
		return NewChannelQueue(maxNumber), nil
	case StrategyRange:
		if workers < 1 {
			return nil, fmt.Errorf("range partition needs at least one worker, got %d", workers)
		}
		return NewRangePartition(workers, maxNumber), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
}
