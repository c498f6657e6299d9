package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRangePartitionBounds(t *testing.T) {
	tests := []struct {
		name      string
		workers   int
		maxNumber int
		workerID  int
		start     int
		end       int
	}{
		{"first of even split", 4, 100, 0, 1, 25},
		{"middle of even split", 4, 100, 1, 26, 50},
		{"last of even split", 4, 100, 3, 76, 100},
		{"last takes remainder", 3, 10, 2, 7, 10},
		{"single worker", 1, 10, 0, 1, 10},
		{"fewer items than workers, early worker", 8, 3, 0, 1, 0},
		{"fewer items than workers, last worker", 8, 3, 7, 1, 3},
		{"empty range", 4, 0, 3, 1, 0},
		{"out of range worker", 4, 100, 4, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewRangePartition(tt.workers, tt.maxNumber)
			start, end := p.Bounds(tt.workerID)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}

func TestRangePartitionCoversEachItemOnce(t *testing.T) {
	for _, workers := range []int{1, 2, 3, 7, 64} {
		for _, maxNumber := range []int{0, 1, 5, 100, 1001} {
			p := NewRangePartition(workers, maxNumber)

			seen := make(map[int]int)
			for id := range workers {
				for _, n := range p.Batch(id) {
					seen[n]++
				}
			}

			assert.Len(t, seen, max(maxNumber, 0), "workers=%d max=%d", workers, maxNumber)
			for n, count := range seen {
				assert.Equal(t, 1, count, "item %d (workers=%d max=%d)", n, workers, maxNumber)
			}
		}
	}
}

func TestRangePartitionClaimer(t *testing.T) {
	p := NewRangePartition(2, 6)

	var got []int
	c := p.Claimer(1)
	for {
		n, ok := c.Next()
		if !ok {
			break
		}
		got = append(got, n)
	}
	assert.Equal(t, []int{4, 5, 6}, got)
	assert.Equal(t, p.Batch(1), got)
}

func TestRangePartitionAbort(t *testing.T) {
	p := NewRangePartition(1, 10)
	c := p.Claimer(0)

	n, ok := c.Next()
	assert.True(t, ok)
	assert.Equal(t, 1, n)

	p.Abort()
	_, ok = c.Next()
	assert.False(t, ok)
}
