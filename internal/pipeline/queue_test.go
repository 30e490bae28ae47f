package pipeline

import (
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"flipfinder/internal/models"
)

func TestNewDealQueue(t *testing.T) {
	logger := logrus.New()
	q := NewDealQueue(10, logger)
	assert.NotNil(t, q)
	assert.Equal(t, 10, q.maxSize)
	assert.False(t, q.IsClosed())
}

func TestDealQueue_Push(t *testing.T) {
	logger := logrus.New()
	q := NewDealQueue(2, logger)

	// Test successful push
	batch := &DealBatch{RunID: "run-1", Deals: []*models.Deal{{PropertyID: "MLS1"}}}
	err := q.Push(batch)
	assert.NoError(t, err)
	assert.Equal(t, 1, q.Len())

	// Test queue full
	for i := 0; i < 2; i++ {
		extra := &DealBatch{RunID: "run-1", Deals: []*models.Deal{{PropertyID: "MLS2"}}}
		_ = q.Push(extra)
	}
	err = q.Push(batch)
	assert.Equal(t, ErrQueueFull, err)

	// Test closed queue
	q.Close()
	err = q.Push(batch)
	assert.Equal(t, ErrQueueClosed, err)
}

func TestDealQueue_Subscribe(t *testing.T) {
	logger := logrus.New()
	q := NewDealQueue(10, logger)

	var processed []*models.Deal
	var runID string
	var mu sync.Mutex

	q.Subscribe(func(batch *DealBatch) error {
		mu.Lock()
		processed = append(processed, batch.Deals...)
		runID = batch.RunID
		mu.Unlock()
		return nil
	})

	q.Start()

	testBatch := &DealBatch{
		RunID: "run-1",
		Deals: []*models.Deal{{PropertyID: "MLS1"}, {PropertyID: "MLS2"}},
	}
	err := q.Push(testBatch)
	assert.NoError(t, err)

	// Wait for processing
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	assert.Equal(t, 2, len(processed))
	assert.Equal(t, "MLS1", processed[0].PropertyID)
	assert.Equal(t, "MLS2", processed[1].PropertyID)
	assert.Equal(t, "run-1", runID)
	mu.Unlock()
}

func TestDealQueue_Close(t *testing.T) {
	logger := logrus.New()
	q := NewDealQueue(10, logger)

	// Test first close
	err := q.Close()
	assert.NoError(t, err)
	assert.True(t, q.IsClosed())

	// Test second close (should be no-op)
	err = q.Close()
	assert.NoError(t, err)
}
