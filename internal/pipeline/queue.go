package pipeline

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"flipfinder/internal/models"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// DealBatch is the unit of work on the persistence queue: the deals of
// one analysis run, tagged with its run ID.
type DealBatch struct {
	RunID string
	Deals []*models.Deal
}

// DealQueue is an in-memory queue of analyzed deal batches awaiting
// persistence.
type DealQueue struct {
	items    chan *DealBatch
	done     chan struct{}
	maxSize  int
	closed   bool
	mu       sync.RWMutex
	logger   *logrus.Logger
	handlers []func(*DealBatch) error
}

// NewDealQueue creates a queue with the specified buffer size.
func NewDealQueue(bufferSize int, logger *logrus.Logger) *DealQueue {
	return &DealQueue{
		items:    make(chan *DealBatch, bufferSize),
		done:     make(chan struct{}),
		maxSize:  bufferSize,
		logger:   logger,
		handlers: make([]func(*DealBatch) error, 0),
	}
}

// Push adds a batch of deals to the queue.
func (q *DealQueue) Push(batch *DealBatch) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return ErrQueueClosed
	}
	q.mu.RUnlock()

	// Non-blocking send to prevent deadlocks
	select {
	case q.items <- batch:
		q.logger.WithField("batch_size", len(batch.Deals)).Debug("Pushed batch to queue")
		return nil
	default:
		return ErrQueueFull
	}
}

// Subscribe adds a handler function that will be called for each batch.
func (q *DealQueue) Subscribe(handler func(*DealBatch) error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers = append(q.handlers, handler)
}

// Start begins processing items in the queue.
func (q *DealQueue) Start() {
	go q.process()
}

func (q *DealQueue) process() {
	for {
		select {
		case <-q.done:
			return
		case batch := <-q.items:
			q.processBatch(batch)
		}
	}
}

func (q *DealQueue) processBatch(batch *DealBatch) {
	q.mu.RLock()
	handlers := q.handlers
	q.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(batch); err != nil {
			q.logger.WithError(err).Error("Handler failed to process batch")
		}
	}
}

// Close stops the queue and prevents new items from being added.
func (q *DealQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	q.closed = true
	close(q.done)
	close(q.items)
	return nil
}

// Len returns the current number of batches in the queue.
func (q *DealQueue) Len() int {
	return len(q.items)
}

// IsClosed returns whether the queue has been closed.
func (q *DealQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
