package pipeline

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"flipfinder/config"
	"flipfinder/internal/database"
)

// TransactionRunner is the subset of *gorm.DB the persister needs. It is
// an interface so tests can substitute a mock.
type TransactionRunner interface {
	Transaction(fc func(*gorm.DB) error, opts ...*sql.TxOptions) error
}

// BatchPersister drains analyzed deal batches from the queue and writes
// them to the database with transaction and retry logic.
type BatchPersister struct {
	db     TransactionRunner
	logger *logrus.Logger
	config *config.Config
	queue  *DealQueue
}

func NewBatchPersister(db TransactionRunner, queue *DealQueue, cfg *config.Config, logger *logrus.Logger) *BatchPersister {
	return &BatchPersister{
		db:     db,
		queue:  queue,
		config: cfg,
		logger: logger,
	}
}

// Start registers the persister on the queue. The queue's processing
// goroutine delivers each batch to the handler exactly once; closing
// the queue stops delivery.
func (p *BatchPersister) Start() {
	p.queue.Subscribe(p.processBatch)
}

// processBatch writes a single batch, retrying transient failures.
func (p *BatchPersister) processBatch(batch *DealBatch) error {
	var err error
	for attempt := 0; attempt <= p.config.Pipeline.MaxRetries; attempt++ {
		if attempt > 0 {
			p.logger.Infof("Retrying batch persistence, attempt %d of %d", attempt, p.config.Pipeline.MaxRetries)
			time.Sleep(time.Duration(p.config.Pipeline.RetryDelay) * time.Second)
		}

		err = p.db.Transaction(func(tx *gorm.DB) error {
			if err := database.UpsertDeals(tx, batch.RunID, batch.Deals); err != nil {
				return fmt.Errorf("failed to upsert deals batch: %w", err)
			}
			return nil
		})

		if err == nil {
			p.logger.Infof("Successfully persisted batch of %d deals", len(batch.Deals))
			return nil
		}

		p.logger.Errorf("Batch persistence failed: %v", err)
	}

	return fmt.Errorf("failed to persist batch after %d attempts: %w", p.config.Pipeline.MaxRetries, err)
}
