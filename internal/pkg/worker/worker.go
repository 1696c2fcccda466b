package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"warranty_shop/pkg/logger"
	"warranty_shop/pkg/metrics"
	baseModel "warranty_shop/pkg/model"
)

// Task is a unit of outbound side-effect work: a legacy warranty
// registration, a welcome email, a Stripe coupon mirror. Tasks must be
// safe to retry.
type Task interface {
	// Kind labels the task for logs and dead-letter rows.
	Kind() string

	// Ref identifies the subject (policy ID, email address) so a
	// dead-lettered task can be replayed from the admin tools.
	Ref() string

	// Run executes the side effect.
	Run(ctx context.Context) error
}

// DeadLetter is the durable record of a task that exhausted its
// retries. Replay is manual, via the admin back office.
type DeadLetter struct {
	baseModel.BaseModel
	Kind      string `gorm:"index;not null" json:"kind"`
	Ref       string `gorm:"index" json:"ref"`
	LastError string `json:"lastError"`
	Attempts  int    `json:"attempts"`
}

type queuedTask struct {
	task  Task
	retry int
}

// Outbox runs outbound side effects on a worker pool with bounded
// retries. The purchase path enqueues and moves on; a full queue or a
// permanently failing task ends up in dead_letters, never in the
// customer's response.
type Outbox struct {
	taskQueue  chan queuedTask
	retryQueue chan queuedTask
	db         *gorm.DB
	workerNum  int
	maxRetry   int
}

// NewOutbox creates an outbox with the given worker count and queue
// size. MaxRetry is fixed at 3.
func NewOutbox(db *gorm.DB, workerNum, bufferSize int) *Outbox {
	return &Outbox{
		taskQueue:  make(chan queuedTask, bufferSize),
		retryQueue: make(chan queuedTask, bufferSize/2),
		db:         db,
		workerNum:  workerNum,
		maxRetry:   3,
	}
}

// Start launches the workers and the retry loop.
func (o *Outbox) Start() {
	for i := 0; i < o.workerNum; i++ {
		go o.worker(i)
	}
	go o.retryWorker()
	logger.Log.Info("Outbox started", zap.Int("workers", o.workerNum))
}

// Enqueue submits a task without blocking. A full queue dead-letters
// the task immediately.
func (o *Outbox) Enqueue(task Task) {
	select {
	case o.taskQueue <- queuedTask{task: task}:
	default:
		logger.Log.Error("Outbox queue full, dead-lettering task",
			zap.String("kind", task.Kind()), zap.String("ref", task.Ref()))
		o.deadLetter(queuedTask{task: task}, nil)
	}
}

func (o *Outbox) worker(id int) {
	for qt := range o.taskQueue {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := qt.task.Run(ctx)
		cancel()

		if err == nil {
			continue
		}

		logger.Log.Warn("Outbox task failed",
			zap.Int("worker", id),
			zap.String("kind", qt.task.Kind()),
			zap.String("ref", qt.task.Ref()),
			zap.Int("attempt", qt.retry+1),
			zap.Error(err))

		if qt.retry < o.maxRetry {
			qt.retry++
			select {
			case o.retryQueue <- qt:
			default:
				o.deadLetter(qt, err)
			}
		} else {
			o.deadLetter(qt, err)
		}
	}
}

func (o *Outbox) retryWorker() {
	for qt := range o.retryQueue {
		// Backoff grows with the attempt number.
		time.Sleep(time.Duration(qt.retry) * 2 * time.Second)

		select {
		case o.taskQueue <- qt:
		default:
			o.deadLetter(qt, nil)
		}
	}
}

func (o *Outbox) deadLetter(qt queuedTask, err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}

	row := &DeadLetter{
		Kind:      qt.task.Kind(),
		Ref:       qt.task.Ref(),
		LastError: msg,
		Attempts:  qt.retry,
	}
	metrics.Default.DeadLettersTotal.Inc()
	if dbErr := o.db.Create(row).Error; dbErr != nil {
		logger.Log.Error("Failed to persist dead letter",
			zap.String("kind", qt.task.Kind()),
			zap.String("ref", qt.task.Ref()),
			zap.Error(dbErr))
	}
}

// TaskFunc adapts a closure into a Task.
type TaskFunc struct {
	TaskKind string
	TaskRef  string
	Fn       func(ctx context.Context) error
}

func (t TaskFunc) Kind() string                  { return t.TaskKind }
func (t TaskFunc) Ref() string                   { return t.TaskRef }
func (t TaskFunc) Run(ctx context.Context) error { return t.Fn(ctx) }
