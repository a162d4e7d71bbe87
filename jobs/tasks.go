package jobs

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDashboardWarmup pre-fills the dashboard section cache.
	TaskDashboardWarmup = "dashboard:warmup"
	// TaskLowStockScan raises alerts for items below their minimum stock.
	TaskLowStockScan = "inventory:low_stock_scan"
)

// Payload is shared by every task. RequestID correlates worker logs with the
// enqueue that caused them.
type Payload struct {
	RequestID  string    `json:"request_id"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

var builders = map[string]func() (*asynq.Task, error){
	TaskDashboardWarmup: NewDashboardWarmupTask,
	TaskLowStockScan:    NewLowStockScanTask,
}

// TaskNames lists every task the worker handles.
func TaskNames() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewTask builds the task registered under name.
func NewTask(name string) (*asynq.Task, error) {
	build, ok := builders[name]
	if !ok {
		return nil, fmt.Errorf("jobs: unknown task %q", name)
	}
	return build()
}

// NewDashboardWarmupTask constructs a dashboard warmup task.
func NewDashboardWarmupTask() (*asynq.Task, error) {
	return newTask(TaskDashboardWarmup, asynq.MaxRetry(2), asynq.Timeout(2*time.Minute))
}

// NewLowStockScanTask constructs a low-stock scan task.
func NewLowStockScanTask() (*asynq.Task, error) {
	return newTask(TaskLowStockScan, asynq.MaxRetry(3), asynq.Timeout(5*time.Minute))
}

func newTask(typename string, opts ...asynq.Option) (*asynq.Task, error) {
	data, err := json.Marshal(Payload{RequestID: uuid.NewString(), EnqueuedAt: time.Now().UTC()})
	if err != nil {
		return nil, err
	}
	opts = append(opts, asynq.Queue(QueueDefault))
	return asynq.NewTask(typename, data, opts...), nil
}

func decodePayload(t *asynq.Task) (Payload, error) {
	var payload Payload
	if len(t.Payload()) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("jobs: decode %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}
	return payload, nil
}
