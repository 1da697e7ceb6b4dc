package engine

import "time"

// Config tunes the engine's background loops and delivery behavior.
type Config struct {
	QueueInterval       time.Duration `env:"ENGINE_QUEUE_INTERVAL" envDefault:"1s"`
	ScheduleInterval    time.Duration `env:"ENGINE_SCHEDULE_INTERVAL" envDefault:"1m"`
	BatchSize           int           `env:"ENGINE_BATCH_SIZE" envDefault:"50"`
	MaxAttempts         int           `env:"ENGINE_MAX_ATTEMPTS" envDefault:"3"`
	DispatchConcurrency int           `env:"ENGINE_DISPATCH_CONCURRENCY" envDefault:"8"`
	SendTimeout         time.Duration `env:"ENGINE_SEND_TIMEOUT" envDefault:"10s"`
	HistoryRetention    time.Duration `env:"ENGINE_HISTORY_RETENTION" envDefault:"2160h"` // 90 days
}
