package app

import "time"

// Config is read from the environment, see cmd/main.go.
type Config struct {
	BadgerFilepath            string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel                  string        `env:"LOG_LEVEL,default=INFO"`
	JWTSecret                 string        `env:"JWT_SECRET,required=true"`
	JWTIssuer                 string        `env:"JWT_ISSUER,default=chat-core"`
	TokenTTL                  time.Duration `env:"TOKEN_TTL,default=24h"`
	RateLimit                 int           `env:"RATE_LIMIT,default=5"`
	RateWindow                time.Duration `env:"RATE_WINDOW,default=60s"`
	RateSweepInterval         time.Duration `env:"RATE_SWEEP_INTERVAL,default=1m"`
	OrphanPolicy              string        `env:"ORPHAN_POLICY,default=cascade"`
	MaxThreadDepth            int           `env:"MAX_THREAD_DEPTH,default=1000"`
	ThreadBatchSize           int           `env:"THREAD_BATCH_SIZE,default=500"`
	MaxContentLength          int           `env:"MAX_CONTENT_LENGTH,default=4000"`
	CensoredWords             string        `env:"CENSORED_WORDS"`
	ModerationCharReplacement string        `env:"MODERATION_CHARACTER_REPLACEMENT,default=*"`
	EventShards               int           `env:"EVENT_SHARDS,default=8"`
	EventBufferSize           int           `env:"EVENT_BUFFER_SIZE,default=256"`
	SinkTimeout               time.Duration `env:"SINK_TIMEOUT,default=5s"`
	PublishTimeout            time.Duration `env:"PUBLISH_TIMEOUT,default=1s"`
	RelayInterval             time.Duration `env:"RELAY_INTERVAL,default=5s"`
	RelayGrace                time.Duration `env:"RELAY_GRACE,default=10s"`
	RestartInterval           time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	MetricInterval            time.Duration `env:"METRIC_INTERVAL,default=15s"`
	LowCapacityThreshold      int           `env:"LOW_CAPACITY_THRESHOLD,default=0"`
	AccessStartHour           int           `env:"ACCESS_START_HOUR,default=0"`
	AccessEndHour             int           `env:"ACCESS_END_HOUR,default=0"`
	MetricsHost               string        `env:"METRICS_HOST,default=localhost"`
	MetricsPort               int           `env:"METRICS_PORT,default=9090"`
}
