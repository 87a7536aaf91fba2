package sync

// Config holds tunables for the synchronization engine.
type Config struct {
	// BatchSize is the number of records per storage transaction.
	BatchSize int `mapstructure:"batch_size" default:"50"`
	// InactiveWindowDays bounds how far back full mode looks for recently
	// deactivated records.
	InactiveWindowDays int `mapstructure:"inactive_window_days" default:"30"`
	// OverlapMinutes is subtracted from the stored high-water mark when
	// deriving an incremental cursor, so clock skew cannot hide updates.
	OverlapMinutes int `mapstructure:"overlap_minutes" default:"60"`
}
