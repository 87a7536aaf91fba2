package archive

// Config controls the snapshot archive.
type Config struct {
	// Enabled turns on page snapshot archiving.
	Enabled bool `mapstructure:"enabled" default:"false"`
	// Prefix is the object key prefix inside the bucket.
	Prefix string `mapstructure:"prefix" default:"snapshots"`
}
