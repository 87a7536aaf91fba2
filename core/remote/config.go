package remote

// Config holds configuration for the ticketing platform API client.
type Config struct {
	// BaseURL is the platform instance URL (e.g. https://corp.example.com).
	BaseURL string `mapstructure:"base_url" default:""`
	// Username is the API user for basic authentication.
	Username string `mapstructure:"username" default:""`
	// Password is the API password for basic authentication.
	Password string `mapstructure:"password" default:""`
	// PageLimit is the number of records requested per page.
	PageLimit int `mapstructure:"page_limit" default:"1000"`
	// MaxRetries bounds retry attempts for transient failures per request.
	MaxRetries int `mapstructure:"max_retries" default:"3"`
	// TimeoutSeconds is the per-request timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// InsecureSkipVerify disables TLS certificate verification. Needed for
	// instances behind corporate proxies with self-signed chains.
	InsecureSkipVerify bool `mapstructure:"insecure_skip_verify" default:"false"`
	// ThrottleMillis is the pause between consecutive page fetches, to avoid
	// overloading the API.
	ThrottleMillis int `mapstructure:"throttle_millis" default:"200"`
}
