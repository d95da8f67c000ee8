package cli

import (
	"time"

	"github.com/spf13/viper"
)

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile    string
	OutputDir  string
	Format     string
	BatchFile  string
	Archive    bool
	History    int
	ListModels bool
	Strict     bool
	Verbose    bool

	// Translation flags
	Languages         []string
	Aliases           map[string]string
	Source            string
	MaxWorkers        int
	MaxRetries        int
	RetryDelay        time.Duration
	RetryMultiplier   float64
	BatchDelay        time.Duration
	RequestTimeout    time.Duration
	RequestsPerSecond float64

	// Provider flags
	Provider string
	Model    string
	BaseURL  string
	Fallback string

	// Circuit breaker flags
	BreakerMaxFailures int
	BreakerTimeout     time.Duration

	// Storage and server
	HistoryDB     string
	ServerAddress string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		OutputDir:          "./locales",
		Source:             "zh-CN",
		MaxWorkers:         5,
		MaxRetries:         3,
		RetryDelay:         time.Second,
		RetryMultiplier:    2,
		RequestTimeout:     60 * time.Second,
		Provider:           "openai",
		BreakerMaxFailures: 10,
		BreakerTimeout:     30 * time.Second,
		HistoryDB:          DefaultHistoryDB(),
		ServerAddress:      ":8080",
	}
}

// Resolve copies the effective configuration into f. Viper returns the
// flag value when the flag was set on the command line, then the
// environment, then the config file, then the flag default.
func (f *Flags) Resolve() {
	f.OutputDir = viper.GetString("output.directory")
	f.Format = viper.GetString("output.format")

	if langs := viper.GetStringSlice("translate.languages"); len(langs) > 0 {
		f.Languages = langs
	}
	f.Aliases = viper.GetStringMapString("translate.aliases")
	f.Source = viper.GetString("translate.source")
	f.MaxWorkers = viper.GetInt("translate.max_workers")
	f.MaxRetries = viper.GetInt("translate.max_retries")
	f.RetryDelay = viper.GetDuration("translate.retry_delay")
	f.RetryMultiplier = viper.GetFloat64("translate.retry_multiplier")
	f.BatchDelay = viper.GetDuration("translate.batch_delay")
	f.RequestTimeout = viper.GetDuration("translate.request_timeout")
	f.RequestsPerSecond = viper.GetFloat64("translate.requests_per_second")

	f.Provider = viper.GetString("provider.name")
	f.Model = viper.GetString("provider.model")
	f.BaseURL = viper.GetString("provider.base_url")
	f.Fallback = viper.GetString("provider.fallback")

	f.BreakerMaxFailures = viper.GetInt("breaker.max_failures")
	f.BreakerTimeout = viper.GetDuration("breaker.timeout")

	f.HistoryDB = viper.GetString("history.database")
	f.ServerAddress = viper.GetString("server.address")
}
