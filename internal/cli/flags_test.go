package cli

import (
	"reflect"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestNewFlags(t *testing.T) {
	flags := NewFlags()

	// Test default values
	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"OutputDir", flags.OutputDir, "./locales"},
		{"Source", flags.Source, "zh-CN"},
		{"MaxWorkers", flags.MaxWorkers, 5},
		{"MaxRetries", flags.MaxRetries, 3},
		{"RetryDelay", flags.RetryDelay, time.Second},
		{"RetryMultiplier", flags.RetryMultiplier, 2.0},
		{"BatchDelay", flags.BatchDelay, time.Duration(0)},
		{"RequestTimeout", flags.RequestTimeout, 60 * time.Second},
		{"RequestsPerSecond", flags.RequestsPerSecond, 0.0},
		{"Provider", flags.Provider, "openai"},
		{"BreakerMaxFailures", flags.BreakerMaxFailures, 10},
		{"BreakerTimeout", flags.BreakerTimeout, 30 * time.Second},
		{"ServerAddress", flags.ServerAddress, ":8080"},
		{"HistoryDB", flags.HistoryDB, DefaultHistoryDB()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !reflect.DeepEqual(tt.got, tt.expected) {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}

	// Test boolean defaults (should be false)
	boolTests := []struct {
		name  string
		value bool
	}{
		{"Archive", flags.Archive},
		{"ListModels", flags.ListModels},
		{"Strict", flags.Strict},
		{"Verbose", flags.Verbose},
	}

	for _, tt := range boolTests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != false {
				t.Errorf("%s = %v, want false", tt.name, tt.value)
			}
		})
	}

	// Test string defaults (should be empty)
	stringTests := []struct {
		name  string
		value string
	}{
		{"CfgFile", flags.CfgFile},
		{"Format", flags.Format},
		{"BatchFile", flags.BatchFile},
		{"Model", flags.Model},
		{"BaseURL", flags.BaseURL},
		{"Fallback", flags.Fallback},
	}

	for _, tt := range stringTests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Errorf("%s = %v, want empty string", tt.name, tt.value)
			}
		})
	}
}

func TestFlags_ResolveFromConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("output.directory", "/srv/locales")
	viper.Set("translate.languages", []string{"en", "kr"})
	viper.Set("translate.aliases", map[string]interface{}{"eng": "en"})
	viper.Set("translate.source", "ja")
	viper.Set("translate.max_workers", 8)
	viper.Set("translate.max_retries", 4)
	viper.Set("translate.retry_delay", "250ms")
	viper.Set("translate.retry_multiplier", 1.5)
	viper.Set("translate.batch_delay", "2s")
	viper.Set("translate.request_timeout", "10s")
	viper.Set("translate.requests_per_second", 3)
	viper.Set("provider.name", "gemini")
	viper.Set("provider.model", "gemini-2.5-pro")
	viper.Set("provider.fallback", "openai")
	viper.Set("breaker.max_failures", 0)
	viper.Set("breaker.timeout", "1m")
	viper.Set("history.database", "")
	viper.Set("server.address", "127.0.0.1:9000")

	flags := NewFlags()
	flags.Resolve()

	if flags.OutputDir != "/srv/locales" {
		t.Errorf("OutputDir = %q", flags.OutputDir)
	}
	if !reflect.DeepEqual(flags.Languages, []string{"en", "kr"}) {
		t.Errorf("Languages = %v", flags.Languages)
	}
	if flags.Aliases["eng"] != "en" {
		t.Errorf("Aliases = %v", flags.Aliases)
	}
	if flags.Source != "ja" || flags.MaxWorkers != 8 || flags.MaxRetries != 4 {
		t.Errorf("translate settings = %q %d %d", flags.Source, flags.MaxWorkers, flags.MaxRetries)
	}
	if flags.RetryDelay != 250*time.Millisecond || flags.RetryMultiplier != 1.5 {
		t.Errorf("retry = %v x%v", flags.RetryDelay, flags.RetryMultiplier)
	}
	if flags.BatchDelay != 2*time.Second || flags.RequestTimeout != 10*time.Second || flags.RequestsPerSecond != 3 {
		t.Errorf("pacing = %v %v %v", flags.BatchDelay, flags.RequestTimeout, flags.RequestsPerSecond)
	}
	if flags.Provider != "gemini" || flags.Model != "gemini-2.5-pro" || flags.Fallback != "openai" {
		t.Errorf("provider = %q %q %q", flags.Provider, flags.Model, flags.Fallback)
	}
	if flags.BreakerMaxFailures != 0 || flags.BreakerTimeout != time.Minute {
		t.Errorf("breaker = %d %v", flags.BreakerMaxFailures, flags.BreakerTimeout)
	}
	if flags.HistoryDB != "" || flags.ServerAddress != "127.0.0.1:9000" {
		t.Errorf("history = %q, server = %q", flags.HistoryDB, flags.ServerAddress)
	}
}
