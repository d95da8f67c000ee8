package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"codeberg.org/snonux/polyglot/internal/translation"
)

// MockProvider mocks a translation provider. It records every call and the
// highest number of calls that were in flight at the same time.
type MockProvider struct {
	// Translations maps source text to translated text
	Translations map[string]string
	// Errors maps source text to an error returned for it
	Errors map[string]error
	// FailLanguages lists target languages for which every call fails
	FailLanguages map[string]bool
	// FailTimes makes the first N calls fail
	FailTimes int
	// Delay is how long each call takes
	Delay time.Duration
	// ProviderName is returned by Name (default "mock")
	ProviderName string

	mu        sync.Mutex
	calls     []translation.Request
	active    int
	maxActive int
}

// Translate mocks translating text
func (m *MockProvider) Translate(ctx context.Context, req translation.Request) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	callNum := len(m.calls)
	m.active++
	if m.active > m.maxActive {
		m.maxActive = m.active
	}
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.active--
		m.mu.Unlock()
	}()

	if m.Delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(m.Delay):
		}
	}

	if callNum <= m.FailTimes {
		return "", fmt.Errorf("mock failure %d", callNum)
	}
	if m.FailLanguages[req.TargetLanguage] {
		return "", fmt.Errorf("mock provider rejects %s", req.TargetLanguage)
	}
	if err, ok := m.Errors[req.Text]; ok {
		return "", err
	}
	if out, ok := m.Translations[req.Text]; ok {
		return out, nil
	}

	// Default mock translation
	return fmt.Sprintf("[%s] %s", req.TargetLanguage, req.Text), nil
}

// Name returns the provider name
func (m *MockProvider) Name() string {
	if m.ProviderName == "" {
		return "mock"
	}
	return m.ProviderName
}

// Calls returns a copy of the recorded requests
func (m *MockProvider) Calls() []translation.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]translation.Request, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns the number of recorded calls
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// CallsFor counts the recorded calls for a target language
func (m *MockProvider) CallsFor(lang string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.TargetLanguage == lang {
			n++
		}
	}
	return n
}

// MaxActive returns the highest number of concurrent calls observed
func (m *MockProvider) MaxActive() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxActive
}

// MockSink records written documents in memory
type MockSink struct {
	Documents map[string][]byte
	Errors    map[string]error

	mu    sync.Mutex
	Calls []string
}

// Write stores data under the language code
func (m *MockSink) Write(code string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, fmt.Sprintf("WRITE %s (%d bytes)", code, len(data)))

	if err, ok := m.Errors[code]; ok {
		return "", err
	}
	if m.Documents == nil {
		m.Documents = make(map[string][]byte)
	}
	m.Documents[code] = data
	return "memory://" + code, nil
}
