package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"codeberg.org/snonux/polyglot/internal/processor"
	"codeberg.org/snonux/polyglot/internal/testutil"
	"codeberg.org/snonux/polyglot/internal/translation"
)

func newTestServer(t *testing.T, mock *testutil.MockProvider) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	opts := processor.DefaultOptions()
	opts.Retry = translation.RetryPolicy{MaxRetries: 1, Multiplier: 1}
	proc, err := processor.NewProcessor(mock, opts)
	if err != nil {
		t.Fatalf("NewProcessor failed: %v", err)
	}
	return New(proc)
}

func doRequest(t *testing.T, s *Server, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, &testutil.MockProvider{})
	w := doRequest(t, s, http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestLanguages(t *testing.T) {
	s := newTestServer(t, &testutil.MockProvider{})
	w := doRequest(t, s, http.MethodGet, "/v1/languages", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var body struct {
		Languages []struct {
			Code string `json:"code"`
			Name string `json:"name"`
		} `json:"languages"`
		Aliases map[string]string `json:"aliases"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Languages) == 0 {
		t.Error("expected supported languages")
	}
	if body.Aliases["kr"] != "ko" {
		t.Errorf("alias kr = %q, want ko", body.Aliases["kr"])
	}
}

func TestTranslate(t *testing.T) {
	mock := &testutil.MockProvider{
		Errors: map[string]error{"坏": errors.New("provider rejected text")},
	}
	s := newTestServer(t, mock)

	body := []byte(`{"document":{"b":"你好","a":{"c":"坏"},"n":1},"languages":["kr","xx"],"source":"zh-TW"}`)
	w := doRequest(t, s, http.MethodPost, "/v1/translate", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		RunID     string                     `json:"run_id"`
		Documents map[string]json.RawMessage `json:"documents"`
		Outcomes  map[string]OutcomeResponse `json:"outcomes"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v\n%s", err, w.Body.String())
	}
	if resp.RunID == "" {
		t.Error("missing run_id")
	}

	kr := resp.Outcomes["kr"]
	if kr.Status != string(processor.StatusPartial) || kr.Canonical != "ko" || kr.Failed != 1 {
		t.Errorf("kr outcome = %+v", kr)
	}
	if len(kr.FailedPaths) != 1 || kr.FailedPaths[0] != "a.c" {
		t.Errorf("kr failed paths = %v", kr.FailedPaths)
	}

	want := `{"b":"[ko] 你好","a":{"c":"[untranslated] 坏"},"n":1}`
	if got := string(resp.Documents["kr"]); got != want {
		t.Errorf("kr document = %s, want %s", got, want)
	}

	xx := resp.Outcomes["xx"]
	if xx.Status != string(processor.StatusFailed) || xx.Error == "" {
		t.Errorf("xx outcome = %+v", xx)
	}
	if _, ok := resp.Documents["xx"]; ok {
		t.Error("unsupported language should not produce a document")
	}

	for _, call := range mock.Calls() {
		if call.SourceLanguage != "zh-TW" {
			t.Errorf("source language = %q, want zh-TW", call.SourceLanguage)
		}
	}
}

func TestTranslate_BadRequests(t *testing.T) {
	s := newTestServer(t, &testutil.MockProvider{})

	tests := []struct {
		name string
		body string
	}{
		{"not json", `nope`},
		{"no document", `{"languages":["en"]}`},
		{"no languages", `{"document":{"a":"b"}}`},
		{"array document", `{"document":["a"],"languages":["en"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, s, http.MethodPost, "/v1/translate", []byte(tt.body))
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (body %s)", w.Code, w.Body.String())
			}
		})
	}
}
