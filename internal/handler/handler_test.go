// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/olegiv/otrans-go/internal/engine"
	"github.com/olegiv/otrans-go/internal/logging"
	"github.com/olegiv/otrans-go/internal/model"
	"github.com/olegiv/otrans-go/internal/scanner"
	"github.com/olegiv/otrans-go/internal/store"
	"github.com/olegiv/otrans-go/internal/testutil"
	"github.com/olegiv/otrans-go/internal/translate"
)

type stubEngine struct {
	err         error
	translateID int64
	improve     bool
	multi       *engine.MultiResult
	text        string
	report      *engine.DraftReport
	requests    []engine.DraftRequest
	gapFilters  scanner.GapFilters
	pending     []model.PendingTranslation
}

func (s *stubEngine) TranslatePost(_ context.Context, _ int64, _ string, improve bool) (int64, error) {
	s.improve = improve
	return s.translateID, s.err
}

func (s *stubEngine) TranslateAllLanguages(context.Context, int64, []string) (*engine.MultiResult, error) {
	return s.multi, s.err
}

func (s *stubEngine) RetranslatePost(context.Context, int64) (int64, error) {
	return s.translateID, s.err
}

func (s *stubEngine) TranslateText(context.Context, string, string, string) (string, error) {
	return s.text, s.err
}

func (s *stubEngine) ResumeJob(context.Context, string) (*engine.MultiResult, error) {
	return s.multi, s.err
}

func (s *stubEngine) CreateDrafts(_ context.Context, requests []engine.DraftRequest) (*engine.DraftReport, error) {
	s.requests = requests
	return s.report, s.err
}

func (s *stubEngine) CreateDraftsFromGaps(_ context.Context, filters scanner.GapFilters) (*engine.DraftReport, error) {
	s.gapFilters = filters
	return s.report, s.err
}

func (s *stubEngine) PendingTranslations(context.Context) ([]model.PendingTranslation, error) {
	return s.pending, s.err
}

type stubScanner struct {
	err        error
	gaps       []model.TranslationGap
	gapFilters scanner.GapFilters
	summary    *model.GapSummary
	existing   []model.ExistingTranslation
	catalog    []model.UIStringStatus
}

func (s *stubScanner) FindGaps(_ context.Context, filters scanner.GapFilters) ([]model.TranslationGap, error) {
	s.gapFilters = filters
	return s.gaps, s.err
}

func (s *stubScanner) Summary(context.Context) (*model.GapSummary, error) {
	return s.summary, s.err
}

func (s *stubScanner) FindExistingTranslations(context.Context, scanner.ExistingFilters) ([]model.ExistingTranslation, error) {
	return s.existing, s.err
}

func (s *stubScanner) StringCatalog(context.Context) ([]model.UIStringStatus, error) {
	return s.catalog, s.err
}

type stubJobs struct {
	jobs map[string]*model.TranslationJob
}

func (s *stubJobs) Get(_ context.Context, id string) (*model.TranslationJob, error) {
	job, ok := s.jobs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return job, nil
}

type stubStrings struct {
	registered []model.UIString
	setLang    string
	setSource  string
	setValue   string
}

func (s *stubStrings) Register(_ context.Context, str model.UIString) error {
	s.registered = append(s.registered, str)
	return nil
}

func (s *stubStrings) SetTranslation(_ context.Context, lang, source, value string) error {
	s.setLang, s.setSource, s.setValue = lang, source, value
	return nil
}

type testServer struct {
	engine  *stubEngine
	scanner *stubScanner
	jobs    *stubJobs
	strings *stubStrings
	srv     *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{
		engine:  &stubEngine{},
		scanner: &stubScanner{},
		jobs:    &stubJobs{jobs: make(map[string]*model.TranslationJob)},
		strings: &stubStrings{},
	}
	h := New(Options{
		Engine:  ts.engine,
		Scanner: ts.scanner,
		Jobs:    ts.jobs,
		Strings: ts.strings,
		Events:  logging.NewEventRing(10),
		Usage:   logging.NewUsageRing(10),
		Logger:  testutil.TestLogger(),
	})
	ts.srv = httptest.NewServer(h.Routes())
	t.Cleanup(ts.srv.Close)
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, body string) (*http.Response, map[string]json.RawMessage) {
	t.Helper()
	req, err := http.NewRequest(method, ts.srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })

	var envelope map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return resp, envelope
}

func TestTranslatePostEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.engine.translateID = 7

	resp, envelope := ts.do(t, http.MethodPost, "/api/translate/3", `{"lang":"de"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var data struct {
		SourceID     int64  `json:"source_id"`
		Lang         string `json:"lang"`
		TranslatedID int64  `json:"translated_id"`
	}
	if err := json.Unmarshal(envelope["data"], &data); err != nil {
		t.Fatalf("decoding data: %v", err)
	}
	if data.SourceID != 3 || data.Lang != "de" || data.TranslatedID != 7 {
		t.Errorf("data = %+v", data)
	}
	if !ts.engine.improve {
		t.Error("improvement not enabled by default")
	}
}

func TestTranslatePostImproveFlag(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := ts.do(t, http.MethodPost, "/api/translate/3", `{"lang":"de","improve":false}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ts.engine.improve {
		t.Error("improve=false not passed through")
	}
}

func TestTranslatePostValidation(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := ts.do(t, http.MethodPost, "/api/translate/not-a-number", `{"lang":"de"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", resp.StatusCode)
	}

	resp, _ = ts.do(t, http.MethodPost, "/api/translate/3", `{}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing lang status = %d, want 400", resp.StatusCode)
	}
}

func TestPipelineErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", store.ErrNotFound, http.StatusNotFound},
		{"not configured", translate.ErrNotConfigured, http.StatusServiceUnavailable},
		{"provider rejection", &translate.APIError{Status: 403, Message: "quota"}, http.StatusBadGateway},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.engine.err = tt.err

			resp, envelope := ts.do(t, http.MethodPost, "/api/translate/3", `{"lang":"de"}`)
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
			if _, ok := envelope["error"]; !ok {
				t.Error("error envelope missing")
			}
		})
	}
}

func TestTranslateTextEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.engine.text = "Hallo"

	resp, envelope := ts.do(t, http.MethodPost, "/api/translate/text",
		`{"text":"Hello","target":"de"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var data struct {
		Translated string `json:"translated"`
	}
	_ = json.Unmarshal(envelope["data"], &data)
	if data.Translated != "Hallo" {
		t.Errorf("translated = %q", data.Translated)
	}

	resp, _ = ts.do(t, http.MethodPost, "/api/translate/text", `{"text":"Hello"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing target status = %d, want 400", resp.StatusCode)
	}
}

func TestTranslateAllReturnsPartialResult(t *testing.T) {
	ts := newTestServer(t)
	ts.engine.multi = &engine.MultiResult{
		JobID:        "11111111-1111-1111-1111-111111111111",
		Translations: map[string]int64{"de": 5},
		Errors:       map[string]string{"fr": "backend down"},
	}
	ts.engine.err = errors.New("fr failed")

	resp, envelope := ts.do(t, http.MethodPost, "/api/translate/3/all", `{"languages":["de","fr"]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want partial result with 200", resp.StatusCode)
	}
	var data engine.MultiResult
	if err := json.Unmarshal(envelope["data"], &data); err != nil {
		t.Fatalf("decoding data: %v", err)
	}
	if data.Translations["de"] != 5 || data.Errors["fr"] == "" {
		t.Errorf("data = %+v", data)
	}
}

func TestGetJobEndpoint(t *testing.T) {
	ts := newTestServer(t)
	job := model.NewTranslationJob(1, []string{"de", "fr"})
	job.SetLanguageStatus("de", model.JobStatusCompleted, "")
	ts.jobs.jobs[job.ID] = job

	resp, envelope := ts.do(t, http.MethodGet, "/api/jobs/"+job.ID, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var data struct {
		Remaining []string `json:"remaining"`
	}
	_ = json.Unmarshal(envelope["data"], &data)
	if len(data.Remaining) != 1 || data.Remaining[0] != "fr" {
		t.Errorf("remaining = %v", data.Remaining)
	}

	resp, _ = ts.do(t, http.MethodGet, "/api/jobs/not-a-uuid", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid id status = %d, want 400", resp.StatusCode)
	}

	resp, _ = ts.do(t, http.MethodGet, "/api/jobs/22222222-2222-2222-2222-222222222222", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown job status = %d, want 404", resp.StatusCode)
	}
}

func TestGapsEndpointParsesFilters(t *testing.T) {
	ts := newTestServer(t)
	ts.scanner.gaps = []model.TranslationGap{{SourceID: 1, MissingLanguages: []string{"de"}}}

	resp, envelope := ts.do(t, http.MethodGet, "/api/gaps?types=article,course&languages=de", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	got := ts.scanner.gapFilters
	if len(got.Types) != 2 || got.Types[0] != "article" || got.Types[1] != "course" {
		t.Errorf("types = %v", got.Types)
	}
	if len(got.Languages) != 1 || got.Languages[0] != "de" {
		t.Errorf("languages = %v", got.Languages)
	}

	var data []model.TranslationGap
	_ = json.Unmarshal(envelope["data"], &data)
	if len(data) != 1 || data[0].SourceID != 1 {
		t.Errorf("data = %+v", data)
	}
}

func TestRegisterStringEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := ts.do(t, http.MethodPost, "/api/strings",
		`{"name":"read_more","source":"Read more","group":"theme"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	if len(ts.strings.registered) != 1 || ts.strings.registered[0].Name != "read_more" {
		t.Errorf("registered = %+v", ts.strings.registered)
	}

	resp, _ = ts.do(t, http.MethodPost, "/api/strings", `{"name":"x"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing source status = %d, want 400", resp.StatusCode)
	}
}

func TestSetStringTranslationEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := ts.do(t, http.MethodPut, "/api/strings/translation",
		`{"lang":"de","source":"Read more","value":"Weiterlesen"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ts.strings.setLang != "de" || ts.strings.setValue != "Weiterlesen" {
		t.Errorf("recorded = %q %q %q", ts.strings.setLang, ts.strings.setSource, ts.strings.setValue)
	}
}

func TestCreateDraftsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.engine.report = &engine.DraftReport{
		Results: []engine.DraftResult{
			{SourceID: 1, Lang: "de", Status: engine.DraftCreated, DraftID: 2},
			{SourceID: 1, Lang: "fr", Status: engine.DraftExists, DraftID: 3},
		},
		Created: 1,
		Exists:  1,
	}

	resp, envelope := ts.do(t, http.MethodPost, "/api/drafts", `{"languages":["de"]}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	// Without explicit pairs the request runs over the scanned gaps.
	if len(ts.engine.gapFilters.Languages) != 1 || ts.engine.gapFilters.Languages[0] != "de" {
		t.Errorf("gap filters = %+v", ts.engine.gapFilters)
	}
	var report engine.DraftReport
	_ = json.Unmarshal(envelope["data"], &report)
	if len(report.Results) != 2 || report.Created != 1 || report.Exists != 1 {
		t.Errorf("report = %+v", report)
	}
}

func TestCreateDraftsEndpointExplicitPairs(t *testing.T) {
	ts := newTestServer(t)
	ts.engine.report = &engine.DraftReport{}

	resp, _ := ts.do(t, http.MethodPost, "/api/drafts",
		`{"requests":[{"source_id":4,"languages":["de","fr"]}]}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	if len(ts.engine.requests) != 1 || ts.engine.requests[0].SourceID != 4 ||
		len(ts.engine.requests[0].Languages) != 2 {
		t.Errorf("requests = %+v", ts.engine.requests)
	}
}

func TestPendingDraftsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.engine.pending = []model.PendingTranslation{
		{ID: 9, SourceID: 4, Title: "Entwurf", Lang: "de"},
	}

	resp, envelope := ts.do(t, http.MethodGet, "/api/drafts/pending", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var data []model.PendingTranslation
	_ = json.Unmarshal(envelope["data"], &data)
	if len(data) != 1 || data[0].SourceID != 4 || data[0].ID != 9 {
		t.Errorf("data = %+v", data)
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, envelope := ts.do(t, http.MethodGet, "/healthz", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var status string
	_ = json.Unmarshal(envelope["status"], &status)
	if status != "ok" {
		t.Errorf("status = %q", status)
	}
}

func TestHealthEndpointDegraded(t *testing.T) {
	ts := &testServer{
		engine:  &stubEngine{},
		scanner: &stubScanner{},
		jobs:    &stubJobs{jobs: make(map[string]*model.TranslationJob)},
		strings: &stubStrings{},
	}
	h := New(Options{
		Engine:  ts.engine,
		Scanner: ts.scanner,
		Jobs:    ts.jobs,
		Strings: ts.strings,
		Events:  logging.NewEventRing(10),
		Usage:   logging.NewUsageRing(10),
		DB:      PingerFunc(func(context.Context) error { return errors.New("db down") }),
		Logger:  testutil.TestLogger(),
	})
	ts.srv = httptest.NewServer(h.Routes())
	t.Cleanup(ts.srv.Close)

	resp, _ := ts.do(t, http.MethodGet, "/healthz", "")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}

func TestEventLogEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, envelope := ts.do(t, http.MethodGet, "/api/log", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var data struct {
		Count int `json:"count"`
	}
	_ = json.Unmarshal(envelope["data"], &data)
	if data.Count != 0 {
		t.Errorf("count = %d", data.Count)
	}
}
