package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/salon-copy/internal/config"
	"github.com/jonathan/salon-copy/internal/db"
	"github.com/jonathan/salon-copy/internal/export"
	"github.com/jonathan/salon-copy/internal/featured"
	"github.com/jonathan/salon-copy/internal/metrics"
	"github.com/jonathan/salon-copy/internal/pipeline"
	"github.com/jonathan/salon-copy/internal/types"
	"github.com/jonathan/salon-copy/internal/validation"
)

const adminPassword = "correct horse battery staple"

type fakeRunner struct {
	mu       sync.Mutex
	requests []pipeline.Request
	result   *pipeline.Result
	err      error
}

func (f *fakeRunner) Run(_ context.Context, req pipeline.Request, onProgress pipeline.ProgressCallback) (*pipeline.Result, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if onProgress != nil {
		onProgress(pipeline.ProgressEvent{Step: pipeline.StepClassify, Category: pipeline.CategoryInput, Message: "classified"})
		onProgress(pipeline.ProgressEvent{Step: pipeline.StepGenerate, Category: pipeline.CategoryGeneration, Message: "generated"})
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeRunner) lastRequest(t *testing.T) pipeline.Request {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests)
	return f.requests[len(f.requests)-1]
}

type fakeRunStore struct {
	runs    []db.GenerationRun
	err     error
	pingErr error
}

func (f *fakeRunStore) GetRun(_ context.Context, id uuid.UUID) (*db.GenerationRun, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.runs {
		if f.runs[i].ID == id {
			return &f.runs[i], nil
		}
	}
	return nil, db.ErrRunNotFound
}

func (f *fakeRunStore) ListRuns(_ context.Context, limit int) ([]db.GenerationRun, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.runs) {
		return f.runs[:limit], nil
	}
	return f.runs, nil
}

func (f *fakeRunStore) Ping(context.Context) error {
	return f.pingErr
}

var featuredEntry = types.FeaturedKeyword{
	Name:      "髪質改善キャンペーン",
	Keyword:   "髪質改善",
	Gender:    types.GenderLadies,
	Condition: "トリートメントの効果を必ず入れる",
}

func successResult() *pipeline.Result {
	return &pipeline.Result{
		RunID: uuid.New(),
		Classification: types.Classification{
			OriginalKeyword: "髪質改善",
			KeywordType:     types.KeywordTypeFeatured,
			ProcessingMode:  types.ProcessingModeFeatured,
			IsFeatured:      true,
			FeaturedEntry:   &featuredEntry,
		},
		Items: []types.GeneratedItem{{
			Title:           "髪質改善で艶髪ロング",
			Menu:            "カット+髪質改善トリートメント",
			Comment:         "うるおいのある髪へ",
			Hashtags:        []string{"髪質改善", "艶髪"},
			IsFeatured:      true,
			KeywordType:     types.KeywordTypeFeatured,
			ProcessingMode:  types.ProcessingModeFeatured,
			OriginalKeyword: "髪質改善",
		}},
	}
}

type testEnv struct {
	server   *Server
	handler  http.Handler
	runner   *fakeRunner
	runs     *fakeRunStore
	metrics  *metrics.Metrics
	registry *featured.Registry
}

type envOption func(cfg *config.Config, opts *Options)

func withRateLimit(perMin, burst int) envOption {
	return func(cfg *config.Config, _ *Options) {
		cfg.RateLimit = config.RateLimitConfig{
			Enabled:        true,
			RequestsPerMin: 600,
			Burst:          100,
			GeneratePerMin: perMin,
			GenerateBurst:  burst,
		}
	}
}

func withAdmin(t *testing.T) envOption {
	return func(cfg *config.Config, _ *Options) {
		cfg.Admin.BcryptCost = 4
		hash, err := cfg.Admin.HashPassword(adminPassword)
		require.NoError(t, err)
		cfg.Admin.PasswordHash = hash
		cfg.Admin.JWTSecret = testSecret
	}
}

func withoutRuns() envOption {
	return func(_ *config.Config, opts *Options) {
		opts.Runs = nil
	}
}

func withRegistry(r *featured.Registry) envOption {
	return func(_ *config.Config, opts *Options) {
		opts.Registry = r
	}
}

func newTestEnv(t *testing.T, options ...envOption) *testEnv {
	t.Helper()

	cfg := config.Default()
	cfg.RateLimit.Enabled = false

	registry := featured.FromEntries([]types.FeaturedKeyword{
		featuredEntry,
		{Name: "フェードカット特集", Keyword: "フェード", Gender: types.GenderMens, Condition: "刈り上げの技術を強調"},
	}, zap.NewNop())
	env := &testEnv{
		runner: &fakeRunner{result: successResult()},
		runs:   &fakeRunStore{},
	}
	env.metrics = metrics.New(registry)

	opts := Options{
		Config:   cfg,
		Pipeline: env.runner,
		Registry: registry,
		Runs:     env.runs,
		Metrics:  env.metrics,
		Logger:   zap.NewNop(),
	}
	for _, o := range options {
		o(cfg, &opts)
	}
	env.registry = opts.Registry

	s, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(s.Close)

	env.server = s
	env.handler = s.Handler()
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) types.ErrorResponse {
	t.Helper()
	var resp types.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, rec.Code, resp.Status)
	return resp
}

func TestNew_RequiresCollaborators(t *testing.T) {
	registry := featured.FromEntries(nil, nil)

	_, err := New(Options{Pipeline: &fakeRunner{}, Registry: registry})
	assert.Error(t, err)
	_, err = New(Options{Config: config.Default(), Registry: registry})
	assert.Error(t, err)
	_, err = New(Options{Config: config.Default(), Pipeline: &fakeRunner{}})
	assert.Error(t, err)
}

func TestGenerate_Success(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/generate", `{"keyword":"  髪質改善 ","gender":"ladies","season":"春","model":"gemini-2.5-flash-lite"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var resp types.GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.True(t, resp.IsFeatured)
	assert.Equal(t, types.KeywordTypeFeatured, resp.KeywordType)
	assert.Equal(t, types.ProcessingModeFeatured, resp.ProcessingMode)
	assert.Equal(t, "髪質改善", resp.OriginalKeyword)
	require.NotNil(t, resp.FeaturedKeywordInfo)
	assert.Equal(t, featuredEntry.Name, resp.FeaturedKeywordInfo.Name)
	require.Len(t, resp.Templates, 1)
	assert.Equal(t, []string{"髪質改善", "艶髪"}, resp.Templates[0].Hashtags)
	assert.NotEmpty(t, resp.RunID)

	req := env.runner.lastRequest(t)
	assert.Equal(t, "髪質改善", req.Keyword)
	assert.Equal(t, types.GenderLadies, req.Gender)
	assert.Equal(t, "春", req.Season)
	assert.Equal(t, "gemini-2.5-flash-lite", req.Model)
}

func TestGenerate_NormalKeywordHasNullFeaturedInfo(t *testing.T) {
	env := newTestEnv(t)
	env.runner.result = &pipeline.Result{
		RunID: uuid.New(),
		Classification: types.Classification{
			OriginalKeyword: "ボブ",
			KeywordType:     types.KeywordTypeNormal,
			ProcessingMode:  types.ProcessingModeStandard,
		},
	}

	rec := env.do(t, http.MethodPost, "/api/generate", `{"keyword":"ボブ"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.Contains(t, raw, "featured_keyword_info")
	assert.Nil(t, raw["featured_keyword_info"])
	assert.Equal(t, []any{}, raw["templates"])
	assert.Equal(t, types.GenderLadies, env.runner.lastRequest(t).Gender)
}

func TestGenerate_RequestErrors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode string
		wantMsg  string
	}{
		{"empty body", "", CodeInvalidJSON, msgInvalidJSON},
		{"malformed JSON", `{"keyword":`, CodeInvalidJSON, msgInvalidJSON},
		{"missing keyword", `{"gender":"ladies"}`, CodeValidation, msgKeywordRequired},
		{"whitespace keyword", `{"keyword":"   "}`, CodeValidation, msgKeywordRequired},
		{"invalid gender", `{"keyword":"ボブ","gender":"kids"}`, CodeValidation, msgInvalidGender},
		{"keyword too long", `{"keyword":"` + strings.Repeat("あ", 101) + `"}`, CodeValidation, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			rec := env.do(t, http.MethodPost, "/api/generate", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			resp := decodeError(t, rec)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, resp.Error.Message)
			}
			assert.Empty(t, env.runner.requests)
		})
	}
}

func TestGenerate_PipelineErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"no titles", pipeline.ErrNoTitles, http.StatusNotFound, CodeNoResults},
		{"input", &pipeline.InputError{Field: "keyword", Message: "empty"}, http.StatusBadRequest, CodeValidation},
		{"timeout", &pipeline.TimeoutError{Stage: pipeline.StepGenerate, Timeout: time.Second}, http.StatusGatewayTimeout, CodeTimeout},
		{"parse", &validation.ParseError{Message: "no array"}, http.StatusInternalServerError, CodeInternal},
		{"no valid items", &validation.NoValidItemsError{Total: 3}, http.StatusInternalServerError, CodeInternal},
		{"upstream", &pipeline.UpstreamError{Stage: pipeline.StepScrape, Cause: errors.New("connection refused")}, http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.runner.err = tt.err

			rec := env.do(t, http.MethodPost, "/api/generate", `{"keyword":"ボブ"}`)
			require.Equal(t, tt.wantStatus, rec.Code)

			resp := decodeError(t, rec)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.NotContains(t, resp.Error.Message, "connection refused")
		})
	}
}

type sseEvent struct {
	name string
	data string
}

func readEvents(t *testing.T, body []byte) []sseEvent {
	t.Helper()
	var (
		events  []sseEvent
		current sseEvent
	)
	scanner := bufio.NewScanner(bytes.NewReader(body))
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			current.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			current.data = strings.TrimPrefix(line, "data: ")
		case line == "":
			if current.name != "" {
				events = append(events, current)
			}
			current = sseEvent{}
		}
	}
	require.NoError(t, scanner.Err())
	return events
}

func TestGenerateStream_Success(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/generate/stream", `{"keyword":"髪質改善"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	events := readEvents(t, rec.Body.Bytes())
	require.Len(t, events, 3)
	assert.Equal(t, EventProgress, events[0].name)
	assert.Equal(t, EventProgress, events[1].name)
	assert.Equal(t, EventComplete, events[2].name)

	var progress pipeline.ProgressEvent
	require.NoError(t, json.Unmarshal([]byte(events[0].data), &progress))
	assert.Equal(t, pipeline.StepClassify, progress.Step)

	var resp types.GenerateResponse
	require.NoError(t, json.Unmarshal([]byte(events[2].data), &resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.Templates, 1)
}

func TestGenerateStream_Error(t *testing.T) {
	env := newTestEnv(t)
	env.runner.err = pipeline.ErrNoTitles

	rec := env.do(t, http.MethodPost, "/api/generate/stream", `{"keyword":"存在しない"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	events := readEvents(t, rec.Body.Bytes())
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, EventError, last.name)

	var resp types.ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(last.data), &resp))
	assert.Equal(t, CodeNoResults, resp.Error.Code)
	assert.Equal(t, http.StatusNotFound, resp.Status)
}

func TestGenerateStream_ValidationIsPlainJSON(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/generate/stream", `{"keyword":""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	assert.Equal(t, CodeValidation, decodeError(t, rec).Error.Code)
}

func TestFeaturedKeywords(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"all", "", []string{"髪質改善", "フェード"}},
		{"ladies", "?gender=ladies", []string{"髪質改善"}},
		{"mens", "?gender=mens", []string{"フェード"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, "/api/featured-keywords"+tt.query, "")
			require.Equal(t, http.StatusOK, rec.Code)

			var resp FeaturedKeywordsResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.True(t, resp.Success)
			assert.False(t, resp.Fallback)
			assert.True(t, resp.HealthStatus.IsAvailable)

			var got []string
			for _, k := range resp.Keywords {
				got = append(got, k.Keyword)
			}
			assert.ElementsMatch(t, tt.want, got)
		})
	}

	rec := env.do(t, http.MethodGet, "/api/featured-keywords?gender=kids", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFeaturedKeywords_Unavailable(t *testing.T) {
	env := newTestEnv(t, withRegistry(featured.FromEntries(nil, zap.NewNop())))

	rec := env.do(t, http.MethodGet, "/api/featured-keywords", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp FeaturedKeywordsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.Fallback)
	assert.NotEmpty(t, resp.Message)
	assert.Empty(t, resp.Keywords)
	assert.NotNil(t, resp.Keywords)
}

func adminToken(t *testing.T, env *testEnv) string {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/api/admin/token", `{"password":"`+adminPassword+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp types.AdminTokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, int64((24 * time.Hour).Seconds()), resp.ExpiresIn)
	return resp.Token
}

func TestAdminToken(t *testing.T) {
	env := newTestEnv(t, withAdmin(t))
	adminToken(t, env)

	rec := env.do(t, http.MethodPost, "/api/admin/token", `{"password":"wrong"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, CodeUnauthorized, decodeError(t, rec).Error.Code)

	rec = env.do(t, http.MethodPost, "/api/admin/token", `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, CodeValidation, decodeError(t, rec).Error.Code)
}

func TestAdminRoutesDisabledWithoutConfig(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPost, "/api/admin/token", `{"password":"x"}`).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPost, "/api/featured-keywords/reload", "").Code)
}

func TestReloadFeatured(t *testing.T) {
	path := filepath.Join(t.TempDir(), "featured_keywords.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"name":"縮毛矯正特集","keyword":"縮毛矯正","gender":"ladies","condition":"自然な仕上がりを強調"}]`), 0o644))
	registry := featured.NewRegistry(path, zap.NewNop())

	env := newTestEnv(t, withAdmin(t), withRegistry(registry))

	rec := env.do(t, http.MethodPost, "/api/featured-keywords/reload", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))

	rec = env.do(t, http.MethodPost, "/api/featured-keywords/reload", "", "Authorization", "Bearer not-a-token")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	token := adminToken(t, env)
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"name":"縮毛矯正特集","keyword":"縮毛矯正","gender":"ladies","condition":"自然な仕上がりを強調"},
		{"name":"メンズパーマ特集","keyword":"メンズパーマ","gender":"mens","condition":"スタイリングの簡単さ"}
	]`), 0o644))

	rec = env.do(t, http.MethodPost, "/api/featured-keywords/reload", "", "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ReloadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Reloaded)
	assert.Equal(t, 2, resp.HealthStatus.KeywordsCount)
	assert.True(t, registry.IsFeatured("メンズパーマ"))

	require.NoError(t, os.WriteFile(path, []byte(`{"broken": true}`), 0o644))
	rec = env.do(t, http.MethodPost, "/api/featured-keywords/reload", "", "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	resp = ReloadResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Reloaded)
	assert.NotEmpty(t, resp.HealthStatus.LastError)
	assert.Equal(t, 2, resp.HealthStatus.KeywordsCount)
}

func TestExportCSV(t *testing.T) {
	env := newTestEnv(t)

	body, err := json.Marshal(types.ExportRequest{
		Keyword:   "髪質改善",
		Templates: successResult().Items,
	})
	require.NoError(t, err)

	rec := env.do(t, http.MethodPost, "/api/export/csv", string(body))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.ContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")

	out := rec.Body.String()
	assert.True(t, strings.HasPrefix(out, export.BOM))
	assert.Contains(t, out, "タイトル,メニュー,コメント,ハッシュタグ")
	assert.Contains(t, out, "髪質改善 艶髪")

	rec = env.do(t, http.MethodPost, "/api/export/csv", `{"templates":[]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, CodeValidation, decodeError(t, rec).Error.Code)
}

func TestRuns(t *testing.T) {
	env := newTestEnv(t)
	run := db.GenerationRun{ID: uuid.New(), Keyword: "ボブ", Outcome: db.OutcomeSuccess}
	env.runs.runs = []db.GenerationRun{run, {ID: uuid.New(), Keyword: "ショート"}}

	rec := env.do(t, http.MethodGet, "/api/runs?limit=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Runs  []db.GenerationRun `json:"runs"`
		Count int                `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)

	rec = env.do(t, http.MethodGet, "/api/runs/"+run.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got db.GenerationRun
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, run.ID, got.ID)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/runs/"+uuid.NewString(), "").Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/runs/not-a-uuid", "").Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/runs?limit=0", "").Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/runs?limit=1000", "").Code)

	env.runs.err = errors.New("db down")
	assert.Equal(t, http.StatusInternalServerError, env.do(t, http.MethodGet, "/api/runs", "").Code)
}

func TestRuns_Disabled(t *testing.T) {
	env := newTestEnv(t, withoutRuns())

	rec := env.do(t, http.MethodGet, "/api/runs", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, CodeUnavailable, decodeError(t, rec).Error.Code)
}

func TestListSteps(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/pipeline/steps", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Steps []pipeline.StepDefinition `json:"steps"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, pipeline.Steps(), resp.Steps)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "ok", resp["database"])

	env.runs.pingErr = errors.New("down")
	rec = env.do(t, http.MethodGet, "/health", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/generate", `{"keyword":"ボブ"}`)

	rec := env.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	out := rec.Body.String()
	assert.Contains(t, out, "salon_copy_http_requests_total")
	assert.Contains(t, out, `route="POST /api/generate"`)
	assert.Contains(t, out, "salon_copy_featured_keywords")
}

func TestCORS(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config, _ *Options) {
		cfg.Server.CORSOrigins = []string{"https://salon.example.com"}
	})

	rec := env.do(t, http.MethodOptions, "/api/generate", "", "Origin", "https://salon.example.com")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://salon.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = env.do(t, http.MethodGet, "/health", "", "Origin", "https://evil.example.com")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit_Generate(t *testing.T) {
	env := newTestEnv(t, withRateLimit(1, 1))

	rec := env.do(t, http.MethodPost, "/api/generate", `{"keyword":"ボブ"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))

	rec = env.do(t, http.MethodPost, "/api/generate", `{"keyword":"ボブ"}`)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, CodeRateLimited, decodeError(t, rec).Error.Code)

	// other endpoints keep their own budget
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/featured-keywords", "").Code)
}

func TestRequestIDIsPropagated(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/health", "", "X-Request-ID", "req-123")
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
}
