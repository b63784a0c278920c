package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/career-path/internal/cache"
	"github.com/jonathan/career-path/internal/llm"
	"github.com/jonathan/career-path/internal/pipeline"
	"github.com/jonathan/career-path/internal/progress"
	"github.com/jonathan/career-path/internal/server/ratelimit"
	"github.com/jonathan/career-path/internal/types"
	"github.com/jonathan/career-path/internal/validation"
)

var testResume = strings.Repeat("Backend engineer with Python and AWS experience. ", 3)

// fakeRunner returns a fixed two-gap roadmap and records the input it saw.
type fakeRunner struct {
	mu      sync.Mutex
	input   pipeline.Input
	degrade string // stage reported as degraded
}

func (f *fakeRunner) RunWithOptions(_ context.Context, in pipeline.Input, opts pipeline.RunOptions) *types.PipelineState {
	f.mu.Lock()
	f.input = in
	f.mu.Unlock()

	state := types.NewPipelineState(in.ResumeText, in.TargetJobs, in.JobDescription, in.SpecialtyFocus)
	state.CurrentSkills = []string{"Python", "AWS"}
	state.MatchedSkills = []string{"Python"}
	state.SkillGaps = []types.GapEntry{
		{Skill: "Kubernetes", ForJob: "DevOps Engineer", Priority: types.PriorityHigh, Difficulty: "medium", TimeMonths: 3},
		{Skill: "Terraform", ForJob: "DevOps Engineer", Priority: types.PriorityHigh, Difficulty: "medium", TimeMonths: 3},
	}
	state.FitScore = 33
	state.Nodes, state.Edges = pipeline.BuildGraph(state.CurrentSkills, state.SkillGaps, state.TargetJobs, 5)
	state.WorkflowStatus = types.StatusComplete

	if opts.OnProgress != nil {
		for _, def := range pipeline.Registry {
			event := pipeline.ProgressEvent{Stage: def.Name, Status: def.Status, Message: string(def.Name) + " finished"}
			if string(def.Name) == f.degrade {
				event.Degraded = true
				event.Error = "reasoning service unavailable"
			}
			opts.OnProgress(event)
		}
	}
	return state
}

func (f *fakeRunner) lastInput() pipeline.Input {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.input
}

type fakeBackend struct{ err error }

func (f fakeBackend) Ping(context.Context) error { return f.err }

type testServer struct {
	*Server
	runner  *fakeRunner
	tracker *progress.Tracker
}

func newTestServer(t *testing.T, mutate func(*Config, *Deps)) *testServer {
	t.Helper()
	runner := &fakeRunner{}
	tracker := progress.NewTracker()
	cfg := Config{
		AllowedOrigins:   []string{"http://localhost:3000"},
		WorkflowTimeout:  5 * time.Second,
		APIKeyConfigured: true,
	}
	deps := Deps{
		Runner:  runner,
		Tracker: tracker,
		Limiter: ratelimit.NewLimiter(&ratelimit.Config{Enabled: false}),
		Backend: fakeBackend{},
	}
	if mutate != nil {
		mutate(&cfg, &deps)
	}
	s, err := New(cfg, deps)
	require.NoError(t, err)
	t.Cleanup(s.rateLimiter.Stop)
	return &testServer{Server: s, runner: runner, tracker: tracker}
}

func (ts *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, _ := json.Marshal(b)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "192.0.2.1:4321"
	w := httptest.NewRecorder()
	ts.Handler().ServeHTTP(w, req)
	return w
}

func validRoadmapRequest() map[string]any {
	return map[string]any{
		"resume_text": testResume,
		"target_jobs": []string{"DevOps Engineer"},
		"user_id":     "u-1",
	}
}

func TestNew_RequiresTracker(t *testing.T) {
	_, err := New(Config{}, Deps{})
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*Config, *Deps)
		wantStatus string
		wantInit   bool
	}{
		{name: "healthy", wantStatus: "healthy", wantInit: true},
		{
			name:       "no runner",
			mutate:     func(_ *Config, d *Deps) { d.Runner = nil },
			wantStatus: "degraded",
		},
		{
			name:       "backend unreachable",
			mutate:     func(_ *Config, d *Deps) { d.Backend = fakeBackend{err: errors.New("dial tcp: refused")} },
			wantStatus: "degraded",
			wantInit:   true,
		},
		{
			name:       "no credentials",
			mutate:     func(c *Config, _ *Deps) { c.APIKeyConfigured = false },
			wantStatus: "degraded",
			wantInit:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, tt.mutate)
			w := ts.do(http.MethodGet, "/health", nil)
			require.Equal(t, http.StatusOK, w.Code)

			var resp HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Equal(t, tt.wantInit, resp.WorkflowInitialized)
			assert.Contains(t, resp.Checks, "credentials")
		})
	}
}

func TestGenerate_Success(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(http.MethodPost, "/api/roadmaps/generate", validRoadmapRequest())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp RoadmapResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	_, err := uuid.Parse(resp.RoadmapID)
	assert.NoError(t, err)
	assert.Equal(t, 33, resp.FitScore)
	assert.Len(t, resp.SkillGaps, 2)
	assert.Len(t, resp.Nodes, 4)
	assert.Len(t, resp.Edges, 4)
	assert.Equal(t, types.StatusComplete, resp.WorkflowStatus)
	assert.NotNil(t, resp.Courses, "empty sections serialize as arrays")

	p, ok := ts.tracker.Get(resp.RoadmapID)
	require.True(t, ok)
	assert.Equal(t, "u-1", p.UserID)
	assert.Len(t, p.Skills, 2)
}

func TestGenerate_EmptySectionsAreArrays(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(http.MethodPost, "/api/roadmaps/generate", validRoadmapRequest())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"courses":[]`)
	assert.NotContains(t, w.Body.String(), `"error"`)
}

func TestGenerate_Validation(t *testing.T) {
	tests := []struct {
		name string
		body any
		want int
	}{
		{name: "malformed json", body: `{"resume_text":`, want: http.StatusBadRequest},
		{name: "short resume", body: map[string]any{"resume_text": "too short", "target_jobs": []string{"SRE"}}, want: http.StatusUnprocessableEntity},
		{name: "no jobs", body: map[string]any{"resume_text": testResume, "target_jobs": []string{}}, want: http.StatusUnprocessableEntity},
		{name: "blank job", body: map[string]any{"resume_text": testResume, "target_jobs": []string{"   "}}, want: http.StatusUnprocessableEntity},
		{name: "markup in job title", body: map[string]any{"resume_text": testResume, "target_jobs": []string{"SRE", "<script>x</script>"}}, want: http.StatusUnprocessableEntity},
		{
			name: "too many jobs",
			body: map[string]any{"resume_text": testResume, "target_jobs": []string{"a", "b", "c", "d", "e", "f"}},
			want: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, nil)
			w := ts.do(http.MethodPost, "/api/roadmaps/generate", tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestGenerate_NoRunner(t *testing.T) {
	ts := newTestServer(t, func(_ *Config, d *Deps) { d.Runner = nil })

	w := ts.do(http.MethodPost, "/api/roadmaps/generate", validRoadmapRequest())
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Workflow not initialized")
}

func TestGenerate_FetchesJobURL(t *testing.T) {
	var fetched string
	ts := newTestServer(t, func(_ *Config, d *Deps) {
		d.FetchJob = func(_ context.Context, url string) (string, error) {
			fetched = url
			return "We need Kubernetes and Terraform.", nil
		}
	})

	body := validRoadmapRequest()
	body["job_url"] = "https://jobs.example.com/123"
	body["target_jobs"] = []string{"DevOps Engineer", "devops engineer", "SRE"}
	w := ts.do(http.MethodPost, "/api/roadmaps/generate", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, "https://jobs.example.com/123", fetched)
	in := ts.runner.lastInput()
	assert.Equal(t, "We need Kubernetes and Terraform.", in.JobDescription)
	assert.Equal(t, []string{"DevOps Engineer", "SRE"}, in.TargetJobs)
}

func TestGenerate_FetchFailureStillRuns(t *testing.T) {
	ts := newTestServer(t, func(_ *Config, d *Deps) {
		d.FetchJob = func(context.Context, string) (string, error) { return "", errors.New("404") }
	})

	body := validRoadmapRequest()
	body["job_url"] = "https://jobs.example.com/gone"
	w := ts.do(http.MethodPost, "/api/roadmaps/generate", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, ts.runner.lastInput().JobDescription)
}

func TestGenerateStream(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(http.MethodPost, "/api/roadmaps/generate/stream", validRoadmapRequest())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	body := w.Body.String()
	assert.Equal(t, len(pipeline.Registry), strings.Count(body, "event: stage\n"))
	assert.Contains(t, body, "event: result\n")
	assert.Contains(t, body, "event: complete\n")
	assert.Less(t, strings.LastIndex(body, "event: stage"), strings.Index(body, "event: result"))
}

func TestGenerateStream_CompleteSummary(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.runner.degrade = "critical_review"

	w := ts.do(http.MethodPost, "/api/roadmaps/generate/stream", validRoadmapRequest())
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	idx := strings.Index(body, "event: complete\ndata: ")
	require.GreaterOrEqual(t, idx, 0, body)
	data := strings.TrimSpace(body[idx+len("event: complete\ndata: "):])

	var summary StreamSummary
	require.NoError(t, json.Unmarshal([]byte(data), &summary))
	assert.NotEmpty(t, summary.RoadmapID)
	assert.Equal(t, string(types.StatusComplete), summary.Status)
	assert.Equal(t, len(pipeline.Registry), summary.StagesRun)
	assert.Equal(t, 1, summary.DegradedCount)
	assert.Equal(t, []string{"critical_review"}, summary.DegradedStages)
	assert.Equal(t, 33, summary.FitScore)
	assert.Positive(t, summary.NodeCount)
}

func TestGenerateStream_ValidationIsJSON(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(http.MethodPost, "/api/roadmaps/generate/stream", map[string]any{"resume_text": "short"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

func TestProgressLifecycle(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(http.MethodPost, "/api/roadmaps/generate", validRoadmapRequest())
	require.Equal(t, http.StatusOK, w.Code)
	var roadmap RoadmapResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &roadmap))

	path := fmt.Sprintf("/api/roadmaps/%s/progress", roadmap.RoadmapID)
	w = ts.do(http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got ProgressResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 0.0, got.CompletionPercentage)
	assert.Equal(t, 2, got.Statistics.NotStarted)

	w = ts.do(http.MethodPut, path+"/Kubernetes", map[string]any{"status": "completed", "notes": "CKA passed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 50.0, got.CompletionPercentage)
	assert.Equal(t, types.SkillCompleted, got.Progress.Skills["Kubernetes"].Status)
	assert.Equal(t, "CKA passed", got.Progress.Skills["Kubernetes"].Notes)
}

func TestProgressErrors(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.tracker.Create("r1", "u1", []string{"Go"})

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{name: "unknown roadmap", method: http.MethodGet, path: "/api/roadmaps/missing/progress", want: http.StatusNotFound},
		{name: "update unknown roadmap", method: http.MethodPut, path: "/api/roadmaps/missing/progress/Go", body: map[string]any{"status": "completed"}, want: http.StatusNotFound},
		{name: "unknown skill", method: http.MethodPut, path: "/api/roadmaps/r1/progress/Rust", body: map[string]any{"status": "completed"}, want: http.StatusNotFound},
		{name: "invalid status", method: http.MethodPut, path: "/api/roadmaps/r1/progress/Go", body: map[string]any{"status": "done"}, want: http.StatusUnprocessableEntity},
		{name: "malformed body", method: http.MethodPut, path: "/api/roadmaps/r1/progress/Go", body: "{", want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestCompare(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(http.MethodPost, "/api/compare", map[string]any{
		"current_skills": []string{"python"},
		"path1_skills":   []string{"python", "aws"},
		"path2_skills":   []string{"python", "azure"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp types.CareerPathComparison
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Equal difficulty", resp.Recommendation.EasierPath)
	assert.Equal(t, 1, resp.Paths["Path 1"].MissingSkills)
	assert.Equal(t, 1, resp.Paths["Path 2"].MissingSkills)
}

func TestCompare_Validation(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(http.MethodPost, "/api/compare", map[string]any{"current_skills": []string{"python"}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestEffort(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(http.MethodPost, "/api/effort", map[string]any{
		"skill_gaps":     []string{"Kubernetes", "Terraform"},
		"difficulty_map": map[string]string{"kubernetes": "hard"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp types.LearningEffort
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.TotalSkills)
	assert.Equal(t, 180, resp.EstimatedHours)
	assert.Equal(t, 12, resp.EstimatedWeeks)
}

func TestEffort_InvalidDifficulty(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(http.MethodPost, "/api/effort", map[string]any{
		"skill_gaps":     []string{"Go"},
		"difficulty_map": map[string]string{"go": "impossible"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCacheStats(t *testing.T) {
	ts := newTestServer(t, nil)
	w := ts.do(http.MethodGet, "/api/cache/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"enabled": false}`, w.Body.String())

	rc := cache.New(cache.Options{})
	rc.Set(context.Background(), "model", "prompt", `{"ok":true}`)
	ts = newTestServer(t, func(_ *Config, d *Deps) { d.Cache = rc })
	w = ts.do(http.MethodGet, "/api/cache/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Enabled bool        `json:"enabled"`
		Stats   cache.Stats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Enabled)
	assert.Equal(t, 1, resp.Stats.TotalEntries)
}

func TestCacheClear(t *testing.T) {
	ts := newTestServer(t, nil)
	w := ts.do(http.MethodDelete, "/api/cache", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"enabled": false, "cleared": false}`, w.Body.String())

	rc := cache.New(cache.Options{})
	rc.Set(context.Background(), "model", "prompt", `{"ok":true}`)
	ts = newTestServer(t, func(_ *Config, d *Deps) { d.Cache = rc })

	w = ts.do(http.MethodDelete, "/api/cache", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"enabled": true, "cleared": true}`, w.Body.String())
	assert.Equal(t, 0, rc.Stats().TotalEntries)
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, func(_ *Config, d *Deps) {
		d.Limiter = ratelimit.NewLimiter(&ratelimit.Config{
			Enabled:         true,
			EndpointConfigs: ratelimit.DefaultEndpointConfigs(1, 100),
		})
	})

	w := ts.do(http.MethodPost, "/api/roadmaps/generate", validRoadmapRequest())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = ts.do(http.MethodPost, "/api/roadmaps/generate", validRoadmapRequest())
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "rate_limit_exceeded")

	// Health and stats stay reachable.
	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/health", nil).Code)

	w = ts.do(http.MethodGet, "/api/rate-limit/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats struct {
		ClientID string          `json:"client_id"`
		Stats    ratelimit.Stats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, "192.0.2.1", stats.ClientID)
	assert.Equal(t, 1, stats.Stats.RequestsLastMinute)
	assert.Equal(t, 1, stats.Stats.MinuteLimit)
}

func TestCORS(t *testing.T) {
	ts := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/roadmaps/generate", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	ts.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	ts.Handler().ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestHTTPStatus(t *testing.T) {
	validatorErr := (&types.ProgressUpdateRequest{Status: "bogus"}).Validate()
	require.Error(t, validatorErr)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: http.StatusOK},
		{name: "request validation", err: &types.ValidationError{Field: "x", Message: "bad"}, want: http.StatusUnprocessableEntity},
		{name: "text validation", err: validation.ValidateResumeText("", 50, 100), want: http.StatusUnprocessableEntity},
		{name: "validator errors", err: validatorErr, want: http.StatusUnprocessableEntity},
		{name: "wrapped not found", err: fmt.Errorf("lookup: %w", progress.ErrRoadmapNotFound), want: http.StatusNotFound},
		{name: "skill not found", err: progress.ErrSkillNotFound, want: http.StatusNotFound},
		{name: "reasoning failure", err: &llm.ReasoningCallError{Stage: llm.StageJobParser, Message: "boom"}, want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
