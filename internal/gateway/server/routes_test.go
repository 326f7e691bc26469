package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeassist/internal/codeassist"
	"codeassist/internal/gateway/handler"
	"codeassist/internal/gateway/middleware"
	"codeassist/internal/gateway/repository/analysis"
	"codeassist/internal/gateway/repository/docs"
	"codeassist/internal/gateway/repository/usage"
	"codeassist/internal/llm"
	"codeassist/internal/observability"
)

func init() {
	gin.SetMode(gin.TestMode)
	gin.DefaultWriter = io.Discard
}

const testOrigin = "http://localhost:5173"

type fixture struct {
	router   http.Handler
	analyses *analysis.MemoryStore
	usage    *usage.MemoryStore
	docs     *docs.MemoryStore
	registry *prometheus.Registry
}

// newFixture wires the full router. A nil fake means no provider is configured.
func newFixture(t *testing.T, fake *llm.FakeClient, limit int) *fixture {
	t.Helper()
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	var (
		cli   llm.Client
		avail = llm.Unavailable("no api key configured")
	)
	if fake != nil {
		cli = fake
		avail = llm.CheckCredential(llm.ProviderGroq, "gsk_test")
	}
	gw := codeassist.NewGateway(cli, avail, log.New(io.Discard, "", 0))
	svc := codeassist.NewService(gw, metrics)

	f := &fixture{
		analyses: analysis.NewMemoryStore(),
		usage:    usage.NewMemoryStore(),
		docs:     docs.NewMemoryStore(),
		registry: reg,
	}
	code := handler.NewCodeHandler(svc, f.analyses, f.usage, f.docs)
	f.router = NewRouter(code, RouterConfig{
		ClientURL:     testOrigin,
		FreeTierLimit: limit,
		Gatherer:      reg,
		Usage:         f.usage,
	})
	return f
}

func (f *fixture) call(t *testing.T, method, path, body, userID string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(middleware.HeaderUserID, userID)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var out map[string]any
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w, out
}

const providerAnalysis = "Here you go:\n```json\n" + `{"bugs":[{"line":2,"severity":"high","message":"off by one","suggestion":"use <"}],` +
	`"qualityScore":72,"suggestions":["add tests"],"complexity":"medium","securityIssues":[]}` + "\n```"

func TestAnalyzeWithProviderPersistsAndCounts(t *testing.T) {
	f := newFixture(t, llm.NewFakeClient(providerAnalysis), 50)

	w, body := f.call(t, http.MethodPost, "/api/code/analyze", `{"code":"for (i=0;i<=n;i++){}","language":"javascript"}`, "u1")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Code analysis completed", body["message"])

	data := body["data"].(map[string]any)
	assert.EqualValues(t, 1, data["apiUsageCount"])
	id, _ := data["analysisId"].(string)
	require.NotEmpty(t, id)
	result := data["analysis"].(map[string]any)
	assert.EqualValues(t, 72, result["qualityScore"])
	assert.Equal(t, "medium", result["complexity"])

	rec, err := f.analyses.Get(t.Context(), id, "u1")
	require.NoError(t, err)
	assert.Equal(t, 72, rec.QualityScore)
	assert.Equal(t, "for (i=0;i<=n;i++){}", rec.Code)

	w, body = f.call(t, http.MethodPost, "/api/code/analyze", `{"code":"x"}`, "u1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, body["data"].(map[string]any)["apiUsageCount"])
}

func TestAnalyzeWithoutProviderUsesHeuristics(t *testing.T) {
	f := newFixture(t, nil, 50)
	code := "var password = 'hunter2'; if (a == b) {}"

	w, body := f.call(t, http.MethodPost, "/api/code/analyze", `{"code":`+quote(code)+`}`, "u1")
	require.Equal(t, http.StatusOK, w.Code)

	want := codeassist.AnalyzeHeuristically(code, codeassist.DefaultLanguage)
	result := body["data"].(map[string]any)["analysis"].(map[string]any)
	assert.EqualValues(t, want.QualityScore, result["qualityScore"])
	assert.Len(t, result["bugs"], len(want.Bugs))
	assert.Len(t, result["securityIssues"], len(want.SecurityIssues))
}

func TestAnalyzeMissingCodeIs400AndNotCounted(t *testing.T) {
	f := newFixture(t, llm.NewFakeClient(providerAnalysis), 50)

	for _, payload := range []string{`{"language":"go"}`, ""} {
		w, body := f.call(t, http.MethodPost, "/api/code/analyze", payload, "u1")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "Please provide code to analyze", body["message"])
		assert.Equal(t, "code", body["field"])
	}

	n, err := f.usage.Get(t.Context(), "u1", usage.Period(time.Now()))
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestAnalyzeInvalidJSON(t *testing.T) {
	f := newFixture(t, nil, 50)
	w, body := f.call(t, http.MethodPost, "/api/code/analyze", `{"code":`, "u1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid JSON request body", body["message"])
}

func TestFixBug(t *testing.T) {
	fake := llm.NewFakeClient(`{"fixedCode":"let x = 1;","explanation":"use let","changes":["var -> let"]}`)
	f := newFixture(t, fake, 50)

	w, body := f.call(t, http.MethodPost, "/api/code/fix-bug", `{"code":"var x = 1;"}`, "u1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Please provide code and bug description", body["message"])
	assert.Equal(t, "bugDescription", body["field"])
	assert.Equal(t, 0, fake.Calls())

	w, body = f.call(t, http.MethodPost, "/api/code/fix-bug", `{"code":"var x = 1;","bugDescription":"old style"}`, "u1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Bug fix generated", body["message"])
	data := body["data"].(map[string]any)
	assert.Equal(t, "let x = 1;", data["fixedCode"])
	assert.Equal(t, []any{"var -> let"}, data["changes"])
}

func TestFixBugProviderFailureReturnsOriginal(t *testing.T) {
	f := newFixture(t, llm.NewFailingFakeClient(errors.New("boom")), 50)

	w, body := f.call(t, http.MethodPost, "/api/code/fix-bug", `{"code":"var x = 1;","bugDescription":"d"}`, "u1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "var x = 1;", body["data"].(map[string]any)["fixedCode"])

	n, err := f.usage.Get(t.Context(), "u1", usage.Period(time.Now()))
	require.NoError(t, err)
	assert.Equal(t, 1, n, "degraded operations still count")
}

func TestGenerateDocsArchivesProviderOutput(t *testing.T) {
	f := newFixture(t, llm.NewFakeClient("# add\n\nAdds two numbers."), 50)

	w, body := f.call(t, http.MethodPost, "/api/code/generate-docs", `{"code":"function add(a,b){return a+b}"}`, "u1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Documentation generated", body["message"])
	data := body["data"].(map[string]any)
	assert.Equal(t, "# add\n\nAdds two numbers.", data["documentation"])
	docID, _ := data["docId"].(string)
	require.NotEmpty(t, docID)

	w, body = f.call(t, http.MethodGet, "/api/code/docs", "", "u1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{docID}, body["data"])

	w, body = f.call(t, http.MethodGet, "/api/code/docs/"+docID, "", "u1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "# add\n\nAdds two numbers.", body["data"].(map[string]any)["documentation"])

	w, _ = f.call(t, http.MethodGet, "/api/code/docs/"+docID, "", "u2")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGenerateDocsWithoutProviderIsNotArchived(t *testing.T) {
	f := newFixture(t, nil, 50)

	w, body := f.call(t, http.MethodPost, "/api/code/generate-docs", `{"code":"x"}`, "u1")
	require.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]any)
	assert.NotEmpty(t, data["documentation"])
	assert.NotContains(t, data, "docId")

	ids, err := f.docs.List(t.Context(), "u1")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestHistoryAndGetAnalysis(t *testing.T) {
	f := newFixture(t, nil, 50)
	for _, code := range []string{"a == b", "var x"} {
		w, _ := f.call(t, http.MethodPost, "/api/code/analyze", `{"code":`+quote(code)+`}`, "u1")
		require.Equal(t, http.StatusOK, w.Code)
	}

	w, body := f.call(t, http.MethodGet, "/api/code/history", "", "u1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, body["count"])
	items := body["data"].([]any)
	require.Len(t, items, 2)
	first := items[0].(map[string]any)
	assert.NotContains(t, first, "code")

	id := first["id"].(string)
	w, body = f.call(t, http.MethodGet, "/api/code/analysis/"+id, "", "u1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, body["data"].(map[string]any)["code"])

	w, body = f.call(t, http.MethodGet, "/api/code/analysis/"+id, "", "u2")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Analysis not found", body["message"])

	w, body = f.call(t, http.MethodGet, "/api/code/history", "", "u2")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, body["count"])
}

func TestQuotaAppliesToOperationsOnly(t *testing.T) {
	f := newFixture(t, nil, 1)

	w, _ := f.call(t, http.MethodPost, "/api/code/analyze", `{"code":"x"}`, "u1")
	require.Equal(t, http.StatusOK, w.Code)

	w, body := f.call(t, http.MethodPost, "/api/code/generate-docs", `{"code":"x"}`, "u1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.EqualValues(t, 1, body["currentUsage"])

	w, _ = f.call(t, http.MethodGet, "/api/code/history", "", "u1")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestConcurrentFreeTierRequestsStopAtLimit(t *testing.T) {
	const limit = 5
	f := newFixture(t, nil, limit)

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		codes = map[int]int{}
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/api/code/analyze", strings.NewReader(`{"code":"x"}`))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set(middleware.HeaderUserID, "u1")
			w := httptest.NewRecorder()
			f.router.ServeHTTP(w, req)
			mu.Lock()
			codes[w.Code]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, limit, codes[http.StatusOK])
	assert.Equal(t, 20-limit, codes[http.StatusTooManyRequests])
	n, err := f.usage.Get(t.Context(), "u1", usage.Period(time.Now()))
	require.NoError(t, err)
	assert.Equal(t, limit, n)
}

// staleUsage reports zero usage to the quota check, as a read that lost a
// race with another request would.
type staleUsage struct {
	*usage.MemoryStore
}

func (staleUsage) Get(context.Context, string, string) (int, error) { return 0, nil }

func TestReservationRejectsWhenCheckIsStale(t *testing.T) {
	store := usage.NewMemoryStore()
	period := usage.Period(time.Now())
	_, err := store.Increment(t.Context(), "u1", period)
	require.NoError(t, err)

	gw := codeassist.NewGateway(nil, llm.Unavailable("no api key configured"), log.New(io.Discard, "", 0))
	svc := codeassist.NewService(gw, nil)
	code := handler.NewCodeHandler(svc, analysis.NewMemoryStore(), store, docs.NewMemoryStore())
	router := NewRouter(code, RouterConfig{
		ClientURL:     testOrigin,
		FreeTierLimit: 1,
		Gatherer:      prometheus.NewRegistry(),
		Usage:         staleUsage{store},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/code/fix-bug", strings.NewReader(`{"code":"x","bugDescription":"y"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.HeaderUserID, "u1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.EqualValues(t, 1, body["currentUsage"])
	assert.EqualValues(t, 1, body["limit"])

	n, err := store.Get(t.Context(), "u1", period)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestAnonymousIsRejected(t *testing.T) {
	f := newFixture(t, nil, 50)
	w, body := f.call(t, http.MethodPost, "/api/code/analyze", `{"code":"x"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Not authorized to access this route", body["message"])
}

func TestHealth(t *testing.T) {
	w, body := newFixture(t, nil, 50).call(t, http.MethodGet, "/api/health", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Server is running!", body["status"])
	assert.Equal(t, "Connected", body["database"])
	assert.Equal(t, "No AI API Key", body["ai"])
	assert.NotEmpty(t, body["timestamp"])

	_, body = newFixture(t, llm.NewFakeClient("x"), 50).call(t, http.MethodGet, "/api/health", "", "")
	assert.Equal(t, "Groq API Configured", body["ai"])
}

func TestNotFound(t *testing.T) {
	w, body := newFixture(t, nil, 50).call(t, http.MethodGet, "/api/nope?x=1", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Route not found: GET /api/nope?x=1", body["message"])
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t, nil, 50)
	w, _ := f.call(t, http.MethodPost, "/api/code/analyze", `{"code":"x"}`, "u1")
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = f.call(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `codeassist_requests_total{operation="analyze",source="heuristic"} 1`)
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t, nil, 50)
	req := httptest.NewRequest(http.MethodOptions, "/api/code/analyze", nil)
	req.Header.Set("Origin", testOrigin)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, testOrigin, w.Header().Get("Access-Control-Allow-Origin"))
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
