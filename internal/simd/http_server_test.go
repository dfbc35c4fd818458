package simd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestServer(t *testing.T) (*JobStore, http.Handler) {
	t.Helper()
	store := newTestStore(t)
	return store, NewHTTPServer(store, nil).Handler()
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	decoded := map[string]any{}
	if ct := rr.Header().Get("Content-Type"); strings.HasPrefix(ct, "application/json") {
		if err := json.Unmarshal(rr.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid json from %s %s: %v", method, path, err)
		}
	}
	return rr, decoded
}

func TestHTTPServerHealthz(t *testing.T) {
	_, handler := newTestServer(t)

	rr, body := doJSON(t, handler, http.MethodGet, "/healthz", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %v", body["status"])
	}
	ts, _ := body["timestamp"].(string)
	if _, err := time.Parse(time.RFC3339, ts); err != nil {
		t.Errorf("expected RFC3339 timestamp, got %v", body["timestamp"])
	}
}

func TestSubmitJobReturnsID(t *testing.T) {
	store, handler := newTestServer(t)

	rr, body := doJSON(t, handler, http.MethodPost, "/api/jobs", `{"random_seed": 7}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if body["success"] != true {
		t.Error("expected success true")
	}
	if body["message"] != "Job submitted successfully" {
		t.Errorf("expected submission message, got %v", body["message"])
	}
	jobID, _ := body["job_id"].(string)
	if jobID == "" {
		t.Fatal("expected a job_id")
	}
	if body["status"] != "pending" {
		t.Errorf("expected pending status, got %v", body["status"])
	}

	job, err := store.Get(jobID)
	if err != nil {
		t.Fatalf("expected job persisted: %v", err)
	}
	if job.Config.RandomSeed != 7 {
		t.Errorf("expected seed override 7, got %d", job.Config.RandomSeed)
	}
}

func TestSubmitJobEmptyBodyUsesDefaults(t *testing.T) {
	store, handler := newTestServer(t)

	rr, body := doJSON(t, handler, http.MethodPost, "/api/jobs", "")
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}

	jobID, _ := body["job_id"].(string)
	job, err := store.Get(jobID)
	if err != nil {
		t.Fatalf("expected job persisted: %v", err)
	}
	if job.Config == nil || job.Config.Simulation.EventCount <= 0 {
		t.Error("expected default config on empty body")
	}
}

func TestSubmitJobRejectsMalformedBody(t *testing.T) {
	_, handler := newTestServer(t)

	rr, body := doJSON(t, handler, http.MethodPost, "/api/jobs", `{"random_seed": `)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
	if body["success"] != false {
		t.Error("expected success false")
	}
	if errMsg, _ := body["error"].(string); errMsg == "" {
		t.Error("expected an error message")
	}
}

func TestSubmitJobStoresCallback(t *testing.T) {
	store, handler := newTestServer(t)

	rr, body := doJSON(t, handler, http.MethodPost, "/api/jobs",
		`{"callback_url": "http://localhost:9000/hooks/{job_id}", "callback_secret": "s3cret"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}

	jobID, _ := body["job_id"].(string)
	job, err := store.Get(jobID)
	if err != nil {
		t.Fatalf("expected job persisted: %v", err)
	}
	if job.CallbackURL != "http://localhost:9000/hooks/{job_id}" {
		t.Errorf("expected callback URL stored, got %q", job.CallbackURL)
	}
	if job.CallbackSecret != "s3cret" {
		t.Errorf("expected callback secret stored, got %q", job.CallbackSecret)
	}
}

func TestSubmitJobRejectsInternalCallback(t *testing.T) {
	_, handler := newTestServer(t)

	rr, _ := doJSON(t, handler, http.MethodPost, "/api/jobs",
		`{"callback_url": "http://169.254.169.254/metadata"}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for metadata callback, got %d", rr.Code)
	}
}

func TestListJobs(t *testing.T) {
	store, handler := newTestServer(t)
	createJob(t, store)
	createJob(t, store)

	rr, body := doJSON(t, handler, http.MethodGet, "/api/jobs", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if body["count"] != float64(2) {
		t.Errorf("expected count 2, got %v", body["count"])
	}
	jobs, ok := body["jobs"].([]any)
	if !ok || len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %v", body["jobs"])
	}
}

func TestListJobsRejectsBadLimit(t *testing.T) {
	_, handler := newTestServer(t)

	rr, _ := doJSON(t, handler, http.MethodGet, "/api/jobs?limit=zero", "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for bad limit, got %d", rr.Code)
	}

	rr, _ = doJSON(t, handler, http.MethodGet, "/api/jobs?limit=-3", "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for negative limit, got %d", rr.Code)
	}
}

func TestGetJobStatus(t *testing.T) {
	store, handler := newTestServer(t)
	job := createJob(t, store)

	rr, body := doJSON(t, handler, http.MethodGet, "/api/jobs/"+job.JobID, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	record, ok := body["job"].(map[string]any)
	if !ok {
		t.Fatalf("expected job object, got %T", body["job"])
	}
	if record["job_id"] != job.JobID {
		t.Errorf("expected job_id %s, got %v", job.JobID, record["job_id"])
	}
	if record["status"] != "pending" {
		t.Errorf("expected pending status, got %v", record["status"])
	}
}

func TestGetJobMissing(t *testing.T) {
	_, handler := newTestServer(t)

	rr, body := doJSON(t, handler, http.MethodGet, "/api/jobs/ffffffff-0000-0000-0000-000000000000", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
	if body["error"] != "Job not found" {
		t.Errorf("expected not-found error, got %v", body["error"])
	}
}

func TestGetResultsBeforeCompletion(t *testing.T) {
	store, handler := newTestServer(t)
	job := createJob(t, store)

	rr, body := doJSON(t, handler, http.MethodGet, "/api/jobs/"+job.JobID+"/results", "")
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rr.Code)
	}
	errMsg, _ := body["error"].(string)
	if !strings.Contains(errMsg, "pending") {
		t.Errorf("expected status in error message, got %q", errMsg)
	}
}

func TestGetResultsAfterWorkerRun(t *testing.T) {
	store, handler := newTestServer(t)
	worker := NewWorker(store, 10*time.Millisecond)

	rr, body := doJSON(t, handler, http.MethodPost, "/api/jobs", `{"simulation": {"event_count": 50}}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}
	jobID, _ := body["job_id"].(string)

	if !worker.ProcessNext() {
		t.Fatal("expected the worker to process the job")
	}

	rr, body = doJSON(t, handler, http.MethodGet, "/api/jobs/"+jobID+"/results", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if body["success"] != true {
		t.Error("expected success true")
	}
	metrics, ok := body["metrics"].(map[string]any)
	if !ok {
		t.Fatalf("expected metrics object, got %T", body["metrics"])
	}
	if metrics["run_id"] != jobID {
		t.Errorf("expected metrics run_id %s, got %v", jobID, metrics["run_id"])
	}
	if metrics["total_events"] != float64(50) {
		t.Errorf("expected 50 events in metrics, got %v", metrics["total_events"])
	}
	summary, ok := body["summary"].(map[string]any)
	if !ok {
		t.Fatalf("expected summary object, got %T", body["summary"])
	}
	if text, _ := summary["conclusion"].(string); text == "" {
		t.Error("expected a conclusion in the summary")
	}
	artifacts, ok := body["artifacts"].([]any)
	if !ok || len(artifacts) != 3 {
		t.Errorf("expected 3 artifact names, got %v", body["artifacts"])
	}
}

func TestGetArtifactServesFile(t *testing.T) {
	store, handler := newTestServer(t)
	worker := NewWorker(store, 10*time.Millisecond)

	_, body := doJSON(t, handler, http.MethodPost, "/api/jobs", `{"simulation": {"event_count": 50}}`)
	jobID, _ := body["job_id"].(string)
	if !worker.ProcessNext() {
		t.Fatal("expected the worker to process the job")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/"+jobID+"/artifacts/metrics.json", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var doc map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &doc); err != nil {
		t.Fatalf("artifact is not json: %v", err)
	}
	if doc["run_id"] != jobID {
		t.Errorf("expected artifact run_id %s, got %v", jobID, doc["run_id"])
	}
}

func TestGetArtifactRejectsTraversal(t *testing.T) {
	store, handler := newTestServer(t)
	job := createJob(t, store)

	rr, _ := doJSON(t, handler, http.MethodGet, "/api/jobs/"+job.JobID+"/artifacts/..%2Fjob.json", "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for traversal, got %d", rr.Code)
	}
}

func TestGetArtifactMissingFile(t *testing.T) {
	store, handler := newTestServer(t)
	job := createJob(t, store)

	rr, body := doJSON(t, handler, http.MethodGet, "/api/jobs/"+job.JobID+"/artifacts/metrics.json", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
	if body["error"] != "Artifact not found" {
		t.Errorf("expected artifact not-found error, got %v", body["error"])
	}
}
