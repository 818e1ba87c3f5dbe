package vectro

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ts := httptest.NewServer(NewServer(DefaultConfig(), logger).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func uploadTestEmbeddings(t *testing.T, ts *httptest.Server) {
	t.Helper()
	resp := postJSON(t, ts.URL+"/api/upload", map[string]any{
		"embeddings": []Embedding{
			{ID: "one", Vector: []float32{1, 0}},
			{ID: "two", Vector: []float32{0, 1}},
			{ID: "three", Vector: []float32{0.707, 0.707}},
		},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("upload failed with status %d", resp.StatusCode)
	}
}

func TestServerHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var body map[string]string
	decodeBody(t, resp, &body)
	if body["status"] != "ok" || body["version"] != Version {
		t.Errorf("unexpected health body: %v", body)
	}
}

func TestServerIndexPage(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	page, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(page), "/api/search") {
		t.Error("index page should list the endpoints")
	}
}

func TestServerStats(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/stats")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var st stats
	decodeBody(t, resp, &st)
	if st.Count != 0 || st.Dimensions != nil || st.IndexLoaded {
		t.Errorf("expected empty stats, got %+v", st)
	}

	uploadTestEmbeddings(t, ts)

	resp2, err := http.Get(ts.URL + "/api/stats")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp2.Body.Close()
	decodeBody(t, resp2, &st)
	if st.Count != 3 || st.Dimensions == nil || *st.Dimensions != 2 || !st.IndexLoaded {
		t.Errorf("unexpected stats after upload: %+v", st)
	}
}

func TestServerSearch(t *testing.T) {
	ts := newTestServer(t)

	t.Run("no index loaded", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/api/search", searchRequest{Query: []float32{1, 0}, K: 1})
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected 404, got %d", resp.StatusCode)
		}
	})

	uploadTestEmbeddings(t, ts)

	t.Run("ranked results", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/api/search", searchRequest{Query: []float32{1, 0}, K: 2})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		var body searchResponse
		decodeBody(t, resp, &body)
		if len(body.Results) != 2 || body.Results[0].ID != "one" {
			t.Errorf("unexpected results: %+v", body.Results)
		}
		if body.QueryTimeMs < 0 {
			t.Errorf("query time must be non-negative, got %f", body.QueryTimeMs)
		}
	})

	t.Run("k defaults when omitted", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/api/search", searchRequest{Query: []float32{1, 0}})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		var body searchResponse
		decodeBody(t, resp, &body)
		if len(body.Results) != 3 { // default k clamps to the dataset size
			t.Errorf("expected 3 results, got %d", len(body.Results))
		}
	})

	t.Run("dimension mismatch is 400", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/api/search", searchRequest{Query: []float32{1, 0, 0}, K: 1})
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("negative k is 400", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/api/search", searchRequest{Query: []float32{1, 0}, K: -2})
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", resp.StatusCode)
		}
	})
}

func TestServerUploadErrors(t *testing.T) {
	ts := newTestServer(t)

	t.Run("empty payload", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/api/upload", uploadRequest{})
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("inconsistent dimensions", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/api/upload", map[string]any{
			"embeddings": []Embedding{
				{ID: "a", Vector: []float32{1, 0}},
				{ID: "b", Vector: []float32{1, 0, 0}},
			},
		})
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", resp.StatusCode)
		}
	})
}

func TestServerLoad(t *testing.T) {
	ts := newTestServer(t)

	t.Run("missing path", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/load")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("unreadable file", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/load?path=/does/not/exist.bin")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", resp.StatusCode)
		}
	})

	t.Run("loads a dataset file", func(t *testing.T) {
		dataset, err := GenerateRandomEmbeddings(6, 4, 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		path := filepath.Join(t.TempDir(), "data.bin")
		if err := dataset.Save(path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		resp, err := http.Get(fmt.Sprintf("%s/api/load?path=%s", ts.URL, path))
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		var st stats
		decodeBody(t, resp, &st)
		if st.Count != 6 || !st.IndexLoaded {
			t.Errorf("unexpected stats after load: %+v", st)
		}
	})
}

func TestServerWorkerConfig(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dataset := NewDataset()
	if err := dataset.Add("one", []float32{1, 0}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("regular index", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Workers = 1
		srv := NewServer(cfg, logger)
		if err := srv.swapDataset(dataset); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := poolLimit(srv.index); got != 1 {
			t.Errorf("expected pool limit 1, got %d", got)
		}
	})

	t.Run("quantized index", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Workers = 1
		cfg.CompressionMethod = CompressionQuantized
		srv := NewServer(cfg, logger)
		if err := srv.swapDataset(dataset); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := poolLimit(srv.index); got != 1 {
			t.Errorf("expected pool limit 1, got %d", got)
		}
	})
}

func TestServerQuantizedConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CompressionMethod = CompressionQuantized
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ts := httptest.NewServer(NewServer(cfg, logger).Handler())
	t.Cleanup(ts.Close)

	uploadTestEmbeddings(t, ts)

	resp := postJSON(t, ts.URL+"/api/search", searchRequest{Query: []float32{0, 1}, K: 1})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body searchResponse
	decodeBody(t, resp, &body)
	if body.Results[0].ID != "two" {
		t.Errorf("expected two first, got %s", body.Results[0].ID)
	}
}
