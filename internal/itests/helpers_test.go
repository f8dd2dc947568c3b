//go:build integration

package itests

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"CursorAPI/internal/response"
)

func getEnvelope(t *testing.T, path string) (int, response.Envelope) {
	t.Helper()
	if testBaseURL == "" || httpSrv == nil {
		t.Fatal("bootstrap not ready: HTTP server/baseURL missing")
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(testBaseURL + path)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)
	var env response.Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		t.Fatalf("invalid JSON response: %v; body=%s", err, string(b))
	}
	return resp.StatusCode, env
}

func idsOf(t *testing.T, env response.Envelope) []int {
	t.Helper()
	out := make([]int, 0, len(env.Data))
	for _, row := range env.Data {
		n, ok := row["id"].(float64)
		if !ok {
			t.Fatalf("row without numeric id: %v", row)
		}
		out = append(out, int(n))
	}
	return out
}

func asInt(v any) int {
	if n, ok := v.(float64); ok {
		return int(n)
	}
	return -1
}
