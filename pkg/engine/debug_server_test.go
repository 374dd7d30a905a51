package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// waitForServer polls the health endpoint until ready or timeout.
func waitForServer(port int, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	url := fmt.Sprintf("http://localhost:%d/health", port)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	return fmt.Errorf("server not ready after %v", timeout)
}

// waitForServerDown polls until the server stops responding or timeout.
func waitForServerDown(port int, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	url := fmt.Sprintf("http://localhost:%d/health", port)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err != nil {
			return nil // Connection refused = server is down
		}
		resp.Body.Close()
		time.Sleep(5 * time.Millisecond)
	}
	return fmt.Errorf("server still running after %v", timeout)
}

func startDebug(t *testing.T, e *Engine) int {
	t.Helper()
	port, err := e.StartDebugServer("localhost:0")
	if err != nil {
		t.Fatalf("failed to start debug server: %v", err)
	}
	t.Cleanup(e.StopDebugServer)
	if err := waitForServer(port, 2*time.Second); err != nil {
		t.Fatalf("server not ready: %v", err)
	}
	return port
}

func get(t *testing.T, port int, path string) (int, []byte) {
	t.Helper()
	resp, err := http.Get(fmt.Sprintf("http://localhost:%d%s", port, path))
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return resp.StatusCode, body
}

func TestDebugServer_StartStop(t *testing.T) {
	e := startEngine(t, helloScene)
	port := startDebug(t, e)

	again, err := e.StartDebugServer("localhost:0")
	if err != nil || again != port {
		t.Errorf("second start = (%d, %v), want (%d, nil)", again, err, port)
	}

	status, body := get(t, port, "/health")
	if status != http.StatusOK {
		t.Errorf("expected status 200, got %d", status)
	}
	var health map[string]string
	if err := json.Unmarshal(body, &health); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if health["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", health["status"])
	}

	e.StopDebugServer()
	if err := waitForServerDown(port, 2*time.Second); err != nil {
		t.Errorf("server did not stop: %v", err)
	}
}

func TestDebugServer_Tree(t *testing.T) {
	e := startEngine(t, pointerScene)
	if _, err := e.StepFrame(context.Background()); err != nil {
		t.Fatal(err)
	}
	port := startDebug(t, e)

	status, body := get(t, port, "/tree")
	if status != http.StatusOK {
		t.Fatalf("status = %d: %s", status, body)
	}
	var tree TreeNode
	if err := json.Unmarshal(body, &tree); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if tree.Tag != "box" || len(tree.Children) != 1 {
		t.Fatalf("tree = %+v, want box with one child", tree)
	}
	child := tree.Children[0]
	if child.Tag != "hello" || child.Depth != 1 || child.Attributes["x"] != "10" {
		t.Errorf("child = %+v", child)
	}
	if child.Bounds == nil || child.Bounds.Left != 10 || child.Bounds.Right != 30 {
		t.Errorf("child bounds = %+v", child.Bounds)
	}
	if !strings.Contains(child.Backend, "Hello") {
		t.Errorf("backend = %q", child.Backend)
	}
}

func TestDebugServer_EmptyTree(t *testing.T) {
	e := startEngine(t, "viewport: {width: 10, height: 10}")
	port := startDebug(t, e)
	if status, _ := get(t, port, "/tree"); status != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", status)
	}
	if status, _ := get(t, port, "/frames"); status != http.StatusServiceUnavailable {
		t.Errorf("frames without tracing: status = %d, want 503", status)
	}
	if status, _ := get(t, port, "/metrics"); status != http.StatusNotFound {
		t.Errorf("metrics without registry: status = %d, want 404", status)
	}
}

func TestDebugServer_FramesAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := startEngine(t, helloScene, WithFrameTrace(8, 0), WithPrometheus(reg))
	for range 3 {
		if _, err := e.StepFrame(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	port := startDebug(t, e)

	status, body := get(t, port, "/frames?limit=2")
	if status != http.StatusOK {
		t.Fatalf("frames status = %d", status)
	}
	var timeline FrameTimeline
	if err := json.Unmarshal(body, &timeline); err != nil {
		t.Fatal(err)
	}
	if len(timeline.Samples) != 2 || timeline.Samples[1].FrameID != 3 {
		t.Errorf("samples = %+v, want the last two frames", timeline.Samples)
	}

	status, body = get(t, port, "/metrics")
	if status != http.StatusOK {
		t.Fatalf("metrics status = %d", status)
	}
	if !strings.Contains(string(body), "canopy_pipeline_frames_total 3") {
		t.Errorf("metrics missing frame counter:\n%s", body)
	}

	status, body = get(t, port, "/registry")
	if status != http.StatusOK {
		t.Fatalf("registry status = %d", status)
	}
	var listing struct {
		Sealed  bool            `json:"sealed"`
		Entries []RegistryEntry `json:"entries"`
	}
	if err := json.Unmarshal(body, &listing); err != nil {
		t.Fatal(err)
	}
	if !listing.Sealed || len(listing.Entries) != 3 {
		t.Errorf("registry = %+v, want 3 sealed entries", listing)
	}
	if listing.Entries[0].Provider == "" {
		t.Error("built-in entries should carry a provider")
	}
}

func TestDebugServer_MethodNotAllowed(t *testing.T) {
	e := startEngine(t, helloScene)
	port := startDebug(t, e)
	resp, err := http.Post(fmt.Sprintf("http://localhost:%d/tree", port), "text/plain", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}
