package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/go-drift/canopy/pkg/element"
	"github.com/go-drift/canopy/pkg/errors"
)

// debugServer manages the HTTP server for tree inspection.
type debugServer struct {
	server   *http.Server
	listener net.Listener
	mu       sync.Mutex
}

// TreeNode represents a node in the serialized element tree.
type TreeNode struct {
	Handle     string            `json:"handle"`
	Tag        string            `json:"tag"`
	Backend    string            `json:"backend,omitempty"`
	Bounds     *SafeRect         `json:"bounds,omitempty"`
	Hidden     bool              `json:"hidden,omitempty"`
	Depth      int               `json:"depth"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Children   []*TreeNode       `json:"children,omitempty"`
}

// SafeFloat wraps a float64 to handle Inf/NaN in JSON encoding.
type SafeFloat float64

func (f SafeFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsInf(v, 1) {
		return []byte(`"Infinity"`), nil
	}
	if math.IsInf(v, -1) {
		return []byte(`"-Infinity"`), nil
	}
	if math.IsNaN(v) {
		return []byte(`"NaN"`), nil
	}
	return json.Marshal(v)
}

// SafeRect is a JSON-safe version of graphics.Rect.
type SafeRect struct {
	Left   SafeFloat `json:"left"`
	Top    SafeFloat `json:"top"`
	Right  SafeFloat `json:"right"`
	Bottom SafeFloat `json:"bottom"`
}

// RegistryEntry describes one registered backend.
type RegistryEntry struct {
	Tag      string `json:"tag"`
	Provider string `json:"provider,omitempty"`
}

// StartDebugServer serves inspection endpoints on addr (e.g. ":0") and
// returns the bound port. Calling it again while running returns the
// current port.
func (e *Engine) StartDebugServer(addr string) (int, error) {
	e.debug.mu.Lock()
	defer e.debug.mu.Unlock()

	if e.debug.server != nil {
		return e.debug.listener.Addr().(*net.TCPAddr).Port, nil
	}

	// Bind listener first to fail fast on port conflicts
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return 0, fmt.Errorf("debug server listen: %w", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port

	mux := http.NewServeMux()
	mux.HandleFunc("/health", handleHealth)
	mux.HandleFunc("/tree", e.handleTree)
	mux.HandleFunc("/frames", e.handleFrames)
	mux.HandleFunc("/registry", e.handleRegistry)
	if e.promReg != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(e.promReg, promhttp.HandlerOpts{}))
	}

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	e.debug.server = server
	e.debug.listener = listener

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			e.debug.mu.Lock()
			e.debug.server = nil
			e.debug.listener = nil
			e.debug.mu.Unlock()
			errors.Logger().Error("debug server stopped", "err", err)
		}
	}()

	errors.Logger().Info("debug server listening", "port", port)
	return port, nil
}

// StopDebugServer gracefully shuts down the debug server.
func (e *Engine) StopDebugServer() {
	e.debug.mu.Lock()
	server := e.debug.server
	e.debug.server = nil
	e.debug.listener = nil
	e.debug.mu.Unlock()

	if server == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	server.Shutdown(ctx)
}

// maxTreeDepth limits serialization depth for pathological trees.
const maxTreeDepth = 500

// Snapshot serializes the attached element tree, or returns nil when the
// tree has no root.
func (e *Engine) Snapshot() *TreeNode {
	e.frameLock.Lock()
	defer e.frameLock.Unlock()

	var root *TreeNode
	stack := []*TreeNode{}
	e.tree.Walk(func(n *element.Node, depth int) element.VisitResult {
		node := serializeNode(n, depth)
		stack = stack[:depth]
		if depth == 0 {
			root = node
		} else {
			parent := stack[depth-1]
			parent.Children = append(parent.Children, node)
		}
		stack = append(stack, node)
		if depth >= maxTreeDepth {
			return element.VisitSkipChildren
		}
		return element.VisitContinue
	})
	return root
}

func serializeNode(n *element.Node, depth int) *TreeNode {
	node := &TreeNode{
		Handle:     n.Handle().String(),
		Tag:        n.Tag(),
		Hidden:     n.Hidden(),
		Depth:      depth,
		Attributes: n.Attributes(),
	}
	if b := n.Backend(); b != nil {
		node.Backend = fmt.Sprintf("%T", b)
	}
	if n.LaidOut() {
		r := n.Bounds()
		node.Bounds = &SafeRect{
			Left:   SafeFloat(r.Left),
			Top:    SafeFloat(r.Top),
			Right:  SafeFloat(r.Right),
			Bottom: SafeFloat(r.Bottom),
		}
	}
	return node
}

// handleHealth returns a simple health check response.
func handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// handleTree returns the element tree as JSON.
func (e *Engine) handleTree(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Recover from panics during serialization
	defer func() {
		if rec := recover(); rec != nil {
			http.Error(w, fmt.Sprintf("panic: %v", rec), http.StatusInternalServerError)
		}
	}()

	tree := e.Snapshot()
	if tree == nil {
		http.Error(w, "no element tree", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, tree)
}

// handleFrames returns recent frame samples as JSON. Query parameters
// limit (most recent n) and min_ms (frame time floor) filter the samples.
func (e *Engine) handleFrames(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if e.trace == nil {
		http.Error(w, "frame tracing disabled", http.StatusServiceUnavailable)
		return
	}

	resp := e.trace.Snapshot()
	applyFrameFilters(r, &resp)
	writeJSON(w, resp)
}

// handleRegistry lists the registered backends.
func (e *Engine) handleRegistry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var resp struct {
		Sealed  bool            `json:"sealed"`
		Entries []RegistryEntry `json:"entries"`
	}
	resp.Sealed = e.reg.Sealed()
	for _, entry := range e.reg.Entries() {
		item := RegistryEntry{Tag: entry.Tag}
		if entry.Provider.Module != "" {
			item.Provider = entry.Provider.String()
		}
		resp.Entries = append(resp.Entries, item)
	}
	writeJSON(w, resp)
}

func applyFrameFilters(r *http.Request, resp *FrameTimeline) {
	if v := parseFloatQuery(r, "min_ms"); v > 0 {
		filtered := resp.Samples[:0]
		for _, s := range resp.Samples {
			if s.FrameMs >= v {
				filtered = append(filtered, s)
			}
		}
		resp.Samples = filtered
	}
	if value := r.URL.Query().Get("limit"); value != "" {
		if limit, err := strconv.Atoi(value); err == nil && limit > 0 && limit < len(resp.Samples) {
			resp.Samples = resp.Samples[len(resp.Samples)-limit:]
		}
	}
}

func parseFloatQuery(r *http.Request, key string) float64 {
	value := r.URL.Query().Get(key)
	if value == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return parsed
}

// writeJSON encodes to a buffer first so encoding errors become a 500.
func writeJSON(w http.ResponseWriter, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		http.Error(w, fmt.Sprintf("json encode error: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}
