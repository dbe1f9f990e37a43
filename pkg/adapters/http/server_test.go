package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/gaea"
	"github.com/aretw0/gaea/pkg/adapters/memory"
	"github.com/aretw0/gaea/pkg/components"
	"github.com/aretw0/gaea/pkg/dsl"
	"github.com/aretw0/gaea/pkg/navigation"
	"github.com/aretw0/gaea/pkg/observability"
	"github.com/aretw0/gaea/pkg/session"
)

type fixture struct {
	server *Server
	loader *memory.Loader
	jumps  *navigation.Recorder
	reg    *prometheus.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	b := dsl.New()
	b.Add("page").
		Component(components.Container).
		Children("button", "label", "link", "clock")
	b.Add("button").
		Component(components.Button).
		Prop("text", "Press").
		OnCallback("onClick").PassSiblings("x")
	b.Add("label").
		Component(components.Text).
		Bind("text", "x")
	b.Add("link").
		Component(components.Link).
		Prop("href", "https://example.com").
		OnCallback("onClick").Jump("https://example.com/next")
	b.Add("clock").
		Component(components.Text).
		OnSubscribe("tick").PassSiblings("stamp")

	loader, err := b.Build()
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	jumps := navigation.NewRecorder(10)
	eng, err := gaea.New("", gaea.WithLoader(loader), gaea.WithNavigator(jumps), gaea.WithLifecycleHooks(metrics.Hooks()))
	require.NoError(t, err)

	mounts := session.NewManager(eng)
	t.Cleanup(func() { _ = mounts.CloseAll(context.Background()) })

	srv := NewServer(eng, mounts,
		WithJumps(jumps),
		WithMetrics(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
	)
	return &fixture{server: srv, loader: loader, jumps: jumps, reg: reg}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(w, req)
	return w
}

func (f *fixture) mount(t *testing.T) string {
	t.Helper()
	w := f.do(t, http.MethodPost, "/mounts", `{"root":"page"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp MountResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ID)
	return resp.ID
}

// decodeTree reads a mount response as plain JSON for assertions.
func decodeTree(t *testing.T, raw []byte) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(raw, &resp))
	return resp["tree"].(map[string]any)
}

func child(tree map[string]any, key string) map[string]any {
	for _, c := range tree["children"].([]any) {
		m := c.(map[string]any)
		if m["instance_key"] == key {
			return m
		}
	}
	return nil
}

func TestHealthAndInfo(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	f.mount(t)
	w = f.do(t, http.MethodGet, "/info", "")
	require.Equal(t, http.StatusOK, w.Code)
	var info map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "gaea-http", info["app"])
	assert.Equal(t, 1.0, info["mounts"])
	assert.Equal(t, 1.0, info["subscriptions"])
}

func TestCreateMount(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/mounts", `{"root":"page"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	tree := decodeTree(t, w.Body.Bytes())
	assert.Equal(t, "container", tree["type"])
	button := child(tree, "button")
	require.NotNil(t, button)
	assert.Equal(t, "Press", button["text"])
	assert.Equal(t, []any{"onClick"}, button["handlers"])

	w = f.do(t, http.MethodGet, "/mounts", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []session.Info
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, 5, list[0].Instances)
}

func TestCreateMount_Errors(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/mounts", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/mounts", `not json`).Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPost, "/mounts", `{"root":"missing"}`).Code)
}

func TestInvoke_PropagatesSiblings(t *testing.T) {
	f := newFixture(t)
	id := f.mount(t)

	w := f.do(t, http.MethodPost, "/mounts/"+id+"/invoke/button/onClick", `{"args":["hello"]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	tree := decodeTree(t, w.Body.Bytes())
	assert.Equal(t, "hello", child(tree, "label")["text"])

	w = f.do(t, http.MethodGet, "/mounts/"+id+"/tree", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello", child(decodeTree(t, w.Body.Bytes()), "label")["text"])
}

func TestInvoke_Errors(t *testing.T) {
	f := newFixture(t)
	id := f.mount(t)

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPost, "/mounts/nope/invoke/button/onClick", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPost, "/mounts/"+id+"/invoke/button/onHover", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPost, "/mounts/"+id+"/invoke/ghost/onClick", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/mounts/"+id+"/invoke/button/onClick", `{"args":1}`).Code)
}

func TestInvoke_JumpIsRecorded(t *testing.T) {
	f := newFixture(t)
	id := f.mount(t)

	w := f.do(t, http.MethodPost, "/mounts/"+id+"/invoke/link/onClick", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/jumps", "")
	require.Equal(t, http.StatusOK, w.Code)
	var jumps []navigation.Jump
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &jumps))
	require.Len(t, jumps, 1)
	assert.Equal(t, "https://example.com/next", jumps[0].URL)
}

func TestPublish(t *testing.T) {
	f := newFixture(t)
	id := f.mount(t)

	w := f.do(t, http.MethodPost, "/mounts/"+id+"/publish/tick", `{"at": 1}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	root, err := f.server.Mounts.Get(id)
	require.NoError(t, err)
	assert.Contains(t, root.State("page"), "stamp")

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/mounts/"+id+"/publish/tick", `{`).Code)
}

func TestPublishAll(t *testing.T) {
	f := newFixture(t)
	first := f.mount(t)
	second := f.mount(t)

	require.NoError(t, f.server.PublishAll(context.Background(), "tick", nil))

	for _, id := range []string{first, second} {
		root, err := f.server.Mounts.Get(id)
		require.NoError(t, err)
		assert.Contains(t, root.State("page"), "stamp")
	}
}

func TestPublishAll_LogsSkippedBroadcast(t *testing.T) {
	f := newFixture(t)
	var logs bytes.Buffer
	f.server.logger = slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	id := f.mount(t)
	root, err := f.server.Mounts.Get(id)
	require.NoError(t, err)
	require.NoError(t, root.Unmount(context.Background()))

	assert.Error(t, f.server.PublishAll(context.Background(), "tick", nil))
	assert.Contains(t, logs.String(), "Skipped tree broadcast")
	assert.Contains(t, logs.String(), "mount_id="+id)
}

func TestDeleteMount(t *testing.T) {
	f := newFixture(t)
	id := f.mount(t)

	assert.Equal(t, http.StatusNoContent, f.do(t, http.MethodDelete, "/mounts/"+id, "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/mounts/"+id+"/tree", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodDelete, "/mounts/"+id, "").Code)
}

func TestListInstances(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/instances", "")
	require.Equal(t, http.StatusOK, w.Code)
	var instances []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &instances))
	assert.Len(t, instances, 5)
}

func TestMetrics(t *testing.T) {
	f := newFixture(t)
	id := f.mount(t)
	f.do(t, http.MethodPost, "/mounts/"+id+"/invoke/button/onClick", `{"args":["x"]}`)

	w := f.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "gaea_renders_total")
	assert.Contains(t, body, `gaea_actions_total{action="passingSiblingNodes",trigger="callback"} 1`)
	assert.Contains(t, body, "gaea_mounted_instances 5")
}

func TestCORS(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodOptions, "/mounts", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSubscribeEvents_Mount(t *testing.T) {
	f := newFixture(t)
	id := f.mount(t)
	handler := f.server.Handler()

	ctx, cancel := context.WithCancel(context.Background())
	wSub := httptest.NewRecorder()
	reqSub := httptest.NewRequest(http.MethodGet, "/events?mount_id="+id, nil).WithContext(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		handler.ServeHTTP(wSub, reqSub)
	}()

	require.Eventually(t, func() bool { return f.server.Streams.Count(id) == 1 }, time.Second, 10*time.Millisecond)

	w := f.do(t, http.MethodPost, "/mounts/"+id+"/invoke/button/onClick", `{"args":["streamed"]}`)
	require.Equal(t, http.StatusOK, w.Code)

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	output := wSub.Body.String()
	assert.Contains(t, output, "event: ping")
	assert.Contains(t, output, `"streamed"`)
}

func TestSubscribeEvents_Global(t *testing.T) {
	f := newFixture(t)
	handler := f.server.Handler()

	ctx, cancel := context.WithCancel(context.Background())
	wSub := httptest.NewRecorder()
	reqSub := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		handler.ServeHTTP(wSub, reqSub)
	}()

	// The handler may not be watching yet, so keep writing for a while.
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		require.NoError(t, f.loader.PutInstance(context.Background(), "label",
			[]byte(`{"gaeaKey":"gaea-text","parentInstanceKey":"page"}`)))
		time.Sleep(20 * time.Millisecond)
	}
	cancel()
	<-done

	assert.True(t, strings.Contains(wSub.Body.String(), "data: label"))
}

func TestReload(t *testing.T) {
	f := newFixture(t)
	id := f.mount(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = f.server.Reload(ctx) }()

	assert.Eventually(t, func() bool {
		_ = f.loader.PutInstance(context.Background(), "label",
			[]byte(`{"gaeaKey":"gaea-text","parentInstanceKey":"page","data":{"props":{"text":"edited"}}}`))

		w := f.do(t, http.MethodGet, "/mounts/"+id+"/tree", "")
		if w.Code != http.StatusOK {
			return false
		}
		var resp map[string]any
		if json.Unmarshal(w.Body.Bytes(), &resp) != nil {
			return false
		}
		label := child(resp["tree"].(map[string]any), "label")
		return label != nil && label["text"] == "edited"
	}, 2*time.Second, 50*time.Millisecond)
}
