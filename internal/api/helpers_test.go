package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dinosave/remix-studio/internal/assets"
	"github.com/dinosave/remix-studio/internal/download"
	"github.com/dinosave/remix-studio/internal/jobs"
	"github.com/dinosave/remix-studio/internal/matting"
	"github.com/dinosave/remix-studio/internal/playback"
	"github.com/dinosave/remix-studio/internal/remix"
	"github.com/dinosave/remix-studio/internal/render"
	"github.com/dinosave/remix-studio/internal/workspace"
)

type fakeDownloader struct {
	result *download.Result
	info   *download.Info
	err    error

	gotURL       string
	gotWatermark bool
}

func (f *fakeDownloader) Download(ctx context.Context, url string, removeWatermark bool) (*download.Result, error) {
	f.gotURL = url
	f.gotWatermark = removeWatermark
	return f.result, f.err
}

func (f *fakeDownloader) Info(ctx context.Context, url string) (*download.Info, error) {
	f.gotURL = url
	return f.info, f.err
}

type fakeRemixer struct {
	result *remix.Result
	err    error
	got    *render.EditRequest
}

func (f *fakeRemixer) Remix(ctx context.Context, req render.EditRequest) (*remix.Result, error) {
	f.got = &req
	return f.result, f.err
}

type fakeMatting struct {
	capability matting.Capability
	record     assets.Record
	err        error
	gotRef     string
}

func (f *fakeMatting) RemoveBackground(ctx context.Context, ref string) (assets.Record, error) {
	f.gotRef = ref
	return f.record, f.err
}

func (f *fakeMatting) Capability() matting.Capability { return f.capability }

type fakeJobs struct {
	jobs map[string]*jobs.Job
}

func (f *fakeJobs) Create(ctx context.Context, j *jobs.Job) error { return nil }

func (f *fakeJobs) Get(ctx context.Context, id string) (*jobs.Job, error) {
	if j, ok := f.jobs[id]; ok {
		return j, nil
	}
	return nil, jobs.ErrNotFound
}

func (f *fakeJobs) List(ctx context.Context, limit int) ([]*jobs.Job, error) {
	out := []*jobs.Job{}
	for _, j := range f.jobs {
		out = append(out, j)
	}
	return out, nil
}

func (f *fakeJobs) Finish(ctx context.Context, id, status, output, errorMsg string) error {
	return nil
}

type testEnv struct {
	cfg        ServerConfig
	ws         *workspace.Workspace
	downloader *fakeDownloader
	remixer    *fakeRemixer
	matting    *fakeMatting
	handler    http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ws := workspace.New(t.TempDir())
	if err := ws.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs() error = %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	env := &testEnv{
		ws:         ws,
		downloader: &fakeDownloader{},
		remixer:    &fakeRemixer{},
		matting:    &fakeMatting{},
	}
	env.cfg = ServerConfig{
		Workspace:  ws,
		Assets:     assets.NewStore(assets.NewResolver(ws.AssetsDir()), "/assets"),
		Downloader: env.downloader,
		Remixer:    env.remixer,
		Matting:    env.matting,
		Playback:   playback.NewServer(logger),
		Logger:     logger,
		StartTime:  time.Now(),
		Version:    "test",
	}
	env.handler = NewRouter(env.cfg)
	return env
}

func (e *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func multipartRequest(t *testing.T, target, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	part.Write(content)
	if err := mw.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeJSONBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rr.Body.String(), err)
	}
	return body
}

func assertStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status code = %d, want %d (body %s)", rr.Code, want, rr.Body.String())
	}
}

func assertCode(t *testing.T, rr *httptest.ResponseRecorder, want string) {
	t.Helper()
	body := decodeJSONBody(t, rr)
	if body["code"] != want {
		t.Fatalf("code = %v, want %s", body["code"], want)
	}
}
