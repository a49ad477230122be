package remix

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/dinosave/remix-studio/internal/assets"
	"github.com/dinosave/remix-studio/internal/ffmpeg"
	"github.com/dinosave/remix-studio/internal/jobs"
	"github.com/dinosave/remix-studio/internal/render"
	"github.com/dinosave/remix-studio/internal/workspace"
)

type fakeTranscoder struct {
	width, height int
	probeErr      error
	runErr        error
	args          []string
}

func (f *fakeTranscoder) Dimensions(ctx context.Context, path string) (int, int, error) {
	return f.width, f.height, f.probeErr
}

func (f *fakeTranscoder) Run(ctx context.Context, args []string) error {
	f.args = args
	out := args[len(args)-1]
	if err := os.WriteFile(out, []byte("rendered"), 0644); err != nil {
		return err
	}
	return f.runErr
}

type fakeJobs struct {
	mu      sync.Mutex
	created []*jobs.Job
	status  map[string]string
	errs    map[string]string
}

func newFakeJobs() *fakeJobs {
	return &fakeJobs{status: map[string]string{}, errs: map[string]string{}}
}

func (f *fakeJobs) Create(ctx context.Context, j *jobs.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, j)
	f.status[j.ID] = j.Status
	return nil
}

func (f *fakeJobs) Get(ctx context.Context, id string) (*jobs.Job, error) {
	return nil, jobs.ErrNotFound
}

func (f *fakeJobs) List(ctx context.Context, limit int) ([]*jobs.Job, error) {
	return nil, nil
}

func (f *fakeJobs) Finish(ctx context.Context, id, status, output, errorMsg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status[id] = status
	f.errs[id] = errorMsg
	return nil
}

type fixture struct {
	svc  *Service
	ws   *workspace.Workspace
	tc   *fakeTranscoder
	jobs *fakeJobs
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ws := workspace.New(t.TempDir())
	if err := ws.EnsureDirs(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(ws.TempDir(), "src00001.mp4"), []byte("src"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(ws.AssetsDir(), "overlays", "dino.png"), []byte("png"), 0644); err != nil {
		t.Fatal(err)
	}

	tc := &fakeTranscoder{width: 720, height: 1280}
	fj := newFakeJobs()
	svc := NewService(Config{
		Workspace:  ws,
		Compiler:   render.NewCompiler(assets.NewResolver(ws.AssetsDir())),
		Transcoder: tc,
		Jobs:       fj,
	})
	return &fixture{svc: svc, ws: ws, tc: tc, jobs: fj}
}

func TestRemix_Success(t *testing.T) {
	f := newFixture(t)

	req := render.EditRequest{
		SourceVideoRef: "src00001",
		Overlays: []render.OverlaySpec{
			{AssetRef: "dino", X: ptr(10), Y: ptr(10), Scale: 0.5},
			{AssetRef: "ghost", X: ptr(10), Y: ptr(10), Scale: 0.5},
		},
	}
	res, err := f.svc.Remix(context.Background(), req)
	if err != nil {
		t.Fatalf("Remix() error = %v", err)
	}

	if !strings.HasPrefix(res.OutputFilename, "remix_") || res.OutputURL != "/output/"+res.OutputFilename {
		t.Errorf("result = %+v", res)
	}
	if len(res.Skipped) != 1 || res.Skipped[0] != "ghost" {
		t.Errorf("Skipped = %v, want [ghost]", res.Skipped)
	}
	if _, err := os.Stat(f.ws.OutputPath(res.OutputFilename)); err != nil {
		t.Errorf("output not published: %v", err)
	}
	if _, err := os.Stat(f.ws.StagingPath(res.OutputFilename)); !os.IsNotExist(err) {
		t.Error("staging file left behind")
	}

	if staged := f.tc.args[len(f.tc.args)-1]; filepath.Dir(staged) != f.ws.TempDir() {
		t.Errorf("render staged at %q, want under %q", staged, f.ws.TempDir())
	}

	joined := strings.Join(f.tc.args, " ")
	if !strings.Contains(joined, "scale=360:-1:flags=lanczos") {
		t.Errorf("probed width not used for overlay scale: %s", joined)
	}

	if f.jobs.status[res.JobID] != jobs.StatusCompleted {
		t.Errorf("job status = %q, want completed", f.jobs.status[res.JobID])
	}
	if len(f.jobs.created) != 1 || f.jobs.created[0].SourceID != "src00001" {
		t.Errorf("created jobs = %+v", f.jobs.created)
	}
}

func TestRemix_SourceNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Remix(context.Background(), render.EditRequest{SourceVideoRef: "missing1"})
	if !errors.Is(err, ErrSourceNotFound) {
		t.Errorf("Remix() error = %v, want ErrSourceNotFound", err)
	}
	if len(f.jobs.created) != 0 {
		t.Error("no job should be recorded for a missing source")
	}
}

func TestRemix_TranscoderFailure(t *testing.T) {
	f := newFixture(t)
	f.tc.runErr = &ffmpeg.ProcessError{Tool: "ffmpeg", ExitCode: 1, Stderr: "Invalid argument"}

	_, err := f.svc.Remix(context.Background(), render.EditRequest{SourceVideoRef: "src00001"})
	var perr *ffmpeg.ProcessError
	if !errors.As(err, &perr) || perr.Stderr != "Invalid argument" {
		t.Fatalf("Remix() error = %v, want ProcessError", err)
	}

	entries, _ := os.ReadDir(f.ws.OutputDir())
	if len(entries) != 0 {
		t.Errorf("output dir should be empty after failure, got %v", entries)
	}

	id := f.jobs.created[0].ID
	if f.jobs.status[id] != jobs.StatusFailed || !strings.Contains(f.jobs.errs[id], "Invalid argument") {
		t.Errorf("job = %s / %s", f.jobs.status[id], f.jobs.errs[id])
	}
}

func TestRemix_ProbeFailureFallsBack(t *testing.T) {
	f := newFixture(t)
	f.tc.probeErr = errors.New("ffprobe missing")

	req := render.EditRequest{
		SourceVideoRef: "src00001",
		Overlays:       []render.OverlaySpec{{AssetRef: "dino", X: ptr(0), Y: ptr(0), Scale: 0.5}},
	}
	if _, err := f.svc.Remix(context.Background(), req); err != nil {
		t.Fatalf("Remix() error = %v", err)
	}
	if joined := strings.Join(f.tc.args, " "); !strings.Contains(joined, "scale=540:-1") {
		t.Errorf("fallback width not used: %s", joined)
	}
}

func TestRemix_WithoutLedger(t *testing.T) {
	f := newFixture(t)
	f.svc.jobs = nil
	if _, err := f.svc.Remix(context.Background(), render.EditRequest{SourceVideoRef: "src00001"}); err != nil {
		t.Fatalf("Remix() error = %v", err)
	}
}

func ptr(v float64) *float64 { return &v }
