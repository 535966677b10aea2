package jobs

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenPath(filepath.Join(t.TempDir(), "jobs.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCreateAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, "req-1", "Photosynthesis", "photosynthesis")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected non-zero job id")
	}
	if created.Status != StatusPending {
		t.Fatalf("expected pending status, got %s", created.Status)
	}

	fetched, err := store.Get(ctx, "req-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched.Topic != "Photosynthesis" || fetched.Slug != "photosynthesis" {
		t.Fatalf("unexpected job: %+v", fetched)
	}
	if fetched.CreatedAt.IsZero() || fetched.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to round-trip")
	}
}

func TestGetMissingJob(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStatusTransitions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	if _, err := store.Create(ctx, "req-1", "Gravity", "gravity"); err != nil {
		t.Fatalf("create: %v", err)
	}

	for _, status := range []Status{
		StatusGeneratingContent,
		StatusGeneratingScript,
		StatusGeneratingProgram,
		StatusRendering,
		StatusSynthesizing,
		StatusSyncing,
		StatusPublishing,
	} {
		if err := store.SetStatus(ctx, "req-1", status); err != nil {
			t.Fatalf("set status %s: %v", status, err)
		}
	}
	if err := store.MarkCompleted(ctx, "req-1", "educational_videos/gravity_20260825_120000", "https://host/video.mp4"); err != nil {
		t.Fatalf("mark completed: %v", err)
	}

	job, err := store.Get(ctx, "req-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if job.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", job.Status)
	}
	if job.PublicID != "educational_videos/gravity_20260825_120000" {
		t.Fatalf("unexpected public id: %q", job.PublicID)
	}
	if job.VideoURL != "https://host/video.mp4" {
		t.Fatalf("unexpected video url: %q", job.VideoURL)
	}
}

func TestSetStatusRejectsUnknown(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	if _, err := store.Create(ctx, "req-1", "Topic", "topic"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.SetStatus(ctx, "req-1", Status("exploding")); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestSetStatusMissingJob(t *testing.T) {
	store := newTestStore(t)
	if err := store.SetStatus(context.Background(), "ghost", StatusRendering); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSyncAndFallbackFlags(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	if _, err := store.Create(ctx, "req-1", "Topic", "topic"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.SetSync(ctx, "req-1", 1.25, true); err != nil {
		t.Fatalf("set sync: %v", err)
	}
	if err := store.SetFallbackUsed(ctx, "req-1"); err != nil {
		t.Fatalf("set fallback: %v", err)
	}

	job, err := store.Get(ctx, "req-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if job.SpeedFactor != 1.25 || !job.StretchApplied {
		t.Fatalf("unexpected sync fields: %+v", job)
	}
	if !job.FallbackUsed {
		t.Fatal("expected fallback flag set")
	}
}

func TestMarkFailed(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	if _, err := store.Create(ctx, "req-1", "Topic", "topic"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.MarkFailed(ctx, "req-1", "render exploded"); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	job, err := store.Get(ctx, "req-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if job.Status != StatusFailed || job.ErrorMessage != "render exploded" {
		t.Fatalf("unexpected failed job: %+v", job)
	}
}

func TestListOrderingAndFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		if _, err := store.Create(ctx, id, "Topic "+id, "topic_"+id); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	if err := store.MarkFailed(ctx, "b", "boom"); err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	all, err := store.List(ctx, "", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 jobs, got %d", len(all))
	}
	if all[0].RequestID != "c" {
		t.Fatalf("expected newest first, got %s", all[0].RequestID)
	}

	failed, err := store.List(ctx, StatusFailed, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(failed) != 1 || failed[0].RequestID != "b" {
		t.Fatalf("unexpected failed list: %+v", failed)
	}

	limited, err := store.List(ctx, "", 2)
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(limited))
	}
}

func TestSummaryCounts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c", "d"} {
		if _, err := store.Create(ctx, id, "Topic", "topic"); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	if err := store.SetStatus(ctx, "b", StatusRendering); err != nil {
		t.Fatalf("set status: %v", err)
	}
	if err := store.MarkCompleted(ctx, "c", "pid", "url"); err != nil {
		t.Fatalf("mark completed: %v", err)
	}
	if err := store.MarkFailed(ctx, "d", "boom"); err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	summary, err := store.Summary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	want := HealthSummary{Total: 4, Pending: 1, Processing: 1, Completed: 1, Failed: 1}
	if summary != want {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestCheckHealth(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	if _, err := store.Create(ctx, "req-1", "Topic", "topic"); err != nil {
		t.Fatalf("create: %v", err)
	}
	health := store.CheckHealth(ctx)
	if !health.DatabaseExists || !health.DatabaseReadable || !health.TableExists {
		t.Fatalf("unexpected health: %+v", health)
	}
	if !health.IntegrityCheck {
		t.Fatal("expected integrity check to pass")
	}
	if health.TotalJobs != 1 {
		t.Fatalf("expected 1 job, got %d", health.TotalJobs)
	}
	if health.SchemaVersion != "1" {
		t.Fatalf("unexpected schema version: %q", health.SchemaVersion)
	}
}

func TestSchemaMismatchDetected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jobs.db")
	store, err := OpenPath(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if _, err := store.db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	store.Close()

	if _, err := OpenPath(path); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestParseStatus(t *testing.T) {
	if status, ok := ParseStatus(" Rendering "); !ok || status != StatusRendering {
		t.Fatalf("unexpected parse: %s %v", status, ok)
	}
	if _, ok := ParseStatus("definitely-not-a-status"); ok {
		t.Fatal("expected unknown status to fail")
	}
	if !StatusCompleted.IsTerminal() || StatusRendering.IsTerminal() {
		t.Fatal("terminal classification wrong")
	}
	if !StatusSyncing.IsProcessing() || StatusPending.IsProcessing() {
		t.Fatal("processing classification wrong")
	}
}
