package daemon

import (
	"context"
	"testing"
)

func TestDaemonSingleInstance(t *testing.T) {
	cfg := testConfig(t)
	first := newTestDaemon(t, cfg)
	startDaemon(t, first)

	// Share the lock directory but not the data directory so the second
	// daemon contends only on the lock.
	secondCfg := testConfig(t)
	secondCfg.LogDir = cfg.LogDir
	second := newTestDaemon(t, secondCfg)
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("expected second daemon start to fail while lock is held")
	}
}

func TestDaemonStopIsIdempotent(t *testing.T) {
	d := newTestDaemon(t, testConfig(t))
	startDaemon(t, d)
	d.Stop()
	d.Stop()
	if d.running.Load() {
		t.Fatal("daemon still running after stop")
	}
}

func TestDaemonRestartAfterStop(t *testing.T) {
	d := newTestDaemon(t, testConfig(t))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("first start: %v", err)
	}
	d.Stop()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("restart: %v", err)
	}
	d.Stop()
}
