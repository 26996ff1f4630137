package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got, want := cfg.BindAddr, "127.0.0.1:8780"; got != want {
		t.Fatalf("BindAddr = %q; want %q", got, want)
	}
	if got := cfg.QueueCapacity; got != 150 {
		t.Fatalf("QueueCapacity = %d; want 150", got)
	}
	if !cfg.PortAutoFallback {
		t.Fatal("PortAutoFallback = false; want true")
	}
	if cfg.RecordDir != "" {
		t.Fatalf("RecordDir = %q; want empty (recording off)", cfg.RecordDir)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("WEBCAST_BIND_ADDR", "0.0.0.0:9000")
	t.Setenv("WEBCAST_QUEUE_CAPACITY", "25")
	t.Setenv("WEBCAST_PORT_CANDIDATES", "127.0.0.1:9001, 127.0.0.1:9002")
	t.Setenv("WEBCAST_PORT_AUTO_FALLBACK", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got, want := cfg.BindAddr, "0.0.0.0:9000"; got != want {
		t.Fatalf("BindAddr = %q; want %q", got, want)
	}
	if got := cfg.QueueCapacity; got != 25 {
		t.Fatalf("QueueCapacity = %d; want 25", got)
	}
	if len(cfg.PortCandidates) != 2 || cfg.PortCandidates[1] != "127.0.0.1:9002" {
		t.Fatalf("PortCandidates = %v; want two trimmed addresses", cfg.PortCandidates)
	}
	if cfg.PortAutoFallback {
		t.Fatal("PortAutoFallback = true; want false")
	}
}

func TestLoadRejectsNonsenseValues(t *testing.T) {
	t.Setenv("WEBCAST_QUEUE_CAPACITY", "-5")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := cfg.QueueCapacity; got != 150 {
		t.Fatalf("QueueCapacity = %d for negative env value; want default 150", got)
	}
}

func TestLoadScreencasterDefaults(t *testing.T) {
	cfg, err := LoadScreencaster()
	if err != nil {
		t.Fatalf("LoadScreencaster() error = %v", err)
	}
	if got, want := cfg.CDPURL(), "http://127.0.0.1:9222"; got != want {
		t.Fatalf("CDPURL() = %q; want %q", got, want)
	}
	if cfg.MaxFPS != 10 {
		t.Fatalf("MaxFPS = %d; want 10", cfg.MaxFPS)
	}
}
