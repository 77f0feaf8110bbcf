package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("REDO_WINDOW_DAYS", "")
	t.Setenv("REPORT_CANDIDATE_CHUNK_SIZE", "")
	t.Setenv("APP_PORT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Report.RedoWindowDays != 90 {
		t.Errorf("redo window = %d, want 90", cfg.Report.RedoWindowDays)
	}
	if cfg.Report.CandidateChunkSize != 500 {
		t.Errorf("chunk size = %d, want 500", cfg.Report.CandidateChunkSize)
	}
	if cfg.App.Port != "8080" {
		t.Errorf("port = %s, want 8080", cfg.App.Port)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("REDO_WINDOW_DAYS", "60")
	t.Setenv("REPORT_RATE_LIMIT_PER_MINUTE", "3")
	t.Setenv("REPORT_CLIENT_ID", "ops-console")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Report.RedoWindowDays != 60 {
		t.Errorf("redo window = %d, want 60", cfg.Report.RedoWindowDays)
	}
	if cfg.Report.RateLimitPerMinute != 3 {
		t.Errorf("rate limit = %d, want 3", cfg.Report.RateLimitPerMinute)
	}
	if cfg.Auth.ClientID != "ops-console" {
		t.Errorf("client id = %s", cfg.Auth.ClientID)
	}
	if cfg.Logger.Level != "debug" {
		t.Errorf("log level = %s", cfg.Logger.Level)
	}
}

func TestLoadIgnoresMalformedInts(t *testing.T) {
	t.Setenv("REDO_WINDOW_DAYS", "ninety")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Report.RedoWindowDays != 90 {
		t.Errorf("redo window = %d, want fallback 90", cfg.Report.RedoWindowDays)
	}
}
