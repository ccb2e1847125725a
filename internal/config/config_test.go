package config

import "testing"

func TestLoadOverridesOnlyGivenFields(t *testing.T) {
	cfg, err := Load([]byte("iterationMultiplier: 10\n"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LanguageID != "gsc" {
		t.Errorf("LanguageID = %q, want default %q", cfg.LanguageID, "gsc")
	}
	if cfg.IterationMultiplier != 10 {
		t.Errorf("IterationMultiplier = %d, want 10", cfg.IterationMultiplier)
	}
}

func TestIsReservedNamespaceMatchesGlob(t *testing.T) {
	cfg := Config{ReservedNamespaces: []string{"vendor_*"}}
	if !cfg.IsReservedNamespace("vendor_ui") {
		t.Errorf("expected vendor_ui to match vendor_*")
	}
	if cfg.IsReservedNamespace("game") {
		t.Errorf("expected game not to match vendor_*")
	}
}

func TestIsIgnoredMatchesGlob(t *testing.T) {
	cfg := Config{Ignore: []string{"*_test.gsc"}}
	if !cfg.IsIgnored("scripts/foo_test.gsc") {
		t.Errorf("expected foo_test.gsc to be ignored")
	}
	if cfg.IsIgnored("scripts/foo.gsc") {
		t.Errorf("expected foo.gsc not to be ignored")
	}
}
