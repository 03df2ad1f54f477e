package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolate points HOME and the working directory at empty temp dirs so the
// developer's own config files never leak into a test.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoader_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := NewLoader(nil).Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Ontology.BasePath != "fibo-ontology" {
		t.Errorf("expected default base path, got %s", cfg.Ontology.BasePath)
	}
}

func TestLoader_ProjectConfigInParent(t *testing.T) {
	dir := isolate(t)
	content := "model:\n  name: project-model\n"
	if err := os.WriteFile(filepath.Join(dir, ProjectConfigFile), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}
	t.Chdir(sub)

	cfg, err := NewLoader(nil).Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Model.Name != "project-model" {
		t.Errorf("expected project-model, got %s", cfg.Model.Name)
	}
}

func TestLoader_UserThenExplicit(t *testing.T) {
	isolate(t)
	home, _ := os.UserHomeDir()

	user := DefaultConfig()
	user.Model.Name = "user-model"
	user.Server.Addr = ":7000"
	if err := user.SaveToFile(filepath.Join(home, UserConfigDir, UserConfigFile)); err != nil {
		t.Fatal(err)
	}

	explicit := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(explicit, []byte("model:\n  name: explicit-model\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewLoader(nil).Load(explicit)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Model.Name != "explicit-model" {
		t.Errorf("expected explicit file to win, got %s", cfg.Model.Name)
	}
	if cfg.Server.Addr != ":7000" {
		t.Errorf("expected user addr to survive, got %s", cfg.Server.Addr)
	}

	if _, err := NewLoader(nil).Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit config")
	}
}

func TestLoader_ProjectKeepsUserSettings(t *testing.T) {
	dir := isolate(t)
	home, _ := os.UserHomeDir()

	userPath := filepath.Join(home, UserConfigDir, UserConfigFile)
	if err := os.MkdirAll(filepath.Dir(userPath), 0755); err != nil {
		t.Fatal(err)
	}
	user := "server:\n  addr: \":7000\"\nmodel:\n  temperature: 0.7\n"
	if err := os.WriteFile(userPath, []byte(user), 0644); err != nil {
		t.Fatal(err)
	}
	project := "model:\n  name: project-model\n"
	if err := os.WriteFile(filepath.Join(dir, ProjectConfigFile), []byte(project), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewLoader(nil).Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Model.Name != "project-model" {
		t.Errorf("expected project-model, got %s", cfg.Model.Name)
	}
	if cfg.Server.Addr != ":7000" {
		t.Errorf("expected user addr to survive the project file, got %s", cfg.Server.Addr)
	}
	if cfg.Model.Temperature != 0.7 {
		t.Errorf("expected user temperature 0.7, got %v", cfg.Model.Temperature)
	}
	if cfg.Ontology.BasePath != "fibo-ontology" {
		t.Errorf("expected default base path, got %s", cfg.Ontology.BasePath)
	}
}

func TestLoader_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("SEMFIBO_BASE_PATH", "/env/fibo")
	t.Setenv("SEMFIBO_MODULE_SET", "securities")
	t.Setenv("SEMFIBO_MODEL_PROVIDER", "openai")
	t.Setenv("SEMFIBO_MODEL_TIMEOUT", "30s")
	t.Setenv("SEMFIBO_MODEL_TEMPERATURE", "0.1")
	t.Setenv("SEMFIBO_AUDIT", "true")
	t.Setenv("SEMFIBO_ALLOWED_ORIGINS", "http://a,http://b")

	cfg, err := NewLoader(nil).Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Ontology.BasePath != "/env/fibo" || cfg.Ontology.ModuleSet != "securities" {
		t.Errorf("unexpected ontology config %+v", cfg.Ontology)
	}
	if cfg.Model.Provider != "openai" || cfg.Model.Timeout != 30*time.Second || cfg.Model.Temperature != 0.1 {
		t.Errorf("unexpected model config %+v", cfg.Model)
	}
	if !cfg.Audit.Enabled {
		t.Error("expected audit enabled from env")
	}
	if len(cfg.Server.AllowedOrigins) != 2 {
		t.Errorf("expected 2 origins, got %v", cfg.Server.AllowedOrigins)
	}
}

func TestLoader_InvalidEnv(t *testing.T) {
	isolate(t)
	t.Setenv("SEMFIBO_MODEL_TIMEOUT", "soon")

	if _, err := NewLoader(nil).Load(""); err == nil {
		t.Error("expected error for invalid duration")
	}
}

func TestLoader_EnsureUserConfig(t *testing.T) {
	isolate(t)
	l := NewLoader(nil)

	if err := l.EnsureUserConfig(); err != nil {
		t.Fatalf("EnsureUserConfig() error = %v", err)
	}
	home, _ := os.UserHomeDir()
	if _, err := os.Stat(filepath.Join(home, UserConfigDir, UserConfigFile)); err != nil {
		t.Errorf("expected user config to exist: %v", err)
	}
	if err := l.EnsureUserConfig(); err != nil {
		t.Errorf("second EnsureUserConfig() error = %v", err)
	}
}
