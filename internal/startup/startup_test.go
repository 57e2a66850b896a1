package startup

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"
)

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()
	if info.Version == "" || info.GoVersion == "" || info.OS == "" || info.Arch == "" {
		t.Errorf("GetBuildInfo() has empty fields: %+v", info)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("STARTUP_TEST_KEY", "set")
	if got := getEnv("STARTUP_TEST_KEY", "fallback"); got != "set" {
		t.Errorf("getEnv() = %q, want set", got)
	}
	if got := getEnv("STARTUP_TEST_MISSING", "fallback"); got != "fallback" {
		t.Errorf("getEnv() = %q, want fallback", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		value    string
		fallback bool
		want     bool
	}{
		{"true", false, true},
		{"1", false, true},
		{"YES", false, true},
		{"on", false, true},
		{"false", true, false},
		{"0", true, false},
		{"off", true, false},
		{"garbage", true, true},
		{"", true, true},
		{"", false, false},
	}
	for _, tt := range tests {
		t.Setenv("STARTUP_TEST_BOOL", tt.value)
		if got := getEnvBool("STARTUP_TEST_BOOL", tt.fallback); got != tt.want {
			t.Errorf("getEnvBool(%q, %v) = %v, want %v", tt.value, tt.fallback, got, tt.want)
		}
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATABASE_PATH", filepath.Join(dir, "videotagger.db"))
	t.Setenv("PORT", "")
	t.Setenv("METRICS_PORT", "")
	t.Setenv("PLAYER_COMMAND", "")
	t.Setenv("PLAYER_DISABLED", "")
	t.Setenv("PROBE_DISABLED", "")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if config.Port != "8080" {
		t.Errorf("Port = %q, want 8080", config.Port)
	}
	if config.MetricsPort != "9090" {
		t.Errorf("MetricsPort = %q, want 9090", config.MetricsPort)
	}
	if config.PlayerCommand != "vlc" {
		t.Errorf("PlayerCommand = %q, want vlc", config.PlayerCommand)
	}
	if config.PlayerDisabled || config.ProbeDisabled {
		t.Error("player/probe disabled by default")
	}
	if !filepath.IsAbs(config.DatabasePath) {
		t.Errorf("DatabasePath %q is not absolute", config.DatabasePath)
	}
}

func TestLoadConfigCreatesDatabaseDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "deep")
	t.Setenv("DATABASE_PATH", filepath.Join(dir, "videotagger.db"))

	if _, err := LoadConfig(); err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
}

func TestEnsureDirectoryRejectsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "plain")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := ensureDirectory(file, "test"); err == nil {
		t.Error("ensureDirectory() accepted a plain file")
	}
}

func TestGetRoutes(t *testing.T) {
	router := mux.NewRouter()
	router.HandleFunc("/api/files", func(http.ResponseWriter, *http.Request) {}).Methods(http.MethodGet)
	router.HandleFunc("/api/files/{id}", func(http.ResponseWriter, *http.Request) {}).Methods(http.MethodGet, http.MethodDelete)

	routes, err := GetRoutes(router)
	if err != nil {
		t.Fatalf("GetRoutes() failed: %v", err)
	}
	if len(routes) != 3 {
		t.Errorf("GetRoutes() returned %d routes, want 3", len(routes))
	}
}

func TestGetRouteGroup(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/files/{id}", "api/files"},
		{"/api/tags", "api/tags"},
		{"/healthz", "healthz"},
		{"/", ""},
	}
	for _, tt := range tests {
		if got := getRouteGroup(tt.path); got != tt.want {
			t.Errorf("getRouteGroup(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
