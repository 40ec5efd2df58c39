package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T, extra string) string {
	t.Helper()
	base := t.TempDir()
	contents := fmt.Sprintf(`
[paths]
data_dir = %q
log_dir = %q

[catalog]
api_key = "test"
rate_limit_ms = 1

[logging]
level = "error"
%s`, filepath.Join(base, "data"), filepath.Join(base, "logs"), extra)

	path := filepath.Join(base, "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func requireContains(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("output missing %q:\n%s", want, output)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	out, err := runCLI(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	cfgPath := writeTestConfig(t, "")
	out, err = runCLI(t, "--config", cfgPath, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
}

func TestConfigShowRedactsSecrets(t *testing.T) {
	cfgPath := writeTestConfig(t, "")
	out, err := runCLI(t, "--config", cfgPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if strings.Contains(out, "\ttest\n") {
		t.Fatalf("secret value leaked into output:\n%s", out)
	}
	requireContains(t, out, "catalog api key")
	requireContains(t, out, "(set)")
}

func TestStoreStatsEmpty(t *testing.T) {
	cfgPath := writeTestConfig(t, "")
	out, err := runCLI(t, "--config", cfgPath, "store", "stats")
	if err != nil {
		t.Fatalf("store stats: %v", err)
	}
	requireContains(t, out, "Records")
	requireContains(t, out, "0")
}

func TestResolveCommandEndToEnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/search/"):
			json.NewEncoder(w).Encode(map[string]any{
				"results": []map[string]any{
					{"id": 670, "title": "Oldboy", "release_date": "2003-11-21", "popularity": 40.0},
				},
			})
		case r.URL.Path == "/movie/670":
			json.NewEncoder(w).Encode(map[string]any{
				"id":                670,
				"title":             "Oldboy",
				"release_date":      "2003-11-21",
				"original_language": "ko",
				"vote_average":      8.3,
				"vote_count":        9000,
				"genres":            []map[string]any{{"id": 53, "name": "Thriller"}},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	cfgPath := writeTestConfig(t, "")
	// Point the catalog section at the stub server.
	raw, err := os.ReadFile(cfgPath)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	patched := strings.Replace(string(raw), `api_key = "test"`,
		fmt.Sprintf("api_key = \"test\"\nbase_url = %q", server.URL), 1)
	if err := os.WriteFile(cfgPath, []byte(patched), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	out, err := runCLI(t, "--config", cfgPath, "resolve", "Oldboy", "--year", "2003")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	requireContains(t, out, "Oldboy (2003)")
	requireContains(t, out, "Thriller")

	// A second run hits the local store without the catalog; the store file
	// should exist under the data dir.
	out, err = runCLI(t, "--config", cfgPath, "resolve", "Oldboy", "--year", "2003")
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	requireContains(t, out, "Oldboy (2003)")
}
