package e2e

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"excitond/internal/httpapi"
	"excitond/internal/manager"
	"excitond/internal/registry"
)

const cwPreset = `
start_s: 0
end_s: 1.0e-7
time_step_s: 1.0e-9
excitation_source:
  time_generator: continuous_wave
  n_excitations: 500
  spot_fwhm_m: 1.0e-6
emitter_population:
  radiative_lifetime_s: 2.0e-9
  diffusivity_m2_per_s: 1.0e-4
`

const pulsedPreset = `
start_s: -5.0e-9
end_s: 1.0e-7
time_step_s: 1.0e-10
excitation_source:
  time_generator: gaussian_pulse_train
  n_excitations: 1000
  repetition_rate_hz: 2.0e7
  pulse_fwhm_s: 1.0e-10
  spot_fwhm_m: 1.0e-6
emitter_population:
  radiative_lifetime_s: 1.0e-9
  nonradiative_lifetime_s: 4.0e-9
`

// createTempPresetsDir writes name -> content preset files into a fresh directory.
func createTempPresetsDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for n, content := range files {
		p := filepath.Join(dir, n)
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("write temp preset %s: %v", p, err)
		}
	}
	return dir
}

// newServerForDirWithConfig scans presetsDir and serves a manager built from cfg.
func newServerForDirWithConfig(t *testing.T, presetsDir string, cfg manager.ManagerConfig) (*httptest.Server, *manager.Manager) {
	t.Helper()
	presets, err := registry.LoadDir(presetsDir)
	if err != nil {
		t.Fatalf("scan presets: %v", err)
	}
	cfg.Presets = presets
	mgr := manager.NewWithConfig(cfg)
	srv := httptest.NewServer(httpapi.NewMux(mgr))
	t.Cleanup(srv.Close)
	return srv, mgr
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func httpPostJSON(t *testing.T, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}
