package services

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"

	"ssdeploy/internal/config"
	"ssdeploy/internal/env"
	"ssdeploy/internal/models"
	"ssdeploy/internal/release"
	"ssdeploy/internal/sslink"
)

type fakeRunner struct {
	available map[string]bool
	commands  []string
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	if f.available[name] {
		return "/usr/bin/" + name, nil
	}
	return "", fmt.Errorf("%s not found", name)
}

func (f *fakeRunner) Run(name string, args ...string) error {
	f.commands = append(f.commands, name+" "+strings.Join(args, " "))
	return nil
}

func (f *fakeRunner) Output(name string, args ...string) (string, error) {
	return "", fmt.Errorf("no output")
}

func buildArchive(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	body := []byte("#!/bin/sh\nexit 0\n")
	hdr := &tar.Header{Name: "sing-box", Mode: 0755, Size: int64(len(body)), Typeflag: tar.TypeReg}
	if err := tw.WriteHeader(hdr); err != nil {
		t.Fatal(err)
	}
	if _, err := tw.Write(body); err != nil {
		t.Fatal(err)
	}
	tw.Close()
	gz.Close()
	return buf.Bytes()
}

// setupWorld points every canonical path and remote endpoint at test
// doubles and restores the globals afterwards.
func setupWorld(t *testing.T, download http.HandlerFunc) (*fakeRunner, *InstallManager, string) {
	t.Helper()

	savedEnv := []string{env.PrimaryBinDir, env.SecondaryBinDir, env.ConfigDir}
	savedCfg := config.Config
	t.Cleanup(func() {
		env.PrimaryBinDir, env.SecondaryBinDir, env.ConfigDir = savedEnv[0], savedEnv[1], savedEnv[2]
		config.Config = savedCfg
	})

	fsRoot := t.TempDir()
	env.PrimaryBinDir = filepath.Join(fsRoot, "usr/local/bin")
	env.SecondaryBinDir = filepath.Join(fsRoot, "usr/bin")
	env.ConfigDir = filepath.Join(fsRoot, "etc/sing-box")

	meta := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(meta.Close)
	dl := httptest.NewServer(download)
	t.Cleanup(dl.Close)
	echo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("203.0.113.7\n"))
	}))
	t.Cleanup(echo.Close)

	config.Config.Download.ReleaseAPI = meta.URL
	config.Config.Download.DownloadBase = dl.URL
	config.Config.Endpoints = []string{echo.URL}
	config.Config.Password = ""

	runner := &fakeRunner{available: map[string]bool{"systemctl": true}}
	unitRoot := t.TempDir()
	m := NewInstallManager(runner, unitRoot)

	osRelease := filepath.Join(fsRoot, "os-release")
	if err := os.WriteFile(osRelease, []byte("ID=debian\n"), 0644); err != nil {
		t.Fatal(err)
	}
	m.profiler.ReleaseFile = osRelease

	return runner, m, unitRoot
}

func TestPipelineEndToEnd(t *testing.T) {
	archive := buildArchive(t)
	runner, m, unitRoot := setupWorld(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	})

	ctx, err := m.Run(InstallOptions{Port: "28443", Password: "test-psk", SkipDeps: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if ctx.Profile.OSFamily != models.FamilyDebian {
		t.Errorf("family = %q", ctx.Profile.OSFamily)
	}

	// Binary installed to the primary canonical path, executable.
	info, err := os.Stat(env.PrimaryBinaryPath())
	if err != nil {
		t.Fatalf("binary not installed: %v", err)
	}
	if info.Mode()&0111 == 0 {
		t.Error("installed binary not executable")
	}

	// Config carries the operator inputs.
	if ctx.Credential.Port != 28443 || ctx.Credential.Secret != "test-psk" {
		t.Errorf("credential = %+v", ctx.Credential)
	}
	if ctx.Credential.Origin != models.OriginUserSupplied {
		t.Errorf("origin = %q", ctx.Credential.Origin)
	}
	if _, err := os.Stat(env.ConfigPath()); err != nil {
		t.Fatalf("config not written: %v", err)
	}

	// Debian host: exactly the systemd unit, never the OpenRC script.
	if ctx.Unit.Kind != models.UnitSystemd || ctx.Unit.Outcome != models.OutcomeStarted {
		t.Errorf("unit = %+v", ctx.Unit)
	}
	if _, err := os.Stat(filepath.Join(unitRoot, "etc/systemd/system/sing-box.service")); err != nil {
		t.Errorf("systemd unit missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(unitRoot, "etc/init.d/sing-box")); !os.IsNotExist(err) {
		t.Error("OpenRC script written on a systemd host")
	}
	if !strings.Contains(strings.Join(runner.commands, "\n"), "systemctl enable --now sing-box") {
		t.Errorf("service not enabled: %v", runner.commands)
	}

	// Links embed the echoed address and round-trip the credentials.
	if ctx.Host != "203.0.113.7" || !ctx.HostKnown {
		t.Errorf("host = (%q, %v)", ctx.Host, ctx.HostKnown)
	}
	for _, uri := range []string{ctx.Link.SIP002, ctx.Link.Legacy} {
		method, secret, err := sslink.DecodeUserInfo(uri)
		if err != nil {
			t.Fatalf("decode %q: %v", uri, err)
		}
		if method != ctx.Descriptor.Method || secret != "test-psk" {
			t.Errorf("round-trip = (%q, %q)", method, secret)
		}
	}
}

/**
 * A second run must skip the download and still end with one valid
 * config and one active unit variant
 */
func TestPipelineIdempotent(t *testing.T) {
	archive := buildArchive(t)
	downloads := 0
	_, m, unitRoot := setupWorld(t, func(w http.ResponseWriter, r *http.Request) {
		downloads++
		w.Write(archive)
	})

	if _, err := m.Run(InstallOptions{SkipDeps: true}); err != nil {
		t.Fatalf("first run: %v", err)
	}
	firstDownloads := downloads

	ctx, err := m.Run(InstallOptions{SkipDeps: true})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if downloads != firstDownloads {
		t.Error("second run re-downloaded an already installed binary")
	}

	if ctx.Credential.Secret == "" {
		t.Error("second run produced an empty secret")
	}
	if ctx.Credential.Port < 10000 || ctx.Credential.Port > 60000 {
		t.Errorf("second run port %d out of range", ctx.Credential.Port)
	}
	if _, err := os.Stat(filepath.Join(unitRoot, "etc/init.d/sing-box")); !os.IsNotExist(err) {
		t.Error("both unit variants present after re-run")
	}
}

func TestPipelineFatalWhenCandidatesExhausted(t *testing.T) {
	_, m, _ := setupWorld(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := m.Run(InstallOptions{SkipDeps: true})
	if !errors.Is(err, release.ErrAllCandidatesFailed) {
		t.Fatalf("err = %v, want ErrAllCandidatesFailed", err)
	}
	if _, statErr := os.Stat(env.PrimaryBinaryPath()); !os.IsNotExist(statErr) {
		t.Error("fatal fetch left a file at the canonical binary path")
	}
	if _, statErr := os.Stat(env.ConfigPath()); !os.IsNotExist(statErr) {
		t.Error("fatal fetch wrote a config file")
	}
}

func TestPipelineRejectsNonNumericPort(t *testing.T) {
	archive := buildArchive(t)
	_, m, _ := setupWorld(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	})

	if _, err := m.Run(InstallOptions{Port: "28a43", SkipDeps: true}); err == nil {
		t.Fatal("non-numeric port accepted")
	}
}

func TestUninstallRemovesArtifacts(t *testing.T) {
	archive := buildArchive(t)
	_, m, unitRoot := setupWorld(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	})

	if _, err := m.Run(InstallOptions{SkipDeps: true}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	m.Uninstall()
	for _, path := range []string{
		env.PrimaryBinaryPath(),
		env.ConfigPath(),
		filepath.Join(unitRoot, "etc/systemd/system/sing-box.service"),
	} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("%s survived uninstall", path)
		}
	}

	// Uninstalling an already-clean host is quiet and safe.
	m.Uninstall()
}
