package httpget

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGetBytes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ok" {
			w.Write([]byte("hello"))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := &http.Client{Timeout: 2 * time.Second}
	body, err := GetBytes(client, server.URL+"/ok")
	if err != nil || string(body) != "hello" {
		t.Errorf("GetBytes = (%q, %v)", body, err)
	}

	if _, err := GetBytes(client, server.URL+"/missing"); err == nil {
		t.Error("non-200 status accepted")
	}
}

func TestGetFileCreatesDirectories(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("payload"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "deep", "nested", "file.bin")
	client := &http.Client{Timeout: 2 * time.Second}
	if err := GetFile(client, server.URL, dest); err != nil {
		t.Fatalf("GetFile: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil || string(data) != "payload" {
		t.Errorf("saved file = (%q, %v)", data, err)
	}
}

func TestGetFileFailureLeavesNoPartialResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "file.bin")
	client := &http.Client{Timeout: 2 * time.Second}
	if err := GetFile(client, server.URL, dest); err == nil {
		t.Fatal("non-200 status accepted")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("failed download left a file behind")
	}
}
