package sbconfig

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"ssdeploy/internal/models"
)

func testDescriptor() models.ServiceDescriptor {
	return models.ServiceDescriptor{
		BinaryPath:    "/usr/local/bin/sing-box",
		ListenAddress: "::",
		Port:          28443,
		Method:        "2022-blake3-aes-128-gcm",
		Secret:        "zv6cBGK+P0W3aQnvXszFmg==",
		Tag:           "ss-2022",
	}
}

func TestWriteAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etc", "sing-box", "config.json")
	w := NewWriter(path)

	if err := w.Write(testDescriptor()); err != nil {
		t.Fatalf("Write: %v", err)
	}

	doc, err := w.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if doc.Log.Level != "info" {
		t.Errorf("log.level = %q", doc.Log.Level)
	}
	if len(doc.Inbounds) != 1 || len(doc.Outbounds) != 1 {
		t.Fatalf("got %d inbounds, %d outbounds", len(doc.Inbounds), len(doc.Outbounds))
	}
	in := doc.Inbounds[0]
	if in.Type != "shadowsocks" || in.Listen != "::" || in.ListenPort != 28443 {
		t.Errorf("inbound = %+v", in)
	}
	if in.Method != "2022-blake3-aes-128-gcm" || in.Password == "" || in.Tag != "ss-2022" {
		t.Errorf("inbound credentials = %+v", in)
	}
	if doc.Outbounds[0].Type != "direct" {
		t.Errorf("outbound type = %q", doc.Outbounds[0].Type)
	}
}

func TestWriteSerializedFieldNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := NewWriter(path).Write(testDescriptor()); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("config is not valid JSON: %v", err)
	}
	var inbounds []map[string]interface{}
	if err := json.Unmarshal(raw["inbounds"], &inbounds); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"type", "listen", "listen_port", "method", "password", "tag"} {
		if _, ok := inbounds[0][key]; !ok {
			t.Errorf("inbound is missing the %q key", key)
		}
	}
}

func TestWriteRejectsInvalidDescriptor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	w := NewWriter(path)

	desc := testDescriptor()
	desc.Secret = ""
	if err := w.Write(desc); err == nil {
		t.Error("empty secret accepted")
	}

	desc = testDescriptor()
	desc.Port = 61000
	if err := w.Write(desc); err == nil {
		t.Error("out-of-range port accepted")
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("rejected write must not create the config file")
	}
}

/**
 * A second run overwrites the prior file unconditionally, no merging
 */
func TestWriteOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	w := NewWriter(path)

	first := testDescriptor()
	if err := w.Write(first); err != nil {
		t.Fatal(err)
	}
	second := testDescriptor()
	second.Port = 31337
	second.Secret = "new-secret"
	if err := w.Write(second); err != nil {
		t.Fatal(err)
	}

	doc, err := w.Read()
	if err != nil {
		t.Fatal(err)
	}
	if doc.Inbounds[0].ListenPort != 31337 || doc.Inbounds[0].Password != "new-secret" {
		t.Errorf("overwrite did not take effect: %+v", doc.Inbounds[0])
	}
}
