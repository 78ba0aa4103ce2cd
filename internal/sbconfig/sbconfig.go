package sbconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"ssdeploy/internal/cred"
	"ssdeploy/internal/models"
)

// Document is the proxy service configuration file layout.
type Document struct {
	Log       LogSection `json:"log"`
	Inbounds  []Inbound  `json:"inbounds"`
	Outbounds []Outbound `json:"outbounds"`
}

type LogSection struct {
	Level string `json:"level"`
}

type Inbound struct {
	Type       string `json:"type"`
	Listen     string `json:"listen"`
	ListenPort int    `json:"listen_port"`
	Method     string `json:"method"`
	Password   string `json:"password"`
	Tag        string `json:"tag"`
}

type Outbound struct {
	Type string `json:"type"`
	Tag  string `json:"tag"`
}

// Writer serializes the service descriptor to the fixed config path.
// Prior content is overwritten unconditionally; there are no merge
// semantics.
type Writer struct {
	Path string
}

func NewWriter(path string) *Writer {
	return &Writer{Path: path}
}

// Build renders the descriptor as one shadowsocks inbound plus one
// direct-routing outbound.
func Build(desc models.ServiceDescriptor) Document {
	return Document{
		Log: LogSection{Level: "info"},
		Inbounds: []Inbound{{
			Type:       "shadowsocks",
			Listen:     desc.ListenAddress,
			ListenPort: desc.Port,
			Method:     desc.Method,
			Password:   desc.Secret,
			Tag:        desc.Tag,
		}},
		Outbounds: []Outbound{{
			Type: "direct",
			Tag:  "direct-out",
		}},
	}
}

/**
 * Write the service configuration file
 * @param {ServiceDescriptor} desc - validated listening parameters
 * @returns {error} Non-nil on invariant violation or filesystem failure
 * @description
 * - Rejects an empty secret or out-of-range port before touching disk
 * - Creates the configuration directory if needed (idempotent)
 * - File mode 0600: the file carries the PSK
 */
func (w *Writer) Write(desc models.ServiceDescriptor) error {
	if desc.Secret == "" {
		return fmt.Errorf("refusing to write config with empty secret")
	}
	if desc.Port < cred.PortMin || desc.Port > cred.PortMax {
		return fmt.Errorf("refusing to write config with port %d outside %d-%d",
			desc.Port, cred.PortMin, cred.PortMax)
	}
	if err := os.MkdirAll(filepath.Dir(w.Path), 0755); err != nil {
		return fmt.Errorf("create config directory: %v", err)
	}
	data, err := json.MarshalIndent(Build(desc), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(w.Path, append(data, '\n'), 0600)
}

// Read loads an existing configuration, used by the link and status
// commands to recover credentials from a prior run.
func (w *Writer) Read() (*Document, error) {
	data, err := os.ReadFile(w.Path)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse '%s': %v", w.Path, err)
	}
	if len(doc.Inbounds) == 0 {
		return nil, fmt.Errorf("'%s' has no inbounds", w.Path)
	}
	return &doc, nil
}
