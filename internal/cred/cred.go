package cred

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"ssdeploy/internal/logger"
	"ssdeploy/internal/models"
	"ssdeploy/internal/utils"
)

const (
	PortMin = 10000
	PortMax = 60000
	// SecretLen is the PSK byte length required by 2022-blake3-aes-128-gcm.
	SecretLen = 16
)

// Generator produces the listening port and pre-shared key, each through
// an ordered fallback chain that always terminates.
type Generator struct {
	Runner utils.Runner
	// BinaryPath is the installed proxy binary; when present its own
	// secret-generation subcommand is preferred over local randomness.
	BinaryPath string
}

func NewGenerator(r utils.Runner, binaryPath string) *Generator {
	return &Generator{Runner: r, BinaryPath: binaryPath}
}

/**
 * Generate the listening port
 * @param {string} explicit - operator-supplied value, empty for auto
 * @returns {int, error} Port in [10000,60000]; error only for a rejected
 * explicit value (all-digit and range checks), which is fatal to the run
 */
func (g *Generator) Port(explicit string) (int, error) {
	if explicit != "" {
		port := 0
		for _, c := range explicit {
			if c < '0' || c > '9' {
				return 0, fmt.Errorf("port '%s' is not numeric", explicit)
			}
			port = port*10 + int(c-'0')
			if port > PortMax {
				break
			}
		}
		if port < PortMin || port > PortMax {
			return 0, fmt.Errorf("port %s outside %d-%d", explicit, PortMin, PortMax)
		}
		return port, nil
	}

	port, source, _ := First([]Provider[int]{
		{Name: "crypto-rand", Generate: randomPort},
		{Name: "unix-time", Generate: timePort},
	})
	logger.Infof("Selected port %d (source: %s)", port, source)
	return port, nil
}

/**
 * Generate the pre-shared key
 * @param {string} explicit - operator/environment-supplied secret, used
 * verbatim when non-empty
 * @returns {string, SecretOrigin} Never-empty secret and its origin; the
 * weakFallback origin signals a timestamp-derived value the operator must
 * be warned about
 */
func (g *Generator) Secret(explicit string) (string, models.SecretOrigin) {
	if explicit != "" {
		return explicit, models.OriginUserSupplied
	}

	type secret struct {
		value  string
		origin models.SecretOrigin
	}
	s, _, _ := First([]Provider[secret]{
		{Name: "proxy-generate", Generate: func() (secret, bool) {
			v, ok := g.toolSecret()
			return secret{v, models.OriginToolGenerated}, ok
		}},
		{Name: "crypto-rand", Generate: func() (secret, bool) {
			v, ok := randomSecret()
			return secret{v, models.OriginRandomGenerated}, ok
		}},
		{Name: "weak-timestamp", Generate: func() (secret, bool) {
			return secret{weakSecret(), models.OriginWeakFallback}, true
		}},
	})
	if s.origin == models.OriginWeakFallback {
		logger.Warn("No secure random source available; using a WEAK timestamp-derived PSK. Replace it before exposing the service.")
	}
	return s.value, s.origin
}

// toolSecret asks the installed proxy binary for a PSK in its canonical
// format. Unavailable when the binary is not installed yet.
func (g *Generator) toolSecret() (string, bool) {
	if g.BinaryPath == "" {
		return "", false
	}
	out, err := g.Runner.Output(g.BinaryPath, "generate", "rand", "--base64", fmt.Sprintf("%d", SecretLen))
	if err != nil || out == "" {
		return "", false
	}
	return out, true
}

// randomPort derives a port from two random bytes reduced to the range
func randomPort() (int, bool) {
	var b [2]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, false
	}
	n := int(b[0])<<8 | int(b[1])
	return PortMin + n%(PortMax-PortMin+1), true
}

// timePort is the terminal port fallback; it cannot be unavailable
func timePort() (int, bool) {
	n := int(time.Now().Unix())
	return PortMin + n%(PortMax-PortMin+1), true
}

func randomSecret() (string, bool) {
	b := make([]byte, SecretLen)
	if _, err := rand.Read(b); err != nil {
		return "", false
	}
	return base64.StdEncoding.EncodeToString(b), true
}

// weakSecret is the terminal secret fallback, explicitly weak
func weakSecret() string {
	return fmt.Sprintf("psk-%d", time.Now().Unix())
}
