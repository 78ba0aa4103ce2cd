package supervise

import (
	"bytes"
	"os"
	"path/filepath"
	"text/template"

	"ssdeploy/internal/env"
	"ssdeploy/internal/logger"
	"ssdeploy/internal/models"
	"ssdeploy/internal/utils"
)

// Supervisor is one init-system backend. Registration is best-effort by
// policy: a failed enable or start degrades the outcome but never aborts
// the run, because the binary and config are already in place.
type Supervisor interface {
	Kind() models.UnitKind
	UnitPath() string
	Register(desc models.ServiceDescriptor) models.ServiceUnit
	Unregister()
}

/**
 * Select the supervisor backend for an OS family
 * @param {OSFamily} family - profiled family; alpine selects OpenRC,
 * every other value (unknown included) selects systemd
 * @param {string} root - filesystem prefix, "/" outside of tests
 */
func ForFamily(family models.OSFamily, r utils.Runner, root string) Supervisor {
	if family == models.FamilyAlpine {
		return &OpenRC{Runner: r, Root: root}
	}
	return &Systemd{Runner: r, Root: root}
}

type unitParams struct {
	BinaryPath string
	ConfigPath string
	PidFile    string
	Name       string
}

func renderUnit(tmpl string, p unitParams) (string, error) {
	t, err := template.New("unit").Parse(tmpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, p); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const openrcScript = `#!/sbin/openrc-run

name="{{.Name}}"
command="{{.BinaryPath}}"
command_args="run -c {{.ConfigPath}}"
command_background=true
pidfile="{{.PidFile}}"

depend() {
	need net
}
`

// OpenRC writes an /etc/init.d script and wires it into the default
// runlevel. Used for the alpine family.
type OpenRC struct {
	Runner utils.Runner
	Root   string
}

func (o *OpenRC) Kind() models.UnitKind { return models.UnitOpenRC }

func (o *OpenRC) UnitPath() string {
	return filepath.Join(o.Root, "etc/init.d", env.BinaryName)
}

/**
 * Register and start the OpenRC service
 * @description Three independently best-effort sub-steps: write the
 * script executable, add it to the default runlevel if rc-update exists,
 * start it if rc-service exists. Each failure warns and moves on.
 */
func (o *OpenRC) Register(desc models.ServiceDescriptor) models.ServiceUnit {
	unit := models.ServiceUnit{Kind: models.UnitOpenRC, Path: o.UnitPath(), Outcome: models.OutcomeStarted}

	content, err := renderUnit(openrcScript, unitParams{
		BinaryPath: desc.BinaryPath,
		ConfigPath: env.ConfigPath(),
		PidFile:    env.PidFile,
		Name:       env.BinaryName,
	})
	if err == nil {
		err = os.MkdirAll(filepath.Dir(unit.Path), 0755)
	}
	if err == nil {
		err = os.WriteFile(unit.Path, []byte(content), 0755)
	}
	if err != nil {
		logger.Warnf("Write OpenRC script '%s' failed: %v", unit.Path, err)
		unit.Outcome = models.OutcomeEnableFailed
		return unit
	}

	if _, err := o.Runner.LookPath("rc-update"); err != nil {
		logger.Warn("rc-update not found, service not added to default runlevel")
		unit.Outcome = models.OutcomeEnableFailed
	} else if err := o.Runner.Run("rc-update", "add", env.BinaryName, "default"); err != nil {
		logger.Warnf("rc-update add failed: %v", err)
		unit.Outcome = models.OutcomeEnableFailed
	}

	if _, err := o.Runner.LookPath("rc-service"); err != nil {
		logger.Warnf("rc-service not found, start '%s' manually", env.BinaryName)
		unit.Outcome = models.OutcomeEnableFailed
	} else if err := o.Runner.Run("rc-service", env.BinaryName, "restart"); err != nil {
		logger.Warnf("rc-service restart failed: %v", err)
		unit.Outcome = models.OutcomeEnableFailed
	}
	return unit
}

func (o *OpenRC) Unregister() {
	if _, err := o.Runner.LookPath("rc-service"); err == nil {
		if err := o.Runner.Run("rc-service", env.BinaryName, "stop"); err != nil {
			logger.Debugf("rc-service stop: %v", err)
		}
	}
	if _, err := o.Runner.LookPath("rc-update"); err == nil {
		if err := o.Runner.Run("rc-update", "del", env.BinaryName, "default"); err != nil {
			logger.Debugf("rc-update del: %v", err)
		}
	}
	if err := os.Remove(o.UnitPath()); err != nil && !os.IsNotExist(err) {
		logger.Warnf("Remove '%s' failed: %v", o.UnitPath(), err)
	}
}

const systemdUnit = `[Unit]
Description={{.Name}} proxy service
After=network.target

[Service]
ExecStart={{.BinaryPath}} run -c {{.ConfigPath}}
Restart=on-failure
RestartSec=3
LimitNOFILE=1048576

[Install]
WantedBy=multi-user.target
`

// Systemd writes a unit file and enables it in one operation. Used for
// every family except alpine, including unrecognized ones.
type Systemd struct {
	Runner utils.Runner
	Root   string
}

func (s *Systemd) Kind() models.UnitKind { return models.UnitSystemd }

func (s *Systemd) UnitPath() string {
	return filepath.Join(s.Root, "etc/systemd/system", env.BinaryName+".service")
}

/**
 * Register and start the systemd service
 * @description Skips registration entirely (with a warning) when
 * systemctl is absent; otherwise writes the unit, reloads the unit
 * cache, and enables+starts in one operation, warning on failure
 */
func (s *Systemd) Register(desc models.ServiceDescriptor) models.ServiceUnit {
	if _, err := s.Runner.LookPath("systemctl"); err != nil {
		logger.Warnf("systemctl not found, skipping service registration; run '%s run -c %s' manually",
			desc.BinaryPath, env.ConfigPath())
		return models.ServiceUnit{Kind: models.UnitNone, Outcome: models.OutcomeSkipped}
	}

	unit := models.ServiceUnit{Kind: models.UnitSystemd, Path: s.UnitPath(), Outcome: models.OutcomeStarted}

	content, err := renderUnit(systemdUnit, unitParams{
		BinaryPath: desc.BinaryPath,
		ConfigPath: env.ConfigPath(),
		Name:       env.BinaryName,
	})
	if err == nil {
		err = os.MkdirAll(filepath.Dir(unit.Path), 0755)
	}
	if err == nil {
		err = os.WriteFile(unit.Path, []byte(content), 0644)
	}
	if err != nil {
		logger.Warnf("Write systemd unit '%s' failed: %v", unit.Path, err)
		unit.Outcome = models.OutcomeEnableFailed
		return unit
	}

	if err := s.Runner.Run("systemctl", "daemon-reload"); err != nil {
		logger.Warnf("systemctl daemon-reload failed: %v", err)
	}
	if err := s.Runner.Run("systemctl", "enable", "--now", env.BinaryName); err != nil {
		logger.Warnf("systemctl enable --now failed: %v", err)
		unit.Outcome = models.OutcomeEnableFailed
	}
	return unit
}

func (s *Systemd) Unregister() {
	if _, err := s.Runner.LookPath("systemctl"); err == nil {
		if err := s.Runner.Run("systemctl", "disable", "--now", env.BinaryName); err != nil {
			logger.Debugf("systemctl disable: %v", err)
		}
	}
	if err := os.Remove(s.UnitPath()); err != nil && !os.IsNotExist(err) {
		logger.Warnf("Remove '%s' failed: %v", s.UnitPath(), err)
		return
	}
	if _, err := s.Runner.LookPath("systemctl"); err == nil {
		if err := s.Runner.Run("systemctl", "daemon-reload"); err != nil {
			logger.Debugf("systemctl daemon-reload: %v", err)
		}
	}
}
