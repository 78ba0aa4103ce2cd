package pkgmgr

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"ssdeploy/internal/models"
)

type fakeRunner struct {
	commands []string
	fail     bool
}

func (f *fakeRunner) LookPath(name string) (string, error) { return name, nil }

func (f *fakeRunner) Run(name string, args ...string) error {
	f.commands = append(f.commands, name+" "+strings.Join(args, " "))
	if f.fail {
		return fmt.Errorf("%s failed", name)
	}
	return nil
}

func (f *fakeRunner) Output(name string, args ...string) (string, error) { return "", nil }

func TestInstallCommands(t *testing.T) {
	pkgs := []string{"ca-certificates", "curl"}
	cases := []struct {
		pm   models.PackageManager
		want []string
	}{
		{models.PkgApk, []string{"apk add --no-cache ca-certificates curl"}},
		{models.PkgApt, []string{"apt-get update", "apt-get install -y ca-certificates curl"}},
		{models.PkgDnf, []string{"dnf install -y ca-certificates curl"}},
		{models.PkgYum, []string{"yum install -y ca-certificates curl"}},
	}
	for _, c := range cases {
		cmds, err := InstallCommands(c.pm, pkgs)
		if err != nil {
			t.Fatalf("%s: %v", c.pm, err)
		}
		if len(cmds) != len(c.want) {
			t.Fatalf("%s: got %d commands, want %d", c.pm, len(cmds), len(c.want))
		}
		for i, cmd := range cmds {
			if got := strings.Join(cmd, " "); got != c.want[i] {
				t.Errorf("%s: command[%d] = %q, want %q", c.pm, i, got, c.want[i])
			}
		}
	}
}

func TestInstallCommandsNoManager(t *testing.T) {
	if _, err := InstallCommands(models.PkgNone, Prerequisites); !errors.Is(err, ErrNoPackageManager) {
		t.Errorf("err = %v, want ErrNoPackageManager", err)
	}
}

func TestInstallPrerequisitesBatched(t *testing.T) {
	r := &fakeRunner{}
	if err := NewInstaller(r).InstallPrerequisites(models.PkgApk); err != nil {
		t.Fatal(err)
	}
	if len(r.commands) != 1 {
		t.Fatalf("apk must issue one batched command, got %v", r.commands)
	}
	for _, pkg := range Prerequisites {
		if !strings.Contains(r.commands[0], pkg) {
			t.Errorf("batched command lacks %q: %s", pkg, r.commands[0])
		}
	}
}

func TestInstallPrerequisitesFailureIsReturned(t *testing.T) {
	r := &fakeRunner{fail: true}
	if err := NewInstaller(r).InstallPrerequisites(models.PkgApt); err == nil {
		t.Error("failure swallowed; callers decide it is non-fatal, not this package")
	}
}
