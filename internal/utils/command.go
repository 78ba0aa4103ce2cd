package utils

import (
	"fmt"
	"os/exec"
	"strings"
)

/**
 * Runner abstracts external command invocation so supervisor and package
 * manager backends can be exercised with fakes in tests
 */
type Runner interface {
	LookPath(name string) (string, error)
	Run(name string, args ...string) error
	Output(name string, args ...string) (string, error)
}

type execRunner struct{}

// NewRunner returns the Runner backed by os/exec
func NewRunner() Runner {
	return execRunner{}
}

func (execRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func (execRunner) Run(name string, args ...string) error {
	out, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s %s: %v: %s", name, strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (execRunner) Output(name string, args ...string) (string, error) {
	out, err := exec.Command(name, args...).Output()
	if err != nil {
		return "", fmt.Errorf("%s %s: %v", name, strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}
