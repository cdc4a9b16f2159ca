package instance

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-ps"
)

// ErrAlreadyRunning is returned when another process with the same executable name is alive.
var ErrAlreadyRunning = errors.New("another controller instance is running")

// lister returns the running processes.
type lister func() ([]ps.Process, error)

// EnsureSingle fails if a process other than the current one runs the executable name.
// Two controllers on one host would split the RF bursts between their counters.
func EnsureSingle(name string) error {
	return ensureSingle(name, os.Getpid(), ps.Processes)
}

// CurrentExecutable returns the executable name of the running process.
func CurrentExecutable() string {
	return filepath.Base(os.Args[0])
}

func ensureSingle(name string, selfPID int, list lister) error {
	processes, err := list()
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}

	for _, process := range processes {
		if process.Pid() == selfPID {
			continue
		}

		if !strings.EqualFold(process.Executable(), name) {
			continue
		}

		return fmt.Errorf("%w: pid %d", ErrAlreadyRunning, process.Pid())
	}

	return nil
}
