// Package pid guards against concurrent daemon instances with a PID file
// under the system temp directory. Two controllers driving one fan header
// would fight over the duty cycle.
package pid

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/regisgambiza/Smart-Air-Purifier/internal/errors"
	"github.com/regisgambiza/Smart-Air-Purifier/internal/logger"
)

const pidFile = "airpurifierd.pid"

func path() string {
	return filepath.Join(os.TempDir(), pidFile)
}

// Write claims the PID file for this process. A file left behind by a dead
// process is replaced silently; a live owner yields ErrAlreadyRunning.
func Write() error {
	errFactory := errors.New()

	if owner, ok := readOwner(); ok {
		if alive(owner) {
			return errFactory.New(errors.ErrAlreadyRunning)
		}
		logger.Debug().Int("pid", owner).Msg("Replacing stale PID file")
	}

	if err := os.WriteFile(path(), []byte(strconv.Itoa(os.Getpid())), 0o600); err != nil {
		return errFactory.Wrap(errors.ErrInternal, err)
	}

	return nil
}

// Remove deletes the PID file. Missing is not an error.
func Remove() error {
	if err := os.Remove(path()); err != nil && !os.IsNotExist(err) {
		return errors.New().Wrap(errors.ErrInternal, err)
	}

	return nil
}

func readOwner() (int, bool) {
	bytes, err := os.ReadFile(path())
	if err != nil {
		return 0, false
	}

	owner, err := strconv.Atoi(strings.TrimSpace(string(bytes)))
	if err != nil {
		return 0, false
	}

	return owner, true
}

func alive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	return process.Signal(syscall.Signal(0)) == nil
}
