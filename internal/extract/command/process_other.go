//go:build !unix

package command

import (
	"os"
	"os/exec"
	"runtime"
	"strconv"
)

func setProcessGroup(cmd *exec.Cmd) {}

// killProcessTree kills the command and its children. On Windows taskkill walks the
// tree (/T), elsewhere only the direct process can be killed.
func killProcessTree(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}

	if runtime.GOOS == "windows" {
		kill := exec.Command("taskkill", "/pid", strconv.Itoa(cmd.Process.Pid), "/T", "/F")
		if err := kill.Run(); err == nil {
			return nil
		}
	}

	err := cmd.Process.Kill()
	if err != nil && err != os.ErrProcessDone {
		return err
	}

	return nil
}
