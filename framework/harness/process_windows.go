//go:build windows

package harness

import (
	"os"
	"os/exec"

	"golang.org/x/sys/windows"
)

func setProcGroup(cmd *exec.Cmd) {}

func killProcessGroup(pid int) error {
	p, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return p.Kill()
}

// processAlive relies on FindProcess opening a handle, which fails once the process is gone.
func processAlive(pid int) bool {
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	_ = p.Release()
	return true
}

// processMatches reports whether pid is running the named executable. If the image name cannot
// be read the answer is false, so an unidentified process is never killed.
func processMatches(pid int, binaryName string) bool {
	image, err := processImagePath(pid)
	if err != nil {
		return false
	}
	return imageNameMatches(image, binaryName)
}

func processImagePath(pid int) (string, error) {
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err != nil {
		return "", err
	}
	defer windows.CloseHandle(h) //nolint:errcheck
	buf := make([]uint16, windows.MAX_LONG_PATH)
	size := uint32(len(buf))
	if err := windows.QueryFullProcessImageName(h, 0, &buf[0], &size); err != nil {
		return "", err
	}
	return windows.UTF16ToString(buf[:size]), nil
}
