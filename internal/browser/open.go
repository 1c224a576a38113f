// Package browser hands files and URLs to the desktop's default handler.
package browser

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Open opens target, a URL or a local file such as an exported CSV, with the
// user's default application.
func Open(target string) error {
	cmd, err := command(runtime.GOOS, target)
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("browser.Open: %w", err)
	}
	// Reap the helper so it does not linger as a zombie.
	go cmd.Wait() //nolint:errcheck
	return nil
}

func command(goos, target string) (*exec.Cmd, error) {
	if target == "" {
		return nil, fmt.Errorf("browser.Open: empty target")
	}
	if !strings.Contains(target, "://") {
		abs, err := filepath.Abs(target)
		if err != nil {
			return nil, fmt.Errorf("browser.Open: %w", err)
		}
		target = abs
	}
	switch goos {
	case "darwin":
		return exec.Command("open", target), nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return exec.Command("xdg-open", target), nil
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", target), nil
	default:
		return nil, fmt.Errorf("browser.Open: unsupported OS: %s", goos)
	}
}
