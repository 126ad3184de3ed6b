package shell

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/claude-linux/claude-desktop-builder/internal/utils/logger"
)

// The exported entry points are function variables so tests can swap in
// deterministic fakes instead of spawning real subprocesses.
var (
	ExecCmd           = execCmd
	ExecCmdWithStream = execCmdWithStream
	IsCommandExist    = isCommandExist
)

// getShell returns the preferred shell, falling back to /bin/sh if bash is
// not available.
func getShell() string {
	shells := []string{"/bin/bash", "/usr/bin/bash", "/bin/sh"}
	for _, shell := range shells {
		if _, err := os.Stat(shell); err == nil {
			return shell
		}
	}
	return "/bin/sh"
}

// isCommandExist checks if a command resolves on the host PATH.
func isCommandExist(cmd string) bool {
	shell := getShell()
	output, _ := exec.Command(shell, "-c", "command -v "+cmd).Output()
	return len(bytes.TrimSpace(output)) > 0
}

// execCmd runs cmdStr through the shell in workDir (empty means the current
// directory) and returns the combined output.
func execCmd(cmdStr string, workDir string, envVal []string) (string, error) {
	log := logger.Logger()
	log.Debugf("Exec: [%s]", cmdStr)

	shell := getShell()
	cmd := exec.Command(shell, "-c", cmdStr)
	cmd.Dir = workDir
	if len(envVal) > 0 {
		cmd.Env = append(os.Environ(), envVal...)
	}

	output, err := cmd.CombinedOutput()
	outputStr := string(output)

	if err != nil {
		if outputStr != "" {
			log.Infof(outputStr)
		}
		return outputStr, fmt.Errorf("failed to exec %s: %w", cmdStr, err)
	}
	if outputStr != "" {
		log.Debugf(outputStr)
	}
	return outputStr, nil
}

// execCmdWithStream runs cmdStr and streams stdout/stderr lines through the
// logger as they appear. Used for long-running tools (dnf, rpmbuild, npm).
func execCmdWithStream(cmdStr string, workDir string, envVal []string) (string, error) {
	log := logger.Logger()
	log.Debugf("Exec: [%s]", cmdStr)

	shell := getShell()
	cmd := exec.Command(shell, "-c", cmdStr)
	cmd.Dir = workDir
	if len(envVal) > 0 {
		cmd.Env = append(os.Environ(), envVal...)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("failed to get stdout pipe for command %s: %w", cmdStr, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return "", fmt.Errorf("failed to get stderr pipe for command %s: %w", cmdStr, err)
	}

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("failed to start command %s: %w", cmdStr, err)
	}

	var outputStr string
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			str := scanner.Text()
			if str != "" {
				outputStr += str + "\n"
				log.Infof(str)
			}
		}
	}()

	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			str := scanner.Text()
			if str != "" {
				log.Infof(str)
			}
		}
	}()

	wg.Wait()

	if err := cmd.Wait(); err != nil {
		return outputStr, fmt.Errorf("failed to wait for command %s: %w", cmdStr, err)
	}
	return outputStr, nil
}

// Quote wraps a path in single quotes for safe interpolation into a shell
// command line.
func Quote(path string) string {
	return "'" + strings.ReplaceAll(path, "'", `'\''`) + "'"
}
