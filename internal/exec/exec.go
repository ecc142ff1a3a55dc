// Package exec runs external commands with their output folded into the log.
package exec

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// Run executes the command attached to the given writers, so progress bars
// and other interactive output stay visible.
func Run(ctx context.Context, log zerolog.Logger, stdout, stderr io.Writer, name string, args ...string) error {
	log.Debug().Str("cmd", cmdText(name, args)).Msg("running")

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w", cmdText(name, args), err)
	}
	return nil
}

// RunAndLog executes the command and logs every output line at debug level.
// On failure the captured output rides along in the error.
func RunAndLog(ctx context.Context, log zerolog.Logger, name string, args ...string) error {
	log.Debug().Str("cmd", cmdText(name, args)).Msg("running")

	cmd := exec.CommandContext(ctx, name, args...)
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	err := cmd.Run()

	scanner := bufio.NewScanner(bytes.NewReader(buf.Bytes()))
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			log.Debug().Str("cmd", name).Msg(line)
		}
	}

	if err != nil {
		return fmt.Errorf("%s failed: %w: %s", cmdText(name, args), err, tail(buf.String()))
	}
	return nil
}

// Output executes the command and returns its combined output.
func Output(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	return string(out), err
}

// Available reports whether name resolves on PATH.
func Available(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func cmdText(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}

// tail keeps an error message readable when a command dumps pages of output.
func tail(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	return strings.Join(lines, "\n")
}
