package main

import (
	"os"

	"github.com/ready-set-deploy/rsd/internal/rsdfmt"
	"github.com/ready-set-deploy/rsd/internal/system"
)

func readSystem(path string) (system.System, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return system.System{}, err
	}
	return rsdfmt.UnmarshalSystem(data)
}

func writeSystem(path string, s system.System) error {
	data, err := rsdfmt.MarshalSystem(s)
	if err != nil {
		return err
	}
	if path == "-" || path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// stdinIsTerminal reports whether standard input is an interactive terminal
// rather than a pipe or redirected file -- gather-all uses this to decide
// between reading a provider list from stdin and falling back to the full
// static registry.
func stdinIsTerminal() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
