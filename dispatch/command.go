package dispatch

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"mailreport/apperr"
)

// ResolveCommand returns the SQL to run: the contents of arg when it names
// a regular file, otherwise arg itself.
func ResolveCommand(arg string) (string, error) {
	if strings.TrimSpace(arg) == "" {
		return "", apperr.NewArgument("resolve command", errors.New("SQL script file or command is empty"))
	}
	info, err := os.Stat(arg)
	if err != nil || !info.Mode().IsRegular() {
		return arg, nil
	}
	data, err := os.ReadFile(arg)
	if err != nil {
		return "", apperr.NewArgument("resolve command", fmt.Errorf("error reading script file: %w", err))
	}
	command := string(data)
	if strings.TrimSpace(command) == "" {
		return "", apperr.NewArgument("resolve command", fmt.Errorf("script file %s is empty", arg))
	}
	return command, nil
}
