package config

import (
	"fmt"
	"os"
	"strings"
)

// WriteEnvValue sets key=value in the dotenv file at path. An
// existing key line is rewritten in place and every other line is
// preserved byte for byte. The line is appended when the key is
// absent, and the file is created when missing.
func WriteEnvValue(path, key, value string) error {
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read env file %s: %w", path, err)
	}

	entry := key + "=" + value + "\n"
	lines := strings.SplitAfter(string(data), "\n")

	replaced := false
	for i, line := range lines {
		if strings.HasPrefix(line, key+"=") {
			lines[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		last := lines[len(lines)-1]
		if last != "" && !strings.HasSuffix(last, "\n") {
			lines[len(lines)-1] = last + "\n"
		}
		lines = append(lines, entry)
	}

	if err := os.WriteFile(path, []byte(strings.Join(lines, "")), 0o600); err != nil {
		return fmt.Errorf("write env file %s: %w", path, err)
	}
	return nil
}
