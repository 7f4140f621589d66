package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"
)

// loadVars reads the vars file, YAML or JSON, then applies the key=value
// pairs on top of it. "-" reads the file from stdin.
func loadVars(path string, pairs []string, stdin io.Reader) (map[string]any, error) {
	vars := make(map[string]any)

	if path != "" {
		data, err := readInput(path, stdin)
		if err != nil {
			return nil, fail(ExitCodeInputError, ErrMsgReadVarsFailed, err)
		}
		if len(bytes.TrimSpace(data)) > 0 {
			if err := yaml.Unmarshal(data, &vars); err != nil {
				return nil, fail(ExitCodeInputError, ErrMsgParseVarsFailed, err)
			}
		}
	}

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, VarSeparator)
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fail(ExitCodeUsageError, ErrMsgInvalidVar, errors.New(pair))
		}
		vars[key] = value
	}
	return vars, nil
}

// readInput reads content from a file or stdin
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == FlagDefaultOutput {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

// writeOutput writes content to stdout or atomically replaces the file
func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == "" || path == FlagDefaultOutput {
		_, err := stdout.Write(data)
		return err
	}
	return atomic.WriteFile(path, bytes.NewReader(data))
}
