package haproxy

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"unicode/utf8"
)

var errInvalidUTF8 = errors.New("invalid UTF-8 in line")

// EnvironmentVariables is the decoded output of "show env".
type EnvironmentVariables map[string]string

// ParseEnv decodes KEY=VALUE lines. A line without '=' yields an empty value.
func ParseEnv(data []byte) (EnvironmentVariables, error) {
	vars := make(EnvironmentVariables)
	err := readLines(data, func(line string) {
		if line == "" {
			return
		}
		k, v, _ := strings.Cut(line, "=")
		vars[k] = v
	})
	if err != nil {
		return nil, &EnvError{Kind: EnvLinesReadFailed, Err: err}
	}
	return vars, nil
}

// readLines calls fn for every line of data, without line terminators.
func readLines(data []byte, fn func(line string)) error {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 4096), maxResponseSize)
	for sc.Scan() {
		line := sc.Text()
		if !utf8.ValidString(line) {
			return errInvalidUTF8
		}
		fn(line)
	}
	return sc.Err()
}
