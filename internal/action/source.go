package action

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// DefaultFileName is the action file looked up next to the executable.
const DefaultFileName = "actions.txt"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DefaultPath returns DefaultFileName in the directory of the running
// executable.
func DefaultPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), DefaultFileName), nil
}

// ReadLines returns the lines of the file at path. Line endings may be
// "\n", "\r\n" or "\r"; a final line terminator does not produce an extra
// empty line and a leading UTF-8 BOM is dropped.
func ReadLines(fs afero.Fs, path string) ([]string, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read action file %s: %w", path, err)
	}
	return SplitLines(data), nil
}

// SplitLines splits raw file content into lines.
func SplitLines(data []byte) []string {
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(data) == 0 {
		return nil
	}

	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}
