package util

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// ReadLines returns every non-empty line of r with surrounding whitespace
// removed. Lines starting with '#' are skipped.
func ReadLines(r io.Reader) []string {
	buf := bufio.NewReader(r)
	lines := make([]string, 0)
	for {
		line, err := buf.ReadString('\n')
		if err != nil && err != io.EOF {
			Fatalf("Could not read line: %s.", err)
		}
		line = strings.TrimSpace(line)
		if len(line) > 0 && line[0] != '#' {
			lines = append(lines, line)
		}
		if err == io.EOF {
			break
		}
	}
	return lines
}

// OpenFile opens a file for reading. The path "-" is stdin.
func OpenFile(path string) io.ReadCloser {
	if path == "-" {
		return io.NopCloser(os.Stdin)
	}
	f, err := os.Open(path)
	Assert(err, "Could not open file '%s'", path)
	return f
}

// CreateFile creates a file for writing. The path "-" is stdout, which is
// never closed.
func CreateFile(path string) io.WriteCloser {
	if path == "-" {
		return nopWriteCloser{os.Stdout}
	}
	f, err := os.Create(path)
	Assert(err, "Could not create file '%s'", path)
	return f
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error {
	return nil
}
