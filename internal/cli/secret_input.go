package cli

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"
)

// secretReader reads lines from source. Terminal echo is switched off while
// reading when source is a terminal.
type secretReader struct {
	source io.Reader
	lines  *bufio.Reader
}

func newSecretReader(source io.Reader) *secretReader {
	return &secretReader{source: source, lines: bufio.NewReader(source)}
}

func (reader *secretReader) readLine() (string, error) {
	if file, ok := reader.source.(*os.File); ok {
		if restore, err := disableEcho(file); err == nil {
			defer restore()
		}
	}

	line, err := reader.lines.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	if err != nil && line == "" {
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimRight(line, "\r\n"), nil
}
