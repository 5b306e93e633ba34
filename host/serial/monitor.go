package serial

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"
)

// Monitor reads debug lines from r and passes each one, without its CR/LF,
// to fn. Timeouts and empty reads are not errors; Monitor returns at EOF or
// when r fails otherwise.
func Monitor(r io.Reader, fn func(line string)) error {
	var partial strings.Builder
	reader := bufio.NewReader(r)

	for {
		chunk, err := reader.ReadString('\n')
		partial.WriteString(chunk)

		if strings.HasSuffix(chunk, "\n") {
			line := strings.TrimRight(partial.String(), "\r\n")
			partial.Reset()
			if line != "" {
				fn(line)
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				if rest := strings.TrimRight(partial.String(), "\r\n"); rest != "" {
					fn(rest)
				}
				return nil
			}
			if errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, io.ErrNoProgress) {
				continue
			}
			return err
		}
	}
}
