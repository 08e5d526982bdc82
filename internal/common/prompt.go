package common

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Confirm writes question to out and reads one line from in. Only "y"
// (any case) counts as yes; EOF counts as no.
func Confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprint(out, question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(line), "y")
}
