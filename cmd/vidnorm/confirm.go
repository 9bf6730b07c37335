package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// confirmReplace gates the destructive replace-original mode. Only an
// explicit "y" proceeds; everything else declines. On a non-interactive
// stdin the prompt cannot be answered, so --yes is required instead.
func confirmReplace(in io.Reader, out io.Writer, assumeYes bool) (bool, error) {
	if assumeYes {
		return true, nil
	}
	if f, ok := in.(*os.File); ok && !isTerminal(f) {
		return false, errors.New("stdin is not a terminal; pass --yes to confirm --replace-original")
	}

	fmt.Fprint(out, "Warning: this will replace original files. Continue? (y/N): ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false, nil
	}
	return strings.EqualFold(strings.TrimSpace(line), "y"), nil
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
