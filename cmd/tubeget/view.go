package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"tubeget/internal/scoring"
)

// terminalView is the run.View implementation backed by the terminal. The
// interactive pick only engages on a real TTY; piped input falls back to the
// automatic selection.
type terminalView struct {
	out io.Writer
	in  io.Reader
}

func newTerminalView(out io.Writer, in io.Reader) *terminalView {
	return &terminalView{out: out, in: in}
}

func (v *terminalView) ShowCatalog(title string, scored []scoring.ScoredStream) {
	if title != "" {
		fmt.Fprintln(v.out, title)
	}
	fmt.Fprintln(v.out, catalogTable(scored))
}

func (v *terminalView) PromptSelection() (string, error) {
	if !isInteractive(v.in) {
		return "", nil
	}
	fmt.Fprint(v.out, "Stream id or format expression (empty accepts the best score): ")
	line, err := bufio.NewReader(v.in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func isInteractive(reader io.Reader) bool {
	file, ok := reader.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
