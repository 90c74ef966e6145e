package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/photo-album/eda-app/internal/ui"
	"github.com/photo-album/eda-app/internal/version"
)

func console(out io.Writer) *ui.Console {
	return ui.New(out)
}

// exitWithError prints err and returns the failure exit code.
func exitWithError(out io.Writer, err error) int {
	console(out).Error(fmt.Sprintf("%v", err))
	return 1
}

func writeString(out io.Writer, text string) {
	if out == nil || text == "" {
		return
	}
	_, _ = io.WriteString(out, text)
}

func writeLine(out io.Writer, line string) {
	if out == nil {
		return
	}
	if strings.HasSuffix(line, "\n") {
		_, _ = io.WriteString(out, line)
		return
	}
	_, _ = io.WriteString(out, line+"\n")
}

func runVersion(out io.Writer) int {
	writeLine(out, version.String())
	return 0
}
