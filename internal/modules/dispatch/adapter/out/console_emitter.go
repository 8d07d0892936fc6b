package out

import (
	"fmt"
	"io"

	"dropkit/internal/modules/dispatch/domain"
)

// ConsoleEmitter writes processor outputs to a writer, one line per
// output. It is the CLI host's OutputEmitter.
type ConsoleEmitter struct {
	w io.Writer
}

func NewConsoleEmitter(w io.Writer) *ConsoleEmitter {
	return &ConsoleEmitter{w: w}
}

func (e *ConsoleEmitter) File(path string, meta *domain.OutputMeta) {
	e.write("file", path, meta)
}

func (e *ConsoleEmitter) Directory(path string, meta *domain.OutputMeta) {
	e.write("directory", path, meta)
}

func (e *ConsoleEmitter) URL(url string, meta *domain.OutputMeta) {
	e.write("url", url, meta)
}

func (e *ConsoleEmitter) String(value string, meta *domain.OutputMeta) {
	e.write("string", value, meta)
}

func (e *ConsoleEmitter) Error(err error, meta *domain.OutputMeta) {
	e.write("error", err.Error(), meta)
}

func (e *ConsoleEmitter) Warning(message string, meta *domain.OutputMeta) {
	e.write("warning", message, meta)
}

func (e *ConsoleEmitter) write(kind, value string, meta *domain.OutputMeta) {
	if meta != nil && meta.Flair != "" {
		_, _ = fmt.Fprintf(e.w, "%s\t%s\t[%s]\n", kind, value, meta.Flair)
		return
	}
	_, _ = fmt.Fprintf(e.w, "%s\t%s\n", kind, value)
}
