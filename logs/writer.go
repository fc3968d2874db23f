package logs

import (
	"io"
	"os"
)

// Writer is the destination of the console log handler.
type Writer io.Writer

func (Module) Writer() Writer {
	return os.Stderr
}
