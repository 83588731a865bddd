package log

import (
	"io"
	"log"
	"os"
)

var (
	Trace   = log.New(io.Discard, "TRACE: ", log.Ldate|log.Ltime|log.Lshortfile)
	Info    = log.New(os.Stdout, "INFO: ", log.Ldate|log.Ltime)
	Warning = log.New(os.Stdout, "WARNING: ", log.Ldate|log.Ltime)
	Error   = log.New(os.Stderr, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
)

// Init points every logger at its own writer.
func Init(traceHandle, infoHandle, warningHandle, errorHandle io.Writer) {
	Trace.SetOutput(traceHandle)
	Info.SetOutput(infoHandle)
	Warning.SetOutput(warningHandle)
	Error.SetOutput(errorHandle)
}

// InitLog enables tracing when INKBRIDGE_TRACE=1.
func InitLog() {
	traceHandle := io.Discard
	if os.Getenv("INKBRIDGE_TRACE") == "1" {
		traceHandle = os.Stdout
	}
	Init(traceHandle, os.Stdout, os.Stdout, os.Stderr)
}
