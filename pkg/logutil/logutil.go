// Package logutil provides logging utilities.
package logutil

import (
	"io"
	"log"
	"os"
	"sync"
)

var (
	out = io.Discard
	// If out is set by SetOutputFile, currentFile is set to the file.
	currentFile *os.File
	loggers     []*log.Logger
	lock        sync.Mutex
)

// Discard is a logger that ignores everything; it is never redirected.
var Discard = log.New(io.Discard, "", 0)

// GetLogger gets a logger with the given prefix. All loggers obtained this way
// write to the same output, which can be changed with SetOutput and
// SetOutputFile. By default they write nowhere.
func GetLogger(prefix string) *log.Logger {
	lock.Lock()
	defer lock.Unlock()
	logger := log.New(out, prefix, log.LstdFlags|log.Lmicroseconds)
	loggers = append(loggers, logger)
	return logger
}

// SetOutput redirects the output of all loggers obtained with GetLogger to the
// new io.Writer. If the old output was a file opened by SetOutputFile, it is
// closed.
func SetOutput(newout io.Writer) {
	lock.Lock()
	defer lock.Unlock()
	setOutput(newout)
}

func setOutput(newout io.Writer) {
	out = newout
	if currentFile != nil {
		currentFile.Close()
		currentFile = nil
	}
	for _, logger := range loggers {
		logger.SetOutput(out)
	}
}

// SetOutputFile redirects the output of all loggers obtained with GetLogger to
// the named file, creating it when needed and appending to it otherwise. An
// empty name discards all logging.
func SetOutputFile(fname string) error {
	if fname == "" {
		SetOutput(io.Discard)
		return nil
	}
	file, err := os.OpenFile(fname, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	lock.Lock()
	defer lock.Unlock()
	setOutput(file)
	currentFile = file
	return nil
}
