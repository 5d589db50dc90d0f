package testutil

import (
	"os"
	"path/filepath"
)

// MustWriteFile writes data to a file, creating parent directories as needed.
// It panics if an error occurs.
func MustWriteFile(filename, data string) {
	Must(os.MkdirAll(filepath.Dir(filename), 0700))
	Must(os.WriteFile(filename, []byte(data), 0600))
}

// MustReadFile reads a file and returns its content as a string. It panics if
// an error occurs.
func MustReadFile(filename string) string {
	data, err := os.ReadFile(filename)
	Must(err)
	return string(data)
}

// Must panics if the error value is not nil. It is typically used like this:
//
//	testutil.Must(a_function())
//
// Where `a_function` returns a single error value.
func Must(err error) {
	if err != nil {
		panic(err)
	}
}
