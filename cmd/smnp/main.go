// smnp reads device actions from a file and applies each one as an SNMP v2c SET.
package main

import (
	"errors"
	"os"

	"github.com/maks-it/smnp/internal/exitcode"
)

func main() {
	os.Exit(exitCode(rootCmd.Execute()))
}

// exitCode maps the error returned by the command tree to a process exit code.
func exitCode(err error) int {
	if err == nil {
		return exitcode.Success
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			printError("%v", ee.err)
		}
		return ee.code
	}
	printError("%v", err)
	return exitcode.FileReadError
}
