package main

import (
	"os"
)

func main() {
	runMain(os.Args[1:], os.Exit)
}

// runMain executes the CLI. Cobra reports the error on stderr; only the exit code is set here.
func runMain(args []string, exit func(int)) {
	root := newRootCmd()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		exit(1)
	}
}
