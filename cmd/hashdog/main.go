// Command hashdog computes, stores, and verifies cryptographic digests over
// files and directory trees.
package main

import "os"

var (
	version = "dev"
	commit  = "none"
)

func main() {
	os.Exit(run())
}

func run() int {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		if ec, ok := err.(exitError); ok {
			return int(ec)
		}
		return exitIOError
	}
	return exitSuccess
}
