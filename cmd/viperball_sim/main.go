package main

import (
	"os"
)

// module defs - Version and BuildDate can be set at build time via ldflags
var (
	Version   string = "0.1.0"
	BuildDate string = "unknown"

	AppName string = "viperball_sim"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
