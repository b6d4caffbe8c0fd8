package main

import (
	"github.com/poa00/copyqd/internal/cli"
)

var (
	version   = "dev"
	buildTime = "unknown"
	commit    = "none"
)

func main() {
	cli.SetVersionInfo(version, buildTime, commit)
	cli.Execute()
}
