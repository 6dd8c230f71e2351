package main

import "github.com/duyg/dodoclip/cmd"

// Version is set by the build pipeline.
var Version = "devel"

func main() {
	cmd.Execute(Version)
}
