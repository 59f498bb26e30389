package main

import (
	"os"

	"github.com/phaze-the-dumb/VRChat-Photo-Server/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
