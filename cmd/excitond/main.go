package main

import (
	"os"

	"excitond/internal/cli"
)

func main() {
	os.Exit(cli.Main())
}
