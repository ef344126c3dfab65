package main

import (
	"os"

	"github.com/cbout22/git-file/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
