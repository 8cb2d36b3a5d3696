package main

import (
	"os"

	"github.com/flowmeter/flowmeter/internal/cli"
)

func main() {
	os.Exit(int(cli.Run(os.Args[1:])))
}
