package main

import (
	"os"

	"github.com/Fepozopo/lutimg/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
