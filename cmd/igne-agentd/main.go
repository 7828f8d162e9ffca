package main

import (
	"os"

	"github.com/zereraz/igne-sub002/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
