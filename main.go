package main

import (
	"os"

	"github.com/robworks/fencer/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
