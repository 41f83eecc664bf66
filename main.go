package main

import (
	"os"

	"github.com/vibeframe/vibeframe/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
