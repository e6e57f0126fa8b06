package main

import (
	"os"

	"github.com/hpkotak/aichat/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
