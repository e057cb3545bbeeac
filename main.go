package main

import (
	"os"

	"github.com/far120/mystudy/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
