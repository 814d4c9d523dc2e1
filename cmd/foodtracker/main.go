package main

import (
	"os"

	"github.com/foodtracker/backend/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
