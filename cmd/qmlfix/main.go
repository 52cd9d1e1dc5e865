package main

import (
	"os"

	"github.com/qmlfix/qmlfix/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
