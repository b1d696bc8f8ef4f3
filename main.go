package main

import (
	"os"

	"github.com/edclient/edgo/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
