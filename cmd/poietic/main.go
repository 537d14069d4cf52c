package main

import (
	"os"

	"github.com/moolen/poietic/cmd/poietic/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
