package main

import (
	"fmt"
	"os"

	"eventbrite-extractor/cmd"
)

func main() {
	if err := cmd.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "eventbrite-extractor: %v\n", err)
		os.Exit(1)
	}
}
