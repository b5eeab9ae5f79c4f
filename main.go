package main

import (
	"fmt"
	"os"

	"mspro-labs/campus-locator/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "campus-locator: %v\n", err)
		os.Exit(1)
	}
}
