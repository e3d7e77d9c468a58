package main

import (
	"os"

	_ "time/tzdata"
)

// main hands off to the cobra command tree. Business logic lives in the
// internal packages; commands only wire dependencies.
func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
