// Command catalogctl imports catalog files from the command line and
// generates import templates.
package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is fine; explicit environment variables win.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
