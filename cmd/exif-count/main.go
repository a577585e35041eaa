// --- START OF FINAL REVISED FILE cmd/exif-count/main.go ---
package main

import "os"

// Note: Build-time variables 'version', 'commit', and 'date' are declared in 'root.go'
// within this package. They are populated at build time via -ldflags.

// main is the entry point for the exif-count application.
// Cobra prints the error returned by Execute; main only turns it into the exit code.
func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}

// --- END OF FINAL REVISED FILE cmd/exif-count/main.go ---
