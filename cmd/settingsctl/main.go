// Command settingsctl inspects and edits InvoiceDesk settings from a
// terminal, using the same data directory as the desktop app.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
