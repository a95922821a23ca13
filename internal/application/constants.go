package application

import "time"

const (
	// AppName is shown in window titles and log lines
	AppName = "InvoiceDesk"

	// Startup work is bounded so a wedged database cannot hang the window
	StartupTimeout = 15 * time.Second
)
