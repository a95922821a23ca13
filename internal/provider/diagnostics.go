package provider

import (
	"errors"
	"io/fs"
	"log/slog"
	"runtime"
	"strings"
)

var permissionMarkers = []string{
	"permission denied",
	"access is denied",
	"operation not permitted",
	"read-only",
	"readonly",
	"database is locked",
	"eperm",
	"eacces",
	"ebusy",
}

// isPermissionFailure reports whether err looks like the OS refusing access
// to the settings files.
func isPermissionFailure(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, fs.ErrPermission) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, m := range permissionMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

func remediationHint(goos string) string {
	if goos == "windows" {
		return "Windows denied access to the settings data directory. Antivirus or Controlled Folder Access can block writes there: allow InvoiceDesk through it, or move the data directory with INVOICEDESK_DATA_DIR."
	}
	return "Make sure the settings data directory is writable by the current user, or move it with INVOICEDESK_DATA_DIR."
}

// logStorageFailure logs a failed backend call, adding remediation guidance
// when the OS refused access.
func logStorageFailure(logger *slog.Logger, operation, keyPath string, err error) {
	attrs := []any{"operation", operation, "key", keyPath, "error", err}
	if isPermissionFailure(err) {
		attrs = append(attrs, "hint", remediationHint(runtime.GOOS))
	}
	logger.Error("Settings storage operation failed", attrs...)
}
