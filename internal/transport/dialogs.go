package transport

import (
	"context"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

var jsonFilters = []wailsruntime.FileFilter{
	{
		DisplayName: "Settings Files (*.json)",
		Pattern:     "*.json",
	},
}

type dialogsHandler struct {
	ctx context.Context
}

func NewDialogsHandler(ctx context.Context) DialogHandler {
	return &dialogsHandler{
		ctx: ctx,
	}
}

func (h *dialogsHandler) OpenConfigurationFile() (string, error) {
	selection, err := wailsruntime.OpenFileDialog(h.ctx, wailsruntime.OpenDialogOptions{
		Title:   "Import settings",
		Filters: jsonFilters,
	})

	if err != nil {
		return "", err
	}

	return selection, nil
}

func (h *dialogsHandler) SaveConfigurationFile(filename string) (string, error) {
	selection, err := wailsruntime.SaveFileDialog(h.ctx, wailsruntime.SaveDialogOptions{
		Title:           "Export settings",
		DefaultFilename: filename,
		Filters:         jsonFilters,
	})

	if err != nil {
		return "", err
	}

	return selection, nil
}
