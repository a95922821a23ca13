package transport

import (
	"context"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"invoicedesk/internal/services"
)

// WailsEmitter emits through the Wails runtime bound to ctx.
func WailsEmitter(ctx context.Context) EmitFunc {
	return func(name string, data ...any) {
		wailsruntime.EventsEmit(ctx, name, data...)
	}
}

// ForwardEvents re-emits configuration service events to the frontend and
// returns a function that stops forwarding.
func ForwardEvents(service *services.ConfigurationService, emit EmitFunc) (stop func()) {
	unsubs := []func(){
		service.OnSettingChanged(func(e services.SettingChanged) { emit(EventSettingChanged, e) }),
		service.OnTemplateChanged(func(e services.TemplateChanged) { emit(EventTemplateChanged, e) }),
		service.OnThemeChanged(func(e services.ThemeChanged) { emit(EventThemeChanged, e) }),
		service.OnSettingsReset(func(e services.SettingsReset) { emit(EventSettingsReset, e) }),
		service.OnSettingsImported(func(e services.SettingsImported) { emit(EventSettingsImported, e) }),
		service.OnSettingsReloaded(func(e services.SettingsReloaded) { emit(EventSettingsReloaded, e) }),
	}
	return func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}
}
