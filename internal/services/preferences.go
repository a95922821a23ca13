package services

import (
	"context"

	"invoicedesk/internal/schema"
)

// GetUIPreferences returns the ui section.
func (s *ConfigurationService) GetUIPreferences(ctx context.Context) map[string]any {
	return s.getMap(ctx, schema.SectionUI)
}

// UpdateUIPreferences writes each supplied ui preference. Every key is
// validated and written on its own; the returned error joins the failures.
func (s *ConfigurationService) UpdateUIPreferences(ctx context.Context, partial map[string]any) error {
	return s.updateKeys(ctx, schema.SectionUI, partial)
}

// GetInvoiceDefaults returns the invoice defaults (currency, tax rates, ...).
func (s *ConfigurationService) GetInvoiceDefaults(ctx context.Context) map[string]any {
	return s.getMap(ctx, schema.KeyInvoiceDefaults)
}

func (s *ConfigurationService) UpdateInvoiceDefaults(ctx context.Context, partial map[string]any) error {
	return s.updateKeys(ctx, schema.KeyInvoiceDefaults, partial)
}

// GetTallySettings returns the Tally connection settings.
func (s *ConfigurationService) GetTallySettings(ctx context.Context) map[string]any {
	return s.getMap(ctx, schema.KeyTally)
}

func (s *ConfigurationService) UpdateTallySettings(ctx context.Context, partial map[string]any) error {
	return s.updateKeys(ctx, schema.KeyTally, partial)
}
