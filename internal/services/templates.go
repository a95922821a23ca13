package services

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"invoicedesk/internal/domain/settings"
	"invoicedesk/internal/schema"
)

// GetSelectedTemplate returns the selected invoice template id.
func (s *ConfigurationService) GetSelectedTemplate(ctx context.Context) string {
	if id := s.getString(ctx, schema.KeySelectedTemplate); id != "" {
		return id
	}
	return schema.DefaultTemplateID
}

// SetSelectedTemplate stores the selected template and reads it back to log
// whether the write stuck.
func (s *ConfigurationService) SetSelectedTemplate(ctx context.Context, templateID string) error {
	err := s.Set(ctx, schema.KeySelectedTemplate, templateID)
	if err != nil {
		s.logger.Warn("Failed to save selected template", "template", templateID, "error", err)
		return err
	}

	if stored := s.GetSelectedTemplate(ctx); stored != templateID {
		s.logger.Error("Selected template read-back mismatch", "expected", templateID, "stored", stored)
	} else {
		s.logger.Debug("Selected template saved", "template", templateID)
	}
	return nil
}

// GetTemplateSettings returns the template layout settings.
func (s *ConfigurationService) GetTemplateSettings(ctx context.Context) map[string]any {
	return s.getMap(ctx, schema.KeyTemplateSettings)
}

// UpdateTemplateSettings shallow-merges partial over the current template
// settings.
func (s *ConfigurationService) UpdateTemplateSettings(ctx context.Context, partial map[string]any) error {
	merged := lo.Assign(s.GetTemplateSettings(ctx), partial)
	return s.Set(ctx, schema.KeyTemplateSettings, merged)
}

// SetTemplateSettings merges partial into the template settings; it never
// replaces keys absent from partial.
func (s *ConfigurationService) SetTemplateSettings(ctx context.Context, partial map[string]any) error {
	return s.UpdateTemplateSettings(ctx, partial)
}

// GetTemplateCustomizations returns customizations keyed by template id.
func (s *ConfigurationService) GetTemplateCustomizations(ctx context.Context) map[string]any {
	return s.getMap(ctx, schema.KeyTemplateCustomizations)
}

// GetTemplateCustomization returns one template's customization object.
func (s *ConfigurationService) GetTemplateCustomization(ctx context.Context, templateID string) map[string]any {
	return asMap(s.GetTemplateCustomizations(ctx)[templateID])
}

// UpdateTemplateCustomization shallow-merges partial over the stored
// customization of templateID.
func (s *ConfigurationService) UpdateTemplateCustomization(ctx context.Context, templateID string, partial map[string]any) error {
	if templateID == "" {
		return settings.NewValidationError(schema.KeyTemplateCustomizations, templateID, "template id is required")
	}
	all := s.GetTemplateCustomizations(ctx)
	all[templateID] = lo.Assign(asMap(all[templateID]), partial)
	return s.Set(ctx, schema.KeyTemplateCustomizations, all)
}

// ResetTemplateCustomization drops the customization of templateID.
func (s *ConfigurationService) ResetTemplateCustomization(ctx context.Context, templateID string) error {
	all := s.GetTemplateCustomizations(ctx)
	if _, ok := all[templateID]; !ok {
		return nil
	}
	delete(all, templateID)
	return s.Set(ctx, schema.KeyTemplateCustomizations, all)
}

// GetTheme returns the UI theme.
func (s *ConfigurationService) GetTheme(ctx context.Context) string {
	if theme := s.getString(ctx, schema.KeyUITheme); theme != "" {
		return theme
	}
	v, _ := schema.DefaultFor(schema.KeyUITheme)
	return fmt.Sprint(v)
}

func (s *ConfigurationService) SetTheme(ctx context.Context, theme string) error {
	return s.Set(ctx, schema.KeyUITheme, theme)
}
