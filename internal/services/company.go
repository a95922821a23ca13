package services

import (
	"context"
	"errors"

	"github.com/samber/lo"

	"invoicedesk/internal/domain/settings"
	"invoicedesk/internal/schema"
)

func (s *ConfigurationService) GetDefaultCompanyID(ctx context.Context) string {
	return s.getString(ctx, schema.KeyDefaultCompanyID)
}

func (s *ConfigurationService) SetDefaultCompanyID(ctx context.Context, companyID string) error {
	return s.Set(ctx, schema.KeyDefaultCompanyID, companyID)
}

// GetCompanyInitials returns the invoice prefix for companyID. Host company
// records win; a value found only in the local initials map is moved into
// the host records. An empty string means nothing is stored and the caller
// should generate initials.
func (s *ConfigurationService) GetCompanyInitials(ctx context.Context, companyID string) string {
	if companyID == "" {
		return ""
	}

	if s.companies != nil {
		prefix, err := s.companies.GetCompanyInvoicePrefix(ctx, companyID)
		switch {
		case err == nil && prefix != "":
			return prefix
		case err != nil && !errors.Is(err, settings.ErrCompanyNotFound):
			s.logger.Warn("Failed to read company invoice prefix", "company", companyID, "error", err)
		}
	}

	local := s.getMap(ctx, schema.KeyCompanyInitials)
	initials, _ := local[companyID].(string)
	if initials == "" {
		return ""
	}

	if s.companies != nil {
		s.moveInitialsToHost(ctx, companyID, initials, local)
	}
	return initials
}

func (s *ConfigurationService) moveInitialsToHost(ctx context.Context, companyID, initials string, local map[string]any) {
	if err := s.companies.SetCompanyInvoicePrefix(ctx, companyID, initials); err != nil {
		s.logger.Debug("Company initials stay in local settings", "company", companyID, "error", err)
		return
	}
	rest := lo.OmitByKeys(local, []string{companyID})
	if err := s.Set(ctx, schema.KeyCompanyInitials, rest); err != nil {
		s.logger.Warn("Failed to drop migrated company initials", "company", companyID, "error", err)
		return
	}
	s.logger.Info("Migrated company initials to company records", "company", companyID)
}

// SetCompanyInitials stores the invoice prefix for companyID in the host
// company records, or in the local initials map when that fails.
func (s *ConfigurationService) SetCompanyInitials(ctx context.Context, companyID, initials string) error {
	if companyID == "" {
		return settings.NewValidationError(schema.KeyCompanyInitials, companyID, "company id is required")
	}

	if s.companies != nil {
		err := s.companies.SetCompanyInvoicePrefix(ctx, companyID, initials)
		if err == nil {
			return nil
		}
		s.logger.Warn("Company records rejected initials, using local settings", "company", companyID, "error", err)
	}

	local := s.getMap(ctx, schema.KeyCompanyInitials)
	local[companyID] = initials
	return s.Set(ctx, schema.KeyCompanyInitials, local)
}
