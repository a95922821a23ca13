package hoststore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"invoicedesk/internal/domain/settings"
	"invoicedesk/internal/models"
)

// Companies implements settings.CompanyRecords over the companies table.
type Companies struct {
	db *gorm.DB
}

// NewCompanies creates a new company-record store
func NewCompanies(db *gorm.DB) *Companies {
	return &Companies{db: db}
}

func (c *Companies) GetCompanyInvoicePrefix(ctx context.Context, companyID string) (string, error) {
	var company models.Company
	err := c.db.WithContext(ctx).First(&company, "id = ?", companyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("%w: %s", settings.ErrCompanyNotFound, companyID)
	}
	if err != nil {
		return "", err
	}
	return company.InvoicePrefix, nil
}

func (c *Companies) SetCompanyInvoicePrefix(ctx context.Context, companyID, prefix string) error {
	res := c.db.WithContext(ctx).
		Model(&models.Company{}).
		Where("id = ?", companyID).
		Update("invoice_prefix", prefix)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", settings.ErrCompanyNotFound, companyID)
	}
	return nil
}

// SaveCompany creates or updates a company record
func (c *Companies) SaveCompany(ctx context.Context, company *models.Company) error {
	return c.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(company).Error
}

// ListCompanies returns every company ordered by name
func (c *Companies) ListCompanies(ctx context.Context) ([]models.Company, error) {
	var companies []models.Company
	err := c.db.WithContext(ctx).Order("name").Find(&companies).Error
	return companies, err
}
