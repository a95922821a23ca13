package schema

// LegacyKey maps a pre-migration flat storage key to its key path in the
// nested tree.
type LegacyKey struct {
	StorageKey string
	KeyPath    string
}

// LegacyKeys lists the flat localStorage keys written by earlier releases.
var LegacyKeys = []LegacyKey{
	{StorageKey: "invoice_selected_template", KeyPath: KeySelectedTemplate},
	{StorageKey: "invoice_template_settings", KeyPath: KeyTemplateSettings},
	{StorageKey: "invoice_template_customizations", KeyPath: KeyTemplateCustomizations},
	{StorageKey: "invoice_defaults", KeyPath: KeyInvoiceDefaults},
	{StorageKey: "app_theme", KeyPath: KeyUITheme},
	{StorageKey: "default_company_id", KeyPath: KeyDefaultCompanyID},
	{StorageKey: "company_initials", KeyPath: KeyCompanyInitials},
	{StorageKey: "ui_preferences", KeyPath: SectionUI},
}
