// Package schema holds the static settings schema: key paths, the default
// settings tree, per-key validation rules and the legacy flat-key mapping.
package schema

// Top-level sections of the settings tree.
const (
	SectionApplication = "application"
	SectionInvoice     = "invoice"
	SectionCompany     = "company"
	SectionUI          = "ui"
)

// RequiredSections are the sections an imported tree must contain at least one of.
var RequiredSections = []string{SectionApplication, SectionInvoice, SectionCompany, SectionUI}

// Key paths used by the application.
const (
	KeyAppVersion          = "application.version"
	KeyAppLanguage         = "application.language"
	KeyAppAutoSave         = "application.autoSave"
	KeyAppAutoSaveInterval = "application.autoSaveInterval"

	KeyTally             = "application.tally"
	KeyTallyEnabled      = "application.tally.enabled"
	KeyTallyHost         = "application.tally.host"
	KeyTallyPort         = "application.tally.port"
	KeyTallyCompanyName  = "application.tally.companyName"
	KeyTallySyncInterval = "application.tally.syncIntervalMinutes"

	KeySelectedTemplate       = "invoice.templates.selectedTemplate"
	KeyTemplateSettings       = "invoice.templates.templateSettings"
	KeyTemplateCustomizations = "invoice.templates.customizations"
	KeyInvoiceDefaults        = "invoice.defaults"
	KeyInvoiceCurrency        = "invoice.defaults.currency"
	KeyInvoiceCGSTRate        = "invoice.defaults.cgstRate"
	KeyInvoiceSGSTRate        = "invoice.defaults.sgstRate"
	KeyInvoiceIGSTRate        = "invoice.defaults.igstRate"
	KeyInvoicePaymentTerms    = "invoice.defaults.paymentTermsDays"
	KeyInvoicePrefix          = "invoice.defaults.invoicePrefix"
	KeyInvoiceNotes           = "invoice.defaults.notes"
	KeyInvoiceNumberingNext   = "invoice.numbering.nextNumber"
	KeyInvoiceNumberingPad    = "invoice.numbering.padLength"
	KeyInvoiceNumberingYearly = "invoice.numbering.resetYearly"

	KeyDefaultCompanyID = "company.defaultCompanyId"
	KeyCompanyInitials  = "company.initials"

	KeyUITheme            = "ui.theme"
	KeyUISidebarCollapsed = "ui.sidebarCollapsed"
	KeyUIZoomLevel        = "ui.zoomLevel"
	KeyUIDateFormat       = "ui.dateFormat"
	KeyUITablePageSize    = "ui.tablePageSize"
	KeyUIShowWelcome      = "ui.showWelcome"
)

// Invoice template identifiers shipped with the application.
var TemplateIDs = []string{
	"classic_blue",
	"modern_green",
	"minimal_gray",
	"professional_navy",
	"elegant_maroon",
	"compact_mono",
}

// Themes supported by the UI.
var Themes = []string{"light", "dark", "system"}
