package schema

const DefaultTemplateID = "classic_blue"

// defaultTree is normalized through JSON on init so numbers are float64 and
// objects are map[string]any, matching what every backend returns.
var defaultTree = mustNormalize(map[string]any{
	SectionApplication: map[string]any{
		"version":          "1.0.0",
		"language":         "en",
		"autoSave":         true,
		"autoSaveInterval": 30,
		"tally": map[string]any{
			"enabled":             false,
			"host":                "localhost",
			"port":                9000,
			"companyName":         "",
			"syncIntervalMinutes": 15,
		},
	},
	SectionInvoice: map[string]any{
		"templates": map[string]any{
			"selectedTemplate": DefaultTemplateID,
			"templateSettings": map[string]any{
				"pageSize":      "A4",
				"orientation":   "portrait",
				"fontSize":      "normal",
				"colorScheme":   "default",
				"showLogo":      true,
				"showSignature": true,
				"showWatermark": false,
			},
			"customizations": map[string]any{},
		},
		"defaults": map[string]any{
			"currency":         "INR",
			"cgstRate":         9,
			"sgstRate":         9,
			"igstRate":         18,
			"paymentTermsDays": 30,
			"invoicePrefix":    "INV",
			"notes":            "",
		},
		"numbering": map[string]any{
			"nextNumber":  1,
			"padLength":   4,
			"resetYearly": true,
		},
	},
	SectionCompany: map[string]any{
		"defaultCompanyId": "",
		"initials":         map[string]any{},
	},
	SectionUI: map[string]any{
		"theme":            "light",
		"sidebarCollapsed": false,
		"zoomLevel":        100,
		"dateFormat":       "DD/MM/YYYY",
		"tablePageSize":    25,
		"showWelcome":      true,
	},
})

// Defaults returns a deep copy of the full default settings tree.
func Defaults() map[string]any {
	return Clone(defaultTree).(map[string]any)
}

// DefaultSection returns a deep copy of one top-level section's defaults.
func DefaultSection(section string) (map[string]any, bool) {
	v, ok := defaultTree[section]
	if !ok {
		return nil, false
	}
	return Clone(v).(map[string]any), true
}

// DefaultFor returns a deep copy of the default value at keyPath.
func DefaultFor(keyPath string) (any, bool) {
	v, ok := Lookup(defaultTree, keyPath)
	if !ok {
		return nil, false
	}
	return Clone(v), true
}

// IsSection reports whether name is a top-level section with defaults.
func IsSection(name string) bool {
	_, ok := defaultTree[name]
	return ok
}
