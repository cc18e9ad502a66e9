package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Parse Errors (P001-P099)
	// ============================================

	"P001": {Category: CategoryParse, Message: "Duplicate tag opener"},
	"P002": {Category: CategoryParse, Message: "Comment closer before opener"},
	"P003": {Category: CategoryParse, Message: "Nested comment"},
	"P004": {Category: CategoryParse, Message: "Unterminated comment"},
	"P005": {Category: CategoryParse, Message: "Unmatched closing tag"},
	"P006": {Category: CategoryParse, Message: "Script tags are not allowed"},
	"P007": {Category: CategoryParse, Message: "Invalid start tag"},
	"P008": {Category: CategoryParse, Message: "Unterminated tag"},

	// ============================================
	// Configuration Errors (C001-C099)
	// ============================================

	"C001": {Category: CategoryConfig, Message: "forEach requires exactly one non-blank child"},
	"C002": {Category: CategoryConfig, Message: "forEach child requires a key attribute"},
	"C003": {Category: CategoryConfig, Message: "Invalid emtpl.json"},
	"C004": {Category: CategoryConfig, Message: "Invalid configuration value"},

	// ============================================
	// Render Errors (R001-R099)
	// ============================================

	"R001": {Category: CategoryRender, Message: "Script tags are not allowed"},
	"R002": {Category: CategoryRender, Message: "Binding invocation failed"},
	"R003": {Category: CategoryRender, Message: "Stale tree session handle"},
	"R004": {Category: CategoryRender, Message: "Invalid expression"},

	// ============================================
	// Source and Store Errors (S001-S099)
	// ============================================

	"S001": {Category: CategorySource, Message: "Template not found"},
	"S002": {Category: CategorySource, Message: "Template source failure"},
	"S010": {Category: CategoryStore, Message: "Snapshot store failure"},

	// ============================================
	// CLI Errors (X001-X099)
	// ============================================

	"X001": {Category: CategoryCLI, Message: "Invalid input"},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
