package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Reactivity Errors (FX001-FX099)
	// ============================================

	"FX001": {
		Category: CategoryReactivity,
		Message:  "Invalid reactive target",
		Detail:   "Only fx.Object, fx.Array, fx.Map and fx.Set values (or proxies of them) can be made reactive.",
		DocURL:   "https://kirei.dev/docs/errors/FX001",
	},
	"FX002": {
		Category: CategoryReactivity,
		Message:  "Watcher is not callable",
		Detail:   "WatchEffect expects a non-nil function.",
		DocURL:   "https://kirei.dev/docs/errors/FX002",
	},
	"FX003": {
		Category: CategoryReactivity,
		Message:  "Mutation of a read-only target",
		Detail:   "Read-only proxies reject writes; the underlying target was left untouched.",
		DocURL:   "https://kirei.dev/docs/errors/FX003",
	},
	"FX004": {
		Category: CategoryReactivity,
		Message:  "Maximum recursive updates exceeded",
		Detail:   "An effect re-queued itself too many times within one flush. It likely mutates state it also reads.",
		DocURL:   "https://kirei.dev/docs/errors/FX004",
	},
	"FX005": {
		Category: CategoryReactivity,
		Message:  "Invalid watch source",
		Detail:   "A watch source must be a Ref, a Computed, a getter function, or a slice of those.",
		DocURL:   "https://kirei.dev/docs/errors/FX005",
	},
	"FX006": {
		Category: CategoryReactivity,
		Message:  "Scheduled job panicked",
		Detail:   "A job panicked while the queue was flushing. The flush continued with the next job.",
		DocURL:   "https://kirei.dev/docs/errors/FX006",
	},

	// ============================================
	// Config Errors (CFG001-CFG099)
	// ============================================

	"CFG001": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "kirei.json could not be read or parsed.",
		DocURL:   "https://kirei.dev/docs/errors/CFG001",
	},
	"CFG002": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A value in kirei.json is out of range.",
		DocURL:   "https://kirei.dev/docs/errors/CFG002",
	},
	"CFG003": {
		Category: CategoryConfig,
		Message:  "Configuration not found",
		Detail:   "No kirei.json was found in the directory or any parent directory.",
		DocURL:   "https://kirei.dev/docs/errors/CFG003",
	},

	// ============================================
	// CLI Errors (CLI001-CLI099)
	// ============================================

	"CLI001": {
		Category: CategoryCLI,
		Message:  "Inspector failed",
		Detail:   "The inspector HTTP server stopped with an error.",
		DocURL:   "https://kirei.dev/docs/errors/CLI001",
	},
	"CLI002": {
		Category: CategoryCLI,
		Message:  "Invalid flag value",
		Detail:   "A command line flag has an unsupported value.",
		DocURL:   "https://kirei.dev/docs/errors/CLI002",
	},
}

// GetAllCodes returns all registered error codes, sorted.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
