package wizard

import "errors"

// Validation errors for the interactive wizard.
var (
	errVMNameRequired = errors.New("vm name is required")
	errVMNameInvalid  = errors.New("vm name must be 1-64 alphanumeric characters, hyphens, underscores or dots, starting with alphanumeric")
	errURLRequired    = errors.New("URL is required")
	errURLInvalid     = errors.New("URL must use an http://, https:// or s3:// scheme")
)
