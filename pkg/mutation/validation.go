package mutation

// Severity grades validation issues and policy decisions.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Issue is a single validation finding at a state path.
type Issue struct {
	// Path is the state path the issue refers to.
	Path string `json:"path,omitempty"`

	// Message is the human-readable description of the issue.
	Message string `json:"message"`

	// Code is an optional machine-readable issue code.
	Code string `json:"code,omitempty"`

	// Severity grades the issue.
	Severity Severity `json:"severity"`
}

// ValidationResult collects the findings of a mutation's Validate operation.
// The result is valid iff it carries no errors.
type ValidationResult struct {
	// Errors are findings that make the mutation invalid.
	Errors []Issue `json:"errors,omitempty"`

	// Warnings are findings that do not block execution.
	Warnings []Issue `json:"warnings,omitempty"`

	// Infos are informational findings.
	Infos []Issue `json:"infos,omitempty"`
}

// Valid returns an empty, valid ValidationResult.
func Valid() *ValidationResult {
	return &ValidationResult{}
}

// Invalid returns a ValidationResult routing each issue by severity.
// Critical issues are recorded as errors.
func Invalid(issues ...Issue) *ValidationResult {
	v := &ValidationResult{}
	for _, issue := range issues {
		switch issue.Severity {
		case SeverityWarning:
			v.Warnings = append(v.Warnings, issue)
		case SeverityInfo:
			v.Infos = append(v.Infos, issue)
		default:
			v.Errors = append(v.Errors, issue)
		}
	}
	return v
}

// IsValid reports whether the result carries no errors.
func (v *ValidationResult) IsValid() bool {
	return len(v.Errors) == 0
}

// AddError records an error-severity issue.
func (v *ValidationResult) AddError(path, message, code string) {
	v.Errors = append(v.Errors, Issue{Path: path, Message: message, Code: code, Severity: SeverityError})
}

// AddCritical records a critical-severity issue. Critical issues count as
// errors for validity.
func (v *ValidationResult) AddCritical(path, message, code string) {
	v.Errors = append(v.Errors, Issue{Path: path, Message: message, Code: code, Severity: SeverityCritical})
}

// AddWarning records a warning-severity issue.
func (v *ValidationResult) AddWarning(path, message, code string) {
	v.Warnings = append(v.Warnings, Issue{Path: path, Message: message, Code: code, Severity: SeverityWarning})
}

// AddInfo records an info-severity issue.
func (v *ValidationResult) AddInfo(path, message, code string) {
	v.Infos = append(v.Infos, Issue{Path: path, Message: message, Code: code, Severity: SeverityInfo})
}

// IssueCount returns the total number of findings across all severities.
func (v *ValidationResult) IssueCount() int {
	return len(v.Errors) + len(v.Warnings) + len(v.Infos)
}
