package migrate

// WarningCode classifies an advisory failure.
type WarningCode string

// Warning codes.
const (
	// WarningStepFailed marks an advisory step whose command failed.
	WarningStepFailed WarningCode = "step-failed"
	// WarningBranchCheckoutFailed marks a remote branch that could not be tracked locally.
	WarningBranchCheckoutFailed WarningCode = "branch-checkout-failed"
	// WarningNothingToMerge marks a destination without a main branch.
	WarningNothingToMerge WarningCode = "nothing-to-merge"
	// WarningMergeConflicts marks a merge of the destination main that produced conflicts.
	WarningMergeConflicts WarningCode = "merge-conflicts"
)

// StepWarning records one advisory failure.
type StepWarning struct {
	Step    StepName
	Code    WarningCode
	Message string
}

// MigrationOutcome is the result of migrating one repository. Failures are
// values; ExecutedSteps is the prefix of steps completed before a fatal failure.
type MigrationOutcome struct {
	Success        bool
	ErrorMessage   string
	FailedStep     StepName
	ExecutedSteps  []StepName
	Warnings       []StepWarning
	MergeConflicts []string
	DryRun         bool
}

// HasWarnings reports whether any advisory failure was recorded.
func (outcome MigrationOutcome) HasWarnings() bool {
	return len(outcome.Warnings) > 0
}

func (outcome *MigrationOutcome) recordStep(step StepName) {
	outcome.ExecutedSteps = append(outcome.ExecutedSteps, step)
}

func (outcome *MigrationOutcome) recordWarning(step StepName, code WarningCode, message string) {
	outcome.Warnings = append(outcome.Warnings, StepWarning{Step: step, Code: code, Message: message})
}

func (outcome *MigrationOutcome) fail(step StepName, message string) {
	outcome.Success = false
	outcome.FailedStep = step
	outcome.ErrorMessage = message
}
