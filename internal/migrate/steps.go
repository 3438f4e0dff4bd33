package migrate

// StepName identifies one stage of a repository migration.
type StepName string

// Migration steps in execution order.
const (
	StepClone                StepName = "clone"
	StepFetchAllBranches     StepName = "fetch-all-branches"
	StepRenameDefaultBranch  StepName = "rename-default-branch"
	StepSetDestinationRemote StepName = "set-destination-remote"
	StepMergeRemoteDefault   StepName = "merge-remote-default"
	StepPushAllBranches      StepName = "push-all-branches"
	StepPushAllTags          StepName = "push-all-tags"
)

// StepClassification decides whether a failed step ends the migration.
type StepClassification int

// Step classifications.
const (
	// StepFatal failures end the migration with a failed outcome.
	StepFatal StepClassification = iota
	// StepAdvisory failures are recorded as warnings and the migration continues.
	StepAdvisory
)

// String renders the classification for logs.
func (classification StepClassification) String() string {
	if classification == StepAdvisory {
		return "advisory"
	}
	return "fatal"
}

var orderedSteps = []StepName{
	StepClone,
	StepFetchAllBranches,
	StepRenameDefaultBranch,
	StepSetDestinationRemote,
	StepMergeRemoteDefault,
	StepPushAllBranches,
	StepPushAllTags,
}

var stepClassifications = map[StepName]StepClassification{
	StepClone:                StepFatal,
	StepFetchAllBranches:     StepFatal,
	StepRenameDefaultBranch:  StepAdvisory,
	StepSetDestinationRemote: StepFatal,
	StepMergeRemoteDefault:   StepAdvisory,
	StepPushAllBranches:      StepFatal,
	StepPushAllTags:          StepAdvisory,
}

// Steps returns every migration step in execution order.
func Steps() []StepName {
	return append([]StepName(nil), orderedSteps...)
}

// Classification reports how a failure of the step is treated.
func (step StepName) Classification() StepClassification {
	classification, known := stepClassifications[step]
	if !known {
		return StepFatal
	}
	return classification
}
