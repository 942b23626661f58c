package types

// ActionNamespace groups interactive actions that belong to the release workflow
type ActionNamespace string

const (
	ActionNamespaceTagRelease ActionNamespace = "tag-release"
)

// ActionID is the callback ID of an interactive action within a namespace
type ActionID string

const (
	ActionConfirmVersionBump ActionID = "confirm_version_bump"
	ActionConfirmRelease     ActionID = "confirm_release"
	ActionCancel             ActionID = "cancel"
)

// Step is a position of a release workflow
type Step string

const (
	StepNew                Step = "new"
	StepConfirmVersionBump Step = "confirm_version_bump"
	StepConfirmRelease     Step = "confirm_release"
	StepReleased           Step = "released"
	StepCancelled          Step = "cancelled"
)

// IsTerminal reports whether no further transition is possible from the step
func (x Step) IsTerminal() bool {
	return x == StepReleased || x == StepCancelled
}

// Answer keys and values carried by confirmation actions
const (
	AnswerKeyVersionBump = "versionBump"
	AnswerKeyRelease     = "release"

	AnswerYes = "yes"
	AnswerNo  = "no"
)
