package provisioning

// ArtifactResult records the outcome of one fetch-if-missing operation.
type ArtifactResult struct {
	// Name is a short label for the artifact (e.g. "ovmf-code").
	Name string

	// Source is the URL the artifact is fetched from.
	Source string

	// Path is the local destination.
	Path string

	// Downloaded is true when a network transfer happened during this run.
	Downloaded bool

	// Verified is true when the local file matched its recorded checksum.
	Verified bool
}

// State holds the shared results of provisioning phases.
// It is progressively populated as each phase completes and is consulted
// by later phases and by the final report.
type State struct {
	// Package results (populated by the packages phase)
	MissingPackages   []string
	PackagesInstalled bool
	InstallDeclined   bool

	// Firmware descriptor results (populated by the firmware phase)
	DescriptorPath    string
	DescriptorWritten bool
	DescriptorSkipped bool
	ReloadSent        bool

	// Artifact results (populated by the artifacts phase)
	Artifacts []ArtifactResult

	// Definition results (populated by the define phase)
	DefinitionPath string
}

// NewState creates an empty provisioning state.
func NewState() *State {
	return &State{}
}
