// Where: internal/meta/meta.go
// What: Project identity constants.
// Why: Keep branding and naming in one place for the CLI and handlers.
package meta

const (
	// Project Identity
	AppName   = "eda"
	Slug      = "eda-app"
	EnvPrefix = "EDA"
	StackName = "EDAAppStack"

	// Directory Layout
	ProjectFile = "eda.yaml"
	OutputDir   = ".eda"

	// Sender display name used by both mailers.
	SenderName = "The Photo Album"
)
