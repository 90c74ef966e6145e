// Where: internal/constants/env.go
// What: Environment variable naming constants.
// Why: Centralize environment variable names to avoid typos and inconsistencies.
package constants

const (
	// Mailer Configuration
	EnvSESEmailFrom = "SES_EMAIL_FROM"
	EnvSESEmailTo   = "SES_EMAIL_TO"
	EnvSESRegion    = "SES_REGION"

	// Image Processing
	EnvTableName = "TABLE_NAME"
	EnvTableKey  = "TABLE_PARTITION_KEY"

	// Shared Runtime
	EnvLogLevel    = "LOG_LEVEL"
	EnvAWSRegion   = "AWS_REGION"
	EnvAWSEndpoint = "AWS_ENDPOINT_URL"

	// Local Emulator (suffixes resolved through envutil.HostEnvKey)
	HostSuffixPortEmulator = "PORT_EMULATOR"
	HostSuffixAccessKey    = "ACCESS_KEY"
	HostSuffixSecretKey    = "SECRET_KEY"
	HostSuffixProject      = "COMPOSE_PROJECT"
)
