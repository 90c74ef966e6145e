// Where: internal/config/handler.go
// What: Environment-derived configuration for the Lambda handlers.
// Why: Fail cold start loudly when a required variable is missing.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/photo-album/eda-app/internal/constants"
	"github.com/photo-album/eda-app/internal/envutil"
)

// ErrMissingConfig is wrapped by every loader error.
var ErrMissingConfig = errors.New("missing configuration")

const defaultLogLevel = "info"

// Mail configures the SES-backed mailers.
type Mail struct {
	From   string
	To     string
	Region string
}

// LoadMail reads the sender, recipient, and SES region. All three are required.
func LoadMail() (Mail, error) {
	cfg := Mail{
		From:   strings.TrimSpace(os.Getenv(constants.EnvSESEmailFrom)),
		To:     strings.TrimSpace(os.Getenv(constants.EnvSESEmailTo)),
		Region: strings.TrimSpace(os.Getenv(constants.EnvSESRegion)),
	}
	if cfg.From == "" || cfg.To == "" || cfg.Region == "" {
		return Mail{}, fmt.Errorf(
			"%w: please set the %s, %s, and %s environment variables",
			ErrMissingConfig,
			constants.EnvSESEmailTo,
			constants.EnvSESEmailFrom,
			constants.EnvSESRegion,
		)
	}
	return cfg, nil
}

// Processor configures the image processing handler.
type Processor struct {
	TableName    string
	PartitionKey string
}

// DefaultPartitionKey names the table's hash key when TABLE_PARTITION_KEY is unset.
const DefaultPartitionKey = "imageName"

// LoadProcessor reads the lookup table name.
func LoadProcessor() (Processor, error) {
	table := strings.TrimSpace(os.Getenv(constants.EnvTableName))
	if table == "" {
		return Processor{}, fmt.Errorf("%w: %s is not set", ErrMissingConfig, constants.EnvTableName)
	}
	return Processor{
		TableName:    table,
		PartitionKey: envutil.GetenvDefault(constants.EnvTableKey, DefaultPartitionKey),
	}, nil
}

// Runtime holds settings shared by every handler.
type Runtime struct {
	LogLevel string
	Region   string
	Endpoint string
}

// LoadRuntime reads optional shared settings. It never fails.
func LoadRuntime() Runtime {
	return Runtime{
		LogLevel: envutil.GetenvDefault(constants.EnvLogLevel, defaultLogLevel),
		Region:   envutil.GetenvDefault(constants.EnvAWSRegion, ""),
		Endpoint: envutil.GetenvDefault(constants.EnvAWSEndpoint, ""),
	}
}
