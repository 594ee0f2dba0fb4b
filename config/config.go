// Package config resolves the ingestion settings once at process start from
// IMDB_* environment variables. The resulting Config value is passed by
// reference into the pipeline and its stage implementations - there is no
// package-level state and no load-time validation.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/Richard-GOZAN/imdb-analytics-platform/catalog"
	"github.com/Richard-GOZAN/imdb-analytics-platform/constants"
	"github.com/Richard-GOZAN/imdb-analytics-platform/helper"
	"github.com/ghodss/yaml"
	"github.com/mitchellh/go-homedir"
)

// ConfigError denotes missing or malformed pre-flight settings.
// It is fatal: the CLI maps it to exit code 2 before any table is processed.
type ConfigError struct {
	Err error
}

func (e ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %v", e.Err)
}

func (e ConfigError) Unwrap() error {
	return e.Err
}

// Config holds all settings for one ingestion run.
type Config struct {
	BaseUrl      string   `json:"baseUrl"`
	RawDir       string   `json:"rawDir"`
	ParquetDir   string   `json:"parquetDir"`
	Bucket       string   `json:"s3Bucket"`
	Region       string   `json:"s3Region"`
	Prefix       string   `json:"s3Prefix"`
	SnowflakeDsn string   `json:"snowflakeDsn"`
	StageName    string   `json:"stageName"`
	BronzeSchema string   `json:"bronzeSchema"`
	Compression  string   `json:"compression"`
	LogLevel     string   `json:"logLevel"`
	Tables       []string `json:"tables"`
}

// validCompression matches the codecs the converter supports.
var validCompression = map[string]struct{}{
	"snappy":       {},
	"gzip":         {},
	"zstd":         {},
	"uncompressed": {},
}

// FromEnv builds a Config from the environment, applying defaults for
// anything not set. Folder settings may use "~" for the home directory.
func FromEnv() (*Config, error) {
	c := &Config{
		BaseUrl:      helper.ReadValueFromEnvWithDefault(helper.EnvVarName("base-url"), constants.DefaultBaseUrl),
		RawDir:       helper.ReadValueFromEnvWithDefault(helper.EnvVarName("raw-dir"), constants.DefaultRawDir),
		ParquetDir:   helper.ReadValueFromEnvWithDefault(helper.EnvVarName("parquet-dir"), constants.DefaultParquetDir),
		Bucket:       helper.ReadValueFromEnvWithDefault(helper.EnvVarName("s3-bucket"), ""),
		Region:       helper.ReadValueFromEnvWithDefault(helper.EnvVarName("s3-region"), ""),
		Prefix:       helper.ReadValueFromEnvWithDefault(helper.EnvVarName("s3-prefix"), constants.DefaultBlobPrefix),
		SnowflakeDsn: helper.ReadValueFromEnvWithDefault(helper.EnvVarName("snowflake-dsn"), ""),
		StageName:    helper.ReadValueFromEnvWithDefault(helper.EnvVarName("stage"), constants.DefaultStageName),
		BronzeSchema: helper.ReadValueFromEnvWithDefault(helper.EnvVarName("bronze-schema"), constants.DefaultBronzeSchema),
		Compression:  helper.ReadValueFromEnvWithDefault(helper.EnvVarName("compression"), constants.DefaultCompression),
		LogLevel:     helper.ReadValueFromEnvWithDefault(helper.EnvVarName("log-level"), constants.DefaultLogLevel),
	}
	for _, t := range catalog.DefaultTables() {
		c.Tables = append(c.Tables, t.Name())
	}
	var err error
	if c.RawDir, err = homedir.Expand(c.RawDir); err != nil {
		return nil, ConfigError{Err: fmt.Errorf("bad raw folder: %w", err)}
	}
	if c.ParquetDir, err = homedir.Expand(c.ParquetDir); err != nil {
		return nil, ConfigError{Err: fmt.Errorf("bad parquet folder: %w", err)}
	}
	return c, nil
}

// RestrictTables narrows the run to the given logical table names.
// Unknown names are a pre-flight ConfigError.
func (c *Config) RestrictTables(names []string) error {
	if len(names) == 0 { // if no restriction was requested...
		return nil
	}
	tables, err := catalog.Select(names)
	if err != nil {
		return ConfigError{Err: err}
	}
	c.Tables = c.Tables[:0]
	for _, t := range tables {
		c.Tables = append(c.Tables, t.Name())
	}
	return nil
}

// Validate checks that everything a run needs is present.
// The warehouse DSN is only required when the load stage will execute.
func (c *Config) Validate(skipLoad bool) error {
	required := struct {
		Bucket string `errorTxt:"S3 bucket (env IMDB_S3_BUCKET)" mandatory:"yes"`
		Region string `errorTxt:"S3 region (env IMDB_S3_REGION)" mandatory:"yes"`
	}{c.Bucket, c.Region}
	if err := helper.ValidateStructIsPopulated(&required); err != nil {
		return ConfigError{Err: err}
	}
	if !skipLoad { // if the load stage will run we also need warehouse settings...
		warehouse := struct {
			Dsn    string `errorTxt:"Snowflake DSN (env IMDB_SNOWFLAKE_DSN)" mandatory:"yes"`
			Stage  string `errorTxt:"Snowflake stage (env IMDB_STAGE)" mandatory:"yes"`
			Schema string `errorTxt:"bronze schema (env IMDB_BRONZE_SCHEMA)" mandatory:"yes"`
		}{c.SnowflakeDsn, c.StageName, c.BronzeSchema}
		if err := helper.ValidateStructIsPopulated(&warehouse); err != nil {
			return ConfigError{Err: err}
		}
	}
	if _, ok := validCompression[strings.ToLower(c.Compression)]; !ok {
		return ConfigError{Err: fmt.Errorf("unsupported compression codec %q", c.Compression)}
	}
	return nil
}

// CreateDirectories makes the local cache folders so stages can write
// artifacts without errors.
func (c *Config) CreateDirectories() error {
	for _, dir := range []string{c.RawDir, c.ParquetDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return ConfigError{Err: fmt.Errorf("unable to create folder %v: %w", dir, err)}
		}
	}
	return nil
}

// reDsnPassword matches the password component of a URL-style DSN.
var reDsnPassword = regexp.MustCompile(`:[^:@/]+@`)

// Yaml renders the resolved configuration for dry-run output.
// The DSN password is masked.
func (c *Config) Yaml() (string, error) {
	masked := *c
	if masked.SnowflakeDsn != "" {
		masked.SnowflakeDsn = reDsnPassword.ReplaceAllString(masked.SnowflakeDsn, ":xxxxxxx@")
	}
	b, err := yaml.Marshal(&masked)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
