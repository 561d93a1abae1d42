package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophsocial/internal/flagx"
	"github.com/dmitrijs2005/gophsocial/internal/timex"
)

// JsonConfig is the on-disk shape of the optional JSON config file.
// Durations use timex.Duration so both "15m" and integer nanoseconds parse.
type JsonConfig struct {
	EndpointAddrHTTP     string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC     string         `json:"endpoint_addr_grpc"`
	DatabaseDSN          string         `json:"database_dsn"`
	SecretKey            string         `json:"secret_key"`
	BcryptCost           int            `json:"bcrypt_cost"`
	S3RootUser           string         `json:"s3_root_user"`
	S3RootPassword       string         `json:"s3_root_password"`
	S3Bucket             string         `json:"s3_bucket"`
	S3Region             string         `json:"s3_region"`
	S3BaseEndpoint       string         `json:"s3_base_endpoint"`
	S3PublicURL          string         `json:"s3_public_url"`
	S3KeyPrefix          string         `json:"s3_key_prefix"`
	ImageMaxBytes        int64          `json:"image_max_bytes"`
	ImageDeleteRetryBase timex.Duration `json:"image_delete_retry_base"`
	NATSURL              string         `json:"nats_url"`
	RateLimitRPS         float64        `json:"rate_limit_rps"`
	RateLimitBurst       int            `json:"rate_limit_burst"`
	LogLevel             string         `json:"log_level"`
}

// parseJson overlays values from the JSON file named by -c / -config.
// Keys that are absent (zero) in the file leave the current value alone.
// An unreadable file or invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.S3PublicURL, c.S3PublicURL)
	setString(&config.S3KeyPrefix, c.S3KeyPrefix)
	if c.ImageMaxBytes != 0 {
		config.ImageMaxBytes = c.ImageMaxBytes
	}
	if c.ImageDeleteRetryBase.Duration != 0 {
		config.ImageDeleteRetryBase = c.ImageDeleteRetryBase.Duration
	}
	setString(&config.NATSURL, c.NATSURL)
	if c.RateLimitRPS != 0 {
		config.RateLimitRPS = c.RateLimitRPS
	}
	if c.RateLimitBurst != 0 {
		config.RateLimitBurst = c.RateLimitBurst
	}
	setString(&config.LogLevel, c.LogLevel)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
