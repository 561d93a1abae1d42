package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/flagx"
	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable read by parseEnv.
const EnvPrefix = "GOPHSOCIAL_"

// parseEnv loads the dotenv file named by -env (or ./.env when present)
// into the process environment and then overlays GOPHSOCIAL_* variables.
// Variables already set in the environment are not overwritten by the file.
// A malformed value or an unreadable explicit file panics, like parseJson.
func parseEnv(config *Config) {
	file := flagx.EnvFileFlags()
	explicit := file != ""
	if !explicit {
		file = ".env"
	}

	if err := godotenv.Load(file); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			panic(err)
		}
	}

	str(&config.EndpointAddrHTTP, "HTTP_ADDR")
	str(&config.EndpointAddrGRPC, "GRPC_ADDR")
	str(&config.DatabaseDSN, "DATABASE_DSN")
	str(&config.SecretKey, "SECRET_KEY")
	integer(&config.BcryptCost, "BCRYPT_COST")
	str(&config.S3RootUser, "S3_ROOT_USER")
	str(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	str(&config.S3Bucket, "S3_BUCKET")
	str(&config.S3Region, "S3_REGION")
	str(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")
	str(&config.S3PublicURL, "S3_PUBLIC_URL")
	str(&config.S3KeyPrefix, "S3_KEY_PREFIX")
	int64Var(&config.ImageMaxBytes, "IMAGE_MAX_BYTES")
	dur(&config.ImageDeleteRetryBase, "IMAGE_DELETE_RETRY_BASE")
	str(&config.NATSURL, "NATS_URL")
	float(&config.RateLimitRPS, "RATE_LIMIT_RPS")
	integer(&config.RateLimitBurst, "RATE_LIMIT_BURST")
	str(&config.LogLevel, "LOG_LEVEL")
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func str(dst *string, key string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

func integer(dst *int, key string) {
	if v, ok := lookup(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		*dst = n
	}
}

func int64Var(dst *int64, key string) {
	if v, ok := lookup(key); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			panic(err)
		}
		*dst = n
	}
}

func float(dst *float64, key string) {
	if v, ok := lookup(key); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			panic(err)
		}
		*dst = f
	}
}

func dur(dst *time.Duration, key string) {
	if v, ok := lookup(key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		*dst = d
	}
}
