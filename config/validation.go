package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	var errs []ValidationError

	if cfg.ServerPort == "" {
		errs = append(errs, ValidationError{"SERVER_PORT", "is required"})
	}

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DBHost == "" || cfg.DBName == "" {
			errs = append(errs, ValidationError{"DB_HOST", "host and database name are required for postgres"})
		}
	case "sqlite":
		if cfg.SQLitePath == "" {
			errs = append(errs, ValidationError{"SQLITE_PATH", "is required for sqlite"})
		}
	default:
		errs = append(errs, ValidationError{"DB_DRIVER", fmt.Sprintf("unsupported driver %q", cfg.DBDriver)})
	}

	switch cfg.StorageBackend {
	case "local":
		if cfg.MediaRoot == "" {
			errs = append(errs, ValidationError{"MEDIA_ROOT", "is required for local storage"})
		}
	case "s3":
		if cfg.S3Bucket == "" {
			errs = append(errs, ValidationError{"S3_BUCKET_NAME", "is required for s3 storage"})
		}
	default:
		errs = append(errs, ValidationError{"STORAGE_BACKEND", fmt.Sprintf("unsupported backend %q", cfg.StorageBackend)})
	}

	if cfg.PageSize < 1 {
		errs = append(errs, ValidationError{"PAGE_SIZE", "must be positive"})
	}
	if cfg.MaxPageSize < cfg.PageSize {
		errs = append(errs, ValidationError{"MAX_PAGE_SIZE", "must not be smaller than PAGE_SIZE"})
	}
	if cfg.TokenTTL <= 0 {
		errs = append(errs, ValidationError{"TOKEN_TTL", "must be positive"})
	}

	// Sensitive values must not keep their development defaults in production
	if cfg.Env == Production {
		if cfg.JWTSecret == "" || cfg.JWTSecret == defaultJWTSecret {
			errs = append(errs, ValidationError{"jwt_secret", "secret is required in production"})
		}
		if cfg.DBDriver == "postgres" && (cfg.DBPassword == "" || cfg.DBPassword == "postgres") {
			errs = append(errs, ValidationError{"db_password", "secret is required in production"})
		}
	} else if cfg.JWTSecret == "" {
		errs = append(errs, ValidationError{"JWT_SECRET", "is required"})
	}

	if len(errs) == 0 {
		return nil
	}
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = e.Error()
	}
	return fmt.Errorf("configuration validation failed:\n%s", strings.Join(lines, "\n"))
}
