package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks cfg against its struct tags and the cross-field rules
// the tags cannot express.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return formatValidationErrors(verrs)
		}
		return err
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Port == 0 {
		return fmt.Errorf("metrics.port: required when metrics are enabled")
	}
	if cfg.Backup.Bucket != "" && cfg.Backup.Region == "" && cfg.Backup.Endpoint == "" {
		return fmt.Errorf("backup.region: required when backup.bucket is set without an endpoint")
	}
	return nil
}

// ValidateBackup reports whether cfg can run an S3 backup.
func ValidateBackup(cfg *Config) error {
	if cfg.Backup.Bucket == "" {
		return fmt.Errorf("backup.bucket: required for backup")
	}
	return nil
}

func formatValidationErrors(verrs validator.ValidationErrors) error {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q validation (value: %v)", fieldPath(fe), fieldRule(fe), fe.Value()))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// fieldPath turns "Config.Store.Capacity" into "Store.Capacity".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func fieldRule(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}
