package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrEmptySourceDir indicates a missing src_dir
	ErrEmptySourceDir = errors.New("empty source directory")

	// ErrEmptySpecDir indicates a missing spec_dir
	ErrEmptySpecDir = errors.New("empty spec directory")

	// ErrEmptyLogFile indicates a missing log_file
	ErrEmptyLogFile = errors.New("empty log file")

	// ErrInvalidWorkers indicates a negative worker count
	ErrInvalidWorkers = errors.New("invalid worker count")

	// ErrInvalidExtension indicates a malformed or clashing file extension
	ErrInvalidExtension = errors.New("invalid file extension")

	// ErrSameRoots indicates src_dir and spec_dir point at the same directory
	ErrSameRoots = errors.New("source and spec directories are the same")
)

var validate = newValidator()

// newValidator reports fields by their yaml key, e.g. "src_dir".
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// fieldErrors maps struct fields to the sentinel reported when their tag fails.
var fieldErrors = map[string]error{
	"SrcDir":    ErrEmptySourceDir,
	"SpecDir":   ErrEmptySpecDir,
	"LogFile":   ErrEmptyLogFile,
	"Workers":   ErrInvalidWorkers,
	"SourceExt": ErrInvalidExtension,
	"DocExt":    ErrInvalidExtension,
}

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			errs = append(errs, fieldError(fe))
		}
	}

	if err := validateRoots(cfg); err != nil {
		errs = append(errs, err)
	}

	if err := validatePaths(&cfg.Paths); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func fieldError(fe validator.FieldError) error {
	sentinel, ok := fieldErrors[fe.StructField()]
	if !ok {
		return fmt.Errorf("%s: failed %q validation", fe.Namespace(), fe.Tag())
	}
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%w: %s is required", sentinel, fe.Field())
	case "gte":
		return fmt.Errorf("%w: must be >= %s, got %v", sentinel, fe.Param(), fe.Value())
	case "startswith":
		return fmt.Errorf("%w: %q must start with %q", sentinel, fe.Value(), fe.Param())
	}
	return fmt.Errorf("%w: %s", sentinel, fe.Error())
}

func validateRoots(cfg *Config) error {
	if cfg.SrcDir == "" || cfg.SpecDir == "" {
		return nil
	}
	if filepath.Clean(cfg.SrcDir) == filepath.Clean(cfg.SpecDir) {
		return fmt.Errorf("%w: %s", ErrSameRoots, cfg.SrcDir)
	}
	return nil
}

func validatePaths(cfg *PathsConfig) error {
	if cfg.SourceExt != "" && cfg.SourceExt == cfg.DocExt {
		return fmt.Errorf("%w: source_ext and doc_ext are both %q", ErrInvalidExtension, cfg.SourceExt)
	}
	return nil
}

// validationError combines multiple errors while keeping them matchable
// with errors.Is.
type validationError struct {
	errs []error
}

func (e *validationError) Error() string {
	var msgs []string
	for _, err := range e.errs {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

func (e *validationError) Unwrap() []error { return e.errs }

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	return &validationError{errs: errs}
}
