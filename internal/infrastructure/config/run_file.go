package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/emiliopalmerini/fpstudy/internal/domain"
)

const (
	DefaultReplicates = 1000
	DefaultConfidence = 95.0
)

// RunFile describes a bootstrap run in YAML:
//
//	far: far_decisions.csv
//	strategy: far-hierarchy
//	replicates: 5000
//	workers: 8
//	confidence: 99
//	seed: 42
type RunFile struct {
	FAR    string `yaml:"far" validate:"required_without=FRR"`
	FRR    string `yaml:"frr" validate:"required_without=FAR"`
	Groups string `yaml:"groups"`

	Strategy     string  `yaml:"strategy" validate:"required,oneof=far-flat far-hierarchy frr-hierarchy"`
	Replicates   int     `yaml:"replicates" validate:"gt=0"`
	Workers      int     `yaml:"workers" validate:"gte=-1"`
	Distribution string  `yaml:"distribution" validate:"omitempty,oneof=default per-replicate shared"`
	Confidence   float64 `yaml:"confidence" validate:"gt=0,lte=100"`
	Seed         *uint64 `yaml:"seed"`
	Save         bool    `yaml:"save"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoadRunFile reads and defaults a run file without validating it, so that
// command line flags can fill in what it leaves out. Table paths are
// resolved relative to the run file's directory.
func LoadRunFile(path string) (*RunFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run file: %w", err)
	}
	rf, err := DecodeRunFile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for _, p := range []*string{&rf.FAR, &rf.FRR, &rf.Groups} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
	return rf, nil
}

// ParseRunFile decodes and validates a complete run file.
func ParseRunFile(data []byte) (*RunFile, error) {
	rf, err := DecodeRunFile(data)
	if err != nil {
		return nil, err
	}
	if err := rf.Validate(); err != nil {
		return nil, err
	}
	return rf, nil
}

// DecodeRunFile decodes YAML run file data over the defaults. Unknown keys
// are rejected.
func DecodeRunFile(data []byte) (*RunFile, error) {
	rf := &RunFile{
		Replicates: DefaultReplicates,
		Confidence: DefaultConfidence,
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(rf); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: decoding run file: %v", domain.ErrConfiguration, err)
	}
	return rf, nil
}

func (rf *RunFile) Validate() error {
	err := validate.Struct(rf)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", domain.ErrConfiguration, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return fmt.Errorf("%w: invalid run file: %s", domain.ErrConfiguration, strings.Join(msgs, "; "))
}
