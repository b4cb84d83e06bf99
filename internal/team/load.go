package team

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format is a supported TeamConfig file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatCUE  Format = "cue"
)

// Load error codes.
const (
	ErrCodeRead        = "READ_FAILED"
	ErrCodeUnsupported = "UNSUPPORTED_FORMAT"
	ErrCodeDecode      = "DECODE_FAILED"
)

// LoadError describes why a TeamConfig file could not be loaded.
type LoadError struct {
	Code    string
	Path    string
	Message string
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// FormatForPath picks a format from the file extension.
func FormatForPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".toml":
		return FormatTOML, true
	case ".cue":
		return FormatCUE, true
	default:
		return "", false
	}
}

// LoadFile reads a TeamConfig from path. Missing preference dials and an
// empty project type are filled with their defaults.
func LoadFile(path string) (TeamConfig, error) {
	format, ok := FormatForPath(path)
	if !ok {
		return TeamConfig{}, &LoadError{
			Code:    ErrCodeUnsupported,
			Path:    path,
			Message: fmt.Sprintf("unsupported extension %q (want .json, .yaml, .yml, .toml or .cue)", filepath.Ext(path)),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return TeamConfig{}, &LoadError{Code: ErrCodeRead, Path: path, Message: err.Error()}
	}

	cfg, err := Decode(data, format)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
			return TeamConfig{}, le
		}
		return TeamConfig{}, err
	}
	return cfg, nil
}

// Decode parses data in the given format and applies defaults.
func Decode(data []byte, format Format) (TeamConfig, error) {
	var cfg TeamConfig
	var err error

	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&cfg)
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&cfg)
	case FormatTOML:
		var md toml.MetaData
		md, err = toml.Decode(string(data), &cfg)
		if err == nil {
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				err = fmt.Errorf("unknown field %q", undecoded[0].String())
			}
		}
	case FormatCUE:
		err = decodeCUE(data, &cfg)
	default:
		return TeamConfig{}, &LoadError{Code: ErrCodeUnsupported, Message: fmt.Sprintf("unsupported format %q", format)}
	}
	if err != nil {
		return TeamConfig{}, &LoadError{Code: ErrCodeDecode, Message: err.Error()}
	}

	ApplyDefaults(&cfg)
	return cfg, nil
}

// decodeCUE evaluates a CUE document. The config may sit at the top level
// or under a "team" field, so files can carry helper definitions.
func decodeCUE(data []byte, cfg *TeamConfig) error {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data)
	if err := v.Err(); err != nil {
		return formatCUEError(err)
	}
	if t := v.LookupPath(cue.ParsePath("team")); t.Exists() {
		v = t
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return formatCUEError(err)
	}
	if err := v.Decode(cfg); err != nil {
		return formatCUEError(err)
	}
	return nil
}

// ApplyDefaults fills the project type and zero-valued preference records.
// Dials are only defaulted when all four are zero, so an explicit
// out-of-range value still reaches Validate.
func ApplyDefaults(cfg *TeamConfig) {
	if cfg.ProjectType == "" {
		cfg.ProjectType = ProjectTypeNew
	}
	if cfg.Agents == nil {
		cfg.Agents = []Agent{}
	}
	if cfg.Features == nil {
		cfg.Features = []FeatureConfig{}
	}
	for i := range cfg.Agents {
		if cfg.Agents[i].Preferences == (Preferences{}) {
			cfg.Agents[i].Preferences = DefaultPreferences()
		}
	}
}
