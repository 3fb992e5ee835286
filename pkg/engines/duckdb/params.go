package duckdb

import (
	"fmt"
	"regexp"

	"github.com/go-viper/mapstructure/v2"
)

var identRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Params holds DuckDB-specific configuration, decoded from the target's
// params block.
type Params struct {
	// Extensions to install and load on connect (e.g. "json", "parquet").
	Extensions []string `mapstructure:"extensions"`

	// Settings applied with SET after connect (e.g. memory_limit, threads).
	Settings map[string]string `mapstructure:"settings"`
}

// parseParams decodes raw params. Scalar settings are accepted in any YAML
// type and stringified.
func parseParams(raw map[string]any) (*Params, error) {
	p := &Params{}
	if len(raw) == 0 {
		return p, nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           p,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid duckdb params: %w", err)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// validate rejects extension and setting names that are not bare identifiers.
func (p *Params) validate() error {
	for _, ext := range p.Extensions {
		if !identRe.MatchString(ext) {
			return fmt.Errorf("invalid duckdb extension name %q", ext)
		}
	}
	for name := range p.Settings {
		if !identRe.MatchString(name) {
			return fmt.Errorf("invalid duckdb setting name %q", name)
		}
	}
	return nil
}
