package config

import (
	"bytes"
	"encoding/json"

	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"
)

// rawSettings mirrors Settings with every field optional so that a payload
// only overrides what it actually carries.
type rawSettings struct {
	PathResolution      *string         `json:"pathResolution" yaml:"pathResolution" hcl:"path_resolution,optional"`
	TemplateDirectories []string        `json:"templateDirectories" yaml:"templateDirectories" hcl:"template_directories,optional"`
	Diagnostics         *rawDiagnostics `json:"diagnostics" yaml:"diagnostics" hcl:"diagnostics,block"`
}

type rawDiagnostics struct {
	Enabled *bool `json:"enabled" yaml:"enabled" hcl:"enabled,optional"`
}

// Parse reads a JSON settings payload, either the bare object or one nested
// under SettingsSection. It always returns usable settings: fields that are
// missing or malformed keep their defaults and the problems are reported in
// the returned error.
func Parse(payload []byte) (Settings, error) {
	settings := Default()

	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		return settings, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return settings, errors.Errorf("decoding settings payload: %w", err)
	}

	if section, ok := fields[SettingsSection]; ok {
		fields = nil
		if err := json.Unmarshal(section, &fields); err != nil {
			return settings, errors.Errorf("decoding %s section: %w", SettingsSection, err)
		}
	}

	var raw rawSettings
	var errs error
	decode := func(key string, dst any) {
		value, ok := fields[key]
		if !ok {
			return
		}
		if err := json.Unmarshal(value, dst); err != nil {
			errs = multierr.Append(errs, errors.Errorf("decoding %s: %w", key, err))
		}
	}
	decode("pathResolution", &raw.PathResolution)
	decode("templateDirectories", &raw.TemplateDirectories)
	decode("diagnostics", &raw.Diagnostics)

	errs = multierr.Append(errs, raw.applyTo(&settings))
	return settings, errs
}

func (r rawSettings) applyTo(settings *Settings) error {
	var errs error

	if r.PathResolution != nil {
		mode := PathResolution(*r.PathResolution)
		if mode.Valid() {
			settings.PathResolution = mode
		} else {
			errs = multierr.Append(errs, errors.Errorf("unknown path resolution %q", *r.PathResolution))
		}
	}

	if r.TemplateDirectories != nil {
		settings.TemplateDirectories = append([]string{}, r.TemplateDirectories...)
	}

	if r.Diagnostics != nil && r.Diagnostics.Enabled != nil {
		settings.Diagnostics.Enabled = *r.Diagnostics.Enabled
	}

	return errs
}
