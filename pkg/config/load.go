package config

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/spf13/afero"
	"github.com/tidwall/jsonc"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// FileNames are the settings files looked for in a workspace root, in order.
var FileNames = []string{
	".twigls.yaml",
	".twigls.yml",
	".twigls.hcl",
	".twigls.json",
	".twigls.jsonc",
}

// Load reads a settings file. A missing file yields the defaults.
func Load(fs afero.Fs, path string) (Settings, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Default(), errors.Errorf("reading settings file: %w", err)
	}

	var raw rawSettings
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
			return Default(), errors.Errorf("parsing YAML: %w", err)
		}
	case ".hcl":
		parser := hclparse.NewParser()
		file, diags := parser.ParseHCL(data, path)
		if diags.HasErrors() {
			return Default(), errors.Errorf("parsing HCL: %s", diags.Error())
		}
		ctx := &hcl.EvalContext{Variables: map[string]cty.Value{}}
		if diags := gohcl.DecodeBody(file.Body, ctx, &raw); diags.HasErrors() {
			return Default(), errors.Errorf("decoding HCL: %s", diags.Error())
		}
	case ".json", ".jsonc":
		decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&raw); err != nil {
			return Default(), errors.Errorf("parsing JSON: %w", err)
		}
	default:
		return Default(), errors.Errorf("unsupported settings file %q", filepath.Base(path))
	}

	settings := Default()
	if err := raw.applyTo(&settings); err != nil {
		return settings, errors.Errorf("validating %s: %w", filepath.Base(path), err)
	}
	return settings, nil
}

// Discover returns the first settings file present in root.
func Discover(fs afero.Fs, root string) (string, bool) {
	for _, name := range FileNames {
		path := filepath.Join(root, name)
		if ok, err := afero.Exists(fs, path); err == nil && ok {
			return path, true
		}
	}
	return "", false
}

// LoadWorkspace loads explicit when set, otherwise the first settings file
// found in root. With neither it returns the defaults.
func LoadWorkspace(fs afero.Fs, root, explicit string) (Settings, error) {
	path := explicit
	if path == "" {
		found, ok := Discover(fs, root)
		if !ok {
			return Default(), nil
		}
		path = found
	}
	return Load(fs, path)
}
