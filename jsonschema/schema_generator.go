//go:build generate

// Command schema_generator renders the config schema, the example config and
// env files, and the schemas of the HTTP API payloads.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	iyaml "github.com/invopop/yaml"
	"github.com/mcuadros/go-defaults"

	"github.com/theopenlane/utils/envparse"

	"github.com/theopenlane/policypeek/config"
	"github.com/theopenlane/policypeek/internal/api"
	"github.com/theopenlane/policypeek/internal/classifier"
	"github.com/theopenlane/policypeek/internal/discovery"
	"github.com/theopenlane/policypeek/internal/types"
)

const (
	modulePath = "github.com/theopenlane/policypeek/"

	configTag    = "koanf"
	skipper      = "-"
	defaultTag   = "default"
	sensitiveTag = "sensitive"
	varPrefix    = "POLICYPEEK"

	configSchemaPath = "./jsonschema/policypeek.config.json"
	apiSchemaDir     = "./jsonschema/api"
	yamlConfigPath   = "./config/config.example.yaml"
	envConfigPath    = "./config/.env.example"

	ownerReadWrite = 0o600
	ownerDir       = 0o750
)

// apiPayloads are the request and response bodies documented under apiSchemaDir
var apiPayloads = map[string]any{
	"open_page_request":    api.OpenPageRequest{},
	"mutation_request":     api.MutationRequest{},
	"analyze_text_request": api.AnalyzeTextRequest{},
	"draft_request":        api.DraftRequest{},
	"settings_request":     api.SettingsRequest{},
	"page_response":        api.PageResponse{},
	"links_response":       api.LinksResponse{},
	"discover_response":    api.DiscoverResponse{},
	"health_response":      api.HealthResponse{},
	"analysis_result":      types.AnalysisResult{},
	"stored_links":         types.StoredLinks{},
	"settings":             types.Settings{},
	"error_response":       api.Response{},
}

func main() {
	cfg := exampleConfig()

	steps := []func(*config.Config) error{
		writeConfigSchema,
		writeAPISchemas,
		writeYAMLConfig,
		writeEnvFile,
	}

	for _, step := range steps {
		if err := step(cfg); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}

// exampleConfig is the default config with the built-in keyword and path
// lists spelled out so users can edit them
func exampleConfig() *config.Config {
	cfg := &config.Config{}
	defaults.SetDefaults(cfg)

	if len(cfg.Page.Keywords) == 0 {
		cfg.Page.Keywords = classifier.DefaultKeywords
	}

	if len(cfg.Discovery.Paths) == 0 {
		cfg.Discovery.Paths = discovery.DefaultPaths
	}

	return cfg
}

// comments collects Go doc comments of pkgs for schema descriptions
func comments(pkgs ...string) (map[string]string, error) {
	r := &jsonschema.Reflector{}

	for _, pkg := range pkgs {
		if err := r.AddGoComments(modulePath, pkg); err != nil {
			return nil, fmt.Errorf("reading comments of %s: %w", pkg, err)
		}
	}

	if r.CommentMap == nil {
		return map[string]string{}, nil
	}

	return r.CommentMap, nil
}

func writeConfigSchema(cfg *config.Config) error {
	commentMap, err := comments("./config")
	if err != nil {
		return err
	}

	r := jsonschema.Reflector{
		ExpandedStruct:             true,
		RequiredFromJSONSchemaTags: true,
		FieldNameTag:               configTag,
		CommentMap:                 commentMap,
	}

	return writeJSON(configSchemaPath, r.Reflect(cfg))
}

func writeAPISchemas(_ *config.Config) error {
	commentMap, err := comments("./internal/api", "./internal/types")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(apiSchemaDir, ownerDir); err != nil {
		return fmt.Errorf("creating %s: %w", apiSchemaDir, err)
	}

	r := jsonschema.Reflector{
		ExpandedStruct: true,
		CommentMap:     commentMap,
	}

	for name, payload := range apiPayloads {
		if err := writeJSON(filepath.Join(apiSchemaDir, name+".json"), r.Reflect(payload)); err != nil {
			return err
		}
	}

	return nil
}

func writeJSON(path string, schema *jsonschema.Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}

	return writeFile(path, data)
}

func writeYAMLConfig(cfg *config.Config) error {
	data, err := iyaml.Marshal(yamlValue(reflect.ValueOf(cfg)))
	if err != nil {
		return fmt.Errorf("encoding %s: %w", yamlConfigPath, err)
	}

	return writeFile(yamlConfigPath, data)
}

// yamlValue mirrors v as plain maps and slices keyed by koanf tags, with
// durations spelled the way koanf parses them back
func yamlValue(v reflect.Value) any {
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}

		v = v.Elem()
	}

	if v.Type() == reflect.TypeOf(time.Duration(0)) {
		return time.Duration(v.Int()).String()
	}

	switch v.Kind() {
	case reflect.Struct:
		out := map[string]any{}

		for i := range v.NumField() {
			field := v.Type().Field(i)

			key := field.Tag.Get(configTag)
			if !field.IsExported() || key == "" || key == skipper {
				continue
			}

			out[key] = yamlValue(v.Field(i))
		}

		return out
	case reflect.Slice, reflect.Array:
		out := make([]any, 0, v.Len())
		for i := range v.Len() {
			out = append(out, yamlValue(v.Index(i)))
		}

		return out
	default:
		return v.Interface()
	}
}

// writeEnvFile lists every POLICYPEEK_ variable with its default, grouped by
// config section; sensitive values are left empty
func writeEnvFile(cfg *config.Config) error {
	cp := envparse.Config{
		FieldTagName: configTag,
		Skipper:      skipper,
	}

	vars, err := cp.GatherEnvInfo(varPrefix, cfg)
	if err != nil {
		return fmt.Errorf("gathering env vars: %w", err)
	}

	var (
		b       strings.Builder
		section string
	)

	for _, v := range vars {
		if s := envSection(v.Key); s != section {
			if section != "" {
				b.WriteString("\n")
			}

			section = s
			fmt.Fprintf(&b, "# %s\n", strings.ToLower(section))
		}

		if v.Tags.Get(sensitiveTag) == "true" {
			fmt.Fprintf(&b, "# sensitive\n%s=\"\"\n", v.Key)
			continue
		}

		value := v.Tags.Get(defaultTag)
		if v.Type == reflect.TypeOf(time.Duration(0)) {
			if d, err := time.ParseDuration(value); err == nil {
				value = d.String()
			}
		}

		fmt.Fprintf(&b, "%s=%q\n", v.Key, value)
	}

	return writeFile(envConfigPath, []byte(b.String()))
}

// envSection returns SERVER for POLICYPEEK_SERVER_LISTEN
func envSection(key string) string {
	parts := strings.SplitN(strings.TrimPrefix(key, varPrefix+"_"), "_", 2) //nolint:mnd
	return parts[0]
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, ownerReadWrite); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	fmt.Printf("wrote %s\n", path)

	return nil
}
