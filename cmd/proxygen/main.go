// cmd/proxygen/main.go
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// defaultCoreImport is the import path of the runtime the generated code
// forwards through.
const defaultCoreImport = "github.com/sghaida/proxi/proxy"

// Spec is the full input schema consumed by the generator.
type Spec struct {
	// Type is the wrapped struct type in the owner package.
	Type string `json:"type" yaml:"type"`

	// ProxyName names the generated wrapper. Defaults to <Type>Proxy.
	ProxyName string `json:"proxyName" yaml:"proxyName"`

	// Package is the package clause of the generated file. Defaults to the
	// owner package's name.
	Package string `json:"package" yaml:"package"`

	// Source is the directory holding the owner package. Defaults to the
	// output file's directory.
	Source string `json:"source" yaml:"source"`

	// Skip lists exported members to omit from the typed surface.
	Skip []string `json:"skip" yaml:"skip"`
}

// options are generator-wide settings loaded via viper, separate from the
// per-type spec.
type options struct {
	CoreImport string
	HeaderNote string
}

// run wires the cobra command tree and executes it. It exists separately
// from main to allow unit testing without os.Exit.
func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// newRootCmd builds the proxygen command tree.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "proxygen",
		Short:         "generate typed lazy-loading proxies",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	var (
		specPath   string
		outPath    string
		configPath string
	)

	generate := &cobra.Command{
		Use:   "generate",
		Short: "generate a typed proxy from a spec file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(specPath) == "" || strings.TrimSpace(outPath) == "" {
				return errors.New("usage: proxygen generate --spec <file.proxygen.yaml> --out <file.gen.go>")
			}

			opts, err := loadOptions(configPath)
			if err != nil {
				return err
			}

			spec, err := loadSpec(specPath)
			if err != nil {
				return err
			}
			validateSpec(&spec)

			return runGenerate(spec, opts, filepath.Clean(outPath))
		},
	}
	generate.Flags().StringVar(&specPath, "spec", "", "path to the *.proxygen.yaml|json spec")
	generate.Flags().StringVar(&outPath, "out", "", "output .gen.go file path")
	generate.Flags().StringVar(&configPath, "config", "", "optional generator config file")

	root.AddCommand(generate)
	return root
}

// loadOptions reads generator settings.
//
// An explicit --config file must exist; otherwise a .proxygen.yaml in the
// working directory is picked up when present and silently skipped when not.
func loadOptions(configPath string) (options, error) {
	v := viper.New()
	v.SetDefault("core_import", defaultCoreImport)
	v.SetDefault("header_note", "")

	if strings.TrimSpace(configPath) != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return options{}, err
		}
	} else {
		v.SetConfigName(".proxygen")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		var notFound viper.ConfigFileNotFoundError
		if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
			return options{}, err
		}
	}

	opts := options{
		CoreImport: strings.TrimSpace(v.GetString("core_import")),
		HeaderNote: strings.TrimSpace(v.GetString("header_note")),
	}
	if opts.CoreImport == "" {
		opts.CoreImport = defaultCoreImport
	}
	return opts, nil
}

// loadSpec reads and decodes a spec file, YAML or JSON by extension.
func loadSpec(path string) (Spec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Spec{}, err
	}

	var spec Spec
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &spec)
	case ".json":
		err = json.Unmarshal(raw, &spec)
	default:
		err = fmt.Errorf("proxygen: unsupported spec extension %q (want .yaml, .yml or .json)", filepath.Ext(path))
	}
	if err != nil {
		return Spec{}, err
	}
	return spec, nil
}

// validateSpec validates semantic correctness of the input specification and
// fills derivable defaults.
func validateSpec(spec *Spec) {
	if strings.TrimSpace(spec.Type) == "" {
		panic(fmt.Errorf("spec missing required field: type"))
	}
	if strings.TrimSpace(spec.ProxyName) == "" {
		spec.ProxyName = spec.Type + "Proxy"
	}

	seen := make(map[string]struct{}, len(spec.Skip))
	for _, name := range spec.Skip {
		if strings.TrimSpace(name) == "" {
			panic(fmt.Errorf("spec skip entries must be non-empty member names"))
		}
		if _, ok := seen[name]; ok {
			panic(fmt.Errorf("duplicate skip entry: %s", name))
		}
		seen[name] = struct{}{}
	}
}

// must panics if err is non-nil.
func must(err error) {
	if err != nil {
		panic(err)
	}
}
