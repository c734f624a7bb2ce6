package config

import (
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"

	"github.com/jennyl617/fictrac-phidget-aout-demo/pkg/aout"
	"github.com/jennyl617/fictrac-phidget-aout-demo/pkg/driver"
	"github.com/jennyl617/fictrac-phidget-aout-demo/pkg/pipeline"
	"github.com/jennyl617/fictrac-phidget-aout-demo/pkg/transport"
)

// Config is the whole process configuration.  The pipeline parameters sit at
// the top level of the file; device, transport and status settings are
// nested.
type Config struct {
	Pipeline  pipeline.Config  `yaml:",inline"`
	Output    aout.Config      `yaml:"output"`
	Transport transport.Config `yaml:"transport"`
	Status    driver.Config    `yaml:"status"`
}

func Default() Config {
	return Config{
		Pipeline:  pipeline.DefaultConfig(),
		Output:    aout.DefaultConfig(),
		Transport: transport.DefaultConfig(),
		Status:    driver.DefaultConfig(),
	}
}

func (c Config) Validate() error {
	if err := c.Pipeline.Validate(); err != nil {
		return err
	}
	if err := c.Output.Validate(); err != nil {
		return err
	}
	return c.Transport.Validate()
}

// Load reads a YAML file over the defaults.  Keys not present in the file
// keep their default value; unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "failed to read config")
	}
	if err := Parse(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "failed to parse %s", path)
	}
	return cfg, nil
}

func Parse(data []byte, cfg *Config) error {
	return yaml.UnmarshalStrict(data, cfg)
}

// WriteInUse writes the effective config next to the file it was loaded from,
// as <name>-in-use.yaml, and returns the path written.
func WriteInUse(cfg Config, loadedFrom string) (string, error) {
	cfgBytes, err := yaml.Marshal(&cfg)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal config")
	}
	ext := filepath.Ext(loadedFrom)
	path := strings.TrimSuffix(loadedFrom, ext) + "-in-use" + ext
	if ext == "" {
		path += ".yaml"
	}
	if err := ioutil.WriteFile(path, cfgBytes, 0666); err != nil {
		return "", errors.Wrap(err, "failed to write in-use config")
	}
	fmt.Println("Wrote config in use to", path)
	return path, nil
}
