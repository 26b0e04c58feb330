// Copyright 2026, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package main

import (
	"io"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/dsnet/golib/strconv"
	"github.com/pkg/errors"

	"github.com/dsnet/saalign/alphabet"
)

const (
	formatSAM    = "sam"
	formatSimple = "simple"
)

// Config holds the settings of a run.
// Values are read from an optional TOML file and overridden by flags.
type Config struct {
	Alphabet   string `toml:"alphabet"`
	FoldCase   bool   `toml:"fold_case"`
	Workers    int    `toml:"workers"`
	Format     string `toml:"format"`
	Header     bool   `toml:"header"`
	LogLevel   string `toml:"log_level"`
	Timestamps bool   `toml:"timestamps"`
	BufferSize string `toml:"buffer_size"`
}

func defaultConfig() Config {
	return Config{
		Alphabet:   "acgt",
		Format:     formatSAM,
		Header:     true,
		LogLevel:   "info",
		BufferSize: "64Ki",
	}
}

// loadConfig reads the TOML file at path over the defaults.
// An empty path yields the defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, errors.Wrapf(err, "reading config %s", path)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		return cfg, errors.Errorf("config %s: unknown key %q", path, keys[0].String())
	}
	return cfg, cfg.validate()
}

// flagOverrides holds the flags that take precedence over the config file.
// Zero values and nil switches leave the config unchanged.
type flagOverrides struct {
	alphabet   string
	foldCase   *bool
	workers    int
	format     string
	header     *bool
	logLevel   string
	timestamps *bool
	bufferSize string
}

func (c *Config) apply(f flagOverrides) error {
	if f.alphabet != "" {
		c.Alphabet = f.alphabet
	}
	if f.foldCase != nil {
		c.FoldCase = *f.foldCase
	}
	if f.workers != 0 {
		c.Workers = f.workers
	}
	if f.format != "" {
		c.Format = f.format
	}
	if f.header != nil {
		c.Header = *f.header
	}
	if f.logLevel != "" {
		c.LogLevel = f.logLevel
	}
	if f.timestamps != nil {
		c.Timestamps = *f.timestamps
	}
	if f.bufferSize != "" {
		c.BufferSize = f.bufferSize
	}
	return c.validate()
}

func (c Config) validate() error {
	if _, err := c.alphabet(); err != nil {
		return err
	}
	if c.Workers < 0 {
		return errors.Errorf("invalid workers: %d", c.Workers)
	}
	switch c.Format {
	case formatSAM, formatSimple:
	default:
		return errors.Errorf("invalid format: %q", c.Format)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrapf(err, "invalid log level %q", c.LogLevel)
	}
	if _, err := c.bufferSize(); err != nil {
		return err
	}
	return nil
}

func (c Config) alphabet() (*alphabet.Alphabet, error) {
	var opts []alphabet.Option
	if c.FoldCase {
		opts = append(opts, alphabet.FoldCase())
	}
	a, err := alphabet.New(c.Alphabet, opts...)
	return a, errors.Wrapf(err, "invalid alphabet %q", c.Alphabet)
}

func (c Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// bufferSize parses sizes such as "65536", "64Ki", or "1M".
func (c Config) bufferSize() (int, error) {
	f, err := strconv.ParsePrefix(strings.TrimSpace(c.BufferSize), strconv.AutoParse)
	if err != nil || f < 1 || f > 1<<30 {
		return 0, errors.Errorf("invalid buffer size: %q", c.BufferSize)
	}
	return int(f), nil
}

func (c Config) logger(w io.Writer) *log.Logger {
	lvl, _ := log.ParseLevel(c.LogLevel)
	return log.NewWithOptions(w, log.Options{
		Prefix:          "saalign",
		Level:           lvl,
		ReportTimestamp: c.Timestamps,
	})
}
