// Copyright 2026, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Saalign reports every exact occurrence of short sequencing reads within a
// reference genome.
//
// Example usage:
//	$ saalign index genome.fa.gz genome.saix
//	$ saalign align --out reads.sam genome.saix reads.fq.gz
//	$ saalign stats genome.saix
//
// The reference given to align and stats may be a FASTA file or an index
// file. Inputs may be compressed with gzip, zstd, xz, or bzip2, and outputs
// are compressed according to their file extension.
package main

import (
	"context"
	"os"
	"os/signal"
	"strings"

	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	version = "head" // set by command-line on release builds
	app     = kingpin.New("saalign", "Exact-match short read aligner built on suffix arrays")

	alignCmd = app.Command("align", "Report every exact occurrence of each read in a reference genome")
	indexCmd = app.Command("index", "Build the suffix arrays of a genome and save them to an index file")
	statsCmd = app.Command("stats", "Describe the references of a genome or index file")
)

var appArgs = struct {
	config     *string
	alphabet   *string
	foldCase   *switchFlag
	workers    *int
	logLevel   *string
	timestamps *switchFlag
}{
	app.Flag("config", "TOML file of default settings").Short('c').ExistingFile(),
	app.Flag("alphabet", "Letters of the sequence alphabet, in sort order (default: acgt)").String(),
	newSwitch(app.Flag("fold-case", "Accept both cases of every letter")),
	app.Flag("workers", "Number of references indexed concurrently (default: all CPUs)").Short('j').Int(),
	app.Flag("log-level", "Minimum level of logged messages (debug, info, warn, error)").String(),
	newSwitch(app.Flag("timestamps", "Prefix all log messages with timestamps")),
}

var alignArgs = struct {
	genome     *string
	reads      *string
	format     *string
	header     *switchFlag
	out        *string
	bufferSize *string
}{
	alignCmd.Arg("genome", "FASTA or index file of the reference genome").Required().String(),
	alignCmd.Arg("reads", "FASTQ file of reads, or - for standard input").Required().String(),
	alignCmd.Flag("format", "Output format (sam, simple)").Enum(formatSAM, formatSimple),
	newSwitch(alignCmd.Flag("header", "Write the SAM header; --no-header omits it")),
	alignCmd.Flag("out", "File to write records to, or - for standard output").Short('o').Default("-").String(),
	alignCmd.Flag("buffer-size", "Size of the output buffer, such as 64Ki or 1M").String(),
}

var indexArgs = struct {
	genome *string
	out    *string
}{
	indexCmd.Arg("genome", "FASTA file of the reference genome").Required().String(),
	indexCmd.Arg("out", "Index file to write").Required().String(),
}

var statsArgs = struct {
	genome *string
}{
	statsCmd.Arg("genome", "FASTA or index file of the reference genome").Required().String(),
}

// switchFlag is a boolean flag that is only applied when given, either as
// --name or as --no-name.
type switchFlag struct {
	val, set bool
}

func newSwitch(fc *kingpin.FlagClause) *switchFlag {
	sf := new(switchFlag)
	fc.Action(func(*kingpin.ParseContext) error {
		sf.set = true
		return nil
	}).BoolVar(&sf.val)
	return sf
}

func (sf *switchFlag) value() *bool {
	if !sf.set {
		return nil
	}
	v := sf.val
	return &v
}

func main() {
	app.Version(version)
	app.HelpFlag.Short('h')
	cmd := kingpin.MustParse(app.Parse(os.Args[1:]))

	cfg, err := loadConfig(*appArgs.config)
	if err == nil {
		err = cfg.apply(flagOverrides{
			alphabet:   *appArgs.alphabet,
			foldCase:   appArgs.foldCase.value(),
			workers:    *appArgs.workers,
			format:     *alignArgs.format,
			header:     alignArgs.header.value(),
			logLevel:   *appArgs.logLevel,
			timestamps: appArgs.timestamps.value(),
			bufferSize: *alignArgs.bufferSize,
		})
	}
	app.FatalIfError(err, "configuration")
	lg := cfg.logger(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	switch cmd {
	case alignCmd.FullCommand():
		_, err = runAlign(ctx, cfg, lg, *alignArgs.genome, *alignArgs.reads, *alignArgs.out, strings.Join(os.Args, " "))
	case indexCmd.FullCommand():
		err = runIndex(ctx, cfg, lg, *indexArgs.genome, *indexArgs.out)
	case statsCmd.FullCommand():
		err = runStats(ctx, cfg, lg, *statsArgs.genome, os.Stdout)
	}
	stop()
	if err != nil {
		lg.Error(cmd+" failed", "err", err)
		os.Exit(1)
	}
}
