/*
Copyright © 2021 the Hypotheticube authors.
This file is part of Hypotheticube.

Hypotheticube is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Hypotheticube is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Hypotheticube.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package hcutil holds the command-line interface to Hypotheticube.
package hcutil

import (
	"fmt"
	"strings"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/hypotheticube"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

type option struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

var options []option

func init() {
	// Options are the configuration options available to Hypotheticube.
	options = []option{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "log-level",
			usage: `
              log-level sets the minimum severity of log messages: one of
              debug, info, warning or error.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "metrics-addr",
			usage: `
              metrics-addr is the address, for example ":9090", at which
              Prometheus metrics are served while the command runs. Metrics
              are not served if it is empty.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "anonymous",
			usage: `
              anonymous specifies that cloud buckets are to be accessed
              without credentials.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "region",
			usage: `
              region is the AWS region of S3 buckets. The default is
              $AWS_REGION, or us-east-1 if that is not set.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "endpoint",
			usage: `
              endpoint overrides the S3 endpoint, for use with S3
              compatible storage services.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "tempdir",
			usage: `
              tempdir is the directory where downloaded files are kept
              while they are in use. The default is the system temporary
              directory.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "retries",
			usage: `
              retries is the number of times a failed download is retried.
              Files that do not exist are not retried.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "template",
			usage: `
              template is the URI of the file whose metadata describes the
              files to be assembled.`,
			shorthand:  "t",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{assembleCmd.Flags()},
		},
		{
			name: "variable",
			usage: `
              variable is the name of the variable to be assembled.`,
			shorthand:  "v",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{assembleCmd.Flags()},
		},
		{
			name: "table",
			usage: `
              table is the path to a CSV file with a "uri" column naming
              the files to be assembled and a column for each template
              coordinate to be replaced.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{assembleCmd.Flags()},
		},
		{
			name: "manifest",
			usage: `
              manifest is the path to a TOML manifest giving the template,
              variable, coordinate columns and files to be assembled. It
              replaces the template, variable and table options.`,
			shorthand:  "m",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{assembleCmd.Flags()},
		},
		{
			name: "output",
			usage: `
              output is the path of a NetCDF file to write the assembled
              cube to. Nothing is written if it is empty.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{assembleCmd.Flags()},
		},
		{
			name: "validate",
			usage: `
              validate specifies that every assembled file is to be checked
              and any failures reported.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{assembleCmd.Flags()},
		},
		{
			name: "workers",
			usage: `
              workers is the number of files checked at a time when
              validating.`,
			defaultVal: 4,
			flagsets:   []*pflag.FlagSet{assembleCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Configuration environment variables look like HYPOTHETICUBE_LOG_LEVEL.
	Cfg.SetEnvPrefix("HYPOTHETICUBE")
	Cfg.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // The flag is created once and shared.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch v := option.defaultVal.(type) {
			case string:
				set.StringP(option.name, option.shorthand, v, option.usage)
			case bool:
				set.BoolP(option.name, option.shorthand, v, option.usage)
			case int:
				set.IntP(option.name, option.shorthand, v, option.usage)
			default:
				panic(fmt.Errorf("invalid default type %T for option %s", v, option.name))
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}

	Root.AddCommand(versionCmd)
	Root.AddCommand(assembleCmd)
	Root.AddCommand(resolveCmd)
}

// setConfig reads in the configuration file, if there is one, and sets up
// logging and metrics.
func setConfig(cmd *cobra.Command) error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("hypotheticube: problem reading configuration file: %v", err)
		}
	}
	level, err := logrus.ParseLevel(Cfg.GetString("log-level"))
	if err != nil {
		return fmt.Errorf("hypotheticube: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cmd != nil {
		logrus.SetOutput(cmd.ErrOrStderr())
	}
	return serveMetrics(Cfg.GetString("metrics-addr"))
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "hypotheticube",
	Short: "Assemble lazily loaded data cubes from many NetCDF files.",
	Long: `Hypotheticube assembles a single data cube from many NetCDF files,
such as the forecast runs of a weather model, without reading them. A template
file provides the metadata for all of the files, and a replacement table gives
the coordinate values that differ between them. Files can be local or stored
on web servers or in S3 or Google Cloud Storage buckets, and are only fetched
when their data are needed.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'HYPOTHETICUBE_VAR' where
'VAR' is the name of the variable to be set, in upper case with dashes
replaced by underscores.`,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return setConfig(cmd) },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of Hypotheticube.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "Hypotheticube v%s\n", hypotheticube.Version)
	},
	DisableAutoGenTag: true,
}

var assembleCmd = &cobra.Command{
	Use:   "assemble",
	Short: "Assemble a cube",
	Long: `assemble builds a cube from the files named in a replacement table or
manifest, prints a summary of it and, if requested, validates the files and
writes the cube to a NetCDF file. Files that are missing or do not match the
template are reported when validating and written as fill values.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		job, err := assembleJob(Cfg)
		if err != nil {
			return err
		}
		return Assemble(cmd.Context(), cmd.OutOrStdout(), job)
	},
	DisableAutoGenTag: true,
}

var resolveCmd = &cobra.Command{
	Use:   "resolve URI...",
	Short: "Download files",
	Long: `resolve makes local copies of the files at the given URIs and prints
their paths. Downloaded copies are kept in the temporary directory; local
files are printed unchanged.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return Resolve(cmd.Context(), cmd.OutOrStdout(), args, storageOptions(Cfg))
	},
	DisableAutoGenTag: true,
}

// retries returns the configured number of download retries.
func retries(cfg *viper.Viper) uint64 {
	return cast.ToUint64(cfg.Get("retries"))
}
