//go:build linux

package main

import (
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/ja7ad/cpupower/pkg/cpu"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// globals are the persistent flags shared by every subcommand.
type globals struct {
	logLevel  string
	logFormat string
	sysfsRoot string
	format    string
}

func (g *globals) sysfs() cpu.Sysfs { return cpu.Sysfs{Root: g.sysfsRoot} }

func addGlobalFlags(fs *pflag.FlagSet, g *globals, env envConfig) {
	fs.StringVar(&g.logLevel, "log-level", env.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&g.logFormat, "log-format", env.LogFormat, "log format (text, json)")
	fs.StringVar(&g.sysfsRoot, "sysfs-root", env.SysfsRoot, "root directory of the sysfs tree")
	fs.StringVarP(&g.format, "format", "o", env.Format, fmt.Sprintf("output format %v", formats))
}

func main() {
	env, err := loadEnv()
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}

	if err := newRootCmd(env).Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func newRootCmd(env envConfig) *cobra.Command {
	var g globals

	root := &cobra.Command{
		Use:   "cpupower",
		Short: "CPU topology, frequency, SMT, temperature and RAPL energy tool",
		Long: `The cpupower tool reads and tunes Linux CPU state through sysfs and
samples RAPL energy counters through the msr driver.

Every flag default can be preset with a CPUPOWER_* environment variable
or a .env file in the working directory.

Examples:
  cpupower info
  cpupower freq set 0 --max 2.4GHz
  cpupower ht off
  sudo cpupower rapl -s 20 -i 500ms --format csv`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(formats, g.format) {
				return fmt.Errorf("format must be one of %v, got %q", formats, g.format)
			}
			logger, err := newLogger(g.logLevel, g.logFormat)
			if err != nil {
				return err
			}
			slog.SetDefault(logger)
			return nil
		},
	}
	addGlobalFlags(root.PersistentFlags(), &g, env)

	root.AddCommand(
		newInfoCmd(&g),
		newFreqCmd(&g),
		newHTCmd(&g),
		newTempCmd(&g),
		newRaplCmd(&g, env),
	)
	return root
}
