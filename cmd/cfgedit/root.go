package main

import (
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/kevinwang15/cfgedit"
	"github.com/kevinwang15/cfgedit/internal/locate"
	"github.com/kevinwang15/cfgedit/internal/settings"
)

var Version = "dev" // overridden by ldflags

// app holds what the commands share. Fields set before Execute are kept,
// which is how tests inject a locator or file system.
type app struct {
	locator  cfgedit.Locator
	fs       cfgedit.FileSystem
	settings *settings.Settings
	log      hclog.Logger
	store    *cfgedit.Store
}

func newRootCommand(a *app) *cobra.Command {
	var (
		debug      bool
		configPath string
	)
	root := &cobra.Command{
		Use:   "cfgedit",
		Short: "Configure the code assistant, terminal agent and editor",
		Long: `cfgedit writes API keys and provider settings into the configuration files
of the code assistant CLI, the terminal agent and the editor.

Keys it does not manage are preserved, the editor settings file is patched in
place so comments survive, and every file gets a one-time backup before its
first change.`,
		Version:       Version,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.ErrOrStderr(), configPath, debug)
		},
	}

	root.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&configPath, "config", "", "Settings file (default is $XDG_CONFIG_HOME/cfgedit/config.yaml)")

	root.AddCommand(newApplyCommand(a))
	root.AddCommand(newApplyAdvancedCommand(a))
	root.AddCommand(newShowCommand(a))
	root.AddCommand(newDeleteCommand(a))
	root.AddCommand(newPathsCommand(a))
	return root
}

func (a *app) setup(logOut io.Writer, configPath string, debug bool) error {
	if a.settings == nil {
		s, err := settings.Load(configPath)
		if err != nil {
			return err
		}
		a.settings = s
	}
	if a.log == nil {
		a.log = newLogger(a.settings.LogLevel, debug, logOut)
	}
	if a.locator == nil {
		a.locator = locate.Default()
	}
	opts := []cfgedit.Option{
		cfgedit.WithLogger(a.log),
		cfgedit.WithBackup(a.settings.BackupEnabled()),
		cfgedit.WithBackupSuffix(a.settings.Suffix),
	}
	if a.fs != nil {
		opts = append(opts, cfgedit.WithFileSystem(a.fs))
	}
	a.store = cfgedit.NewStore(a.locator, opts...)
	return nil
}

func newLogger(level string, debug bool, w io.Writer) hclog.Logger {
	lvl := hclog.LevelFromString(level)
	if lvl == hclog.NoLevel {
		lvl = hclog.Info
	}
	if debug {
		lvl = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "cfgedit",
		Level:  lvl,
		Output: w,
	})
}

func parseKinds(args []string) ([]cfgedit.Kind, error) {
	out := make([]cfgedit.Kind, 0, len(args))
	for _, arg := range args {
		k, err := cfgedit.ParseKind(arg)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}

// maskAPIKey keeps the first and last four characters of longer keys.
func maskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "***"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func kindList() string {
	s := ""
	for i, k := range cfgedit.Kinds() {
		if i > 0 {
			s += ", "
		}
		s += string(k)
	}
	return s
}

func printChange(w io.Writer, c cfgedit.Change) {
	if !c.Changed() {
		fmt.Fprintf(w, "%s: %s is up to date\n", c.Kind, c.Path)
		return
	}
	fmt.Fprintf(w, "%s: would write %s\n", c.Kind, c.Path)
	fmt.Fprint(w, c.Diff)
}
