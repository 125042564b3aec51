package cli

import (
	"bytes"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ezmatch/ezmatch/internal/tui"
	"github.com/ezmatch/ezmatch/internal/version"
	"github.com/ezmatch/ezmatch/pkg/config"
	"github.com/ezmatch/ezmatch/pkg/discovery"
	"github.com/ezmatch/ezmatch/pkg/display"
	"github.com/ezmatch/ezmatch/pkg/editor"
	"github.com/ezmatch/ezmatch/pkg/errors"
	"github.com/ezmatch/ezmatch/pkg/logging"
	"github.com/ezmatch/ezmatch/pkg/matches"
	"github.com/ezmatch/ezmatch/pkg/paths"
	"github.com/ezmatch/ezmatch/pkg/session"
	"github.com/ezmatch/ezmatch/pkg/yamldoc"
)

// initTemplate is the content of a freshly created snippet file.
const initTemplate = `matches:
  - trigger: ":test"
    replace: "result"
`

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var (
		verbosity int
		dir       string
		plain     bool
	)

	rootCmd := &cobra.Command{
		Use:   "ezmatch",
		Short: MsgRootShort,
		Long: `ezmatch edits espanso match files without destroying them: comments,
key order, quoting and block styles survive every save. Entries that
carry logic beyond a plain trigger/replace pair are listed but locked,
so scripted snippets cannot be mangled from here.`,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			display.Init()
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().StringVar(&dir, "dir", "", FlagDirDesc)
	rootCmd.PersistentFlags().BoolVar(&plain, "plain", false, FlagPlainDesc)

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newFilesCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newAddCmd())
	rootCmd.AddCommand(newSetCmd())
	rootCmd.AddCommand(newRmCmd())
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newRmFileCmd())
	rootCmd.AddCommand(newFmtCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newEditCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newGuideCmd())

	return rootCmd
}

// runtime bundles the per-invocation settings every command needs:
// effective config, resolved match directory and session options.
type runtime struct {
	cfg      *config.Config
	matchDir string
	dirErr   error
	opts     session.Options
}

func loadRuntime(cmd *cobra.Command) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Root().PersistentFlags()
	dirFlag, _ := flags.GetString("dir")
	plainFlag, _ := flags.GetBool("plain")

	explicit := dirFlag
	if explicit == "" {
		explicit = cfg.MatchDir
	}

	rt := &runtime{cfg: cfg}
	rt.matchDir, rt.dirErr = paths.MatchDir(explicit)

	mode := yamldoc.ModePreserving
	if plainFlag || cfg.Plain {
		mode = yamldoc.ModePlain
	}
	rt.opts = session.Options{Mode: mode, BenignFields: cfg.Classifier.BenignFields}

	return rt, nil
}

// resolveFile turns a command-line file argument into a path. A direct
// path (anything that stats as a file) wins; otherwise the argument is
// matched against the display names of the match directory scan, so
// `ezmatch list base` finds base.yml without the extension.
func (rt *runtime) resolveFile(arg string) (string, error) {
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		return arg, nil
	}

	if rt.dirErr != nil {
		return "", rt.dirErr
	}

	files, err := discovery.Scan(rt.matchDir, rt.opts.BenignFields)
	if err != nil {
		return "", err
	}

	want := strings.TrimSuffix(strings.TrimSuffix(arg, ".yml"), ".yaml")
	for _, f := range files {
		if f.DisplayName == want {
			return f.Path, nil
		}
	}
	return "", errors.Newf(errors.ErrFileNotFound, "no snippet file %q in %s", arg, rt.matchDir)
}

func (rt *runtime) openSession(arg string) (*session.Session, error) {
	path, err := rt.resolveFile(arg)
	if err != nil {
		return nil, err
	}

	s, err := session.Open(path, rt.opts)
	if err != nil {
		return nil, err
	}
	if s.Mode() == yamldoc.ModePlain {
		fmt.Fprint(os.Stderr, MsgPlainWarning)
	}
	return s, nil
}

// findEntry resolves a trigger text to its entry. One-shot commands
// address entries by trigger; the session-scoped ids never leave the
// process.
func findEntry(st *matches.Store, trigger string) (*matches.Entry, error) {
	for _, e := range st.List() {
		if e.Trigger == trigger {
			return e, nil
		}
	}
	return nil, errors.Newf(errors.ErrEntryNotFound, "no match with trigger %q", trigger)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("ezmatch version %s\n", version.Version)
			if version.Commit != "" {
				fmt.Printf("Commit: %s\n", version.Commit)
			}
			if version.Date != "" {
				fmt.Printf("Built:  %s\n", version.Date)
			}
		},
	}
}

func newFilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "files",
		Short: MsgFilesShort,
		Long: `Files scans the espanso match directory and lists every snippet file
with its entry counts. Espanso bookkeeping files (_manifest.yml,
_pkgsource.yml) and the temp-ez scratch directory are skipped; a
package.yml is shown under its package directory name.`,
		Example: `  # List files in the configured match directory
  ezmatch files

  # List files somewhere else
  ezmatch files --dir ~/snippets`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(cmd)
			if err != nil {
				return err
			}
			if rt.dirErr != nil {
				return rt.dirErr
			}

			files, err := discovery.Scan(rt.matchDir, rt.opts.BenignFields)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Println("No snippet files found.")
				return nil
			}

			out, err := display.FilesTable(files)
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <file>",
		Short: MsgListShort,
		Long: `List shows every match in one snippet file. Entries with logic beyond
a plain trigger/replace pair are marked protected; they can be viewed
here but not changed.`,
		Example: `  # By display name
  ezmatch list base

  # By path
  ezmatch list ~/snippets/base.yml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(cmd)
			if err != nil {
				return err
			}
			s, err := rt.openSession(args[0])
			if err != nil {
				return err
			}

			entries := s.Store().List()
			if len(entries) == 0 {
				fmt.Println("No matches.")
				return nil
			}

			out, err := display.EntriesTable(entries)
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		},
	}
}

func newAddCmd() *cobra.Command {
	var at int

	cmd := &cobra.Command{
		Use:   "add <file> <trigger> <replace>",
		Short: MsgAddShort,
		Long: `Add appends a trigger/replace match to the file and saves it. The
trigger must not collide with an existing editable trigger in the same
file. Use --at to insert at a specific position instead of appending.`,
		Example: `  ezmatch add base ":sig" "Best regards,\nAda"

  # Insert as the first match
  ezmatch add base ":brb" "be right back" --at 0`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(cmd)
			if err != nil {
				return err
			}
			s, err := rt.openSession(args[0])
			if err != nil {
				return err
			}

			if _, err := s.Editor().Add(args[1], args[2], at); err != nil {
				return err
			}
			if err := s.Persist(); err != nil {
				return err
			}

			fmt.Printf(MsgAdded, args[1], s.Path())
			return nil
		},
	}

	cmd.Flags().IntVar(&at, "at", editor.Append, FlagAtDesc)
	return cmd
}

func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <file> <trigger> <field> <value>",
		Short: MsgSetShort,
		Long: `Set rewrites one field of an existing match and saves the file. The
field is "trigger", "replace", or another scalar field present on the
entry. Protected entries are refused.`,
		Example: `  ezmatch set base ":sig" replace "Kind regards,\nAda"

  # Rename a trigger
  ezmatch set base ":sig" trigger ":signature"`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(cmd)
			if err != nil {
				return err
			}
			s, err := rt.openSession(args[0])
			if err != nil {
				return err
			}

			entry, err := findEntry(s.Store(), args[1])
			if err != nil {
				return err
			}
			if _, err := s.Editor().Update(entry.ID, args[2], args[3]); err != nil {
				return err
			}
			if err := s.Persist(); err != nil {
				return err
			}

			fmt.Printf(MsgUpdated, entry.Trigger, s.Path())
			return nil
		},
	}
}

func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <file> <trigger>",
		Short: MsgRmShort,
		Long: `Rm deletes one match from the file and saves it. Protected entries are
refused. Comments around the deleted match stay in place; only a comment
attached to the match itself goes with it.`,
		Example: `  ezmatch rm base ":brb"`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(cmd)
			if err != nil {
				return err
			}
			s, err := rt.openSession(args[0])
			if err != nil {
				return err
			}

			entry, err := findEntry(s.Store(), args[1])
			if err != nil {
				return err
			}
			if err := s.Editor().Delete(entry.ID); err != nil {
				return err
			}
			if err := s.Persist(); err != nil {
				return err
			}

			fmt.Printf(MsgDeleted, entry.Trigger, s.Path())
			return nil
		},
	}
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init <name>",
		Short: MsgInitShort,
		Long: `Init creates a snippet file in the match directory with one template
match, ready for espanso to pick up. Existing files are never
overwritten.`,
		Example: `  ezmatch init work      # creates work.yml
  ezmatch init notes.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(cmd)
			if err != nil {
				return err
			}
			if rt.dirErr != nil {
				return rt.dirErr
			}

			name := args[0]
			if filepath.Ext(name) == "" {
				name += ".yml"
			}
			path := filepath.Join(rt.matchDir, name)

			if _, err := os.Stat(path); err == nil {
				return errors.Newf(errors.ErrFileExists, "%s already exists", path)
			}
			if err := os.WriteFile(path, []byte(initTemplate), 0644); err != nil {
				return errors.Wrapf(err, errors.ErrFileCreate, "failed to create %s", path)
			}

			fmt.Printf(MsgFileCreated, path)
			return nil
		},
	}
}

func newRmFileCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "rm-file <file>",
		Short: MsgRmFileShort,
		Long: `Rm-file deletes a snippet file from the match directory. This is
irreversible, so it refuses to act without --force.`,
		Example: `  ezmatch rm-file old-snippets --force`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(cmd)
			if err != nil {
				return err
			}
			path, err := rt.resolveFile(args[0])
			if err != nil {
				return err
			}

			if !force {
				return errors.Newf(errors.ErrInvalidInput, "refusing to delete %s without --force", path)
			}
			if err := os.Remove(path); err != nil {
				return errors.Wrapf(err, errors.ErrFileWrite, "failed to delete %s", path)
			}

			fmt.Printf(MsgFileDeleted, path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, FlagForceDesc)
	return cmd
}

func newFmtCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "fmt <file>",
		Short: MsgFmtShort,
		Long: `Fmt re-serializes the file through the comment-preserving backend and
compares the result against what is on disk. A stable file is left
untouched. An unstable one (odd indentation the emitter normalizes, for
example) is rewritten once so that later edits produce minimal diffs;
with --check it is only reported.`,
		Example: `  ezmatch fmt base
  ezmatch fmt base --check`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(cmd)
			if err != nil {
				return err
			}
			path, err := rt.resolveFile(args[0])
			if err != nil {
				return err
			}

			raw, err := os.ReadFile(path)
			if err != nil {
				return errors.Wrapf(err, errors.ErrFileRead, "failed to read %s", path)
			}
			doc, err := yamldoc.Load(raw)
			if err != nil {
				return err
			}
			doc.MarkMutated()
			out, err := doc.Serialize()
			if err != nil {
				return err
			}

			if bytes.Equal(raw, out) {
				fmt.Printf(MsgFmtStable, path)
				return nil
			}
			if check {
				fmt.Printf(MsgFmtWouldChange, path)
				return fmt.Errorf("%s is not round-trip stable", path)
			}

			if err := session.WriteFileAtomic(path, out); err != nil {
				return err
			}
			fmt.Printf(MsgFmtNormalized, path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, FlagCheckDesc)
	return cmd
}

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <file>",
		Short: MsgWatchShort,
		Long: `Watch reports changes made to the file by other programs (espanso
package updates, editors, sync tools) until interrupted. Atomic
replace-by-rename saves are observed too.`,
		Example: `  ezmatch watch base`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(cmd)
			if err != nil {
				return err
			}
			s, err := rt.openSession(args[0])
			if err != nil {
				return err
			}

			w, err := s.Watch()
			if err != nil {
				return err
			}
			defer func() { _ = w.Close() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Printf(MsgWatching, s.Path())
			for {
				select {
				case <-ctx.Done():
					return nil
				case op, ok := <-w.Events():
					if !ok {
						return nil
					}
					fmt.Printf(MsgFileChanged, s.Path(), op)
					if op&fsnotify.Remove != 0 {
						continue
					}
					if err := s.Reload(); err != nil {
						fmt.Fprintf(os.Stderr, "reload failed: %v\n", err)
						continue
					}
					fmt.Printf("  %d matches\n", s.Store().Len())
				}
			}
		},
	}
}

func newEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <file>",
		Short: MsgEditShort,
		Long: `Edit opens the file in a full-screen editor: browse matches, add,
rename and delete them, then save. Protected entries are shown dimmed
and cannot be changed.`,
		Example: `  ezmatch edit base`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(cmd)
			if err != nil {
				return err
			}
			s, err := rt.openSession(args[0])
			if err != nil {
				return err
			}
			return tui.Run(s)
		},
	}
}

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: MsgConfigShort,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(cmd)
			if err != nil {
				return err
			}

			fmt.Printf("config file: %s\n", paths.ConfigFile())
			if rt.dirErr != nil {
				fmt.Printf("match dir:   (unresolved: %v)\n", rt.dirErr)
			} else {
				fmt.Printf("match dir:   %s\n", rt.matchDir)
			}
			fmt.Printf("mode:        %s\n", rt.opts.Mode)
			if len(rt.opts.BenignFields) > 0 {
				fmt.Printf("benign:      %s\n", strings.Join(rt.opts.BenignFields, ", "))
			}
			return nil
		},
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(paths.ConfigFile())
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "set-dir <dir>",
		Short: "Remember a match directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := paths.MatchDir(args[0])
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			cfg.MatchDir = dir
			if err := config.Save(cfg); err != nil {
				return err
			}

			fmt.Printf("match directory set to %s\n", dir)
			return nil
		},
	})

	return configCmd
}
