package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/marcus/folio/internal/models"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	version  string
	baseDir  string
	logLevel logLevelValue
)

// SetVersion sets the version string
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

var rootCmd = &cobra.Command{
	Use:   "folio [file]",
	Short: "Terminal markdown editor with contextual toolbars",
	Long: `folio - A terminal editor for markdown documents.

Selecting a table or an image brings up a floating toolbar with the actions
that apply to it. Documents are plain markdown files; revisions and uploaded
images are kept in .folio/ next to them.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runEdit,
}

// Execute runs the root command
func Execute() {
	if err := checkUnknownCommand(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initBaseDir)

	rootCmd.AddGroup(
		&cobra.Group{ID: "docs", Title: "Documents:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)
	rootCmd.PersistentFlags().Var(&logLevel, "log-level", "log level (debug, info, warn, error); overrides config")
}

func initBaseDir() {
	var err error
	baseDir, err = os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot determine working directory: %v\n", err)
		os.Exit(1)
	}
}

// getBaseDir returns the base directory for the project
func getBaseDir() string {
	return baseDir
}

// checkUnknownCommand rejects a bare word that is neither a subcommand nor a
// markdown file, so a typo like "folio histroy" does not open a new document.
func checkUnknownCommand(args []string) error {
	name := firstNonFlagArg(args)
	if name == "" || isMarkdownPath(name) {
		return nil
	}
	if c, _, err := rootCmd.Find([]string{name}); err == nil && c != rootCmd {
		return nil
	}
	if _, err := os.Stat(name); err == nil {
		return nil
	}
	msg := fmt.Sprintf("unknown command or file %q", name)
	if suggestions := rootCmd.SuggestionsFor(name); len(suggestions) > 0 {
		msg += "\n\nDid you mean this?\n\t" + strings.Join(suggestions, "\n\t")
	}
	return fmt.Errorf("%s", msg)
}

// firstNonFlagArg returns the first argument that is not a flag.
func firstNonFlagArg(args []string) string {
	for _, a := range args {
		if !strings.HasPrefix(a, "-") {
			return a
		}
	}
	return ""
}

func isMarkdownPath(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".md") || strings.HasSuffix(lower, ".markdown")
}

// logLevelValue is a pflag.Value accepting only known levels.
type logLevelValue struct {
	level models.LogLevel
}

var _ pflag.Value = (*logLevelValue)(nil)

func (v *logLevelValue) String() string { return string(v.level) }

func (v *logLevelValue) Set(s string) error {
	l := models.LogLevel(strings.ToLower(strings.TrimSpace(s)))
	if !models.IsValidLogLevel(l) {
		return fmt.Errorf("invalid log level %q", s)
	}
	v.level = l
	return nil
}

func (v *logLevelValue) Type() string { return "level" }
