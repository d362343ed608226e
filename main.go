package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Filtering
	extensionList    string
	maxFileSize      int64
	respectGitignore bool
	skipHidden       bool
	maxDepth         int
	gitTracked       bool

	// Token counting
	encodingName  string
	tokenizerFile string

	// Content handling
	htmlToMD bool

	// Output
	verbose         bool
	outputFile      string
	copyToClipboard bool
	reportPath      string
	pdfOutputFile   string

	// Interactive mode
	interactiveMode bool
)

// version is the application version, set via ldflags.
var version string = "dev"

var rootCmd = &cobra.Command{
	Use:   "tokencount [PATHS...]",
	Short: "Count LLM tokens in files and directories and estimate prompt cost.",
	Long: `tokencount tokenizes source files under the given paths and reports
per-file and total token counts, together with an estimated cost at the
configured per-million-token rate.`,
	Version:      version,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE:         runScan,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Filtering
	rootCmd.Flags().StringVar(&extensionList, "extensions", "", "Comma-separated extensions to include (dots optional, e.g. py,js)")
	viper.BindPFlag("extensions", rootCmd.Flags().Lookup("extensions"))
	rootCmd.Flags().Int64Var(&maxFileSize, "max-file-size", 1048576, "Maximum file size in bytes; larger files are skipped")
	viper.BindPFlag("max_file_size", rootCmd.Flags().Lookup("max-file-size"))
	rootCmd.Flags().BoolVar(&respectGitignore, "respect-gitignore", false, "Skip paths matched by the root .gitignore")
	viper.BindPFlag("respect_gitignore", rootCmd.Flags().Lookup("respect-gitignore"))
	rootCmd.Flags().BoolVar(&skipHidden, "skip-hidden", false, "Skip dot-prefixed files and directories")
	viper.BindPFlag("skip_hidden", rootCmd.Flags().Lookup("skip-hidden"))
	rootCmd.Flags().IntVar(&maxDepth, "max-depth", 0, "Maximum directory depth to traverse (0 for no limit)")
	viper.BindPFlag("max_depth", rootCmd.Flags().Lookup("max-depth"))
	rootCmd.Flags().BoolVar(&gitTracked, "git-tracked", false, "Enumerate files tracked in the repository HEAD instead of walking")
	viper.BindPFlag("git_tracked", rootCmd.Flags().Lookup("git-tracked"))

	// Token counting
	rootCmd.Flags().StringVar(&encodingName, "encoding", defaultEncoding, "tiktoken encoding name")
	viper.BindPFlag("encoding", rootCmd.Flags().Lookup("encoding"))
	rootCmd.Flags().StringVar(&tokenizerFile, "tokenizer-file", "", "Path to a local HuggingFace tokenizer file to use instead of tiktoken")
	viper.BindPFlag("tokenizer_file", rootCmd.Flags().Lookup("tokenizer-file"))

	// Content handling
	rootCmd.Flags().BoolVar(&htmlToMD, "html-to-markdown", false, "Convert .html/.htm files to markdown before counting")
	viper.BindPFlag("html_to_markdown", rootCmd.Flags().Lookup("html-to-markdown"))

	// Output
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print a token line for every processed file")
	viper.BindPFlag("verbose", rootCmd.Flags().Lookup("verbose"))
	rootCmd.Flags().StringVarP(&outputFile, "file", "f", "", "Also save output to specified file")
	viper.BindPFlag("file", rootCmd.Flags().Lookup("file"))
	rootCmd.Flags().BoolVarP(&copyToClipboard, "clipboard", "c", false, "Also copy output to clipboard")
	viper.BindPFlag("clipboard", rootCmd.Flags().Lookup("clipboard"))
	rootCmd.Flags().StringVar(&reportPath, "report", "", "Write a machine-readable report (.json, .yaml, or .yml)")
	viper.BindPFlag("report", rootCmd.Flags().Lookup("report"))
	rootCmd.Flags().StringVar(&pdfOutputFile, "pdf", "", "Save a PDF report to the given path")
	viper.BindPFlag("pdf", rootCmd.Flags().Lookup("pdf"))

	// Interactive mode
	rootCmd.Flags().BoolVar(&interactiveMode, "interactive", false, "Pick paths with a fuzzy finder instead of arguments")
	viper.BindPFlag("interactive", rootCmd.Flags().Lookup("interactive"))

	viper.SetDefault("max_file_size", 1048576)
	viper.SetDefault("encoding", defaultEncoding)
}

// initConfig reads in the optional config file and TOKENCOUNT_* environment
// variables. Precedence is flags over environment over config file.
func initConfig() {
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "tokencount"))
	}
	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("toml")

	viper.SetEnvPrefix("TOKENCOUNT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
		fmt.Fprintf(os.Stderr, "Warning: could not read config file: %v\n", err)
	}
}

// resolveOptions folds the bound sources into the effective run options.
func resolveOptions() (options, error) {
	opts := options{
		extensions:       defaultExtensionSet(),
		maxFileSize:      viper.GetInt64("max_file_size"),
		verbose:          viper.GetBool("verbose"),
		respectGitignore: viper.GetBool("respect_gitignore"),
		skipHidden:       viper.GetBool("skip_hidden"),
		maxDepth:         viper.GetInt("max_depth"),
		gitTracked:       viper.GetBool("git_tracked"),
		encoding:         viper.GetString("encoding"),
		tokenizerFile:    viper.GetString("tokenizer_file"),
		htmlToMarkdown:   viper.GetBool("html_to_markdown"),
		outputFile:       viper.GetString("file"),
		clipboard:        viper.GetBool("clipboard"),
		reportPath:       viper.GetString("report"),
		pdfPath:          viper.GetString("pdf"),
		interactive:      viper.GetBool("interactive"),
	}

	raw := viper.GetString("extensions")
	switch {
	case raw != "":
		set := parseExtensions(raw)
		if len(set) == 0 {
			return options{}, fmt.Errorf("no usable extensions in %q", raw)
		}
		opts.extensions = set
	case rootCmd.Flags().Changed("extensions"):
		// --extensions "" asks for nothing, not for the default set.
		return options{}, errors.New("extensions list is empty")
	}
	if opts.maxFileSize <= 0 {
		return options{}, fmt.Errorf("max-file-size must be positive, got %d", opts.maxFileSize)
	}
	if opts.encoding == "" {
		opts.encoding = defaultEncoding
	}
	return opts, nil
}

// missingPathError marks a root path that does not exist so main can map it
// to a distinct exit code.
type missingPathError struct {
	path string
}

func (e *missingPathError) Error() string {
	return fmt.Sprintf("path does not exist: %s", e.path)
}

func runScan(cmd *cobra.Command, args []string) error {
	opts, err := resolveOptions()
	if err != nil {
		return err
	}

	paths := args
	if opts.interactive {
		selected, err := runInteractiveFinder(opts)
		if err != nil {
			return err
		}
		if len(selected) == 0 {
			// User aborted the picker.
			return nil
		}
		paths = selected
	}
	if len(paths) == 0 {
		return errors.New("no paths given; pass one or more files or directories, or use --interactive")
	}

	// Validate all roots up front so nothing is half-processed when one
	// of them is missing.
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			if os.IsNotExist(err) {
				return &missingPathError{path: p}
			}
			return fmt.Errorf("inspecting %s: %w", p, err)
		}
	}

	tok, err := newTokenizer(opts)
	if err != nil {
		return err
	}
	defer tok.Close()

	var captured strings.Builder
	var out io.Writer = os.Stdout
	if opts.outputFile != "" || opts.clipboard {
		out = io.MultiWriter(os.Stdout, &captured)
	}

	agg := newAggregator(opts, tok, out, os.Stderr)
	for _, p := range paths {
		if err := agg.scanPath(p); err != nil {
			return err
		}
	}
	agg.printSummary()

	if opts.reportPath != "" {
		if err := writeReport(buildReport(agg.records, agg.totals, tok.Name()), opts.reportPath); err != nil {
			return err
		}
	}
	if opts.pdfPath != "" {
		if err := generatePDF(agg.records, agg.totals, tok.Name(), opts.pdfPath); err != nil {
			return err
		}
	}
	if opts.outputFile != "" {
		if err := os.WriteFile(opts.outputFile, []byte(captured.String()), 0644); err != nil {
			return fmt.Errorf("writing output to %s: %w", opts.outputFile, err)
		}
	}
	if opts.clipboard {
		if err := clipboard.WriteAll(captured.String()); err != nil {
			return fmt.Errorf("copying output to clipboard: %w", err)
		}
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var missing *missingPathError
		if errors.As(err, &missing) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
