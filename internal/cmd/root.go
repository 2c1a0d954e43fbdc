package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"log/slog"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/hyply/hyply"
	"github.com/hyply/hyply/internal/codestats"
	"github.com/hyply/hyply/internal/config"
	"github.com/hyply/hyply/internal/license"
)

var settings *config.Settings

var rootCmd = &cobra.Command{
	Use:   "hyply [path]",
	Short: "Detect the language composition of files and codebases",
	Long: `Hyply identifies the programming language of a source file through a
staged detection pipeline (filename, extension, shebang, heuristics,
token classifier) and reports the language breakdown of directory trees.

Examples:
  hyply src/main.rs
  hyply /path/to/project
  hyply --breakdown /path/to/project
  hyply --format json --stats /path/to/project`,
	Version: "1.0.0",
	Args:    cobra.MaximumNArgs(1),
	Run:     runRoot,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Initialize settings with defaults and environment variables
	settings = config.LoadSettings()

	rootCmd.Flags().BoolVarP(&settings.ShowBreakdown, "breakdown", "b", settings.ShowBreakdown, "Print the files detected for each language")
	rootCmd.Flags().BoolVar(&settings.AllTypes, "all-types", settings.AllTypes, "Include data and prose languages in the split")
	rootCmd.Flags().BoolVar(&settings.CodeStats, "stats", settings.CodeStats, "Include code statistics (lines, comments, complexity)")
	rootCmd.Flags().BoolVar(&settings.Licenses, "licenses", settings.Licenses, "Include licenses detected at the root")
	rootCmd.Flags().IntVar(&settings.Workers, "workers", settings.Workers, "Worker pool size (default: one per CPU)")
	rootCmd.Flags().StringSliceVar(&settings.ExcludePatterns, "exclude", settings.ExcludePatterns, "Patterns to exclude (glob, can be repeated)")
	rootCmd.Flags().StringVarP(&settings.Format, "format", "f", settings.Format, "Output format: text, json, or yaml")
	rootCmd.Flags().StringVarP(&settings.OutputFile, "output", "o", settings.OutputFile, "Output file path (default: stdout)")

	rootCmd.Flags().String("log-level", settings.LogLevel.String(), "Log level: debug, info, warn, error")
	rootCmd.Flags().String("log-format", settings.LogFormat, "Log format: text or json")
	rootCmd.Flags().String("log-file", settings.LogFile, "Log file path (default: stderr)")
}

// configureLogging sets up logging based on command flags
func configureLogging(cmd *cobra.Command) *slog.Logger {
	logLevel, _ := cmd.Flags().GetString("log-level")
	logFormat, _ := cmd.Flags().GetString("log-format")
	logFile, _ := cmd.Flags().GetString("log-file")

	if level, err := config.ParseLogLevel(logLevel); err == nil {
		settings.LogLevel = level
	}
	settings.LogFormat = logFormat
	settings.LogFile = logFile

	return settings.ConfigureLogger()
}

// resolvePath resolves and validates the target path from args
func resolvePath(args []string, logger *slog.Logger) (absPath string, isFile bool) {
	path := "."
	if len(args) > 0 {
		path = args[0]
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		logger.Error("Invalid path", "error", err)
		os.Exit(1)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		logger.Error("Path does not exist", "path", absPath)
		os.Exit(1)
	}
	return absPath, !info.IsDir()
}

func runRoot(cmd *cobra.Command, args []string) {
	logger := configureLogging(cmd)
	slog.SetDefault(logger)

	if err := settings.Validate(); err != nil {
		logger.Error("Invalid settings", "error", err)
		os.Exit(1)
	}

	absPath, isFile := resolvePath(args, logger)
	if isFile {
		runFile(absPath, logger)
		return
	}
	runTree(absPath, logger)
}

func runFile(path string, logger *slog.Logger) {
	detection, err := hyply.Detect(path)
	if err != nil {
		logger.Error("Failed to read file", "path", path, "error", err)
		os.Exit(1)
	}
	if err := emit(&fileReport{Path: path, Detection: detection}, settings.Format, settings.OutputFile); err != nil {
		logger.Error("Failed to write output", "error", err)
		os.Exit(1)
	}
}

func runTree(root string, logger *slog.Logger) {
	bd, err := hyply.GetLanguageBreakdownContext(context.Background(), root, hyply.Options{
		Workers:     settings.Workers,
		ExtraIgnore: settings.ExcludePatterns,
		Logger:      logger,
	})
	if err != nil {
		logger.Error("Breakdown failed", "root", root, "error", err)
		os.Exit(1)
	}

	report := &treeReport{
		root:      root,
		breakdown: bd,
		allTypes:  settings.AllTypes,
		showFiles: settings.ShowBreakdown,
		colorize:  settings.Format == "text" && settings.OutputFile == "" && isatty.IsTerminal(os.Stdout.Fd()),
	}

	if settings.CodeStats {
		analyzer := codestats.NewAnalyzer()
		for language, entries := range bd {
			for _, entry := range entries {
				analyzer.ProcessFile(entry.Path, language, nil)
			}
		}
		report.stats = analyzer.Report()
	}

	if settings.Licenses {
		report.licenses = license.DetectRoot(root)
	}

	if err := emit(report, settings.Format, settings.OutputFile); err != nil {
		logger.Error("Failed to write output", "error", err)
		os.Exit(1)
	}
}
