// Package main is the entry point for the projectconverter CLI
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/git-moss/ProjectConverter-sub001/pkg/api"
	"github.com/git-moss/ProjectConverter-sub001/pkg/converter"
	"github.com/git-moss/ProjectConverter-sub001/pkg/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	outputFile string
	quiet      bool
	serverPort int
)

func main() {
	_ = godotenv.Load()

	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: dsn, Release: version}); err != nil {
			fmt.Fprintf(os.Stderr, "sentry init: %v\n", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	if err := rootCmd.Execute(); err != nil {
		sentry.CaptureException(err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "projectconverter",
	Short: "Convert between Reaper and dawproject formats",
	Long: `projectconverter is a tool for converting Reaper .rpp projects to the
vendor-neutral dawproject interchange format and back.

Tracks, folders, media items, MIDI notes, plugin states (VST2, VST3, CLAP),
tempo maps, markers and mixer automation are carried across.

Examples:
  projectconverter convert song.rpp
  projectconverter rpp2dawproject song.rpp -o song.dawproject
  projectconverter dawproject2rpp song.dawproject -o song.rpp
  projectconverter tui
  projectconverter serve --port 8080`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
}

var convertCmd = &cobra.Command{
	Use:   "convert <input>",
	Short: "Auto-detect and convert between formats",
	Long:  `Detects the input format and converts to the other one. Without -o the output is written beside the input.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

var rpp2dawCmd = &cobra.Command{
	Use:   "rpp2dawproject <input.rpp>",
	Short: "Convert a Reaper project to a dawproject container",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDirected(cmd, args[0], ".dawproject", converter.ReaperToDawProject)
	},
}

var daw2rppCmd = &cobra.Command{
	Use:   "dawproject2rpp <input.dawproject>",
	Short: "Convert a dawproject container to a Reaper project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDirected(cmd, args[0], ".rpp", converter.DawProjectToReaper)
	},
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI",
	RunE:  runTUI,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress progress output")

	convertCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path")
	rpp2dawCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .dawproject file path")
	daw2rppCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .rpp file path")

	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "Server port")

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(rpp2dawCmd)
	rootCmd.AddCommand(daw2rppCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
}

func notifier() converter.Notifier {
	if quiet {
		return converter.NopNotifier{}
	}
	return converter.ConsoleNotifier{}
}

func getOutputPath(input, defaultExt string) string {
	if outputFile != "" {
		return outputFile
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + defaultExt
}

func runConvert(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return converter.ConvertFile(ctx, args[0], outputFile, notifier())
}

func runDirected(cmd *cobra.Command, input, ext string, convert func(ctx context.Context, inputPath, outputPath string, n converter.Notifier) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return convert(ctx, input, getOutputPath(input, ext), notifier())
}

func runTUI(cmd *cobra.Command, args []string) error {
	return tui.Run()
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Printf("Starting API server on port %d...\n", serverPort)
	fmt.Printf("Swagger docs available at http://localhost:%d/swagger/index.html\n", serverPort)
	return api.StartServer(serverPort)
}
