// Command pscuectl is a thin diagnostic shell around ModuleLifecycle: init
// the learned-data store, record a sample command, print predictor/pcd
// output, and report the bounded per-process stats counters. It is not the
// shell-facing completion surface (that is an out-of-process integration
// concern, driven over stdin/stdout from the host shell's own completion
// hook) — just enough to exercise the whole engine end to end by hand.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pscue/pscue/internal/config"
	"github.com/pscue/pscue/internal/ingest"
	"github.com/pscue/pscue/internal/pcd"
	"github.com/pscue/pscue/internal/pscue"
)

var (
	dataDir  string
	yamlPath string
)

var rootCmd = &cobra.Command{
	Use:   "pscuectl",
	Short: "PSCue diagnostic CLI",
	Long: `pscuectl is a diagnostic shell around PSCue's learning and prediction
engine. It exists to exercise ModuleLifecycle end to end from the command
line; the real shell-completion surface is driven by the host shell's own
integration hook, not by this tool.`,
}

var recordCmd = &cobra.Command{
	Use:   "record <command line>",
	Short: "Feed one command line into FeedbackIngestor and persist it",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		line := joinArgs(args)
		e, err := newEngine()
		if err != nil {
			return err
		}
		defer e.Stop()
		e.RecordCommand(ingest.Event{CommandLine: line, Success: true})
		fmt.Printf("recorded: %s\n", line)
		return nil
	},
}

var completeCmd = &cobra.Command{
	Use:   "complete <partial line>",
	Short: "Print the composed inline suggestion for a partial command line",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		line := joinArgs(args)
		e, err := newEngine()
		if err != nil {
			return err
		}
		defer e.Stop()
		out, ok := e.Complete(line)
		if !ok {
			fmt.Println("(no suggestion)")
			return nil
		}
		fmt.Println(out)
		return nil
	},
}

var cdCmd = &cobra.Command{
	Use:   "cd <query>",
	Short: "Print PcdEngine's best directory match for a query",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wd, _ := os.Getwd()
		e, err := newEngine()
		if err != nil {
			return err
		}
		defer e.Stop()
		best, ok := e.BestDirectory(pcd.Request{Query: args[0], CurrentDirectory: wd})
		if !ok {
			fmt.Println("(no match)")
			return nil
		}
		fmt.Println(best)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print ModuleLifecycle's bounded per-process counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine()
		if err != nil {
			return err
		}
		defer e.Stop()
		s := e.Stats()
		fmt.Printf("suggestions_served=%d cache_hits=%d auto_save_cycles=%d\n",
			s.SuggestionsServed, s.CacheHits, s.AutoSaveCycles)
		return nil
	},
}

func newEngine() (*pscue.Engine, error) {
	cfg, diagnostics := config.Load(yamlPath, os.Getenv)
	for _, d := range diagnostics {
		fmt.Fprintln(os.Stderr, d)
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	e := pscue.New(cfg)
	if err := e.Start(); err != nil {
		return nil, fmt.Errorf("start engine: %w", err)
	}
	return e, nil
}

func joinArgs(args []string) string {
	out := args[0]
	for _, a := range args[1:] {
		out += " " + a
	}
	return out
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "override PSCue's learned-data directory")
	rootCmd.PersistentFlags().StringVar(&yamlPath, "config", "", "optional YAML config file path")

	rootCmd.AddCommand(recordCmd, completeCmd, cdCmd, statsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
