// Package main provides the entry point for the educast CLI, which turns
// speaker-tagged scripts into narrated podcast episodes.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/educast/podcast"
	"github.com/dgnsrekt/educast/podcast/taskstore"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	outputPath string
	engineName string
	pauseMs    int

	rootCmd = &cobra.Command{
		Use:   "educast [SCRIPT]",
		Short: "Turn dialogue scripts into podcast episodes",
		Long: paragraph(
			fmt.Sprintf("\nSynthesize a %s from a speaker-tagged script, one voice per speaker.", keyword("podcast episode")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		RunE:             execute,
	}
)

func execute(_ *cobra.Command, args []string) error {
	cfg, err := podcast.LoadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := log.Default()
	engine, err := podcast.NewEngine(cfg, logger)
	if err != nil {
		return err
	}

	// One-shot runs keep their single record in memory; the configured store
	// backend only matters to the long-running server.
	orch, err := podcast.NewOrchestrator(cfg, podcast.NewMemoryStore(), engine, logger)
	if err != nil {
		return err
	}
	defer orch.Close() //nolint:errcheck

	id, err := submit(orch, args)
	if err != nil {
		return err
	}

	task, err := orch.Wait(ctx, id)
	if err != nil {
		return err
	}
	if task.Status == podcast.StatusError {
		return errors.New(task.Err)
	}

	fmt.Println("Wrote episode to:", task.Result.AudioPath)
	return nil
}

// submit starts the task from the script argument, or from stdin when the
// input is piped or the argument is "-".
func submit(orch *podcast.Orchestrator, args []string) (string, error) {
	fromStdin := len(args) == 0 || args[0] == "-"
	if len(args) == 0 {
		piped, err := stdinIsPipe()
		if err != nil {
			return "", err
		}
		if !piped {
			return "", errors.New("missing script: pass a file or pipe one on stdin")
		}
	}

	if fromStdin {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("unable to read from stdin: %w", err)
		}
		return orch.SubmitText(string(b), outputPath)
	}
	return orch.SubmitScript(args[0], outputPath)
}

func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to stat stdin: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}

// openStore builds the configured task store backend.
func openStore(cfg podcast.Config) (podcast.TaskStore, error) {
	return taskstore.Open(cfg.Store)
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "episode output path (default episodes/<task-id>.wav)")
	rootCmd.Flags().StringVarP(&engineName, "engine", "e", "", "synthesis engine (mock, piper, openai)")
	rootCmd.Flags().IntVar(&pauseMs, "pause-ms", 0, "silence between speaker turns in milliseconds")

	_ = viper.BindPFlag("engine", rootCmd.Flags().Lookup("engine"))
	_ = viper.BindPFlag("pause_ms", rootCmd.Flags().Lookup("pause-ms"))

	podcast.SetDefaults()

	rootCmd.AddCommand(configCmd, serveCmd, playCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "educast")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "educast")}, dirs...)
	}

	if c := os.Getenv("EDUCAST_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("educast")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("educast")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "educast.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
