package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# synthesis engine: mock, piper, or openai
engine: "mock"
# sample rate for generated audio
sample_rate: 22050
# silence between speaker turns in milliseconds
pause_ms: 300

# speaker name to voice id mapping
speakers:
  Sarah: "en_US-amy-medium"
  Mike: "en_US-ryan-medium"
# speaker attributed any untagged script text
fallback_speaker: "Narrator"
# voice used for speakers without a configured voice
fallback_voice: "narrator-neutral"

# background task limits
max_concurrent_tasks: 4
# per-segment synthesis deadline, 0 disables
synth_timeout: "60s"

# Piper engine configuration
piper:
  binary: "piper"
  # model_dir: "/usr/share/piper/voices"

# OpenAI speech engine configuration
openai:
  # api_key: "your-api-key-here"
  model: "tts-1"
  requests_per_minute: 50
  timeout: "45s"

# Mock engine configuration (for testing)
mock:
  delay: "0s"
  # fail_voice: ""

# task record store: memory or sqlite
store:
  backend: "memory"
  # path: "educast.db"

# polling HTTP API
server:
  addr: ":8080"
  output_dir: "episodes"
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the educast config file",
	Long:    paragraph(fmt.Sprintf("\n%s the educast config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("educast config\neducast config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("Educast", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil { //nolint:gosec
			return fmt.Errorf("could not write configuration file: %w", err)
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
