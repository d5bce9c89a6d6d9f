package cli

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/tessro/euphony/internal/config"
	"github.com/tessro/euphony/internal/errors"
	"github.com/tessro/euphony/internal/wizard"
)

const configHeader = "# Euphony Configuration\n# https://github.com/tessro/euphony\n\n"

type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindBool
)

// settableKeys lists the keys 'config set' accepts and their value types.
var settableKeys = map[string]keyKind{
	"catalog.path":              kindString,
	"catalog.seed":              kindInt,
	"storage.backend":           kindString,
	"storage.dir":               kindString,
	"storage.redis_addr":        kindString,
	"storage.redis_db":          kindInt,
	"storage.redis_prefix":      kindString,
	"playback.volume":           kindInt,
	"playback.shuffle":          kindBool,
	"playback.repeat":           kindBool,
	"playback.tick_interval":    kindInt,
	"playback.watchdog_grace":   kindInt,
	"playback.autoplay_blocked": kindBool,
	"tui.theme":                 kindString,
	"tui.refresh_interval":      kindInt,
	"log.level":                 kindString,
	"log.file":                  kindString,
	"log.format":                kindString,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Commands for viewing and editing euphony configuration.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration values, including defaults and environment overrides.`,
	RunE:  runConfigShow,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file",
	Long:  `Open the configuration file in your default editor.`,
	RunE:  runConfigEdit,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long:  `Create a new configuration file with default values.`,
	RunE:  runConfigInit,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value.

Supported keys:
  catalog.path               CSV file with songs
  catalog.seed               Seed for generated songs and shuffle (0 = random)
  storage.backend            file or redis
  storage.dir                Directory for the file backend
  storage.redis_addr         host:port of the Redis server
  playback.volume            Default volume (0-100)
  playback.shuffle           Default shuffle state (true/false)
  playback.repeat            Default repeat state (true/false)
  playback.autoplay_blocked  Wait for a key press before audio starts
  tui.theme                  auto, dark or light
  log.level                  debug, info, warn or error

Examples:
  euphony config set storage.backend redis
  euphony config set playback.volume 50`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configSetThemeCmd = &cobra.Command{
	Use:   "set-theme",
	Short: "Interactively select the dashboard theme",
	Long:  `Shows a picker to select the dashboard color theme.`,
	RunE:  runConfigSetTheme,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configSetThemeCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if JSONOutput() {
		return printJSON(out, cfg)
	}

	encoder := toml.NewEncoder(out)
	encoder.Indent = "  "
	return encoder.Encode(cfg)
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("%w at %s", errors.ErrConfigNotFound, configPath)
	}

	editor := findEditor()
	if editor == "" {
		return errors.WithSuggestion(fmt.Errorf("no editor found"), "Set the EDITOR environment variable")
	}

	editorCmd := exec.Command(editor, configPath)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	return editorCmd.Run()
}

func findEditor() string {
	for _, env := range []string{"EDITOR", "VISUAL"} {
		if e := os.Getenv(env); e != "" {
			return e
		}
	}
	for _, e := range []string{"nano", "vim", "vi"} {
		if _, err := exec.LookPath(e); err == nil {
			return e
		}
	}
	return ""
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists at %s", configPath)
	}

	if err := writeConfig(configPath, config.Default()); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if JSONOutput() {
		return printJSON(out, map[string]string{
			"status": "created",
			"path":   configPath,
		})
	}

	fmt.Fprintf(out, "Created config file: %s\n", configPath)
	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintln(out, "  1. Point catalog.path at a CSV of songs, or keep the built-in catalog")
	fmt.Fprintln(out, "  2. Run 'euphony ui' to start listening")
	return nil
}

// getConfigPath returns --config, the config file in use, or where a new
// one should go.
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if p := config.FindConfigFile(); p != "" {
		return p
	}
	return config.DefaultPath()
}

// writeConfig encodes v as TOML under the standard header.
func writeConfig(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(configHeader)
	encoder := toml.NewEncoder(&buf)
	encoder.Indent = "  "
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("%w at %s", errors.ErrConfigNotFound, configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	updated, err := setConfigValue(data, key, value)
	if err != nil {
		return err
	}

	if err := writeConfig(configPath, updated); err != nil {
		return err
	}

	return report(cmd, "updated", key, "Set %s = %s", key, value)
}

// setConfigValue applies key=value to the raw TOML in data. The result is
// validated before it is returned.
func setConfigValue(data []byte, key, value string) (map[string]any, error) {
	kind, ok := settableKeys[key]
	if !ok {
		return nil, errors.WithSuggestion(
			fmt.Errorf("unknown config key %q", key),
			"Run 'euphony config set --help' to list supported keys")
	}

	var raw map[string]any
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if raw == nil {
		raw = make(map[string]any)
	}

	section, field, _ := strings.Cut(key, ".")
	sectionMap, ok := raw[section].(map[string]any)
	if !ok {
		sectionMap = make(map[string]any)
		raw[section] = sectionMap
	}

	switch kind {
	case kindInt:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("value must be an integer for %s", key)
		}
		sectionMap[field] = n
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("value must be true or false for %s", key)
		}
		sectionMap[field] = b
	default:
		sectionMap[field] = value
	}

	if err := validateRaw(raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// validateRaw round-trips raw through the typed config and validates it.
func validateRaw(raw map[string]any) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(raw); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	var c config.Config
	if _, err := toml.NewDecoder(&buf).Decode(&c); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err)
	}
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err)
	}
	return nil
}

func runConfigSetTheme(cmd *cobra.Command, args []string) error {
	if !wizard.IsTerminal() {
		return fmt.Errorf("set-theme needs a terminal. Use 'euphony config set tui.theme <auto|dark|light>'")
	}

	selected := cfg.TUI.Theme
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select dashboard theme").
				Description("Auto follows the terminal background").
				Options(
					huh.NewOption("Auto", "auto"),
					huh.NewOption("Dark", "dark"),
					huh.NewOption("Light", "light"),
				).
				Value(&selected),
		),
	)

	if err := form.Run(); err != nil {
		return fmt.Errorf("selection cancelled: %w", err)
	}

	if _, err := os.Stat(getConfigPath()); os.IsNotExist(err) {
		if err := writeConfig(getConfigPath(), config.Default()); err != nil {
			return err
		}
	}
	return runConfigSet(cmd, []string{"tui.theme", selected})
}
