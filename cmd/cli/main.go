package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/himanishpuri/SongBook/pkg/logger"
	"github.com/himanishpuri/SongBook/pkg/songbook"
)

// Global flags
var (
	configPath string
	dbPath     string
	songsDir   string
	indexPath  string
	localeFlag string
	colorMode  string
	verbose    bool
)

// fileConfig is the merged configuration: defaults, then the config file,
// then explicit flags.
var fileConfig = songbook.DefaultFileConfig()

var rootCmd = &cobra.Command{
	Use:           "songbook",
	Short:         "Chord sheet songbook",
	Long:          "Browse songbook entries, render chord sheets in any key and manage locale patches.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", os.Getenv("SONGBOOK_CONFIG"), "Path to a TOML config file (env: SONGBOOK_CONFIG)")
	flags.StringVar(&dbPath, "db", "", "Path to the SQLite patch database (env: SONGBOOK_DB_PATH)")
	flags.StringVar(&songsDir, "songs", "", "Songs root directory (env: SONGBOOK_SONGS_DIR)")
	flags.StringVar(&indexPath, "index", "", "Path to the song index (default: <songs>/index.json)")
	flags.StringVarP(&localeFlag, "locale", "l", "", "Locale to use, e.g. es or pt-BR")
	flags.StringVar(&colorMode, "color", "auto", "Colorize output (auto|on|off)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(listCmd, filesCmd, showCmd, linesCmd, patchCmd, checkCmd)
}

func loadConfig(cmd *cobra.Command) error {
	if configPath != "" {
		cfg, err := songbook.LoadConfigFile(configPath)
		if err != nil {
			return err
		}
		fileConfig = cfg
	}

	if v := os.Getenv("SONGBOOK_SONGS_DIR"); v != "" && configPath == "" {
		fileConfig.SongsDir = v
	}
	if v := os.Getenv("SONGBOOK_DB_PATH"); v != "" && configPath == "" {
		fileConfig.DBPath = v
	}

	flags := cmd.Flags()
	if flags.Changed("songs") {
		fileConfig.SongsDir = songsDir
	}
	if flags.Changed("db") {
		fileConfig.DBPath = dbPath
	}
	if flags.Changed("index") {
		fileConfig.IndexPath = indexPath
	}
	if flags.Changed("locale") {
		fileConfig.Locale = localeFlag
	}

	log := logger.GetLogger()
	if verbose {
		log.SetLevel(logger.DEBUG)
	} else if level, ok := logger.ParseLevel(fileConfig.LogLevel); ok {
		log.SetLevel(level)
	} else {
		log.Warnf("Unknown log level %q, using INFO", fileConfig.LogLevel)
	}

	switch colorMode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto":
		color.NoColor = !term.IsTerminal(int(os.Stdout.Fd()))
	default:
		return fmt.Errorf("invalid --color value %q (want auto, on or off)", colorMode)
	}
	return nil
}

// createService creates a new songbook service from the merged configuration
func createService() (songbook.Service, error) {
	opts, err := fileConfig.Options()
	if err != nil {
		return nil, err
	}
	// A one-shot command never needs to watch for changes.
	opts = append(opts, songbook.WithWatch(false), songbook.WithLogger(logger.GetLogger()))
	return songbook.NewService(opts...)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("error:"), err)
		os.Exit(1)
	}
}
