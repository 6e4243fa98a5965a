//go:build !js && !wasm

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/himanishpuri/SongBook/pkg/logger"
	"github.com/himanishpuri/SongBook/pkg/songbook"
)

var (
	configPath     string
	port           int
	dbPath         string
	songsDir       string
	localeFlag     string
	allowedOrigins string
	watch          bool
)

var rootCmd = &cobra.Command{
	Use:          "songbook-server",
	Short:        "HTTP API for the chord sheet songbook",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := serverConfig(cmd)
		if err != nil {
			return err
		}
		return run(cmd.Context(), cfg)
	},
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&configPath, "config", os.Getenv("SONGBOOK_CONFIG"), "Path to a TOML config file (env: SONGBOOK_CONFIG)")
	flags.IntVar(&port, "port", 8080, "HTTP server port")
	flags.StringVar(&dbPath, "db", "", "Path to the SQLite patch database (env: SONGBOOK_DB_PATH)")
	flags.StringVar(&songsDir, "songs", "", "Songs root directory (env: SONGBOOK_SONGS_DIR)")
	flags.StringVar(&localeFlag, "locale", "", "Default locale for requests without one")
	flags.StringVar(&allowedOrigins, "origins", "*", "Comma-separated list of allowed CORS origins (use * for all)")
	flags.BoolVar(&watch, "watch", true, "Reload songs when files change")
}

// serverConfig merges defaults, the config file, the environment and
// explicit flags, in that order.
func serverConfig(cmd *cobra.Command) (songbook.FileConfig, error) {
	cfg := songbook.DefaultFileConfig()
	cfg.Watch = true
	if configPath != "" {
		loaded, err := songbook.LoadConfigFile(configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	} else {
		if v := os.Getenv("SONGBOOK_SONGS_DIR"); v != "" {
			cfg.SongsDir = v
		}
		if v := os.Getenv("SONGBOOK_DB_PATH"); v != "" {
			cfg.DBPath = v
		}
	}

	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Server.Port = port
	}
	if flags.Changed("db") {
		cfg.DBPath = dbPath
	}
	if flags.Changed("songs") {
		cfg.SongsDir = songsDir
	}
	if flags.Changed("locale") {
		cfg.Locale = localeFlag
	}
	if flags.Changed("origins") {
		cfg.Server.AllowedOrigins = parseOrigins(allowedOrigins)
	}
	if flags.Changed("watch") {
		cfg.Watch = watch
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return cfg, fmt.Errorf("invalid port %d", cfg.Server.Port)
	}
	return cfg, nil
}

func parseOrigins(raw string) []string {
	if strings.TrimSpace(raw) == "*" {
		return []string{"*"}
	}
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func run(ctx context.Context, cfg songbook.FileConfig) error {
	log := logger.GetLogger()
	if level, ok := logger.ParseLevel(cfg.LogLevel); ok {
		log.SetLevel(level)
	}
	defer log.Sync()

	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	service, err := songbook.NewService(append(opts, songbook.WithLogger(log))...)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	defer service.Close()

	server := NewServer(service, &ServerConfig{
		Port:           cfg.Server.Port,
		SongsDir:       cfg.SongsDir,
		DBPath:         cfg.DBPath,
		DefaultLocale:  cfg.Locale,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})
	return server.Start(ctx)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Errorf("Server failed: %v", err)
		os.Exit(1)
	}
}
