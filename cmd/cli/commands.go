package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/himanishpuri/SongBook/pkg/logger"
	"github.com/himanishpuri/SongBook/pkg/models"
	"github.com/himanishpuri/SongBook/pkg/songbook"
)

const commandTimeout = 2 * time.Minute

// withService runs fn with a fresh service and a bounded context.
func withService(fn func(ctx context.Context, svc songbook.Service) error) error {
	svc, err := createService()
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	return fn(ctx, svc)
}

var searchQuery string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the songs of the index for a locale",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc songbook.Service) error {
			loc := fileConfig.Locale
			var err error
			var songs []models.Song
			if searchQuery != "" {
				songs, err = svc.SearchSongs(ctx, loc, searchQuery)
			} else {
				songs, err = svc.ListSongs(ctx, loc)
			}
			if err != nil {
				return err
			}
			logger.GetLogger().Debugf("Listed %d songs for %s", len(songs), loc)
			printSongs(cmd.OutOrStdout(), songs)
			return nil
		})
	},
}

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List the song files of a locale folder",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc songbook.Service) error {
			files, err := svc.ListFiles(ctx, fileConfig.Locale)
			if err != nil {
				return err
			}
			printFiles(cmd.OutOrStdout(), files)
			return nil
		})
	},
}

var (
	transpose int
	target    string
)

var showCmd = &cobra.Command{
	Use:   "show KEY",
	Short: "Render a song as a chord sheet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("transpose") && target != "" {
			return errors.New("--transpose and --to are mutually exclusive")
		}
		return withService(func(ctx context.Context, svc songbook.Service) error {
			sh, err := svc.Render(ctx, args[0], fileConfig.Locale, songbook.RenderOptions{
				Transpose: transpose,
				Target:    target,
			})
			if err != nil {
				return err
			}
			printSheet(cmd.OutOrStdout(), sh)
			return nil
		})
	},
}

var linesCmd = &cobra.Command{
	Use:   "lines KEY",
	Short: "Show how every line of a song is classified",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc songbook.Service) error {
			sh, err := svc.Render(ctx, args[0], fileConfig.Locale, songbook.RenderOptions{Transpose: transpose})
			if err != nil {
				return err
			}
			printClassification(cmd.OutOrStdout(), sh.Lines)
			return nil
		})
	},
}

var patchCmd = &cobra.Command{
	Use:   "patch",
	Short: "Manage locale patches",
}

var patchSetCmd = &cobra.Command{
	Use:   "set KEY FILE",
	Short: "Use FILE (a song file of the locale, without .txt) for KEY",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc songbook.Service) error {
			song, err := svc.SetPatch(ctx, args[0], fileConfig.Locale, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Patched %q (was %q) for %s\n", song.Title, song.PatchedTitle, song.Locale)
			return nil
		})
	},
}

var patchRmCmd = &cobra.Command{
	Use:   "rm KEY",
	Short: "Remove every patch of KEY",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc songbook.Service) error {
			if err := svc.RemovePatch(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Removed patches of %s\n", args[0])
			return nil
		})
	},
}

var patchLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored patches",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc songbook.Service) error {
			entries, err := svc.ListPatches(ctx)
			if err != nil {
				return err
			}
			printPatches(cmd.OutOrStdout(), entries)
			return nil
		})
	},
}

var patchClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all patches",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc songbook.Service) error {
			if err := svc.ClearPatches(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✅ All patches removed")
			return nil
		})
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the locale configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc songbook.Service) error {
			problems := svc.CheckLocales()
			printCheck(cmd.OutOrStdout(), svc.Locales(), problems)
			if len(problems) > 0 {
				return fmt.Errorf("%d locale configuration problem(s)", len(problems))
			}
			return nil
		})
	},
}

func init() {
	listCmd.Flags().StringVarP(&searchQuery, "search", "s", "", "Only songs whose title or text contains this")

	showCmd.Flags().IntVarP(&transpose, "transpose", "t", 0, "Semitones to transpose by")
	showCmd.Flags().StringVar(&target, "to", "", "Transpose so the song starts on this chord")
	linesCmd.Flags().IntVarP(&transpose, "transpose", "t", 0, "Semitones to transpose by")

	patchCmd.AddCommand(patchSetCmd, patchRmCmd, patchLsCmd, patchClearCmd)
}
