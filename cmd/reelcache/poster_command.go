package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"reelcache/internal/assets"
	"reelcache/internal/movie"
)

func newPosterCommand(cmdCtx *commandContext) *cobra.Command {
	var cachedOnly bool

	cmd := &cobra.Command{
		Use:   "poster <tmdb-id>",
		Short: "Download the primary poster for a movie",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			movieID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || movieID <= 0 {
				return fmt.Errorf("invalid tmdb id %q", args[0])
			}

			store, cfg, err := cmdCtx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			logger, err := cmdCtx.newLogger(cfg)
			if err != nil {
				return err
			}
			resolver, err := cmdCtx.newResolver(cfg, store, logger)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cmdCtx.remoteTimeout(cfg))
			defer cancel()

			result, err := resolver.Lookup(ctx, movie.Criteria{TMDBID: movieID, CachedOnly: cachedOnly})
			if err != nil {
				return err
			}
			if len(result.Posters) == 0 {
				return fmt.Errorf("%w: no posters known for %q", movie.ErrAssetUnavailable, result.Name)
			}

			posterStore := assets.NewStore(cfg.Paths.PosterDir, logger)
			localPath, err := posterStore.EnsureLocal(ctx, store, result.Posters[0], cachedOnly)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), localPath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&cachedOnly, "cached-only", false, "Fail instead of downloading when the poster is not on disk")
	return cmd
}
