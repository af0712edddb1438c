package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"reelcache/internal/movie"
)

func newLookupCommand(cmdCtx *commandContext) *cobra.Command {
	var (
		tmdbID     int64
		imdbID     string
		title      string
		year       int
		cachedOnly bool
		jsonOut    bool
	)

	cmd := &cobra.Command{
		Use:   "lookup [free text...]",
		Short: "Resolve movie metadata from the cache or the provider",
		RunE: func(cmd *cobra.Command, args []string) error {
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

			result, err := resolver.Lookup(ctx, movie.Criteria{
				TMDBID:     tmdbID,
				IMDBID:     strings.TrimSpace(imdbID),
				Title:      strings.TrimSpace(title),
				Year:       year,
				FreeText:   strings.TrimSpace(strings.Join(args, " ")),
				CachedOnly: cachedOnly,
			})
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd, newMovieView(result))
			}
			renderMovie(cmd, result)
			return nil
		},
	}

	cmd.Flags().Int64Var(&tmdbID, "tmdb-id", 0, "TMDB movie id")
	cmd.Flags().StringVar(&imdbID, "imdb-id", "", "IMDb movie id (tt...)")
	cmd.Flags().StringVar(&title, "title", "", "Exact movie title")
	cmd.Flags().IntVar(&year, "year", 0, "Release year to narrow title matches")
	cmd.Flags().BoolVar(&cachedOnly, "cached-only", false, "Answer from the cache without contacting the provider")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}

type posterView struct {
	RemoteURL string `json:"remote_url"`
	Size      string `json:"size,omitempty"`
	LocalPath string `json:"local_path,omitempty"`
}

type movieView struct {
	ID              int64        `json:"id"`
	IMDBID          string       `json:"imdb_id,omitempty"`
	Name            string       `json:"name"`
	OriginalName    string       `json:"original_name,omitempty"`
	Year            int          `json:"year,omitempty"`
	ReleaseDate     string       `json:"release_date,omitempty"`
	Rating          float64      `json:"rating"`
	VoteCount       int64        `json:"vote_count"`
	Popularity      float64      `json:"popularity"`
	Certification   string       `json:"certification,omitempty"`
	Overview        string       `json:"overview,omitempty"`
	Language        string       `json:"language,omitempty"`
	Adult           bool         `json:"adult"`
	URL             string       `json:"url,omitempty"`
	Genres          []string     `json:"genres,omitempty"`
	Posters         []posterView `json:"posters,omitempty"`
	LastRefreshedAt string       `json:"last_refreshed_at"`
}

func newMovieView(m *movie.Movie) movieView {
	view := movieView{
		ID:              m.ID,
		IMDBID:          m.IMDBID,
		Name:            m.Name,
		OriginalName:    m.OriginalName,
		Year:            m.Year(),
		Rating:          m.Rating,
		VoteCount:       m.VoteCount,
		Popularity:      m.Popularity,
		Certification:   m.Certification,
		Overview:        m.Overview,
		Language:        m.Language,
		Adult:           m.Adult,
		URL:             m.URL,
		LastRefreshedAt: m.LastRefreshedAt.UTC().Format(time.RFC3339),
	}
	if m.ReleaseDate != nil {
		view.ReleaseDate = m.ReleaseDate.Format("2006-01-02")
	}
	for _, genre := range m.Genres {
		view.Genres = append(view.Genres, genre.Name)
	}
	for _, poster := range m.Posters {
		view.Posters = append(view.Posters, posterView{
			RemoteURL: poster.RemoteURL,
			Size:      poster.Size,
			LocalPath: poster.LocalPath,
		})
	}
	return view
}

func renderMovie(cmd *cobra.Command, m *movie.Movie) {
	rows := [][]string{
		{"TMDB id", strconv.FormatInt(m.ID, 10)},
		{"Name", m.Name},
	}
	if m.IMDBID != "" {
		rows = append(rows, []string{"IMDb id", m.IMDBID})
	}
	if m.OriginalName != "" && m.OriginalName != m.Name {
		rows = append(rows, []string{"Original name", m.OriginalName})
	}
	if m.ReleaseDate != nil {
		rows = append(rows, []string{"Released", m.ReleaseDate.Format("2006-01-02")})
	}
	if m.Rating > 0 {
		rows = append(rows, []string{"Rating", fmt.Sprintf("%.1f (%d votes)", m.Rating, m.VoteCount)})
	}
	if m.Certification != "" {
		rows = append(rows, []string{"Certification", m.Certification})
	}
	if m.Language != "" {
		rows = append(rows, []string{"Language", m.Language})
	}
	if len(m.Genres) > 0 {
		names := make([]string, 0, len(m.Genres))
		for _, genre := range m.Genres {
			names = append(names, genre.Name)
		}
		rows = append(rows, []string{"Genres", strings.Join(names, ", ")})
	}
	if len(m.Posters) > 0 {
		rows = append(rows, []string{"Posters", strconv.Itoa(len(m.Posters))})
	}
	if m.Overview != "" {
		rows = append(rows, []string{"Overview", m.Overview})
	}
	rows = append(rows, []string{"Refreshed", m.LastRefreshedAt.UTC().Format(time.RFC3339)})

	printTable(cmd.OutOrStdout(), []string{"Field", "Value"}, rows, nil)
}
