package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/david/volunteer-board/internal/board"
	"github.com/david/volunteer-board/internal/ingest"
	"github.com/david/volunteer-board/internal/organizer"
	"github.com/david/volunteer-board/internal/render"
	"github.com/david/volunteer-board/internal/search"
)

var (
	keyword  string
	category string
	date     string

	previewForm organizer.Form
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Print the event table, optionally filtered",
	Example: `  boardctl events --q "beach" --category Environment
  boardctl events --date 2024-05-01`,
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := load(cmd.Context())
		if err != nil {
			return err
		}

		q := state.Query(search.NewCriteria(keyword, category, date))
		out := cmd.OutOrStdout()
		if len(q.Events) > 0 {
			render.WriteEventsTable(out, q.Events)
		}
		fmt.Fprintln(out, q.Status.Message)
		return nil
	},
}

var facetsCmd = &cobra.Command{
	Use:   "facets",
	Short: "Print the categories and dates offered as filters",
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := load(cmd.Context())
		if err != nil {
			return err
		}

		facets := state.Facets()
		render.WriteList(cmd.OutOrStdout(), "Category", facets.Categories)
		render.WriteList(cmd.OutOrStdout(), "Date", facets.Dates)
		return nil
	},
}

var applicationsCmd = &cobra.Command{
	Use:   "applications",
	Short: "Print the applications table",
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := load(cmd.Context())
		if err != nil {
			return err
		}
		render.WriteApplicationsTable(cmd.OutOrStdout(), state.Applications())
		return nil
	},
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Print the organizer JSON preview for an event",
	Long:  "Builds the same preview the organizer panel shows. Nothing is submitted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := organizer.BuildPreview(previewForm)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), p.JSON)
		fmt.Fprintln(cmd.ErrOrStderr(), p.Notice)
		return nil
	},
}

func init() {
	eventsCmd.Flags().StringVar(&keyword, "q", "", "keyword, matched ignoring case and whitespace")
	eventsCmd.Flags().StringVar(&category, "category", "", "exact category")
	eventsCmd.Flags().StringVar(&date, "date", "", "exact date")

	f := previewCmd.Flags()
	f.StringVar(&previewForm.Title, "title", "", "event title")
	f.StringVar(&previewForm.Date, "date", "", "event date")
	f.StringVar(&previewForm.Time, "time", "", "event time")
	f.StringVar(&previewForm.Place, "place", "", "event place")
	f.StringVar(&previewForm.Target, "target", "", "who may join")
	f.StringVar(&previewForm.Category, "category", "", "category")
	f.StringVar(&previewForm.Capacity, "capacity", "", "capacity")
	f.StringVar(&previewForm.Deadline, "deadline", "", "application deadline")
	f.StringVar(&previewForm.Description, "description", "", "description")
	f.StringVar(&previewForm.ApplyURL, "apply-url", "", "application form URL")
}

// load reads the feeds once and returns the populated state. An events
// failure is returned; an applications failure only leaves that table empty.
func load(ctx context.Context) (*board.State, error) {
	reg, err := ingest.LoadRegistry(feedsConfig)
	if err != nil {
		return nil, err
	}
	for i := range reg.Feeds {
		switch {
		case reg.Feeds[i].ID == ingest.FeedEvents && eventsURL != "":
			reg.Feeds[i].URL = eventsURL
		case reg.Feeds[i].ID == ingest.FeedApplications && applicationsURL != "":
			reg.Feeds[i].URL = applicationsURL
		}
	}

	state := board.NewState()
	loader, err := board.NewLoaderFromRegistry(state, reg, logger)
	if err != nil {
		return nil, err
	}
	if _, err := loader.Load(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", board.MessageLoadFailed, err)
	}
	return state, nil
}
