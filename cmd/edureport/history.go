package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	edureport "github.com/alnah/go-edureport"
	"github.com/alnah/go-edureport/internal/history"
)

// historyRecorder stores finished exports in the history database.
type historyRecorder struct {
	store *history.Store
}

var _ edureport.HistoryRecorder = historyRecorder{}

// Record implements edureport.HistoryRecorder.
func (h historyRecorder) Record(ctx context.Context, r edureport.Report) error {
	return h.store.Record(ctx, historyEntry(r))
}

func historyEntry(r edureport.Report) history.Entry {
	sections := make(map[string]string, len(r.Sections))
	for _, s := range r.Sections {
		sections[s.Name] = s.Outcome.String()
	}
	p := r.Profile
	return history.Entry{
		ID:       r.ID.String(),
		Filename: r.Filename,
		Path:     r.Path,
		Pages:    r.Pages,
		Size:     r.Size,
		Sections: sections,
		Profile: map[string]string{
			"mathScore":     p.MathScore,
			"scienceScore":  p.ScienceScore,
			"readingScore":  p.ReadingScore,
			"learningStyle": p.LearningStyleLabel(),
			"interestLevel": p.InterestLevelLabel(),
			"performance":   p.PerformanceLabel(),
		},
		CreatedAt: r.CreatedAt,
	}
}

func (a *app) openHistory() (*history.Store, error) {
	path, err := a.env.Config.HistoryPath()
	if err != nil {
		return nil, err
	}
	return history.Open(path)
}

func newHistoryCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List previous exports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openHistory()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			entries, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if a.common.json {
				return writeJSON(a.env.Stdout, entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(a.env.Stdout, "No exports recorded")
				return nil
			}

			tw := tabwriter.NewWriter(a.env.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DATE\tFILE\tPAGES\tRECOMMENDATIONS\tANALYTICS")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
					e.CreatedAt.Local().Format(time.DateTime), e.Path, e.Pages,
					e.Sections["recommendations"], e.Sections["analytics"])
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", history.DefaultLimit, "number of exports to show")
	return cmd
}
