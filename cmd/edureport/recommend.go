package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	edureport "github.com/alnah/go-edureport"
	"github.com/alnah/go-edureport/internal/api"
	"github.com/alnah/go-edureport/internal/offline"
)

func newRecommendCmd(a *app) *cobra.Command {
	var (
		pf      profileFlags
		noTrack bool
	)
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Ask the prediction service for learning recommendations",
		Example: `  edureport recommend --math 85 --science 78 --reading 92 \
      --learning-style 0 --interest 2 --performance 1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			features, err := pf.profile().Features()
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}

			res, err := client.Recommend(ctx, features)
			if err != nil {
				a.networkFailure(err, "Failed to get recommendations")
				return err
			}

			if !noTrack {
				d := edureport.NewDispatcher(client, edureport.WithDispatcherLogger(a.env.Logger))
				a.trackRecommendation(ctx, d, pf.profile(), res)
				drain(d, a.env.Logger)
			}

			if a.common.json {
				return writeJSON(a.env.Stdout, res)
			}
			printRecommendations(a.env.Stdout, res)
			return nil
		},
	}
	pf.register(cmd.Flags())
	cmd.Flags().BoolVar(&noTrack, "no-track", false, "do not report the request to the analytics service")
	return cmd
}

func printRecommendations(w io.Writer, res *api.RecommendationResult) {
	fmt.Fprintln(w, "Predicted Learning Categories")
	for i, c := range res.PredictedCategories {
		fmt.Fprintf(w, "  %s (%.1f%%)\n", c, res.Probabilities[i]*100)
	}
	fmt.Fprintln(w)

	if len(res.Recommendations) == 0 {
		fmt.Fprintln(w, "No recommendations available")
		return
	}
	fmt.Fprintln(w, "Recommended Learning Materials")
	for i, r := range res.Recommendations {
		fmt.Fprintf(w, "  %s %d. %s\n", offline.Icon(r.Type), i+1, r.Title)
		details := []string{
			"Type: " + r.Type,
			"Difficulty: " + r.Difficulty,
			"Category: " + r.Category,
			fmt.Sprintf("Confidence: %.1f%%", r.Confidence*100),
		}
		if r.Duration != "" {
			details = append(details, "Duration: "+r.Duration)
		}
		if r.Pages > 0 {
			details = append(details, fmt.Sprintf("Pages: %d", r.Pages))
		}
		if r.TimeRequired != "" {
			details = append(details, "Time Required: "+r.TimeRequired)
		}
		fmt.Fprintf(w, "     %s\n", strings.Join(details, " | "))
	}
}

func newModelInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "model-info",
		Short: "Show the model behind the prediction service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			info, err := client.ModelInfo(cmd.Context())
			if err != nil {
				a.networkFailure(err, "Failed to load model information")
				return err
			}
			if a.common.json {
				return writeJSON(a.env.Stdout, info)
			}
			printModelInfo(a.env.Stdout, info)
			return nil
		},
	}
}

func printModelInfo(w io.Writer, info *api.ModelInfo) {
	fmt.Fprintf(w, "Model type: %s\n", info.ModelType)
	if info.NClasses > 0 {
		fmt.Fprintf(w, "Classes:    %d\n", info.NClasses)
	}
	if len(info.Categories) > 0 {
		fmt.Fprintf(w, "Categories: %s\n", strings.Join(info.Categories, ", "))
	}
	if len(info.FeaturesUsed) > 0 {
		fmt.Fprintf(w, "Features:   %s\n", strings.Join(info.FeaturesUsed, ", "))
	}
	if info.TrainedAt != "" {
		fmt.Fprintf(w, "Trained at: %s\n", info.TrainedAt)
	}
}

func newTrainCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "train",
		Short: "Retrain the recommendation model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			res, err := client.TrainModel(cmd.Context())
			if err != nil {
				a.networkFailure(err, "Failed to train model")
				return err
			}
			if a.common.json {
				return writeJSON(a.env.Stdout, res)
			}
			w := a.env.Stdout
			msg := res.Message
			if msg == "" {
				msg = "Model trained"
			}
			fmt.Fprintln(w, msg)
			if res.Accuracy != nil {
				fmt.Fprintf(w, "Accuracy: %.1f%%\n", *res.Accuracy*100)
			}
			if res.ModelInfo != nil {
				printModelInfo(w, res.ModelInfo)
			}
			return nil
		},
	}
}

func newSummaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show the analytics summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			s, err := client.Summary(cmd.Context())
			if err != nil {
				a.networkFailure(err, "Failed to load analytics")
				return err
			}
			if a.common.json {
				return writeJSON(a.env.Stdout, s)
			}
			printSummary(a.env.Stdout, s)
			return nil
		},
	}
}

func printSummary(w io.Writer, s *api.Summary) {
	fmt.Fprintf(w, "Total Recommendations: %d\n", s.TotalRecommendations)
	fmt.Fprintln(w, "Popular Categories:")
	printCounts(w, s.PopularCategories)
	fmt.Fprintln(w, "Time Analysis:")
	printCounts(w, s.TimeBasedAnalysis)
}

// printCounts lists counts descending, ties by name.
func printCounts(w io.Writer, m map[string]int) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if m[keys[i]] != m[keys[j]] {
			return m[keys[i]] > m[keys[j]]
		}
		return keys[i] < keys[j]
	})
	for _, k := range keys {
		fmt.Fprintf(w, "  %s: %d\n", k, m[k])
	}
}
