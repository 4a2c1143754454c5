package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/danielhkuo/trend-off/apiclient"
	"github.com/danielhkuo/trend-off/models"
	"github.com/danielhkuo/trend-off/round"
)

func main() {
	fs := flag.NewFlagSet("judge", flag.ExitOnError)
	server := fs.String("server", "http://localhost:3318", "TrendOff API base URL")
	quota := fs.Int("quota", 0, "Votes per round (default: the server's ROUND_QUOTA)")
	fs.Parse(os.Args[1:])

	ctx := context.Background()
	client := apiclient.New(*server)
	ctrl := round.NewController(client, resolveQuota(ctx, client, *quota))

	if err := run(ctx, ctrl, os.Stdin, os.Stdout); err != nil {
		slog.Error("judging failed", "error", err)
		os.Exit(1)
	}
}

type settingsSource interface {
	RoundSettings(ctx context.Context) (models.RoundSettings, error)
}

// resolveQuota prefers an explicit flag, then the server's setting, then
// round.DefaultQuota when the server cannot be asked.
func resolveQuota(ctx context.Context, src settingsSource, flagQuota int) int {
	if flagQuota > 0 {
		return flagQuota
	}
	settings, err := src.RoundSettings(ctx)
	if err != nil || settings.Quota < 1 {
		slog.Warn("using default round quota", "quota", round.DefaultQuota, "error", err)
		return round.DefaultQuota
	}
	return settings.Quota
}

// run drives one round from line-oriented input: "1" or "2" picks a winner,
// "s" skips, "r" retries after an error, "q" quits.
func run(ctx context.Context, ctrl *round.Controller, in io.Reader, out io.Writer) error {
	if err := ctrl.Start(ctx); err != nil {
		fmt.Fprintf(out, "could not load a pair: %v (type r to retry)\n", err)
	}

	scanner := bufio.NewScanner(in)
	for ctrl.State() != round.Complete {
		if ctrl.State() == round.PresentingPair {
			printPair(out, ctrl)
		}
		fmt.Fprint(out, "> ")

		if !scanner.Scan() {
			return scanner.Err()
		}

		var err error
		switch strings.TrimSpace(scanner.Text()) {
		case "1":
			err = ctrl.Choose(ctx, 0)
		case "2":
			err = ctrl.Choose(ctx, 1)
		case "s":
			err = ctrl.Skip(ctx)
		case "r":
			err = ctrl.Retry(ctx)
		case "q":
			return nil
		default:
			fmt.Fprintln(out, "enter 1, 2, s (too tough), r (retry) or q")
			continue
		}
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}

	for _, r := range ctrl.Results() {
		fmt.Fprintf(out, "%s %d -> %d beat %s %d -> %d\n",
			r.Winner.ID, r.Winner.OldRating, r.Winner.NewRating,
			r.Loser.ID, r.Loser.OldRating, r.Loser.NewRating)
	}
	if ctrl.Exhausted() {
		fmt.Fprintln(out, "no more pairs to judge")
	}
	fmt.Fprintf(out, "round complete: %d/%d judged\n", ctrl.Judged(), ctrl.Quota())
	return nil
}

func printPair(out io.Writer, ctrl *round.Controller) {
	fmt.Fprintf(out, "[%d/%d]\n", ctrl.Judged(), ctrl.Quota())
	for i, sub := range ctrl.Pair() {
		fmt.Fprintf(out, "  %d) %s  rating %d  %s\n", i+1, label(sub), sub.Rating, preview(sub))
	}
}

func label(sub models.Submission) string {
	if sub.Title != nil && *sub.Title != "" {
		return *sub.Title
	}
	return sub.ID
}

func preview(sub models.Submission) string {
	img := sub.Image
	if sub.GeneratedImage != nil {
		img = *sub.GeneratedImage
	}
	if strings.HasPrefix(img, "data:") {
		if i := strings.Index(img, ","); i > 0 {
			return img[:i] + ",..."
		}
	}
	return img
}
