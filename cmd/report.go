package cmd

import (
	"context"
	"os"
	"time"

	"github.com/babushkian/OTBot/db"
	"github.com/babushkian/OTBot/model"
	"github.com/babushkian/OTBot/photo"
	"github.com/babushkian/OTBot/report"
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

// ReportCommand returns the CLI command that writes an HTML report or the statistics
func ReportCommand() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Write an HTML report of violations, or statistics with --mode stats",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "mode",
				Aliases: []string{"m"},
				Usage:   "status, number, today, month, range or stats",
				Value:   string(report.ModeStatus),
			},
			&cli.StringFlag{
				Name:    "status",
				Aliases: []string{"s"},
				Usage:   "pending_review, active, corrected or rejected",
				Value:   string(model.StatusActive),
			},
			&cli.IntFlag{
				Name:    "number",
				Aliases: []string{"n"},
				Usage:   "Violation number for --mode number",
			},
			&cli.IntFlag{
				Name:  "year",
				Usage: "Year of the violation number (default: this year)",
			},
			&cli.StringFlag{
				Name:  "from",
				Usage: "First day for --mode range, dd-mm-yyyy",
			},
			&cli.StringFlag{
				Name:  "to",
				Usage: "Last day for --mode range, dd-mm-yyyy",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Write the report to `FILE`",
				Value:   "report.html",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			conn, err := db.Open(cfg.Storage.DBPath)
			if err != nil {
				return err
			}
			defer conn.Close()

			photos := photo.NewStore(cfg.Storage.DataDir, db.NewPhotoRepository(conn))
			renderer := report.NewRenderer(photos, cfg.Layout.TargetRatio)
			return writeReport(c.Context, db.NewSubmissionRepository(conn), renderer, queryFromFlags(c), c.String("out"), time.Now())
		},
	}
}

func queryFromFlags(c *cli.Context) report.Query {
	return report.Query{
		Mode:   report.Mode(c.String("mode")),
		Status: model.Status(c.String("status")),
		Number: c.Int("number"),
		Year:   c.Int("year"),
		From:   c.String("from"),
		To:     c.String("to"),
	}
}

// writeReport writes the selection q describes to out. Nothing is written when the
// selection is empty.
func writeReport(ctx context.Context, src report.Source, renderer *report.Renderer, q report.Query, out string, now time.Time) error {
	sel, err := report.Select(ctx, src, q, now)
	if err != nil {
		return err
	}
	if len(sel.Subs) == 0 {
		log.Info().Str("mode", string(q.Mode)).Msg(sel.Empty)
		return nil
	}

	var data []byte
	if q.Mode == report.ModeStats {
		data = []byte(report.Summarize(sel.Subs).Text(sel.Title) + "\n")
	} else {
		doc, err := renderer.Render(sel.Title, sel.Subs...)
		if err != nil {
			return err
		}
		data = doc.Data
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return errors.Wrap(err, "write report")
	}
	log.Info().Int("submissions", len(sel.Subs)).Str("file", out).Msg("report written")
	return nil
}
