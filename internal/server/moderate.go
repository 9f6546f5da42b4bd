// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"codeberg.org/oliverandrich/disney-bounding/internal/config"
	"codeberg.org/oliverandrich/disney-bounding/internal/models"
	"codeberg.org/oliverandrich/disney-bounding/internal/services/outfits"
	"github.com/urfave/cli/v3"
)

// ModerateCommand returns the "moderate" command for reviewing submissions
// from the shell.
func ModerateCommand() *cli.Command {
	return &cli.Command{
		Name:  "moderate",
		Usage: "Review outfit submissions",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List submissions in a moderation status",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "status",
						Value: string(models.StatusPending),
						Usage: "Status to list (pending, approved, rejected)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withOutfits(ctx, cmd, func(svc *outfits.Service) error {
						return listSubmissions(ctx, cmd.Root().Writer, svc, cmd.String("status"))
					})
				},
			},
			moderateAction("approve", "Approve a submission", models.StatusApproved),
			moderateAction("reject", "Reject a submission", models.StatusRejected),
		},
	}
}

func moderateAction(name, usage string, status models.OutfitStatus) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "ID",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id := cmd.Args().First()
			if id == "" {
				return errors.New("submission id is required")
			}
			return withOutfits(ctx, cmd, func(svc *outfits.Service) error {
				return setSubmissionStatus(ctx, cmd.Root().Writer, svc, id, status)
			})
		},
	}
}

// withOutfits opens the configured record store for the duration of fn.
func withOutfits(ctx context.Context, cmd *cli.Command, fn func(*outfits.Service) error) error {
	cfg := config.NewFromCLI(cmd)
	setupLogger(cfg.Log.Level, cfg.Log.Format)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	backend, err := OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close() }()

	return fn(outfits.NewService(backend.Store, nil))
}

func listSubmissions(ctx context.Context, w io.Writer, svc *outfits.Service, status string) error {
	list, err := svc.ListForModeration(ctx, status)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		_, err = fmt.Fprintln(w, "no submissions")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tCHARACTER\tOUTFIT\tSUBMITTER\tSTATUS\tCREATED")
	for i := range list {
		o := &list[i]
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			o.ID, o.CharacterSlug, o.OutfitName, o.SubmitterName, o.Status,
			o.CreatedAt.UTC().Format(time.DateTime))
	}
	return tw.Flush()
}

func setSubmissionStatus(ctx context.Context, w io.Writer, svc *outfits.Service, id string, status models.OutfitStatus) error {
	outfit, err := svc.SetStatus(ctx, id, status)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s %s\n", outfit.ID, outfit.Status)
	return err
}
