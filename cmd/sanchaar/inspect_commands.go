package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"sanchaar/internal/content"
	"sanchaar/internal/services"
	"sanchaar/internal/store"
)

func newInspectCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newShowCommand(ctx),
		newHistoryCommand(ctx),
		newListCommand(ctx),
		newStatsCommand(ctx),
	}
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var version int64

	cmd := &cobra.Command{
		Use:   "show <content-id>",
		Short: "Show the latest (or a specific) version of a content item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				var (
					item *content.Item
					err  error
				)
				if cmd.Flags().Changed("version") {
					item, err = st.AtVersion(cmd.Context(), args[0], version)
				} else {
					item, err = st.Latest(cmd.Context(), args[0])
				}
				if err != nil {
					return err
				}
				return ctx.emitItem(cmd, item)
			})
		},
	}

	cmd.Flags().Int64Var(&version, "version", 0, "Exact version to show")
	return cmd
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "history <content-id>",
		Short: "List every recorded version of a content item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				items, err := st.History(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return ctx.emit(cmd, items, func(out io.Writer) error {
					colorize := shouldColorize(out)
					rows := make([][]string, 0, len(items))
					for _, item := range items {
						rows = append(rows, []string{
							strconv.FormatInt(item.Version, 10),
							renderStatus(item.Status, colorize),
							formatTime(item.RecordedAt),
							historyNote(item),
						})
					}
					_, err := fmt.Fprintln(out, renderTable(
						[]string{"Version", "Status", "Recorded", "Note"},
						rows,
						[]columnAlignment{alignRight},
					))
					return err
				})
			})
		},
	}
}

func historyNote(item *content.Item) string {
	switch {
	case item.FailureReason != "":
		return item.FailureReason
	case len(item.DistributionResults) > 0:
		succeeded := 0
		for _, outcome := range item.DistributionResults {
			if outcome.Succeeded {
				succeeded++
			}
		}
		return fmt.Sprintf("%d/%d outcomes succeeded", succeeded, len(item.DistributionResults))
	case len(item.Renditions) > 0:
		return fmt.Sprintf("%d renditions", len(item.Renditions))
	case item.Moderation != nil:
		return fmt.Sprintf("faces=%d text=%s", item.Moderation.FacesDetected, yesNo(item.Moderation.TextDetected))
	default:
		return ""
	}
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var statuses []string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List content items by their latest version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := store.ListFilter{Limit: limit}
			for _, raw := range statuses {
				status, ok := content.ParseStatus(raw)
				if !ok {
					return services.Wrap(services.ErrValidation, "list", "status", fmt.Sprintf("unknown status %q", raw), nil)
				}
				filter.Statuses = append(filter.Statuses, status)
			}
			return ctx.withStore(func(st *store.Store) error {
				items, err := st.ListLatest(cmd.Context(), filter)
				if err != nil {
					return err
				}
				return ctx.emit(cmd, items, func(out io.Writer) error {
					if len(items) == 0 {
						_, err := fmt.Fprintln(out, "No content items found")
						return err
					}
					colorize := shouldColorize(out)
					rows := make([][]string, 0, len(items))
					for _, item := range items {
						rows = append(rows, []string{
							item.ContentID,
							strconv.FormatInt(item.Version, 10),
							renderStatus(item.Status, colorize),
							fallback(item.UserID, content.UnknownUser),
							formatTime(item.RecordedAt),
						})
					}
					_, err := fmt.Fprintln(out, renderTable(
						[]string{"Content", "Version", "Status", "User", "Updated"},
						rows,
						[]columnAlignment{alignLeft, alignRight},
					))
					return err
				})
			})
		},
	}

	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Only show items whose latest status matches (repeatable)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of items to show (0 for all)")
	return cmd
}

func newStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count content items by latest status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				stats, err := st.Stats(cmd.Context())
				if err != nil {
					return err
				}
				return ctx.emit(cmd, stats, func(out io.Writer) error {
					colorize := shouldColorize(out)
					var rows [][]string
					for _, status := range content.AllStatuses() {
						if n := stats.ByStatus[status]; n > 0 {
							rows = append(rows, []string{renderStatus(status, colorize), strconv.Itoa(n)})
						}
					}
					fmt.Fprintln(out, renderTable([]string{"Status", "Items"}, rows, []columnAlignment{alignLeft, alignRight}))
					_, err := fmt.Fprintf(out, "Items: %d  Versions: %d\n", stats.Items, stats.Versions)
					return err
				})
			})
		},
	}
}
