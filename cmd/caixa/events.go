package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/caixa/internal/cli"
	"github.com/Veraticus/caixa/internal/events"
	"github.com/Veraticus/caixa/internal/model"
)

func eventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect ledger change events",
	}

	var pattern string
	watch := &cobra.Command{
		Use:   "watch",
		Short: "Print change events as they are published",
		Long: `Bind a temporary queue to the events exchange and print every event
whose routing key matches --pattern, for example "transacao.*" or
"categoria.removed". Requires events.url.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !appConfig.Events.Enabled() {
				return fmt.Errorf("events.url is not configured")
			}

			publisher, err := events.Dial(cmd.Context(), appConfig.Events.URL, appConfig.Events.Exchange, appConfig.Events.Retry)
			if err != nil {
				return err
			}
			defer func() { _ = publisher.Close() }()

			out := cmd.OutOrStdout()
			err = publisher.Watch(cmd.Context(), pattern, func(e model.Event) error {
				_, err := fmt.Fprintf(out, "%s %s %s\n",
					cli.SubtleStyle.Render(e.Timestamp.Local().Format("2006-01-02 15:04:05")),
					e.RoutingKey(),
					cli.TitleStyle.UnsetMargins().Render(fmt.Sprintf("#%d", e.ID)))
				return err
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	watch.Flags().StringVarP(&pattern, "pattern", "p", "#", "routing key pattern")

	cmd.AddCommand(watch)
	return cmd
}
