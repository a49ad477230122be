package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/dinosave/remix-studio/internal/assets"
	"github.com/dinosave/remix-studio/internal/logging"
	"github.com/dinosave/remix-studio/internal/workspace"
)

func newAssetsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "assets",
		Short: "List overlay and audio assets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			ws := workspace.New(cfg.DataDir())
			store := assets.NewStore(assets.NewResolver(ws.AssetsDir()), "/assets")
			out := cmd.OutOrStdout()

			for _, kind := range []assets.Kind{assets.KindOverlay, assets.KindAudio} {
				records, err := store.List(kind)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s (%d)\n", kind, len(records))
				if len(records) > 0 {
					fmt.Fprintln(out, renderAssetTable(records, logging.IsTerminal(out)))
				}
			}
			return nil
		},
	}
}

func renderAssetTable(records []assets.Record, pretty bool) string {
	tw := table.NewWriter()
	if pretty {
		tw.SetStyle(table.StyleRounded)
	} else {
		tw.SetStyle(table.StyleLight)
	}
	tw.AppendHeader(table.Row{"ID", "Filename", "Type", "Size", "URL"})
	for _, r := range records {
		typ := r.Type
		if typ == "" {
			typ = "-"
		}
		tw.AppendRow(table.Row{r.ID, r.Filename, typ, formatSize(r.Size), r.URL})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

func formatSize(n int64) string {
	if n < 0 {
		return strconv.FormatInt(n, 10)
	}
	return humanize.Bytes(uint64(n))
}
