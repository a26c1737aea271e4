// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gogpu/remotedisplay/surface"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Show which configuration each surface provider would select",
	Long: `Run configuration selection for the configured profile against every
registered surface provider and print the result.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return probe(cmd.Context(), cmd.OutOrStdout(), cfg.Profile.Request(), surface.List())
	},
}

func init() {
	rootCmd.AddCommand(probeCmd)
}

func probe(ctx context.Context, out io.Writer, req surface.Request, providers []string) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "profile\t%s\n", req)
	fmt.Fprintln(tw, "PROVIDER\tRESULT")

	for _, name := range providers {
		q, err := surface.NewQueryByName(name)
		if err != nil {
			fmt.Fprintf(tw, "%s\tunavailable: %v\n", name, err)
			continue
		}
		c, err := surface.Select(ctx, req, q)
		if err != nil {
			fmt.Fprintf(tw, "%s\t%v\n", name, err)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s (format %v)\n", name, surface.Describe(c), surface.FormatOf(c))
	}
	return tw.Flush()
}
