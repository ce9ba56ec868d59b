package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/alienxp03/arena/internal/style"
	"github.com/alienxp03/arena/provider"
)

func newProvidersCmd(a *app) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "providers",
		Short: "List configured model providers",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := a.registry(false)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			header := "NAME\tDISPLAY\tSTATUS"
			if check {
				header += "\tHEALTH\tLATENCY"
			}
			fmt.Fprintln(w, header)

			for _, p := range registry.List() {
				display := p.Name()
				if d, ok := p.(interface{ DisplayName() string }); ok {
					display = d.DisplayName()
				}
				status := "not installed"
				if p.Available() {
					status = "available"
				}
				line := fmt.Sprintf("%s\t%s\t%s", p.Name(), display, status)

				if check {
					hs := provider.Check(cmd.Context(), p)
					health := "ok"
					if !hs.Available {
						health = "failed: " + firstLine(hs.Error)
					}
					line += fmt.Sprintf("\t%s\t%s", health, hs.ResponseTime.Round(time.Millisecond))
				}
				fmt.Fprintln(w, line)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Probe each provider with a health check")
	return cmd
}

func newStylesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "styles",
		Short: "List debate styles",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tDESCRIPTION")
			for _, s := range append(style.DefaultStyles(), a.cfg.Styles...) {
				marker := ""
				if s.ID == a.cfg.Debate.Style {
					marker = " (default)"
				}
				fmt.Fprintf(w, "%s%s\t%s\t%s\n", s.ID, marker, s.Name, s.Description)
			}
			return w.Flush()
		},
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	if len(line) > 60 {
		line = line[:57] + "..."
	}
	return line
}
