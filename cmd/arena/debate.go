package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/alienxp03/arena/internal/core"
	"github.com/alienxp03/arena/internal/engine"
	"github.com/alienxp03/arena/internal/export"
	"github.com/alienxp03/arena/internal/ingest"
	"github.com/alienxp03/arena/internal/sanitize"
)

const formatText = "text"

type debateOptions struct {
	affirmativeFiles []string
	negativeFiles    []string
	affirmative      string
	negative         string
	rounds           int
	style            string
	format           string
	output           string
	useMock          bool
}

func newDebateCmd(a *app) *cobra.Command {
	o := &debateOptions{}

	cmd := &cobra.Command{
		Use:   "debate [topic]",
		Short: "Run a debate and print the transcript",
		Long: `Run a debate on the given topic and print the transcript and summary.

Examples:
  arena debate "Cities should ban private cars"
  arena debate "Nuclear power is green" -A pro.pdf -N con.docx -r 2
  arena debate "Remote work" --affirmative claude/opus --negative genai -f markdown -o debate.md
  arena debate "Tabs over spaces" --mock`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDebate(cmd, strings.Join(args, " "), o)
		},
	}

	f := cmd.Flags()
	f.StringSliceVarP(&o.affirmativeFiles, "affirmative-file", "A", nil, "Background document for the affirmative (repeatable)")
	f.StringSliceVarP(&o.negativeFiles, "negative-file", "N", nil, "Background document for the negative (repeatable)")
	f.StringVar(&o.affirmative, "affirmative", "", "Affirmative participant as provider[/model] (default from config)")
	f.StringVar(&o.negative, "negative", "", "Negative participant as provider[/model] (default from config)")
	f.IntVarP(&o.rounds, "rounds", "r", core.DefaultRounds, "Number of rounds")
	f.StringVarP(&o.style, "style", "s", "", "Debate style (default from config)")
	f.StringVarP(&o.format, "format", "f", formatText, "Output format: text, markdown, json, pdf")
	f.StringVarP(&o.output, "output", "o", "", "Write to file instead of stdout")
	f.BoolVar(&o.useMock, "mock", false, "Use the offline mock provider for both sides")
	return cmd
}

func (a *app) runDebate(cmd *cobra.Command, topic string, o *debateOptions) error {
	if !cmd.Flags().Changed("rounds") {
		o.rounds = a.cfg.Debate.Rounds
	}
	if o.style != "" {
		a.cfg.Debate.Style = o.style
	}
	if o.affirmative != "" {
		a.cfg.Participants.Affirmative = o.affirmative
	}
	if o.negative != "" {
		a.cfg.Participants.Negative = o.negative
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}
	if o.format == string(export.FormatPDF) && o.output == "" {
		return errors.New("pdf output requires --output")
	}

	var exporter export.Exporter
	if o.format != formatText {
		var err error
		if exporter, err = export.GetExporter(export.Format(o.format)); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	req, err := a.buildRequest(ctx, cmd.ErrOrStderr(), topic, o)
	if err != nil {
		return err
	}

	registry := a.registry(o.useMock)
	aff, neg, err := a.cfg.BuildParticipants(registry)
	if err != nil {
		return err
	}

	progress := cmd.ErrOrStderr()
	opts := append(a.cfg.EngineOptions(a.logger), engine.WithTurnCallback(func(turn core.TurnRecord) {
		fmt.Fprintf(progress, "  %s done\n", turnHeading(turn))
	}))
	eng, err := engine.New(aff, neg, opts...)
	if err != nil {
		return err
	}

	fmt.Fprintf(progress, "Debating %q: %s vs %s, %d round(s)\n", topic, aff, neg, req.Rounds)
	result := eng.RunDebate(ctx, req)
	if result == nil {
		return errors.New("failed to generate debate")
	}
	result = sanitize.Result(result)

	out := cmd.OutOrStdout()
	if o.output != "" {
		file, err := os.Create(o.output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer file.Close()
		out = file
	}

	if exporter == nil {
		return writeText(out, result)
	}
	doc := &export.Document{
		Result:      result,
		Affirmative: aff.String(),
		Negative:    neg.String(),
		Style:       a.cfg.Debate.Style,
		CreatedAt:   time.Now(),
	}
	if err := exporter.Export(doc, out); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	if o.output != "" {
		fmt.Fprintf(progress, "Wrote %s\n", o.output)
	}
	return nil
}

func (a *app) buildRequest(ctx context.Context, warn io.Writer, topic string, o *debateOptions) (core.DebateRequest, error) {
	affFiles, err := ingest.FromPaths(o.affirmativeFiles)
	if err != nil {
		return core.DebateRequest{}, err
	}
	negFiles, err := ingest.FromPaths(o.negativeFiles)
	if err != nil {
		return core.DebateRequest{}, err
	}

	req := core.NewDebateRequest(topic, ingest.ExtractAll(ctx, affFiles), ingest.ExtractAll(ctx, negFiles))
	req.Rounds = o.rounds
	if err := req.Validate(); err != nil {
		return core.DebateRequest{}, err
	}
	if !req.DocumentsBalanced() {
		fmt.Fprintln(warn, "Warning: only one side has background documents; the debate may be unbalanced.")
	}
	return req, nil
}

func turnHeading(turn core.TurnRecord) string {
	return fmt.Sprintf("Round %d - %s", turn.Round, turn.Side.Title())
}

func writeText(w io.Writer, result *core.Result) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n\n", result.Topic)
	for _, turn := range result.Transcript {
		fmt.Fprintf(&sb, "%s\n%s\n\n", turnHeading(turn), turn.Text)
	}
	fmt.Fprintf(&sb, "Summary\n%s\n", result.Summary)
	_, err := io.WriteString(w, sb.String())
	return err
}
