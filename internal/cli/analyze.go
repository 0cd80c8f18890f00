package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/meeting-digest/internal/logger"
	"github.com/nguyentantai21042004/meeting-digest/internal/processor"
	"github.com/nguyentantai21042004/meeting-digest/internal/transcript"
)

type analyzeFlags struct {
	provider  string
	model     string
	maxTokens int
	strategy  string
	json      bool
}

func newAnalyzeCmd() *cobra.Command {
	var flags analyzeFlags
	cmd := &cobra.Command{
		Use:   "analyze FILE",
		Short: "Show how a transcript would be chunked, without calling a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, flags)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.provider, "provider", "", "provider whose context limits apply (default from config)")
	f.StringVar(&flags.model, "model", "", "model whose context limits apply (default from config)")
	f.IntVar(&flags.maxTokens, "max-tokens", 0, "cap on tokens per chunk")
	f.StringVar(&flags.strategy, "strategy", "", "force a chunking strategy")
	f.BoolVar(&flags.json, "json", false, "print the plan as JSON")
	return cmd
}

// chunkSummary is the JSON view of one planned chunk.
type chunkSummary struct {
	transcript.ChunkMetadata
	Sections int `json:"sections"`
}

func runAnalyze(cmd *cobra.Command, args []string, flags analyzeFlags) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := processingOptions(cfg)
	if flags.provider != "" {
		opts.Provider = flags.provider
	}
	if flags.model != "" {
		opts.Model = flags.model
	}
	if flags.maxTokens > 0 {
		opts.MaxTokensPerChunk = flags.maxTokens
	}
	if flags.strategy != "" {
		opts.Strategy = transcript.Strategy(flags.strategy)
	}

	t, err := transcript.LoadFile(args[0])
	if err != nil {
		printError(cmd, err, cfg.Output.Language)
		return err
	}
	v := transcript.Validator{RequireSpeakers: cfg.Chunking.RequireSpeakers}
	if err := v.Validate(t); err != nil {
		printError(cmd, err, cfg.Output.Language)
		return err
	}

	a, err := newApp(cfg, logger.NewNop(), false)
	if err != nil {
		return err
	}
	plan, err := a.processor.Plan(t, opts)
	if err != nil {
		printError(cmd, err, cfg.Output.Language)
		return err
	}

	if flags.json {
		return printPlanJSON(cmd, plan)
	}
	printPlan(cmd, t, plan, opts)
	return nil
}

func printPlanJSON(cmd *cobra.Command, plan processor.Plan) error {
	out := struct {
		Analysis any            `json:"analysis"`
		Strategy string         `json:"strategy,omitempty"`
		Chunks   []chunkSummary `json:"chunks"`
	}{Analysis: plan.Analysis, Strategy: string(plan.Strategy), Chunks: []chunkSummary{}}

	for _, c := range plan.Chunks {
		out.Chunks = append(out.Chunks, chunkSummary{ChunkMetadata: c.Metadata, Sections: len(c.ContentSections())})
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printPlan(cmd *cobra.Command, t *transcript.Transcript, plan processor.Plan, opts processor.Options) {
	out := cmd.OutOrStdout()
	an := plan.Analysis
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(out, "%s %s (%d sections, %d speakers, %s)\n", bold("Transcript:"), t.ID,
		len(t.Sections), len(t.Metadata.Participants), transcript.FormatClock(t.Metadata.Duration))
	fmt.Fprintf(out, "%s %s / %s (context %d tokens)\n", bold("Model:     "), opts.Provider, opts.Model, an.ContextLimit)
	fmt.Fprintf(out, "%s %d (budget %d per request)\n", bold("Tokens:    "), an.TokenCount, an.ChunkBudget)
	fmt.Fprintf(out, "%s %s\n", bold("Complexity:"), an.Complexity)

	if !an.NeedsChunking {
		fmt.Fprintf(out, "%s %s\n", bold("Chunking:  "), color.GreenString("not needed, fits in one request"))
		return
	}
	fmt.Fprintf(out, "%s %s\n", bold("Chunking:  "),
		color.YellowString("needed, %d chunks using %s (recommended %s)", len(plan.Chunks), plan.Strategy, an.RecommendedStrategy))

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTIME\tTOKENS\tSECTIONS\tSPEAKERS")
	for _, c := range plan.Chunks {
		m := c.Metadata
		sections := fmt.Sprintf("%d", len(c.ContentSections()))
		if m.HasOverlap {
			sections += fmt.Sprintf(" (+%d context)", m.OverlapSections)
		}
		fmt.Fprintf(tw, "%d\t%s-%s\t%d\t%s\t%s\n", m.ChunkIndex+1,
			transcript.FormatClock(m.TimeRange.Start), transcript.FormatClock(m.TimeRange.End),
			m.TokenCount, sections, strings.Join(m.Speakers, ", "))
	}
	tw.Flush()
}
