package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pavelanni/mockinterview/internal/analysis"
	"github.com/pavelanni/mockinterview/internal/export"
	"github.com/pavelanni/mockinterview/internal/feedback"
	appI18n "github.com/pavelanni/mockinterview/internal/i18n"
	"github.com/pavelanni/mockinterview/internal/model"
	"github.com/pavelanni/mockinterview/internal/session"
)

const quitCommand = ":q"

func practiceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "practice",
		Short: "Run an interactive practice interview in the terminal",
		RunE:  runPractice,
	}
	f := cmd.Flags()
	f.StringP("role", "r", "Data Scientist", "Role to practice for")
	f.IntP("limit", "n", 0, "Number of questions (0 = all questions for the role)")
	f.Uint64("seed", 0, "Shuffle seed for a reproducible question order (0 = random)")
	f.StringSliceP("format", "f", []string{"json", "html"}, "Report formats to write (json, html, pdf)")
	f.StringP("out", "o", ".", "Directory for report files")
	f.Duration("pdf-timeout", 60*time.Second, "Time allowed for PDF rendering")
	f.StringP("lang", "l", "en", "Interface language (en, ru)")
	addBankFlags(f)
	addLogFlags(f)
	return cmd
}

func runPractice(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	b, err := loadBank(v)
	if err != nil {
		return err
	}
	weights, resources, err := loadTables(v)
	if err != nil {
		return err
	}
	catalog, err := appI18n.Load(v.GetString("lang"))
	if err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}
	ctx := catalog.Context(cmd.Context())

	cfg := model.InterviewConfig{
		Limit:   v.GetInt("limit"),
		Formats: v.GetStringSlice("format"),
		OutDir:  v.GetString("out"),
	}
	formats, err := export.ParseFormats(cfg.Formats)
	if err != nil {
		return err
	}

	role := v.GetString("role")
	opts := []session.Option{session.WithLimit(cfg.Limit)}
	if seed := v.GetUint64("seed"); seed != 0 {
		opts = append(opts, session.WithSeed(seed))
	}
	sess, err := session.New(b, role, opts...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := interview(ctx, sess, cmd.InOrStdin(), out); err != nil {
		return err
	}

	responses := sess.Responses()
	if len(responses) == 0 {
		fmt.Fprintln(out, appI18n.T(ctx, "NoResponses"))
		return nil
	}

	report := analysis.New(responses, role, weights).GenerateReport()
	fb := feedback.New(report, resources).GenerateFeedback()
	printSummary(ctx, out, report, fb)

	var printer export.Printer
	if slices.Contains(formats, export.FormatPDF) {
		printer = export.ChromePrinter{Timeout: v.GetDuration("pdf-timeout")}
	}
	doc := export.Document{
		Role:        role,
		GeneratedAt: time.Now(),
		Report:      report,
		Feedback:    fb,
	}
	paths, err := export.New(cfg.OutDir, printer).Export(ctx, doc, formats)
	for _, p := range paths {
		fmt.Fprintln(out, appI18n.Td(ctx, "ReportWritten", map[string]any{"Path": p}))
	}
	return err
}

// interview serves every question in order, reading one answer line per
// question. An empty line skips the question; ":q" or end of input stops.
func interview(ctx context.Context, sess *session.Session, in io.Reader, out io.Writer) error {
	defer sess.Finish()

	total := sess.Len()
	fmt.Fprintln(out, appI18n.T(ctx, "AppTitle"))
	fmt.Fprintln(out, appI18n.Tp(ctx, "QuestionsInSession", total, map[string]any{"Role": sess.Role()}))

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for i := 0; ; i++ {
		q, ok := sess.Question(i)
		if !ok {
			break
		}
		fmt.Fprintf(out, "\n%s\n%s\n%s\n> ",
			appI18n.Td(ctx, "QuestionN", map[string]any{"N": i + 1, "Total": total, "Topic": q.Topic}),
			q.Text,
			appI18n.T(ctx, "AnswerPrompt"),
		)
		if !sc.Scan() {
			break
		}
		answer := strings.TrimSpace(sc.Text())
		if answer == quitCommand {
			break
		}
		if answer == "" {
			fmt.Fprintln(out, appI18n.T(ctx, "Skipped"))
			continue
		}

		rec, err := sess.SubmitAnswer(q.ID, q.Topic, answer)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, appI18n.Td(ctx, "Evaluation", map[string]any{
			"Label":    rec.Label,
			"Score":    fmt.Sprintf("%.3f", rec.Score),
			"Feedback": rec.Suggestion,
		}))
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read answer: %w", err)
	}
	return nil
}

func printSummary(ctx context.Context, out io.Writer, report model.Report, fb model.Feedback) {
	fmt.Fprintf(out, "\n%s\n", appI18n.T(ctx, "SummaryTitle"))
	fmt.Fprintf(out, "%s: %.2f\n", appI18n.T(ctx, "OverallScore"), report.OverallScore)
	fmt.Fprintf(out, "%s: %.2f\n", appI18n.T(ctx, "ConfidenceScore"), report.ConfidenceScore)
	fmt.Fprintf(out, "%s: %s\n", appI18n.T(ctx, "ReadinessLevel"), fb.Readiness.Level)

	fmt.Fprintf(out, "\n%s:\n", appI18n.T(ctx, "TopicScores"))
	for _, e := range report.TopicScores {
		fmt.Fprintf(out, "  %s: %.2f\n", e.Key, e.Value)
	}
	fmt.Fprintf(out, "\n%s: %s\n", appI18n.T(ctx, "Strengths"), strings.Join(report.Classification.Strong, ", "))
	fmt.Fprintf(out, "%s: %s\n", appI18n.T(ctx, "WeakTopics"), strings.Join(report.Classification.Weak, ", "))
	fmt.Fprintf(out, "\n%s\n%s\n", fb.OverallFeedback, fb.ConfidenceFeedback)
	fmt.Fprintf(out, "\n%s:\n%s\n", appI18n.T(ctx, "ImprovementPlan"), fb.ImprovementPlan)
}
