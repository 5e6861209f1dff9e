package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pavelanni/mockinterview/internal/analysis"
	"github.com/pavelanni/mockinterview/internal/bank"
	"github.com/pavelanni/mockinterview/internal/feedback"
	"github.com/pavelanni/mockinterview/internal/scoring"
	"github.com/pavelanni/mockinterview/internal/store"
)

const defaultQuestions = "questions/questions.csv"

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "mockinterview",
		Short:        "Mock interview practice with answer scoring and performance reports",
		SilenceUsage: true,
	}

	practice := practiceCmd()
	root.AddCommand(practice, serveCmd(), evaluateCmd(), importCmd(), rolesCmd())

	// Make "practice" the default when no subcommand is given.
	root.RunE = practice.RunE
	root.Flags().AddFlagSet(practice.Flags())

	return root
}

func evaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score a single answer against a question's reference answer",
		RunE:  runEvaluate,
	}
	f := cmd.Flags()
	f.String("id", "", "Question ID (required)")
	f.String("answer", "", "Answer text (required)")
	addBankFlags(f)
	addLogFlags(f)

	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("answer")

	return cmd
}

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import FILE...",
		Short: "Import question bank CSV files into the database",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runImport,
	}
	f := cmd.Flags()
	f.String("db", "mockinterview.db", "SQLite database path")
	addLogFlags(f)
	return cmd
}

func rolesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roles",
		Short: "List roles in the question bank",
		RunE:  runRoles,
	}
	f := cmd.Flags()
	addBankFlags(f)
	addLogFlags(f)
	return cmd
}

func addBankFlags(f *pflag.FlagSet) {
	f.String("db", "", "SQLite database holding the question bank (CSV files are imported into it first)")
	f.StringSliceP("questions", "q", []string{defaultQuestions}, "Paths to question bank CSV files (repeatable)")
}

func addLogFlags(f *pflag.FlagSet) {
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("MOCKINTERVIEW")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("mockinterview")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/mockinterview")
	v.AddConfigPath("/etc/mockinterview")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

// loadBank builds the question bank from --db, importing any --questions
// files into it first, or from the CSV files alone when no database is set.
func loadBank(v *viper.Viper) (*bank.Bank, error) {
	paths := v.GetStringSlice("questions")
	dbPath := v.GetString("db")

	if dbPath == "" {
		if len(paths) == 0 {
			return nil, errors.New("no question bank: set --questions or --db")
		}
		questions, err := bank.LoadCSV(paths...)
		if err != nil {
			return nil, fmt.Errorf("load questions: %w", err)
		}
		b, err := bank.New(questions)
		if err != nil {
			return nil, fmt.Errorf("load questions: %w", err)
		}
		slog.Debug("loaded question bank", "files", paths, "questions", b.Len())
		return b, nil
	}

	db, err := store.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	var imports []string
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) && path == defaultQuestions {
			continue
		}
		imports = append(imports, path)
	}
	if len(imports) > 0 {
		if _, err := db.ImportCSVFiles(imports...); err != nil {
			return nil, err
		}
	}
	b, err := db.Bank()
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	slog.Debug("loaded question bank", "db", dbPath, "questions", b.Len())
	return b, nil
}

// loadTables returns the role weights and resource library, replacing the
// built-in tables with "weights" and "resources" from the config file when set.
func loadTables(v *viper.Viper) (analysis.Weights, feedback.Resources, error) {
	weights := analysis.DefaultWeights
	if v.IsSet("weights") {
		var w analysis.Weights
		if err := v.UnmarshalKey("weights", &w); err != nil {
			return nil, nil, fmt.Errorf("parse weights: %w", err)
		}
		weights = w
	}

	resources := feedback.DefaultResources
	if v.IsSet("resources") {
		var r feedback.Resources
		if err := v.UnmarshalKey("resources", &r); err != nil {
			return nil, nil, fmt.Errorf("parse resources: %w", err)
		}
		resources = r
	}
	return weights, resources, nil
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	b, err := loadBank(v)
	if err != nil {
		return err
	}

	res := scoring.NewEvaluator(b).EvaluateResponse(v.GetString("id"), v.GetString("answer"))
	data, err := json.MarshalIndent(res, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

func runImport(cmd *cobra.Command, args []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	results, err := db.ImportCSVFiles(args...)
	if err != nil {
		return err
	}
	for _, res := range results {
		if !res.Skipped {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d questions\n", res.Path, res.Questions)
		}
	}

	count, err := db.QuestionCount()
	if err != nil {
		return fmt.Errorf("count questions: %w", err)
	}
	slog.Info("question bank ready", "db", v.GetString("db"), "questions", count)
	return nil
}

func runRoles(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	b, err := loadBank(v)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROLE\tQUESTIONS")
	for _, rc := range b.Roles() {
		fmt.Fprintf(tw, "%s\t%d\n", rc.Role, rc.Questions)
	}
	return tw.Flush()
}
