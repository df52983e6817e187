package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cognicore/twentyq/internal/console"
	"github.com/cognicore/twentyq/internal/corpusfile"
	"github.com/cognicore/twentyq/internal/logging"
	"github.com/cognicore/twentyq/pkg/twentyq"
	"github.com/cognicore/twentyq/pkg/twentyq/analytics"
	"github.com/cognicore/twentyq/pkg/twentyq/config"
	"github.com/cognicore/twentyq/pkg/twentyq/inference/bisect"
	"github.com/cognicore/twentyq/pkg/twentyq/ingest"
	"github.com/cognicore/twentyq/pkg/twentyq/store"
	"github.com/cognicore/twentyq/pkg/twentyq/store/memstore"
	"github.com/cognicore/twentyq/pkg/twentyq/store/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{in: os.Stdin, out: os.Stdout, errOut: os.Stderr}
	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app carries the streams and the state shared by all subcommands
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	configPath string
	ignorePath string
	dbPath     string
	logLevel   string
	plain      bool

	log  *zap.Logger
	comp *config.Components
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "twentyq",
		Short:         "Twenty questions over an answer/category corpus",
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `twentyq thinks about a corpus of answers and the categories they
belong to, then asks yes/no questions that split the remaining candidates
as evenly as it can until it is ready to guess what you picked.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	root.SetOut(a.out)
	root.SetErr(a.errOut)

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to twentyq.yaml")
	root.PersistentFlags().StringVar(&a.ignorePath, "ignore", "", "YAML list of categories never to ask about")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "SQLite database for corpora and game history (overrides store.path)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides logging.level)")
	root.PersistentFlags().BoolVar(&a.plain, "plain", false, "Plain line prompts and no colors")

	root.AddCommand(
		newPlayCmd(a),
		newImportCmd(a),
		newKeyCmd(a),
		newHistoryCmd(a),
		newCorporaCmd(a),
		newAnalyzeCmd(a),
	)
	return root
}

// setup loads configuration and builds the logger
func (a *app) setup() error {
	loader := config.Loader{ConfigPath: a.configPath, IgnorePath: a.ignorePath}
	comp, err := loader.Load()
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		comp.Config.Logging.Level = a.logLevel
	}
	if a.dbPath != "" {
		comp.Config.Store.Path = a.dbPath
	}
	a.comp = comp

	if a.log == nil {
		log, err := logging.New(comp.Config.Logging)
		if err != nil {
			return err
		}
		a.log = log
	}
	return nil
}

// openStore opens the configured SQLite store. With no path configured
// it returns an in-memory store unless persistent is set.
func (a *app) openStore(ctx context.Context, persistent bool) (store.Store, error) {
	path := a.comp.Config.Store.Path
	if path == "" {
		if persistent {
			return nil, errors.New("no database configured: pass --db or set store.path")
		}
		return memstore.New(), nil
	}
	st, err := sqlite.OpenSQLite(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	return st, nil
}

// loadPairs reads a named corpus from the store, or a corpus file,
// falling back to the sample corpus from the config.
func (a *app) loadPairs(ctx context.Context, st store.Store, file, name string) ([]ingest.Pair, string, error) {
	if name != "" {
		if st == nil {
			return nil, "", errors.New("--name needs a store")
		}
		stored, err := st.LoadCorpus(ctx, name)
		if err != nil {
			return nil, "", err
		}
		return fromStorePairs(stored), name, nil
	}

	if file == "" {
		file = a.comp.Config.Corpus.Sample
	}
	pairs, err := corpusfile.Load(file, a.comp.Tokenizer, a.log)
	if err != nil {
		return nil, "", err
	}
	return pairs, file, nil
}

// buildEngine creates a fresh engine loaded with pairs
func (a *app) buildEngine(pairs []ingest.Pair) *bisect.Engine {
	e := bisect.New(a.comp.Engine,
		bisect.WithLogger(a.log),
		bisect.WithNormalizer(a.comp.Normalizer))
	e.Ingest(pairs)
	return e
}

// asker prompts on a terminal when stdin is one
func (a *app) asker() console.Asker {
	if f, ok := a.in.(*os.File); ok {
		return console.NewAsker(f, a.out, a.plain)
	}
	return console.NewLineAsker(a.in, a.out)
}

func (a *app) printer() *console.Printer {
	return console.NewPrinter(a.out, a.plain)
}

func newPlayCmd(a *app) *cobra.Command {
	var (
		corpusFile string
		corpusName string
		showKey    bool
		once       bool
	)

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Think of an answer and let the computer guess it",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			st, err := a.openStore(ctx, false)
			if err != nil {
				return err
			}
			defer st.Close()

			pairs, source, err := a.loadPairs(ctx, st, corpusFile, corpusName)
			if err != nil {
				return err
			}

			p := a.printer()
			asker := a.asker()
			printRules(p, a.comp.Engine.MaxTurns)

			for {
				engine := a.buildEngine(pairs)
				if showKey {
					p.Columns(engine.AnswerKey(), 5)
					p.Line("")
				}

				if _, err := asker.Ask(ctx, "Hit enter when you have selected a word for me to guess!"); err != nil {
					return err
				}

				game := twentyq.New(twentyq.Options{
					Engine:   engine,
					Asker:    asker,
					Out:      p.Writer(),
					Recorder: st,
					Logger:   a.log,
					Corpus:   source,
				})
				if _, err := game.Play(ctx); err != nil {
					return err
				}

				if once {
					return nil
				}
				more, err := asker.Confirm(ctx, "Would you like to play again?")
				if errors.Is(err, io.EOF) {
					return nil
				}
				if err != nil {
					return err
				}
				if !more {
					return nil
				}
				p.Line("")
			}
		},
	}

	cmd.Flags().StringVar(&corpusFile, "corpus", "", "Corpus file (.tsv bracket format or .jsonl)")
	cmd.Flags().StringVar(&corpusName, "name", "", "Play an imported corpus by name")
	cmd.Flags().BoolVar(&showKey, "show-key", false, "Print the possible answers before playing")
	cmd.Flags().BoolVar(&once, "once", false, "Play a single round without offering another")
	cmd.MarkFlagsMutuallyExclusive("corpus", "name")
	return cmd
}

func printRules(p *console.Printer, maxTurns int) {
	p.Title("Twenty Questions")
	p.Line(fmt.Sprintf("Think of one of the answers in the corpus and I will try to find it in %d questions.", maxTurns))
	p.Line("Every question is yes or no. Answer as accurately as you can.")
	p.Muted("If I get stuck I will ask for your word and show where we disagreed.")
	p.Line("")
}

func newImportCmd(a *app) *cobra.Command {
	var (
		corpusFile string
		corpusName string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Tokenize a corpus file into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			st, err := a.openStore(ctx, true)
			if err != nil {
				return err
			}
			defer st.Close()

			pairs, err := corpusfile.Load(corpusFile, a.comp.Tokenizer, a.log)
			if err != nil {
				return err
			}

			n, err := st.ImportCorpus(ctx, corpusName, toStorePairs(pairs))
			if err != nil {
				return err
			}
			a.log.Info("corpus imported", zap.String("corpus", corpusName), zap.Int("pairs", n))
			fmt.Fprintf(a.out, "Imported %d pairs into %q\n", n, corpusName)
			return nil
		},
	}

	cmd.Flags().StringVar(&corpusFile, "corpus", "", "Corpus file (.tsv bracket format or .jsonl)")
	cmd.Flags().StringVar(&corpusName, "name", "", "Name to store the corpus under")
	_ = cmd.MarkFlagRequired("corpus")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newKeyCmd(a *app) *cobra.Command {
	var (
		corpusFile string
		corpusName string
	)

	cmd := &cobra.Command{
		Use:   "key",
		Short: "Print every answer the corpus knows about",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var st store.Store
			if corpusName != "" {
				var err error
				if st, err = a.openStore(ctx, true); err != nil {
					return err
				}
				defer st.Close()
			}

			pairs, _, err := a.loadPairs(ctx, st, corpusFile, corpusName)
			if err != nil {
				return err
			}

			a.printer().Columns(a.buildEngine(pairs).AnswerKey(), 5)
			return nil
		},
	}

	cmd.Flags().StringVar(&corpusFile, "corpus", "", "Corpus file (.tsv bracket format or .jsonl)")
	cmd.Flags().StringVar(&corpusName, "name", "", "Imported corpus name")
	cmd.MarkFlagsMutuallyExclusive("corpus", "name")
	return cmd
}

func newHistoryCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent games",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			st, err := a.openStore(ctx, true)
			if err != nil {
				return err
			}
			defer st.Close()

			games, err := st.RecentGames(ctx, limit)
			if err != nil {
				return err
			}
			if len(games) == 0 {
				fmt.Fprintln(a.out, "No games recorded yet.")
				return nil
			}
			for _, g := range games {
				fmt.Fprintln(a.out, formatGame(g))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", store.DefaultHistoryLimit, "Number of games to show")
	return cmd
}

func formatGame(g store.GameRecord) string {
	line := fmt.Sprintf("%s  %s  %-7s  %2d turns",
		g.ID, g.StartedAt.Local().Format("2006-01-02 15:04"), g.Outcome, g.Turns)
	switch {
	case g.Outcome == store.OutcomeWon:
		line += "  guessed " + g.Guess
	case g.Revealed != "":
		line += "  word was " + g.Revealed
		if len(g.Mismatches) > 0 {
			line += fmt.Sprintf(" (%d wrong answers)", len(g.Mismatches))
		}
	}
	return line
}

func newCorporaCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "corpora",
		Short: "List imported corpora",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			st, err := a.openStore(ctx, true)
			if err != nil {
				return err
			}
			defer st.Close()

			infos, err := st.Corpora(ctx)
			if err != nil {
				return err
			}
			if len(infos) == 0 {
				fmt.Fprintln(a.out, "No corpora imported yet.")
				return nil
			}
			for _, info := range infos {
				fmt.Fprintf(a.out, "%-20s %6d answers %8d pairs  imported %s\n",
					info.Name, info.Answers, info.Pairs, info.ImportedAt.Local().Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}

func newAnalyzeCmd(a *app) *cobra.Command {
	var (
		corpusFile  string
		corpusName  string
		asJSON      bool
		top         int
		maxDF       float64
		writeIgnore string
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Report how well a corpus can be played",
		Long: `Reports categories too broad to split anything, the categories that
split the answers most evenly, and answers no question can tell apart.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var st store.Store
			if corpusName != "" {
				var err error
				if st, err = a.openStore(ctx, true); err != nil {
					return err
				}
				defer st.Close()
			}

			pairs, _, err := a.loadPairs(ctx, st, corpusFile, corpusName)
			if err != nil {
				return err
			}

			analyzer := analytics.NewAnalyzer(a.comp.Normalizer)
			analyzer.Process(pairs)
			report := analyzer.Report(analytics.Thresholds{MaxDF: maxDF, Top: top})

			if writeIgnore != "" {
				terms := make([]string, len(report.IgnoreCandidates))
				for i, c := range report.IgnoreCandidates {
					terms[i] = c.Name
				}
				if err := config.SaveIgnoreList(writeIgnore, terms); err != nil {
					return fmt.Errorf("write ignore list: %w", err)
				}
				a.log.Info("ignore list updated", zap.String("path", writeIgnore), zap.Int("added", len(terms)))
			}

			if asJSON {
				out, err := json.MarshalIndent(report, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal report: %w", err)
				}
				fmt.Fprintln(a.out, string(out))
				return nil
			}
			printReport(a.printer(), report)
			return nil
		},
	}

	cmd.Flags().StringVar(&corpusFile, "corpus", "", "Corpus file (.tsv bracket format or .jsonl)")
	cmd.Flags().StringVar(&corpusName, "name", "", "Imported corpus name")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	cmd.Flags().IntVar(&top, "top", analytics.DefaultTop, "Number of best-splitting categories to list")
	cmd.Flags().Float64Var(&maxDF, "max-df", analytics.DefaultMaxDF, "Share of answers above which a category is too broad")
	cmd.Flags().StringVar(&writeIgnore, "write-ignore", "", "Merge the too-broad categories into this ignore list")
	cmd.MarkFlagsMutuallyExclusive("corpus", "name")
	return cmd
}

func printReport(p *console.Printer, r analytics.Report) {
	p.Title("Corpus report")
	p.Line(fmt.Sprintf("%d answers, %d categories (%d held by one answer), %d pairs",
		r.Answers, r.Categories, r.Singletons, r.Pairs))

	if len(r.IgnoreCandidates) > 0 {
		p.Line("")
		p.Title("Too broad to ask")
		for _, c := range r.IgnoreCandidates {
			p.Line(fmt.Sprintf("  %-30s %5.1f%%", c.Name, c.DFPercent))
		}
	}

	if len(r.BestSplits) > 0 {
		p.Line("")
		p.Title("Best first questions")
		for _, c := range r.BestSplits {
			p.Line(fmt.Sprintf("  %-30s %5.1f%%  %.2f bits", c.Name, c.DFPercent, c.SplitBits))
		}
	}

	if len(r.Indistinct) > 0 {
		p.Line("")
		p.Warn("Answers that cannot be told apart")
		for _, g := range r.Indistinct {
			p.Line("  " + strings.Join(g, ", "))
		}
	}

	if len(r.Bare) > 0 {
		p.Line("")
		p.Warn("Answers without any usable category")
		p.Line("  " + strings.Join(r.Bare, ", "))
	}
}

func toStorePairs(pairs []ingest.Pair) []store.Pair {
	out := make([]store.Pair, len(pairs))
	for i, p := range pairs {
		out[i] = store.Pair{Answer: p.Answer, Category: p.Category}
	}
	return out
}

func fromStorePairs(pairs []store.Pair) []ingest.Pair {
	out := make([]ingest.Pair, len(pairs))
	for i, p := range pairs {
		out[i] = ingest.Pair{Answer: p.Answer, Category: p.Category}
	}
	return out
}
