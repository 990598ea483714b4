package cli

import (
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/devbush/call2insights/internal/adapters/cli/tui"
	"github.com/devbush/call2insights/internal/application"
	"github.com/devbush/call2insights/internal/ports"
)

var (
	idColumnFlag         string
	transcriptColumnFlag string
	commentColumnFlag    string
	errorCodeColumnFlag  string
	outputFlag           string
	modelFlag            string
	concurrencyFlag      int
	limitFlag            int
	quietFlag            bool
)

// NewAnalyzeCmd creates the analyze command
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <transcripts.csv>",
		Short: "Analyze a CSV of call transcripts",
		Long: `Analyze every transcript in a CSV file concurrently.

Column flags name the identifier and transcript columns (plus optional
auditor-comment and error-code columns). Omitted column flags bring up
an interactive picker over the file's header.

Example:
  call2insights analyze transcripts.csv \
      --id-column Transcript_ID --transcript-column Transcript \
      --comment-column Auditor_Comment --error-code-column Error_Code \
      -o transcripts_analyzed.csv --concurrency 4`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyze,
	}

	cmd.Flags().StringVar(&idColumnFlag, "id-column", "", "Column holding the transcript identifier")
	cmd.Flags().StringVar(&transcriptColumnFlag, "transcript-column", "", "Column holding the transcript text")
	cmd.Flags().StringVar(&commentColumnFlag, "comment-column", "", "Column holding the auditor comment (optional)")
	cmd.Flags().StringVar(&errorCodeColumnFlag, "error-code-column", "", "Column holding the error code (optional)")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output file path (default: <input>_analyzed.csv)")
	cmd.Flags().StringVar(&modelFlag, "model", "", "Gemini model (default from config)")
	cmd.Flags().IntVarP(&concurrencyFlag, "concurrency", "c", 0, "Max concurrent requests (max 50, default from config)")
	cmd.Flags().IntVar(&limitFlag, "limit", 0, "Analyze only the first n rows (0 = all)")
	cmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress progress output")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	app, err := NewApp(verboseFlag)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer app.Close()

	path := args[0]

	cols, err := resolveColumns(app, path)
	if err != nil {
		return err
	}

	rows, err := app.Reader.Read(path, cols)
	if err != nil {
		return err
	}
	if limitFlag > 0 && len(rows) > limitFlag {
		rows = rows[:limitFlag]
	}
	if len(rows) == 0 {
		return errors.New("no transcript rows found in file")
	}

	// Ctrl-C stops dispatching new rows; in-flight calls finish and
	// everything processed so far is still exported.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	analyzer, err := app.NewAnalyzer(ctx, modelFlag)
	if err != nil {
		return err
	}

	concurrency := concurrencyFlag
	if concurrency <= 0 {
		concurrency = app.Config.Defaults.Concurrency
	}

	prompts := application.NewPromptBuilder(app.Config.Limits.MaxTranscriptChars)
	orchestrator := application.NewOrchestrator(analyzer, prompts, concurrency, app.Logger)

	display := tui.NewBatchProgress(len(rows), quietFlag)
	progress := application.NewProgress(len(rows), func(s application.Snapshot) {
		display.Update(s.Completed+s.Failed, s.Failed)
	})

	app.Logger.Info("starting batch analysis",
		zap.String("file", path),
		zap.Int("rows", len(rows)),
		zap.Int("concurrency", concurrency),
	)

	results, failures := orchestrator.Run(ctx, rows, progress)
	display.Complete(failures)

	outPath := outputFlag
	if outPath == "" {
		outPath = defaultOutputPath(path)
	}

	table := application.BuildExportTable(rows, results, failures)
	if err := app.Exporter.Write(outPath, table); err != nil {
		return err
	}

	if !quietFlag {
		fmt.Printf("Results written to %s\n", outPath)
	}

	if len(failures) > 0 {
		return fmt.Errorf("%d of %d transcripts failed", len(failures), len(rows))
	}
	return nil
}

// resolveColumns fills in any column flags the user omitted via an
// interactive picker over the file header.
func resolveColumns(app *App, path string) (ports.Columns, error) {
	cols := ports.Columns{
		ID:             idColumnFlag,
		Transcript:     transcriptColumnFlag,
		AuditorComment: commentColumnFlag,
		ErrorCode:      errorCodeColumnFlag,
	}
	if cols.ID != "" && cols.Transcript != "" &&
		commentColumnFlag != "" && errorCodeColumnFlag != "" {
		return cols, nil
	}

	// Only read the header when a picker is actually needed.
	header, err := app.Reader.Header(path)
	if err != nil {
		return cols, err
	}

	if cols.ID == "" {
		cols.ID, err = tui.RunColumnPicker("Select the transcript identifier column", header, false)
		if err != nil {
			return cols, err
		}
		if cols.ID == "" {
			return cols, errors.New("no identifier column selected")
		}
	}
	if cols.Transcript == "" {
		cols.Transcript, err = tui.RunColumnPicker("Select the transcript text column", header, false)
		if err != nil {
			return cols, err
		}
		if cols.Transcript == "" {
			return cols, errors.New("no transcript column selected")
		}
	}
	if cols.AuditorComment == "" {
		cols.AuditorComment, err = tui.RunColumnPicker("Select the auditor comment column", header, true)
		if err != nil {
			return cols, err
		}
	}
	if cols.ErrorCode == "" {
		cols.ErrorCode, err = tui.RunColumnPicker("Select the error code column", header, true)
		if err != nil {
			return cols, err
		}
	}
	return cols, nil
}

func defaultOutputPath(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "_analyzed.csv"
}
