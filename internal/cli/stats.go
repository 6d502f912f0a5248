package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ppiankov/skillguard/internal/config"
	"github.com/ppiankov/skillguard/internal/history"
)

var (
	statsDB     string
	statsTop    int
	statsFormat string
)

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringVar(&statsDB, "db", "", "History database (env SKILLGUARD_HISTORY_DB)")
	statsCmd.Flags().IntVar(&statsTop, "top", 10, "Number of references in ranked lists")
	statsCmd.Flags().StringVarP(&statsFormat, "format", "f", "text", "Output format (text|json)")
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize recorded verdicts",
	Long: "Reads the verdict history written by 'skillguard hook --history-db' and\n" +
		"prints counts per decision and reason, the most frequently blocked\n" +
		"references, and guessed names in the restricted namespace.",
	Args: cobra.NoArgs,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	path := config.Override(settings.HistoryDB, statsDB)
	if path == "" {
		return fmt.Errorf("no history database: pass --db or set %s_HISTORY_DB", config.EnvPrefix)
	}

	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	sum, err := store.Summarize(cmd.Context(), statsTop)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch statsFormat {
	case "json":
		return writeJSON(out, sum)
	case "text":
		writeStatsText(out, sum)
		return nil
	default:
		return fmt.Errorf("unknown format %q (want text or json)", statsFormat)
	}
}

func writeStatsText(w io.Writer, sum history.Summary) {
	fmt.Fprintf(w, "Verdicts: %d\n", sum.Total)
	writeCounts(w, "Decisions", sum.Decisions)
	writeCounts(w, "Reasons", sum.Reasons)
	writeRanked(w, "Most blocked", sum.Denied)
	writeRanked(w, "Guessed names", sum.Guesses)
}

func writeCounts(w io.Writer, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(w, "\n%s:\n", title)
	for _, k := range keys {
		fmt.Fprintf(w, "  %-28s %d\n", k, counts[k])
	}
}

func writeRanked(w io.Writer, title string, items []history.SkillCount) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, it := range items {
		fmt.Fprintf(w, "  %-40s %d\n", it.Skill, it.Count)
	}
}
