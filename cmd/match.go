package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/go-match-stats/internal/model"
	"github.com/pable/go-match-stats/internal/report"
	"github.com/pable/go-match-stats/internal/stats"
	"github.com/pable/go-match-stats/internal/tracker"
)

var (
	matchSport    string
	matchType     string
	matchPlayers  [4]string
	matchSets     string
	matchDate     string
	matchDuration int
	matchNotes    string

	matchListSport  string
	matchListPlayer string
	matchListLimit  int
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Record and manage matches",
}

var matchAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a match",
	Long: `Record a match. Players are given by id, name, or an unambiguous part of a name.
--p1 and --p3 form side one, --p2 and --p4 side two (doubles only).

Example:
  matchstats match add --sport badminton --p1 ana --p2 ben --sets 21-15,18-21,21-19`,
	Args: cobra.NoArgs,
	RunE: runMatchAdd,
}

var matchEditCmd = &cobra.Command{
	Use:   "edit <match-id>",
	Short: "Change a recorded match; only the flags given are changed",
	Args:  cobra.ExactArgs(1),
	RunE:  runMatchEdit,
}

var matchRmCmd = &cobra.Command{
	Use:   "rm <match-id>",
	Short: "Remove a match and its sets",
	Args:  cobra.ExactArgs(1),
	RunE:  runMatchRm,
}

var matchListCmd = &cobra.Command{
	Use:   "list",
	Short: "List matches, newest first",
	Args:  cobra.NoArgs,
	RunE:  runMatchList,
}

func init() {
	for _, c := range []*cobra.Command{matchAddCmd, matchEditCmd} {
		f := c.Flags()
		f.StringVar(&matchSport, "sport", "", "padel or badminton")
		f.StringVar(&matchType, "type", string(model.MatchSingles), "singles or doubles")
		f.StringVar(&matchPlayers[0], "p1", "", "side one player")
		f.StringVar(&matchPlayers[1], "p2", "", "side two player")
		f.StringVar(&matchPlayers[2], "p3", "", "side one partner (doubles)")
		f.StringVar(&matchPlayers[3], "p4", "", "side two partner (doubles)")
		f.StringVar(&matchSets, "sets", "", "set scores, side one first: 21-15,18-21")
		f.StringVar(&matchDate, "date", "", "match date, YYYY-MM-DD or RFC 3339 (default now)")
		f.IntVar(&matchDuration, "duration", 0, "duration in minutes")
		f.StringVar(&matchNotes, "notes", "", "free-form notes")
	}
	_ = matchAddCmd.MarkFlagRequired("sport")
	_ = matchAddCmd.MarkFlagRequired("p1")
	_ = matchAddCmd.MarkFlagRequired("p2")
	_ = matchAddCmd.MarkFlagRequired("sets")

	matchListCmd.Flags().StringVar(&matchListSport, "sport", "", "only show this sport")
	matchListCmd.Flags().StringVar(&matchListPlayer, "player", "", "only show matches with this player")
	matchListCmd.Flags().IntVar(&matchListLimit, "limit", 0, "maximum rows (0 = all)")

	matchCmd.AddCommand(matchAddCmd)
	matchCmd.AddCommand(matchEditCmd)
	matchCmd.AddCommand(matchRmCmd)
	matchCmd.AddCommand(matchListCmd)
	matchCmd.AddCommand(matchShowCmd)
}

func runMatchAdd(cmd *cobra.Command, _ []string) error {
	svc, store, err := openService()
	if err != nil {
		return err
	}
	defer store.Close()

	in := tracker.MatchInput{
		SportType: model.SportType(matchSport),
		MatchType: model.MatchType(matchType),
		Duration:  matchDuration,
		Notes:     matchNotes,
	}
	if err := applyMatchFlags(cmd, svc, &in); err != nil {
		return err
	}

	m, err := svc.AddMatch(cmd.Context(), in)
	if err != nil {
		return err
	}
	fmt.Printf("Recorded %s\n", m.ID)
	report.PrintMatchDetail(os.Stdout, m)
	return nil
}

func runMatchEdit(cmd *cobra.Command, args []string) error {
	svc, store, err := openService()
	if err != nil {
		return err
	}
	defer store.Close()

	m, err := store.GetMatch(args[0])
	if err != nil {
		return err
	}
	in := inputFromMatch(m)
	flags := cmd.Flags()
	if flags.Changed("sport") {
		in.SportType = model.SportType(matchSport)
	}
	if flags.Changed("type") {
		in.MatchType = model.MatchType(matchType)
	}
	if flags.Changed("duration") {
		in.Duration = matchDuration
	}
	if flags.Changed("notes") {
		in.Notes = matchNotes
	}
	if err := applyMatchFlags(cmd, svc, &in); err != nil {
		return err
	}

	updated, err := svc.UpdateMatch(cmd.Context(), m.ID, in)
	if err != nil {
		return err
	}
	report.PrintMatchDetail(os.Stdout, updated)
	return nil
}

// applyMatchFlags resolves the player flags and parses sets and date for the
// flags the user set.
func applyMatchFlags(cmd *cobra.Command, svc *tracker.Service, in *tracker.MatchInput) error {
	flags := cmd.Flags()
	ids := []*string{&in.Player1ID, &in.Player2ID, &in.Player3ID, &in.Player4ID}
	for i, q := range matchPlayers {
		if !flags.Changed(fmt.Sprintf("p%d", i+1)) {
			continue
		}
		if strings.TrimSpace(q) == "" {
			*ids[i] = ""
			continue
		}
		p, err := svc.ResolvePlayer(q)
		if err != nil {
			return fmt.Errorf("--p%d: %w", i+1, err)
		}
		*ids[i] = p.ID
	}
	if flags.Changed("sets") {
		sets, err := parseSets(matchSets)
		if err != nil {
			return err
		}
		in.Sets = sets
	}
	if flags.Changed("date") {
		t, err := parseDateFlag(matchDate)
		if err != nil {
			return err
		}
		in.Date = t
	}
	return nil
}

func inputFromMatch(m *model.Match) tracker.MatchInput {
	in := tracker.MatchInput{
		SportType: m.SportType,
		MatchType: m.MatchType,
		Player1ID: m.Player1ID,
		Player2ID: m.Player2ID,
		Player3ID: m.Player3ID,
		Player4ID: m.Player4ID,
		Date:      m.Date,
		Duration:  m.Duration,
		Notes:     m.Notes,
	}
	for _, s := range m.Sets {
		in.Sets = append(in.Sets, tracker.SetInput{Player1Score: s.Player1Score, Player2Score: s.Player2Score})
	}
	return in
}

// parseSets reads "21-15,18-21" (commas or spaces between sets) into set
// inputs, side one's score first.
func parseSets(s string) ([]tracker.SetInput, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == ';' })
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no set scores given", tracker.ErrInvalidInput)
	}
	sets := make([]tracker.SetInput, 0, len(fields))
	for _, f := range fields {
		a, b, ok := strings.Cut(f, "-")
		if !ok {
			a, b, ok = strings.Cut(f, ":")
		}
		if !ok {
			return nil, fmt.Errorf("%w: set %q: want <score>-<score>", tracker.ErrInvalidInput, f)
		}
		p1, err1 := strconv.Atoi(strings.TrimSpace(a))
		p2, err2 := strconv.Atoi(strings.TrimSpace(b))
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("%w: set %q: scores must be whole numbers", tracker.ErrInvalidInput, f)
		}
		sets = append(sets, tracker.SetInput{Player1Score: p1, Player2Score: p2})
	}
	return sets, nil
}

// parseDateFlag accepts what the JSON API accepts. Date-only values are read
// in the local zone so "today" means the user's today.
func parseDateFlag(s string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(s), time.Local); err == nil {
		return t, nil
	}
	t, err := model.ParseTime(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: --date: %v", tracker.ErrInvalidInput, err)
	}
	return t, nil
}

func runMatchRm(_ *cobra.Command, args []string) error {
	svc, store, err := openService()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := svc.DeleteMatch(args[0]); err != nil {
		return err
	}
	fmt.Printf("Removed match %s\n", args[0])
	return nil
}

func runMatchList(_ *cobra.Command, _ []string) error {
	svc, store, err := openService()
	if err != nil {
		return err
	}
	defer store.Close()

	matches, err := store.ListMatches()
	if err != nil {
		return fmt.Errorf("list matches: %w", err)
	}
	if matchListPlayer != "" {
		p, err := svc.ResolvePlayer(matchListPlayer)
		if err != nil {
			return err
		}
		matches = stats.PlayerMatchHistory(p.ID, matches)
	}
	if matchListSport != "" {
		sport := model.SportType(strings.ToLower(matchListSport))
		if !sport.Valid() {
			return fmt.Errorf("unknown sport %q", matchListSport)
		}
		matches = filterSport(matches, sport)
	}
	if matchListLimit > 0 {
		matches = stats.RecentMatches(matches, matchListLimit)
	}
	if len(matches) == 0 {
		fmt.Println("No matches found.")
		return nil
	}
	report.PrintMatches(os.Stdout, matches)
	return nil
}

func filterSport(matches []model.Match, sport model.SportType) []model.Match {
	var out []model.Match
	for _, m := range matches {
		if m.SportType == sport {
			out = append(out, m)
		}
	}
	return out
}
