package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/pable/go-match-stats/internal/model"
	"github.com/pable/go-match-stats/internal/stats"
)

const analyzeSystemPrompt = `You are a padel and badminton performance analyst. You are given structured
match data for one player from a club results tracker and a question from
the player.

Rules:
- Answer ONLY from the data provided. Never invent or estimate statistics.
- Always cite specific numbers when making a claim.
- If the data is insufficient to answer confidently, say so explicitly.
- Be concise and actionable, focus on what the player can actually improve.
- Avoid generic coaching advice unless it directly explains a pattern in the data.

Data glossary:
- win_rate: wins / matches x 100. A match with no winner counts as a loss.
- avg_score_per_set: the player's own points per set, averaged over all sets played.
- current_streak: consecutive wins ending with the most recent match.
- monthly: wins and losses per calendar month (UTC).
- recent_matches: newest first; "sets" are written from the player's side (own-opponent).
- opponents: head-to-head record against each opponent faced in singles or doubles.`

var (
	analyzeModel  string
	analyzeAPIKey string
	analyzeLast   int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <player> <question>",
	Short: "AI-powered grounded analysis of a player (requires ANTHROPIC_API_KEY)",
	Args:  cobra.ExactArgs(2),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeModel, "model", "claude-haiku-4-5-20251001", "Anthropic model to use")
	analyzeCmd.Flags().StringVar(&analyzeAPIKey, "api-key", "", "Anthropic API key (falls back to $ANTHROPIC_API_KEY)")
	analyzeCmd.Flags().IntVar(&analyzeLast, "last", 20, "number of recent matches sent as context")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	svc, store, err := openService()
	if err != nil {
		return err
	}
	defer store.Close()

	p, err := svc.ResolvePlayer(args[0])
	if err != nil {
		return err
	}
	snap, err := svc.Snapshot()
	if err != nil {
		return err
	}
	if len(stats.PlayerMatchHistory(p.ID, snap.Matches)) == 0 {
		return fmt.Errorf("no matches found for %s", p.Name)
	}

	contextJSON, err := buildPlayerContext(p.ID, snap, analyzeLast)
	if err != nil {
		return fmt.Errorf("build context: %w", err)
	}
	return callAnthropic(cmd.Context(), analyzeAPIKey, analyzeModel, contextJSON, args[1])
}

type opponentRecord struct {
	Name   string `json:"name"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
}

type recentEntry struct {
	Date     string   `json:"date"`
	Sport    string   `json:"sport"`
	Type     string   `json:"type"`
	Partner  string   `json:"partner,omitempty"`
	Against  string   `json:"against"`
	Sets     []string `json:"sets"`
	Result   string   `json:"result"`
	Duration int      `json:"duration_min,omitempty"`
}

// buildPlayerContext serialises one player's statistics into compact JSON.
func buildPlayerContext(playerID string, snap model.Snapshot, last int) (string, error) {
	st := stats.PlayerStats(playerID, snap.Matches, snap.Players)
	history := stats.PlayerMatchHistory(playerID, snap.Matches)

	opponents := map[string]*opponentRecord{}
	var order []string
	recent := make([]recentEntry, 0, min(last, len(history)))
	for i := range history {
		m := &history[i]
		side := stats.SideOf(m, playerID)
		won := m.Winner == side
		oppIDs := []string{m.Player2ID, m.Player4ID}
		partnerID := m.Player3ID
		if side == model.Side2 {
			oppIDs = []string{m.Player1ID, m.Player3ID}
			partnerID = m.Player4ID
		}
		for _, id := range oppIDs {
			if id == "" {
				continue
			}
			rec, ok := opponents[id]
			if !ok {
				name, _ := m.NameOf(id)
				rec = &opponentRecord{Name: name}
				opponents[id] = rec
				order = append(order, id)
			}
			if won {
				rec.Wins++
			} else {
				rec.Losses++
			}
		}

		if i >= last {
			continue
		}
		e := recentEntry{
			Date:     m.Date.UTC().Format("2006-01-02"),
			Sport:    string(m.SportType),
			Type:     string(m.MatchType),
			Against:  m.SideNames(side.Opponent()),
			Result:   "loss",
			Duration: m.Duration,
		}
		if won {
			e.Result = "win"
		}
		if partnerID != "" {
			e.Partner, _ = m.NameOf(partnerID)
		}
		for _, set := range m.Sets {
			own, opp := set.ScoreFor(side)
			e.Sets = append(e.Sets, fmt.Sprintf("%d-%d", own, opp))
		}
		recent = append(recent, e)
	}

	opps := make([]opponentRecord, 0, len(order))
	for _, id := range order {
		opps = append(opps, *opponents[id])
	}

	sportStats := make([]map[string]any, 0, len(model.Sports))
	for _, s := range model.Sports {
		ss := stats.SportStats(s, snap.Matches, snap.Players)
		sportStats = append(sportStats, map[string]any{
			"sport":              s,
			"club_matches":       ss.TotalMatches,
			"club_players":       ss.TotalPlayers,
			"most_active_player": ss.MostActivePlayer,
		})
	}

	doc := map[string]any{
		"subject": "player",
		"player":  st.PlayerName,
		"overview": map[string]any{
			"matches":           st.TotalMatches,
			"wins":              st.TotalWins,
			"losses":            st.TotalLosses,
			"win_rate":          round2(st.WinRate),
			"avg_score_per_set": round2(st.AverageScorePerSet),
			"longest_streak":    st.LongestWinStreak,
			"current_streak":    st.CurrentStreak,
		},
		"monthly":        stats.WinLossByMonth(playerID, snap.Matches),
		"opponents":      opps,
		"recent_matches": recent,
		"club":           sportStats,
	}

	b, err := sonic.Marshal(doc)
	return string(b), err
}

// round2 rounds a float64 to 2 decimal places.
func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}

// callAnthropic streams a response from the Anthropic API and prints it to stdout.
func callAnthropic(ctx context.Context, apiKey, modelID, dataJSON, question string) error {
	if apiKey == "" {
		apiKey = cfg.AnthropicAPIKey
	}
	if apiKey == "" {
		return fmt.Errorf("no API key: set ANTHROPIC_API_KEY or use --api-key")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	userMsg := fmt.Sprintf("DATA:\n%s\n\nQUESTION: %s", dataJSON, question)

	fmt.Fprintln(os.Stdout, "\n─── AI Analysis ─────────────────────────────────────")

	stream := client.Messages.NewStreaming(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(modelID),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: analyzeSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userMsg)),
		},
	})

	for stream.Next() {
		evt := stream.Current()
		if evt.Type == "content_block_delta" {
			delta := evt.AsContentBlockDelta()
			if delta.Delta.Type == "text_delta" {
				fmt.Fprint(os.Stdout, delta.Delta.AsTextDelta().Text)
			}
		}
	}
	fmt.Fprintln(os.Stdout, "\n─────────────────────────────────────────────────────")

	if err := stream.Err(); err != nil {
		// Provide a cleaner error message for common API errors.
		errStr := err.Error()
		if strings.Contains(errStr, "401") || strings.Contains(errStr, "authentication") {
			return fmt.Errorf("API authentication failed, check your API key")
		}
		return fmt.Errorf("streaming error: %w", err)
	}
	return nil
}
