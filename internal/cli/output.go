package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ijo-project/ijo-backend/internal/api/response"
)

// Output formats command results as text or JSON
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
		return
	}
	o.printText(data)
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		o.printJSON(map[string]string{"message": msg})
		return
	}
	fmt.Fprintln(o.w, msg)
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.RegisterResponse:
		fmt.Fprintln(o.w, v.Message)
		fmt.Fprintf(o.w, "User ID: %s\n", v.UserID)
	case response.LoginResponse:
		fmt.Fprintln(o.w, v.Message)
		fmt.Fprintf(o.w, "Role: %s\n", v.Role)
		fmt.Fprintf(o.w, "Expires: %s\n", v.ExpiresAt.Format("2006-01-02 15:04 MST"))
	case response.Profile:
		o.printProfile(v)
	case response.ScanResponse:
		fmt.Fprintln(o.w, v.Message)
		fmt.Fprintf(o.w, "Coins: %d (+%d)\n", v.NewCoinBalance, v.RewardCoins)
		fmt.Fprintf(o.w, "Tickets: %d\n", v.Tickets)
	case response.StartGameResponse:
		fmt.Fprintln(o.w, v.Message)
		fmt.Fprintf(o.w, "Tickets left: %d\n", v.RemainingTickets)
	case response.ScoreResponse:
		fmt.Fprintln(o.w, v.Message)
		fmt.Fprintf(o.w, "Score: %d\n", v.YourScore)
		fmt.Fprintf(o.w, "Total: %d\n", v.TotalGlobalScore)
	case []response.LeaderboardEntry:
		o.printLeaderboard(v)
	case response.Item:
		o.printItem(v)
	case response.CheckInResponse:
		fmt.Fprintln(o.w, v.Message)
		fmt.Fprintf(o.w, "Level %d, %d/%d XP (+%d)\n", v.Level, v.CurrentXP, v.NextLevelXP, v.GainedXP)
		fmt.Fprintf(o.w, "Streak: %d days\n", v.StreakDays)
	case []response.Account:
		o.printAccounts(v)
	case response.StatusResponse:
		fmt.Fprintln(o.w, v.Message)
	case map[string]json.RawMessage:
		o.printContent(v)
	case response.Health:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
	default:
		o.printJSON(data)
	}
}

func (o *Output) printProfile(p response.Profile) {
	fmt.Fprintf(o.w, "%s <%s> (%s)\n", p.FullName, p.Email, p.ID)
	if p.SchoolClass != "" {
		fmt.Fprintf(o.w, "Class: %s\n", p.SchoolClass)
	}
	fmt.Fprintf(o.w, "Role: %s, status: %s\n", p.Role, p.Status)
	fmt.Fprintf(o.w, "Coins: %d\n", p.Coins)
	fmt.Fprintf(o.w, "Tickets: %d\n", p.Tickets)
	fmt.Fprintf(o.w, "Total score: %d\n", p.TotalScore)
	if p.Companion != nil {
		fmt.Fprintf(o.w, "Companion: %s the %s, level %d\n", p.Companion.Name, p.Companion.Type, p.Companion.Level)
	}
}

func (o *Output) printItem(i response.Item) {
	fmt.Fprintf(o.w, "%s the %s (%s)\n", i.Name, i.Type, i.Personality)
	fmt.Fprintf(o.w, "Level %d, %d/%d XP\n", i.Level, i.CurrentXP, i.NextLevelXP)
	fmt.Fprintf(o.w, "Streak: %d days\n", i.StreakDays)
}

func (o *Output) printLeaderboard(entries []response.LeaderboardEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(o.w, "No scores yet")
		return
	}
	for _, e := range entries {
		you := ""
		if e.IsYou {
			you = " <- you"
		}
		companion := ""
		if e.ActiveItem != nil {
			companion = fmt.Sprintf(" [%s lv%d]", e.ActiveItem.Name, e.ActiveItem.Level)
		}
		fmt.Fprintf(o.w, "%2d. %-24s %-6s %6d%s%s\n", e.Rank, e.FullName, e.SchoolClass, e.Score, companion, you)
	}
}

func (o *Output) printAccounts(accounts []response.Account) {
	if len(accounts) == 0 {
		fmt.Fprintln(o.w, "No students")
		return
	}
	for _, a := range accounts {
		fmt.Fprintf(o.w, "%s  %-8s  %-28s %s (%s)\n", a.ID, a.Status, a.Email, a.FullName, a.SchoolClass)
	}
}

func (o *Output) printContent(blocks map[string]json.RawMessage) {
	keys := make([]string, 0, len(blocks))
	for k := range blocks {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Fprintf(o.w, "%s:\n", k)
		fmt.Fprintf(o.w, "  %s\n", strings.TrimSpace(string(blocks[k])))
	}
}
