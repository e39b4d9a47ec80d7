package scheduler

import (
	"github.com/aimd54/fan-ledger/internal/mattermost"
	"github.com/aimd54/fan-ledger/internal/service/leaderboard"
)

// buildStandings transforms leaderboard entries into Mattermost standings.
func buildStandings(entries []leaderboard.Entry) []mattermost.Standing {
	standings := make([]mattermost.Standing, 0, len(entries))

	for _, e := range entries {
		name := e.Name
		if name == "" {
			name = "unknown"
		}

		standings = append(standings, mattermost.Standing{
			Rank:        e.Rank,
			Name:        name,
			Tier:        string(e.Tier),
			TotalPoints: e.TotalPoints,
		})
	}

	return standings
}
