package ledger

import (
	"fmt"

	"github.com/aimd54/fan-ledger/internal/models"
)

// EnterContest enters the fan into the catalog contest with contestID when
// the fan's tier meets the contest minimum. A successful entry earns points.
func (l *Ledger) EnterContest(contestID string, catalog []models.Contest) (*models.ContestEntry, *Result, error) {
	contest := findContest(catalog, contestID)
	if contest == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrContestNotFound, contestID)
	}

	required, err := Rank(contest.MinLevel)
	if err != nil {
		return nil, nil, err
	}
	current, err := Rank(l.profile.FanTier)
	if err != nil {
		return nil, nil, err
	}
	if current < required {
		return nil, nil, fmt.Errorf("%w: %s requires %s, fan is %s",
			ErrTierMismatch, contest.Name, contest.MinLevel, l.profile.FanTier)
	}

	if l.rules.ContestEntryPoints > 0 {
		if err := l.checkCredit(l.rules.ContestEntryPoints); err != nil {
			return nil, nil, err
		}
	}

	entry := &models.ContestEntry{
		FanID:     l.profile.ID,
		ContestID: contest.ID,
		EnteredAt: l.now().UTC(),
	}

	res := &Result{PreviousTier: l.profile.FanTier}
	res.Notifications = append(res.Notifications, Notification{
		Title:       "Entry confirmed!",
		Description: "You are entered in the draw: " + contest.Name,
		Severity:    SeveritySuccess,
	})
	if l.rules.ContestEntryPoints > 0 {
		l.credit(res, l.rules.ContestEntryPoints, models.SourceEngagement, "Entered contest: "+contest.Name)
	}
	return entry, res, nil
}

func findContest(catalog []models.Contest, id string) *models.Contest {
	for i := range catalog {
		if catalog[i].ID == id {
			return &catalog[i]
		}
	}
	return nil
}
