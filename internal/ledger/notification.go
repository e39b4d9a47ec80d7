package ledger

import (
	"fmt"
	"strings"

	"github.com/aimd54/fan-ledger/internal/models"
)

// Severity of a user-facing notification.
type Severity string

// Severity constants.
const (
	SeverityInfo        Severity = "info"
	SeveritySuccess     Severity = "success"
	SeverityWarning     Severity = "warning"
	SeverityDestructive Severity = "destructive"
)

// Notification is transient feedback for the fan. Delivery is best effort.
type Notification struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
}

func pointsAdded(amount int, description string) Notification {
	return Notification{
		Title:       "Points added",
		Description: fmt.Sprintf("+%d points: %s", amount, description),
		Severity:    SeveritySuccess,
	}
}

func tierChanged(from, to models.Tier) Notification {
	fromRank, _ := Rank(from)
	toRank, _ := Rank(to)
	if toRank < fromRank {
		return Notification{
			Title:       "Tier changed",
			Description: fmt.Sprintf("Your tier dropped to %s.", strings.ToUpper(string(to))),
			Severity:    SeverityInfo,
		}
	}
	return Notification{
		Title:       "New tier unlocked!",
		Description: fmt.Sprintf("Congratulations! You reached the %s tier.", strings.ToUpper(string(to))),
		Severity:    SeveritySuccess,
	}
}
