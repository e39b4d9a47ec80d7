package ledger

import (
	"fmt"

	"github.com/aimd54/fan-ledger/internal/models"
)

// ConnectSocialProfile toggles the connection state of platform. Connecting
// awards points; disconnecting takes nothing back.
func (l *Ledger) ConnectSocialProfile(platform models.Platform) (*Result, error) {
	sp := l.profile.SocialProfile(platform)
	if sp == nil {
		return nil, fmt.Errorf("%w: %s", ErrPlatformNotFound, platform)
	}

	res := &Result{PreviousTier: l.profile.FanTier}

	if sp.Connected {
		sp.Connected = false
		res.Notifications = append(res.Notifications, Notification{
			Title:       fmt.Sprintf("Disconnected from %s", platform),
			Description: fmt.Sprintf("Your %s account was disconnected", platform),
			Severity:    SeverityDestructive,
		})
		return res, nil
	}

	if l.rules.SocialConnectPoints > 0 {
		if err := l.checkCredit(l.rules.SocialConnectPoints); err != nil {
			return nil, err
		}
	}

	sp.Connected = true
	res.Notifications = append(res.Notifications, Notification{
		Title:       fmt.Sprintf("Connected with %s", platform),
		Description: fmt.Sprintf("Your %s account was connected successfully!", platform),
		Severity:    SeveritySuccess,
	})
	if l.rules.SocialConnectPoints > 0 {
		l.credit(res, l.rules.SocialConnectPoints, models.SourceSocial,
			fmt.Sprintf("Connected %s account", platform))
	}
	return res, nil
}
