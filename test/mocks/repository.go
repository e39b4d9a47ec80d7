package mocks

import "github.com/aimd54/fan-ledger/internal/models"

// MockRewardRepository is a simple mock for the reward catalog
type MockRewardRepository struct {
	Rewards  []models.Reward
	ListFunc func() ([]models.Reward, error)
}

func (m *MockRewardRepository) List() ([]models.Reward, error) {
	if m.ListFunc != nil {
		return m.ListFunc()
	}
	return m.Rewards, nil
}

// MockContestRepository is a simple mock for the contest catalog
type MockContestRepository struct {
	Contests        []models.Contest
	ListFunc        func() ([]models.Contest, error)
	ListEntriesFunc func(fanID uint) ([]models.ContestEntry, error)
}

func (m *MockContestRepository) List() ([]models.Contest, error) {
	if m.ListFunc != nil {
		return m.ListFunc()
	}
	return m.Contests, nil
}

func (m *MockContestRepository) ListEntries(fanID uint) ([]models.ContestEntry, error) {
	if m.ListEntriesFunc != nil {
		return m.ListEntriesFunc(fanID)
	}
	return []models.ContestEntry{}, nil
}
