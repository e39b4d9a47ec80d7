package seed

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aimd54/fan-ledger/internal/models"
	"github.com/aimd54/fan-ledger/pkg/logger"
)

type memStore struct {
	fans     map[uint]*models.FanProfile
	rewards  map[string]models.Reward
	contests map[string]models.Contest
	err      error
}

func newMemStore() *memStore {
	return &memStore{
		fans:     make(map[uint]*models.FanProfile),
		rewards:  make(map[string]models.Reward),
		contests: make(map[string]models.Contest),
	}
}

func (m *memStore) Exists(id uint) (bool, error) {
	_, ok := m.fans[id]
	return ok, nil
}

func (m *memStore) Create(p *models.FanProfile) error {
	m.fans[p.ID] = p
	return nil
}

type rewardStore struct{ *memStore }

func (s rewardStore) Upsert(r *models.Reward) error {
	if s.err != nil {
		return s.err
	}
	s.rewards[r.ID] = *r
	return nil
}

type contestStore struct{ *memStore }

func (s contestStore) Upsert(c *models.Contest) error {
	s.contests[c.ID] = *c
	return nil
}

func TestApply(t *testing.T) {
	d, err := Load()
	require.NoError(t, err)

	store := newMemStore()
	sum, err := Apply(d, store, rewardStore{store}, contestStore{store}, logger.Nop())
	require.NoError(t, err)

	assert.True(t, sum.FanCreated)
	assert.Equal(t, 4, sum.Rewards)
	assert.Equal(t, 3, sum.Contests)
	require.Contains(t, store.fans, uint(1))
	assert.Equal(t, 2150, store.fans[1].TotalPoints)
	assert.Len(t, store.fans[1].PointsHistory, 5)
}

func TestApply_KeepsExistingFan(t *testing.T) {
	d, err := Load()
	require.NoError(t, err)

	store := newMemStore()
	store.fans[1] = &models.FanProfile{ID: 1, TotalPoints: 9000}

	sum, err := Apply(d, store, rewardStore{store}, contestStore{store}, logger.Nop())
	require.NoError(t, err)

	assert.False(t, sum.FanCreated)
	assert.Equal(t, 9000, store.fans[1].TotalPoints)
	assert.Len(t, store.rewards, 4)
}

func TestApply_RewardError(t *testing.T) {
	d, err := Load()
	require.NoError(t, err)

	store := newMemStore()
	store.err = errors.New("disk full")

	_, err = Apply(d, store, rewardStore{store}, contestStore{store}, logger.Nop())
	assert.Error(t, err)
	assert.Empty(t, store.fans)
}
