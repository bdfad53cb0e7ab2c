package bestiary_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storyloom/trpg-api/internal/entities"
	"github.com/storyloom/trpg-api/internal/errors"
	"github.com/storyloom/trpg-api/internal/pkg/idgen"
	"github.com/storyloom/trpg-api/internal/repositories/bestiary"
)

func newTestBestiary(t *testing.T) bestiary.Repository {
	t.Helper()

	repo, err := bestiary.NewInMemory(&bestiary.Config{
		IDGenerator: idgen.NewSequential("mon"),
	})
	require.NoError(t, err)
	return repo
}

func TestNewInMemoryRequiresIDGenerator(t *testing.T) {
	_, err := bestiary.NewInMemory(&bestiary.Config{})
	require.Error(t, err)
}

func TestRosterForBuildsGroup(t *testing.T) {
	repo := newTestBestiary(t)

	out, err := repo.RosterFor(context.Background(), bestiary.RosterForInput{Kind: "bandits"})
	require.NoError(t, err)
	require.Len(t, out.Monsters, 2)

	leader := out.Monsters[1]
	assert.Equal(t, "Bandit Leader", leader.Name)
	assert.Equal(t, "mon_2", leader.Ref)
	assert.Equal(t, int32(50), leader.Pool(entities.PoolHP).Current)
	assert.Equal(t, int32(50), leader.Pool(entities.PoolHP).Max)
	assert.Equal(t, "8", leader.Attributes["attack"])
}

func TestRosterForMintsFreshInstances(t *testing.T) {
	repo := newTestBestiary(t)
	ctx := context.Background()

	first, err := repo.RosterFor(ctx, bestiary.RosterForInput{Kind: "monsters"})
	require.NoError(t, err)
	second, err := repo.RosterFor(ctx, bestiary.RosterForInput{Kind: "monsters"})
	require.NoError(t, err)

	assert.NotEqual(t, first.Monsters[0].Ref, second.Monsters[0].Ref)

	// Damaging one roster must not bleed into the next
	first.Monsters[0].Pool(entities.PoolHP).Adjust(-10)
	assert.Equal(t, int32(20), second.Monsters[0].Pool(entities.PoolHP).Current)
}

func TestRosterForUnknownKind(t *testing.T) {
	repo := newTestBestiary(t)

	_, err := repo.RosterFor(context.Background(), bestiary.RosterForInput{Kind: "dragons"})
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestKindsAreSorted(t *testing.T) {
	repo := newTestBestiary(t)

	kinds, err := repo.Kinds(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"bandits", "monsters", "soldiers"}, kinds)
}
