package turn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storyloom/trpg-api/internal/entities"
	"github.com/storyloom/trpg-api/internal/events"
)

func compilerSession() *entities.GameSession {
	session := &entities.GameSession{
		GameID:  "game-123",
		OwnerID: "owner-456",
		Player:  entities.NewActor("Aria", 30, 10),
		Companions: map[string]*entities.Actor{
			"comp-2": entities.NewActor("Cole", 20, 8),
			"comp-1": entities.NewActor("Bren", 25, 5),
		},
	}
	session.Player.Inventory.Gold = 40
	return session
}

func TestCompileRequestBasics(t *testing.T) {
	session := compilerSession()
	session.AppendTurn("The tale opens.", nil)

	req := compileRequest(session, "I draw my map.", nil, DefaultHistoryWindow)

	assert.Equal(t, int32(2), req.Turn)
	assert.Equal(t, "I draw my map.", req.PlayerMessage)
	assert.Equal(t, "player", req.Player.Ref)
	assert.Equal(t, int32(30), req.Player.HP)
	assert.Equal(t, int32(40), req.Player.Gold)
	assert.Nil(t, req.Combat)
	assert.Nil(t, req.Event)

	require.Len(t, req.Companions, 2)
	assert.Equal(t, "comp-1", req.Companions[0].Ref, "companions are ordered by ref")
	assert.Equal(t, "comp-2", req.Companions[1].Ref)
}

func TestCompileRequestHistoryWindow(t *testing.T) {
	session := compilerSession()
	for i := 0; i < 5; i++ {
		session.AppendTurn("chapter", []entities.Dialogue{
			{SpeakerType: entities.SpeakerPlayer, Text: "onward"},
			{SpeakerType: entities.SpeakerNPC, Name: "Bren", Text: "right behind you"},
		})
	}

	req := compileRequest(session, "msg", nil, 3)

	require.Len(t, req.History, 3)
	assert.Equal(t, int32(3), req.History[0].Turn)
	assert.Equal(t, int32(5), req.History[2].Turn)

	require.Len(t, req.History[0].Lines, 2)
	assert.Equal(t, "player", req.History[0].Lines[0].Speaker, "unnamed lines fall back to speaker type")
	assert.Equal(t, "Bren", req.History[0].Lines[1].Speaker)
}

func TestCompileRequestCombatView(t *testing.T) {
	session := compilerSession()
	require.NoError(t, session.StartCombat([]*entities.Monster{
		{Actor: *entities.NewActor("Slime", 20, 0), Ref: "mon-1"},
		{Actor: *entities.NewActor("Goblin", 25, 0), Ref: "mon-2"},
	}))
	session.Combat.Phase = entities.CombatPhaseOngoing
	session.Combat.Round = 2

	req := compileRequest(session, "msg", nil, DefaultHistoryWindow)

	require.NotNil(t, req.Combat)
	assert.Equal(t, "ongoing", req.Combat.Phase)
	assert.Equal(t, int32(2), req.Combat.Round)
	require.Len(t, req.Combat.Monsters, 2)
	assert.Equal(t, "mon-1", req.Combat.Monsters[0].Ref)
	assert.Equal(t, int32(20), req.Combat.Monsters[0].HP)
}

func TestCompileRequestEventView(t *testing.T) {
	session := compilerSession()

	req := compileRequest(session, "msg", &events.Outcome{
		Kind:              events.KindCombat,
		EnemyKind:         "bandits",
		EffectDescription: "Bandits spring from the brush.",
	}, DefaultHistoryWindow)

	require.NotNil(t, req.Event)
	assert.Equal(t, "combat", req.Event.Kind)
	assert.Equal(t, "Bandits spring from the brush.", req.Event.Description)
}
