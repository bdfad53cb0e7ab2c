package turn_test

import (
	"context"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/stretchr/testify/suite"

	"github.com/storyloom/trpg-api/internal/entities"
	"github.com/storyloom/trpg-api/internal/errors"
	"github.com/storyloom/trpg-api/internal/events"
	eventsmock "github.com/storyloom/trpg-api/internal/events/mock"
	"github.com/storyloom/trpg-api/internal/narrator"
	narratormock "github.com/storyloom/trpg-api/internal/narrator/mock"
	"github.com/storyloom/trpg-api/internal/orchestrators/turn"
	"github.com/storyloom/trpg-api/internal/repositories/gamesession"
	gamesessionmock "github.com/storyloom/trpg-api/internal/repositories/gamesession/mock"
)

type OrchestratorTestSuite struct {
	suite.Suite
	ctrl          *gomock.Controller
	mockRepo      *gamesessionmock.MockRepository
	mockGenerator *narratormock.MockGenerator
	mockEvents    *eventsmock.MockResolver
	service       turn.Service
	ctx           context.Context
}

func (s *OrchestratorTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockRepo = gamesessionmock.NewMockRepository(s.ctrl)
	s.mockGenerator = narratormock.NewMockGenerator(s.ctrl)
	s.mockEvents = eventsmock.NewMockResolver(s.ctrl)
	s.ctx = context.Background()

	service, err := turn.NewOrchestrator(&turn.Config{
		SessionRepo: s.mockRepo,
		Generator:   s.mockGenerator,
		Events:      s.mockEvents,
	})
	s.Require().NoError(err)
	s.service = service
}

func (s *OrchestratorTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *OrchestratorTestSuite) storedSession() *entities.GameSession {
	session := &entities.GameSession{
		GameID:  "game-123",
		OwnerID: "owner-456",
		Player:  entities.NewActor("Aria", 30, 10),
		Version: 3,
	}
	session.AppendTurn("The road stretches on.", nil)
	session.AppendTurn("A village appears ahead.", nil)
	return session
}

func (s *OrchestratorTestSuite) expectGet(session *entities.GameSession) {
	s.mockRepo.EXPECT().
		Get(s.ctx, gamesession.GetInput{GameID: "game-123", OwnerID: "owner-456"}).
		Return(&gamesession.GetOutput{Session: session}, nil)
}

func (s *OrchestratorTestSuite) processTurn(message string) (*turn.ProcessTurnOutput, error) {
	return s.service.ProcessTurn(s.ctx, &turn.ProcessTurnInput{
		GameID:  "game-123",
		OwnerID: "owner-456",
		Message: message,
	})
}

func (s *OrchestratorTestSuite) TestProcessTurnHappyPath() {
	stored := s.storedSession()
	s.expectGet(stored)

	s.mockEvents.EXPECT().
		Resolve(s.ctx, gomock.Any()).
		Return(nil, nil)

	s.mockGenerator.EXPECT().
		Generate(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, req *narrator.TurnRequest) (*narrator.TurnResponse, error) {
			s.Equal(int32(3), req.Turn)
			s.Equal("I enter the village.", req.PlayerMessage)
			s.Equal(int32(30), req.Player.HP)
			s.Len(req.History, 2)
			s.Nil(req.Event)
			return &narrator.TurnResponse{
				Narration: "The villagers eye the newcomer warily.",
				Dialogues: []narrator.DialogueItem{
					{SpeakerType: "npc", Name: "Elder", Text: "Welcome, traveler."},
				},
				StateUpdates: &narrator.StateUpdates{
					Player: narrator.ActorUpdate{ActorRef: "player", HPDelta: -5, GoldDelta: 10},
				},
			}, nil
		})

	s.mockRepo.EXPECT().
		Commit(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, input gamesession.CommitInput) (*gamesession.CommitOutput, error) {
			// The commit carries the version observed at load time
			s.Equal(int64(3), input.Session.Version)
			committed := input.Session.Clone()
			committed.Version++
			return &gamesession.CommitOutput{Session: committed}, nil
		})

	output, err := s.processTurn("I enter the village.")
	s.Require().NoError(err)

	s.Equal(int32(3), output.TurnNumber)
	s.Equal("The villagers eye the newcomer warily.", output.Narration)
	s.Require().Len(output.Dialogues, 2)
	s.Equal(entities.SpeakerPlayer, output.Dialogues[0].SpeakerType)
	s.Equal("I enter the village.", output.Dialogues[0].Text)
	s.Equal("Elder", output.Dialogues[1].Name)
	s.Equal(int32(25), output.Player.HP)
	s.Equal(int32(10), output.Player.Gold)

	// The stored session itself was never mutated
	s.Equal(int32(30), stored.Player.Pool(entities.PoolHP).Current)
	s.Len(stored.History, 2)
}

func (s *OrchestratorTestSuite) TestProcessTurnWithCombatEvent() {
	stored := s.storedSession()
	s.expectGet(stored)

	monsters := []*entities.Monster{
		{Actor: *entities.NewActor("Slime", 20, 0), Ref: "mon-1"},
	}
	s.mockEvents.EXPECT().
		Resolve(s.ctx, gomock.Any()).
		Return(&events.Outcome{
			Kind:              events.KindCombat,
			EnemyKind:         "monsters",
			EffectDescription: "A sudden battle breaks out.",
			Patch: func(session *entities.GameSession) error {
				return session.StartCombat(monsters)
			},
		}, nil)

	s.mockGenerator.EXPECT().
		Generate(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, req *narrator.TurnRequest) (*narrator.TurnResponse, error) {
			s.Require().NotNil(req.Event)
			s.Equal("combat", req.Event.Kind)
			s.Require().NotNil(req.Combat)
			s.Len(req.Combat.Monsters, 1)
			return &narrator.TurnResponse{Narration: "Steel rings against slime."}, nil
		})

	s.mockRepo.EXPECT().
		Commit(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, input gamesession.CommitInput) (*gamesession.CommitOutput, error) {
			s.Require().NotNil(input.Session.Combat)
			s.Equal(int32(1), input.Session.Combat.Round)
			return &gamesession.CommitOutput{Session: input.Session}, nil
		})

	output, err := s.processTurn("I look around.")
	s.Require().NoError(err)

	s.Require().NotNil(output.Combat)
	s.Require().Len(output.Dialogues, 2)
	s.Equal(entities.SpeakerNarration, output.Dialogues[1].SpeakerType)
	s.Equal("combat", output.Dialogues[1].Meta["event"])
}

func (s *OrchestratorTestSuite) TestProcessTurnGeneratorFailureCommitsNothing() {
	s.expectGet(s.storedSession())

	s.mockEvents.EXPECT().
		Resolve(s.ctx, gomock.Any()).
		Return(nil, nil)

	s.mockGenerator.EXPECT().
		Generate(s.ctx, gomock.Any()).
		Return(nil, errors.Unavailable("model overloaded"))

	// No Commit expectation: a failed turn must not write anything

	_, err := s.processTurn("I enter the village.")
	s.Require().Error(err)
	s.True(errors.IsUnavailable(err))
}

func (s *OrchestratorTestSuite) TestProcessTurnSessionNotFound() {
	s.mockRepo.EXPECT().
		Get(s.ctx, gomock.Any()).
		Return(nil, errors.NotFound("game session not found"))

	_, err := s.processTurn("hello?")
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))
}

func (s *OrchestratorTestSuite) TestProcessTurnVersionConflictSurfaces() {
	s.expectGet(s.storedSession())

	s.mockEvents.EXPECT().
		Resolve(s.ctx, gomock.Any()).
		Return(nil, nil)

	s.mockGenerator.EXPECT().
		Generate(s.ctx, gomock.Any()).
		Return(&narrator.TurnResponse{Narration: "The night is quiet."}, nil)

	s.mockRepo.EXPECT().
		Commit(s.ctx, gomock.Any()).
		Return(nil, errors.Aborted("version conflict: expected 3, found 4"))

	_, err := s.processTurn("I rest by the fire.")
	s.Require().Error(err)
	s.True(errors.IsAborted(err))
}

func (s *OrchestratorTestSuite) TestProcessTurnValidatesInput() {
	_, err := s.service.ProcessTurn(s.ctx, &turn.ProcessTurnInput{OwnerID: "owner-456", Message: "hi"})
	s.True(errors.IsInvalidArgument(err))

	_, err = s.service.ProcessTurn(s.ctx, &turn.ProcessTurnInput{GameID: "game-123", Message: "hi"})
	s.True(errors.IsInvalidArgument(err))

	_, err = s.service.ProcessTurn(s.ctx, &turn.ProcessTurnInput{GameID: "game-123", OwnerID: "owner-456"})
	s.True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestNewOrchestratorValidatesConfig() {
	_, err := turn.NewOrchestrator(&turn.Config{
		Generator: s.mockGenerator,
		Events:    s.mockEvents,
	})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}
