// Package turn implements the turn engine: the single entry point
// that advances a game session by one turn from a player message.
//
// A turn moves through five steps: load the session, resolve a random
// event, generate narrative, reconcile the untrusted response into the
// next state, and commit. Everything before commit works on a local
// clone, so a failure at any step leaves the stored session exactly as
// it was and the caller may safely retry the same message.
package turn

import (
	"context"
	"log/slog"

	"github.com/storyloom/trpg-api/internal/entities"
	"github.com/storyloom/trpg-api/internal/errors"
	"github.com/storyloom/trpg-api/internal/events"
	"github.com/storyloom/trpg-api/internal/narrator"
	"github.com/storyloom/trpg-api/internal/repositories/gamesession"
)

type orchestrator struct {
	sessionRepo   gamesession.Repository
	generator     narrator.Generator
	events        events.Resolver
	historyWindow int
}

// NewOrchestrator creates a turn orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	window := cfg.HistoryWindow
	if window == 0 {
		window = DefaultHistoryWindow
	}

	return &orchestrator{
		sessionRepo:   cfg.SessionRepo,
		generator:     cfg.Generator,
		events:        cfg.Events,
		historyWindow: window,
	}, nil
}

var _ Service = (*orchestrator)(nil)

// ProcessTurn advances one turn of a game session from a player message
func (o *orchestrator) ProcessTurn(ctx context.Context, input *ProcessTurnInput) (*ProcessTurnOutput, error) {
	if input.GameID == "" {
		return nil, errors.InvalidArgument("game ID is required")
	}
	if input.OwnerID == "" {
		return nil, errors.InvalidArgument("owner ID is required")
	}
	if input.Message == "" {
		return nil, errors.InvalidArgument("player message is required")
	}

	// Loaded
	getOut, err := o.sessionRepo.Get(ctx, gamesession.GetInput{
		GameID:  input.GameID,
		OwnerID: input.OwnerID,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load session")
	}

	// All turn computation happens on this clone; the loaded state is
	// never touched, so a failed turn commits nothing.
	working := getOut.Session.Clone()

	// EventResolved
	outcome, err := o.events.Resolve(ctx, working)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve random event")
	}
	if outcome != nil && outcome.Patch != nil {
		// A patch that cannot apply to the session it was resolved
		// against is a programming error, not generator noise
		if err := outcome.Patch(working); err != nil {
			return nil, errors.Wrap(err, "failed to apply event effect")
		}
	}

	// Generated
	req := compileRequest(working, input.Message, outcome, o.historyWindow)
	resp, err := o.generator.Generate(ctx, req)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "narrative generator unavailable")
	}

	// Reconciled
	storyTurn := reconcile(working, input.Message, outcome, resp)

	// Committed
	commitOut, err := o.sessionRepo.Commit(ctx, gamesession.CommitInput{Session: working})
	if err != nil {
		return nil, errors.Wrap(err, "failed to commit turn")
	}
	committed := commitOut.Session

	eventKind := ""
	if outcome != nil {
		eventKind = string(outcome.Kind)
	}
	slog.Info("turn processed",
		"game_id", committed.GameID,
		"owner_id", committed.OwnerID,
		"turn", storyTurn.TurnNumber,
		"version", committed.Version,
		"event", eventKind,
		"in_combat", committed.Combat != nil,
	)

	output := &ProcessTurnOutput{
		TurnNumber: storyTurn.TurnNumber,
		Narration:  storyTurn.Narration,
		Dialogues:  storyTurn.Dialogues,
		Player:     stateView(entities.PlayerRef, committed.Player),
		Combat:     committed.Combat,
	}
	for _, ref := range sortedCompanionRefs(committed) {
		output.Companions = append(output.Companions, stateView(ref, committed.Companions[ref]))
	}
	return output, nil
}

func stateView(ref string, actor *entities.Actor) ActorStateView {
	view := ActorStateView{
		Ref:   ref,
		Name:  actor.Name,
		Gold:  actor.Inventory.Gold,
		Items: actor.Inventory.Items,
	}
	if hp := actor.Pool(entities.PoolHP); hp != nil {
		view.HP, view.HPMax = hp.Current, hp.Max
	}
	if mp := actor.Pool(entities.PoolMP); mp != nil {
		view.MP, view.MPMax = mp.Current, mp.Max
	}
	return view
}
