package turn

import (
	"sort"

	"github.com/storyloom/trpg-api/internal/entities"
	"github.com/storyloom/trpg-api/internal/events"
	"github.com/storyloom/trpg-api/internal/narrator"
)

// compileRequest assembles the bounded generation request from the
// working session state, the player's message, and a resolved event.
// This is the only place session internals cross the generator
// boundary; raw persistence shapes never do.
func compileRequest(session *entities.GameSession, message string, outcome *events.Outcome, window int) *narrator.TurnRequest {
	req := &narrator.TurnRequest{
		Turn:          session.CurrentTurn() + 1,
		PlayerMessage: message,
		Player:        actorView(entities.PlayerRef, session.Player),
	}

	for _, ref := range sortedCompanionRefs(session) {
		req.Companions = append(req.Companions, actorView(ref, session.Companions[ref]))
	}

	if session.Combat != nil {
		combat := &narrator.CombatView{
			Phase: string(session.Combat.Phase),
			Round: session.Combat.Round,
		}
		for _, m := range session.Combat.Monsters {
			combat.Monsters = append(combat.Monsters, actorView(m.Ref, &m.Actor))
		}
		req.Combat = combat
	}

	if outcome != nil {
		req.Event = &narrator.EventView{
			Kind:        string(outcome.Kind),
			Description: outcome.EffectDescription,
		}
	}

	for _, turn := range session.RecentHistory(window) {
		entry := narrator.HistoryTurn{
			Turn:      turn.TurnNumber,
			Narration: turn.Narration,
		}
		for _, d := range turn.Dialogues {
			speaker := d.Name
			if speaker == "" {
				speaker = string(d.SpeakerType)
			}
			entry.Lines = append(entry.Lines, narrator.HistoryLine{
				Speaker: speaker,
				Text:    d.Text,
			})
		}
		req.History = append(req.History, entry)
	}

	return req
}

func actorView(ref string, actor *entities.Actor) narrator.ActorView {
	view := narrator.ActorView{
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

func sortedCompanionRefs(session *entities.GameSession) []string {
	refs := make([]string, 0, len(session.Companions))
	for ref := range session.Companions {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}
