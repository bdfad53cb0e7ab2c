package turn

import (
	"log/slog"
	"strings"

	"github.com/storyloom/trpg-api/internal/entities"
	"github.com/storyloom/trpg-api/internal/errors"
	"github.com/storyloom/trpg-api/internal/events"
	"github.com/storyloom/trpg-api/internal/narrator"
)

// reconcile folds a generator response into the working session and
// appends exactly one story turn. The response is untrusted: unknown
// actor refs are discarded, every numeric change goes through the
// session's clamping mutations, and undecodable shapes degrade to a
// minimal turn instead of failing. Only the working copy is mutated;
// nothing here touches storage.
func reconcile(session *entities.GameSession, message string, outcome *events.Outcome, resp *narrator.TurnResponse) entities.StoryTurn {
	if resp == nil {
		resp = narrator.Fallback("")
	}

	applyStateUpdates(session, resp.StateUpdates)
	applyCombatUpdate(session, resp.UpdatedCombat)
	session.NormalizeCombat()
	if session.Combat != nil {
		session.Combat.Round++
	}

	narration := strings.TrimSpace(resp.Narration)
	if narration == "" {
		narration = narrator.FallbackNarration
	}

	return session.AppendTurn(narration, buildDialogues(session, message, outcome, resp.Dialogues))
}

// buildDialogues assembles the turn's dialogue lines: the player's own
// message leads, a random event announces itself next, then the
// generator's validated lines follow.
func buildDialogues(session *entities.GameSession, message string, outcome *events.Outcome, items []narrator.DialogueItem) []entities.Dialogue {
	dialogues := []entities.Dialogue{
		{SpeakerType: entities.SpeakerPlayer, Text: message},
	}

	if outcome != nil && outcome.Kind == events.KindCombat {
		dialogues = append(dialogues, entities.Dialogue{
			SpeakerType: entities.SpeakerNarration,
			Text:        outcome.EffectDescription,
			Meta: map[string]string{
				"event":      string(outcome.Kind),
				"enemy_kind": outcome.EnemyKind,
			},
		})
	}

	for _, item := range items {
		speaker := normalizeSpeaker(item.SpeakerType)
		if speaker == "" {
			slog.Debug("discarding dialogue with unknown speaker type",
				"speaker_type", item.SpeakerType)
			continue
		}
		// Narration lines are already captured in the turn narration
		if speaker == entities.SpeakerNarration {
			continue
		}
		if strings.TrimSpace(item.Text) == "" {
			continue
		}

		ref := item.ActorRef
		if ref != "" {
			if _, err := session.Actor(ref); err != nil {
				slog.Debug("discarding unknown actor ref on dialogue", "actor_ref", ref)
				ref = ""
			}
		}

		dialogues = append(dialogues, entities.Dialogue{
			SpeakerType: speaker,
			Name:        item.Name,
			Text:        item.Text,
			ActorRef:    ref,
			IsAction:    item.IsAction,
			Meta:        item.Meta,
		})
	}

	return dialogues
}

func normalizeSpeaker(raw string) entities.SpeakerType {
	switch strings.ToLower(raw) {
	case "player", "user":
		return entities.SpeakerPlayer
	case "npc":
		return entities.SpeakerNPC
	case "monster":
		return entities.SpeakerMonster
	case "narration", "system":
		return entities.SpeakerNarration
	default:
		return ""
	}
}

func applyStateUpdates(session *entities.GameSession, updates *narrator.StateUpdates) {
	if updates == nil {
		return
	}

	// The player update applies to the player no matter what ref the
	// generator put on it
	playerUpdate := updates.Player
	playerUpdate.ActorRef = entities.PlayerRef
	applyActorUpdate(session, playerUpdate)

	for _, update := range updates.Companions {
		applyActorUpdate(session, update)
	}
}

// applyActorUpdate applies one actor's deltas through the session's
// clamping mutations. Invalid targets or impossible changes are
// discarded, not propagated.
func applyActorUpdate(session *entities.GameSession, update narrator.ActorUpdate) {
	if _, err := session.Actor(update.ActorRef); err != nil {
		slog.Debug("discarding state update for unknown actor",
			"actor_ref", update.ActorRef)
		return
	}

	applyPoolDelta(session, update.ActorRef, entities.PoolHP, update.HPDelta)
	applyPoolDelta(session, update.ActorRef, entities.PoolMP, update.MPDelta)

	switch {
	case update.GoldDelta < 0:
		discardOnError(session.SpendGold(update.ActorRef, -update.GoldDelta))
	case update.GoldDelta > 0:
		discardOnError(session.AddItem(update.ActorRef, update.GoldDelta, ""))
	}
	for _, item := range update.ItemsAdd {
		if item == "" {
			continue
		}
		discardOnError(session.AddItem(update.ActorRef, 0, item))
	}
	for _, item := range update.ItemsRemove {
		discardOnError(session.RemoveItem(update.ActorRef, item))
	}
}

func applyPoolDelta(session *entities.GameSession, ref, pool string, delta int32) {
	switch {
	case delta < 0:
		discardOnError(session.ApplyDamage(ref, pool, -delta))
	case delta > 0:
		discardOnError(session.Heal(ref, pool, delta))
	}
}

// applyCombatUpdate folds the generator's combat view back into the
// session. The generator can progress or end a combat it was told
// about; it can never conjure one, and it can only touch monsters the
// session already owns.
func applyCombatUpdate(session *entities.GameSession, update *narrator.CombatUpdate) {
	if update == nil || session.Combat == nil {
		return
	}

	for _, mu := range update.Monsters {
		monster := findMonster(session.Combat, mu.Ref)
		if monster == nil {
			slog.Debug("discarding update for unknown monster", "ref", mu.Ref)
			continue
		}
		hp := monster.Pool(entities.PoolHP)
		if hp == nil {
			continue
		}
		hp.Adjust(mu.HP - hp.Current)
	}

	if phase := normalizePhase(update.Phase); phase != "" {
		session.Combat.Phase = phase
	}

	if update.InCombat != nil && !*update.InCombat {
		session.EndCombat()
	}
}

func findMonster(combat *entities.CombatState, ref string) *entities.Monster {
	for _, m := range combat.Monsters {
		if m.Ref == ref {
			return m
		}
	}
	return nil
}

func normalizePhase(raw string) entities.CombatPhase {
	switch entities.CombatPhase(strings.ToLower(raw)) {
	case entities.CombatPhaseEngaging:
		return entities.CombatPhaseEngaging
	case entities.CombatPhaseOngoing:
		return entities.CombatPhaseOngoing
	case entities.CombatPhaseResolving:
		return entities.CombatPhaseResolving
	default:
		return ""
	}
}

func discardOnError(err error) {
	if err != nil {
		slog.Debug("discarding invalid state change", "error", errors.GetMessage(err))
	}
}
