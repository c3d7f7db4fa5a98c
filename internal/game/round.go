// internal/game/round.go
package game

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/cardparty/internal/models"
)

const (
	noSubmissionsMessage = "Time is up and nobody played a card. The round restarts."
	maxFillAttempts      = 10
)

// StartGame deals a full hand to every player and opens the first round.
func (c *Coordinator) StartGame(roomID string, requesterID uuid.UUID) error {
	room, err := c.lockRoom(roomID)
	if err != nil {
		return err
	}
	defer room.Mu.Unlock()

	if room.playerIndex(requesterID) < 0 {
		return ErrPlayerNotInRoom
	}
	if room.Phase != PhaseIdle {
		return ErrGameInProgress
	}
	if len(room.Players) < c.settings.MinPlayers {
		return ErrTooFewPlayers
	}

	room.Phase = PhaseDealing
	room.JudgeIndex = 0
	for _, p := range room.Players {
		p.Hand = nil
		p.Score = 0
		c.fillHand(p)
	}
	c.roomLog(room).Infof("game started with %d players", len(room.Players))
	c.startRoundLocked(room)
	return nil
}

// fillHand tops a hand up to HandSize. Cards are unique within a hand unless the
// response pool is too small to allow it.
func (c *Coordinator) fillHand(p *Player) {
	missing := c.settings.HandSize - len(p.Hand)
	for attempt := 0; missing > 0 && attempt < maxFillAttempts; attempt++ {
		for _, card := range c.cards.DrawResponseCards(missing) {
			if !slices.Contains(p.Hand, card) {
				p.Hand = append(p.Hand, card)
			}
		}
		missing = c.settings.HandSize - len(p.Hand)
	}
	if missing > 0 {
		p.Hand = append(p.Hand, c.cards.DrawResponseCards(missing)...)
	}
}

// startRoundLocked draws a prompt, sends every player their private view and arms
// the round timer. Lock held.
func (c *Coordinator) startRoundLocked(room *Room) {
	room.stopTimers()
	prompt := c.cards.DrawPrompt()
	room.CurrentPrompt = &prompt
	room.Submissions = nil
	room.RoundNumber++
	room.Phase = PhaseRoundOpen
	room.roundDeadline = time.Now().Add(c.settings.RoundDuration)

	for _, p := range room.Players {
		c.sendRoundView(room, p, c.settings.RoundDuration)
	}

	round := room.RoundNumber
	room.roundTimer = time.AfterFunc(c.settings.RoundDuration, func() {
		c.onRoundTimeout(room, round)
	})
	c.roomLog(room).Debugf("round %d open, judge %s, prompt %q (pick %d)",
		round, room.judge().DisplayName, prompt.Text, prompt.Pick)
}

func (c *Coordinator) sendRoundView(room *Room, p *Player, remaining time.Duration) {
	hand := make([]string, len(p.Hand))
	copy(hand, p.Hand)
	c.notifier.SendTo(p.ID, Event{
		Type:   EventNewRound,
		RoomID: room.ID,
		Round: &RoundView{
			Number:   room.RoundNumber,
			Prompt:   *room.CurrentPrompt,
			Hand:     hand,
			IsJudge:  room.isJudge(p.ID),
			Duration: int(math.Ceil(max(remaining, 0).Seconds())),
		},
	})
}

// SubmitCards records a player's cards for the current round. When every non-judge
// player has submitted, the round timer is cancelled and the judge gets the
// anonymized submissions.
func (c *Coordinator) SubmitCards(roomID string, playerID uuid.UUID, cards []string) error {
	room, err := c.lockRoom(roomID)
	if err != nil {
		return err
	}
	defer room.Mu.Unlock()

	p := room.player(playerID)
	if p == nil {
		return ErrPlayerNotInRoom
	}
	if !room.inRound() {
		return ErrRoundNotOpen
	}
	if room.isJudge(playerID) {
		return ErrJudgeCannotSubmit
	}
	if room.submissionFor(playerID) != nil {
		return ErrAlreadySubmitted
	}
	if room.Phase != PhaseRoundOpen {
		return ErrRoundNotOpen
	}
	if len(cards) != room.CurrentPrompt.Pick {
		return ErrWrongCardCount
	}
	remaining, ok := removeCards(p.Hand, cards)
	if !ok {
		return ErrCardNotInHand
	}
	p.Hand = remaining

	played := make([]string, len(cards))
	copy(played, cards)
	room.Submissions = append(room.Submissions, &Submission{
		PlayerID:    p.ID,
		DisplayName: p.DisplayName,
		Cards:       played,
		Designator:  uuid.New(),
	})
	c.notifier.Broadcast(room.ID, Event{
		Type:     EventSubmissionUpdate,
		RoomID:   room.ID,
		Count:    len(room.Submissions),
		Required: len(room.Players) - 1,
	})
	c.roomLog(room).Debugf("%s submitted %d card(s) in round %d", p.DisplayName, len(cards), room.RoundNumber)

	c.checkAllSubmittedLocked(room)
	return nil
}

// checkAllSubmittedLocked moves an open round to judging once every non-judge player
// has submitted. The threshold is recomputed from the current player list. Lock held.
func (c *Coordinator) checkAllSubmittedLocked(room *Room) {
	required := len(room.Players) - 1
	if room.Phase != PhaseRoundOpen || len(room.Submissions) == 0 || len(room.Submissions) < required {
		return
	}
	room.stopRoundTimer()
	room.Phase = PhaseJudging
	c.sendSubmissionsToJudge(room)

	if c.settings.JudgeDuration > 0 {
		round := room.RoundNumber
		room.judgeTimer = time.AfterFunc(c.settings.JudgeDuration, func() {
			c.onJudgeTimeout(room, round)
		})
	}
	c.roomLog(room).Debugf("round %d: all %d submissions in, waiting for the judge", room.RoundNumber, len(room.Submissions))
}

// sendSubmissionsToJudge pushes the submissions, shuffled and stripped of player
// identity, to the judge only.
func (c *Coordinator) sendSubmissionsToJudge(room *Room) {
	anon := make([]AnonymousSubmission, 0, len(room.Submissions))
	for _, s := range room.Submissions {
		cards := make([]string, len(s.Cards))
		copy(cards, s.Cards)
		anon = append(anon, AnonymousSubmission{ID: s.Designator, Cards: cards})
	}
	c.shuffle(len(anon), func(i, j int) { anon[i], anon[j] = anon[j], anon[i] })
	c.notifier.SendTo(room.judge().ID, Event{
		Type:        EventChooseWinner,
		RoomID:      room.ID,
		Submissions: anon,
	})
}

// ChooseWinner resolves the round with the judge's pick. winnerID may be the
// submission designator the judge was shown or the submitting player's id.
func (c *Coordinator) ChooseWinner(roomID string, judgeID, winnerID uuid.UUID) error {
	room, err := c.lockRoom(roomID)
	if err != nil {
		return err
	}
	defer room.Mu.Unlock()

	if !room.isJudge(judgeID) {
		return ErrNotJudge
	}
	if room.Phase != PhaseJudging {
		return ErrNotJudging
	}
	sub := room.findSubmission(winnerID)
	if sub == nil {
		return ErrInvalidWinner
	}
	c.resolveLocked(room, sub, false)
	return nil
}

// onRoundTimeout runs when the round timer fires. Stale firings are ignored.
func (c *Coordinator) onRoundTimeout(room *Room, round int) {
	room.Mu.Lock()
	defer room.Mu.Unlock()
	if room.closed || room.Phase != PhaseRoundOpen || room.RoundNumber != round {
		return
	}
	room.roundTimer = nil

	if len(room.Submissions) == 0 {
		c.roomLog(room).Infof("round %d timed out with no submissions, restarting", round)
		c.notifier.Broadcast(room.ID, Event{Type: EventMessage, RoomID: room.ID, Message: noSubmissionsMessage})
		room.Phase = PhaseDealing
		c.startRoundLocked(room)
		return
	}
	sub := room.Submissions[c.randIntn(len(room.Submissions))]
	c.roomLog(room).Infof("round %d timed out, %s wins by draw", round, sub.DisplayName)
	c.resolveLocked(room, sub, true)
}

// onJudgeTimeout picks a random winner when the judge never decides.
func (c *Coordinator) onJudgeTimeout(room *Room, round int) {
	room.Mu.Lock()
	defer room.Mu.Unlock()
	if room.closed || room.Phase != PhaseJudging || room.RoundNumber != round || len(room.Submissions) == 0 {
		return
	}
	room.judgeTimer = nil
	sub := room.Submissions[c.randIntn(len(room.Submissions))]
	c.roomLog(room).Infof("judge did not choose in round %d, %s wins by draw", round, sub.DisplayName)
	c.resolveLocked(room, sub, true)
}

// resolveLocked announces the winner, rotates the judge, tops hands back up and
// schedules the next round after ResultDelay. Lock held.
func (c *Coordinator) resolveLocked(room *Room, sub *Submission, timeout bool) {
	room.stopTimers()
	prompt := *room.CurrentPrompt
	judge := room.judge()

	cards := make([]string, len(sub.Cards))
	copy(cards, sub.Cards)
	c.notifier.Broadcast(room.ID, Event{
		Type:   EventRoundWinner,
		RoomID: room.ID,
		Winner: &WinnerView{
			PlayerID:    sub.PlayerID,
			DisplayName: sub.DisplayName,
			Cards:       cards,
			Prompt:      prompt,
			Timeout:     timeout,
		},
	})
	if w := room.player(sub.PlayerID); w != nil {
		w.Score++
	}

	c.recordRound(models.RoundRecord{
		RoomID:      room.ID,
		RoomName:    room.Name,
		Round:       room.RoundNumber,
		Prompt:      prompt.Text,
		Pick:        prompt.Pick,
		JudgeName:   judge.DisplayName,
		WinnerID:    sub.PlayerID,
		WinnerName:  sub.DisplayName,
		Cards:       cards,
		Timeout:     timeout,
		Submissions: len(room.Submissions),
		ResolvedAt:  time.Now().UTC(),
	})

	room.JudgeIndex = (room.JudgeIndex + 1) % len(room.Players)
	room.Submissions = nil
	for _, p := range room.Players {
		c.fillHand(p)
	}
	room.Phase = PhaseResolved
	c.notifier.Broadcast(room.ID, room.roomUpdate())

	round := room.RoundNumber
	room.nextRoundTimer = time.AfterFunc(c.settings.ResultDelay, func() {
		c.onNextRound(room, round)
	})
}

// onNextRound opens the round that follows a resolution.
func (c *Coordinator) onNextRound(room *Room, round int) {
	room.Mu.Lock()
	defer room.Mu.Unlock()
	if room.closed || room.Phase != PhaseResolved || room.RoundNumber != round {
		return
	}
	room.nextRoundTimer = nil
	room.Phase = PhaseDealing
	c.startRoundLocked(room)
}

// abortRoundLocked returns submitted cards to their owners and restarts the round
// with the current judge. Lock held.
func (c *Coordinator) abortRoundLocked(room *Room, reason string) {
	returnSubmittedCards(room)
	c.notifier.Broadcast(room.ID, Event{Type: EventMessage, RoomID: room.ID, Message: reason})
	room.Phase = PhaseDealing
	c.startRoundLocked(room)
}

// stopGameLocked returns the room to Idle. Lock held.
func (c *Coordinator) stopGameLocked(room *Room, reason string) {
	room.stopTimers()
	returnSubmittedCards(room)
	room.CurrentPrompt = nil
	room.Phase = PhaseIdle
	room.JudgeIndex = 0
	c.notifier.Broadcast(room.ID, Event{Type: EventMessage, RoomID: room.ID, Message: reason})
	c.roomLog(room).Info(reason)
}

// returnSubmittedCards gives every submitted card back to its owner and clears the submissions.
func returnSubmittedCards(room *Room) {
	for _, s := range room.Submissions {
		if p := room.player(s.PlayerID); p != nil {
			p.Hand = append(p.Hand, s.Cards...)
		}
	}
	room.Submissions = nil
}

func tooFewPlayersMessage(minPlayers int) string {
	return fmt.Sprintf("Fewer than %d players left. The game has stopped.", minPlayers)
}
