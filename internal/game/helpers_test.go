package game

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/cardparty/internal/deck"
	"github.com/jason-s-yu/cardparty/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockNotifier collects events instead of sending them over WS.
type mockNotifier struct {
	mu         sync.Mutex
	direct     map[uuid.UUID][]Event
	broadcasts map[string][]Event
	groups     map[string]map[uuid.UUID]bool
	closed     map[string]bool
}

func newMockNotifier() *mockNotifier {
	return &mockNotifier{
		direct:     make(map[uuid.UUID][]Event),
		broadcasts: make(map[string][]Event),
		groups:     make(map[string]map[uuid.UUID]bool),
		closed:     make(map[string]bool),
	}
}

func (mn *mockNotifier) SendTo(connID uuid.UUID, ev Event) {
	mn.mu.Lock()
	defer mn.mu.Unlock()
	mn.direct[connID] = append(mn.direct[connID], ev)
}

func (mn *mockNotifier) Broadcast(roomID string, ev Event) {
	mn.mu.Lock()
	defer mn.mu.Unlock()
	mn.broadcasts[roomID] = append(mn.broadcasts[roomID], ev)
}

func (mn *mockNotifier) JoinGroup(roomID string, connID uuid.UUID) {
	mn.mu.Lock()
	defer mn.mu.Unlock()
	if mn.groups[roomID] == nil {
		mn.groups[roomID] = make(map[uuid.UUID]bool)
	}
	mn.groups[roomID][connID] = true
}

func (mn *mockNotifier) LeaveGroup(roomID string, connID uuid.UUID) {
	mn.mu.Lock()
	defer mn.mu.Unlock()
	delete(mn.groups[roomID], connID)
}

func (mn *mockNotifier) CloseGroup(roomID string) {
	mn.mu.Lock()
	defer mn.mu.Unlock()
	delete(mn.groups, roomID)
	mn.closed[roomID] = true
}

func (mn *mockNotifier) clear() {
	mn.mu.Lock()
	defer mn.mu.Unlock()
	mn.direct = make(map[uuid.UUID][]Event)
	mn.broadcasts = make(map[string][]Event)
}

// eventsFor returns the direct events of one type sent to connID.
func (mn *mockNotifier) eventsFor(connID uuid.UUID, typ EventType) []Event {
	mn.mu.Lock()
	defer mn.mu.Unlock()
	var out []Event
	for _, ev := range mn.direct[connID] {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

func (mn *mockNotifier) lastFor(connID uuid.UUID, typ EventType) *Event {
	events := mn.eventsFor(connID, typ)
	if len(events) == 0 {
		return nil
	}
	return &events[len(events)-1]
}

// broadcastsOf returns the room broadcasts of one type.
func (mn *mockNotifier) broadcastsOf(roomID string, typ EventType) []Event {
	mn.mu.Lock()
	defer mn.mu.Unlock()
	var out []Event
	for _, ev := range mn.broadcasts[roomID] {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

func (mn *mockNotifier) lastBroadcast(roomID string, typ EventType) *Event {
	events := mn.broadcastsOf(roomID, typ)
	if len(events) == 0 {
		return nil
	}
	return &events[len(events)-1]
}

// finalBroadcast is the most recent event broadcast to a room, of any type.
func (mn *mockNotifier) finalBroadcast(roomID string) *Event {
	mn.mu.Lock()
	defer mn.mu.Unlock()
	events := mn.broadcasts[roomID]
	if len(events) == 0 {
		return nil
	}
	ev := events[len(events)-1]
	return &ev
}

func (mn *mockNotifier) inGroup(roomID string, connID uuid.UUID) bool {
	mn.mu.Lock()
	defer mn.mu.Unlock()
	return mn.groups[roomID][connID]
}

// fakeDeck hands out distinct, numbered response cards and a fixed prompt.
type fakeDeck struct {
	mu   sync.Mutex
	next int
	pick int
}

func (d *fakeDeck) DrawResponseCards(n int) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	cards := make([]string, n)
	for i := range cards {
		d.next++
		cards[i] = fmt.Sprintf("card-%d", d.next)
	}
	return cards
}

func (d *fakeDeck) DrawPrompt() deck.PromptCard {
	d.mu.Lock()
	defer d.mu.Unlock()
	return deck.PromptCard{Text: "What's that smell?", Pick: d.pick}
}

func (d *fakeDeck) setPick(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pick = n
}

// mockHistory is a testify mock of HistorySink.
type mockHistory struct {
	mock.Mock
}

func (m *mockHistory) RecordRound(ctx context.Context, rec models.RoundRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// testSettings keeps every timer far in the future; tests fire callbacks by hand.
func testSettings() Settings {
	return Settings{
		RoundDuration: time.Hour,
		JudgeDuration: 0,
		ResultDelay:   time.Hour,
		HandSize:      5,
		MinPlayers:    3,
	}
}

type testTable struct {
	c    *Coordinator
	room *Room
	ids  []uuid.UUID
	mn   *mockNotifier
	deck *fakeDeck
}

// setupRoom creates a room hosted by ids[0] with numPlayers approved players.
func setupRoom(t *testing.T, numPlayers int, opts ...Option) *testTable {
	t.Helper()
	mn := newMockNotifier()
	fd := &fakeDeck{pick: 1}
	opts = append([]Option{WithSettings(testSettings()), WithLogger(quietLogger()), WithSeed(1)}, opts...)
	c := NewCoordinator(fd, mn, opts...)

	ids := make([]uuid.UUID, numPlayers)
	for i := range ids {
		ids[i] = uuid.New()
		_, err := c.Register(ids[i], fmt.Sprintf("player%d", i))
		require.NoError(t, err)
	}
	room, err := c.CreateRoom(ids[0], "test room")
	require.NoError(t, err)
	for _, id := range ids[1:] {
		require.NoError(t, c.JoinRoom(room.ID, id))
		require.NoError(t, c.Approve(room.ID, ids[0], id))
	}
	mn.clear()
	return &testTable{c: c, room: room, ids: ids, mn: mn, deck: fd}
}

// startedRoom is setupRoom followed by StartGame from the host.
func startedRoom(t *testing.T, numPlayers int, opts ...Option) *testTable {
	t.Helper()
	tt := setupRoom(t, numPlayers, opts...)
	require.NoError(t, tt.c.StartGame(tt.room.ID, tt.ids[0]))
	return tt
}

// hand returns a copy of a player's hand under the room lock.
func (tt *testTable) hand(id uuid.UUID) []string {
	tt.room.Mu.Lock()
	defer tt.room.Mu.Unlock()
	p := tt.room.player(id)
	if p == nil {
		return nil
	}
	out := make([]string, len(p.Hand))
	copy(out, p.Hand)
	return out
}

// submitFirst plays the first pick cards of the player's hand.
func (tt *testTable) submitFirst(t *testing.T, id uuid.UUID) []string {
	t.Helper()
	tt.room.Mu.Lock()
	pick := tt.room.CurrentPrompt.Pick
	tt.room.Mu.Unlock()
	cards := tt.hand(id)[:pick]
	require.NoError(t, tt.c.SubmitCards(tt.room.ID, id, cards))
	return cards
}

func (tt *testTable) phase() Phase {
	tt.room.Mu.Lock()
	defer tt.room.Mu.Unlock()
	return tt.room.Phase
}

func (tt *testTable) judgeIndex() int {
	tt.room.Mu.Lock()
	defer tt.room.Mu.Unlock()
	return tt.room.JudgeIndex
}

func (tt *testTable) roundNumber() int {
	tt.room.Mu.Lock()
	defer tt.room.Mu.Unlock()
	return tt.room.RoundNumber
}

// requireJudgeInRange checks the judge index invariant.
func requireJudgeInRange(t *testing.T, room *Room) {
	t.Helper()
	room.Mu.Lock()
	defer room.Mu.Unlock()
	if len(room.Players) == 0 {
		return
	}
	require.GreaterOrEqual(t, room.JudgeIndex, 0)
	require.Less(t, room.JudgeIndex, len(room.Players))
}
