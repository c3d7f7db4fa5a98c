// internal/game/coordinator.go
package game

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jason-s-yu/cardparty/internal/deck"
	"github.com/jason-s-yu/cardparty/internal/models"
	"github.com/sirupsen/logrus"
)

const maxDisplayNameLen = 32

// CardSource is the deck as seen by the round engine.
type CardSource interface {
	DrawResponseCards(n int) []string
	DrawPrompt() deck.PromptCard
}

// HistorySink receives every resolved round. Failures are logged and never affect the room.
type HistorySink interface {
	RecordRound(ctx context.Context, rec models.RoundRecord) error
}

// Settings are the timing and sizing rules of the game.
type Settings struct {
	RoundDuration time.Duration
	JudgeDuration time.Duration // 0 disables the judging timeout
	ResultDelay   time.Duration
	HandSize      int
	MinPlayers    int
}

// DefaultSettings: 3 minute rounds, 5 card hands, a 5 second pause after each result.
func DefaultSettings() Settings {
	return Settings{
		RoundDuration: 180 * time.Second,
		JudgeDuration: 60 * time.Second,
		ResultDelay:   5 * time.Second,
		HandSize:      5,
		MinPlayers:    3,
	}
}

// Coordinator owns the registry and connection bindings and exposes every inbound
// room operation. Each operation takes the target room's lock for its whole duration.
type Coordinator struct {
	Registry *Registry
	Bindings *Binding

	cards    CardSource
	notifier Notifier
	history  HistorySink
	settings Settings
	log      *logrus.Entry

	rngMu sync.Mutex
	rng   *rand.Rand
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithSettings overrides DefaultSettings.
func WithSettings(s Settings) Option {
	return func(c *Coordinator) { c.settings = s }
}

// WithHistory sets the sink that receives resolved rounds.
func WithHistory(h HistorySink) Option {
	return func(c *Coordinator) { c.history = h }
}

// WithLogger sets the logger; the default discards debug output.
func WithLogger(l *logrus.Logger) Option {
	return func(c *Coordinator) { c.log = logrus.NewEntry(l) }
}

// WithSeed makes random winner selection and submission order reproducible.
func WithSeed(seed int64) Option {
	return func(c *Coordinator) { c.rng = rand.New(rand.NewSource(seed)) }
}

// NewCoordinator builds a coordinator with an empty registry.
func NewCoordinator(cards CardSource, notifier Notifier, opts ...Option) *Coordinator {
	c := &Coordinator{
		Registry: NewRegistry(),
		Bindings: NewBinding(),
		cards:    cards,
		notifier: notifier,
		settings: DefaultSettings(),
		log:      logrus.NewEntry(logrus.StandardLogger()),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Settings returns the active game rules.
func (c *Coordinator) Settings() Settings { return c.settings }

func (c *Coordinator) randIntn(n int) int {
	c.rngMu.Lock()
	defer c.rngMu.Unlock()
	return c.rng.Intn(n)
}

func (c *Coordinator) shuffle(n int, swap func(i, j int)) {
	c.rngMu.Lock()
	defer c.rngMu.Unlock()
	c.rng.Shuffle(n, swap)
}

func (c *Coordinator) roomLog(room *Room) *logrus.Entry {
	return c.log.WithField("room", room.ID)
}

// lockRoom looks up a room and returns it locked. The caller must unlock it.
func (c *Coordinator) lockRoom(roomID string) (*Room, error) {
	room, err := c.Registry.Get(roomID)
	if err != nil {
		return nil, err
	}
	room.Mu.Lock()
	if room.closed {
		room.Mu.Unlock()
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// ValidateDisplayName trims name and checks its length.
func ValidateDisplayName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxDisplayNameLen {
		return "", ErrInvalidName
	}
	return name, nil
}

// Register sets the display name used by the connection's future join and create requests.
func (c *Coordinator) Register(connID uuid.UUID, displayName string) (string, error) {
	name, err := ValidateDisplayName(displayName)
	if err != nil {
		return "", err
	}
	c.Bindings.Register(connID, name)
	c.log.WithField("conn", connID).Debugf("registered as %q", name)
	return name, nil
}

// CreateRoom makes the connection the host and only player of a new room,
// and broadcasts the first membership snapshot to the room's recipient group.
func (c *Coordinator) CreateRoom(connID uuid.UUID, name string) (*Room, error) {
	displayName, ok := c.Bindings.DisplayName(connID)
	if !ok {
		return nil, ErrNotRegistered
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = displayName + "'s room"
	}

	host := &Player{ID: connID, DisplayName: displayName}
	room := c.Registry.Create(name, host)

	room.Mu.Lock()
	defer room.Mu.Unlock()
	c.Bindings.Bind(connID, room.ID, RolePlayer)
	c.notifier.JoinGroup(room.ID, connID)
	c.notifier.Broadcast(room.ID, room.roomUpdate())
	c.roomLog(room).Infof("room %q created by %s (%s)", name, displayName, connID)
	return room, nil
}

// ListRooms returns a summary of every live room.
func (c *Coordinator) ListRooms() []RoomSummary {
	rooms := c.Registry.Rooms()
	out := make([]RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, room.Summary())
	}
	return out
}

// recordRound hands a resolved round to the history sink without blocking the room.
func (c *Coordinator) recordRound(rec models.RoundRecord) {
	if c.history == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.history.RecordRound(ctx, rec); err != nil {
			c.log.WithField("room", rec.RoomID).Warnf("failed to record round %d: %v", rec.Round, err)
		}
	}()
}
