// internal/deck/deck.go
package deck

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"sync"
	"time"
)

//go:embed cards.json
var defaultCards []byte

// PromptCard is a black card. Pick is the number of response cards a submission must contain.
type PromptCard struct {
	Text string `json:"text"`
	Pick int    `json:"pick"`
}

// UnmarshalJSON accepts either a bare string (pick 1) or a {"text","pick"} object.
func (p *PromptCard) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		p.Text = text
		p.Pick = 1
		return nil
	}
	type rawPrompt PromptCard
	var raw rawPrompt
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("prompt card: %w", err)
	}
	*p = PromptCard(raw)
	if p.Pick < 1 {
		p.Pick = 1
	}
	return nil
}

// cardFile mirrors the on-disk card set layout.
type cardFile struct {
	White []string     `json:"white"`
	Black []PromptCard `json:"black"`
}

// Deck is an immutable, inexhaustible pool of response and prompt cards.
// Draws are with replacement; nothing is ever removed from the pools.
type Deck struct {
	responses []string
	prompts   []PromptCard

	mu  sync.Mutex
	rng *rand.Rand
}

// New builds a deck from in-memory pools.
func New(responses []string, prompts []PromptCard) (*Deck, error) {
	resp := make([]string, 0, len(responses))
	for _, r := range responses {
		if strings.TrimSpace(r) != "" {
			resp = append(resp, r)
		}
	}
	prom := make([]PromptCard, 0, len(prompts))
	for _, p := range prompts {
		if strings.TrimSpace(p.Text) == "" {
			continue
		}
		if p.Pick < 1 {
			p.Pick = 1
		}
		prom = append(prom, p)
	}
	if len(resp) == 0 {
		return nil, fmt.Errorf("deck has no response cards")
	}
	if len(prom) == 0 {
		return nil, fmt.Errorf("deck has no prompt cards")
	}
	return &Deck{
		responses: resp,
		prompts:   prom,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Parse decodes a JSON card set.
func Parse(data []byte) (*Deck, error) {
	var f cardFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode card set: %w", err)
	}
	return New(f.White, f.Black)
}

// Load reads the card set at path. An empty path loads the built-in set.
func Load(path string) (*Deck, error) {
	if path == "" {
		return Parse(defaultCards)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read card file %s: %w", path, err)
	}
	return Parse(data)
}

// DrawResponseCards returns n independent draws from the response pool.
func (d *Deck) DrawResponseCards(n int) []string {
	if n <= 0 {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	cards := make([]string, n)
	for i := range cards {
		cards[i] = d.responses[d.rng.Intn(len(d.responses))]
	}
	return cards
}

// DrawPrompt returns one random prompt card.
func (d *Deck) DrawPrompt() PromptCard {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.prompts[d.rng.Intn(len(d.prompts))]
}

// ResponseCount is the size of the response pool.
func (d *Deck) ResponseCount() int { return len(d.responses) }

// PromptCount is the size of the prompt pool.
func (d *Deck) PromptCount() int { return len(d.prompts) }

// MaxPick is the largest number of cards any prompt asks for.
func (d *Deck) MaxPick() int {
	most := 1
	for _, p := range d.prompts {
		most = max(most, p.Pick)
	}
	return most
}
