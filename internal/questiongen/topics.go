package questiongen

import (
	"math/rand/v2"
	"sync"
)

// recentTopicStep scales the weight of a recently used topic by its
// position: the most recent pick weighs 0.2, the one before 0.4, and so on.
const recentTopicStep = 0.2

// TopicPicker draws topics by weighted random choice, damping the ones
// picked recently. Safe for concurrent use.
type TopicPicker struct {
	mu     sync.Mutex
	topics []string
	recent []string // oldest first
	limit  int
	rng    *rand.Rand
}

// NewTopicPicker creates a picker over topics remembering the last limit
// picks.
func NewTopicPicker(topics []string, limit int, rng *rand.Rand) *TopicPicker {
	return &TopicPicker{
		topics: append([]string(nil), topics...),
		limit:  max(limit, 0),
		rng:    rng,
	}
}

// Pick chooses a topic and records it as the most recent pick.
func (p *TopicPicker) Pick() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.topics) == 0 {
		return "", ErrNoTopics
	}

	weights := p.weightsLocked()
	var total float64
	for _, w := range weights {
		total += w
	}

	r := p.rng.Float64() * total
	chosen := p.topics[len(p.topics)-1]
	for i, w := range weights {
		if r < w {
			chosen = p.topics[i]
			break
		}
		r -= w
	}

	p.pushLocked(chosen)
	return chosen, nil
}

// Weights returns the current weight of every topic, in topic order.
func (p *TopicPicker) Weights() []float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.weightsLocked()
}

// Recent returns the remembered picks, most recent first.
func (p *TopicPicker) Recent() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.recent))
	for i, t := range p.recent {
		out[len(p.recent)-1-i] = t
	}
	return out
}

func (p *TopicPicker) weightsLocked() []float64 {
	// Position 0 is the most recent pick.
	position := make(map[string]int, len(p.recent))
	for i, t := range p.recent {
		position[t] = len(p.recent) - 1 - i
	}

	weights := make([]float64, len(p.topics))
	for i, t := range p.topics {
		if pos, ok := position[t]; ok {
			weights[i] = float64(1+pos) * recentTopicStep
		} else {
			weights[i] = 1.0
		}
	}
	return weights
}

func (p *TopicPicker) pushLocked(topic string) {
	if p.limit == 0 {
		return
	}
	p.recent = append(p.recent, topic)
	if len(p.recent) > p.limit {
		p.recent = p.recent[len(p.recent)-p.limit:]
	}
}

// difficultyWeights is the draw used when no difficulty is requested.
var difficultyWeights = []struct {
	d Difficulty
	w float64
}{
	{Easy, 0.3},
	{Normal, 0.5},
	{Hard, 0.2},
}

// DrawDifficulty picks Easy, Normal or Hard with probability 0.3/0.5/0.2.
func DrawDifficulty(rng *rand.Rand) Difficulty {
	r := rng.Float64()
	for _, dw := range difficultyWeights {
		if r < dw.w {
			return dw.d
		}
		r -= dw.w
	}
	return Normal
}
