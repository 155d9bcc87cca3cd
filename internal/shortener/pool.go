package shortener

import (
	"fmt"
	"math/rand/v2"
	"sync"
)

// WordPool tracks which words of a fixed vocabulary are free and which are
// bound to a live short link. All methods are safe for concurrent use; the
// mutex is the single point of serialization for allocation state.
type WordPool struct {
	mu       sync.Mutex
	free     []Word
	freePos  map[Word]int
	assigned map[Word]struct{}
}

// NewWordPool creates a pool with every vocabulary word free.
func NewWordPool(vocabulary []Word) *WordPool {
	p := &WordPool{
		free:     make([]Word, 0, len(vocabulary)),
		freePos:  make(map[Word]int, len(vocabulary)),
		assigned: make(map[Word]struct{}),
	}

	for _, w := range vocabulary {
		if _, ok := p.freePos[w]; ok {
			continue
		}

		p.freePos[w] = len(p.free)
		p.free = append(p.free, w)
	}

	return p
}

// TryAllocate picks a free word uniformly at random and marks it assigned.
// Random selection keeps live words unguessable; the explicit free list makes
// exhaustion detection O(1) instead of retry-until-lucky.
// Returns ErrNoFreeWords when every word is assigned.
func (p *WordPool) TryAllocate() (Word, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.free) == 0 {
		return "", ErrNoFreeWords
	}

	word := p.free[rand.IntN(len(p.free))]
	p.removeFree(word)
	p.assigned[word] = struct{}{}

	return word, nil
}

// Release returns a word to the free set. Releasing a word that is already
// free is a no-op, so compensating releases and concurrent reclamation
// cannot double-free.
func (p *WordPool) Release(word Word) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.assigned[word]; !ok {
		return
	}

	delete(p.assigned, word)
	p.freePos[word] = len(p.free)
	p.free = append(p.free, word)
}

// Reserve marks a specific word assigned. Used when rehydrating pool state
// from the durable store at startup. Reserving an already-assigned word is a
// no-op; a word outside the vocabulary is an error.
func (p *WordPool) Reserve(word Word) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.assigned[word]; ok {
		return nil
	}

	if _, ok := p.freePos[word]; !ok {
		return fmt.Errorf("word %q not in vocabulary", word)
	}

	p.removeFree(word)
	p.assigned[word] = struct{}{}

	return nil
}

// Free returns the number of words currently available for allocation.
func (p *WordPool) Free() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.free)
}

// Assigned returns the number of words currently bound to live links.
func (p *WordPool) Assigned() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.assigned)
}

// removeFree deletes a word from the free list by swapping it with the last
// element. Caller must hold p.mu.
func (p *WordPool) removeFree(word Word) {
	i := p.freePos[word]
	last := len(p.free) - 1

	p.free[i] = p.free[last]
	p.freePos[p.free[i]] = i
	p.free = p.free[:last]
	delete(p.freePos, word)
}
