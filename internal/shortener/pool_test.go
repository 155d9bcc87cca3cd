package shortener_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bcc32/bcc32.com-2018/internal/shortener"
)

func testVocabulary(words ...string) []shortener.Word {
	vocab := make([]shortener.Word, 0, len(words))
	for _, w := range words {
		vocab = append(vocab, shortener.Word(w))
	}

	return vocab
}

func TestWordPool_TryAllocate(t *testing.T) {
	t.Run("allocates every word exactly once", func(t *testing.T) {
		pool := shortener.NewWordPool(testVocabulary("apple", "birch", "cedar"))

		seen := make(map[shortener.Word]bool)

		for range 3 {
			word, err := pool.TryAllocate()

			require.NoError(t, err)
			assert.False(t, seen[word], "word %q allocated twice", word)
			seen[word] = true
		}

		assert.Len(t, seen, 3)
		assert.Equal(t, 0, pool.Free())
	})

	t.Run("returns ErrNoFreeWords when exhausted", func(t *testing.T) {
		pool := shortener.NewWordPool(testVocabulary("apple"))

		_, err := pool.TryAllocate()
		require.NoError(t, err)

		_, err = pool.TryAllocate()
		assert.ErrorIs(t, err, shortener.ErrNoFreeWords)
	})

	t.Run("deduplicates the vocabulary", func(t *testing.T) {
		pool := shortener.NewWordPool(testVocabulary("apple", "apple", "birch"))

		assert.Equal(t, 2, pool.Free())
	})

	t.Run("concurrent allocations never hand out the same word", func(t *testing.T) {
		const size = 100

		words := make([]string, size)
		for i := range words {
			words[i] = string(rune('a'+i%26)) + string(rune('0'+i/26))
		}

		pool := shortener.NewWordPool(testVocabulary(words...))

		var (
			mu   sync.Mutex
			seen = make(map[shortener.Word]int)
			wg   sync.WaitGroup
		)

		for range size {
			wg.Add(1)

			go func() {
				defer wg.Done()

				word, err := pool.TryAllocate()
				if err != nil {
					return
				}

				mu.Lock()
				seen[word]++
				mu.Unlock()
			}()
		}

		wg.Wait()

		assert.Len(t, seen, size)

		for word, count := range seen {
			assert.Equal(t, 1, count, "word %q allocated %d times", word, count)
		}
	})
}

func TestWordPool_Release(t *testing.T) {
	t.Run("released word becomes allocatable again", func(t *testing.T) {
		pool := shortener.NewWordPool(testVocabulary("apple"))

		word, err := pool.TryAllocate()
		require.NoError(t, err)

		pool.Release(word)

		again, err := pool.TryAllocate()
		require.NoError(t, err)
		assert.Equal(t, word, again)
	})

	t.Run("releasing a free word is a no-op", func(t *testing.T) {
		pool := shortener.NewWordPool(testVocabulary("apple", "birch"))

		pool.Release("apple")
		pool.Release("apple")

		assert.Equal(t, 2, pool.Free())
		assert.Equal(t, 0, pool.Assigned())
	})

	t.Run("releasing a word outside the vocabulary is a no-op", func(t *testing.T) {
		pool := shortener.NewWordPool(testVocabulary("apple"))

		pool.Release("zeppelin")

		assert.Equal(t, 1, pool.Free())
	})
}

func TestWordPool_Reserve(t *testing.T) {
	t.Run("reserved word is not allocatable", func(t *testing.T) {
		pool := shortener.NewWordPool(testVocabulary("apple", "birch"))

		require.NoError(t, pool.Reserve("apple"))

		word, err := pool.TryAllocate()
		require.NoError(t, err)
		assert.Equal(t, shortener.Word("birch"), word)

		_, err = pool.TryAllocate()
		assert.ErrorIs(t, err, shortener.ErrNoFreeWords)
	})

	t.Run("reserving an assigned word is a no-op", func(t *testing.T) {
		pool := shortener.NewWordPool(testVocabulary("apple"))

		require.NoError(t, pool.Reserve("apple"))
		require.NoError(t, pool.Reserve("apple"))

		assert.Equal(t, 1, pool.Assigned())
	})

	t.Run("rejects words outside the vocabulary", func(t *testing.T) {
		pool := shortener.NewWordPool(testVocabulary("apple"))

		assert.Error(t, pool.Reserve("zeppelin"))
	})
}
