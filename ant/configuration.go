package ant

import "fmt"

// A Configuration is the data describing one neural network. It is either a
// valid, owned, cache-line aligned word buffer or the garbage marker that
// fails every dereference.
type Configuration struct {
	raw     []byte
	words   []Word
	garbage bool
}

// Garbage returns a configuration that is structurally attachable but can
// never be dereferenced.
func Garbage() Configuration {
	return Configuration{garbage: true}
}

// NewConfiguration copies the words into a new aligned buffer owned by the
// returned configuration.
func NewConfiguration(words []Word) (Configuration, error) {
	raw, aligned, err := AllocAligned(len(words))
	if err != nil {
		return Configuration{}, err
	}

	copy(aligned, words)

	return Configuration{raw: raw, words: aligned}, nil
}

// IsGarbage tells if the configuration is the garbage marker.
func (c Configuration) IsGarbage() bool {
	return c.garbage
}

// Size returns the number of words. Garbage configurations have size 0.
func (c Configuration) Size() int {
	return len(c.words)
}

// Words dereferences the configuration. The returned slice is shared with the
// table and must be treated as read-only.
func (c Configuration) Words() ([]Word, error) {
	if c.garbage {
		return nil, fmt.Errorf("%w: garbage entry", ErrInvalidConfiguration)
	}

	if c.words == nil {
		return nil, fmt.Errorf("%w: released entry", ErrInvalidConfiguration)
	}

	return c.words, nil
}

func (c *Configuration) release() {
	c.raw = nil
	c.words = nil
}

// An Entry is one configuration inside the queue of an ASID.
type Entry struct {
	NNID   NNID
	Config Configuration
}

// Size returns the size of the configuration in words.
func (e Entry) Size() int {
	return e.Config.Size()
}
