package ant

import (
	"encoding/binary"
	"fmt"
	"os"
)

// AttachFile appends the configuration stored in a binary file to the queue of
// the ASID. The file holds little-endian words; a trailing partial word is
// zero padded.
func (t *Table) AttachFile(asid ASID, path string) (NNID, error) {
	if err := t.checkRoom(asid); err != nil {
		return 0, err
	}

	words, err := readConfigurationFile(path)
	if err != nil {
		return 0, err
	}

	cfg, err := NewConfiguration(words)
	if err != nil {
		return 0, err
	}

	return t.push(asid, cfg, path)
}

// AttachArray copies the words into a new aligned buffer and appends it to
// the queue of the ASID. The caller keeps ownership of words.
func (t *Table) AttachArray(asid ASID, words []Word) (NNID, error) {
	if err := t.checkRoom(asid); err != nil {
		return 0, err
	}

	cfg, err := NewConfiguration(words)
	if err != nil {
		return 0, err
	}

	return t.push(asid, cfg, "array")
}

// AttachGarbage appends an entry that occupies an NNID but cannot be
// dereferenced. Any transaction that executes against it fails with
// ErrInvalidConfiguration.
func (t *Table) AttachGarbage(asid ASID) (NNID, error) {
	if err := t.checkRoom(asid); err != nil {
		return 0, err
	}

	return t.push(asid, Garbage(), "garbage")
}

func readConfigurationFile(path string) ([]Word, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrIO, path)
	}

	if rem := len(data) % WordBytes; rem != 0 {
		data = append(data, make([]byte, WordBytes-rem)...)
	}

	words := make([]Word, len(data)/WordBytes)
	for i := range words {
		words[i] = Word(binary.LittleEndian.Uint64(data[i*WordBytes:]))
	}

	return words, nil
}

// EncodeWords is the inverse of the file format read by AttachFile.
func EncodeWords(words []Word) []byte {
	data := make([]byte, len(words)*WordBytes)
	for i, w := range words {
		binary.LittleEndian.PutUint64(data[i*WordBytes:], uint64(w))
	}

	return data
}
