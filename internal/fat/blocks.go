package fat

import (
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"
)

const (
	// DefaultChunkSize is the payload length of a data block, in characters.
	DefaultChunkSize = 20

	// DefaultMaxHops is the minimum traversal bound for a chain walk.
	DefaultMaxHops = 1000

	// MaxContentBytes caps the content of a single file.
	MaxContentBytes = 1 << 20
)

// CheckContent reports whether content can be stored as a chain: at most
// MaxContentBytes of valid UTF-8.
func CheckContent(content string) error {
	if len(content) > MaxContentBytes {
		return fmt.Errorf("%w: %d bytes, limit is %d", ErrSizeExceeded, len(content), MaxContentBytes)
	}
	if !utf8.ValidString(content) {
		return fmt.Errorf("%w: invalid byte sequence at offset %d", ErrInvalidContent, invalidOffset(content))
	}
	return nil
}

func invalidOffset(s string) int {
	for i, r := range s {
		if r == utf8.RuneError {
			if _, size := utf8.DecodeRuneInString(s[i:]); size == 1 {
				return i
			}
		}
	}
	return len(s)
}

// BlockKey returns the record key of block index of the chain named baseName.
func BlockKey(baseName string, index int) string {
	return fmt.Sprintf("%s_block_%d", SanitizeBaseName(baseName), index)
}

// HopLimitFor returns the traversal bound that still lets a maximum-size
// file written with chunkSize be read back in full.
func HopLimitFor(chunkSize int) int {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return max(DefaultMaxHops, (MaxContentBytes+chunkSize-1)/chunkSize)
}

// ChainLink is a block together with the key it is stored under.
type ChainLink struct {
	Key   string
	Block DataBlock
}

// BlockStore turns content into chains of DataBlocks in a RecordStore and
// back. It keeps no state of its own beyond configuration.
type BlockStore struct {
	records   RecordStore
	logger    Logger
	chunkSize int
	maxHops   int
}

// NewBlockStore creates a BlockStore. A chunkSize or maxHops <= 0 selects
// DefaultChunkSize or HopLimitFor(chunkSize).
func NewBlockStore(records RecordStore, logger Logger, chunkSize, maxHops int) *BlockStore {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if maxHops <= 0 {
		maxHops = HopLimitFor(chunkSize)
	}
	return &BlockStore{
		records:   records,
		logger:    withComponent(logger, "blocks"),
		chunkSize: chunkSize,
		maxHops:   maxHops,
	}
}

// ChunkSize returns the default chunk size of the store.
func (b *BlockStore) ChunkSize() int { return b.chunkSize }

// MaxHops returns the traversal bound.
func (b *BlockStore) MaxHops() int { return b.maxHops }

// Write splits content into chunks of chunkSize characters and stores them
// as a chain keyed by baseName. It returns the key of the first block, or ""
// for empty content. If any block fails to write, blocks already written by
// this call are deleted before the error is returned.
func (b *BlockStore) Write(content, baseName string, chunkSize int) (string, error) {
	if err := CheckContent(content); err != nil {
		return "", err
	}
	if chunkSize <= 0 {
		chunkSize = b.chunkSize
	}

	chunks := splitChunks(content, chunkSize)
	if len(chunks) == 0 {
		return "", nil
	}
	if len(chunks) > b.maxHops {
		return "", fmt.Errorf("%w: %d blocks, chain limit is %d", ErrSizeExceeded, len(chunks), b.maxHops)
	}

	written := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		key := BlockKey(baseName, i)
		block := DataBlock{Payload: chunk, IsLast: i == len(chunks)-1}
		if !block.IsLast {
			block.NextKey = BlockKey(baseName, i+1)
		}

		data, err := json.Marshal(block)
		if err == nil {
			err = b.records.Put(key, data)
		}
		if err != nil {
			// The failed put may have left a partial record behind.
			b.rollback(append(written, key))
			return "", fmt.Errorf("writing block %s: %w", key, err)
		}
		written = append(written, key)
	}

	b.logger.Debug("chain written", "first", written[0], "blocks", len(written))
	return written[0], nil
}

// rollback deletes keys, logging any key that could not be removed.
func (b *BlockStore) rollback(keys []string) {
	for _, key := range keys {
		if err := b.records.Delete(key); err != nil {
			b.logger.Error("rollback left orphaned block", "key", key, "error", err)
		}
	}
}

// Read walks the chain from firstKey and concatenates the payloads. When the
// chain is broken, the content read so far is returned with an error
// wrapping ErrCorruption.
func (b *BlockStore) Read(firstKey string) (string, error) {
	var content []byte
	err := b.walk(firstKey, func(_ string, block DataBlock) error {
		content = append(content, block.Payload...)
		return nil
	})
	return string(content), err
}

// Links returns every block of the chain in order. A broken chain yields the
// links reached so far and an error wrapping ErrCorruption.
func (b *BlockStore) Links(firstKey string) ([]ChainLink, error) {
	var links []ChainLink
	err := b.walk(firstKey, func(key string, block DataBlock) error {
		links = append(links, ChainLink{Key: key, Block: block})
		return nil
	})
	return links, err
}

// Free deletes every block of the chain. Freeing "" is a no-op. A broken
// chain is freed up to the break and reported as a warning only; record
// store failures are returned.
func (b *BlockStore) Free(firstKey string) error {
	freed := 0
	err := b.walk(firstKey, func(key string, _ DataBlock) error {
		if err := b.records.Delete(key); err != nil {
			return fmt.Errorf("deleting block %s: %w", key, err)
		}
		freed++
		return nil
	})
	if err != nil && !errors.Is(err, ErrCorruption) {
		return err
	}
	if freed > 0 {
		b.logger.Debug("chain freed", "first", firstKey, "blocks", freed)
	}
	return nil
}

// walk calls visit for each block from firstKey through the terminal block.
// It stops with ErrCorruption on a missing or undecodable block, a revisited
// key, a non-terminal block without a successor, or the hop bound.
func (b *BlockStore) walk(firstKey string, visit func(key string, block DataBlock) error) error {
	if firstKey == "" {
		return nil
	}

	seen := make(map[string]struct{})
	key := firstKey
	for hops := 0; ; hops++ {
		if hops >= b.maxHops {
			return b.corrupt(firstKey, key, "hop limit reached")
		}
		if _, dup := seen[key]; dup {
			return b.corrupt(firstKey, key, "cycle detected")
		}
		seen[key] = struct{}{}

		data, err := b.records.Get(key)
		if errors.Is(err, ErrRecordNotFound) {
			return b.corrupt(firstKey, key, "missing block")
		}
		if err != nil {
			return fmt.Errorf("reading block %s: %w", key, err)
		}

		var block DataBlock
		if err := json.Unmarshal(data, &block); err != nil {
			return b.corrupt(firstKey, key, "undecodable block")
		}
		if err := visit(key, block); err != nil {
			return err
		}

		if block.IsLast {
			return nil
		}
		if block.NextKey == "" {
			return b.corrupt(firstKey, key, "non-terminal block without successor")
		}
		key = block.NextKey
	}
}

func (b *BlockStore) corrupt(firstKey, key, reason string) error {
	b.logger.Warn("chain traversal stopped", "first", firstKey, "key", key, "reason", reason)
	return fmt.Errorf("%w: %s at %s (chain %s)", ErrCorruption, reason, key, firstKey)
}

// splitChunks cuts s into pieces of at most size runes without splitting a
// UTF-8 sequence.
func splitChunks(s string, size int) []string {
	var chunks []string
	start, runes := 0, 0
	for i := range s {
		if runes == size {
			chunks = append(chunks, s[start:i])
			start, runes = i, 0
		}
		runes++
	}
	if start < len(s) {
		chunks = append(chunks, s[start:])
	}
	return chunks
}
