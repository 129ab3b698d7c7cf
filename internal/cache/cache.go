// ABOUTME: Badger-backed waveform cache
// ABOUTME: Stores composed waveforms keyed by a hash of their description and settings
package cache

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/tonewright/seqgen/pkg/audio"
	"github.com/tonewright/seqgen/pkg/audio/decode"
	"github.com/tonewright/seqgen/pkg/audio/encode"
	"go.uber.org/zap"
)

// keyVersion changes whenever the value layout or the synthesis output changes
const keyVersion = 1

var sampleFormat = audio.Format{Codec: encode.CodecRaw, Channels: 1, BitDepth: 64}

// Cache stores waveforms in a Badger database
type Cache struct {
	db      *badger.DB
	logger  *zap.Logger
	encoder encode.Encoder
	decoder decode.Decoder
}

// Open opens or creates a cache in dir. An empty dir keeps the cache in memory.
func Open(dir string, logger *zap.Logger) (*Cache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := badger.DefaultOptions(dir).
		WithCompression(options.ZSTD).
		WithNumVersionsToKeep(1).
		WithLogger(badgerLogger{logger.Sugar()})
	if dir == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		logger.Error("failed to open waveform cache", zap.String("dir", dir), zap.Error(err))
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	enc, err := encode.New(sampleFormat)
	if err != nil {
		db.Close()
		return nil, err
	}
	dec, err := decode.NewRaw(sampleFormat)
	if err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("waveform cache opened", zap.String("dir", dir), zap.Bool("inMemory", dir == ""))
	return &Cache{db: db, logger: logger, encoder: enc, decoder: dec}, nil
}

// Key derives a cache key from the description bytes and the padding that
// surrounds the composed sequence
func Key(description []byte, leadMs, trailMs uint) []byte {
	var settings [17]byte
	settings[0] = keyVersion
	binary.BigEndian.PutUint64(settings[1:9], uint64(leadMs))
	binary.BigEndian.PutUint64(settings[9:17], uint64(trailMs))

	d := xxhash.New()
	d.Write(settings[:])
	d.Write(description)

	key := make([]byte, 0, 16)
	key = append(key, "waveform"...)
	return binary.BigEndian.AppendUint64(key, d.Sum64())
}

// Get returns the cached waveform and its rate. ok is false on a miss.
func (c *Cache) Get(key []byte) (w *audio.Waveform, rate audio.SampleRate, ok bool, err error) {
	err = c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) < 4 {
				return fmt.Errorf("cache entry too short: %d bytes", len(val))
			}
			rate = audio.SampleRate(binary.LittleEndian.Uint32(val[:4]))
			samples, err := c.decoder.Decode(val[4:])
			if err != nil {
				return fmt.Errorf("cache entry decode error: %w", err)
			}
			w = audio.WaveformFrom(samples)
			return nil
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, 0, false, nil
	}
	if err != nil {
		c.logger.Error("cache lookup failed", zap.Error(err))
		return nil, 0, false, err
	}
	return w, rate, true, nil
}

// Put stores w under key
func (c *Cache) Put(key []byte, w *audio.Waveform, rate audio.SampleRate) error {
	data, err := c.encoder.Encode(w.Samples())
	if err != nil {
		return fmt.Errorf("cache entry encode error: %w", err)
	}

	val := make([]byte, 4, 4+len(data))
	binary.LittleEndian.PutUint32(val, uint32(rate))
	val = append(val, data...)

	if err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, val)
	}); err != nil {
		c.logger.Error("cache store failed", zap.Error(err))
		return fmt.Errorf("cache store error: %w", err)
	}

	c.logger.Debug("waveform cached", zap.Int("samples", w.Len()), zap.Int("bytes", len(val)))
	return nil
}

// Close closes the database
func (c *Cache) Close() error {
	c.encoder.Close()
	c.decoder.Close()
	if err := c.db.Close(); err != nil {
		return fmt.Errorf("failed to close cache: %w", err)
	}
	return nil
}

// badgerLogger routes Badger's own logging through zap
type badgerLogger struct {
	s *zap.SugaredLogger
}

func (l badgerLogger) Errorf(f string, v ...interface{})   { l.s.Errorf(f, v...) }
func (l badgerLogger) Warningf(f string, v ...interface{}) { l.s.Warnf(f, v...) }
func (l badgerLogger) Infof(f string, v ...interface{})    { l.s.Debugf(f, v...) }
func (l badgerLogger) Debugf(f string, v ...interface{})   { l.s.Debugf(f, v...) }
