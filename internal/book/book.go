// Package book stores exact scores for early connect-four positions.
//
// A book file is CSV with the header "key,ply,score", one row per position
// keyed by its mirror-reduced bitboard key. Files ending in .zst or .gz are
// compressed.
package book

import (
	"compress/gzip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/adrg/xdg"
	"github.com/klauspost/compress/zstd"
)

// DefaultFile is the book location searched for under the XDG data directories.
const DefaultFile = "connect4/book.csv.zst"

var header = []string{"key", "ply", "score"}

// ErrNotFound is returned by Resolve when no book file can be located.
var ErrNotFound = errors.New("opening book not found")

// Entry is one book position.
type Entry struct {
	Key   uint64
	Ply   int
	Score int
}

// Book is an in-memory opening book. It is safe for concurrent use and is
// read-only once loaded.
type Book struct {
	mu     sync.RWMutex
	scores map[uint64]int8
	depth  int
}

// New creates an empty book.
func New() *Book {
	return &Book{
		scores: make(map[uint64]int8),
	}
}

// Load reads a book file.
func Load(path string) (*Book, error) {
	b := New()
	if _, err := b.LoadFile(path); err != nil {
		return nil, err
	}
	return b, nil
}

// Resolve returns path if it names a readable file, otherwise the first
// DefaultFile found under the XDG data directories.
func Resolve(path string) (string, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		return path, nil
	}
	found, err := xdg.SearchDataFile(DefaultFile)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return found, nil
}

// LoadFile merges the rows of a book file into b and returns how many were read.
func (b *Book) LoadFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var reader io.Reader = f
	switch {
	case strings.HasSuffix(path, ".zst"):
		zr, err := zstd.NewReader(f, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return 0, err
		}
		defer zr.Close()
		reader = zr
	case strings.HasSuffix(path, ".gz"):
		gr, err := gzip.NewReader(f)
		if err != nil {
			return 0, err
		}
		defer gr.Close()
		reader = gr
	}

	r := csv.NewReader(reader)
	r.FieldsPerRecord = len(header)
	r.ReuseRecord = true

	row, err := r.Read()
	if err == io.EOF {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	if row[0] != header[0] {
		return 0, fmt.Errorf("unexpected header %q", strings.Join(row, ","))
	}

	count := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, fmt.Errorf("line %d: %w", count+2, err)
		}
		e, err := parseRow(row)
		if err != nil {
			return count, fmt.Errorf("line %d: %w", count+2, err)
		}
		b.Put(e)
		count++
	}
	return count, nil
}

func parseRow(row []string) (Entry, error) {
	key, err := strconv.ParseUint(row[0], 10, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("key: %w", err)
	}
	ply, err := strconv.Atoi(row[1])
	if err != nil {
		return Entry{}, fmt.Errorf("ply: %w", err)
	}
	score, err := strconv.ParseInt(row[2], 10, 8)
	if err != nil {
		return Entry{}, fmt.Errorf("score: %w", err)
	}
	return Entry{Key: key, Ply: ply, Score: int(score)}, nil
}

// Put stores a position score.
func (b *Book) Put(e Entry) {
	b.mu.Lock()
	b.scores[e.Key] = int8(e.Score)
	if e.Ply > b.depth {
		b.depth = e.Ply
	}
	b.mu.Unlock()
}

// Get returns the score for a book key.
func (b *Book) Get(key uint64) (int, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.scores[key]
	return int(v), ok
}

// Depth returns the largest ply stored in the book.
func (b *Book) Depth() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.depth
}

// Len returns the number of stored positions.
func (b *Book) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.scores)
}

// Write stores entries to path sorted by ply then key, compressed according
// to the file extension.
func Write(path string, entries []Entry) error {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Ply != sorted[j].Ply {
			return sorted[i].Ply < sorted[j].Ply
		}
		return sorted[i].Key < sorted[j].Key
	})

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var w io.Writer = f
	var closer io.Closer
	switch {
	case strings.HasSuffix(path, ".zst"):
		zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
		if err != nil {
			return fmt.Errorf("create zstd encoder: %w", err)
		}
		w, closer = zw, zw
	case strings.HasSuffix(path, ".gz"):
		gw := gzip.NewWriter(f)
		w, closer = gw, gw
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, e := range sorted {
		row := []string{
			strconv.FormatUint(e.Key, 10),
			strconv.Itoa(e.Ply),
			strconv.Itoa(e.Score),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	if closer != nil {
		if err := closer.Close(); err != nil {
			return err
		}
	}
	return f.Close()
}
