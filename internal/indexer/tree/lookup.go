package tree

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/factive/claimsearch/pkg/errors"
)

// maxLeafLine bounds a single sentence line; leaf payload lines are raw
// corpus sentences and can run long.
const maxLeafLine = 4 * 1024 * 1024

// Lookup descends the persisted layout under dir for key and returns the
// payload lines stored for it. A key that was never indexed yields (nil,
// nil): descent stops the moment neither a shard directory nor a leaf file
// exists for the next digit, after at most DigestLen path probes and without
// touching sibling shards.
func Lookup(dir string, key string) ([]string, error) {
	digest := Digest(key)
	path := dir
	for i := 0; i < len(digest); i++ {
		path = filepath.Join(path, string(digest[i]))
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			continue
		}
		f, err := os.Open(path + ".txt")
		if err != nil {
			if os.IsNotExist(err) {
				return nil, nil
			}
			return nil, fmt.Errorf("opening leaf file %s.txt: %w", path, err)
		}
		defer f.Close()
		return scanLeaf(f, path+".txt", key)
	}
	return nil, nil
}

// scanLeaf streams the leaf file looking for key's header line and returns
// the exact number of payload lines the header declares.
func scanLeaf(f *os.File, path string, key string) ([]string, error) {
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLeafLine)
	for sc.Scan() {
		k, count, err := parseHeader(sc.Text())
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", errors.ErrCorruptLeaf, path, err)
		}
		if k != key {
			for i := 0; i < count && sc.Scan(); i++ {
			}
			continue
		}
		payload := make([]string, 0, count)
		for i := 0; i < count; i++ {
			if !sc.Scan() {
				return nil, fmt.Errorf("%w: %s: key %q declares %d payload lines, got %d",
					errors.ErrCorruptLeaf, path, key, count, i)
			}
			payload = append(payload, sc.Text())
		}
		return payload, nil
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scanning leaf file %s: %w", path, err)
	}
	return nil, nil
}

// parseHeader splits a "<key> <count>" header line. The key never contains
// a space (corpus fields are space-delimited), but the split is taken from
// the right to stay safe.
func parseHeader(line string) (string, int, error) {
	idx := strings.LastIndexByte(line, ' ')
	if idx <= 0 {
		return "", 0, fmt.Errorf("malformed header line %q", line)
	}
	count, err := strconv.Atoi(line[idx+1:])
	if err != nil || count < 0 {
		return "", 0, fmt.Errorf("malformed header count in %q", line)
	}
	return line[:idx], count, nil
}
