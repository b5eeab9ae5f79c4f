package resolver

import (
	"sort"

	"mspro-labs/campus-locator/internal/models"
	"mspro-labs/campus-locator/internal/textnorm"
)

// Match is a resolved directory entry and the key it was found under.
type Match struct {
	Key   string
	Entry models.DirectoryEntry
}

// Resolve finds the first directory key, in scrape order, that equals the
// normalized OCR text or whose entry's normalized name does. An acronym row
// is scraped before its name row, so a full building name resolves to the
// acronym key. Keys with equal Order fall back to lexical order. Matching
// is exact.
func Resolve(dir models.Directory, ocrText string) (Match, bool) {
	query := textnorm.Normalize(ocrText)
	if query == "" {
		return Match{}, false
	}

	keys := make([]string, 0, len(dir))
	for k := range dir {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		oi, oj := dir[keys[i]].Order, dir[keys[j]].Order
		if oi != oj {
			return oi < oj
		}
		return keys[i] < keys[j]
	})

	for _, k := range keys {
		entry := dir[k]
		if query == k || query == textnorm.Normalize(entry.Name) {
			return Match{Key: k, Entry: entry}, true
		}
	}
	return Match{}, false
}
