package corpusfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/cognicore/twentyq/pkg/twentyq/ingest"
	"github.com/cognicore/twentyq/pkg/twentyq/internalerr"
)

// Entry is one line of a JSONL corpus
type Entry struct {
	Answer     string   `json:"answer"`
	Categories []string `json:"categories"`
}

// Load reads a corpus file. Files ending in .jsonl or .ndjson are read as
// JSON lines; anything else goes through the bracket tokenizer.
func Load(path string, tok *ingest.Tokenizer, log *zap.Logger) ([]ingest.Pair, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		return LoadJSONL(path, log)
	default:
		return LoadBracket(path, tok)
	}
}

// LoadBracket reads a bracket-format corpus such as yagoTypes.tsv
func LoadBracket(path string, tok *ingest.Tokenizer) ([]ingest.Pair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus %s: %w", path, err)
	}
	defer f.Close()

	if tok == nil {
		tok = ingest.NewTokenizer()
	}
	pairs, err := tok.Pairs(f)
	if err != nil {
		return nil, fmt.Errorf("read corpus %s: %w", path, err)
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("no pairs found in %s: %w", path, internalerr.ErrEmptyCorpus)
	}
	return pairs, nil
}

// LoadJSONL loads pairs from a JSONL file, skipping malformed lines
func LoadJSONL(path string, log *zap.Logger) ([]ingest.Pair, error) {
	if log == nil {
		log = zap.NewNop()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}

	var pairs []ingest.Pair
	lines := strings.Split(string(data), "\n")

	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var e Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			log.Warn("skipping malformed JSON",
				zap.String("path", path),
				zap.Int("line", i+1),
				zap.Error(err))
			continue
		}
		for _, cat := range e.Categories {
			p := ingest.Pair{Answer: strings.TrimSpace(e.Answer), Category: strings.TrimSpace(cat)}
			if p.Validate() != nil {
				continue
			}
			pairs = append(pairs, p)
		}
	}

	if len(pairs) == 0 {
		return nil, fmt.Errorf("no valid pairs found in %s: %w", path, internalerr.ErrEmptyCorpus)
	}

	return pairs, nil
}
