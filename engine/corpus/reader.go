// Package corpus reads the line-delimited JSON site corpus and turns each
// record into the dense French text that gets embedded.
package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/carthago-ai/carthago/engine/domain"
)

// maxLineBytes bounds a single corpus line; site records are small but
// descriptions can run long.
const maxLineBytes = 1 << 20

// Read parses one SiteDocument per line from r. Malformed or invalid lines
// are logged and skipped, never fatal: a partly broken corpus still indexes.
func Read(r io.Reader, log *slog.Logger) ([]domain.SiteDocument, error) {
	if log == nil {
		log = slog.Default()
	}

	var docs []domain.SiteDocument
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	lineNum := 0
	for sc.Scan() {
		lineNum++
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}

		var doc domain.SiteDocument
		if err := json.Unmarshal(line, &doc); err != nil {
			log.Warn("corpus: skipping malformed line", "line", lineNum, "err", err)
			continue
		}
		if err := domain.ValidateSiteDocument(doc); err != nil {
			log.Warn("corpus: skipping invalid record", "line", lineNum, "err", err)
			continue
		}
		docs = append(docs, doc)
	}
	if err := sc.Err(); err != nil {
		return docs, fmt.Errorf("corpus: read: %w", err)
	}
	return docs, nil
}

// ReadFile opens path and reads it with Read.
func ReadFile(path string, log *slog.Logger) ([]domain.SiteDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("corpus: open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, log)
}
