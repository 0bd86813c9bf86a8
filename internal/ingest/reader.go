package ingest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/quickbasket/api/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SourceGroup is one source's block inside an ingestion file: a comparison
// API response wrapped around a data array of raw offers.
type SourceGroup struct {
	Data []domain.RawStoreOffer `json:"data"`
}

// ProductFile is the decoded contents of one per-query ingestion file.
type ProductFile struct {
	// Query is the product query the file was fetched for, derived from the
	// file name (e.g. "tata_salt.json" -> "tata salt").
	Query string
	// Offers flattens every group's data array, malformed groups excluded.
	Offers []domain.RawStoreOffer
}

// DecodeGroups decodes an ingestion payload. A payload whose top level is not
// an array short-circuits to a nil slice with a diagnostic instead of an
// error; individual groups with no data array are tolerated and skipped.
func DecodeGroups(r io.Reader, logger *zap.Logger) []domain.RawStoreOffer {
	if logger == nil {
		logger = zap.NewNop()
	}

	var groups []SourceGroup
	if err := json.NewDecoder(r).Decode(&groups); err != nil {
		logger.Warn("ingest: payload is not an array of source groups", zap.Error(err))
		return nil
	}

	offers := make([]domain.RawStoreOffer, 0, len(groups)*4)
	for _, group := range groups {
		if len(group.Data) == 0 {
			continue
		}
		offers = append(offers, group.Data...)
	}
	return offers
}

// ReadProductFile loads one ingestion file. A missing file is reported as-is
// so the batch job can classify it as a skippable no-data condition.
func ReadProductFile(path string, logger *zap.Logger) (ProductFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return ProductFile{}, fmt.Errorf("ingest: open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	offers := DecodeGroups(f, logger)
	if offers == nil {
		offers = []domain.RawStoreOffer{}
	}
	return ProductFile{
		Query:  QueryFromFilename(path),
		Offers: offers,
	}, nil
}

// ListSourceFiles returns the JSON ingestion files under dir in a stable order.
func ListSourceFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("ingest: read source dir: %w", err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(strings.ToLower(name), ".json") {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}

// QueryFromFilename recovers the product query the scraper encoded into the
// file name: underscores become spaces and the extension is dropped.
func QueryFromFilename(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.TrimSpace(strings.ReplaceAll(base, "_", " "))
}
