package corpus

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cognicore/formulary/pkg/formulary/internalerr"
)

// Paragraph boundary markers, added when a reader is configured with
// Boundaries so that phrase runs cannot straddle paragraph edges.
const (
	ParaStart = "<PARA_START>"
	ParaEnd   = "<PARA_END>"
)

// TSVSentences reads tab-separated sentence dumps of the shape
// doc_id <TAB> para_id <TAB> text  or  doc_id <TAB> para_id <TAB> sent_num <TAB> text.
// Files ending in .gz are decompressed transparently. Lines with any other
// shape are skipped. The source is restartable: each Docs call reopens the file.
type TSVSentences struct {
	Path       string
	Splitter   *Splitter
	Boundaries bool
}

// Docs opens the file and returns a line iterator.
func (t *TSVSentences) Docs() (Iterator, error) {
	r, closer, err := openMaybeGzip(t.Path)
	if err != nil {
		return nil, err
	}
	split := t.Splitter
	if split == nil {
		split, _ = NewSplitter("", false)
	}
	return &tsvIterator{
		scanner:    bufio.NewScanner(r),
		close:      closer,
		split:      split,
		boundaries: t.Boundaries,
	}, nil
}

type tsvIterator struct {
	scanner    *bufio.Scanner
	close      func() error
	split      *Splitter
	boundaries bool
}

func (it *tsvIterator) Next() (Document, error) {
	for it.scanner.Scan() {
		row := strings.Split(strings.TrimRight(it.scanner.Text(), "\r\n"), "\t")
		var id, text string
		switch len(row) {
		case 3:
			id, text = row[1], row[2]
		case 4:
			id, text = row[1], row[3]
		default:
			continue
		}
		words := it.split.Split(text)
		if it.boundaries {
			words = append(append([]string{ParaStart}, words...), ParaEnd)
		}
		return Document{ID: id, Words: words}, nil
	}
	if err := it.scanner.Err(); err != nil {
		it.close()
		return Document{}, err
	}
	it.close()
	return Document{}, io.EOF
}

// JSONLSource reads JSON-lines records. Each record needs an "id" or "doc_id"
// field and either a "words" array or a "text" string; records with neither
// word source are reported as bad documents. Missing ids get a positional
// fallback.
type JSONLSource struct {
	Path     string
	Splitter *Splitter
}

// Docs opens the file and returns a record iterator.
func (j *JSONLSource) Docs() (Iterator, error) {
	r, closer, err := openMaybeGzip(j.Path)
	if err != nil {
		return nil, err
	}
	split := j.Splitter
	if split == nil {
		split, _ = NewSplitter("", false)
	}
	return &jsonlIterator{
		scanner: bufio.NewScanner(r),
		close:   closer,
		split:   split,
	}, nil
}

type jsonlRecord struct {
	ID    string   `json:"id"`
	DocID string   `json:"doc_id"`
	Words []string `json:"words"`
	Text  string   `json:"text"`
}

type jsonlIterator struct {
	scanner *bufio.Scanner
	close   func() error
	split   *Splitter
	pos     int
}

func (it *jsonlIterator) Next() (Document, error) {
	for it.scanner.Scan() {
		line := strings.TrimSpace(it.scanner.Text())
		if line == "" {
			continue
		}
		pos := it.pos
		it.pos++

		var rec jsonlRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return Document{}, fmt.Errorf("record %d: %w: %v", pos, internalerr.ErrBadDocument, err)
		}
		id := rec.ID
		if id == "" {
			id = rec.DocID
		}
		if id == "" {
			id = strconv.Itoa(pos)
		}
		switch {
		case rec.Words != nil:
			return Document{ID: id, Words: rec.Words}, nil
		case rec.Text != "":
			return Document{ID: id, Words: it.split.Split(rec.Text)}, nil
		default:
			return Document{}, fmt.Errorf("record %d: %w", pos, internalerr.ErrBadDocument)
		}
	}
	if err := it.scanner.Err(); err != nil {
		it.close()
		return Document{}, err
	}
	it.close()
	return Document{}, io.EOF
}

func openMaybeGzip(path string) (io.Reader, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, f.Close, nil
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	closer := func() error {
		gz.Close()
		return f.Close()
	}
	return gz, closer, nil
}
