// Package csvview provides paginated, low-memory access to a large local
// CSV file. Rows are read on demand; the file is never loaded whole.
package csvview

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrInvalidPage is returned when a requested page is out of range.
var ErrInvalidPage = eris.New("csvview: invalid page number")

// estimateBytesPerRow is the assumed average row size used for the instant
// row-count estimate shown before an exact count completes.
const estimateBytesPerRow = 450

// Page is one page of CSV rows with pagination metadata. Rows are padded or
// truncated to the header width.
type Page struct {
	Headers     []string   `json:"headers"`
	Rows        [][]string `json:"rows"`
	CurrentPage int        `json:"current_page"`
	TotalPages  int        `json:"total_pages"`
	TotalRows   int        `json:"total_rows"`
	StartRow    int        `json:"start_row"`
	EndRow      int        `json:"end_row"`
}

// Reader reads pages from a CSV file by line range.
type Reader struct {
	path string
	size int64

	mu        sync.Mutex
	headers   []string
	totalRows int // -1 until counted
}

// Open stats the CSV file and returns a Reader over it.
func Open(path string) (*Reader, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, eris.Wrap(err, "csvview: stat file")
	}
	return &Reader{
		path:      path,
		size:      info.Size(),
		totalRows: -1,
	}, nil
}

// Path returns the file path.
func (r *Reader) Path() string {
	return r.path
}

// Filename returns the base name of the file.
func (r *Reader) Filename() string {
	return filepath.Base(r.path)
}

// Size returns the file size in bytes.
func (r *Reader) Size() int64 {
	return r.size
}

// EstimateRows returns a cheap row-count estimate from the file size.
func (r *Reader) EstimateRows() int {
	return int(r.size / estimateBytesPerRow)
}

// Headers returns the first row of the file. Cached after the first read.
func (r *Reader) Headers() ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.headers != nil {
		return r.headers, nil
	}

	f, err := r.open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := newCSVReader(f)
	headers, err := reader.Read()
	if err == io.EOF {
		headers = []string{}
	} else if err != nil {
		return nil, eris.Wrap(err, "csvview: read header row")
	}

	r.headers = headers
	return headers, nil
}

// CountRows counts the data rows (excluding the header). The count is cached
// after the first successful pass over the file.
func (r *Reader) CountRows() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.totalRows >= 0 {
		return r.totalRows, nil
	}

	f, err := r.open()
	if err != nil {
		return 0, err
	}
	defer f.Close()

	reader := newCSVReader(f)
	count := -1 // discount the header row
	for {
		_, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, eris.Wrap(err, "csvview: count rows")
		}
		count++
	}
	if count < 0 {
		count = 0
	}

	r.totalRows = count
	return count, nil
}

// Page reads one page of rows. Pages are 1-indexed; a page outside
// [1, total_pages] returns ErrInvalidPage.
func (r *Reader) Page(ctx context.Context, page, rowsPerPage int) (*Page, error) {
	if rowsPerPage <= 0 {
		return nil, eris.Wrap(ErrInvalidPage, "rows_per_page must be positive")
	}

	totalRows, err := r.CountRows()
	if err != nil {
		return nil, err
	}
	headers, err := r.Headers()
	if err != nil {
		return nil, err
	}

	totalPages := (totalRows + rowsPerPage - 1) / rowsPerPage
	if page < 1 || page > totalPages {
		return nil, eris.Wrap(ErrInvalidPage, "page out of range")
	}

	start := (page - 1) * rowsPerPage
	end := start + rowsPerPage
	if end > totalRows {
		end = totalRows
	}

	rows, err := r.readRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	return &Page{
		Headers:     headers,
		Rows:        normalizeWidths(rows, len(headers)),
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalRows:   totalRows,
		StartRow:    start + 1,
		EndRow:      end,
	}, nil
}

// readRange returns data rows [start, end), 0-indexed after the header.
func (r *Reader) readRange(ctx context.Context, start, end int) ([][]string, error) {
	f, err := r.open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := newCSVReader(f)
	if _, err := reader.Read(); err != nil && err != io.EOF {
		return nil, eris.Wrap(err, "csvview: skip header")
	}

	for i := 0; i < start; i++ {
		if _, err := reader.Read(); err != nil {
			if err == io.EOF {
				return nil, nil
			}
			return nil, eris.Wrap(err, "csvview: seek start row")
		}
	}

	rows := make([][]string, 0, end-start)
	for i := start; i < end; i++ {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "csvview: context cancelled")
		}
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "csvview: read row")
		}
		rows = append(rows, record)
	}
	return rows, nil
}

// Stream copies the whole file to w for download.
func (r *Reader) Stream(w io.Writer) error {
	f, err := r.open()
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(w, f.Reader); err != nil {
		return eris.Wrap(err, "csvview: stream file")
	}
	return nil
}

// decodedFile pairs the open file handle with its BOM-stripping reader.
type decodedFile struct {
	*os.File
	Reader io.Reader
}

// open opens the file with a decoder that tolerates a UTF-8 byte order mark
// (registry bulk exports are written with one).
func (r *Reader) open() (*decodedFile, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, eris.Wrap(err, "csvview: open file")
	}
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	return &decodedFile{
		File:   f,
		Reader: transform.NewReader(f, decoder),
	}, nil
}

func newCSVReader(f *decodedFile) *csv.Reader {
	reader := csv.NewReader(f.Reader)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader
}

// normalizeWidths pads or truncates rows to the header width.
func normalizeWidths(rows [][]string, width int) [][]string {
	if width == 0 {
		return rows
	}
	out := make([][]string, len(rows))
	for i, row := range rows {
		if len(row) == width {
			out[i] = row
			continue
		}
		normalized := make([]string, width)
		copy(normalized, row)
		out[i] = normalized
	}
	return out
}
