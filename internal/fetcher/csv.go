package fetcher

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// CSVOptions configures the streaming CSV parser.
type CSVOptions struct {
	Delimiter  rune            // default ','
	SkipRows   int             // preamble rows to discard before the header
	HasHeader  bool            // if true, the first kept row is sent to HeaderCh, not RowCh
	HeaderCh   chan<- []string // optional: receives the header row
	Comment    rune            // comment character (0 = none)
	LazyQuotes bool
	TrimSpace  bool
}

// StreamCSV reads CSV from r row by row into a channel, so indicator
// files bigger than memory parse in constant space. The caller drains
// the row channel, then the error channel; both close when the stream
// ends. SkipRows discards provider preambles (World Bank exports put
// metadata records ahead of the real header).
func StreamCSV(ctx context.Context, r io.Reader, opts CSVOptions) (<-chan []string, <-chan error) {
	rowCh := make(chan []string, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(rowCh)
		defer close(errCh)
		if err := streamRows(ctx, csvReader(r, opts), opts, rowCh); err != nil {
			errCh <- err
		}
	}()

	return rowCh, errCh
}

func csvReader(r io.Reader, opts CSVOptions) *csv.Reader {
	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	if opts.Comment != 0 {
		reader.Comment = opts.Comment
	}
	reader.LazyQuotes = opts.LazyQuotes
	reader.FieldsPerRecord = -1 // providers pad year columns inconsistently
	return reader
}

func streamRows(ctx context.Context, reader *csv.Reader, opts CSVOptions, out chan<- []string) error {
	toSkip := opts.SkipRows
	headerPending := opts.HasHeader

	for {
		if ctx.Err() != nil {
			return eris.Wrap(ctx.Err(), "csv: context cancelled")
		}

		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return eris.Wrap(err, "csv: read row")
		}

		if toSkip > 0 {
			toSkip--
			continue
		}
		if opts.TrimSpace {
			for i := range record {
				record[i] = strings.TrimSpace(record[i])
			}
		}

		dest := out
		if headerPending {
			headerPending = false
			if opts.HeaderCh == nil {
				continue
			}
			dest = opts.HeaderCh
		}
		select {
		case dest <- record:
		case <-ctx.Done():
			return eris.Wrap(ctx.Err(), "csv: context cancelled")
		}
	}
}
