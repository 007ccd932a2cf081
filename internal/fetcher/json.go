package fetcher

import (
	"context"
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
)

// DecodeJSONArray streams the elements of a top-level JSON array into a
// channel without materializing the whole document. Census API payloads
// are arrays of row arrays, so T is typically []string. Both channels
// close when the stream ends.
func DecodeJSONArray[T any](ctx context.Context, r io.Reader) (<-chan T, <-chan error) {
	outCh := make(chan T, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(outCh)
		defer close(errCh)
		if err := streamArray(ctx, json.NewDecoder(r), outCh); err != nil {
			errCh <- err
		}
	}()

	return outCh, errCh
}

func streamArray[T any](ctx context.Context, dec *json.Decoder, out chan<- T) error {
	tok, err := dec.Token()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return eris.Wrap(err, "json: read opening token")
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return eris.Errorf("json: expected '[', got %v", tok)
	}

	for dec.More() {
		var elem T
		if err := dec.Decode(&elem); err != nil {
			return eris.Wrap(err, "json: decode element")
		}
		select {
		case out <- elem:
		case <-ctx.Done():
			return eris.Wrap(ctx.Err(), "json: context cancelled")
		}
	}

	// Closing bracket.
	if _, err := dec.Token(); err != nil && err != io.EOF {
		return eris.Wrap(err, "json: read closing token")
	}
	return nil
}
