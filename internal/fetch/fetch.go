// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pdiddy/journal-engine/internal/store"
	"github.com/pdiddy/journal-engine/pkg/types"
)

const defaultPageDelay = 500 * time.Millisecond

// JournalWorks pages through the full works listing for issn and returns
// the transformed records. Pagination stops when the server returns an
// empty item batch or omits the next cursor. A network or HTTP error
// terminates pagination early; the works accumulated up to that point
// are returned alongside the error so the caller can keep them.
func (c *Client) JournalWorks(ctx context.Context, issn string, w io.Writer) ([]types.Work, error) {
	delay := c.Config.PageDelay
	if delay <= 0 {
		delay = defaultPageDelay
	}

	var works []types.Work
	cursor := initialCursor

	for {
		page, err := c.fetchPage(ctx, issn, cursor)
		if err != nil {
			return works, err
		}

		if len(page.Items) == 0 {
			break
		}

		for _, item := range page.Items {
			works = append(works, transformWork(item))
			if len(works)%1000 == 0 {
				fmt.Fprintf(w, "processed %d works...\n", len(works))
			}
		}

		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor

		// Polite-use throttle between pages. Fixed delay, no backoff.
		select {
		case <-ctx.Done():
			return works, ctx.Err()
		case <-time.After(delay):
		}
	}

	return works, nil
}

// SaveToFile fetches every work for issn and writes the transformed
// array to path as pretty-printed JSON. When pagination fails partway,
// the works fetched so far are still written before the error is
// returned; the file is rewritten wholesale by the next successful run.
// A fetch that fails before yielding any work writes nothing.
func (c *Client) SaveToFile(ctx context.Context, issn, path string, w io.Writer) error {
	works, fetchErr := c.JournalWorks(ctx, issn, w)
	if len(works) == 0 && fetchErr != nil {
		return fmt.Errorf("fetching journal %s: %w", issn, fetchErr)
	}

	if err := store.Save(path, works); err != nil {
		return err
	}

	if fetchErr != nil {
		fmt.Fprintf(w, "saved %d works to %s (fetch incomplete)\n", len(works), path)
		return fmt.Errorf("fetching journal %s (partial result saved): %w", issn, fetchErr)
	}

	fmt.Fprintf(w, "total works processed: %d\n", len(works))
	fmt.Fprintf(w, "data saved to %s\n", path)
	return nil
}
