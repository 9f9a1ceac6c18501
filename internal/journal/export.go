package journal

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
)

// ExportCSV writes up to maxListLimit of the user's entries, newest first, as
// Date,Mood,Content rows. It returns the number of entries written.
func (s *Service) ExportCSV(ctx context.Context, userID string, w io.Writer) (int, error) {
	entries, err := s.repo.ListEntries(ctx, userID, maxListLimit)
	if err != nil {
		return 0, fmt.Errorf("load entries for export: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", "Mood", "Content"}); err != nil {
		return 0, err
	}
	for _, e := range entries {
		if err := cw.Write([]string{dayKey(e.CreatedAt, s.loc), e.Mood, e.Content}); err != nil {
			return 0, err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, err
	}
	return len(entries), nil
}
