package chat

import (
	"context"
	"sort"

	"github.com/moredevelopers26/chattest/internal/ids"
	"github.com/moredevelopers26/chattest/internal/models"
	"github.com/moredevelopers26/chattest/internal/store"
)

func seedCalls(now int64) []models.CallRecord {
	const (
		hour = int64(60 * 60 * 1000)
		day  = 24 * hour
	)
	return []models.CallRecord{
		{ID: ids.NewCallID(), Name: "Gemini AI", Direction: models.CallIncoming, At: now - hour, DurationSeconds: 12*60 + 30},
		{ID: ids.NewCallID(), Name: "Jane Doe", Direction: models.CallOutgoing, At: now - day, DurationSeconds: 5*60 + 12},
		{ID: ids.NewCallID(), Name: "John Smith", Direction: models.CallIncoming, At: now - 3*day, Missed: true},
		{ID: ids.NewCallID(), Name: "Alice Wonder", Direction: models.CallOutgoing, At: now - 4*day, DurationSeconds: 45*60 + 2},
	}
}

// ListCalls returns the call log, newest first.
func (s *Service) ListCalls() []models.CallRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := append([]models.CallRecord(nil), s.calls...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].At > out[j].At })
	return out
}

// RecordCall appends a call to the log. A zero At means now.
func (s *Service) RecordCall(ctx context.Context, c models.CallRecord) (models.CallRecord, store.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = ids.NewCallID()
	}
	if c.At == 0 {
		c.At = s.nowMillis()
	}
	if c.Missed {
		c.DurationSeconds = 0
	}
	s.calls = append(s.calls, c)
	res := s.store.Save(ctx, KeyCalls, s.calls)
	s.notify()
	return c, res
}
