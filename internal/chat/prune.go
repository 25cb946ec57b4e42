package chat

import (
	"context"
	"math"
	"sort"
)

const (
	pruneFraction = 0.3
	pruneFloor    = 5
)

type mediaRef struct {
	room      string
	index     int
	timestamp int64
}

// pruneCount returns how many of n media messages a prune discards: 30%
// rounded up, at least pruneFloor, never more than n.
func pruneCount(n int) int {
	k := int(math.Ceil(float64(n) * pruneFraction))
	if k < pruneFloor {
		k = pruneFloor
	}
	if k > n {
		k = n
	}
	return k
}

// pruneMedia discards the oldest media messages across all rooms, writes
// the message map once and notifies. It runs as the store's quota hook,
// always from inside a locked mutation.
func (s *Service) pruneMedia(ctx context.Context) int {
	var media []mediaRef
	for room, msgs := range s.messages {
		for i, m := range msgs {
			if m.IsMedia() {
				media = append(media, mediaRef{room: room, index: i, timestamp: m.Timestamp})
			}
		}
	}
	if len(media) == 0 {
		return 0
	}

	sort.SliceStable(media, func(i, j int) bool {
		if media[i].timestamp != media[j].timestamp {
			return media[i].timestamp < media[j].timestamp
		}
		if media[i].room != media[j].room {
			return media[i].room < media[j].room
		}
		return media[i].index < media[j].index
	})
	victims := media[:pruneCount(len(media))]

	byRoom := make(map[string][]int)
	for _, v := range victims {
		byRoom[v.room] = append(byRoom[v.room], v.index)
	}
	for room, idx := range byRoom {
		// highest index first so earlier positions stay valid
		sort.Sort(sort.Reverse(sort.IntSlice(idx)))
		msgs := s.messages[room]
		for _, i := range idx {
			msgs = append(msgs[:i], msgs[i+1:]...)
		}
		s.messages[room] = msgs
	}

	if err := s.store.Put(ctx, KeyMessages, s.messages); err != nil {
		s.log.Warn().Err(err).Msg("writing pruned messages failed")
	}

	s.log.Info().Int("pruned", len(victims)).Int("media", len(media)).Msg("pruned oldest media")
	s.notify()
	return len(victims)
}
