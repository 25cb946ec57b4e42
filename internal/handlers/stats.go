package handlers

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/moredevelopers26/chattest/internal/chat"
	"github.com/moredevelopers26/chattest/internal/models"
)

// RoomStats represents stats for a single room.
type RoomStats struct {
	ID           string `json:"id"`
	Kind         string `json:"kind"`
	MessageCount int    `json:"message_count"`
}

// StatsResponse represents the response from the stats endpoint.
type StatsResponse struct {
	TotalUsers    int         `json:"total_users"`
	OnlineUsers   int         `json:"online_users"`
	TotalRooms    int         `json:"total_rooms"`
	TotalMessages int         `json:"total_messages"`
	VaultItems    int         `json:"vault_items"`
	Calls         int         `json:"calls"`
	LastActivity  string      `json:"last_activity"`
	TopRooms      []RoomStats `json:"top_rooms"`
	Storage       *Usage      `json:"storage,omitempty"`
}

// Stats returns counts over the whole chat state.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	snap := h.chat.Snapshot()

	resp := StatsResponse{
		TotalUsers:   len(snap.Users),
		VaultItems:   len(snap.Vault),
		Calls:        len(snap.Calls),
		LastActivity: "no activity yet",
		TopRooms:     []RoomStats{},
		Storage:      h.usage(),
	}
	for _, u := range snap.Users {
		if u.Status == models.StatusOnline {
			resp.OnlineUsers++
		}
	}

	var last int64
	for id, msgs := range snap.Messages {
		if len(msgs) == 0 {
			continue
		}
		resp.TotalRooms++
		resp.TotalMessages += len(msgs)
		resp.TopRooms = append(resp.TopRooms, RoomStats{
			ID:           id,
			Kind:         chat.KindOf(id).String(),
			MessageCount: len(msgs),
		})
		if ts := msgs[len(msgs)-1].Timestamp; ts > last {
			last = ts
		}
	}
	if last > 0 {
		resp.LastActivity = formatTimeAgo(time.UnixMilli(last))
	}

	sort.Slice(resp.TopRooms, func(i, j int) bool {
		a, b := resp.TopRooms[i], resp.TopRooms[j]
		if a.MessageCount != b.MessageCount {
			return a.MessageCount > b.MessageCount
		}
		return a.ID < b.ID
	})
	if len(resp.TopRooms) > 5 {
		resp.TopRooms = resp.TopRooms[:5]
	}

	h.JSON(w, http.StatusOK, resp)
}

// formatTimeAgo formats a time as a human-readable "X ago" string.
func formatTimeAgo(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return plural(int(diff.Minutes()), "minute")
	case diff < 24*time.Hour:
		return plural(int(diff.Hours()), "hour")
	default:
		return plural(int(diff.Hours()/24), "day")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit + " ago"
	}
	return strconv.Itoa(n) + " " + unit + "s ago"
}
