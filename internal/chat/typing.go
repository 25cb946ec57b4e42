package chat

import "sort"

const unknownTypist = "Alguien"

// SetTyping flags or clears userID as typing in roomID. Flags live only in
// memory; clearing them after an idle period is up to the caller.
func (s *Service) SetTyping(roomID, userID string, typing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	flags := s.typing[roomID]
	if flags == nil {
		flags = make(map[string]bool)
		s.typing[roomID] = flags
	}
	flags[userID] = typing
	s.notify()
}

// TypingUsers returns the names of users typing in roomID, ordered by user
// id. Users missing from the roster show up as "Alguien".
func (s *Service) TypingUsers(roomID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var userIDs []string
	for id, typing := range s.typing[roomID] {
		if typing {
			userIDs = append(userIDs, id)
		}
	}
	sort.Strings(userIDs)

	names := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		if u := s.findUser(id); u != nil {
			names = append(names, u.Name)
		} else {
			names = append(names, unknownTypist)
		}
	}
	return names
}
