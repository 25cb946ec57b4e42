package chat

import (
	"context"
	"net/url"

	"github.com/moredevelopers26/chattest/internal/ids"
	"github.com/moredevelopers26/chattest/internal/metrics"
	"github.com/moredevelopers26/chattest/internal/models"
	"github.com/moredevelopers26/chattest/internal/store"
)

// Assistant identity used for AI replies.
const (
	AssistantID   = "ai-system"
	AssistantName = "Gemini Assistant"
)

const defaultBio = "¡Hola! Estoy usando Nequi."

func avatarFor(seed string) string {
	return "https://picsum.photos/seed/" + url.PathEscape(seed) + "/200/200"
}

func seedUsers(now int64) []models.User {
	return []models.User{
		{
			ID:       AssistantID,
			Name:     AssistantName,
			Email:    "ai@gemini.com",
			Avatar:   avatarFor("ai"),
			Status:   models.StatusOnline,
			Bio:      "Inteligencia Artificial lista para ayudarte.",
			LastSeen: now,
		},
		{
			ID:       "user-1",
			Name:     "Jane Doe",
			Email:    "jane@example.com",
			Avatar:   avatarFor("jane"),
			Status:   models.StatusOnline,
			Bio:      "Amante de la tecnología y el café.",
			LastSeen: now - 5*60*1000,
		},
		{
			ID:       "user-2",
			Name:     "John Smith",
			Email:    "john@example.com",
			Avatar:   avatarFor("john"),
			Status:   models.StatusAway,
			Bio:      "Programando el futuro.",
			LastSeen: now - 2*60*60*1000,
		},
	}
}

// CurrentUser returns the session user, if any.
func (s *Service) CurrentUser() (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return models.User{}, false
	}
	return *s.current, true
}

// Users returns the roster.
func (s *Service) Users() []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.User(nil), s.users...)
}

// User looks up a roster entry by id.
func (s *Service) User(id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.findUser(id)
	if u == nil {
		return models.User{}, &NotFoundError{Kind: KindUser, ID: id}
	}
	return *u, nil
}

// Login opens a session for the first user registered with email and marks
// them online.
func (s *Service) Login(ctx context.Context, email string) (models.User, store.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var u *models.User
	for i := range s.users {
		if s.users[i].Email == email {
			u = &s.users[i]
			break
		}
	}
	if u == nil {
		return models.User{}, store.Result{}, &NotFoundError{Kind: KindUser, ID: email}
	}

	u.Status = models.StatusOnline
	u.LastSeen = s.nowMillis()
	cur := *u
	s.current = &cur

	res := s.store.Save(ctx, KeyCurrentUser, s.current)
	res = res.Merge(s.store.Save(ctx, KeyUsers, s.users))
	s.notify()

	s.log.Info().Str("user_id", cur.ID).Msg("logged in")
	return cur, res, nil
}

// Signup registers a new user and opens a session for them. Email addresses
// are not checked for uniqueness; Login picks the earliest registration.
func (s *Service) Signup(ctx context.Context, name, email string) (models.User, store.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := models.User{
		ID:       ids.NewUserID(),
		Name:     name,
		Email:    email,
		Avatar:   avatarFor(name),
		Status:   models.StatusOnline,
		Bio:      defaultBio,
		LastSeen: s.nowMillis(),
	}
	s.users = append(s.users, u)
	cur := u
	s.current = &cur

	res := s.store.Save(ctx, KeyUsers, s.users)
	res = res.Merge(s.store.Save(ctx, KeyCurrentUser, s.current))
	s.notify()

	metrics.UsersRegistered.Inc()
	s.log.Info().Str("user_id", u.ID).Msg("user registered")
	return u, res
}

// Logout marks the session user offline and ends the session.
func (s *Service) Logout(ctx context.Context) store.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res store.Result
	if s.current != nil {
		if u := s.findUser(s.current.ID); u != nil {
			u.Status = models.StatusOffline
			u.LastSeen = s.nowMillis()
			res = res.Merge(s.store.Save(ctx, KeyUsers, s.users))
		}
		s.log.Info().Str("user_id", s.current.ID).Msg("logged out")
	}
	s.current = nil
	res = res.Merge(s.store.Remove(ctx, KeyCurrentUser))
	s.notify()
	return res
}

// UpdateStatus sets a user's presence and refreshes lastSeen.
func (s *Service) UpdateStatus(ctx context.Context, userID, status string) (models.User, store.Result, error) {
	if !models.ValidStatus(status) {
		return models.User{}, store.Result{}, ErrInvalidStatus
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.findUser(userID)
	if u == nil {
		return models.User{}, store.Result{}, &NotFoundError{Kind: KindUser, ID: userID}
	}
	u.Status = status
	u.LastSeen = s.nowMillis()

	res := s.store.Save(ctx, KeyUsers, s.users)
	res = res.Merge(s.syncSession(ctx, *u))
	s.notify()
	return *u, res, nil
}

// UpdateProfile applies the non-nil fields of p to a user.
func (s *Service) UpdateProfile(ctx context.Context, userID string, p models.ProfileUpdate) (models.User, store.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.findUser(userID)
	if u == nil {
		return models.User{}, store.Result{}, &NotFoundError{Kind: KindUser, ID: userID}
	}
	p.Apply(u)

	res := s.store.Save(ctx, KeyUsers, s.users)
	res = res.Merge(s.syncSession(ctx, *u))
	s.notify()
	return *u, res, nil
}

// syncSession mirrors a roster change onto the session copy.
func (s *Service) syncSession(ctx context.Context, u models.User) store.Result {
	if s.current == nil || s.current.ID != u.ID {
		return store.Result{}
	}
	cur := u
	s.current = &cur
	return s.store.Save(ctx, KeyCurrentUser, s.current)
}

func (s *Service) findUser(id string) *models.User {
	for i := range s.users {
		if s.users[i].ID == id {
			return &s.users[i]
		}
	}
	return nil
}
