package chat

import (
	"context"

	"github.com/moredevelopers26/chattest/internal/models"
	"github.com/moredevelopers26/chattest/internal/store"
)

// IsSaved reports whether a message has a vault entry.
func (s *Service) IsSaved(messageID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vaultIndex(messageID) >= 0
}

// VaultItems returns the vault, most recently saved first.
func (s *Service) VaultItems() []models.VaultItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.VaultItem(nil), s.vault...)
}

// SaveToVault stores a copy of m at the front of the vault. Saving the same
// message twice is a no-op.
func (s *Service) SaveToVault(ctx context.Context, m models.Message) (models.VaultItem, store.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.vaultIndex(m.ID); i >= 0 {
		return s.vault[i], store.Result{}
	}

	item := vaultItemFor(m, s.nowMillis())
	s.vault = append([]models.VaultItem{item}, s.vault...)
	res := s.store.Save(ctx, KeyVault, s.vault)
	s.notify()
	return item, res
}

// SaveMessageToVault looks a message up and saves it.
func (s *Service) SaveMessageToVault(ctx context.Context, roomID, messageID string) (models.VaultItem, store.Result, error) {
	m, err := s.Message(roomID, messageID)
	if err != nil {
		return models.VaultItem{}, store.Result{}, err
	}
	item, res := s.SaveToVault(ctx, m)
	return item, res, nil
}

// RemoveFromVault deletes an entry by id; unknown ids are a no-op.
func (s *Service) RemoveFromVault(ctx context.Context, itemID string) store.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.vaultIndex(itemID)
	if i < 0 {
		return store.Result{}
	}
	s.vault = append(s.vault[:i:i], s.vault[i+1:]...)
	res := s.store.Save(ctx, KeyVault, s.vault)
	s.notify()
	return res
}

// ClearVault empties the vault.
func (s *Service) ClearVault(ctx context.Context) store.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.vault = []models.VaultItem{}
	res := s.store.Save(ctx, KeyVault, s.vault)
	s.notify()
	return res
}

func (s *Service) vaultIndex(id string) int {
	for i, item := range s.vault {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func vaultItemFor(m models.Message, now int64) models.VaultItem {
	item := models.VaultItem{
		ID:         m.ID,
		Timestamp:  now,
		Type:       m.Type,
		Content:    m.Text,
		SenderName: m.SenderName,
		FileName:   m.FileName,
	}

	switch m.Type {
	case models.TypeImage:
		item.Name = "Foto de Chat"
	case models.TypeAudio:
		item.Name = "Audio de Chat"
	case models.TypeVideo:
		item.Name = "Video de Chat"
	case models.TypeDocument:
		item.Name = m.FileName
		if item.Name == "" {
			item.Name = "Archivo"
		}
	default:
		item.Name = "Nota de Chat"
	}

	if m.IsTextual() {
		item.Type = models.TypeText
	}
	return item
}
