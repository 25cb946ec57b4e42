package models

// Snapshot is the full state pushed to observers after every mutation.
// It is a deep copy; observers may keep it.
type Snapshot struct {
	Messages    map[string][]Message       `json:"messages"`
	Typing      map[string]map[string]bool `json:"typing"`
	Users       []User                     `json:"users"`
	Vault       []VaultItem                `json:"vault"`
	Calls       []CallRecord               `json:"calls"`
	CurrentUser *User                      `json:"currentUser"`
	LastSeen    map[string]int64           `json:"lastSeen"`
	HiddenRooms []string                   `json:"hiddenRooms"`
}
