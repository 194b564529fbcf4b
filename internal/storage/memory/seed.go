package memory

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/nekogravitycat/item-sharing-backend/internal/item"
	"github.com/nekogravitycat/item-sharing-backend/internal/user"
)

// SeedData is the layout of a seed file.
type SeedData struct {
	Users []SeedUser `json:"users"`
	Items []SeedItem `json:"items"`
}

type SeedUser struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type SeedItem struct {
	ID          int64  `json:"id"`
	OwnerID     int64  `json:"owner_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
}

// LoadSeedFile reads a seed file and applies it with Seed.
func LoadSeedFile(path string, users *UserRepository, items *ItemRepository) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}
	var data SeedData
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return Seed(data, users, items)
}

// Seed stores the users, then the items. Every item owner must be a seeded user.
func Seed(data SeedData, users *UserRepository, items *ItemRepository) error {
	owners := make(map[int64]bool, len(data.Users))
	for _, u := range data.Users {
		added := users.Add(user.User{ID: u.ID, Name: u.Name, Email: u.Email})
		owners[added.ID] = true
	}
	for _, it := range data.Items {
		if !owners[it.OwnerID] {
			return fmt.Errorf("seed item %q: unknown owner %d", it.Name, it.OwnerID)
		}
		items.Add(item.Item{
			ID:          it.ID,
			OwnerID:     it.OwnerID,
			Name:        it.Name,
			Description: it.Description,
			Available:   it.Available,
		})
	}
	return nil
}
