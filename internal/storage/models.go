package storage

import "time"

// Font is a catalog entry with its ordered child lists.
type Font struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PostURL     string    `json:"urlPost"`
	Keys        []string  `json:"keys"`
	Tags        []string  `json:"tags"`
	Links       []string  `json:"links"`
	Images      []string  `json:"images"`
	Messages    []string  `json:"messages"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Response is a canned auto-reply group.
type Response struct {
	ID       int64    `json:"id"`
	Keys     []string `json:"keys"`
	Messages []string `json:"messages"`
}

// Ban is a banned Messenger sender.
type Ban struct {
	SenderID  string    `json:"senderId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// GameScore is one player's best score for a game.
type GameScore struct {
	ID         int64     `json:"id"`
	PlayerName string    `json:"namePlayer"`
	GameName   string    `json:"nameGame"`
	Score      float64   `json:"score"`
	School     string    `json:"school"`
	Phone      string    `json:"phone"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
