package database

import "time"

// Message is an archived chat message: either an inbound participant message
// the bot handled or a reply the bot sent.
type Message struct {
	ID        uint      `db:"id"`
	ChatID    int64     `db:"chat_id"`
	UserID    int64     `db:"user_id"`
	Content   string    `db:"content"`
	FromBot   bool      `db:"from_bot"`
	Timestamp time.Time `db:"timestamp"`
	CreatedAt time.Time `db:"created_at"`
}
