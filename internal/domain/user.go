package domain

import "time"

type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Country   string    `json:"country"`
	Language  string    `json:"language"`
	CreatedAt time.Time `json:"created_at"`
}
