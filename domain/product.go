package domain

import "time"

// Product is a purchasable top-up denomination for a game.
type Product struct {
	ID           string    `bson:"_id,omitempty"`
	Name         string    `bson:"name"`
	Game         string    `bson:"game"`
	Denomination string    `bson:"denomination"`
	Price        int64     `bson:"price"` // smallest currency unit
	Active       bool      `bson:"active"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}
