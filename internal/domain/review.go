package domain

import "time"

type Review struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	ProductID int64     `bson:"product_id" json:"productId"`
	UserID    string    `bson:"user_id" json:"userId"`
	Rating    int       `bson:"rating" json:"rating"`
	Comment   string    `bson:"comment" json:"comment"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
