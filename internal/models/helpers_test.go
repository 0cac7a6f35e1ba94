package models

import "go.mongodb.org/mongo-driver/bson/primitive"

func newTestID(b byte) primitive.ObjectID {
	var id primitive.ObjectID
	id[11] = b
	return id
}
