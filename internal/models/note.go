package models

import "time"

// MaxNotesPerOwner bounds the per-owner note list; oldest notes fall off.
const MaxNotesPerOwner = 200

// NoteRecord is a user note. Notes are an external collaborator's data
// (raw CRUD lives outside the engine) but feed the notes extractor and
// the memory import path.
type NoteRecord struct {
	ID        string    `json:"note_id" bson:"noteId"`
	OwnerID   string    `json:"owner_id" bson:"ownerId"`
	Title     string    `json:"title" bson:"title"`
	Content   string    `json:"content" bson:"content"`
	Tags      []string  `json:"tags,omitempty" bson:"tags,omitempty"`
	UpdatedAt time.Time `json:"updated_at" bson:"updatedAt"`
}
