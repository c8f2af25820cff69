package repository

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/hdnotes/notes-api/internal/model"
)

// NoteRepository defines the interface for note-related database operations.
// Every lookup is a single compound (id, owner) predicate; ownership is never
// checked after the fact.
type NoteRepository interface {
	CreateNote(ctx context.Context, note *model.Note) (*model.Note, error)
	GetNote(ctx context.Context, id string, ownerID bson.ObjectID) (*model.Note, error)
	ListNotes(ctx context.Context, params ListNotesParams) ([]*model.Note, error)
	CountNotes(ctx context.Context, params ListNotesParams) (int64, error)
	UpdateNote(ctx context.Context, id string, ownerID bson.ObjectID, params UpdateNoteParams) (*model.Note, error)
	DeleteNote(ctx context.Context, id string, ownerID bson.ObjectID) (*model.Note, error)
}

// ListNotesParams defines the parameters for filtering and paginating an
// owner's notes.
type ListNotesParams struct {
	OwnerID bson.ObjectID
	Search  string
	Limit   int64
	Offset  int64
}

// UpdateNoteParams defines the optional parameters for updating a note.
// Only the fields that are not nil will be updated.
type UpdateNoteParams struct {
	Title   *string
	Content *string
}

const noteCollection = "notes"

type noteMongoRepository struct {
	db *mongo.Database
}

// NewNoteMongoRepository creates the notes collection accessor.
func NewNoteMongoRepository(db *mongo.Database) NoteRepository {
	return &noteMongoRepository{db: db}
}

func (r *noteMongoRepository) CreateNote(ctx context.Context, note *model.Note) (*model.Note, error) {
	now := time.Now()
	note.CreatedAt = now
	note.UpdatedAt = now

	result, err := r.db.Collection(noteCollection).InsertOne(ctx, note)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		note.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return note, nil
}

func (r *noteMongoRepository) GetNote(
	ctx context.Context,
	id string,
	ownerID bson.ObjectID,
) (*model.Note, error) {
	filter, err := ownerFilter(id, ownerID)
	if err != nil {
		return nil, err
	}

	result := r.db.Collection(noteCollection).FindOne(ctx, filter)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var note model.Note
	if err := result.Decode(&note); err != nil {
		return nil, err
	}

	return &note, nil
}

func (r *noteMongoRepository) ListNotes(ctx context.Context, params ListNotesParams) ([]*model.Note, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(params.Limit).
		SetSkip(params.Offset)

	cursor, err := r.db.Collection(noteCollection).Find(ctx, listFilter(params), findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notes []*model.Note
	for cursor.Next(ctx) {
		var note model.Note
		if err := cursor.Decode(&note); err != nil {
			return nil, err
		}
		notes = append(notes, &note)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return notes, nil
}

func (r *noteMongoRepository) CountNotes(ctx context.Context, params ListNotesParams) (int64, error) {
	return r.db.Collection(noteCollection).CountDocuments(ctx, listFilter(params))
}

func (r *noteMongoRepository) UpdateNote(
	ctx context.Context,
	id string,
	ownerID bson.ObjectID,
	params UpdateNoteParams,
) (*model.Note, error) {
	filter, err := ownerFilter(id, ownerID)
	if err != nil {
		return nil, err
	}

	// Build update query
	updateMap := bson.M{}
	if params.Title != nil {
		updateMap["title"] = *params.Title
	}
	if params.Content != nil {
		updateMap["content"] = *params.Content
	}

	if len(updateMap) == 0 {
		return nil, errors.New("no note fields to update")
	}

	updateMap["updated_at"] = time.Now()

	result := r.db.Collection(noteCollection).FindOneAndUpdate(
		ctx,
		filter,
		bson.M{"$set": updateMap},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var note model.Note
	if err := result.Decode(&note); err != nil {
		return nil, err
	}

	return &note, nil
}

func (r *noteMongoRepository) DeleteNote(
	ctx context.Context,
	id string,
	ownerID bson.ObjectID,
) (*model.Note, error) {
	filter, err := ownerFilter(id, ownerID)
	if err != nil {
		return nil, err
	}

	result := r.db.Collection(noteCollection).FindOneAndDelete(ctx, filter)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var note model.Note
	if err := result.Decode(&note); err != nil {
		return nil, err
	}

	return &note, nil
}

func ownerFilter(id string, ownerID bson.ObjectID) (bson.M, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	return bson.M{"_id": objectID, "user_id": ownerID}, nil
}

func listFilter(params ListNotesParams) bson.M {
	filter := bson.M{"user_id": params.OwnerID}

	if params.Search != "" {
		pattern := regexp.QuoteMeta(params.Search)
		filter["$or"] = bson.A{
			bson.M{"title": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"content": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}

	return filter
}
