package usecase

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/hdnotes/notes-api/internal/model"
	"github.com/hdnotes/notes-api/internal/repository"
)

// NoteUsecase provides owner-scoped CRUD over notes. Every operation is
// implicitly filtered by the authenticated caller's id.
type NoteUsecase interface {
	CreateNote(ctx context.Context, ownerID bson.ObjectID, title, content string) (*model.Note, error)
	ListNotes(ctx context.Context, params ListNotesParams) (*NotePage, error)
	GetNote(ctx context.Context, id string, ownerID bson.ObjectID) (*model.Note, error)
	UpdateNote(ctx context.Context, id string, ownerID bson.ObjectID, params UpdateNoteParams) (*model.Note, error)
	DeleteNote(ctx context.Context, id string, ownerID bson.ObjectID) error
}

// ListNotesParams defines the parameters for listing an owner's notes.
type ListNotesParams struct {
	OwnerID bson.ObjectID
	Page    int64
	Limit   int64
	Search  string
}

// UpdateNoteParams defines the optional parameters for updating a note.
// Fields left nil keep their current value.
type UpdateNoteParams struct {
	Title   *string
	Content *string
}

// NotePage is one page of an owner's notes plus pagination metadata.
type NotePage struct {
	Notes       []*model.Note
	CurrentPage int64
	TotalPages  int64
	TotalNotes  int64
	HasNext     bool
	HasPrev     bool
}

var ErrNoteNotFound = errors.New("note not found")

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type noteUsecase struct {
	noteRepo repository.NoteRepository
}

// NewNoteUsecase creates a new NoteUsecase instance.
func NewNoteUsecase(noteRepo repository.NoteRepository) NoteUsecase {
	return &noteUsecase{noteRepo: noteRepo}
}

func (u *noteUsecase) CreateNote(
	ctx context.Context,
	ownerID bson.ObjectID,
	title, content string,
) (*model.Note, error) {
	return u.noteRepo.CreateNote(ctx, &model.Note{
		UserID:  ownerID,
		Title:   title,
		Content: content,
	})
}

func (u *noteUsecase) ListNotes(ctx context.Context, params ListNotesParams) (*NotePage, error) {
	page := params.Page
	if page < 1 {
		page = 1
	}

	limit := params.Limit
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	repoParams := repository.ListNotesParams{
		OwnerID: params.OwnerID,
		Search:  params.Search,
		Limit:   limit,
		Offset:  (page - 1) * limit,
	}

	notes, err := u.noteRepo.ListNotes(ctx, repoParams)
	if err != nil {
		return nil, err
	}

	total, err := u.noteRepo.CountNotes(ctx, repoParams)
	if err != nil {
		return nil, err
	}

	totalPages := (total + limit - 1) / limit

	return &NotePage{
		Notes:       notes,
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalNotes:  total,
		HasNext:     page < totalPages,
		HasPrev:     page > 1,
	}, nil
}

func (u *noteUsecase) GetNote(ctx context.Context, id string, ownerID bson.ObjectID) (*model.Note, error) {
	note, err := u.noteRepo.GetNote(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNoteNotFound
		}

		return nil, err
	}

	return note, nil
}

func (u *noteUsecase) UpdateNote(
	ctx context.Context,
	id string,
	ownerID bson.ObjectID,
	params UpdateNoteParams,
) (*model.Note, error) {
	if params.Title == nil && params.Content == nil {
		return u.GetNote(ctx, id, ownerID)
	}

	note, err := u.noteRepo.UpdateNote(ctx, id, ownerID, repository.UpdateNoteParams{
		Title:   params.Title,
		Content: params.Content,
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNoteNotFound
		}

		return nil, err
	}

	return note, nil
}

func (u *noteUsecase) DeleteNote(ctx context.Context, id string, ownerID bson.ObjectID) error {
	if _, err := u.noteRepo.DeleteNote(ctx, id, ownerID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNoteNotFound
		}

		return err
	}

	return nil
}
