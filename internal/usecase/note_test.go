package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/hdnotes/notes-api/internal/model"
	"github.com/hdnotes/notes-api/internal/repository"
)

type fakeNoteRepo struct {
	mu    sync.Mutex
	notes map[string]*model.Note
	seq   int
}

func newFakeNoteRepo() *fakeNoteRepo {
	return &fakeNoteRepo{notes: make(map[string]*model.Note)}
}

func (r *fakeNoteRepo) CreateNote(_ context.Context, note *model.Note) (*model.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	note.ID = bson.NewObjectID()
	r.seq++
	// Monotonic timestamps so created_at ordering is deterministic.
	note.CreatedAt = time.Unix(int64(r.seq), 0)
	note.UpdatedAt = note.CreatedAt

	clone := *note
	r.notes[note.ID.Hex()] = &clone

	return note, nil
}

func (r *fakeNoteRepo) GetNote(_ context.Context, id string, ownerID bson.ObjectID) (*model.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	note, ok := r.notes[id]
	if !ok || note.UserID != ownerID {
		return nil, mongo.ErrNoDocuments
	}

	clone := *note
	return &clone, nil
}

func (r *fakeNoteRepo) ListNotes(_ context.Context, params repository.ListNotesParams) ([]*model.Note, error) {
	matched := r.match(params)

	start := params.Offset
	if start > int64(len(matched)) {
		start = int64(len(matched))
	}
	end := start + params.Limit
	if end > int64(len(matched)) {
		end = int64(len(matched))
	}

	return matched[start:end], nil
}

func (r *fakeNoteRepo) CountNotes(_ context.Context, params repository.ListNotesParams) (int64, error) {
	return int64(len(r.match(params))), nil
}

func (r *fakeNoteRepo) UpdateNote(
	_ context.Context,
	id string,
	ownerID bson.ObjectID,
	params repository.UpdateNoteParams,
) (*model.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	note, ok := r.notes[id]
	if !ok || note.UserID != ownerID {
		return nil, mongo.ErrNoDocuments
	}

	if params.Title != nil {
		note.Title = *params.Title
	}
	if params.Content != nil {
		note.Content = *params.Content
	}
	note.UpdatedAt = time.Now()

	clone := *note
	return &clone, nil
}

func (r *fakeNoteRepo) DeleteNote(_ context.Context, id string, ownerID bson.ObjectID) (*model.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	note, ok := r.notes[id]
	if !ok || note.UserID != ownerID {
		return nil, mongo.ErrNoDocuments
	}

	delete(r.notes, id)

	return note, nil
}

func (r *fakeNoteRepo) match(params repository.ListNotesParams) []*model.Note {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*model.Note
	for _, note := range r.notes {
		if note.UserID != params.OwnerID {
			continue
		}
		if params.Search != "" {
			search := strings.ToLower(params.Search)
			if !strings.Contains(strings.ToLower(note.Title), search) &&
				!strings.Contains(strings.ToLower(note.Content), search) {
				continue
			}
		}
		clone := *note
		matched = append(matched, &clone)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	return matched
}

func TestCreateAndGetNote(t *testing.T) {
	t.Parallel()

	repo := newFakeNoteRepo()
	u := NewNoteUsecase(repo)
	ctx := context.Background()
	owner := bson.NewObjectID()

	created, err := u.CreateNote(ctx, owner, "Groceries", "milk, eggs")
	require.NoError(t, err)
	require.False(t, created.ID.IsZero())

	got, err := u.GetNote(ctx, created.ID.Hex(), owner)
	require.NoError(t, err)
	assert.Equal(t, "Groceries", got.Title)
	assert.Equal(t, "milk, eggs", got.Content)
}

func TestGetNote_OtherOwnerIsNotFound(t *testing.T) {
	t.Parallel()

	repo := newFakeNoteRepo()
	u := NewNoteUsecase(repo)
	ctx := context.Background()

	owner := bson.NewObjectID()
	stranger := bson.NewObjectID()

	created, err := u.CreateNote(ctx, owner, "Private", "secret")
	require.NoError(t, err)

	_, err = u.GetNote(ctx, created.ID.Hex(), stranger)
	assert.ErrorIs(t, err, ErrNoteNotFound)
}

func TestListNotes_OwnerScoped(t *testing.T) {
	t.Parallel()

	repo := newFakeNoteRepo()
	u := NewNoteUsecase(repo)
	ctx := context.Background()

	alice := bson.NewObjectID()
	bob := bson.NewObjectID()

	for i := 0; i < 3; i++ {
		_, err := u.CreateNote(ctx, alice, "alice note", "content")
		require.NoError(t, err)
	}
	_, err := u.CreateNote(ctx, bob, "bob note", "content")
	require.NoError(t, err)

	page, err := u.ListNotes(ctx, ListNotesParams{OwnerID: bob})
	require.NoError(t, err)

	require.Len(t, page.Notes, 1)
	assert.Equal(t, "bob note", page.Notes[0].Title)
	assert.Equal(t, int64(1), page.TotalNotes)
}

func TestListNotes_Pagination(t *testing.T) {
	t.Parallel()

	repo := newFakeNoteRepo()
	u := NewNoteUsecase(repo)
	ctx := context.Background()
	owner := bson.NewObjectID()

	for i := 0; i < 25; i++ {
		_, err := u.CreateNote(ctx, owner, "note", "content")
		require.NoError(t, err)
	}

	cases := []struct {
		page    int64
		want    int
		hasNext bool
		hasPrev bool
	}{
		{page: 1, want: 10, hasNext: true, hasPrev: false},
		{page: 2, want: 10, hasNext: true, hasPrev: true},
		{page: 3, want: 5, hasNext: false, hasPrev: true},
	}

	for _, tc := range cases {
		page, err := u.ListNotes(ctx, ListNotesParams{OwnerID: owner, Page: tc.page, Limit: 10})
		require.NoError(t, err)

		assert.Len(t, page.Notes, tc.want, "page %d", tc.page)
		assert.Equal(t, int64(25), page.TotalNotes)
		assert.Equal(t, int64(3), page.TotalPages)
		assert.Equal(t, tc.hasNext, page.HasNext, "page %d hasNext", tc.page)
		assert.Equal(t, tc.hasPrev, page.HasPrev, "page %d hasPrev", tc.page)
	}
}

func TestListNotes_NewestFirst(t *testing.T) {
	t.Parallel()

	repo := newFakeNoteRepo()
	u := NewNoteUsecase(repo)
	ctx := context.Background()
	owner := bson.NewObjectID()

	_, err := u.CreateNote(ctx, owner, "oldest", "content")
	require.NoError(t, err)
	_, err = u.CreateNote(ctx, owner, "newest", "content")
	require.NoError(t, err)

	page, err := u.ListNotes(ctx, ListNotesParams{OwnerID: owner})
	require.NoError(t, err)

	require.Len(t, page.Notes, 2)
	assert.Equal(t, "newest", page.Notes[0].Title)
	assert.Equal(t, "oldest", page.Notes[1].Title)
}

func TestListNotes_Search(t *testing.T) {
	t.Parallel()

	repo := newFakeNoteRepo()
	u := NewNoteUsecase(repo)
	ctx := context.Background()
	owner := bson.NewObjectID()

	_, err := u.CreateNote(ctx, owner, "Groceries", "milk and eggs")
	require.NoError(t, err)
	_, err = u.CreateNote(ctx, owner, "Work", "ship the MILK report")
	require.NoError(t, err)
	_, err = u.CreateNote(ctx, owner, "Travel", "book flights")
	require.NoError(t, err)

	page, err := u.ListNotes(ctx, ListNotesParams{OwnerID: owner, Search: "milk"})
	require.NoError(t, err)

	assert.Equal(t, int64(2), page.TotalNotes)
}

func TestListNotes_DefaultsApplied(t *testing.T) {
	t.Parallel()

	repo := newFakeNoteRepo()
	u := NewNoteUsecase(repo)
	ctx := context.Background()
	owner := bson.NewObjectID()

	for i := 0; i < 12; i++ {
		_, err := u.CreateNote(ctx, owner, "note", "content")
		require.NoError(t, err)
	}

	page, err := u.ListNotes(ctx, ListNotesParams{OwnerID: owner, Page: 0, Limit: 0})
	require.NoError(t, err)

	assert.Len(t, page.Notes, 10)
	assert.Equal(t, int64(1), page.CurrentPage)
	assert.Equal(t, int64(2), page.TotalPages)
}

func TestUpdateNote_PartialFields(t *testing.T) {
	t.Parallel()

	repo := newFakeNoteRepo()
	u := NewNoteUsecase(repo)
	ctx := context.Background()
	owner := bson.NewObjectID()

	created, err := u.CreateNote(ctx, owner, "Title", "Content")
	require.NoError(t, err)

	title := "New title"
	updated, err := u.UpdateNote(ctx, created.ID.Hex(), owner, UpdateNoteParams{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "New title", updated.Title)
	assert.Equal(t, "Content", updated.Content)

	content := "New content"
	updated, err = u.UpdateNote(ctx, created.ID.Hex(), owner, UpdateNoteParams{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, "New title", updated.Title)
	assert.Equal(t, "New content", updated.Content)
}

func TestUpdateNote_NoFieldsReturnsCurrent(t *testing.T) {
	t.Parallel()

	repo := newFakeNoteRepo()
	u := NewNoteUsecase(repo)
	ctx := context.Background()
	owner := bson.NewObjectID()

	created, err := u.CreateNote(ctx, owner, "Title", "Content")
	require.NoError(t, err)

	updated, err := u.UpdateNote(ctx, created.ID.Hex(), owner, UpdateNoteParams{})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Title", updated.Title)
}

func TestUpdateNote_OtherOwnerIsNotFound(t *testing.T) {
	t.Parallel()

	repo := newFakeNoteRepo()
	u := NewNoteUsecase(repo)
	ctx := context.Background()

	owner := bson.NewObjectID()
	stranger := bson.NewObjectID()

	created, err := u.CreateNote(ctx, owner, "Title", "Content")
	require.NoError(t, err)

	title := "hijacked"
	_, err = u.UpdateNote(ctx, created.ID.Hex(), stranger, UpdateNoteParams{Title: &title})
	assert.ErrorIs(t, err, ErrNoteNotFound)
}

func TestDeleteNote(t *testing.T) {
	t.Parallel()

	repo := newFakeNoteRepo()
	u := NewNoteUsecase(repo)
	ctx := context.Background()

	owner := bson.NewObjectID()
	stranger := bson.NewObjectID()

	created, err := u.CreateNote(ctx, owner, "Title", "Content")
	require.NoError(t, err)

	err = u.DeleteNote(ctx, created.ID.Hex(), stranger)
	assert.ErrorIs(t, err, ErrNoteNotFound)

	err = u.DeleteNote(ctx, created.ID.Hex(), owner)
	require.NoError(t, err)

	err = u.DeleteNote(ctx, created.ID.Hex(), owner)
	assert.ErrorIs(t, err, ErrNoteNotFound)
}
