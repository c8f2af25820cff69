package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/hdnotes/notes-api/internal/model"
	"github.com/hdnotes/notes-api/internal/usecase"
	"github.com/hdnotes/notes-api/shared/validator"
)

type fakeNoteUsecase struct {
	note *model.Note
	page *usecase.NotePage
	err  error

	listParams   usecase.ListNotesParams
	updateParams usecase.UpdateNoteParams
	gotID        string
	gotOwner     bson.ObjectID
}

func (f *fakeNoteUsecase) CreateNote(
	_ context.Context,
	ownerID bson.ObjectID,
	title, content string,
) (*model.Note, error) {
	f.gotOwner = ownerID
	return f.note, f.err
}

func (f *fakeNoteUsecase) ListNotes(
	_ context.Context,
	params usecase.ListNotesParams,
) (*usecase.NotePage, error) {
	f.listParams = params
	return f.page, f.err
}

func (f *fakeNoteUsecase) GetNote(
	_ context.Context,
	id string,
	ownerID bson.ObjectID,
) (*model.Note, error) {
	f.gotID = id
	f.gotOwner = ownerID
	return f.note, f.err
}

func (f *fakeNoteUsecase) UpdateNote(
	_ context.Context,
	id string,
	ownerID bson.ObjectID,
	params usecase.UpdateNoteParams,
) (*model.Note, error) {
	f.gotID = id
	f.updateParams = params
	return f.note, f.err
}

func (f *fakeNoteUsecase) DeleteNote(_ context.Context, id string, ownerID bson.ObjectID) error {
	f.gotID = id
	f.gotOwner = ownerID
	return f.err
}

func newNoteRouter(t *testing.T, fake *fakeNoteUsecase, user *model.User) http.Handler {
	t.Helper()

	validate, err := validator.New()
	require.NoError(t, err)
	logger := zerolog.Nop()
	h := NewNoteHandler(fake, validate, &logger)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), userContextKey, user)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Post("/notes", h.Create)
	r.Get("/notes", h.List)
	r.Get("/notes/{id}", h.GetByID)
	r.Put("/notes/{id}", h.Update)
	r.Delete("/notes/{id}", h.Delete)

	return r
}

func testUser() *model.User {
	return &model.User{ID: bson.NewObjectID(), Name: "Ann", Email: "ann@x.com", Verified: true}
}

func sampleNote(owner bson.ObjectID) *model.Note {
	return &model.Note{
		ID:      bson.NewObjectID(),
		UserID:  owner,
		Title:   "Groceries",
		Content: "milk, eggs",
	}
}

func TestCreateNote(t *testing.T) {
	t.Parallel()

	user := testUser()
	fake := &fakeNoteUsecase{note: sampleNote(user.ID)}
	router := newNoteRouter(t, fake, user)

	body := `{"title":"Groceries","content":"milk, eggs"}`
	req := httptest.NewRequest(http.MethodPost, "/notes", strings.NewReader(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, user.ID, fake.gotOwner)

	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, "Note created successfully", resp.Message)
}

func TestCreateNote_Validation(t *testing.T) {
	t.Parallel()

	user := testUser()
	router := newNoteRouter(t, &fakeNoteUsecase{}, user)

	req := httptest.NewRequest(http.MethodPost, "/notes", strings.NewReader(`{"title":"","content":""}`))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.NotEmpty(t, resp.Errors)
}

func TestListNotes_QueryParams(t *testing.T) {
	t.Parallel()

	user := testUser()
	fake := &fakeNoteUsecase{page: &usecase.NotePage{CurrentPage: 2, TotalPages: 3, TotalNotes: 25, HasNext: true, HasPrev: true}}
	router := newNoteRouter(t, fake, user)

	req := httptest.NewRequest(http.MethodGet, "/notes?page=2&limit=10&search=milk", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(2), fake.listParams.Page)
	assert.Equal(t, int64(10), fake.listParams.Limit)
	assert.Equal(t, "milk", fake.listParams.Search)
	assert.Equal(t, user.ID, fake.listParams.OwnerID)
}

func TestListNotes_DefaultQueryParams(t *testing.T) {
	t.Parallel()

	user := testUser()
	fake := &fakeNoteUsecase{page: &usecase.NotePage{CurrentPage: 1, TotalPages: 0}}
	router := newNoteRouter(t, fake, user)

	req := httptest.NewRequest(http.MethodGet, "/notes?page=abc", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), fake.listParams.Page)
	assert.Equal(t, int64(10), fake.listParams.Limit)
}

func TestGetNote_NotFound(t *testing.T) {
	t.Parallel()

	user := testUser()
	router := newNoteRouter(t, &fakeNoteUsecase{err: usecase.ErrNoteNotFound}, user)

	req := httptest.NewRequest(http.MethodGet, "/notes/"+bson.NewObjectID().Hex(), nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "Note not found", resp.Message)
}

func TestUpdateNote_PartialBody(t *testing.T) {
	t.Parallel()

	user := testUser()
	fake := &fakeNoteUsecase{note: sampleNote(user.ID)}
	router := newNoteRouter(t, fake, user)

	noteID := fake.note.ID.Hex()
	req := httptest.NewRequest(http.MethodPut, "/notes/"+noteID, strings.NewReader(`{"title":"New title"}`))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, noteID, fake.gotID)
	require.NotNil(t, fake.updateParams.Title)
	assert.Equal(t, "New title", *fake.updateParams.Title)
	assert.Nil(t, fake.updateParams.Content)
}

func TestDeleteNote(t *testing.T) {
	t.Parallel()

	user := testUser()
	fake := &fakeNoteUsecase{}
	router := newNoteRouter(t, fake, user)

	noteID := bson.NewObjectID().Hex()
	req := httptest.NewRequest(http.MethodDelete, "/notes/"+noteID, nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, noteID, fake.gotID)
	assert.Equal(t, user.ID, fake.gotOwner)
}
