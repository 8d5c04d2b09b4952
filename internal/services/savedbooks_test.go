package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"rebooks-backend/internal/apperr"
)

func newSavedFixture(t *testing.T) (*SavedBooksService, *fakeBookRepo) {
	t.Helper()
	books := newFakeBookRepo()
	return NewSavedBooksService(newFakeSavedBooksRepo(), books), books
}

func TestSavedBooksAdd(t *testing.T) {
	svc, _ := newSavedFixture(t)
	user := primitive.NewObjectID()

	saved, err := svc.Add(context.Background(), user, "0128887818", "")
	require.NoError(t, err)
	require.Len(t, saved.Books, 1)
	assert.Equal(t, "0128887818", saved.Books[0].ISBN10)
	assert.False(t, saved.Books[0].AddedAt.IsZero())

	saved, err = svc.Add(context.Background(), user, "", "978-3-16-148410-0")
	require.NoError(t, err)
	assert.Len(t, saved.Books, 2)
}

func TestSavedBooksAdd_RejectsMissingAndMalformedISBNs(t *testing.T) {
	svc, _ := newSavedFixture(t)
	user := primitive.NewObjectID()

	_, err := svc.Add(context.Background(), user, "", "")
	assertKind(t, err, apperr.KindBadRequest)

	_, err = svc.Add(context.Background(), user, "not-an-isbn", "")
	assertKind(t, err, apperr.KindValidation)

	_, err = svc.Add(context.Background(), user, "", "1234567890123")
	assertKind(t, err, apperr.KindValidation)
}

func TestSavedBooksAdd_RejectsDuplicate(t *testing.T) {
	svc, _ := newSavedFixture(t)
	user := primitive.NewObjectID()

	_, err := svc.Add(context.Background(), user, "0128887818", "")
	require.NoError(t, err)

	_, err = svc.Add(context.Background(), user, "0128887818", "")
	assertKind(t, err, apperr.KindBadRequest)
}

func TestSavedBooksList_ResolvesListingsAndSkipsOrphans(t *testing.T) {
	svc, books := newSavedFixture(t)
	user := primitive.NewObjectID()

	listed := availableBook(primitive.NewObjectID(), "Emma", 10)
	listed.ISBN10 = "0128887818"
	books.put(listed)

	_, err := svc.Add(context.Background(), user, "0128887818", "")
	require.NoError(t, err)
	_, err = svc.Add(context.Background(), user, "", "978-3-16-148410-0")
	require.NoError(t, err)

	views, err := svc.List(context.Background(), user)
	require.NoError(t, err)
	require.Len(t, views, 1, "entries with no live listing are filtered out")
	assert.Equal(t, "0128887818", views[0].ISBN10)
	require.Len(t, views[0].Listings, 1)
	assert.Equal(t, "Emma", views[0].Listings[0].Title)
}

func TestSavedBooksList_NoWishlistIsEmpty(t *testing.T) {
	svc, _ := newSavedFixture(t)

	views, err := svc.List(context.Background(), primitive.NewObjectID())
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestSavedBooksRemove(t *testing.T) {
	svc, _ := newSavedFixture(t)
	user := primitive.NewObjectID()

	_, err := svc.Remove(context.Background(), user, "0128887818", "")
	assertKind(t, err, apperr.KindNotFound)

	_, err = svc.Add(context.Background(), user, "0128887818", "")
	require.NoError(t, err)

	_, err = svc.Remove(context.Background(), user, "", "978-3-16-148410-0")
	assertKind(t, err, apperr.KindNotFound)

	saved, err := svc.Remove(context.Background(), user, "0128887818", "")
	require.NoError(t, err)
	assert.Empty(t, saved.Books)
}
