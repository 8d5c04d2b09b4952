package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"rebooks-backend/internal/apperr"
	"rebooks-backend/internal/models"
	"rebooks-backend/internal/repository"
)

type SavedBooksService struct {
	saved repository.SavedBooksRepo
	books repository.BookRepo
}

func NewSavedBooksService(saved repository.SavedBooksRepo, books repository.BookRepo) *SavedBooksService {
	return &SavedBooksService{saved: saved, books: books}
}

// SavedBookView is a wishlist entry resolved against live listings. Entries
// whose ISBNs no longer match any listing are filtered out of reads, not
// errors: the wishlist keys on ISBN, not on listing ids.
type SavedBookView struct {
	ISBN10   string        `json:"isbn10,omitempty"`
	ISBN13   string        `json:"isbn13,omitempty"`
	AddedAt  time.Time     `json:"addedAt"`
	Listings []models.Book `json:"listings"`
}

func (s *SavedBooksService) Add(ctx context.Context, userID primitive.ObjectID, isbn10, isbn13 string) (*models.SavedBooks, error) {
	if isbn10 == "" && isbn13 == "" {
		return nil, apperr.BadRequest("At least one ISBN (ISBN-10 or ISBN-13) must be provided")
	}
	fields := map[string]string{}
	if !models.ValidISBN10(isbn10) {
		fields["isbn10"] = "Invalid ISBN-10 format"
	}
	if !models.ValidISBN13(isbn13) {
		fields["isbn13"] = "Invalid ISBN-13 format"
	}
	if len(fields) > 0 {
		return nil, apperr.Validation(fields)
	}

	saved, err := s.saved.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if saved == nil {
		saved = &models.SavedBooks{User: userID, Books: []models.SavedBook{}}
	}

	for _, b := range saved.Books {
		if (isbn10 != "" && b.ISBN10 == isbn10) || (isbn13 != "" && b.ISBN13 == isbn13) {
			return nil, apperr.BadRequest("This book is already saved")
		}
	}

	saved.Books = append(saved.Books, models.SavedBook{
		ISBN10:  isbn10,
		ISBN13:  isbn13,
		AddedAt: time.Now(),
	})
	if err := s.saved.Save(ctx, saved); err != nil {
		return nil, err
	}
	return saved, nil
}

// List resolves the wishlist against current listings at read time.
func (s *SavedBooksService) List(ctx context.Context, userID primitive.ObjectID) ([]SavedBookView, error) {
	saved, err := s.saved.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	views := []SavedBookView{}
	if saved == nil {
		return views, nil
	}

	for _, entry := range saved.Books {
		listings, err := s.books.FindByISBN(ctx, entry.ISBN10, entry.ISBN13)
		if err != nil {
			return nil, err
		}
		if len(listings) == 0 {
			// orphan: no seller currently lists this ISBN
			continue
		}
		views = append(views, SavedBookView{
			ISBN10:   entry.ISBN10,
			ISBN13:   entry.ISBN13,
			AddedAt:  entry.AddedAt,
			Listings: listings,
		})
	}
	return views, nil
}

func (s *SavedBooksService) Remove(ctx context.Context, userID primitive.ObjectID, isbn10, isbn13 string) (*models.SavedBooks, error) {
	if isbn10 == "" && isbn13 == "" {
		return nil, apperr.BadRequest("At least one ISBN (ISBN-10 or ISBN-13) must be provided")
	}

	saved, err := s.saved.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if saved == nil {
		return nil, apperr.NotFound("No saved books found")
	}

	idx := -1
	for i, b := range saved.Books {
		if (isbn10 != "" && b.ISBN10 == isbn10) || (isbn13 != "" && b.ISBN13 == isbn13) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, apperr.NotFound("Book is not in saved books")
	}

	saved.Books = append(saved.Books[:idx], saved.Books[idx+1:]...)
	if err := s.saved.Save(ctx, saved); err != nil {
		return nil, err
	}
	return saved, nil
}
