package services

import (
	"context"
	"io"
	"log"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"rebooks-backend/internal/apperr"
	"rebooks-backend/internal/images"
	"rebooks-backend/internal/models"
	"rebooks-backend/internal/repository"
)

type BookService struct {
	books           repository.BookRepo
	images          images.Store
	defaultCoverURL string
}

func NewBookService(books repository.BookRepo, store images.Store, defaultCoverURL string) *BookService {
	return &BookService{books: books, images: store, defaultCoverURL: defaultCoverURL}
}

const maxCoverImageSize = 1 << 20

var allowedCoverImageTypes = []string{"image/jpeg", "image/png", "image/webp", "image/bmp"}

// UploadCoverImage pushes a cover image to the image store. The caller links
// the returned URL and public id to a listing on create or patch.
func (s *BookService) UploadCoverImage(ctx context.Context, r io.Reader, size int64, contentType string) (images.UploadResult, error) {
	if size > maxCoverImageSize {
		return images.UploadResult{}, apperr.BadRequest("File size must not exceed 1 MB")
	}
	allowed := false
	for _, t := range allowedCoverImageTypes {
		if t == contentType {
			allowed = true
			break
		}
	}
	if !allowed {
		return images.UploadResult{}, apperr.BadRequest("Allowed file types are: " + strings.Join(allowedCoverImageTypes, ", "))
	}
	return s.images.Upload(ctx, r)
}

// BookInput is the payload for creating and patching listings.
type BookInput struct {
	Title              string   `json:"title"`
	Author             string   `json:"author"`
	Publisher          string   `json:"publisher"`
	PublishedYear      int      `json:"publishedYear"`
	Pages              int      `json:"pages"`
	ISBN10             string   `json:"isbn10"`
	ISBN13             string   `json:"isbn13"`
	Description        string   `json:"description"`
	Genre              []string `json:"genre"`
	AgeCategory        string   `json:"ageCategory"`
	Condition          string   `json:"condition"`
	CoverType          string   `json:"coverType"`
	Language           string   `json:"language"`
	Price              float64  `json:"price"`
	CoverImageURL      string   `json:"coverImageUrl"`
	CoverImagePublicID string   `json:"coverImagePublicId"`
}

func (s *BookService) Create(ctx context.Context, owner primitive.ObjectID, in BookInput) (*models.Book, error) {
	book := &models.Book{
		Title:              in.Title,
		Author:             in.Author,
		Publisher:          in.Publisher,
		PublishedYear:      in.PublishedYear,
		Pages:              in.Pages,
		ISBN10:             in.ISBN10,
		ISBN13:             in.ISBN13,
		Description:        in.Description,
		Genre:              in.Genre,
		AgeCategory:        in.AgeCategory,
		Condition:          in.Condition,
		CoverType:          in.CoverType,
		Language:           in.Language,
		Price:              in.Price,
		IsAvailable:        true,
		CoverImageURL:      in.CoverImageURL,
		CoverImagePublicID: in.CoverImagePublicID,
		CreatedBy:          owner,
	}
	if book.Language == "" {
		book.Language = "English"
	}
	if book.CoverImageURL == "" {
		book.CoverImageURL = s.defaultCoverURL
	}
	if err := book.Validate(); err != nil {
		return nil, err
	}
	if err := s.books.Create(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

func (s *BookService) Get(ctx context.Context, id primitive.ObjectID) (*models.Book, error) {
	book, err := s.books.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, apperr.NotFound("Book not found")
	}
	return book, nil
}

func (s *BookService) Search(ctx context.Context, q repository.BookQuery) ([]models.Book, error) {
	books, err := s.books.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	if books == nil {
		books = []models.Book{}
	}
	return books, nil
}

func (s *BookService) Update(ctx context.Context, actor, id primitive.ObjectID, in BookInput) (*models.Book, error) {
	book, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if book.CreatedBy != actor {
		return nil, apperr.BadRequest("Not authorized to modify this listing")
	}

	applyPatch(book, in)
	if err := book.Validate(); err != nil {
		return nil, err
	}
	if err := s.books.Update(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

func applyPatch(book *models.Book, in BookInput) {
	if in.Title != "" {
		book.Title = in.Title
	}
	if in.Author != "" {
		book.Author = in.Author
	}
	if in.Publisher != "" {
		book.Publisher = in.Publisher
	}
	if in.PublishedYear != 0 {
		book.PublishedYear = in.PublishedYear
	}
	if in.Pages != 0 {
		book.Pages = in.Pages
	}
	if in.ISBN10 != "" {
		book.ISBN10 = in.ISBN10
	}
	if in.ISBN13 != "" {
		book.ISBN13 = in.ISBN13
	}
	if in.Description != "" {
		book.Description = in.Description
	}
	if len(in.Genre) > 0 {
		book.Genre = in.Genre
	}
	if in.AgeCategory != "" {
		book.AgeCategory = in.AgeCategory
	}
	if in.Condition != "" {
		book.Condition = in.Condition
	}
	if in.CoverType != "" {
		book.CoverType = in.CoverType
	}
	if in.Language != "" {
		book.Language = in.Language
	}
	if in.Price != 0 {
		book.Price = in.Price
	}
	if in.CoverImageURL != "" {
		book.CoverImageURL = in.CoverImageURL
	}
	if in.CoverImagePublicID != "" {
		book.CoverImagePublicID = in.CoverImagePublicID
	}
}

func (s *BookService) Delete(ctx context.Context, actor, id primitive.ObjectID) error {
	book, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if book.CreatedBy != actor {
		return apperr.BadRequest("Not authorized to delete this listing")
	}
	if err := s.books.Delete(ctx, id); err != nil {
		return err
	}
	if book.CoverImagePublicID != "" {
		// best effort; the listing is already gone
		if err := s.images.Destroy(ctx, book.CoverImagePublicID); err != nil {
			log.Printf("failed to remove cover image %s: %v", book.CoverImagePublicID, err)
		}
	}
	return nil
}
