package models

import (
	"fmt"
	"regexp"
	"time"

	"rebooks-backend/internal/apperr"
)

var (
	isbn10Pattern = regexp.MustCompile(`^(?:\d{9}[\dXx]|\d{1,5}-\d{1,7}-\d{1,7}-[\dXx])$`)
	isbn13Pattern = regexp.MustCompile(`^(97[89])(-?\d){10}$`)
	imageURLRe    = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|webp|bmp)$`)
	emailRe       = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// ValidISBN10 reports whether s is empty or a well-formed ISBN-10
// (10 characters, optional dashes, X check digit allowed).
func ValidISBN10(s string) bool {
	return s == "" || isbn10Pattern.MatchString(s)
}

// ValidISBN13 reports whether s is empty or a well-formed ISBN-13
// (978/979 prefix, optional dashes).
func ValidISBN13(s string) bool {
	return s == "" || isbn13Pattern.MatchString(s)
}

// ValidImageURL reports whether url ends with a recognized image extension.
func ValidImageURL(url string) bool {
	return imageURLRe.MatchString(url)
}

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailRe.MatchString(s)
}

var AgeCategories = []string{"Children", "Teens & Young Adult", "Adult"}

var Conditions = []string{"New", "Like New", "Very Good", "Good", "Acceptable"}

var CoverTypes = []string{"Hardcover", "Softcover"}

var Languages = []string{"English", "Spanish", "French", "German", "Russian", "Other"}

var Genres = []string{
	"Adventure", "Animal Stories", "Art & Architecture", "Biographies & Memoirs",
	"Business & Economics", "Chapter Books", "Classics", "Comics And Graphic Novels",
	"Coming of Age", "Cooking & Food", "Crafts", "Crime & Detective", "Cultural Studies",
	"Diaries & Journals", "Dystopia", "Education", "Entertainment & Performing Arts",
	"Fairy Tales, Myths & Fables", "Fantasy", "Fiction & Literature", "Games & Activities",
	"Gardening & Outdoors", "Halloween", "Harry Potter", "Health & Medicine", "History",
	"Holiday & Festivals", "Horror", "Humor", "Insects", "Language & Linguistics",
	"Mystery", "Nature", "Nonfiction", "Parenting & Family", "Philosophy", "Photography",
	"Picture Books", "Poetry", "Politics, Government & Law", "Religion & Beliefs",
	"Romance", "Science & Technology", "Science Fiction", "Self-help", "Short Stories",
	"Sports & Adventure", "Thriller", "True Crime", "Transportation", "Travel & Adventure",
	"War & Military", "Western", "Workbooks", "Young Adult Fiction",
}

func oneOf(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// Validate checks the listing against the catalog schema constraints and
// returns a ValidationError carrying a field->message map on failure.
func (b *Book) Validate() error {
	fields := map[string]string{}

	if l := len(b.Title); l < 2 || l > 100 {
		fields["title"] = "Title must be between 2 and 100 characters long"
	}
	if l := len(b.Author); l < 2 || l > 100 {
		fields["author"] = "Author must be between 2 and 100 characters long"
	}
	if l := len(b.Publisher); l < 2 || l > 100 {
		fields["publisher"] = "Publisher must be between 2 and 100 characters long"
	}
	if year := time.Now().Year(); b.PublishedYear < 1440 || b.PublishedYear > year {
		fields["publishedYear"] = fmt.Sprintf("Published year must be between 1440 and %d", year)
	}
	if b.Pages < 2 {
		fields["pages"] = "Minimum number of pages must be at least 2"
	}
	if b.ISBN10 == "" && b.ISBN13 == "" {
		fields["isbn13"] = "At least one ISBN (ISBN-10 or ISBN-13) must be provided"
	}
	if !ValidISBN10(b.ISBN10) {
		fields["isbn10"] = "Invalid ISBN-10 format. It should be 10 characters long, with optional dashes"
	}
	if !ValidISBN13(b.ISBN13) {
		fields["isbn13"] = "Invalid ISBN-13 format. It should be 13 characters long, with optional dashes"
	}
	if l := len(b.Description); l < 2 || l > 500 {
		fields["description"] = "Description must be between 2 and 500 characters long"
	}
	if len(b.Genre) == 0 {
		fields["genre"] = "At least one genre is required"
	}
	for _, g := range b.Genre {
		if !oneOf(Genres, g) {
			fields["genre"] = "Unknown genre: " + g
			break
		}
	}
	if !oneOf(AgeCategories, b.AgeCategory) {
		fields["ageCategory"] = "Invalid age category"
	}
	if !oneOf(Conditions, b.Condition) {
		fields["condition"] = "Invalid condition"
	}
	if !oneOf(CoverTypes, b.CoverType) {
		fields["coverType"] = "Invalid cover type"
	}
	if b.Language != "" && !oneOf(Languages, b.Language) {
		fields["language"] = "Invalid language"
	}
	if b.Price <= 0 {
		fields["price"] = "The price must be greater than zero"
	}
	if b.CoverImageURL != "" && !ValidImageURL(b.CoverImageURL) {
		fields["coverImageUrl"] = "Invalid image URL. It must end with .jpg, .jpeg, .png, .webp or .bmp"
	}

	if len(fields) > 0 {
		return apperr.Validation(fields)
	}
	return nil
}

// ValidOrderStatus reports whether s is one of the order lifecycle states.
func ValidOrderStatus(s string) bool {
	switch OrderStatus(s) {
	case OrderPending, OrderConfirmed, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}
