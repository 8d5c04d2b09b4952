package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rebooks-backend/internal/apperr"
)

func TestValidISBN10(t *testing.T) {
	valid := []string{
		"",
		"0441478123",
		"044147812X",
		"044147812x",
		"0-441-47812-3",
		"0-7475-3269-X",
	}
	for _, s := range valid {
		assert.True(t, ValidISBN10(s), "expected %q to be accepted", s)
	}

	invalid := []string{
		"044147812",      // too short
		"04414781234",    // too long
		"X441478123",     // check digit only at the end
		"0-441-47812-34", // two-char check segment
		"abcdefghij",
	}
	for _, s := range invalid {
		assert.False(t, ValidISBN10(s), "expected %q to be rejected", s)
	}
}

func TestValidISBN13(t *testing.T) {
	valid := []string{
		"",
		"9783161484100",
		"978-3-16-148410-0",
		"9790000000000",
	}
	for _, s := range valid {
		assert.True(t, ValidISBN13(s), "expected %q to be accepted", s)
	}

	invalid := []string{
		"1234567890123", // missing 978/979 prefix
		"978316148410",  // too short
		"97831614841000",
		"978-3-16-14841O-0", // letter O
	}
	for _, s := range invalid {
		assert.False(t, ValidISBN13(s), "expected %q to be rejected", s)
	}
}

func TestValidImageURL(t *testing.T) {
	assert.True(t, ValidImageURL("https://cdn.example.com/cover.png"))
	assert.True(t, ValidImageURL("https://cdn.example.com/cover.JPG"))
	assert.True(t, ValidImageURL("https://cdn.example.com/cover.webp"))
	assert.False(t, ValidImageURL("https://cdn.example.com/cover.gif"))
	assert.False(t, ValidImageURL("https://cdn.example.com/cover.png?raw=1"))
}

func validBook() Book {
	return Book{
		Title:         "Emma",
		Author:        "Jane Austen",
		Publisher:     "John Murray",
		PublishedYear: 1815,
		Pages:         474,
		ISBN13:        "9783161484100",
		Description:   "Matchmaking in Highbury.",
		Genre:         []string{"Classics", "Romance"},
		AgeCategory:   "Adult",
		Condition:     "Very Good",
		CoverType:     "Hardcover",
		Language:      "English",
		Price:         8.50,
	}
}

func TestBookValidate(t *testing.T) {
	b := validBook()
	assert.NoError(t, b.Validate())
}

func TestBookValidate_CollectsFieldErrors(t *testing.T) {
	b := validBook()
	b.Title = "x"
	b.PublishedYear = 1200
	b.Pages = 1
	b.ISBN10 = ""
	b.ISBN13 = ""
	b.Genre = []string{"Cryptozoology"}
	b.Condition = "Burnt"
	b.Price = 0
	b.CoverImageURL = "https://cdn.example.com/cover.tiff"

	err := b.Validate()
	require.Error(t, err)
	ae, ok := err.(*apperr.Error)
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, ae.Kind)

	for _, field := range []string{
		"title", "publishedYear", "pages", "isbn13", "genre",
		"condition", "price", "coverImageUrl",
	} {
		assert.Contains(t, ae.Fields, field)
	}
	assert.NotContains(t, ae.Fields, "author")
}

func TestBookValidate_RequiresAtLeastOneISBN(t *testing.T) {
	b := validBook()
	b.ISBN10 = ""
	b.ISBN13 = ""

	err := b.Validate()
	require.Error(t, err)
	ae := err.(*apperr.Error)
	assert.Contains(t, ae.Fields, "isbn13")
}

func TestValidOrderStatus(t *testing.T) {
	for _, s := range []string{"Pending", "Confirmed", "Shipped", "Delivered", "Cancelled"} {
		assert.True(t, ValidOrderStatus(s))
	}
	assert.False(t, ValidOrderStatus("pending"))
	assert.False(t, ValidOrderStatus("Returned"))
	assert.False(t, ValidOrderStatus(""))
}
