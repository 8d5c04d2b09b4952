package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"rebooks-backend/internal/apperr"
	"rebooks-backend/internal/repository"
	"rebooks-backend/internal/services"
)

func (a *API) uploadBookCover(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		fail(c, apperr.BadRequest("No file uploaded"))
		return
	}

	file, err := header.Open()
	if err != nil {
		fail(c, err)
		return
	}
	defer file.Close()

	res, err := a.books.UploadCoverImage(c.Request.Context(), file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"coverImageUrl": res.URL, "coverImagePublicId": res.PublicID})
}

func (a *API) createBook(c *gin.Context) {
	var in services.BookInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, apperr.BadRequest("Invalid request body"))
		return
	}

	book, err := a.books.Create(c.Request.Context(), userID(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"msg": "The book has been successfully created.", "book": book})
}

func (a *API) listBooks(c *gin.Context) {
	q := repository.BookQuery{
		Query:       c.Query("query"),
		Title:       c.Query("title"),
		Author:      c.Query("author"),
		ISBN:        c.Query("isbn"),
		AgeCategory: c.Query("ageCategory"),
		Condition:   c.Query("condition"),
		Genre:       c.Query("genre"),
		CoverType:   c.Query("coverType"),
		Sort:        c.Query("sort"),
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			q.Limit = n
		}
	}
	if v := c.Query("skip"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			q.Skip = n
		}
	}
	if v := c.Query("userId"); v != "" {
		id, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			fail(c, apperr.InvalidID(v))
			return
		}
		q.UserID = &id
	}
	if v := c.Query("isAvailable"); v != "" {
		avail := v == "true"
		q.IsAvailable = &avail
	}

	books, err := a.books.Search(c.Request.Context(), q)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
}

func (a *API) getBook(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	book, err := a.books.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"book": book})
}

func (a *API) updateBook(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var in services.BookInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, apperr.BadRequest("Invalid request body"))
		return
	}

	book, err := a.books.Update(c.Request.Context(), userID(c), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "The book has been successfully updated.", "book": book})
}

func (a *API) deleteBook(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	if err := a.books.Delete(c.Request.Context(), userID(c), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "The book has been successfully deleted."})
}
