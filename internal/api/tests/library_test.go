package api_test

import (
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/rongwang/book-exchange-server/internal/api/testutils"
	"github.com/rongwang/book-exchange-server/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddToLibrary(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	user := createUser(t, testCtx, "ann")
	book := createBook(t, testCtx, "Dune")
	path := fmt.Sprintf("/users/%d/library", user.ID)

	// Test case 1: Successful add
	w := testutils.PerformRequest(testCtx.Router, http.MethodPost, path,
		map[string]interface{}{"book_id": book.ID}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var lib models.LibraryView
	testutils.DecodeJSON(t, w, &lib)
	require.Len(t, lib.Books, 1)
	assert.Equal(t, models.LibraryEntryView{
		Hidden: false,
		Status: "Available for exchange",
		Book:   book,
	}, lib.Books[0])

	// Test case 2: Same book again
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, path,
		map[string]interface{}{"book_id": book.ID}, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "This book is already in library", testutils.ErrorMessage(t, w))

	// Test case 3: No book given
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, path, map[string]interface{}{}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Book not specified", testutils.ErrorMessage(t, w))

	// Test case 4: Unknown book
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, path,
		map[string]interface{}{"book_id": book.ID + 10}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No such book", testutils.ErrorMessage(t, w))

	// Test case 5: Unknown user
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, fmt.Sprintf("/users/%d/library", user.ID+10),
		map[string]interface{}{"book_id": book.ID}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No such user", testutils.ErrorMessage(t, w))
}

func TestUpdateLibraryEntry(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	user := createUser(t, testCtx, "ann")
	book := createBook(t, testCtx, "Dune")
	w := testutils.PerformRequest(testCtx.Router, http.MethodPost, fmt.Sprintf("/users/%d/library", user.ID),
		map[string]interface{}{"book_id": book.ID}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	path := fmt.Sprintf("/users/%d/library/%d", user.ID, book.ID)
	body := map[string]interface{}{"hidden": true, "status": "Lent out"}

	w = testutils.PerformRequest(testCtx.Router, http.MethodPatch, path, body, nil)
	require.Equal(t, http.StatusOK, w.Code)
	first := w.Body.String()

	// Applying the same patch twice yields the same state
	w = testutils.PerformRequest(testCtx.Router, http.MethodPatch, path, body, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, first, w.Body.String())

	var entry models.LibraryEntryView
	testutils.DecodeJSON(t, w, &entry)
	assert.True(t, entry.Hidden)
	assert.Equal(t, "Lent out", entry.Status)
	assert.Equal(t, book.ID, entry.Book.ID)

	w = testutils.PerformRequest(testCtx.Router, http.MethodPatch, path,
		map[string]interface{}{"owner": "bob"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutils.PerformRequest(testCtx.Router, http.MethodPatch, fmt.Sprintf("/users/%d/library/%d", user.ID, book.ID+5),
		body, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No such book in library", testutils.ErrorMessage(t, w))
}

func TestToggleLibraryVisibility(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	user := createUser(t, testCtx, "ann")
	path := fmt.Sprintf("/users/%d/library", user.ID)

	w := testutils.PerformRequest(testCtx.Router, http.MethodPatch, path,
		map[string]interface{}{"hidden_lib": true}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var lib models.LibraryView
	testutils.DecodeJSON(t, w, &lib)
	assert.True(t, lib.HiddenLib)

	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, fmt.Sprintf("/libraries/%d", lib.ID), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	testutils.DecodeJSON(t, w, &lib)
	assert.True(t, lib.HiddenLib)

	w = testutils.PerformRequest(testCtx.Router, http.MethodPatch, path, map[string]interface{}{}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRemoveFromLibrary(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	user := createUser(t, testCtx, "ann")
	book := createBook(t, testCtx, "Dune")
	w := testutils.PerformRequest(testCtx.Router, http.MethodPost, fmt.Sprintf("/users/%d/library", user.ID),
		map[string]interface{}{"book_id": book.ID}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	path := fmt.Sprintf("/users/%d/library/%d", user.ID, book.ID)
	w = testutils.PerformRequest(testCtx.Router, http.MethodDelete, path, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var lib models.LibraryView
	testutils.DecodeJSON(t, w, &lib)
	assert.Empty(t, lib.Books)

	w = testutils.PerformRequest(testCtx.Router, http.MethodDelete, path, nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No such book in user's library", testutils.ErrorMessage(t, w))

	w = testutils.PerformRequest(testCtx.Router, http.MethodDelete, fmt.Sprintf("/users/%d/library", user.ID), nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Book not specified", testutils.ErrorMessage(t, w))

	// The book itself is untouched
	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, fmt.Sprintf("/books/%d", book.ID), nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestConcurrentAddToLibrary(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	user := createUser(t, testCtx, "ann")
	book := createBook(t, testCtx, "Dune")
	path := fmt.Sprintf("/users/%d/library", user.ID)

	const numGoroutines = 8
	codes := make(chan int, numGoroutines)
	var wg sync.WaitGroup

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := testutils.PerformRequest(testCtx.Router, http.MethodPost, path,
				map[string]interface{}{"book_id": book.ID}, nil)
			codes <- w.Code
		}()
	}
	wg.Wait()
	close(codes)

	counts := map[int]int{}
	for code := range codes {
		counts[code]++
	}
	assert.Equal(t, 1, counts[http.StatusCreated])
	assert.Equal(t, numGoroutines-1, counts[http.StatusForbidden])
}
