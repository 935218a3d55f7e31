package validation

import (
	"strings"
	"testing"

	"github.com/rongwang/book-exchange-server/internal/apperror"
	"github.com/rongwang/book-exchange-server/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRules(t *testing.T) {
	tests := []struct {
		name    string
		dst     func() interface{}
		opts    []Option
		body    string
		kind    apperror.Kind
		message string
	}{
		{
			name:    "id is rejected before anything else",
			dst:     func() interface{} { return &models.CreateUserRequest{} },
			body:    `{"id": 3, "bogus": 1}`,
			kind:    apperror.ForbiddenMutation,
			message: "You can't change ID",
		},
		{
			name:    "unknown key",
			dst:     func() interface{} { return &models.CreateUserRequest{} },
			body:    `{"username": "ann", "group": "reader", "age": 30}`,
			kind:    apperror.ExcessArgument,
			message: "Excessive arguments posted",
		},
		{
			name:    "excess is reported before missing",
			dst:     func() interface{} { return &models.CreateUserRequest{} },
			body:    `{"age": 30}`,
			kind:    apperror.ExcessArgument,
			message: "Excessive arguments posted",
		},
		{
			name:    "missing required key",
			dst:     func() interface{} { return &models.CreateUserRequest{} },
			body:    `{"username": "ann"}`,
			kind:    apperror.MissingArgument,
			message: "Not enough arguments",
		},
		{
			name:    "required key that is null",
			dst:     func() interface{} { return &models.CreateUserRequest{} },
			body:    `{"username": "ann", "group": null}`,
			kind:    apperror.MissingArgument,
			message: "Not enough arguments",
		},
		{
			name:    "required key that is empty",
			dst:     func() interface{} { return &models.CreateAddressRequest{} },
			body:    `{"street_addr": "", "city": "Oslo", "region": "Oslo", "zip": "0150", "country": "Norway"}`,
			kind:    apperror.MissingArgument,
			message: "Not enough arguments",
		},
		{
			name:    "empty body",
			dst:     func() interface{} { return &models.CreateBookRequest{} },
			body:    ``,
			kind:    apperror.MissingArgument,
			message: "Not enough arguments",
		},
		{
			name:    "empty patch",
			dst:     func() interface{} { return &models.UpdateBookRequest{} },
			body:    `{}`,
			kind:    apperror.MissingArgument,
			message: "Not enough arguments",
		},
		{
			name:    "book reference without book",
			dst:     func() interface{} { return &models.BookRefRequest{} },
			opts:    []Option{MissingMessage("Book not specified")},
			body:    `{}`,
			kind:    apperror.MissingArgument,
			message: "Book not specified",
		},
		{
			name:    "wrong type",
			dst:     func() interface{} { return &models.CreateBookRequest{} },
			body:    `{"name": "Dune", "author": "Herbert", "year": "1965"}`,
			kind:    apperror.InvalidArgument,
			message: "Field 'year' must be an integer",
		},
		{
			name:    "too long",
			dst:     func() interface{} { return &models.CreateAddressRequest{} },
			body:    `{"street_addr": "1 Main St", "city": "Oslo", "region": "Oslo", "zip": "01500150015", "country": "Norway"}`,
			kind:    apperror.InvalidArgument,
			message: "Field 'zip' is longer than 10 characters",
		},
		{
			name:    "null on a non-nullable patch field",
			dst:     func() interface{} { return &models.UpdateBookRequest{} },
			body:    `{"name": null}`,
			kind:    apperror.InvalidArgument,
			message: "Field 'name' can't be null",
		},
		{
			name:    "blank patch value",
			dst:     func() interface{} { return &models.UpdateBookRequest{} },
			body:    `{"author": ""}`,
			kind:    apperror.InvalidArgument,
			message: "Field 'author' can't be empty",
		},
		{
			name:    "too long patch value",
			dst:     func() interface{} { return &models.UpdateAddressRequest{} },
			body:    `{"country": "The United Kingdom of GB"}`,
			kind:    apperror.InvalidArgument,
			message: "Field 'country' is longer than 20 characters",
		},
		{
			name:    "length counts characters",
			dst:     func() interface{} { return &models.CreateAddressRequest{} },
			body:    `{"street_addr": "1 Main St", "city": "Oslo", "region": "Oslo", "zip": "ØØØØØØØØØØØ", "country": "Norway"}`,
			kind:    apperror.InvalidArgument,
			message: "Field 'zip' is longer than 10 characters",
		},
		{
			name:    "missing wins over too long",
			dst:     func() interface{} { return &models.CreateUserRequest{} },
			body:    `{"username": "` + strings.Repeat("a", 300) + `", "group": ""}`,
			kind:    apperror.MissingArgument,
			message: "Not enough arguments",
		},
		{
			name:    "malformed json",
			dst:     func() interface{} { return &models.CreateBookRequest{} },
			body:    `{"name": `,
			kind:    apperror.InvalidArgument,
			message: "Malformed JSON body",
		},
		{
			name:    "array instead of object",
			dst:     func() interface{} { return &models.CreateBookRequest{} },
			body:    `[1, 2]`,
			kind:    apperror.InvalidArgument,
			message: "Malformed JSON body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Decode([]byte(tt.body), tt.dst(), tt.opts...)
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperror.KindOf(err))
			assert.Equal(t, tt.message, apperror.Message(err))
		})
	}
}

func TestDecodeCreateBook(t *testing.T) {
	var req models.CreateBookRequest
	err := Decode([]byte(`{"name": "Solaris", "author": "Lem", "translator": null, "year": 1961}`), &req)
	require.NoError(t, err)

	assert.Equal(t, "Solaris", req.Name)
	assert.Equal(t, "Lem", req.Author)
	assert.Nil(t, req.Translator)
	assert.Nil(t, req.ISBN)
	require.NotNil(t, req.Year)
	assert.Equal(t, 1961, *req.Year)
}

func TestDecodeUpdateBookDistinguishesNullFromAbsent(t *testing.T) {
	var req models.UpdateBookRequest
	err := Decode([]byte(`{"genre": null, "year": 2001}`), &req)
	require.NoError(t, err)

	assert.True(t, req.Genre.Set)
	assert.Nil(t, req.Genre.Value)
	assert.True(t, req.Year.Set)
	assert.Equal(t, 2001, *req.Year.Value)
	assert.False(t, req.Name.Set)
	assert.False(t, req.ISBN.Set)
}

func TestDecodeUpdateLibraryAcceptsFalse(t *testing.T) {
	var req models.UpdateLibraryRequest
	err := Decode([]byte(`{"hidden_lib": false}`), &req)
	require.NoError(t, err)
	require.NotNil(t, req.HiddenLib)
	assert.False(t, *req.HiddenLib)

	err = Decode([]byte(`{"hidden_lib": null}`), &models.UpdateLibraryRequest{})
	assert.Equal(t, apperror.MissingArgument, apperror.KindOf(err))

	err = Decode([]byte(`{"hidden_lib": "yes"}`), &req)
	assert.Equal(t, apperror.InvalidArgument, apperror.KindOf(err))
}

func TestDecodeUserAddressMayBeNull(t *testing.T) {
	var req models.CreateUserRequest
	err := Decode([]byte(`{"username": "ann", "group": "reader", "address_id": null}`), &req)
	require.NoError(t, err)
	assert.Nil(t, req.AddressID)
}

func TestDecodeAcceptsValuesAtTheLimit(t *testing.T) {
	var req models.CreateAddressRequest
	body := `{"street_addr": "1 Main St", "city": "Oslo", "region": "Oslo", "zip": "ØØØØØØØØØØ", "country": "Norway"}`
	require.NoError(t, Decode([]byte(body), &req))
	assert.Equal(t, "ØØØØØØØØØØ", req.Zip)

	var patch models.UpdateUserRequest
	require.NoError(t, Decode([]byte(`{"address_id": null}`), &patch))
	assert.True(t, patch.AddressID.Set)
	assert.Nil(t, patch.AddressID.Value)
	assert.False(t, patch.Username.Set)
}

func TestDecodeRejectsNonStruct(t *testing.T) {
	var dst map[string]interface{}
	err := Decode([]byte(`{}`), &dst)
	assert.Equal(t, apperror.Internal, apperror.KindOf(err))
}
