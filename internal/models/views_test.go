package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserViewRendersMissingAddressAsEmptyObject(t *testing.T) {
	data, err := json.Marshal(NewUserView(User{ID: 1, Username: "ann", Group: "reader"}, nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"username":"ann","group":"reader","address":{}}`, string(data))
}

func TestUserDetailViewWithoutRelations(t *testing.T) {
	view := NewUserDetailView(UserGraph{User: User{ID: 2, Username: "bob", Group: "collector"}})
	data, err := json.Marshal(view)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 2, "username": "bob", "group": "collector", "address": {},
		"library": {"id": 0, "hidden_lib": false, "books": []},
		"wishlist": []
	}`, string(data))
}

func TestBookViewKeepsUnsetFieldsNull(t *testing.T) {
	data, err := json.Marshal(NewBookView(Book{ID: 5, Name: "Dune", Author: "Herbert"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 5, "name": "Dune", "author": "Herbert",
		"translator": null, "genre": null, "year": null, "publisher": null, "isbn": null
	}`, string(data))
}

func TestNewUserViewsResolvesAddresses(t *testing.T) {
	addrID := int64(7)
	users := []User{
		{ID: 1, Username: "ann", Group: "reader", AddressID: &addrID},
		{ID: 2, Username: "bob", Group: "reader"},
	}
	addrs := map[int64]Address{7: {ID: 7, StreetAddr: "1 Main St", City: "Oslo"}}

	views := NewUserViews(users, addrs)
	require.Len(t, views, 2)
	assert.Equal(t, AddressView{ID: 7, StreetAddr: "1 Main St", City: "Oslo"}, views[0].Address)
	assert.Equal(t, struct{}{}, views[1].Address)
}

func TestOptUnmarshal(t *testing.T) {
	var req UpdateUserRequest
	require.NoError(t, json.Unmarshal([]byte(`{"address_id": null, "group": "student"}`), &req))

	assert.Equal(t, Null[int64](), req.AddressID)
	assert.Equal(t, Some("student"), req.Group)
	assert.False(t, req.Username.Set)
}
