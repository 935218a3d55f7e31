package models

// The view types below are the only shapes the API renders. Absent single
// relations render as {} and absent collections as [], while unset scalar
// book fields stay null.

type AddressView struct {
	ID         int64  `json:"id"`
	StreetAddr string `json:"street_addr"`
	City       string `json:"city"`
	Region     string `json:"region"`
	Zip        string `json:"zip"`
	Country    string `json:"country"`
}

type BookView struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Author     string  `json:"author"`
	Translator *string `json:"translator"`
	Genre      *string `json:"genre"`
	Year       *int    `json:"year"`
	Publisher  *string `json:"publisher"`
	ISBN       *string `json:"isbn"`
}

type LibraryEntryView struct {
	Hidden bool     `json:"hidden"`
	Status string   `json:"status"`
	Book   BookView `json:"book"`
}

type LibraryView struct {
	ID        int64              `json:"id"`
	HiddenLib bool               `json:"hidden_lib"`
	Books     []LibraryEntryView `json:"books"`
}

// UserView is rendered for user lists and mutations. Address is either an
// AddressView or an empty object.
type UserView struct {
	ID       int64       `json:"id"`
	Username string      `json:"username"`
	Group    string      `json:"group"`
	Address  interface{} `json:"address"`
}

// UserDetailView is rendered for GET /users/:id.
type UserDetailView struct {
	UserView
	Library  LibraryView `json:"library"`
	Wishlist []BookView  `json:"wishlist"`
}

// UserGraph is a user with every relation the detail view needs.
type UserGraph struct {
	User     User
	Address  *Address
	Library  *Library
	Entries  []LibraryEntry
	Wishlist []Book
}

func NewAddressView(a Address) AddressView {
	return AddressView{
		ID:         a.ID,
		StreetAddr: a.StreetAddr,
		City:       a.City,
		Region:     a.Region,
		Zip:        a.Zip,
		Country:    a.Country,
	}
}

func NewAddressViews(addrs []Address) []AddressView {
	views := make([]AddressView, 0, len(addrs))
	for _, a := range addrs {
		views = append(views, NewAddressView(a))
	}
	return views
}

func NewBookView(b Book) BookView {
	return BookView{
		ID:         b.ID,
		Name:       b.Name,
		Author:     b.Author,
		Translator: b.Translator,
		Genre:      b.Genre,
		Year:       b.Year,
		Publisher:  b.Publisher,
		ISBN:       b.ISBN,
	}
}

func NewBookViews(books []Book) []BookView {
	views := make([]BookView, 0, len(books))
	for _, b := range books {
		views = append(views, NewBookView(b))
	}
	return views
}

func NewLibraryEntryView(e LibraryEntry) LibraryEntryView {
	return LibraryEntryView{
		Hidden: e.Hidden,
		Status: e.Status,
		Book:   NewBookView(e.Book),
	}
}

func NewLibraryView(lib Library, entries []LibraryEntry) LibraryView {
	books := make([]LibraryEntryView, 0, len(entries))
	for _, e := range entries {
		books = append(books, NewLibraryEntryView(e))
	}
	return LibraryView{
		ID:        lib.ID,
		HiddenLib: lib.HiddenLib,
		Books:     books,
	}
}

// NewUserView renders u with addr, which may be nil.
func NewUserView(u User, addr *Address) UserView {
	view := UserView{
		ID:       u.ID,
		Username: u.Username,
		Group:    u.Group,
		Address:  struct{}{},
	}
	if addr != nil {
		view.Address = NewAddressView(*addr)
	}
	return view
}

// NewUserViews renders users, resolving address references through addrs.
func NewUserViews(users []User, addrs map[int64]Address) []UserView {
	views := make([]UserView, 0, len(users))
	for _, u := range users {
		var addr *Address
		if u.AddressID != nil {
			if a, ok := addrs[*u.AddressID]; ok {
				addr = &a
			}
		}
		views = append(views, NewUserView(u, addr))
	}
	return views
}

func NewUserDetailView(g UserGraph) UserDetailView {
	view := UserDetailView{
		UserView: NewUserView(g.User, g.Address),
		Library:  LibraryView{Books: []LibraryEntryView{}},
		Wishlist: NewBookViews(g.Wishlist),
	}
	if g.Library != nil {
		view.Library = NewLibraryView(*g.Library, g.Entries)
	}
	return view
}
