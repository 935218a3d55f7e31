package models

// DefaultEntryStatus is the status a book gets when added to a library.
const DefaultEntryStatus = "Available for exchange"

// User represents a member of the exchange
type User struct {
	ID        int64  `db:"id"`
	Username  string `db:"username"`
	Group     string `db:"user_group"`
	AddressID *int64 `db:"address_id"`
}

// Address is a postal address users may point at. (StreetAddr, City) is unique.
type Address struct {
	ID         int64  `db:"id"`
	StreetAddr string `db:"street_addr"`
	City       string `db:"city"`
	Region     string `db:"region"`
	Zip        string `db:"zip"`
	Country    string `db:"country"`
}

// Book is a catalog entry. ISBN is informational and not unique.
type Book struct {
	ID         int64   `db:"id"`
	Name       string  `db:"name"`
	Author     string  `db:"author"`
	Translator *string `db:"translator"`
	Genre      *string `db:"genre"`
	Year       *int    `db:"year"`
	Publisher  *string `db:"publisher"`
	ISBN       *string `db:"isbn"`
}

// Library is the single collection of owned books each user has
type Library struct {
	ID        int64 `db:"id"`
	UserID    int64 `db:"user_id"`
	HiddenLib bool  `db:"hidden_lib"`
}

// LibraryEntry represents the relationship between libraries and books
type LibraryEntry struct {
	ID        int64  `db:"id"`
	LibraryID int64  `db:"library_id"`
	BookID    int64  `db:"book_id"`
	Hidden    bool   `db:"hidden"`
	Status    string `db:"status"`
	Book      Book   `db:"book"`
}

// WishlistEntry represents a book a user wants but does not own
type WishlistEntry struct {
	ID     int64 `db:"id"`
	UserID int64 `db:"user_id"`
	BookID int64 `db:"book_id"`
}
