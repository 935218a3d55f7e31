// Package seed fills a database with demo data. Everything goes through
// the service layer, so seeded data obeys the same rules as API traffic.
package seed

import (
	"context"
	"fmt"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/rongwang/book-exchange-server/internal/apperror"
	"github.com/rongwang/book-exchange-server/internal/models"
	"github.com/rongwang/book-exchange-server/internal/service"
	"github.com/rongwang/book-exchange-server/internal/utils"
)

// Options controls how much data is generated
type Options struct {
	Users        int
	Books        int
	Addresses    int
	LibrarySize  int // books per library, at most
	WishlistSize int // books per wishlist, at most
	RandomSeed   int64
}

// DefaultOptions returns a small, browsable data set
func DefaultOptions() Options {
	return Options{
		Users:        10,
		Books:        30,
		Addresses:    5,
		LibrarySize:  5,
		WishlistSize: 3,
	}
}

// Summary counts what was actually created
type Summary struct {
	Users           int
	Books           int
	Addresses       int
	LibraryEntries  int
	WishlistEntries int
}

var groups = []string{"reader", "collector", "student", "librarian"}

// Seeder creates demo entities through a Service
type Seeder struct {
	svc    service.Service
	faker  *gofakeit.Faker
	logger *utils.Logger
}

// NewSeeder creates a Seeder. A zero RandomSeed picks a random one.
func NewSeeder(svc service.Service, randomSeed int64, logger *utils.Logger) *Seeder {
	if logger == nil {
		logger = utils.Discard()
	}
	return &Seeder{
		svc:    svc,
		faker:  gofakeit.New(randomSeed),
		logger: logger,
	}
}

// Run generates books, addresses and users, then fills libraries and
// wishlists. Conflicts are skipped; any other error aborts.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Summary, error) {
	var sum Summary

	books := make([]int64, 0, opts.Books)
	for i := 0; i < opts.Books; i++ {
		book, err := s.svc.CreateBook(ctx, s.book())
		if err != nil {
			return &sum, fmt.Errorf("failed to seed book: %w", err)
		}
		books = append(books, book.ID)
	}
	sum.Books = len(books)

	addrs := make([]int64, 0, opts.Addresses)
	for i := 0; i < opts.Addresses; i++ {
		addr, err := s.svc.CreateAddress(ctx, s.address())
		if apperror.KindOf(err) == apperror.Conflict {
			continue
		}
		if err != nil {
			return &sum, fmt.Errorf("failed to seed address: %w", err)
		}
		addrs = append(addrs, addr.ID)
	}
	sum.Addresses = len(addrs)

	for i := 0; i < opts.Users; i++ {
		req := models.CreateUserRequest{
			Username: fmt.Sprintf("%s%d", s.faker.Username(), s.faker.Number(100, 999)),
			Group:    s.faker.RandomString(groups),
		}
		if len(addrs) > 0 && s.faker.Bool() {
			id := addrs[s.faker.Number(0, len(addrs)-1)]
			req.AddressID = &id
		}

		user, err := s.svc.CreateUser(ctx, req)
		if apperror.KindOf(err) == apperror.Conflict {
			continue
		}
		if err != nil {
			return &sum, fmt.Errorf("failed to seed user: %w", err)
		}
		sum.Users++

		added, wished, err := s.collect(ctx, user.ID, books, opts)
		sum.LibraryEntries += added
		sum.WishlistEntries += wished
		if err != nil {
			return &sum, err
		}
	}

	s.logger.Info("seed complete",
		"users", sum.Users,
		"books", sum.Books,
		"addresses", sum.Addresses,
		"library_entries", sum.LibraryEntries,
		"wishlist_entries", sum.WishlistEntries,
	)
	return &sum, nil
}

// collect puts random books into the user's library and wishlist
func (s *Seeder) collect(ctx context.Context, userID int64, books []int64, opts Options) (int, int, error) {
	if len(books) == 0 {
		return 0, 0, nil
	}

	var added, wished int
	owned := s.faker.Number(0, opts.LibrarySize)
	for i := 0; i < owned; i++ {
		bookID := books[s.faker.Number(0, len(books)-1)]
		_, err := s.svc.AddToLibrary(ctx, userID, bookID)
		if apperror.KindOf(err) == apperror.Conflict {
			continue
		}
		if err != nil {
			return added, wished, fmt.Errorf("failed to seed library entry: %w", err)
		}
		added++
	}

	wanted := s.faker.Number(0, opts.WishlistSize)
	for i := 0; i < wanted; i++ {
		bookID := books[s.faker.Number(0, len(books)-1)]
		_, err := s.svc.AddToWishlist(ctx, userID, bookID)
		if apperror.KindOf(err) == apperror.Conflict {
			continue
		}
		if err != nil {
			return added, wished, fmt.Errorf("failed to seed wishlist entry: %w", err)
		}
		wished++
	}
	return added, wished, nil
}

func (s *Seeder) book() models.CreateBookRequest {
	req := models.CreateBookRequest{
		Name:   truncate(s.faker.BookTitle(), 100),
		Author: truncate(s.faker.BookAuthor(), 100),
	}
	if s.faker.Bool() {
		genre := truncate(s.faker.BookGenre(), 100)
		req.Genre = &genre
	}
	if s.faker.Bool() {
		year := s.faker.Number(1850, 2024)
		req.Year = &year
	}
	if s.faker.Bool() {
		publisher := truncate(s.faker.Company(), 100)
		req.Publisher = &publisher
	}
	if s.faker.Bool() {
		isbn := s.faker.Numerify("978##########")
		req.ISBN = &isbn
	}
	if s.faker.Number(0, 4) == 0 {
		translator := truncate(s.faker.Name(), 100)
		req.Translator = &translator
	}
	return req
}

func (s *Seeder) address() models.CreateAddressRequest {
	a := s.faker.Address()
	return models.CreateAddressRequest{
		StreetAddr: truncate(a.Street, 80),
		City:       truncate(a.City, 40),
		Region:     truncate(a.State, 40),
		Zip:        truncate(a.Zip, 10),
		Country:    truncate(a.Country, 20),
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
