package address

import (
	"context"
	"fmt"

	"github.com/lunamercado/storefront-gateway/pkg/backend"
)

type bookReader interface {
	GetAddresses(ctx context.Context) ([]backend.Address, error)
}

// Book is the shopper's address list with the selected default resolved.
type Book struct {
	Addresses []backend.Address `json:"addresses"`
	Default   string            `json:"default,omitempty"`
}

// Service exposes the shopper's address book.
type Service interface {
	List(ctx context.Context) (*Book, error)
}

type service struct {
	backend bookReader
}

// NewService builds the address service.
func NewService(client bookReader) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("backend client required")
	}
	return &service{backend: client}, nil
}

// List returns the address book. The default is the entry flagged as such,
// falling back to the first entry so checkout always has a candidate.
func (s *service) List(ctx context.Context) (*Book, error) {
	addresses, err := s.backend.GetAddresses(ctx)
	if err != nil {
		return nil, err
	}
	book := &Book{Addresses: addresses}
	for _, entry := range addresses {
		if entry.IsDefault {
			book.Default = entry.Address
			break
		}
	}
	if book.Default == "" && len(addresses) > 0 {
		book.Default = addresses[0].Address
	}
	return book, nil
}
