package client

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

var (
	ErrNotFound    = errors.New("client not found")
	ErrEmailExists = errors.New("client email already taken")
)

type Client struct {
	ID          uint
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	DateOfBirth *time.Time
	AddressLine string
	City        string
	StateCode   string
	PostalCode  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type FindParams struct {
	Search string
	Limit  int
	Offset int
}

type Repository interface {
	GetPaginated(ctx context.Context, params *FindParams) ([]*Client, error)
	Count(ctx context.Context, params *FindParams) (int64, error)
	GetByID(ctx context.Context, id uint) (*Client, error)
	Create(ctx context.Context, c *Client) (uint, error)
	Update(ctx context.Context, c *Client) error
	Delete(ctx context.Context, id uint) error
}
