package user

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound      = errors.New("user: not found")
	ErrDuplicateName = errors.New("user: username already exists")
	ErrInvalidInput  = errors.New("user: password must be at least 6 characters")
	ErrUnauthorized  = errors.New("user: invalid credentials")
)

const minPasswordLen = 6

// AdminUsername is the distinguished account provisioned at startup.
const AdminUsername = "admin"

type User struct {
	Username     string
	PasswordHash string
	Address      string
	Admin        bool
}

// New creates a user with a bcrypt password hash.
func New(username, password, address string) (*User, error) {
	if len(password) < minPasswordLen {
		return nil, ErrInvalidInput
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &User{
		Username:     username,
		PasswordHash: string(hash),
		Address:      address,
	}, nil
}

func (u *User) CheckPassword(password string) error {
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return ErrUnauthorized
	}
	return nil
}

type Directory map[string]*User

func (d Directory) Clone() Directory {
	out := make(Directory, len(d))
	for name, u := range d {
		clone := *u
		out[name] = &clone
	}
	return out
}
