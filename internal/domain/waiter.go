package domain

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type WaiterRole string

const (
	RoleAdmin  WaiterRole = "admin"
	RoleWaiter WaiterRole = "waiter"
)

type Waiter struct {
	ID           uint
	Username     string
	PasswordHash string
	DisplayName  string
	Role         WaiterRole
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (w Waiter) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(w.PasswordHash), []byte(password)) == nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
