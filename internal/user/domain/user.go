package domain

import "github.com/AlibekovAA/no-tion/internal/note/store"

type User struct {
	Name  string
	Notes *store.Store
}

func NewUser(name string) *User {
	return &User{
		Name:  name,
		Notes: store.New(),
	}
}
