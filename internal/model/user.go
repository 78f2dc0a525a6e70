package model

// User is the shopper as supplied by the auth provider. It is not persisted here.
type User struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Phone     string
}
