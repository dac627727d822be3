package model

type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Ctime        int64  `json:"ctime"`
	Mtime        int64  `json:"mtime"`
}
