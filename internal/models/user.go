package models

// User is a registered account. Email is stored lower-cased and is the
// case-insensitive unique key. Password holds either the plaintext secret
// or an encoded argon2id hash, depending on security.passwordhashing.
type User struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is the single active login. At most one exists at a time.
type Session struct {
	Email string `json:"email"`
	Token string `json:"token"`
}
