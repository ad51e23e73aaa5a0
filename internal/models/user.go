package models

type User struct {
	ID    int64  `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Email string `json:"email" db:"email"`
}

// UserPatch holds the fields of a partial user update; nil means "leave as is".
type UserPatch struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

func (p UserPatch) Apply(user *User) {
	if p.Name != nil {
		user.Name = *p.Name
	}
	if p.Email != nil {
		user.Email = *p.Email
	}
}
