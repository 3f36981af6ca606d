package entity

const RoleAdmin = "admin"

// Admin is the back-office role record, keyed by the identity provider's uid.
type Admin struct {
	UID         string   `db:"uid" firestore:"-" json:"uid"`
	Name        string   `db:"name" firestore:"name" json:"name"`
	Email       string   `db:"email" firestore:"email" json:"email"`
	Role        string   `db:"role" firestore:"role" json:"role"`
	IsActive    bool     `db:"is_active" firestore:"isActive" json:"isActive"`
	Permissions []string `db:"permissions" firestore:"permissions" json:"permissions"`
}

func (a *Admin) IsActiveAdmin() bool {
	return a != nil && a.IsActive && a.Role == RoleAdmin
}
