package models

import "fmt"

// Role роль пользователя платформы.
type Role string

const (
	// RoleGuest зарегистрированный пользователь без оплаченной подписки.
	RoleGuest Role = "guest"
	// RoleSubscriber пользователь, оплативший подписку.
	RoleSubscriber Role = "subscriber"
	// RoleAdmin владелец контента.
	RoleAdmin Role = "admin"
)

// ParseRole разбирает строковое значение роли из хранилища или JWT.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleGuest, RoleSubscriber, RoleAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// IsAdmin сообщает, является ли роль административной.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

func (r Role) String() string {
	return string(r)
}
