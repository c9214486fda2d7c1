// Package models содержит доменные структуры платформы: пользователей,
// настройки сайта, журнал платёжных событий и публикуемый контент.
package models

import "time"

// User представляет зарегистрированного пользователя системы.
type User struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	Name             string     `json:"name"`
	PasswordHash     string     `json:"-"`
	Role             Role       `json:"role"`
	IsSubscribed     bool       `json:"isSubscribed"`
	SubscriptionID   *string    `json:"subscriptionId,omitempty"`   // идентификатор последнего оплаченного checkout
	SubscriptionEnds *time.Time `json:"subscriptionEnds,omitempty"` // дата окончания оплаченного периода
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// HasAccess проверяет право пользователя на просмотр закрытого контента.
// Администратор имеет доступ всегда, подписчик — пока не истёк оплаченный период.
func (u *User) HasAccess(now time.Time) bool {
	if u == nil {
		return false
	}
	if u.Role.IsAdmin() {
		return true
	}
	if u.Role != RoleSubscriber || !u.IsSubscribed {
		return false
	}
	return u.SubscriptionEnds == nil || u.SubscriptionEnds.After(now)
}
