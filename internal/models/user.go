package models

import "strings"

// RoleMember роль участника в справочнике пользователей.
const RoleMember = "ROLE_MEMBER"

// Member данные пользователя из внешнего справочника.
type Member struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Phone string `json:"phone"`
}

// IsMember сообщает, что пользователь имеет роль участника.
// Справочник может вернуть роль как "MEMBER" или "ROLE_MEMBER" в любом регистре.
func (m Member) IsMember() bool {
	role := strings.ToUpper(strings.TrimSpace(m.Role))
	return role == RoleMember || role == "MEMBER"
}
