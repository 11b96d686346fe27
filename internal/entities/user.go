package entities

import "time"

type UserRole string

const (
	RoleAdministrator UserRole = "administrador"
	RoleStaff         UserRole = "funcionario"
)

type Activity string

const (
	ActivityActive   Activity = "ativo"
	ActivityInactive Activity = "inativo"
)

// User is one entry of a company's chatbot allow-list. It is not a login
// account; see Account for those.
type User struct {
	ID        int64     `json:"id_user"`
	Name      string    `json:"nome"`
	Phone     *string   `json:"telefone"`
	Role      UserRole  `json:"papel"`
	Activity  Activity  `json:"atividade"`
	CompanyID int64     `json:"id_empresa"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PhoneValue returns the stored phone or "" when none is set
func (u *User) PhoneValue() string {
	if u.Phone == nil {
		return ""
	}
	return *u.Phone
}

func (u *User) HasPhone() bool {
	return u.PhoneValue() != ""
}

func (u *User) IsActive() bool {
	return u.Activity == ActivityActive
}

type NewUserSpec struct {
	Name      string   `json:"nome"`
	Phone     string   `json:"telefone"`
	Role      UserRole `json:"papel"`
	Activity  Activity `json:"atividade"`
	CompanyID int64    `json:"id_empresa"`
}
