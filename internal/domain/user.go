package domain

import (
	"time"
)

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleEmployee Role = "EMPLOYEE"
)

type UserStatus string

const (
	UserStatusActive   UserStatus = "ACTIVE"
	UserStatusInactive UserStatus = "INACTIVE"
	UserStatusInvited  UserStatus = "INVITED"
)

type EmploymentType string

const (
	EmploymentTypeFullTime EmploymentType = "FULL_TIME"
	EmploymentTypePartTime EmploymentType = "PART_TIME"
	EmploymentTypeContract EmploymentType = "CONTRACT"
)

type User struct {
	ID             int64          `json:"id"`
	Username       string         `json:"username"`
	PasswordHash   string         `json:"-"`
	Name           string         `json:"name"`
	Email          string         `json:"email"`
	Role           Role           `json:"role"`
	Status         UserStatus     `json:"status"`
	Timezone       string         `json:"timezone"`
	EmploymentType EmploymentType `json:"employmentType"`
	Skills         []string       `json:"skills"`
	CreatedAt      time.Time      `json:"createdAt"`
	Version        int32          `json:"-"`
}
