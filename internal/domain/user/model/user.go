package model

import (
	"encoding/json"
	"fmt"
	baseModel "vibelog/pkg/model"
)

// Role 用户角色
type Role string

const (
	RoleUser      Role = "USER"
	RoleModerator Role = "MODERATOR"
	RoleAdmin     Role = "ADMIN"
)

// User 用户模型
// 角色相关的附加属性存放在 Profile (jsonb) 中，按 Role 解码为对应结构
type User struct {
	baseModel.BaseModel
	Username       string          `gorm:"uniqueIndex;not null" json:"username"`
	Email          string          `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash   string          `json:"-"`
	Role           Role            `gorm:"type:varchar(20);not null;default:'USER'" json:"role"`
	Bio            string          `gorm:"size:500" json:"bio"`
	ProfilePicture string          `json:"profilePicture"`
	Profile        json.RawMessage `gorm:"type:jsonb" json:"profile,omitempty"`
}

// IsModerator 版主与管理员均可执行审核操作
func (u *User) IsModerator() bool {
	return u.Role == RoleModerator || u.Role == RoleAdmin
}

// AdminLevel 管理员级别
type AdminLevel string

const (
	AdminLevelBasic AdminLevel = "BASIC"
	AdminLevelFull  AdminLevel = "FULL"
	AdminLevelSuper AdminLevel = "SUPER"
)

// RoleProfile 角色附加属性
type RoleProfile interface {
	Role() Role
}

type AdminProfile struct {
	Level AdminLevel `json:"level"`
}

func (AdminProfile) Role() Role { return RoleAdmin }

type ModeratorProfile struct {
	ReportsReviewed int `json:"reportsReviewed"`
}

func (ModeratorProfile) Role() Role { return RoleModerator }

type RegularProfile struct {
	Theme string `json:"theme"`
}

func (RegularProfile) Role() Role { return RoleUser }

// RoleProfile 按角色解码附加属性，Profile 为空时返回默认值
func (u *User) RoleProfile() (RoleProfile, error) {
	switch u.Role {
	case RoleAdmin:
		p := AdminProfile{Level: AdminLevelFull}
		if err := u.decodeProfile(&p); err != nil {
			return nil, err
		}
		return p, nil
	case RoleModerator:
		p := ModeratorProfile{}
		if err := u.decodeProfile(&p); err != nil {
			return nil, err
		}
		return p, nil
	case RoleUser, "":
		p := RegularProfile{Theme: "default"}
		if err := u.decodeProfile(&p); err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown role %q", u.Role)
	}
}

// SetRoleProfile 写入附加属性，属性类型必须与角色一致
func (u *User) SetRoleProfile(p RoleProfile) error {
	if p.Role() != u.Role {
		return fmt.Errorf("profile for role %s cannot be attached to %s", p.Role(), u.Role)
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	u.Profile = raw
	return nil
}

func (u *User) decodeProfile(dst any) error {
	if len(u.Profile) == 0 || string(u.Profile) == "null" {
		return nil
	}
	if err := json.Unmarshal(u.Profile, dst); err != nil {
		return fmt.Errorf("decode %s profile: %w", u.Role, err)
	}
	return nil
}
