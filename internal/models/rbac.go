package models

import "time"

// The RBAC graph is plain relational data: apps expose pages and
// functions, roles bundle page/action grants, groups bundle roles.

type Role struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text"                json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type App struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Code        string    `gorm:"size:50;uniqueIndex;not null"  json:"code"`
	Description string    `gorm:"type:text"                json:"description"`
	BaseURL     string    `gorm:"size:200"                 json:"base_url"`
	IsActive    bool      `gorm:"default:true"             json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

type Page struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	AppID       uint      `gorm:"index;not null;uniqueIndex:uniq_app_route" json:"app_id"`
	Name        string    `gorm:"size:100;not null"        json:"name"`
	Route       string    `gorm:"size:200;not null;uniqueIndex:uniq_app_route" json:"route"`
	Type        string    `gorm:"size:20;default:LIST"     json:"type"`
	ParentID    *uint     `gorm:"index"                    json:"parent_id"`
	Section     string    `gorm:"size:50"                  json:"section"`
	Icon        string    `gorm:"size:50"                  json:"icon"`
	Order       int       `gorm:"default:0"                json:"order"`
	Description string    `gorm:"type:text"                json:"description"`
	IsActive    bool      `gorm:"default:true"             json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

type Action struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text"                json:"description"`
}

// Permission grants one action on one page to one role.
type Permission struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	RoleID    uint      `gorm:"not null;uniqueIndex:uniq_permission" json:"role_id"`
	PageID    uint      `gorm:"not null;uniqueIndex:uniq_permission" json:"page_id"`
	ActionID  uint      `gorm:"not null;uniqueIndex:uniq_permission" json:"action_id"`
	CreatedAt time.Time `json:"created_at"`
}

// AppPermission is the label/value catalog managed by the CRUD service.
type AppPermission struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Label     string    `gorm:"size:255;not null"        json:"label"`
	Value     string    `gorm:"size:255;not null"        json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AppFunction struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:255;not null"        json:"name"`
	Code      string    `gorm:"size:255;not null"        json:"code"`
	Type      string    `gorm:"size:255;not null"        json:"type"`
	ParentID  *uint     `json:"parent_id"`
	IsParent  bool      `gorm:"default:false"            json:"is_parent"`
	Section   string    `gorm:"size:255"                 json:"section"`
	Path      string    `gorm:"size:255"                 json:"path"`
	Icon      string    `gorm:"size:255"                 json:"icon"`
	AppCode   string    `gorm:"size:255;not null"        json:"app_code"`
	IsShow    bool      `gorm:"default:true"             json:"is_show"`
	Order     int       `json:"order"`
	Status    string    `gorm:"size:10;default:ACT"      json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AppGroup struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:255;not null"        json:"name"`
	Code      string    `gorm:"size:255;not null"        json:"code"`
	AppCode   string    `gorm:"size:255;not null"        json:"app_code"`
	Status    string    `gorm:"size:10;default:ACT"      json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type UserAppRole struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:uniq_user_app_role" json:"user_id"`
	AppID      uint      `gorm:"not null;uniqueIndex:uniq_user_app_role" json:"app_id"`
	RoleID     uint      `gorm:"not null;uniqueIndex:uniq_user_app_role" json:"role_id"`
	AssignedAt time.Time `gorm:"autoCreateTime"           json:"assigned_at"`
}

type AppUserAccess struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"index;not null"           json:"user_id"`
	AppCode   string    `gorm:"size:50"                  json:"app_code"`
	Status    string    `gorm:"size:10;default:ACT"      json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
