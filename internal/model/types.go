package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// JSONMap is a custom type for JSON object fields
type JSONMap map[string]interface{}

// Scan implements the sql.Scanner interface for JSONMap
func (j *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSONMap)
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}

	return json.Unmarshal(bytes, j)
}

// Value implements the driver.Valuer interface for JSONMap
func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// JSONSlice is a custom type for JSON array fields
type JSONSlice []interface{}

// Scan implements the sql.Scanner interface for JSONSlice
func (j *JSONSlice) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSONSlice, 0)
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}

	return json.Unmarshal(bytes, j)
}

// Value implements the driver.Valuer interface for JSONSlice
func (j JSONSlice) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// User model represents a registered user in the system
type User struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:50;not null" json:"username" validate:"required,min=3,max=50"`
	Email        string    `gorm:"uniqueIndex;size:100;not null" json:"email" validate:"required,email,max=100"`
	Phone        *string   `gorm:"size:20" json:"phone" validate:"omitempty,max=20"`
	Nickname     *string   `gorm:"size:50" json:"nickname" validate:"omitempty,min=1,max=50"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Avatar       *string   `gorm:"size:255" json:"avatar" validate:"omitempty,url,max=255"`
	Status       int8      `gorm:"default:1" json:"status" validate:"oneof=0 1"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// AIAPI model represents user's AI service configuration
type AIAPI struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          int64     `gorm:"not null;index" json:"user_id" validate:"required"`
	Provider        string    `gorm:"size:50;not null" json:"provider" validate:"required,oneof=openai wenxin tongyi"`
	Name            string    `gorm:"size:100;not null" json:"name" validate:"required,min=1,max=100"`
	APIEndpoint     string    `gorm:"size:500;not null" json:"api_endpoint" validate:"required,url,max=500"`
	APIKeyEncrypted string    `gorm:"type:text;not null" json:"-"`
	Model           *string   `gorm:"size:100" json:"model" validate:"omitempty,max=100"`
	MaxTokens       *int      `json:"max_tokens" validate:"omitempty,min=1,max=32000"`
	Temperature     *float32  `gorm:"type:decimal(3,2)" json:"temperature" validate:"omitempty,min=0,max=2"`
	IsDefault       bool      `gorm:"default:false" json:"is_default"`
	Status          int8      `gorm:"default:1" json:"status" validate:"oneof=0 1"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (AIAPI) TableName() string {
	return "ai_apis"
}

