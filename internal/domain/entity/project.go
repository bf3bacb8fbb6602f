// Package entity 定义领域实体
package entity

import (
	"regexp"
	"strings"
	"time"
)

// projectNamePattern 项目名合法字符：字母、数字、空格、连字符、下划线
var projectNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_\- ]+$`)

// Project 小说项目实体，以净化后的名称作为唯一标识
type Project struct {
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	NovelOutline string    `json:"novel_outline"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewProject 创建新项目
func NewProject(name, description string) *Project {
	return &Project{
		Name:        name,
		Description: description,
		CreatedAt:   time.Now(),
	}
}

// SanitizeProjectName 净化项目名：去除首尾空白并校验字符集
// 返回净化后的名称；名称为空或含非法字符时返回 false
func SanitizeProjectName(name string) (string, bool) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || !projectNamePattern.MatchString(trimmed) {
		return "", false
	}
	return trimmed, true
}
