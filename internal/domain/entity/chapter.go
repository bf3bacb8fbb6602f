package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Chapter 章节实体，隶属于一个项目
type Chapter struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Outline   string    `json:"outline"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"created_at"`
}

// NewChapter 创建新章节，order 由存储层按当前数量分配
func NewChapter(title, outline string, order int) *Chapter {
	return &Chapter{
		ID:        NewEntityID(),
		Title:     title,
		Outline:   outline,
		Order:     order,
		CreatedAt: time.Now(),
	}
}

// NewEntityID 生成 8 位短标识
func NewEntityID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
