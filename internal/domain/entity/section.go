package entity

import (
	"time"
)

// Section 小节实体，隶属于一个 (项目, 章节) 对
type Section struct {
	ID        string    `json:"id"`
	ChapterID string    `json:"chapter_id"`
	Title     string    `json:"title"`
	Outline   string    `json:"outline"`
	Content   string    `json:"content"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"created_at"`
}

// NewSection 创建新小节，order 由存储层按当前数量分配
func NewSection(chapterID, title, outline string, order int) *Section {
	return &Section{
		ID:        NewEntityID(),
		ChapterID: chapterID,
		Title:     title,
		Outline:   outline,
		Order:     order,
		CreatedAt: time.Now(),
	}
}
