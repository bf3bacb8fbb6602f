// Package filestore 提供基于文件的大纲存储实现
// 每个实体一个 JSON 文件：<root>/<project>/project.json、
// chapters/<id>/chapter.json、chapters/<id>/sections/<id>.json
package filestore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("filestore")

// Store 文件存储根，持有按项目划分的互斥锁
// 删除与重排必须在同一把项目锁内完成，保证稠密 order 不被并发破坏
type Store struct {
	root string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStore 创建文件存储，确保根目录存在
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir %s: %w", dataDir, err)
	}
	return &Store{
		root:  dataDir,
		locks: make(map[string]*sync.Mutex),
	}, nil
}

// projectLock 返回指定项目的互斥锁，懒创建
func (s *Store) projectLock(project string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[project]
	if !ok {
		l = &sync.Mutex{}
		s.locks[project] = l
	}
	return l
}

// releaseLock 项目删除后回收其锁
func (s *Store) releaseLock(project string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, project)
}

func (s *Store) projectDir(project string) string {
	return filepath.Join(s.root, project)
}

func (s *Store) projectFile(project string) string {
	return filepath.Join(s.root, project, "project.json")
}

func (s *Store) chaptersDir(project string) string {
	return filepath.Join(s.root, project, "chapters")
}

func (s *Store) chapterDir(project, chapterID string) string {
	return filepath.Join(s.root, project, "chapters", chapterID)
}

func (s *Store) chapterFile(project, chapterID string) string {
	return filepath.Join(s.root, project, "chapters", chapterID, "chapter.json")
}

func (s *Store) sectionsDir(project, chapterID string) string {
	return filepath.Join(s.root, project, "chapters", chapterID, "sections")
}

func (s *Store) sectionFile(project, chapterID, sectionID string) string {
	return filepath.Join(s.root, project, "chapters", chapterID, "sections", sectionID+".json")
}

// readJSON 读取并反序列化实体文件
// 文件不存在返回 (false, nil)；文件损坏返回反序列化错误
func readJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("corrupt entity file %s: %w", path, err)
	}
	return true, nil
}

// writeJSON 整实体序列化写回
func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create dir for %s: %w", path, err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
