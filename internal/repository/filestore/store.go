// Package filestore keeps projects, tasks and subtasks in a single JSON
// document on disk. Every mutation rewrites the whole document, so it suits
// one process serving one user.
package filestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"tracker/internal/model"
	"tracker/internal/repository"
)

type document struct {
	Projects []model.Project `json:"projects"`
	Tasks    []model.Task    `json:"tasks"`
	Subtasks []model.Subtask `json:"subtasks"`
}

func (d document) clone() document {
	out := document{
		Projects: append([]model.Project{}, d.Projects...),
		Tasks:    make([]model.Task, len(d.Tasks)),
		Subtasks: make([]model.Subtask, len(d.Subtasks)),
	}
	for i, t := range d.Tasks {
		out.Tasks[i] = cloneTask(t)
	}
	for i, s := range d.Subtasks {
		out.Subtasks[i] = cloneSubtask(s)
	}
	return out
}

// Store is the file-backed backend. An empty path keeps everything in memory.
type Store struct {
	path string

	mu  sync.Mutex
	doc document
}

// Open loads the document at path, creating an empty one when the file does
// not exist yet.
func Open(path string) (*Store, error) {
	s := &Store{path: path, doc: document{
		Projects: []model.Project{},
		Tasks:    []model.Task{},
		Subtasks: []model.Subtask{},
	}}
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if err := s.save(s.doc); err != nil {
			return nil, err
		}
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store file: %w", err)
	}

	if err := validateDocument(data); err != nil {
		return nil, err
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse store file: %w", err)
	}
	if doc.Projects == nil {
		doc.Projects = []model.Project{}
	}
	if doc.Tasks == nil {
		doc.Tasks = []model.Task{}
	}
	if doc.Subtasks == nil {
		doc.Subtasks = []model.Subtask{}
	}
	s.doc = doc
	return s, nil
}

// NewMemory returns a store that never touches disk.
func NewMemory() *Store {
	s, _ := Open("")
	return s
}

// Stores exposes the three entity stores backed by s.
func (s *Store) Stores() repository.Stores {
	return repository.Stores{
		Projects: &projectStore{s: s},
		Tasks:    &taskStore{s: s},
		Subtasks: &subtaskStore{s: s},
	}
}

func (s *Store) read(fn func(doc *document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&s.doc)
}

// write applies fn to a copy of the document and only keeps the result once
// it has been persisted.
func (s *Store) write(fn func(doc *document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.doc.clone()
	if err := fn(&next); err != nil {
		return err
	}
	if err := s.save(next); err != nil {
		return err
	}
	s.doc = next
	return nil
}

func (s *Store) save(doc document) error {
	if s.path == "" {
		return nil
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store file: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("write store file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}

func sortTasks(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
}

func sortSubtasks(subtasks []model.Subtask) {
	sort.SliceStable(subtasks, func(i, j int) bool {
		a, b := subtasks[i], subtasks[j]
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
}

func cloneTask(t model.Task) model.Task {
	t.StartDate = cloneString(t.StartDate)
	t.DueDate = cloneString(t.DueDate)
	return t
}

func cloneSubtask(s model.Subtask) model.Subtask {
	s.StartDate = cloneString(s.StartDate)
	s.DueDate = cloneString(s.DueDate)
	return s
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
