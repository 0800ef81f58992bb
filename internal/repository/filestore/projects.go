package filestore

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"tracker/internal/model"
	"tracker/internal/repository"
)

type projectStore struct {
	s *Store
}

var _ repository.ProjectStore = (*projectStore)(nil)

func (p *projectStore) List(_ context.Context, filter model.ProjectFilter) ([]model.Project, error) {
	var out []model.Project
	err := p.s.read(func(doc *document) error {
		out = make([]model.Project, 0, len(doc.Projects))
		for _, project := range doc.Projects {
			if filter.Archived != nil && project.Archived != *filter.Archived {
				continue
			}
			out = append(out, project)
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, err
}

func (p *projectStore) GetByID(_ context.Context, id uuid.UUID) (*model.Project, error) {
	var out *model.Project
	err := p.s.read(func(doc *document) error {
		i := findProject(doc, id)
		if i < 0 {
			return repository.ErrProjectNotFound
		}
		project := doc.Projects[i]
		out = &project
		return nil
	})
	return out, err
}

func (p *projectStore) Create(_ context.Context, project *model.Project) error {
	return p.s.write(func(doc *document) error {
		if findProject(doc, project.ID) >= 0 {
			return fmt.Errorf("project %s already exists", project.ID)
		}
		doc.Projects = append(doc.Projects, *project)
		return nil
	})
}

func (p *projectStore) Update(_ context.Context, project *model.Project) error {
	return p.s.write(func(doc *document) error {
		i := findProject(doc, project.ID)
		if i < 0 {
			return repository.ErrProjectNotFound
		}
		doc.Projects[i] = *project
		return nil
	})
}

func (p *projectStore) Delete(_ context.Context, id uuid.UUID) (model.Cascade, error) {
	var cascade model.Cascade
	err := p.s.write(func(doc *document) error {
		i := findProject(doc, id)
		if i < 0 {
			return repository.ErrProjectNotFound
		}
		doc.Projects = append(doc.Projects[:i], doc.Projects[i+1:]...)
		cascade.Projects = 1

		removed := make(map[uuid.UUID]bool)
		tasks := doc.Tasks[:0]
		for _, t := range doc.Tasks {
			if t.ProjectID == id {
				removed[t.ID] = true
				continue
			}
			tasks = append(tasks, t)
		}
		cascade.Tasks = int64(len(removed))
		doc.Tasks = tasks

		subtasks := doc.Subtasks[:0]
		for _, st := range doc.Subtasks {
			if removed[st.TaskID] {
				cascade.Subtasks++
				continue
			}
			subtasks = append(subtasks, st)
		}
		doc.Subtasks = subtasks
		return nil
	})
	if err != nil {
		return model.Cascade{}, err
	}
	return cascade, nil
}

func findProject(doc *document, id uuid.UUID) int {
	for i, project := range doc.Projects {
		if project.ID == id {
			return i
		}
	}
	return -1
}
