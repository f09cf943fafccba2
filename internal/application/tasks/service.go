package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"foundersbook-backend/internal/domain"
	"foundersbook-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// View is a task with its category and assignee names resolved.
type View struct {
	domain.Task
	CategoryName string `json:"categoryName"`
	AssigneeName string `json:"assigneeName"`
}

type Actor struct {
	ID   uuid.UUID
	Name string
}

type CreateInput struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Category    string  `json:"category"`
	Subcategory string  `json:"subcategory"`
	Deadline    string  `json:"deadline"`
	Status      string  `json:"status"`
	AssignedTo  string  `json:"assignedTo"`
}

// UpdateInput holds a partial update; nil fields are left unchanged.
type UpdateInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Subcategory *string `json:"subcategory"`
	Deadline    *string `json:"deadline"`
	Status      *string `json:"status"`
	AssignedTo  *string `json:"assignedTo"`
}

type Filter struct {
	CategoryID  string
	Subcategory string
	Status      string
	AssignedTo  string
}

type Service struct {
	DB *gorm.DB
}

func (s *Service) categoryByName(ctx context.Context, name string) (*domain.TaskCategory, error) {
	var tc domain.TaskCategory
	err := s.DB.WithContext(ctx).Where("category_name = ?", strings.TrimSpace(name)).First(&tc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFound("Category not found")
	}
	if err != nil {
		return nil, err
	}
	return &tc, nil
}

func (s *Service) assignee(ctx context.Context, ref string) (uuid.UUID, error) {
	id, err := validation.ParseUUID("assignedTo", ref)
	if err != nil {
		return uuid.Nil, err
	}
	var n int64
	if err := s.DB.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return uuid.Nil, err
	}
	if n == 0 {
		return uuid.Nil, domain.NotFound("User not found")
	}
	return id, nil
}

func parseStatus(s string) (domain.TaskStatus, error) {
	st := domain.TaskStatus(s)
	if !st.Valid() {
		return "", domain.InvalidArgument(fmt.Sprintf("Invalid status %q", s))
	}
	return st, nil
}

func (s *Service) Create(ctx context.Context, actor Actor, in CreateInput) (*View, error) {
	if err := validation.Required("title", in.Title); err != nil {
		return nil, err
	}
	if err := validation.Required("subcategory", in.Subcategory); err != nil {
		return nil, err
	}
	if err := validation.Required("deadline", in.Deadline); err != nil {
		return nil, err
	}
	deadline, err := validation.ParseDate(in.Deadline)
	if err != nil {
		return nil, err
	}
	status := domain.TaskToDo
	if in.Status != "" {
		if status, err = parseStatus(in.Status); err != nil {
			return nil, err
		}
	}
	tc, err := s.categoryByName(ctx, in.Category)
	if err != nil {
		return nil, err
	}
	assignee, err := s.assignee(ctx, in.AssignedTo)
	if err != nil {
		return nil, err
	}

	t := domain.Task{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		CategoryID:  tc.ID,
		Subcategory: strings.TrimSpace(in.Subcategory),
		Deadline:    deadline,
		Status:      status,
		AssignedTo:  assignee,
		CreatedBy:   actor.ID,
	}
	if err := s.DB.WithContext(ctx).Create(&t).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, t.ID.String())
}

func (s *Service) List(ctx context.Context, f Filter) ([]View, error) {
	q := s.DB.WithContext(ctx).Model(&domain.Task{})
	if f.CategoryID != "" {
		id, err := validation.ParseUUID("category", f.CategoryID)
		if err != nil {
			return nil, err
		}
		q = q.Where("category_id = ?", id)
	}
	if f.Subcategory != "" {
		q = q.Where("subcategory = ?", f.Subcategory)
	}
	if f.Status != "" {
		st, err := parseStatus(f.Status)
		if err != nil {
			return nil, err
		}
		q = q.Where("status = ?", st)
	}
	if f.AssignedTo != "" {
		id, err := validation.ParseUUID("assignedTo", f.AssignedTo)
		if err != nil {
			return nil, err
		}
		q = q.Where("assigned_to = ?", id)
	}
	var rows []domain.Task
	if err := q.Order("deadline ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return s.views(ctx, rows)
}

// ListForUser returns the tasks assigned to userID, earliest deadline first.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]View, error) {
	return s.List(ctx, Filter{AssignedTo: userID.String()})
}

// views resolves category and assignee names for rows.
func (s *Service) views(ctx context.Context, rows []domain.Task) ([]View, error) {
	catIDs := make([]uuid.UUID, 0, len(rows))
	userIDs := make([]uuid.UUID, 0, len(rows))
	for _, t := range rows {
		catIDs = append(catIDs, t.CategoryID)
		userIDs = append(userIDs, t.AssignedTo)
	}
	cats := map[uuid.UUID]string{}
	users := map[uuid.UUID]string{}
	if len(rows) > 0 {
		var tcs []domain.TaskCategory
		if err := s.DB.WithContext(ctx).Where("id IN ?", catIDs).Find(&tcs).Error; err != nil {
			return nil, err
		}
		for _, c := range tcs {
			cats[c.ID] = c.CategoryName
		}
		var us []domain.User
		if err := s.DB.WithContext(ctx).Where("id IN ?", userIDs).Find(&us).Error; err != nil {
			return nil, err
		}
		for _, u := range us {
			users[u.ID] = u.Name
		}
	}
	out := make([]View, 0, len(rows))
	for _, t := range rows {
		if t.Notes == nil {
			t.Notes = []domain.TaskNote{}
		}
		out = append(out, View{Task: t, CategoryName: cats[t.CategoryID], AssigneeName: users[t.AssignedTo]})
	}
	return out, nil
}

func (s *Service) find(ctx context.Context, id string) (*domain.Task, error) {
	tid, err := validation.ParseUUID("task id", id)
	if err != nil {
		return nil, err
	}
	var t domain.Task
	err = s.DB.WithContext(ctx).Where("id = ?", tid).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFound("Task not found")
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Service) notes(ctx context.Context, taskID uuid.UUID) ([]domain.TaskNote, error) {
	out := []domain.TaskNote{}
	err := s.DB.WithContext(ctx).Where("task_id = ?", taskID).Order("created_at ASC").Find(&out).Error
	return out, err
}

// Get returns a task with its notes.
func (s *Service) Get(ctx context.Context, id string) (*View, error) {
	t, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Notes, err = s.notes(ctx, t.ID); err != nil {
		return nil, err
	}
	views, err := s.views(ctx, []domain.Task{*t})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*View, error) {
	t, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	changes := map[string]interface{}{}
	if in.Title != nil {
		if err := validation.Required("title", *in.Title); err != nil {
			return nil, err
		}
		changes["title"] = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		changes["description"] = *in.Description
	}
	if in.Category != nil {
		tc, err := s.categoryByName(ctx, *in.Category)
		if err != nil {
			return nil, err
		}
		changes["category_id"] = tc.ID
	}
	if in.Subcategory != nil {
		if err := validation.Required("subcategory", *in.Subcategory); err != nil {
			return nil, err
		}
		changes["subcategory"] = strings.TrimSpace(*in.Subcategory)
	}
	if in.Deadline != nil {
		d, err := validation.ParseDate(*in.Deadline)
		if err != nil {
			return nil, err
		}
		changes["deadline"] = d
	}
	if in.Status != nil {
		st, err := parseStatus(*in.Status)
		if err != nil {
			return nil, err
		}
		changes["status"] = st
	}
	if in.AssignedTo != nil {
		a, err := s.assignee(ctx, *in.AssignedTo)
		if err != nil {
			return nil, err
		}
		changes["assigned_to"] = a
	}
	if len(changes) > 0 {
		if err := s.DB.WithContext(ctx).Model(t).Updates(changes).Error; err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, id)
}

// Delete removes a task and its notes.
func (s *Service) Delete(ctx context.Context, id string) error {
	t, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", t.ID).Delete(&domain.TaskNote{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", t.ID).Delete(&domain.Task{}).Error
	})
}

// AddNote appends a note and returns all notes of the task.
func (s *Service) AddNote(ctx context.Context, id string, actor Actor, content string) ([]domain.TaskNote, error) {
	if err := validation.Required("content", content); err != nil {
		return nil, err
	}
	t, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	n := domain.TaskNote{TaskID: t.ID, Content: strings.TrimSpace(content), CreatedBy: actor.ID, CreatedByName: actor.Name}
	if err := s.DB.WithContext(ctx).Create(&n).Error; err != nil {
		return nil, err
	}
	return s.notes(ctx, t.ID)
}
