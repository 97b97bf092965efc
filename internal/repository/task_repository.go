package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"todo/internal/database"
	"todo/internal/model"
)

type TaskRepositoryInterface interface {
	List(ctx context.Context) ([]model.Task, error)
	GetByID(ctx context.Context, id int64) (*model.Task, error)
	Create(ctx context.Context, task *model.Task) (*model.Task, error)
	Update(ctx context.Context, id int64, update *model.TaskUpdate) (*model.Task, error)
	Delete(ctx context.Context, id int64) error
}

var _ TaskRepositoryInterface = (*TaskRepository)(nil)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// List returns every task, newest first
func (r *TaskRepository) List(ctx context.Context) ([]model.Task, error) {
	tasks := make([]model.Task, 0)
	if err := r.db.WithContext(ctx).Order("id DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetByID retrieves a task by its ID
func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

// Create inserts the task and returns the stored row, including the id and
// timestamps assigned by the database
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) (*model.Task, error) {
	row := &model.Task{
		Title:       task.Title,
		Description: task.Description,
		DueDate:     task.DueDate,
		Status:      task.Status,
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, translateError(err)
	}
	return r.GetByID(ctx, row.ID)
}

// Update applies the supplied fields and always bumps updated_at
func (r *TaskRepository) Update(ctx context.Context, id int64, update *model.TaskUpdate) (*model.Task, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}

	var (
		set  []string
		args []interface{}
	)
	if update.Title != nil {
		set = append(set, "title = ?")
		args = append(args, *update.Title)
	}
	if update.Description.Set {
		set = append(set, "description = ?")
		args = append(args, update.Description.Value)
	}
	if update.DueDate.Set {
		set = append(set, "due_date = ?")
		args = append(args, update.DueDate.Value)
	}
	if update.Status != nil {
		set = append(set, "status = ?")
		args = append(args, string(*update.Status))
	}
	set = append(set, "updated_at = "+database.CurrentTimestamp)
	args = append(args, id)

	query := "UPDATE tasks SET " + strings.Join(set, ", ") + " WHERE id = ?"
	if err := r.db.WithContext(ctx).Exec(query, args...).Error; err != nil {
		return nil, translateError(err)
	}
	return r.GetByID(ctx, id)
}

// Delete removes a task by its ID
func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(&model.Task{}, "id = ?", id).Error
}
