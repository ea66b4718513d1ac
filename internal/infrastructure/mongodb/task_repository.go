package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/paklog/fleet-service/internal/domain"
)

// TaskRepository implements domain.TaskRepository using MongoDB
type TaskRepository struct {
	collection *mongo.Collection
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *mongo.Database) *TaskRepository {
	repo := &TaskRepository{
		collection: db.Collection("robot_tasks"),
	}
	repo.ensureIndexes(context.Background())

	return repo
}

func (r *TaskRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "taskId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "robotId", Value: 1}, {Key: "status", Value: 1}},
		},
	}

	r.collection.Indexes().CreateMany(ctx, indexes)
}

// Save persists a task
func (r *TaskRepository) Save(ctx context.Context, task *domain.RobotTask) error {
	opts := options.Update().SetUpsert(true)
	filter := bson.M{"taskId": task.TaskID}
	update := bson.M{"$set": task}

	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}
	return nil
}

// FindByID retrieves a task by its ID
func (r *TaskRepository) FindByID(ctx context.Context, taskID string) (*domain.RobotTask, error) {
	filter := bson.M{"taskId": taskID}

	var task domain.RobotTask
	err := r.collection.FindOne(ctx, filter).Decode(&task)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}

	return &task, nil
}

// FindByStatus retrieves tasks by status, oldest first
func (r *TaskRepository) FindByStatus(ctx context.Context, status domain.TaskStatus) ([]*domain.RobotTask, error) {
	filter := bson.M{"status": status}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tasks []*domain.RobotTask
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, err
	}

	return tasks, nil
}

// FindByRobotID retrieves tasks assigned to a robot, newest first
func (r *TaskRepository) FindByRobotID(ctx context.Context, robotID string) ([]*domain.RobotTask, error) {
	filter := bson.M{"robotId": robotID}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tasks []*domain.RobotTask
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, err
	}

	return tasks, nil
}

// FindPending retrieves pending tasks ready for assignment, oldest first
func (r *TaskRepository) FindPending(ctx context.Context, limit int) ([]*domain.RobotTask, error) {
	filter := bson.M{"status": domain.TaskStatusPending}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tasks []*domain.RobotTask
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, err
	}

	return tasks, nil
}
