package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"task-manager/models"
)

const (
	usersCollection = "users"
	tasksCollection = "tasks"
)

// Mongo stores users (with embedded token list and avatar) and tasks as
// documents. Ids are UUID strings.
type Mongo struct {
	Client *mongo.Client
	users  *mongo.Collection
	tasks  *mongo.Collection
}

type userDoc struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Email     string    `bson:"email"`
	Password  string    `bson:"password"`
	Age       int       `bson:"age"`
	Tokens    []string  `bson:"tokens"`
	Avatar    []byte    `bson:"avatar,omitempty"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

type taskDoc struct {
	ID          string    `bson:"_id"`
	Owner       string    `bson:"owner"`
	Description string    `bson:"description"`
	Completed   bool      `bson:"completed"`
	CreatedAt   time.Time `bson:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}

// NewMongo connects, pings and makes sure the indexes exist.
func NewMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	m := &Mongo{
		Client: client,
		users:  client.Database(database).Collection(usersCollection),
		tasks:  client.Database(database).Collection(tasksCollection),
	}
	if err := m.ensureIndexes(connectCtx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return m, nil
}

func (m *Mongo) ensureIndexes(ctx context.Context) error {
	_, err := m.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create users.email index: %w", err)
	}
	_, err = m.tasks.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner", Value: 1}, {Key: "createdAt", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create tasks.owner index: %w", err)
	}
	return nil
}

func (m *Mongo) Ping(ctx context.Context) error {
	return m.Client.Ping(ctx, nil)
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}

func (d *userDoc) toModel() (*models.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("bad user id %q: %w", d.ID, err)
	}
	return &models.User{
		ID:        id,
		Name:      d.Name,
		Email:     d.Email,
		Password:  d.Password,
		Age:       d.Age,
		Tokens:    d.Tokens,
		Avatar:    d.Avatar,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

func (d *taskDoc) toModel() (*models.Task, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("bad task id %q: %w", d.ID, err)
	}
	owner, err := uuid.Parse(d.Owner)
	if err != nil {
		return nil, fmt.Errorf("bad task owner %q: %w", d.Owner, err)
	}
	return &models.Task{
		ID:          id,
		Owner:       owner,
		Description: d.Description,
		Completed:   d.Completed,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}, nil
}

func (m *Mongo) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now

	doc := userDoc{
		ID:        user.ID.String(),
		Name:      user.Name,
		Email:     user.Email,
		Password:  user.Password,
		Age:       user.Age,
		Tokens:    []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := m.users.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return models.ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (m *Mongo) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDoc
	err := m.users.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toModel()
}

func (m *Mongo) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return m.findUser(ctx, bson.M{"_id": id.String()})
}

func (m *Mongo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.findUser(ctx, bson.M{"email": email})
}

func (m *Mongo) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	res, err := m.users.UpdateOne(ctx, bson.M{"_id": user.ID.String()}, bson.M{"$set": bson.M{
		"name":      user.Name,
		"email":     user.Email,
		"password":  user.Password,
		"age":       user.Age,
		"updatedAt": user.UpdatedAt,
	}})
	if mongo.IsDuplicateKeyError(err) {
		return models.ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (m *Mongo) updateUserByID(ctx context.Context, id uuid.UUID, update bson.M) error {
	res, err := m.users.UpdateOne(ctx, bson.M{"_id": id.String()}, update)
	if err != nil {
		return fmt.Errorf("update user %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (m *Mongo) SetAvatar(ctx context.Context, id uuid.UUID, avatar []byte) error {
	now := time.Now().UTC()
	if avatar == nil {
		return m.updateUserByID(ctx, id, bson.M{
			"$unset": bson.M{"avatar": ""},
			"$set":   bson.M{"updatedAt": now},
		})
	}
	return m.updateUserByID(ctx, id, bson.M{"$set": bson.M{"avatar": avatar, "updatedAt": now}})
}

// DeleteUserAndTasks removes the tasks before the user, so a failure part way
// leaves a user without tasks rather than tasks without a user.
func (m *Mongo) DeleteUserAndTasks(ctx context.Context, id uuid.UUID) error {
	if _, err := m.tasks.DeleteMany(ctx, bson.M{"owner": id.String()}); err != nil {
		return fmt.Errorf("delete user tasks: %w", err)
	}
	res, err := m.users.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (m *Mongo) AddToken(ctx context.Context, id uuid.UUID, token string) error {
	return m.updateUserByID(ctx, id, bson.M{"$push": bson.M{"tokens": token}})
}

func (m *Mongo) RemoveToken(ctx context.Context, id uuid.UUID, token string) error {
	err := m.updateUserByID(ctx, id, bson.M{"$pull": bson.M{"tokens": token}})
	if errors.Is(err, models.ErrNotFound) {
		return nil
	}
	return err
}

func (m *Mongo) RemoveAllTokens(ctx context.Context, id uuid.UUID) error {
	err := m.updateUserByID(ctx, id, bson.M{"$set": bson.M{"tokens": []string{}}})
	if errors.Is(err, models.ErrNotFound) {
		return nil
	}
	return err
}

func (m *Mongo) HasToken(ctx context.Context, id uuid.UUID, token string) (bool, error) {
	n, err := m.users.CountDocuments(ctx, bson.M{"_id": id.String(), "tokens": token})
	if err != nil {
		return false, fmt.Errorf("count tokens: %w", err)
	}
	return n > 0, nil
}

func (m *Mongo) CreateTask(ctx context.Context, task *models.Task) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	now := time.Now().UTC()
	task.CreatedAt, task.UpdatedAt = now, now

	_, err := m.tasks.InsertOne(ctx, taskDoc{
		ID:          task.ID.String(),
		Owner:       task.Owner.String(),
		Description: task.Description,
		Completed:   task.Completed,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (m *Mongo) ListTasksByOwner(ctx context.Context, owner uuid.UUID, q models.TaskQuery) ([]models.Task, error) {
	q = q.Normalize()

	filter := bson.M{"owner": owner.String()}
	if q.Completed != nil {
		filter["completed"] = *q.Completed
	}

	dir := 1
	if q.Desc {
		dir = -1
	}
	opts := options.Find().SetSort(bson.D{{Key: q.SortBy, Value: dir}, {Key: "_id", Value: dir}})
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}
	if q.Skip > 0 {
		opts.SetSkip(int64(q.Skip))
	}

	cur, err := m.tasks.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find tasks: %w", err)
	}
	var docs []taskDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}

	tasks := make([]models.Task, 0, len(docs))
	for i := range docs {
		t, err := docs[i].toModel()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, nil
}

func ownedTaskFilter(owner, id uuid.UUID) bson.M {
	return bson.M{"_id": id.String(), "owner": owner.String()}
}

func (m *Mongo) GetTask(ctx context.Context, owner, id uuid.UUID) (*models.Task, error) {
	var doc taskDoc
	err := m.tasks.FindOne(ctx, ownedTaskFilter(owner, id)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find task: %w", err)
	}
	return doc.toModel()
}

func (m *Mongo) UpdateTask(ctx context.Context, task *models.Task) error {
	task.UpdatedAt = time.Now().UTC()
	res, err := m.tasks.UpdateOne(ctx, ownedTaskFilter(task.Owner, task.ID), bson.M{"$set": bson.M{
		"description": task.Description,
		"completed":   task.Completed,
		"updatedAt":   task.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (m *Mongo) DeleteTask(ctx context.Context, owner, id uuid.UUID) (*models.Task, error) {
	var doc taskDoc
	err := m.tasks.FindOneAndDelete(ctx, ownedTaskFilter(owner, id)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete task: %w", err)
	}
	return doc.toModel()
}
