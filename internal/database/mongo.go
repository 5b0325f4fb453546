package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AnshRaj112/ai-journal-backend/internal/models"
)

const defaultMongoDatabase = "ai_journal"

// MongoStore implements Store on MongoDB.
type MongoStore struct {
	client  *mongo.Client
	db      *mongo.Database
	users   *mongo.Collection
	entries *mongo.Collection
}

// ConnectMongo connects, pings and ensures indexes.
func ConnectMongo(ctx context.Context, mongoURI string) (*MongoStore, error) {
	// Use longer timeout for Atlas connections
	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(mongoURI)
	clientOptions.SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, err
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 10*time.Second)
	defer pingCancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}

	store := NewMongoStore(client, mongoDatabaseName(mongoURI))
	if err := store.EnsureIndexes(ctx); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}
	return store, nil
}

// NewMongoStore uses the named database on an already connected client.
func NewMongoStore(client *mongo.Client, dbName string) *MongoStore {
	db := client.Database(dbName)
	return &MongoStore{
		client:  client,
		db:      db,
		users:   db.Collection("users"),
		entries: db.Collection("journal_entries"),
	}
}

// mongoDatabaseName extracts the database from mongodb://host/name?opts,
// falling back to the default when the path is empty.
func mongoDatabaseName(mongoURI string) string {
	rest := mongoURI
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
	}
	slash := strings.Index(rest, "/")
	if slash < 0 {
		return defaultMongoDatabase
	}
	name := strings.Split(rest[slash+1:], "?")[0]
	if name == "" {
		return defaultMongoDatabase
	}
	return name
}

// EnsureIndexes creates the unique email index and the owner listing index.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create users index: %w", err)
	}

	_, err = s.entries.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create entries index: %w", err)
	}
	return nil
}

func (s *MongoStore) CreateUser(ctx context.Context, user *models.User) error {
	if _, err := s.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *MongoStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &user, nil
}

func (s *MongoStore) CreateEntry(ctx context.Context, entry *models.JournalEntry) error {
	if _, err := s.entries.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

func (s *MongoStore) GetOwned(ctx context.Context, id, ownerID string) (*models.JournalEntry, error) {
	var entry models.JournalEntry
	err := s.entries.FindOne(ctx, bson.M{"_id": id, "owner_id": ownerID}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return &entry, nil
}

func (s *MongoStore) UpdateOwned(ctx context.Context, entry *models.JournalEntry) (*models.JournalEntry, error) {
	update := bson.M{"$set": bson.M{
		"content":    entry.Content,
		"summary":    entry.Summary,
		"mood":       entry.Mood,
		"suggestion": entry.Suggestion,
		"updated_at": entry.UpdatedAt,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.JournalEntry
	err := s.entries.FindOneAndUpdate(ctx, bson.M{"_id": entry.ID, "owner_id": entry.OwnerID}, update, opts).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update entry: %w", err)
	}
	return &updated, nil
}

func (s *MongoStore) DeleteOwned(ctx context.Context, id, ownerID string) error {
	res, err := s.entries.DeleteOne(ctx, bson.M{"_id": id, "owner_id": ownerID})
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) ListByOwner(ctx context.Context, ownerID string) ([]models.JournalEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.entries.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer cursor.Close(ctx)

	entries := []models.JournalEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decode entries: %w", err)
	}
	return entries, nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
