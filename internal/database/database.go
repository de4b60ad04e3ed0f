package database

import (
	"context"
	"database/sql"
	"log"
	"time"

	"go-dash/internal/config"

	_ "github.com/lib/pq"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"
)

// MongodbDB wraps the mongo database handle shared by repositories and the
// bear backend adapter.
type MongodbDB struct {
	DB *mongo.Database
}

// PostgresDB wraps the sql handle used by the tiger backend adapter.
type PostgresDB struct {
	DB *sql.DB
}

// NewDatabase creates a new MongoDB database connection with lifecycle management
func NewDatabase(lc fx.Lifecycle, cfg *config.Config) (*MongodbDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, err
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	log.Println("Connected to MongoDB!")

	db := client.Database(cfg.DBName)

	// Register lifecycle hooks
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Println("Disconnecting from MongoDB...")
			return client.Disconnect(ctx)
		},
	})

	return &MongodbDB{DB: db}, nil
}

// NewPostgresDatabase opens the PostgreSQL connection used by the tiger
// backend with lifecycle management. The connection is only opened when the
// tiger flavor is configured; callers must not dial it otherwise.
func NewPostgresDatabase(lc fx.Lifecycle, cfg *config.Config) (*PostgresDB, error) {
	db, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	log.Println("Connected to PostgreSQL!")

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Println("Closing PostgreSQL connection...")
			return db.Close()
		},
	})

	return &PostgresDB{DB: db}, nil
}
